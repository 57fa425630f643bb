// Package ident provides the core identity types shared by every stage of
// the compiler: source positions, package names, access levels, and the
// fully qualified symbols that name every declaration.
package ident

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Pos is a single point in a source file: path, line, column.
type Pos struct {
	Path   string
	Line   int
	Column int
}

func (p Pos) String() string {
	return fmt.Sprintf("%s:%d:%d", p.Path, p.Line, p.Column)
}

// Fail aborts with a diagnostic-shaped error attributed to this position.
// Callers that need a structured diagnostic should prefer internal/diag;
// Fail exists for the rare low-level path (inside ident/coll) that has no
// dependency on the diag package, matching Position.fail in the source.
func (p Pos) Fail(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %s", p, fmt.Sprintf(format, args...))
}

// Version is a semver triple.
type Version struct {
	Major, Minor, Patch int
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// PackageName identifies a versioned package: organization, name, version.
type PackageName struct {
	Org     string
	Name    string
	Version Version
}

func (p PackageName) String() string {
	return fmt.Sprintf("%s/%s@%s", p.Org, p.Name, p.Version)
}

// Equal reports whether two package names match in every component.
func (p PackageName) Equal(o PackageName) bool {
	return p.Org == o.Org && p.Name == o.Name && p.Version == o.Version
}

// SameAssembly reports "same assembly" equality: every component except
// Name must match. Used by the `internal` access level (§4.2).
func (p PackageName) SameAssembly(o PackageName) bool {
	return p.Org == o.Org && p.Version == o.Version
}

// AccessLevel is the five-level visibility enumeration (§3.2). The zero
// value is Internal: an unmarked declaration defaults to internal
// visibility.
type AccessLevel int

const (
	Internal AccessLevel = iota
	Private
	Protected
	Package
	Public
)

func (a AccessLevel) String() string {
	switch a {
	case Private:
		return "private"
	case Protected:
		return "protected"
	case Package:
		return "package"
	case Internal:
		return "internal"
	case Public:
		return "public"
	default:
		return "unknown"
	}
}

// ParseAccessLevel maps a surface spelling to its AccessLevel, defaulting
// to Internal for the empty string per §3.2.
func ParseAccessLevel(s string) (AccessLevel, error) {
	switch s {
	case "", "internal":
		return Internal, nil
	case "private":
		return Private, nil
	case "protected":
		return Protected, nil
	case "package":
		return Package, nil
	case "public":
		return Public, nil
	default:
		return Internal, fmt.Errorf("unknown access level %q", s)
	}
}

// Symbol is a fully qualified path: a package plus an ordered list of name
// segments. Symbols are compared structurally (value semantics) and are
// safe to use as map keys.
type Symbol struct {
	Pkg      PackageName
	Segments string // segments joined with '.', normalized
}

// NewSymbol builds a Symbol from a package and a sequence of segments.
// Each segment is normalized to Unicode NFC so that lexically-equivalent
// identifiers (distinct only in combining-mark representation) collapse
// to the same Symbol regardless of how the upstream lexer produced them.
func NewSymbol(pkg PackageName, segments ...string) Symbol {
	normed := make([]string, len(segments))
	for i, s := range segments {
		if !norm.NFC.IsNormal([]byte(s)) {
			s = string(norm.NFC.Bytes([]byte(s)))
		}
		normed[i] = s
	}
	return Symbol{Pkg: pkg, Segments: strings.Join(normed, ".")}
}

func (s Symbol) segments() []string {
	if s.Segments == "" {
		return nil
	}
	return strings.Split(s.Segments, ".")
}

// Child returns a new symbol with one more segment appended.
func (s Symbol) Child(segment string) Symbol {
	segs := append(s.segments(), segment)
	return NewSymbol(s.Pkg, segs...)
}

// Parent returns the symbol with the last segment removed, and false if s
// is already top-level (no segments to remove).
func (s Symbol) Parent() (Symbol, bool) {
	segs := s.segments()
	if len(segs) == 0 {
		return Symbol{}, false
	}
	return NewSymbol(s.Pkg, segs[:len(segs)-1]...), true
}

// IsParent reports whether s is a (non-strict) prefix of other within the
// same package.
func (s Symbol) IsParent(other Symbol) bool {
	if !s.Pkg.Equal(other.Pkg) {
		return false
	}
	if s.Segments == "" {
		return true
	}
	return other.Segments == s.Segments || strings.HasPrefix(other.Segments, s.Segments+".")
}

// Package returns the symbol's owning package.
func (s Symbol) Package() PackageName { return s.Pkg }

// Name returns the last segment, or "" for a top-level (package) symbol.
func (s Symbol) Name() string {
	segs := s.segments()
	if len(segs) == 0 {
		return ""
	}
	return segs[len(segs)-1]
}

func (s Symbol) String() string {
	if s.Segments == "" {
		return s.Pkg.String()
	}
	return fmt.Sprintf("%s#%s", s.Pkg, s.Segments)
}
