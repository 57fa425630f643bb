// Package diag is the structured-diagnostic carrier used by every stage
// (§4.5, §7). Every failure in the core is fail-fast: the first
// Diagnostic returned by any stage ends the whole pipeline run. There is no
// recovery within the checker or lowering; the caller (pipeline, then
// CLI) is responsible for collecting and reporting it.
package diag

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rxlang/rxc/internal/ident"
)

// Kind is the diagnostic category taxonomy of §7.
type Kind int

const (
	KindResolution Kind = iota
	KindType
	KindPhase
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindResolution:
		return "resolution"
	case KindType:
		return "type"
	case KindPhase:
		return "phase"
	default:
		return "internal"
	}
}

// Schema is stamped on every Diagnostic for forward-compatible
// structured errors.
const Schema = "rxc.diagnostic/v1"

// Diagnostic is the structured error type every stage returns on
// failure (§6 "Outputs from the core", §7).
type Diagnostic struct {
	Schema   string
	Code     string
	Stage    string // "collect" | "import" | "check" | "lower"
	Position ident.Pos
	Message  string
	Data     map[string]interface{}
}

// Kind reports this diagnostic's category, derived from its Code prefix.
func (d *Diagnostic) Kind() Kind { return KindOf(d.Code) }

// Error implements the error interface.
func (d *Diagnostic) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s: %s", d.Position, d.Code, d.Message)
	if len(d.Data) > 0 {
		keys := make([]string, 0, len(d.Data))
		for k := range d.Data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "\n  %s: %v", k, d.Data[k])
		}
	}
	return b.String()
}

// New builds a Diagnostic. stage names the pipeline stage that raised it
// ("collect", "import", "check", "lower").
func New(code, stage string, pos ident.Pos, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{
		Schema:   Schema,
		Code:     code,
		Stage:    stage,
		Position: pos,
		Message:  fmt.Sprintf(format, args...),
	}
}

// WithData attaches structured data fields and returns the same
// Diagnostic, for chaining at the call site.
func (d *Diagnostic) WithData(key string, value interface{}) *Diagnostic {
	if d.Data == nil {
		d.Data = make(map[string]interface{})
	}
	d.Data[key] = value
	return d
}

// As extracts a *Diagnostic from an error chain.
func As(err error) (*Diagnostic, bool) {
	for err != nil {
		if d, ok := err.(*Diagnostic); ok {
			return d, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return nil, false
}
