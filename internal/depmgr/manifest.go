package depmgr

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rxlang/rxc/internal/ident"
)

// SchemaVersion is the current project-manifest schema, stamped on
// every persisted manifest document.
const SchemaVersion = "rxc.manifest/v1"

// Manifest is the on-disk project manifest (`rxc.yaml`): the package's
// own identity plus its declared dependencies, each a path prefix mapped
// to the PackageName that provides it.
type Manifest struct {
	Schema  string             `yaml:"schema"`
	Org     string             `yaml:"org"`
	Name    string             `yaml:"name"`
	Version string             `yaml:"version"`
	Depends []ManifestDependency `yaml:"depends"`
}

// ManifestDependency is one declared dependency entry.
type ManifestDependency struct {
	Path    string `yaml:"path"` // the import path prefix, e.g. "collections"
	Org     string `yaml:"org"`
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// LoadManifest reads and parses an `rxc.yaml` project manifest.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("depmgr: reading manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("depmgr: parsing manifest %s: %w", path, err)
	}
	if m.Schema != "" && m.Schema != SchemaVersion {
		return nil, fmt.Errorf("depmgr: manifest %s declares unsupported schema %q", path, m.Schema)
	}
	return &m, nil
}

// Self returns the PackageName this manifest identifies.
func (m *Manifest) Self() (ident.PackageName, error) {
	v, err := parseVersion(m.Version)
	if err != nil {
		return ident.PackageName{}, err
	}
	return ident.PackageName{Org: m.Org, Name: m.Name, Version: v}, nil
}

// ManifestResolver implements PathResolver over a parsed Manifest.
type ManifestResolver struct {
	byPath map[string]ident.PackageName
}

// NewManifestResolver builds a PathResolver from a project manifest.
func NewManifestResolver(m *Manifest) (*ManifestResolver, error) {
	byPath := make(map[string]ident.PackageName, len(m.Depends))
	for _, d := range m.Depends {
		v, err := parseVersion(d.Version)
		if err != nil {
			return nil, fmt.Errorf("depmgr: dependency %q: %w", d.Path, err)
		}
		byPath[d.Path] = ident.PackageName{Org: d.Org, Name: d.Name, Version: v}
	}
	return &ManifestResolver{byPath: byPath}, nil
}

func (r *ManifestResolver) ResolvePackage(path string) (ident.PackageName, bool) {
	pkg, ok := r.byPath[path]
	return pkg, ok
}

func parseVersion(s string) (ident.Version, error) {
	var major, minor, patch int
	if s == "" {
		return ident.Version{}, nil
	}
	if _, err := fmt.Sscanf(s, "%d.%d.%d", &major, &minor, &patch); err != nil {
		return ident.Version{}, fmt.Errorf("invalid semver %q: %w", s, err)
	}
	return ident.Version{Major: major, Minor: minor, Patch: patch}, nil
}
