package depmgr

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rxlang/rxc/internal/ident"
)

func writeManifest(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rxc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestLoadManifestParsesSelfAndDepends(t *testing.T) {
	path := writeManifest(t, `
schema: rxc.manifest/v1
org: acme
name: widgets
version: 1.2.3
depends:
  - path: collections
    org: core
    name: collections
    version: 2.0.0
`)

	m, err := LoadManifest(path)
	require.NoError(t, err)

	self, err := m.Self()
	require.NoError(t, err)
	assert.Equal(t, ident.PackageName{Org: "acme", Name: "widgets", Version: ident.Version{Major: 1, Minor: 2, Patch: 3}}, self)

	require.Len(t, m.Depends, 1)
	assert.Equal(t, "collections", m.Depends[0].Path)
}

func TestLoadManifestRejectsUnsupportedSchema(t *testing.T) {
	path := writeManifest(t, "schema: rxc.manifest/v2\norg: acme\nname: widgets\nversion: 1.0.0\n")

	_, err := LoadManifest(path)
	require.Error(t, err)
}

func TestLoadManifestAllowsEmptySchema(t *testing.T) {
	path := writeManifest(t, "org: acme\nname: widgets\nversion: 1.0.0\n")

	m, err := LoadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, "", m.Schema)
}

func TestLoadManifestMissingFileFails(t *testing.T) {
	_, err := LoadManifest(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestManifestSelfRejectsInvalidVersion(t *testing.T) {
	m := &Manifest{Org: "acme", Name: "widgets", Version: "not-a-version"}
	_, err := m.Self()
	require.Error(t, err)
}

func TestNewManifestResolverResolvesDeclaredPaths(t *testing.T) {
	m := &Manifest{
		Depends: []ManifestDependency{
			{Path: "collections", Org: "core", Name: "collections", Version: "1.0.0"},
		},
	}

	resolver, err := NewManifestResolver(m)
	require.NoError(t, err)

	pkg, ok := resolver.ResolvePackage("collections")
	require.True(t, ok)
	assert.Equal(t, ident.PackageName{Org: "core", Name: "collections", Version: ident.Version{Major: 1}}, pkg)

	_, ok = resolver.ResolvePackage("unknown")
	assert.False(t, ok)
}

func TestNewManifestResolverRejectsInvalidDependencyVersion(t *testing.T) {
	m := &Manifest{Depends: []ManifestDependency{{Path: "x", Version: "garbage"}}}
	_, err := NewManifestResolver(m)
	require.Error(t, err)
}
