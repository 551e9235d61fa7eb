// pkg/catalog/catalog_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: Memory FS
// PURPOSE: Test catalog parsing, alias lookup and snapshot caching

package catalog_test

import (
	"testing"

	"github.com/arthur-debert/settle/pkg/catalog"
	"github.com/arthur-debert/settle/pkg/errors"
	"github.com/arthur-debert/settle/pkg/testutil"
	"github.com/arthur-debert/settle/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const libsTOML = `
[versions]
kotlin = "1.9.22"
guava = { strictly = "33.0.0-jre", prefer = "32.0.0-jre" }

[libraries]
kotlin-stdlib = { module = "org.jetbrains.kotlin:kotlin-stdlib", version.ref = "kotlin" }
guava = { group = "com.google.guava", name = "guava", version.ref = "guava" }
junit_api = "org.junit.jupiter:junit-jupiter-api:5.10.1"
slf4j = { module = "org.slf4j:slf4j-api", version = { require = "2.0.9" } }
bom = { module = "org.example:platform" }
`

func TestParse_TOML(t *testing.T) {
	c, err := catalog.Parse("libs", []byte(libsTOML), catalog.FormatTOML)
	require.NoError(t, err)

	assert.Equal(t, "libs", c.Name())
	assert.Equal(t, []string{"bom", "guava", "junit.api", "kotlin.stdlib", "slf4j"}, c.Aliases())

	tests := []struct {
		alias string
		want  types.Coordinate
	}{
		{"kotlin-stdlib", types.Coordinate{Group: "org.jetbrains.kotlin", Artifact: "kotlin-stdlib", Version: "1.9.22"}},
		{"kotlin.stdlib", types.Coordinate{Group: "org.jetbrains.kotlin", Artifact: "kotlin-stdlib", Version: "1.9.22"}},
		{"guava", types.Coordinate{Group: "com.google.guava", Artifact: "guava", Version: "33.0.0-jre"}},
		{"junit-api", types.Coordinate{Group: "org.junit.jupiter", Artifact: "junit-jupiter-api", Version: "5.10.1"}},
		{"slf4j", types.Coordinate{Group: "org.slf4j", Artifact: "slf4j-api", Version: "2.0.9"}},
		{"bom", types.Coordinate{Group: "org.example", Artifact: "platform"}},
	}
	for _, tt := range tests {
		t.Run(tt.alias, func(t *testing.T) {
			got, err := c.Lookup(tt.alias)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_YAML(t *testing.T) {
	data := `
versions:
  jackson: "2.16.1"
libraries:
  jackson-databind:
    module: com.fasterxml.jackson.core:jackson-databind
    version:
      ref: jackson
  commons: "org.apache.commons:commons-lang3:3.14.0"
`
	c, err := catalog.Parse("tools", []byte(data), catalog.FormatYAML)
	require.NoError(t, err)

	got, err := c.Lookup("jackson.databind")
	require.NoError(t, err)
	assert.Equal(t, "com.fasterxml.jackson.core:jackson-databind:2.16.1", got.String())

	got, err = c.Lookup("commons")
	require.NoError(t, err)
	assert.Equal(t, "3.14.0", got.Version)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed toml", "[libraries\nfoo = 1"},
		{"unknown version ref", `[libraries]
a = { module = "g:a", version.ref = "missing" }`},
		{"missing module", `[libraries]
a = { version = "1.0" }`},
		{"bad notation", `[libraries]
a = "just-a-name"`},
		{"module with version", `[libraries]
a = { module = "g:a:1.0" }`},
		{"duplicate after normalization", `[libraries]
foo-bar = "g:a:1"
foo_bar = "g:b:1"`},
		{"libraries not a table", `libraries = "nope"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := catalog.Parse("libs", []byte(tt.data), catalog.FormatTOML)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrCatalogInvalid), "got %v", err)
		})
	}
}

func TestLookup_UnknownAlias(t *testing.T) {
	c, err := catalog.New("libs", map[string]types.Coordinate{
		"guava": {Group: "com.google.guava", Artifact: "guava", Version: "33.0.0"},
	})
	require.NoError(t, err)

	_, err = c.Lookup("gauva")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrAliasNotFound))
	assert.Equal(t, "gauva", errors.GetErrorDetails(err)["alias"])
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, catalog.FormatTOML, catalog.FormatFromPath("gradle/libs.versions.toml"))
	assert.Equal(t, catalog.FormatYAML, catalog.FormatFromPath("gradle/tools.yaml"))
	assert.Equal(t, catalog.FormatYAML, catalog.FormatFromPath("gradle/tools.YML"))
}

func TestLoad(t *testing.T) {
	tree := testutil.NewTestTree(t)
	tree.AddFile(t, "gradle/libs.versions.toml", libsTOML)
	tree.AddFile(t, "gradle/tools.yaml", "libraries:\n  lint: \"com.example:lint:0.3\"\n")

	catalogs, err := catalog.Load(tree.FS, tree.Root, map[string]string{
		"tools": "gradle/tools.yaml",
		"libs":  "gradle/libs.versions.toml",
	})
	require.NoError(t, err)
	require.Len(t, catalogs, 2)
	assert.Equal(t, "libs", catalogs[0].Name())
	assert.Equal(t, "tools", catalogs[1].Name())
}

func TestLoad_MissingFiles(t *testing.T) {
	tree := testutil.NewTestTree(t)

	catalogs, err := catalog.Load(tree.FS, tree.Root, map[string]string{"libs": "gradle/libs.versions.toml"})
	require.NoError(t, err)
	assert.Empty(t, catalogs)

	_, err = catalog.Load(tree.FS, tree.Root, map[string]string{"tools": "gradle/tools.toml"})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFileNotFound))
}

type memoryCache struct {
	entries map[string][]byte
	gets    int
	puts    int
}

func (m *memoryCache) Get(key string) ([]byte, bool, error) {
	m.gets++
	data, ok := m.entries[key]
	return data, ok, nil
}

func (m *memoryCache) Put(key string, data []byte) error {
	m.puts++
	m.entries[key] = data
	return nil
}

func TestLoader_SnapshotCache(t *testing.T) {
	tree := testutil.NewTestTree(t)
	tree.AddFile(t, "gradle/libs.versions.toml", libsTOML)
	cache := &memoryCache{entries: map[string][]byte{}}

	loader := &catalog.Loader{
		FS:    tree.FS,
		Root:  tree.Root,
		Files: map[string]string{"libs": "gradle/libs.versions.toml"},
		Cache: cache,
	}

	first, err := loader.Catalogs()
	require.NoError(t, err)
	assert.Equal(t, 1, cache.puts)

	second, err := loader.Catalogs()
	require.NoError(t, err)
	assert.Equal(t, 1, cache.puts, "second load is served from the snapshot")
	assert.Equal(t, 2, cache.gets)

	require.Len(t, second, 1)
	assert.Equal(t, first[0].Aliases(), second[0].Aliases())
	want, _ := first[0].Lookup("guava")
	got, err := second[0].Lookup("guava")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	tree.AddFile(t, "gradle/libs.versions.toml", `[libraries]
guava = "com.google.guava:guava:34.0.0"`)
	third, err := loader.Catalogs()
	require.NoError(t, err)
	assert.Equal(t, 2, cache.puts, "changed content misses the cache")
	got, err = third[0].Lookup("guava")
	require.NoError(t, err)
	assert.Equal(t, "34.0.0", got.Version)
}
