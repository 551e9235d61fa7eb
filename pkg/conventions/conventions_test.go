// pkg/conventions/conventions_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: Memory FS
// PURPOSE: Test the whole-tree conventions pass

package conventions_test

import (
	"testing"

	"github.com/arthur-debert/settle/pkg/catalog"
	"github.com/arthur-debert/settle/pkg/config"
	"github.com/arthur-debert/settle/pkg/conventions"
	"github.com/arthur-debert/settle/pkg/errors"
	"github.com/arthur-debert/settle/pkg/telemetry"
	"github.com/arthur-debert/settle/pkg/testutil"
	"github.com/arthur-debert/settle/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const libs = `[libraries]
guava = "com.google.guava:guava:33.0.0-jre"
slf4j = "org.slf4j:slf4j-api:2.0.9"
`

type staticTree struct {
	root    *types.Module
	modules []*types.Module
}

func (s staticTree) Root() *types.Module      { return s.root }
func (s staticTree) Modules() []*types.Module { return s.modules }

type staticCatalogs []*catalog.Catalog

func (s staticCatalogs) Catalogs() ([]*catalog.Catalog, error) { return s, nil }

func noEnv(string) (string, bool) { return "", false }

func sampleProject(t *testing.T) (*testutil.TestTree, *config.Config) {
	t.Helper()

	tt := testutil.NewTestTree(t)
	tt.AddFile(t, "gradle/libs.versions.toml", libs)
	tt.AddFile(t, "gradle.properties", "groupId=com.example\n")
	tt.AddModule(t, "core/api", map[string][]string{
		"implementation": {"com.google.guava:guava:31.0-jre"},
	})
	tt.AddModule(t, "app", nil)
	tt.AddFile(t, "app/README.md", "The application.\n")
	tt.AddFile(t, "app/CHANGELOG.md", "# Changelog\n\n## [1.4.2] - 2024-01-01\n")

	cfg := config.Default()
	cfg.Project.Include = []string{":app", ":core:api"}
	return tt, cfg
}

func TestProjectApply(t *testing.T) {
	tt, cfg := sampleProject(t)

	project, err := conventions.LoadProject(tt.FS, tt.Root, cfg, noEnv)
	require.NoError(t, err)
	result, err := project.Apply()
	require.NoError(t, err)

	assert.Len(t, result.Modules, 4)
	assert.Equal(t, []string{"clean"}, result.TaskNames())
	assert.Len(t, result.Enforcer.Directives(), 2)

	byPath := map[string]*types.Module{}
	for _, m := range result.Modules {
		byPath[m.Path] = m
	}

	app := byPath[":app"]
	assert.Equal(t, "The application.", app.Config.Description)
	assert.Equal(t, "1.4.2", app.Config.Version)
	assert.Equal(t, "com.example.root", app.Config.Group)
	assert.Equal(t, "# App\n\nThe application.\n", tt.ReadFile(t, "app/README.md"))

	api := byPath[":core:api"]
	assert.Equal(t, "0.0.0", api.Config.Version)
	assert.Equal(t, "com.example.root.core", api.Config.Group)
	assert.True(t, tt.Exists("core/api/CHANGELOG.md"))

	core := byPath[":core"]
	assert.Equal(t, "com.example.root", core.Config.Group, "group is derived for folders too")
	assert.False(t, tt.Exists("core/README.md"), "folders get no documents")

	root := byPath[":"]
	assert.Empty(t, root.Config.Group)

	rc := api.Context("implementation")
	require.NotNil(t, rc)
	assert.True(t, rc.FailOnVersionConflict)
	v, ok := rc.ForcedVersion(types.Identity{Group: "org.slf4j", Artifact: "slf4j-api"})
	assert.True(t, ok)
	assert.Equal(t, "2.0.9", v)

	resolved, err := result.Resolve()
	require.NoError(t, err)
	assert.Equal(t, []types.Coordinate{{Group: "com.google.guava", Artifact: "guava", Version: "33.0.0-jre"}},
		resolved[":core:api"]["implementation"])

	assert.True(t, tt.Exists("build/cache"))
	require.NoError(t, result.RunTask(conventions.CleanTask))
	assert.False(t, tt.Exists("build"))
	require.NoError(t, result.RunTask(conventions.CleanTask))

	err = result.RunTask("assemble")
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
}

func TestProjectApply_Idempotent(t *testing.T) {
	tt, cfg := sampleProject(t)

	project, err := conventions.LoadProject(tt.FS, tt.Root, cfg, noEnv)
	require.NoError(t, err)
	_, err = project.Apply()
	require.NoError(t, err)

	files := []string{"app/README.md", "app/CHANGELOG.md", "core/api/README.md", "core/api/CHANGELOG.md"}
	before := map[string]string{}
	for _, f := range files {
		before[f] = testutil.GetTestChecksum(tt.ReadFile(t, f))
	}

	project, err = conventions.LoadProject(tt.FS, tt.Root, cfg, noEnv)
	require.NoError(t, err)
	_, err = project.Apply()
	require.NoError(t, err)

	for _, f := range files {
		assert.Equal(t, before[f], testutil.GetTestChecksum(tt.ReadFile(t, f)), f)
	}
}

func TestApply_ProjectRepositoriesFail(t *testing.T) {
	tt, cfg := sampleProject(t)
	tt.AddFile(t, "app/build.toml", "repositories = [\"https://jitpack.io\"]\n")

	project, err := conventions.LoadProject(tt.FS, tt.Root, cfg, noEnv)
	require.NoError(t, err)
	_, err = project.Apply()

	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrProjectRepositories))
	assert.Equal(t, ":app", errors.GetErrorDetails(err)["module"])
}

func TestApply_FailFastWithModuleContext(t *testing.T) {
	tt, cfg := sampleProject(t)
	tt.AddFile(t, "app/CHANGELOG.md", "# Changelog\n\nno entries\n")

	project, err := conventions.LoadProject(tt.FS, tt.Root, cfg, noEnv)
	require.NoError(t, err)
	_, err = project.Apply()

	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrMetadataFormat))
	assert.Equal(t, ":app", errors.GetErrorDetails(err)["module"])
	assert.False(t, tt.Exists("core/api/README.md"), "modules after the failing one are not visited")
}

func TestApply_CatalogConflict(t *testing.T) {
	tt := testutil.NewTestTree(t)
	root := types.NewModule("root", tt.Root, types.PathSeparator)
	a, err := catalog.New("a", map[string]types.Coordinate{"guava": {Group: "g", Artifact: "guava", Version: "1"}})
	require.NoError(t, err)
	b, err := catalog.New("b", map[string]types.Coordinate{"guava": {Group: "g", Artifact: "guava", Version: "2"}})
	require.NoError(t, err)

	report := telemetry.NewReport()
	_, err = conventions.Apply(conventions.Inputs{
		Catalogs:   staticCatalogs{a, b},
		Tree:       staticTree{root: root, modules: []*types.Module{root}},
		Getenv:     func(string) string { return "" },
		Properties: types.PropertyMap{},
		FS:         tt.FS,
		Config:     config.Default(),
		Report:     report,
	})

	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCatalogConflict))
}

func TestApply_ZeroDependencyModules(t *testing.T) {
	tt := testutil.NewTestTree(t)
	tt.AddModule(t, "docs", nil)

	root := types.NewModule("root", tt.Root, types.PathSeparator)
	docs := types.NewModule("docs", tt.Root+"/docs", ":docs")
	docs.BuildFile = "build.toml"
	rc := docs.AddContext("implementation", nil)

	c, err := catalog.New("libs", map[string]types.Coordinate{"guava": {Group: "g", Artifact: "guava", Version: "1"}})
	require.NoError(t, err)

	_, err = conventions.Apply(conventions.Inputs{
		Catalogs:   staticCatalogs{c},
		Tree:       staticTree{root: root, modules: []*types.Module{root, docs}},
		Getenv:     func(string) string { return "" },
		Properties: types.PropertyMap{},
		FS:         tt.FS,
		Config:     config.Default(),
	})
	require.NoError(t, err)
	assert.True(t, rc.FailOnVersionConflict)
	assert.Len(t, rc.Forced(), 1)
}

func TestApply_MissingInputs(t *testing.T) {
	_, err := conventions.Apply(conventions.Inputs{})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}
