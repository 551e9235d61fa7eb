// pkg/errors/errors_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: Memory FS
// PURPOSE: Test codes and details of errors as settle's packages raise them

package errors_test

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/settle/pkg/catalog"
	"github.com/arthur-debert/settle/pkg/config"
	"github.com/arthur-debert/settle/pkg/conventions"
	"github.com/arthur-debert/settle/pkg/enforce"
	"github.com/arthur-debert/settle/pkg/errors"
	"github.com/arthur-debert/settle/pkg/metadata"
	"github.com/arthur-debert/settle/pkg/testutil"
	"github.com/arthur-debert/settle/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogConflictDetails(t *testing.T) {
	libs, err := catalog.New("libs", map[string]types.Coordinate{
		"guava": {Group: "com.google.guava", Artifact: "guava", Version: "33.0.0-jre"},
	})
	require.NoError(t, err)
	tools, err := catalog.New("tools", map[string]types.Coordinate{
		"guava-old": {Group: "com.google.guava", Artifact: "guava", Version: "31.0-jre"},
	})
	require.NoError(t, err)

	_, err = enforce.NewEnforcer([]*catalog.Catalog{libs, tools})
	require.Error(t, err)

	assert.Equal(t, errors.ErrCatalogConflict, errors.GetErrorCode(err))
	details := errors.GetErrorDetails(err)
	assert.Equal(t, "com.google.guava:guava", details["identity"])
	assert.ElementsMatch(t, []string{"33.0.0-jre", "31.0-jre"}, details["versions"])
	assert.Len(t, details["origins"], 2)
	assert.Contains(t, err.Error(), "[CATALOG_CONFLICT]")
}

func TestMalformedChangelogCode(t *testing.T) {
	tt := testutil.NewTestTree(t)
	tt.AddFile(t, "app/CHANGELOG.md", "# Changelog\n\nno released versions\n")

	sync := metadata.NewSynchronizer(tt.FS)
	_, err := sync.SyncChangelog(filepath.Join(tt.Root, "app"))
	require.Error(t, err)

	assert.Equal(t, errors.ErrMetadataFormat, errors.GetErrorCode(err))
	assert.Equal(t, filepath.Join(tt.Root, "app", "CHANGELOG.md"), errors.GetErrorDetails(err)["path"])
}

func TestModuleFailureKeepsCode(t *testing.T) {
	tt := testutil.NewTestTree(t)
	tt.AddModule(t, "app", nil)
	tt.AddFile(t, "app/README.md", "The application.\n")
	tt.AddFile(t, "app/CHANGELOG.md", "## ]1.0[\n")

	cfg := config.Default()
	cfg.Project.Include = []string{":app"}
	project, err := conventions.LoadProject(tt.FS, tt.Root, cfg, func(string) (string, bool) { return "", false })
	require.NoError(t, err)

	_, err = project.Apply()
	require.Error(t, err)

	assert.True(t, errors.IsErrorCode(err, errors.ErrMetadataFormat))
	details := errors.GetErrorDetails(err)
	assert.Equal(t, ":app", details["module"])
	assert.Contains(t, details, "path")
}

func TestWrappedReadFailure(t *testing.T) {
	tt := testutil.NewTestTree(t)

	_, err := tt.FS.ReadFile(filepath.Join(tt.Root, "gradle", "libs.versions.toml"))
	require.Error(t, err)
	wrapped := errors.Wrap(err, errors.ErrFileAccess, "failed to read catalog").
		WithDetail("catalog", "libs")

	assert.True(t, stderrors.Is(wrapped, os.ErrNotExist))
	assert.True(t, stderrors.Is(wrapped, errors.New(errors.ErrFileAccess, "")))
	assert.False(t, stderrors.Is(wrapped, errors.New(errors.ErrFileWrite, "")))

	outer := fmt.Errorf("sync :core: %w", wrapped)
	assert.Equal(t, errors.ErrFileAccess, errors.GetErrorCode(outer))
	assert.Equal(t, "libs", errors.GetErrorDetails(outer)["catalog"])
}

func TestPlainErrors(t *testing.T) {
	plain := stderrors.New("boom")

	assert.Equal(t, errors.ErrUnknown, errors.GetErrorCode(plain))
	assert.Nil(t, errors.GetErrorDetails(plain))
	assert.False(t, errors.IsErrorCode(plain, errors.ErrInternal))
	assert.Nil(t, errors.Wrap(nil, errors.ErrInternal, "nothing to wrap"))
	assert.Nil(t, errors.Wrapf(nil, errors.ErrInternal, "nothing to wrap in %s", ":app"))
}

func TestAliasLookupDetails(t *testing.T) {
	libs, err := catalog.New("libs", map[string]types.Coordinate{
		"slf4j-api": {Group: "org.slf4j", Artifact: "slf4j-api", Version: "2.0.9"},
	})
	require.NoError(t, err)

	_, err = libs.Lookup("logback")
	require.Error(t, err)
	assert.Equal(t, errors.ErrAliasNotFound, errors.GetErrorCode(err))
	assert.Equal(t, map[string]interface{}{"catalog": "libs", "alias": "logback"}, errors.GetErrorDetails(err))
	assert.Equal(t, `[ALIAS_NOT_FOUND] alias "logback" not found in catalog "libs"`, err.Error())
}
