package environment

import (
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/settle/pkg/config"
	"github.com/arthur-debert/settle/pkg/errors"
	"github.com/arthur-debert/settle/pkg/logging"
	"github.com/arthur-debert/settle/pkg/types"
)

// RepositoriesMode controls whether modules may declare repositories
type RepositoriesMode string

const (
	FailOnProjectRepos RepositoriesMode = "fail_on_project_repos"
	PreferProject      RepositoriesMode = "prefer_project"
	PreferSettings     RepositoriesMode = "prefer_settings"
)

// RulesMode controls whose component metadata rules win
type RulesMode string

const (
	RulesPreferProject  RulesMode = "prefer_project"
	RulesPreferSettings RulesMode = "prefer_settings"
)

// Repository is one entry of the repository search order
type Repository struct {
	Name string
	URL  string
}

// RemoteCache is the remote cache slot
type RemoteCache struct {
	URL                  string
	Enabled              bool
	Push                 bool
	AllowUntrustedServer bool
}

// BuildCache is the local build cache policy
type BuildCache struct {
	Dir                          string
	Enabled                      bool
	Push                         bool
	RemoveUnusedEntriesAfterDays int
	Remote                       RemoteCache
}

// Telemetry holds the build scan publishing flags
type Telemetry struct {
	TermsOfServiceURL   string
	TermsOfServiceAgree string
	PublishAlways       bool
	PublishOnFailure    bool
	// ReportDir is where textfile reports are written
	ReportDir string
}

// EnvironmentConfig is built once per run and never changes afterwards.
// Accessors return copies.
type EnvironmentConfig struct {
	settingsRoot              string
	declared                  []string
	repositories              []Repository
	repositoriesMode          RepositoriesMode
	rulesMode                 RulesMode
	defaultLibrariesExtension string
	defaultProjectsExtension  string
	buildCache                BuildCache
	telemetry                 Telemetry
}

// Configure derives the environment from configuration and the process
// environment
func Configure(cfg *config.Config, settingsRoot string, getenv func(string) string) (*EnvironmentConfig, error) {
	logger := logging.GetLogger("environment")

	mode := RepositoriesMode(cfg.Repositories.Mode)
	switch mode {
	case FailOnProjectRepos, PreferProject, PreferSettings:
	default:
		return nil, errors.Newf(errors.ErrConfigValid, "unknown repositories mode %q", cfg.Repositories.Mode)
	}
	rules := RulesMode(cfg.Repositories.RulesMode)
	switch rules {
	case RulesPreferProject, RulesPreferSettings:
	default:
		return nil, errors.Newf(errors.ErrConfigValid, "unknown rules mode %q", cfg.Repositories.RulesMode)
	}

	env := &EnvironmentConfig{
		settingsRoot:              settingsRoot,
		declared:                  append([]string(nil), cfg.Repositories.Declared...),
		repositories:              repositories(cfg.Repositories),
		repositoriesMode:          mode,
		rulesMode:                 rules,
		defaultLibrariesExtension: cfg.Catalogs.DefaultLibrariesExtension,
		defaultProjectsExtension:  cfg.Catalogs.DefaultProjectsExtension,
	}

	cacheDir := filepath.Join(settingsRoot, cfg.BuildCache.DirName)
	env.buildCache = BuildCache{
		Dir:                          cacheDir,
		Enabled:                      cfg.BuildCache.Enabled,
		Push:                         cfg.BuildCache.Push,
		RemoveUnusedEntriesAfterDays: cfg.BuildCache.RemoveUnusedEntriesAfterDays,
		Remote: RemoteCache{
			URL:                  cfg.BuildCache.Remote.URL,
			Enabled:              cfg.BuildCache.Remote.Enabled,
			Push:                 cfg.BuildCache.Remote.Push,
			AllowUntrustedServer: cfg.BuildCache.Remote.AllowUntrustedServer,
		},
	}

	env.telemetry = Telemetry{
		TermsOfServiceURL:   cfg.Telemetry.TermsOfServiceURL,
		TermsOfServiceAgree: cfg.Telemetry.TermsOfServiceAgree,
		PublishAlways:       getenv(cfg.Telemetry.CIVariable) == "true",
		PublishOnFailure:    cfg.Telemetry.PublishOnFailure,
		ReportDir:           filepath.Join(cacheDir, cfg.Telemetry.ReportDir),
	}

	logger.Debug().
		Str("settingsRoot", settingsRoot).
		Int("repositories", len(env.repositories)).
		Str("buildCache", cacheDir).
		Bool("publishAlways", env.telemetry.PublishAlways).
		Msg("Environment configured")
	return env, nil
}

func repositories(cfg config.Repositories) []Repository {
	declared := make(map[string]bool, len(cfg.Declared))
	for _, name := range cfg.Declared {
		declared[name] = true
	}

	var out []Repository
	if !declared[cfg.PluginPortal.Name] {
		out = append(out, Repository(cfg.PluginPortal))
	}
	out = append(out, Repository(cfg.Google), Repository(cfg.MavenCentral))

	local := Repository(cfg.MavenLocal)
	if local.URL == "" {
		local.URL = "file://" + filepath.ToSlash(filepath.Join(xdg.Home, ".m2", "repository"))
	}
	return append(out, local)
}

// SettingsRoot returns the root directory of the tree
func (e *EnvironmentConfig) SettingsRoot() string {
	return e.settingsRoot
}

// Declared returns repository names present before settle ran
func (e *EnvironmentConfig) Declared() []string {
	return append([]string(nil), e.declared...)
}

// Repositories returns the repositories settle adds, in search order
func (e *EnvironmentConfig) Repositories() []Repository {
	return append([]Repository(nil), e.repositories...)
}

// RepositoriesMode returns the module repository policy
func (e *EnvironmentConfig) RepositoriesMode() RepositoriesMode {
	return e.repositoriesMode
}

// RulesMode returns the component metadata rules policy
func (e *EnvironmentConfig) RulesMode() RulesMode {
	return e.rulesMode
}

// DefaultLibrariesExtension is the name of the default libraries catalog
func (e *EnvironmentConfig) DefaultLibrariesExtension() string {
	return e.defaultLibrariesExtension
}

// DefaultProjectsExtension is the name of the type-safe project accessor
func (e *EnvironmentConfig) DefaultProjectsExtension() string {
	return e.defaultProjectsExtension
}

// BuildCache returns the local build cache policy
func (e *EnvironmentConfig) BuildCache() BuildCache {
	return e.buildCache
}

// Telemetry returns the telemetry flags
func (e *EnvironmentConfig) Telemetry() Telemetry {
	return e.telemetry
}

// ShouldPublish reports whether a build scan is published for a build
// with the given outcome
func (e *EnvironmentConfig) ShouldPublish(failed bool) bool {
	return e.telemetry.PublishAlways || (failed && e.telemetry.PublishOnFailure)
}

// CheckModuleRepositories enforces the repositories mode for one module
func (e *EnvironmentConfig) CheckModuleRepositories(m *types.Module) error {
	if len(m.Repositories) == 0 {
		return nil
	}
	switch e.repositoriesMode {
	case FailOnProjectRepos:
		return errors.Newf(errors.ErrProjectRepositories,
			"module %s declares repositories but repositories are managed centrally", m.Path).
			WithDetail("module", m.Path).
			WithDetail("repositories", append([]string(nil), m.Repositories...))
	case PreferSettings:
		logger := logging.ForModule("environment", m.Path)
		logger.Warn().
			Strs("repositories", m.Repositories).
			Msg("Ignoring module repositories in favour of central ones")
	}
	return nil
}
