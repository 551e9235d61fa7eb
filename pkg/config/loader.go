package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/settle/pkg/errors"
	"github.com/arthur-debert/settle/pkg/logging"
	"github.com/arthur-debert/settle/pkg/types"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	// SettingsFileName is the root-level settings file
	SettingsFileName = "settle.toml"

	// EnvPrefix prefixes environment overrides. Nested keys are separated
	// by a double underscore: SETTLE_BUILD_CACHE__DIR_NAME.
	EnvPrefix = "SETTLE_"
)

// LoadOptions controls which configuration layers are read
type LoadOptions struct {
	// FS reads the root settings file
	FS types.FS
	// Root is the settings root directory
	Root string
	// UserConfigPath is read from the OS filesystem when it exists.
	// Empty skips the user layer.
	UserConfigPath string
	// SkipEnv disables SETTLE_* overrides
	SkipEnv bool
}

// DefaultUserConfigPath returns the user-level config file path
func DefaultUserConfigPath() string {
	return filepath.Join(xdg.ConfigHome, logging.AppName, "config.toml")
}

// Load reads the full configuration for the tree rooted at root
func Load(fs types.FS, root string) (*Config, error) {
	return LoadWithOptions(LoadOptions{
		FS:             fs,
		Root:           root,
		UserConfigPath: DefaultUserConfigPath(),
	})
}

// Default returns the embedded defaults only
func Default() *Config {
	cfg, err := LoadWithOptions(LoadOptions{SkipEnv: true})
	if err != nil {
		// The embedded defaults are part of the binary
		panic(fmt.Sprintf("invalid embedded defaults: %v", err))
	}
	return cfg
}

// LoadWithOptions loads configuration layers in precedence order
func LoadWithOptions(opts LoadOptions) (*Config, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load defaults")
	}

	// 2. User config
	if opts.UserConfigPath != "" {
		if _, err := os.Stat(opts.UserConfigPath); err == nil {
			if err := k.Load(file.Provider(opts.UserConfigPath), toml.Parser()); err != nil {
				return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load user config").
					WithDetail("path", opts.UserConfigPath)
			}
			logger.Debug().Str("path", opts.UserConfigPath).Msg("Loaded user config")
		}
	}

	// 3. Root settings file
	if opts.FS != nil && opts.Root != "" {
		path := filepath.Join(opts.Root, SettingsFileName)
		data, err := opts.FS.ReadFile(path)
		switch {
		case err == nil:
			if err := k.Load(&rawBytesProvider{bytes: data}, toml.Parser()); err != nil {
				return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to parse settings file").
					WithDetail("path", path)
			}
			logger.Debug().Str("path", path).Msg("Loaded settings file")
		case os.IsNotExist(err):
			logger.Debug().Str("path", path).Msg("No settings file, using defaults")
		default:
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to read settings file").
				WithDetail("path", path)
		}
	}

	// 4. Environment overrides
	if !opts.SkipEnv {
		err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
			return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
		}), nil)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load env vars")
		}
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.BuildCache.DirName == "" {
		return errors.New(errors.ErrConfigValid, "build_cache.dir_name must not be empty")
	}
	if strings.ContainsAny(cfg.BuildCache.DirName, `/\`) {
		return errors.New(errors.ErrConfigValid, "build_cache.dir_name must be a single directory name").
			WithDetail("dir_name", cfg.BuildCache.DirName)
	}
	if cfg.BuildCache.RemoveUnusedEntriesAfterDays < 0 {
		return errors.New(errors.ErrConfigValid, "build_cache.remove_unused_entries_after_days must not be negative")
	}
	if len(cfg.Project.BuildFiles) == 0 {
		return errors.New(errors.ErrConfigValid, "project.build_files must name at least one build file")
	}
	if cfg.Metadata.Readme == "" || cfg.Metadata.Changelog == "" {
		return errors.New(errors.ErrConfigValid, "metadata.readme and metadata.changelog must be set")
	}
	for _, p := range cfg.Project.Include {
		if !strings.HasPrefix(p, types.PathSeparator) {
			return errors.Newf(errors.ErrConfigValid, "project.include entry %q must start with %q", p, types.PathSeparator)
		}
	}
	return nil
}
