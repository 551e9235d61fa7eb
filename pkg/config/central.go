package config

// Config is the complete settle configuration for one project tree
type Config struct {
	Project      Project      `koanf:"project"`
	Catalogs     Catalogs     `koanf:"catalogs"`
	Metadata     Metadata     `koanf:"metadata"`
	Repositories Repositories `koanf:"repositories"`
	BuildCache   BuildCache   `koanf:"build_cache"`
	Telemetry    Telemetry    `koanf:"telemetry"`
}

// Project describes the shape of the module tree
type Project struct {
	// Name is the root module name. Empty means the root directory's name.
	Name string `koanf:"name"`
	// Include lists module tree paths such as ":core:api"
	Include []string `koanf:"include"`
	// IncludeGlobs lists directory globs relative to the root; every match
	// that holds a build file becomes a module
	IncludeGlobs []string `koanf:"include_globs"`
	// BuildFiles are the file names that mark a module as buildable
	BuildFiles []string `koanf:"build_files"`
	// PropertiesFile holds root-level properties such as groupId
	PropertiesFile string `koanf:"properties_file"`
	// EnvFile is an optional dotenv file overlaying the process environment
	EnvFile string `koanf:"env_file"`
	// GroupProperty names the root property the group identity derives from
	GroupProperty string `koanf:"group_property"`
}

// Catalogs configures the central version catalog declaration
type Catalogs struct {
	// Files maps catalog names to paths relative to the root
	Files                     map[string]string `koanf:"files"`
	DefaultLibrariesExtension string            `koanf:"default_libraries_extension"`
	DefaultProjectsExtension  string            `koanf:"default_projects_extension"`
}

// Metadata configures the per-module description and change log documents
type Metadata struct {
	Readme    string `koanf:"readme"`
	Changelog string `koanf:"changelog"`
	// Locale is a BCP 47 tag used when capitalizing module names
	Locale string `koanf:"locale"`
}

// Repository is a named artifact repository
type Repository struct {
	Name string `koanf:"name"`
	URL  string `koanf:"url"`
}

// Repositories configures repository search order and policy
type Repositories struct {
	// Declared lists repositories already present before settle runs
	Declared     []string   `koanf:"declared"`
	PluginPortal Repository `koanf:"plugin_portal"`
	Google       Repository `koanf:"google"`
	MavenCentral Repository `koanf:"maven_central"`
	MavenLocal   Repository `koanf:"maven_local"`
	Mode         string     `koanf:"mode"`
	RulesMode    string     `koanf:"rules_mode"`
}

// BuildCache configures the local build cache
type BuildCache struct {
	DirName                      string      `koanf:"dir_name"`
	Enabled                      bool        `koanf:"enabled"`
	Push                         bool        `koanf:"push"`
	RemoveUnusedEntriesAfterDays int         `koanf:"remove_unused_entries_after_days"`
	Remote                       RemoteCache `koanf:"remote"`
}

// RemoteCache is the remote cache slot. It is never contacted unless enabled.
type RemoteCache struct {
	URL                  string `koanf:"url"`
	Enabled              bool   `koanf:"enabled"`
	Push                 bool   `koanf:"push"`
	AllowUntrustedServer bool   `koanf:"allow_untrusted_server"`
}

// Telemetry configures build scan publishing
type Telemetry struct {
	TermsOfServiceURL   string `koanf:"terms_of_service_url"`
	TermsOfServiceAgree string `koanf:"terms_of_service_agree"`
	// CIVariable names the environment variable compared against "true"
	CIVariable       string `koanf:"ci_variable"`
	PublishOnFailure bool   `koanf:"publish_on_failure"`
	// ReportDir is relative to the build cache directory
	ReportDir string `koanf:"report_dir"`
}
