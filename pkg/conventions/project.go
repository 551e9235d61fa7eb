package conventions

import (
	"github.com/arthur-debert/settle/pkg/buildcache"
	"github.com/arthur-debert/settle/pkg/catalog"
	"github.com/arthur-debert/settle/pkg/config"
	"github.com/arthur-debert/settle/pkg/environment"
	"github.com/arthur-debert/settle/pkg/telemetry"
	"github.com/arthur-debert/settle/pkg/tree"
	"github.com/arthur-debert/settle/pkg/types"
)

// Project wires the file-based collaborators of a tree rooted on disk
type Project struct {
	FS     types.FS
	Config *config.Config
	Tree   *tree.Tree
	Env    *environment.EnvironmentConfig
	Cache  buildcache.Store
	Report *telemetry.Report

	catalogs   *catalog.Loader
	getenv     func(string) string
	properties *environment.Properties
}

// LoadProject reads the environment, properties and module tree of root
// and opens the build cache. lookup reads the process environment and
// defaults to os.LookupEnv.
func LoadProject(fs types.FS, root string, cfg *config.Config, lookup func(string) (string, bool)) (*Project, error) {
	getenv, err := environment.Getenv(fs, root, cfg.Project.EnvFile, lookup)
	if err != nil {
		return nil, err
	}
	props, err := environment.LoadProperties(fs, root, cfg.Project.PropertiesFile)
	if err != nil {
		return nil, err
	}
	tr, err := tree.Load(fs, root, cfg)
	if err != nil {
		return nil, err
	}
	env, err := environment.Configure(cfg, tr.Root().Dir, getenv)
	if err != nil {
		return nil, err
	}
	store, err := buildcache.Open(fs, env.BuildCache())
	if err != nil {
		return nil, err
	}

	return &Project{
		FS:     fs,
		Config: cfg,
		Tree:   tr,
		Env:    env,
		Cache:  store,
		Report: telemetry.NewReport(),
		catalogs: &catalog.Loader{
			FS:    fs,
			Root:  tr.Root().Dir,
			Files: cfg.Catalogs.Files,
			Cache: store,
		},
		getenv:     getenv,
		properties: props,
	}, nil
}

// Inputs returns the Apply inputs for the project
func (p *Project) Inputs() Inputs {
	return Inputs{
		Catalogs:   p.catalogs,
		Tree:       p.Tree,
		Getenv:     p.getenv,
		Properties: p.properties,
		FS:         p.FS,
		Config:     p.Config,
		Env:        p.Env,
		Report:     p.Report,
	}
}

// Apply runs the conventions over the project
func (p *Project) Apply() (*Result, error) {
	return Apply(p.Inputs())
}

// Catalogs reads the project's catalogs without applying anything
func (p *Project) Catalogs() ([]*catalog.Catalog, error) {
	return p.catalogs.Catalogs()
}

// Publish writes the build scan report for a run with the given outcome
func (p *Project) Publish(failed bool) (string, error) {
	return p.Report.Publish(p.FS, p.Env, failed)
}
