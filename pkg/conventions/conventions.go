package conventions

import (
	stderrors "errors"
	"sort"

	"github.com/arthur-debert/settle/pkg/buildcache"
	"github.com/arthur-debert/settle/pkg/catalog"
	"github.com/arthur-debert/settle/pkg/config"
	"github.com/arthur-debert/settle/pkg/enforce"
	"github.com/arthur-debert/settle/pkg/environment"
	"github.com/arthur-debert/settle/pkg/errors"
	"github.com/arthur-debert/settle/pkg/groupid"
	"github.com/arthur-debert/settle/pkg/logging"
	"github.com/arthur-debert/settle/pkg/metadata"
	"github.com/arthur-debert/settle/pkg/telemetry"
	"github.com/arthur-debert/settle/pkg/types"
	"golang.org/x/text/language"
)

// CleanTask is the name of the root cleanup task
const CleanTask = "clean"

// CatalogSource enumerates the central catalogs
type CatalogSource interface {
	Catalogs() ([]*catalog.Catalog, error)
}

// ModuleTree is the ordered module set of a project, root first
type ModuleTree interface {
	Root() *types.Module
	Modules() []*types.Module
}

// Inputs is everything Apply reads
type Inputs struct {
	Catalogs   CatalogSource
	Tree       ModuleTree
	Getenv     func(string) string
	Properties types.PropertyReader
	FS         types.FS
	Config     *config.Config

	// Env is configured from Config when nil
	Env *environment.EnvironmentConfig
	// Report is optional
	Report *telemetry.Report
}

// Task is a named action registered during Apply
type Task func() error

// Result is the configured tree
type Result struct {
	Env      *environment.EnvironmentConfig
	Root     *types.Module
	Modules  []*types.Module
	Catalogs []*catalog.Catalog
	Enforcer *enforce.Enforcer

	tasks map[string]Task
}

// Apply runs the conventions over the whole tree
func Apply(in Inputs) (*Result, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	logger := logging.GetLogger("conventions")
	done := logging.LogOperationStart(logger, "apply")
	defer done()

	root := in.Tree.Root()
	env := in.Env
	if env == nil {
		var err error
		if env, err = environment.Configure(in.Config, root.Dir, in.Getenv); err != nil {
			return nil, in.fail(err)
		}
	}

	catalogs, err := in.Catalogs.Catalogs()
	if err != nil {
		return nil, in.fail(err)
	}
	enforcer, err := enforce.NewEnforcer(catalogs)
	if err != nil {
		return nil, in.fail(err)
	}

	r := &Result{
		Env:      env,
		Root:     root,
		Modules:  in.Tree.Modules(),
		Catalogs: catalogs,
		Enforcer: enforcer,
		tasks:    map[string]Task{},
	}
	cacheDir := env.BuildCache().Dir
	r.register(CleanTask, func() error {
		return buildcache.Clean(in.FS, cacheDir)
	})

	sync := metadata.NewSynchronizer(in.FS,
		metadata.WithDocuments(in.Config.Metadata.Readme, in.Config.Metadata.Changelog),
		metadata.WithLocale(locale(in.Config.Metadata.Locale)),
		metadata.WithGroupProperty(in.Config.Project.GroupProperty),
	)

	contexts := 0
	for _, m := range r.Modules {
		if err := configureModule(env, sync, enforcer, m, root, in.Properties); err != nil {
			return nil, in.fail(annotate(err, m))
		}
		contexts += len(m.Contexts)
		if m.HasBuildFile() && in.Report != nil {
			in.Report.ModuleSynced()
		}
	}

	if in.Report != nil {
		in.Report.Modules(len(r.Modules))
		in.Report.Enforced(contexts, len(enforcer.Directives()))
	}
	logger.Info().
		Int("modules", len(r.Modules)).
		Int("contexts", contexts).
		Int("directives", len(enforcer.Directives())).
		Msg("Conventions applied")
	return r, nil
}

func configureModule(env *environment.EnvironmentConfig, sync *metadata.Synchronizer, enforcer *enforce.Enforcer, m, root *types.Module, props types.PropertyReader) error {
	if err := env.CheckModuleRepositories(m); err != nil {
		return err
	}

	if m.HasBuildFile() {
		if err := sync.SyncMetadata(m, root, props); err != nil {
			return err
		}
	} else {
		groupid.Apply(m, root, props, sync.GroupProperty)
	}

	for _, rc := range m.Contexts {
		enforcer.Attach(rc)
	}
	return nil
}

// annotate attaches the module path to err, keeping its code
func annotate(err error, m *types.Module) error {
	var se *errors.SettleError
	if stderrors.As(err, &se) {
		return se.WithDetail("module", m.Path)
	}
	return errors.Wrapf(err, errors.ErrInternal, "module %s", m.Path).WithDetail("module", m.Path)
}

func (in Inputs) fail(err error) error {
	if in.Report != nil {
		in.Report.Error(err)
	}
	return err
}

func (in Inputs) validate() error {
	switch {
	case in.Catalogs == nil:
		return errors.New(errors.ErrInvalidInput, "catalog source is required")
	case in.Tree == nil || in.Tree.Root() == nil:
		return errors.New(errors.ErrInvalidInput, "module tree is required")
	case in.Getenv == nil:
		return errors.New(errors.ErrInvalidInput, "environment reader is required")
	case in.Properties == nil:
		return errors.New(errors.ErrInvalidInput, "property reader is required")
	case in.FS == nil:
		return errors.New(errors.ErrInvalidInput, "filesystem is required")
	case in.Config == nil:
		return errors.New(errors.ErrInvalidInput, "configuration is required")
	}
	return nil
}

func locale(tag string) language.Tag {
	t, err := language.Parse(tag)
	if err != nil {
		logger := logging.GetLogger("conventions")
		logger.Warn().Str("locale", tag).Msg("Unknown locale, using und")
		return language.Und
	}
	return t
}

func (r *Result) register(name string, t Task) {
	r.tasks[name] = t
}

// TaskNames lists the registered tasks
func (r *Result) TaskNames() []string {
	names := make([]string, 0, len(r.tasks))
	for n := range r.tasks {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// RunTask runs a registered task by name
func (r *Result) RunTask(name string) error {
	t, ok := r.tasks[name]
	if !ok {
		return errors.Newf(errors.ErrNotFound, "no task named %q", name).
			WithDetail("task", name)
	}
	logger := logging.GetLogger("conventions")
	logger.Debug().Str("task", name).Msg("Running task")
	return t()
}

// Resolve runs the resolution pass over every context of every module.
// It returns the selected coordinates per module path and scope.
func (r *Result) Resolve() (map[string]map[string][]types.Coordinate, error) {
	out := make(map[string]map[string][]types.Coordinate, len(r.Modules))
	for _, m := range r.Modules {
		scopes, err := ResolveModule(m)
		if err != nil {
			return nil, err
		}
		out[m.Path] = scopes
	}
	return out, nil
}

// ResolveModule runs the resolution pass for one module
func ResolveModule(m *types.Module) (map[string][]types.Coordinate, error) {
	scopes := make(map[string][]types.Coordinate, len(m.Contexts))
	for _, rc := range m.Contexts {
		coords, err := enforce.Resolve(rc)
		if err != nil {
			return nil, err
		}
		scopes[rc.Scope] = coords
	}
	return scopes, nil
}
