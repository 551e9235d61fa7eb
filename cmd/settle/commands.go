package settle

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/arthur-debert/settle/internal/version"
	"github.com/arthur-debert/settle/pkg/config"
	"github.com/arthur-debert/settle/pkg/conventions"
	"github.com/arthur-debert/settle/pkg/enforce"
	"github.com/arthur-debert/settle/pkg/errors"
	"github.com/arthur-debert/settle/pkg/filesystem"
	"github.com/arthur-debert/settle/pkg/logging"
	"github.com/arthur-debert/settle/pkg/metadata"
	"github.com/arthur-debert/settle/pkg/publish"
	"github.com/arthur-debert/settle/pkg/tree"
	"github.com/arthur-debert/settle/pkg/types"
	"github.com/arthur-debert/settle/pkg/ui/styles"
	"github.com/arthur-debert/settle/pkg/watch"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	initTemplateFormatting()

	var (
		verbosity int
		root      string
	)

	rootCmd := &cobra.Command{
		Use:     "settle",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			initOutput()
			logging.LogCommand(cmd.CommandPath(), args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return fmt.Errorf(MsgErrNoCommand)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVarP(&root, "root", "C", "", MsgFlagRoot)

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "Commands:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "inspect",
		Title: "Inspection:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "misc",
		Title: "Misc:",
	})
	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(newSyncCmd())
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newPomCmd())
	rootCmd.AddCommand(newCleanCmd())
	rootCmd.AddCommand(newResolveCmd())
	rootCmd.AddCommand(newCatalogCmd())
	rootCmd.AddCommand(newShowCmd())
	rootCmd.AddCommand(newEnvCmd())
	rootCmd.AddCommand(newGenConfigCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

// watchIgnores keeps the build cache and publication outputs from
// retriggering a watched sync
func watchIgnores(cfg *config.Config) []string {
	cache := strings.Trim(filepath.ToSlash(cfg.BuildCache.DirName), "/")
	return []string{
		"**/" + cache + "/**",
		"**/" + publish.PublicationsDir + "/**",
	}
}

// projectRoot returns the absolute tree root from --root or the working directory
func projectRoot(cmd *cobra.Command) (string, error) {
	root, _ := cmd.Root().PersistentFlags().GetString("root")
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf(MsgErrWorkingDir, err)
		}
		root = wd
	}
	return filepath.Abs(root)
}

// openProject loads configuration and the module tree on the OS filesystem
func openProject(cmd *cobra.Command) (*conventions.Project, error) {
	root, err := projectRoot(cmd)
	if err != nil {
		return nil, err
	}
	fs := filesystem.NewOS()
	cfg, err := config.Load(fs, root)
	if err != nil {
		return nil, err
	}
	log.Info().Str("root", root).Msg("Opening project")
	return conventions.LoadProject(fs, root, cfg, nil)
}

// applyProject opens the project and applies the conventions. The build
// scan is published when Apply fails.
func applyProject(cmd *cobra.Command) (*conventions.Project, *conventions.Result, error) {
	project, err := openProject(cmd)
	if err != nil {
		return nil, nil, err
	}
	result, err := project.Apply()
	if err != nil {
		publishScan(cmd, project, true)
		return nil, nil, err
	}
	return project, result, nil
}

func publishScan(cmd *cobra.Command, project *conventions.Project, failed bool) {
	path, err := project.Publish(failed)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to publish build scan")
		return
	}
	if path != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), MsgScanWritten, path)
	}
}

// moduleCompletion completes module tree paths
func moduleCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	project, err := openProject(cmd)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var paths []string
	for _, m := range project.Tree.Modules() {
		paths = append(paths, m.Path)
	}
	return paths, cobra.ShellCompDirectiveNoFileComp
}

// selectModules returns the named module, or every module when no name is given
func selectModules(project *conventions.Project, args []string) ([]*types.Module, error) {
	if len(args) == 0 {
		return project.Tree.Modules(), nil
	}
	m, err := project.Tree.Find(args[0])
	if err != nil {
		return nil, err
	}
	return []*types.Module{m}, nil
}

func runSync(cmd *cobra.Command) error {
	defer logging.LogDuration(time.Now(), "sync")

	project, result, err := applyProject(cmd)
	if err != nil {
		return err
	}
	if err := renderModules(cmd.OutOrStdout(), result.Modules); err != nil {
		return err
	}
	publishScan(cmd, project, false)
	return nil
}

func newSyncCmd() *cobra.Command {
	var watchChanges bool

	cmd := &cobra.Command{
		Use:     "sync",
		Short:   MsgSyncShort,
		Long:    MsgSyncLong,
		Example: MsgSyncExample,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runSync(cmd); err != nil {
				return err
			}
			if !watchChanges {
				return nil
			}

			root, err := projectRoot(cmd)
			if err != nil {
				return err
			}
			cfg, err := config.Load(filesystem.NewOS(), root)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w, err := watch.New(watch.Config{
				Root:     root,
				Patterns: tree.WatchPatterns(cfg),
				Ignore:   watchIgnores(cfg),
				OnChange: func(ctx context.Context, changed []string) error {
					fmt.Fprintf(cmd.OutOrStdout(), MsgSyncChanged, fmt.Sprint(changed))
					return runSync(cmd)
				},
			})
			if err != nil {
				return err
			}
			return w.Run(ctx)
		},
	}
	cmd.Flags().BoolVarP(&watchChanges, "watch", "w", false, MsgFlagWatch)
	return cmd
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "check",
		Short:   MsgCheckShort,
		Long:    MsgCheckLong,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			project, result, err := applyProject(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			contexts, conflicts := 0, 0
			for _, m := range result.Modules {
				for _, rc := range m.Contexts {
					contexts++
					if _, err := enforce.Resolve(rc); err != nil {
						if !errors.IsErrorCode(err, errors.ErrUnresolvedConflict) {
							return err
						}
						conflicts++
						project.Report.Error(err)
						fmt.Fprintln(out, styles.Render("Error", conflictLine(errors.GetErrorDetails(err))))
					}
				}
			}

			publishScan(cmd, project, conflicts > 0)
			if conflicts > 0 {
				return errors.Newf(errors.ErrUnresolvedConflict, MsgCheckFailed, conflicts).
					WithDetail("conflicts", conflicts)
			}
			fmt.Fprintf(out, MsgCheckPassed, contexts)
			return nil
		},
	}
}

func newResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "resolve [module]",
		Short:             MsgResolveShort,
		Example:           MsgResolveExample,
		GroupID:           "inspect",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: moduleCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			project, _, err := applyProject(cmd)
			if err != nil {
				return err
			}
			modules, err := selectModules(project, args)
			if err != nil {
				return err
			}
			for _, m := range modules {
				scopes, err := conventions.ResolveModule(m)
				if err != nil {
					return err
				}
				renderResolution(cmd.OutOrStdout(), m, scopes)
			}
			return nil
		},
	}
}

func newCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "catalog",
		Short:   MsgCatalogShort,
		GroupID: "inspect",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			project, err := openProject(cmd)
			if err != nil {
				return err
			}
			catalogs, err := project.Catalogs()
			if err != nil {
				return err
			}
			return renderCatalogs(cmd.OutOrStdout(), catalogs)
		},
	}
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "show <module>",
		Short:             MsgShowShort,
		Long:              MsgShowLong,
		GroupID:           "inspect",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: moduleCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			project, err := openProject(cmd)
			if err != nil {
				return err
			}
			m, err := project.Tree.Find(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			readme, err := project.FS.ReadFile(m.GetFilePath(project.Config.Metadata.Readme))
			switch {
			case err == nil:
				fmt.Fprint(out, renderMarkdown(string(readme)))
			case os.IsNotExist(err):
				fmt.Fprintln(out, styles.Render("Module", m.Path))
			default:
				return errors.Wrap(err, errors.ErrFileAccess, "failed to read description document")
			}

			var entries []metadata.Entry
			changelog, err := project.FS.ReadFile(m.GetFilePath(project.Config.Metadata.Changelog))
			switch {
			case err == nil:
				entries = metadata.ParseChangelog(string(changelog))
			case !os.IsNotExist(err):
				return errors.Wrap(err, errors.ErrFileAccess, "failed to read change log")
			}
			renderReleases(out, entries)
			return nil
		},
	}
}

func newPomCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "pom [module]",
		Short:             MsgPomShort,
		Long:              MsgPomLong,
		GroupID:           "core",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: moduleCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			project, _, err := applyProject(cmd)
			if err != nil {
				return err
			}
			modules, err := selectModules(project, args)
			if err != nil {
				return err
			}
			if len(args) == 1 && !modules[0].HasBuildFile() {
				return errors.Newf(errors.ErrInvalidInput, MsgModuleNotBuilt, modules[0].Path).
					WithDetail("module", modules[0].Path)
			}

			for _, m := range modules {
				if !m.HasBuildFile() {
					continue
				}
				scopes, err := conventions.ResolveModule(m)
				if err != nil {
					return err
				}
				path, err := publish.WritePOM(project.FS, m, scopes)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), MsgPomWritten, path)
			}
			return nil
		},
	}
}

func newCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "clean",
		Short:   MsgCleanShort,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, result, err := applyProject(cmd)
			if err != nil {
				return err
			}
			if err := result.RunTask(conventions.CleanTask); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), MsgCleaned, result.Env.BuildCache().Dir)
			return nil
		},
	}
}

func newEnvCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "env",
		Short:   MsgEnvShort,
		GroupID: "inspect",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			project, err := openProject(cmd)
			if err != nil {
				return err
			}
			renderEnvironment(cmd.OutOrStdout(), project.Env)
			return nil
		},
	}
}

func newGenConfigCmd() *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:     "gen-config",
		Short:   MsgGenConfigShort,
		Long:    MsgGenConfigLong,
		Example: MsgGenConfigExample,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !write {
				fmt.Fprintln(cmd.OutOrStdout(), config.GenerateSettingsContent())
				return nil
			}
			root, err := projectRoot(cmd)
			if err != nil {
				return err
			}
			path, err := config.WriteSettings(filesystem.NewOS(), root)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), MsgSettingsWritten, path)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, MsgFlagWrite)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), MsgVersionFormat, version.Version, version.Commit, version.Date)
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		GroupID:               "misc",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}
