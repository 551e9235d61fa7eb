package settle

import (
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/settle/pkg/catalog"
	"github.com/arthur-debert/settle/pkg/environment"
	"github.com/arthur-debert/settle/pkg/metadata"
	"github.com/arthur-debert/settle/pkg/types"
	"github.com/arthur-debert/settle/pkg/ui/styles"
	"github.com/charmbracelet/glamour"
	"github.com/pterm/pterm"
)

func renderTable(w io.Writer, data pterm.TableData) error {
	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, out)
	return err
}

func orEmpty(s string) string {
	if s == "" {
		return MsgEmptyValue
	}
	return s
}

// renderModules lists the synchronized metadata of modules with a build file
func renderModules(w io.Writer, modules []*types.Module) error {
	data := pterm.TableData{{"Module", "Version", "Group", "Description"}}
	for _, m := range modules {
		if !m.HasBuildFile() {
			continue
		}
		data = append(data, []string{
			m.Path,
			orEmpty(m.Config.Version),
			orEmpty(m.Config.Group),
			orEmpty(m.Config.Description),
		})
	}
	if len(data) == 1 {
		_, err := fmt.Fprintln(w, MsgNoModules)
		return err
	}
	return renderTable(w, data)
}

// renderResolution prints the selected coordinates of one module per scope
func renderResolution(w io.Writer, m *types.Module, scopes map[string][]types.Coordinate) {
	fmt.Fprintln(w, styles.Render("Module", m.Path))
	if len(m.Contexts) == 0 {
		fmt.Fprintln(w, styles.Render("Indent", styles.Render("Muted", MsgNoDependencies)))
		return
	}
	for _, rc := range m.Contexts {
		fmt.Fprintln(w, styles.Render("Indent", styles.Render("Scope", rc.Scope)))
		for _, c := range scopes[rc.Scope] {
			line := styles.Render("Coordinate", c.String())
			if v, ok := rc.ForcedVersion(c.Identity()); ok && v == c.Version {
				line += styles.Render("Forced", MsgForcedMarker)
			}
			fmt.Fprintln(w, styles.Render("DoubleIndent", line))
		}
	}
}

// renderCatalogs lists every alias of every catalog
func renderCatalogs(w io.Writer, catalogs []*catalog.Catalog) error {
	data := pterm.TableData{{"Catalog", "Alias", "Coordinate"}}
	for _, c := range catalogs {
		for _, alias := range c.Aliases() {
			coord, err := c.Lookup(alias)
			if err != nil {
				return err
			}
			data = append(data, []string{c.Name(), alias, coord.String()})
		}
	}
	if len(data) == 1 {
		_, err := fmt.Fprintln(w, MsgNoCatalogs)
		return err
	}
	return renderTable(w, data)
}

func label(w io.Writer, name, value string) {
	fmt.Fprintln(w, styles.Render("Label", name)+value)
}

// renderEnvironment prints the configured build environment
func renderEnvironment(w io.Writer, env *environment.EnvironmentConfig) {
	fmt.Fprintln(w, styles.Render("Header", "Repositories"))
	label(w, "mode", string(env.RepositoriesMode()))
	label(w, "rules", string(env.RulesMode()))
	for _, r := range env.Repositories() {
		fmt.Fprintln(w, styles.Render("Indent", fmt.Sprintf(MsgRepositoryEntry, r.Name, styles.Render("Muted", r.URL))))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, styles.Render("Header", "Catalogs"))
	label(w, "libraries", env.DefaultLibrariesExtension())
	label(w, "projects", env.DefaultProjectsExtension())

	bc := env.BuildCache()
	fmt.Fprintln(w)
	fmt.Fprintln(w, styles.Render("Header", "Build cache"))
	label(w, "directory", bc.Dir)
	label(w, "enabled", fmt.Sprint(bc.Enabled))
	label(w, "push", fmt.Sprint(bc.Push))
	label(w, "retention", fmt.Sprintf("%d days", bc.RemoveUnusedEntriesAfterDays))
	label(w, "remote", fmt.Sprintf("%s (enabled %v)", orEmpty(bc.Remote.URL), bc.Remote.Enabled))

	tel := env.Telemetry()
	fmt.Fprintln(w)
	fmt.Fprintln(w, styles.Render("Header", "Telemetry"))
	label(w, "terms", tel.TermsOfServiceURL)
	label(w, "agree", tel.TermsOfServiceAgree)
	label(w, "always", fmt.Sprint(tel.PublishAlways))
	label(w, "on failure", fmt.Sprint(tel.PublishOnFailure))
	label(w, "reports", tel.ReportDir)
}

// renderMarkdown renders a description document for the terminal. Plain
// text is returned when the renderer cannot be built.
func renderMarkdown(content string) string {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(80)}
	if stdoutIsTerminal() {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle("notty"))
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return content
	}
	out, err := r.Render(content)
	if err != nil {
		return content
	}
	return out
}

// renderReleases lists change log entries, most recent first
func renderReleases(w io.Writer, entries []metadata.Entry) {
	fmt.Fprintln(w, styles.Render("Header", "Releases"))
	if len(entries) == 0 {
		fmt.Fprintln(w, styles.Render("Muted", MsgNoReleases))
		return
	}
	for _, e := range entries {
		fmt.Fprintln(w, styles.Render("Indent", fmt.Sprintf(MsgReleaseFormat, e.Version, styles.Render("Muted", e.Date))))
	}
}

// conflictLine formats one unresolved conflict from its error details
func conflictLine(details map[string]interface{}) string {
	versions := fmt.Sprint(details["versions"])
	if vs, ok := details["versions"].([]string); ok {
		versions = strings.Join(vs, ", ")
	}
	return fmt.Sprintf(MsgConflictFormat, details["module"], details["scope"], details["identity"], versions)
}
