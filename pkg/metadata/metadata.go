package metadata

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/arthur-debert/settle/pkg/errors"
	"github.com/arthur-debert/settle/pkg/groupid"
	"github.com/arthur-debert/settle/pkg/logging"
	"github.com/arthur-debert/settle/pkg/types"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	DefaultReadme    = "README.md"
	DefaultChangelog = "CHANGELOG.md"

	// SeedVersion is the version of a freshly created change log
	SeedVersion = "0.0.0"

	// SeedChangelog is written when a module has no change log
	SeedChangelog = "# Changelog\n\n## [" + SeedVersion + "] - 0000-00-00\n\n---\n"
)

// Synchronizer syncs module documents through a filesystem
type Synchronizer struct {
	fs        types.FS
	readme    string
	changelog string
	caser     cases.Caser
	// GroupProperty names the root property used for group derivation
	GroupProperty string
}

// Option configures a Synchronizer
type Option func(*Synchronizer)

// WithDocuments overrides the README and CHANGELOG file names
func WithDocuments(readme, changelog string) Option {
	return func(s *Synchronizer) {
		if readme != "" {
			s.readme = readme
		}
		if changelog != "" {
			s.changelog = changelog
		}
	}
}

// WithLocale sets the locale used to capitalize module names
func WithLocale(tag language.Tag) Option {
	return func(s *Synchronizer) {
		s.caser = cases.Title(tag)
	}
}

// WithGroupProperty sets the root property the group identity derives from
func WithGroupProperty(name string) Option {
	return func(s *Synchronizer) {
		s.GroupProperty = name
	}
}

// NewSynchronizer creates a synchronizer with default document names
func NewSynchronizer(fs types.FS, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		fs:            fs,
		readme:        DefaultReadme,
		changelog:     DefaultChangelog,
		caser:         cases.Title(language.Und),
		GroupProperty: "groupId",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Capitalize title-cases the first rune of name when it is lower case and
// leaves the rest unchanged
func (s *Synchronizer) Capitalize(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError || !unicode.IsLower(r) {
		return name
	}
	return s.caser.String(name[:size]) + name[size:]
}

// Title returns the README title line for a module name
func (s *Synchronizer) Title(name string) string {
	return "# " + s.Capitalize(name) + "\n\n"
}

// SyncDescription ensures the README starts with the module title and
// returns its description line. A README with fewer than three lines has
// an empty description.
func (s *Synchronizer) SyncDescription(dir, name string) (string, error) {
	path := filepath.Join(dir, s.readme)
	logger := logging.GetLogger("metadata").With().Str("file", path).Logger()

	data, err := s.fs.ReadFile(path)
	if os.IsNotExist(err) {
		if err := s.fs.WriteFile(path, nil, 0644); err != nil {
			return "", errors.Wrap(err, errors.ErrFileCreate, "failed to create description document").
				WithDetail("path", path)
		}
		logger.Info().Msg("Created description document")
		data = []byte{}
	} else if err != nil {
		return "", errors.Wrap(err, errors.ErrFileAccess, "failed to read description document").
			WithDetail("path", path)
	}

	title := s.Title(name)
	if !bytes.HasPrefix(data, []byte(title)) {
		data = append([]byte(title), data...)
		if err := s.fs.WriteFile(path, data, 0644); err != nil {
			return "", errors.Wrap(err, errors.ErrFileWrite, "failed to write description document").
				WithDetail("path", path)
		}
		logger.Info().Str("title", strings.TrimSpace(title)).Msg("Prepended title")
	}

	lines := strings.Split(string(data), "\n")
	if len(lines) < 3 {
		return "", nil
	}
	return strings.TrimSuffix(lines[2], "\r"), nil
}

// SyncChangelog returns the most recent version of the change log,
// creating a seeded change log when none exists. An existing change log is
// never modified.
func (s *Synchronizer) SyncChangelog(dir string) (string, error) {
	path := filepath.Join(dir, s.changelog)
	logger := logging.GetLogger("metadata").With().Str("file", path).Logger()

	data, err := s.fs.ReadFile(path)
	if os.IsNotExist(err) {
		if err := s.fs.WriteFile(path, []byte(SeedChangelog), 0644); err != nil {
			return "", errors.Wrap(err, errors.ErrFileCreate, "failed to create change log").
				WithDetail("path", path)
		}
		logger.Info().Msg("Created seeded change log")
		return SeedVersion, nil
	} else if err != nil {
		return "", errors.Wrap(err, errors.ErrFileAccess, "failed to read change log").
			WithDetail("path", path)
	}

	version, ferr := versionToken(string(data))
	if ferr != nil {
		return "", ferr.WithDetail("path", path)
	}
	return version, nil
}

func versionToken(text string) (string, *errors.SettleError) {
	open := strings.Index(text, "[")
	if open < 0 {
		return "", errors.New(errors.ErrMetadataFormat, "change log has no '[' version token")
	}
	end := strings.Index(text, "]")
	if end < 0 {
		return "", errors.New(errors.ErrMetadataFormat, "change log has no ']' closing the version token")
	}
	if end < open {
		return "", errors.New(errors.ErrMetadataFormat, "change log has ']' before the first '['")
	}
	version := text[open+1 : end]
	if version == "" {
		return "", errors.New(errors.ErrMetadataFormat, "change log version token is empty")
	}
	return version, nil
}

// SyncMetadata runs description, version and group sync for one module and
// writes the results into module.Config. Modules without a build file are
// skipped.
func (s *Synchronizer) SyncMetadata(module, root *types.Module, props types.PropertyReader) error {
	logger := logging.ForModule("metadata", module.Path)
	if !module.HasBuildFile() {
		logger.Debug().Msg("No build file, skipping metadata sync")
		return nil
	}

	description, err := s.SyncDescription(module.Dir, module.Name)
	if err != nil {
		return err
	}
	version, err := s.SyncChangelog(module.Dir)
	if err != nil {
		return err
	}

	module.Config.Description = description
	module.Config.Version = version
	groupid.Apply(module, root, props, s.GroupProperty)

	logger.Info().
		Str("description", description).
		Str("version", version).
		Str("group", module.Config.Group).
		Msg("Metadata synchronized")
	return nil
}

// Entry is one "## [version] - date" change log entry
type Entry struct {
	Version string
	Date    string
}

var entryPattern = regexp.MustCompile(`(?m)^##\s+\[([^\]]+)\]\s*-\s*(\S+)\s*$`)

// ParseChangelog lists the entries of a change log, newest first
func ParseChangelog(text string) []Entry {
	matches := entryPattern.FindAllStringSubmatch(text, -1)
	entries := make([]Entry, 0, len(matches))
	for _, m := range matches {
		entries = append(entries, Entry{Version: m[1], Date: m[2]})
	}
	return entries
}
