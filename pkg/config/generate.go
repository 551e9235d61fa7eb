package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/settle/pkg/errors"
	"github.com/arthur-debert/settle/pkg/types"
)

// GenerateSettingsContent returns the embedded defaults with every value
// commented out, ready to be saved as settle.toml
func GenerateSettingsContent() string {
	lines := strings.Split(GetDefaultConfigContent(), "\n")
	out := make([]string, 0, len(lines))

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "", strings.HasPrefix(trimmed, "#"):
			out = append(out, line)
		case strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]"):
			out = append(out, line)
		default:
			out = append(out, "# "+line)
		}
	}
	return strings.Join(out, "\n")
}

// WriteSettings writes the generated settings file to root. An existing
// settings file is left alone and reported with ErrConfigValid.
func WriteSettings(fs types.FS, root string) (string, error) {
	path := filepath.Join(root, SettingsFileName)
	if _, err := fs.Stat(path); err == nil {
		return "", errors.Newf(errors.ErrConfigValid, "%s already exists", SettingsFileName).
			WithDetail("path", path)
	} else if !os.IsNotExist(err) {
		return "", errors.Wrap(err, errors.ErrFileAccess, "failed to check settings file").
			WithDetail("path", path)
	}

	if err := fs.WriteFile(path, []byte(GenerateSettingsContent()), 0644); err != nil {
		return "", errors.Wrap(err, errors.ErrFileWrite, "failed to write settings file").
			WithDetail("path", path)
	}
	return path, nil
}
