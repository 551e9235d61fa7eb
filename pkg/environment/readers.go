package environment

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/arthur-debert/settle/pkg/errors"
	"github.com/arthur-debert/settle/pkg/logging"
	"github.com/arthur-debert/settle/pkg/types"
	"github.com/joho/godotenv"
	"github.com/magiconair/properties"
)

// Getenv returns an environment reader that consults lookup first and
// falls back to the dotenv file at root/envFile. A missing dotenv file is
// not an error.
func Getenv(fs types.FS, root, envFile string, lookup func(string) (string, bool)) (func(string) string, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	overlay := map[string]string{}
	if envFile != "" {
		path := filepath.Join(root, envFile)
		data, err := fs.ReadFile(path)
		switch {
		case err == nil:
			overlay, err = godotenv.Parse(bytes.NewReader(data))
			if err != nil {
				return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to parse env file").
					WithDetail("path", path)
			}
			logger := logging.GetLogger("environment")
			logger.Debug().
				Str("path", path).
				Int("vars", len(overlay)).
				Msg("Loaded env file")
		case os.IsNotExist(err):
		default:
			return nil, errors.Wrap(err, errors.ErrFileAccess, "failed to read env file").
				WithDetail("path", path)
		}
	}

	return func(name string) string {
		if v, ok := lookup(name); ok {
			return v
		}
		return overlay[name]
	}, nil
}

// Properties reads root-level project properties from a .properties file
type Properties struct {
	props *properties.Properties
}

// LoadProperties reads root/file. A missing file yields an empty set.
func LoadProperties(fs types.FS, root, file string) (*Properties, error) {
	p := &Properties{props: properties.NewProperties()}
	if file == "" {
		return p, nil
	}

	path := filepath.Join(root, file)
	data, err := fs.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return p, nil
		}
		return nil, errors.Wrap(err, errors.ErrFileAccess, "failed to read properties file").
			WithDetail("path", path)
	}

	loaded, err := properties.Load(data, properties.UTF8)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to parse properties file").
			WithDetail("path", path)
	}
	loaded.DisableExpansion = true
	p.props = loaded
	return p, nil
}

// Property implements types.PropertyReader
func (p *Properties) Property(name string) (string, bool) {
	return p.props.Get(name)
}

// Keys returns the property names in file order
func (p *Properties) Keys() []string {
	return p.props.Keys()
}
