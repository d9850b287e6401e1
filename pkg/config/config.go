// Package config loads tdm's configuration the layered way: built-in
// defaults, then config.toml from the XDG config directory, then TDM_*
// environment variables. The only user-facing preference is the template
// directory; the transform key and worker bound are exposed so the archive
// pipeline never hard-codes them.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	koanftoml "github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pelletier/go-toml/v2"

	"github.com/mrtigerst/tdm/pkg/archive"
	"github.com/mrtigerst/tdm/pkg/errors"
)

// EnvPrefix namespaces tdm's environment variables, e.g. TDM_TEMPLATE_DIR.
const EnvPrefix = "TDM_"

// EnvConfigDir overrides the config directory, mainly for tests.
const EnvConfigDir = "TDM_CONFIG_DIR"

const (
	keyTemplateDir  = "template_dir"
	keyTransformKey = "transform_key"
	keyWorkers      = "workers"

	fileName = "config.toml"
)

// Config is the merged view over all configuration layers.
type Config struct {
	k *koanf.Koanf
}

// Dir returns the tdm config directory.
func Dir() string {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir
	}
	return filepath.Join(xdg.ConfigHome, "tdm")
}

// Path returns the config file location.
func Path() string {
	return filepath.Join(Dir(), fileName)
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		keyTemplateDir:  filepath.Join(xdg.DataHome, "tdm", "templates"),
		keyTransformKey: string(archive.DefaultKey),
		keyWorkers:      0,
	}
}

// Load builds the merged configuration. A missing config file is not an
// error; a present but unparsable one is.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load defaults")
	}

	path := Path()
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), koanftoml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad,
				"failed to load config from %s", path)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment")
	}

	return &Config{k: k}, nil
}

// TemplateDir returns the directory holding template archives.
func (c *Config) TemplateDir() string {
	return c.k.String(keyTemplateDir)
}

// TransformKey returns the archive transform key.
func (c *Config) TransformKey() []byte {
	return []byte(c.k.String(keyTransformKey))
}

// Workers returns the configured worker bound for the parallel stages.
// Zero means the pipeline's own default.
func (c *Config) Workers() int {
	return c.k.Int(keyWorkers)
}

// SetTemplateDir persists the template directory preference to config.toml,
// preserving any other settings already in the file.
func SetTemplateDir(dir string) error {
	if err := os.MkdirAll(Dir(), 0o755); err != nil {
		return errors.Wrapf(err, errors.ErrConfigWrite,
			"failed to create config directory %s", Dir())
	}

	settings := make(map[string]interface{})
	if data, err := os.ReadFile(Path()); err == nil {
		if err := toml.Unmarshal(data, &settings); err != nil {
			return errors.Wrapf(err, errors.ErrConfigLoad,
				"failed to parse existing config %s", Path())
		}
	}
	settings[keyTemplateDir] = dir

	data, err := toml.Marshal(settings)
	if err != nil {
		return errors.Wrap(err, errors.ErrConfigWrite, "failed to encode config")
	}
	if err := os.WriteFile(Path(), data, 0o644); err != nil {
		return errors.Wrapf(err, errors.ErrConfigWrite,
			"failed to write config %s", Path())
	}
	return nil
}
