package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/nao1215/handletrace/internal/model"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".handletrace"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File is the YAML configuration file shape.
//
// Platform entries extend or override the built-in registry: a known name
// overrides the built-in descriptor field-by-field, an unknown name adds a
// new platform. Credentials unlock optional passive signal sources.
type File struct {
	// Platforms maps platform names to descriptor overrides.
	Platforms map[string]model.Platform `yaml:"platforms,omitempty"`

	// Credentials hold optional API keys.
	Credentials Credentials `yaml:"credentials,omitempty"`
}

// LoadConfigFile loads the YAML configuration from path.
// A missing file returns ErrConfigNotFound so callers can distinguish
// "no config" (fine with defaults) from a broken file (an error).
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if f.Platforms == nil {
		f.Platforms = make(map[string]model.Platform)
	}
	return &f, nil
}

// FindConfigFile locates the configuration file: an explicit path wins,
// then .handletrace in the current directory, then in the home directory.
// Returns an empty string when nothing is found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		p := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		p := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Apply merges the file into the config: platform overrides are applied
// field-by-field over the built-in registry, new platforms are appended,
// and credentials are copied.
func (f *File) Apply(cfg *Config) {
	byName := make(map[string]int, len(cfg.Platforms))
	for i, p := range cfg.Platforms {
		byName[p.Name] = i
	}

	for name, override := range f.Platforms {
		override.Name = name
		if i, ok := byName[name]; ok {
			cfg.Platforms[i] = mergePlatform(cfg.Platforms[i], override)
		} else {
			cfg.Platforms = append(cfg.Platforms, override)
		}
	}

	if f.Credentials.BreachRegistryKey != "" {
		cfg.Credentials.BreachRegistryKey = f.Credentials.BreachRegistryKey
	}
	if f.Credentials.SearchAPIKey != "" {
		cfg.Credentials.SearchAPIKey = f.Credentials.SearchAPIKey
	}
	if f.Credentials.OpenAIKey != "" {
		cfg.Credentials.OpenAIKey = f.Credentials.OpenAIKey
	}
}

// mergePlatform overlays non-zero override fields on the base descriptor.
// Disabled is copied unconditionally so a config file can switch a
// built-in platform off.
func mergePlatform(base, override model.Platform) model.Platform {
	if override.DisplayName != "" {
		base.DisplayName = override.DisplayName
	}
	if override.ProfileURLTemplate != "" {
		base.ProfileURLTemplate = override.ProfileURLTemplate
	}
	if len(override.ExistenceMarkers) > 0 {
		base.ExistenceMarkers = override.ExistenceMarkers
	}
	if len(override.NotFoundMarkers) > 0 {
		base.NotFoundMarkers = override.NotFoundMarkers
	}
	if override.IndirectSearchTemplate != "" {
		base.IndirectSearchTemplate = override.IndirectSearchTemplate
	}
	if override.MinInterval > 0 {
		base.MinInterval = override.MinInterval
	}
	base.Disabled = override.Disabled
	return base
}
