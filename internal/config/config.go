// Where: internal/config/config.go
// What: Optional stackdiff.yml project configuration.
// Why: Let repeated invocations share stack name, parameters, and differ
//      settings without retyping flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file looked up next to the template
// and in the working directory.
const FileName = "stackdiff.yml"

// Config holds optional defaults for a preview run. CLI flags always win
// over file values.
type Config struct {
	Stack            string            `json:"stack,omitempty" yaml:"stack,omitempty"`
	Parameters       map[string]string `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Capabilities     []string          `json:"capabilities,omitempty" yaml:"capabilities,omitempty"`
	ChangesetName    string            `json:"changeset_name,omitempty" yaml:"changeset_name,omitempty"`
	NoChangePatterns []string          `json:"no_change_patterns,omitempty" yaml:"no_change_patterns,omitempty"`
	Differ           string            `json:"differ,omitempty" yaml:"differ,omitempty"`
}

// Load reads and validates the config file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := validate(data); err != nil {
		return Config{}, fmt.Errorf("validate config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config %s: %w", path, err)
	}
	return cfg, nil
}

// Discover looks for stackdiff.yml next to the template file, then in the
// working directory. A missing file is not an error; a present but invalid
// file is.
func Discover(templatePath string) (Config, error) {
	candidates := []string{
		filepath.Join(filepath.Dir(templatePath), FileName),
		FileName,
	}
	for _, candidate := range candidates {
		cfg, err := Load(candidate)
		if err == nil {
			return cfg, nil
		}
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return Config{}, err
	}
	return Config{}, nil
}
