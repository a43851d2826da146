package config

import (
	"fmt"
	"os"
	"path/filepath"

	"sigs.k8s.io/yaml"
)

// Load reads and validates a configuration. Accepts either a directory
// holding config.yaml or the path to the file itself.
func Load(path string) (*Configuration, error) {
	if filepath.Base(path) != ConfigurationName {
		path = filepath.Join(path, ConfigurationName)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var out Configuration
	if err := yaml.UnmarshalStrict(contents, &out); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("validating %s: %w", path, err)
	}
	return &out, nil
}
