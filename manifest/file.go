package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load reads and parses a manifest YAML file from the given path.
// If the path is a directory, it looks for manifest.yaml or manifest.yml
// in that directory.
func Load(path string) (*Manifest, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path: %w", err)
	}

	manifestPath := path
	if info.IsDir() {
		yamlPath := filepath.Join(path, "manifest.yaml")
		if _, err := os.Stat(yamlPath); err == nil {
			manifestPath = yamlPath
		} else {
			ymlPath := filepath.Join(path, "manifest.yml")
			if _, err := os.Stat(ymlPath); err != nil {
				return nil, fmt.Errorf("no manifest.yaml or manifest.yml found in %s", path)
			}
			manifestPath = ymlPath
		}
	}

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest file: %w", err)
	}

	return Parse(data)
}

// Parse parses manifest YAML and validates the result.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}
