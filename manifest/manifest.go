// Package manifest defines the static self-description of a capability
// plugin: its identity, declared capability type, and runtime mode.
//
// A manifest is supplied once by the plugin module and is immutable after
// registration. The registry caches manifests by declaration alias during
// batch registration so that one plugin's configuration resolution can look
// up another plugin's manifest.
package manifest

import (
	"fmt"
)

// Manifest is the static self-description of a plugin.
type Manifest struct {
	// Name is the unique machine identifier for the plugin (e.g., "openai-embed").
	Name string `yaml:"name" json:"name"`

	// DisplayName is the human-facing name shown in catalogs.
	DisplayName string `yaml:"displayName" json:"displayName"`

	// Description explains what the plugin does.
	Description string `yaml:"description" json:"description"`

	// Version is the semantic version of the plugin.
	Version string `yaml:"version" json:"version"`

	// Type is the single capability this plugin implements.
	Type Type `yaml:"type" json:"type"`

	// Runtime is "service" for long-running plugins, empty otherwise.
	Runtime Runtime `yaml:"runtime,omitempty" json:"runtime,omitempty"`
}

// Validate checks that the manifest carries the required identity fields
// and a known capability type.
func (m Manifest) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("manifest name is required")
	}
	if m.Version == "" {
		return fmt.Errorf("manifest version is required for %q", m.Name)
	}
	if !m.Type.Valid() {
		return fmt.Errorf("manifest %q declares unknown capability type %q", m.Name, m.Type)
	}
	if m.Runtime != "" && m.Runtime != RuntimeService {
		return fmt.Errorf("manifest %q declares unknown runtime %q", m.Name, m.Runtime)
	}
	return nil
}

// IsService reports whether the plugin declares the service runtime.
func (m Manifest) IsService() bool {
	return m.Runtime == RuntimeService
}
