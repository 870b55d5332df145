package meta

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// MetaFileName is written inside each environment on successful creation
const MetaFileName = "pyvm-virtualenv.yaml"

// EnvironmentMetadata records how an environment was created. It is purely
// diagnostic; a missing or stale record is never an error.
type EnvironmentMetadata struct {
	Name          string    `yaml:"name"`
	SourceVersion string    `yaml:"source_version"`
	Backend       string    `yaml:"backend"`
	PluginVersion string    `yaml:"plugin_version"`
	CreatedAt     time.Time `yaml:"created_at"`
	Upgraded      bool      `yaml:"upgraded,omitempty"`
}

// Manager manages environment metadata records under the versions directory
type Manager struct {
	versionsDir string
}

// NewManager creates a metadata manager rooted at versionsDir
func NewManager(versionsDir string) *Manager {
	return &Manager{versionsDir: versionsDir}
}

// GetMetaFile returns the path to an environment's metadata file
func (m *Manager) GetMetaFile(name string) string {
	return filepath.Join(m.versionsDir, name, MetaFileName)
}

// Load loads an environment's metadata
func (m *Manager) Load(name string) (*EnvironmentMetadata, error) {
	data, err := os.ReadFile(m.GetMetaFile(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("environment '%s' has no metadata", name)
		}
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	var metadata EnvironmentMetadata
	if err := yaml.Unmarshal(data, &metadata); err != nil {
		return nil, fmt.Errorf("failed to parse metadata: %w", err)
	}

	return &metadata, nil
}

// Save writes an environment's metadata
func (m *Manager) Save(metadata *EnvironmentMetadata) error {
	data, err := yaml.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	metaFile := m.GetMetaFile(metadata.Name)
	if err := os.WriteFile(metaFile, data, 0o644); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}

	return nil
}

// Delete removes an environment's metadata file if present
func (m *Manager) Delete(name string) error {
	if err := os.Remove(m.GetMetaFile(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete metadata: %w", err)
	}
	return nil
}

// List returns the names of environments carrying a metadata record
func (m *Manager) List() ([]string, error) {
	entries, err := os.ReadDir(m.versionsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read versions directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(m.GetMetaFile(entry.Name())); err == nil {
			names = append(names, entry.Name())
		}
	}

	return names, nil
}
