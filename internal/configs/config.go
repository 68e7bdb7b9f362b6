package configs

import (
	"fmt"
	"os"
	"path/filepath"

	kerrors "github.com/avelline/envault/internal/errors"
	"github.com/pelletier/go-toml/v2"
)

// ProjectConfigName is the optional per-project settings file.
const ProjectConfigName = ".envault.toml"

// ProjectConfig holds per-project settings.
type ProjectConfig struct {
	Project ProjectSection `toml:"project"`
	Audit   AuditSection   `toml:"audit"`
}

type ProjectSection struct {
	// Name labels the project in audit entries. Defaults to the root
	// directory's name.
	Name string `toml:"name"`

	// DefaultEnvironment is the environment tag used by build and keypair
	// when none is given on the command line.
	DefaultEnvironment string `toml:"default_environment"`
}

type AuditSection struct {
	// Enabled turns on the append-only run log.
	Enabled bool `toml:"enabled"`
}

// DefaultProjectConfig returns the config used when no settings file exists.
func DefaultProjectConfig() *ProjectConfig {
	return &ProjectConfig{
		Project: ProjectSection{
			Name:               ProjectEnvaultSettings.ProjectName,
			DefaultEnvironment: "development",
		},
	}
}

// LoadProjectConfig reads the project's settings file. A missing file yields
// the defaults; a malformed one is ErrInvalidProjectConfig.
func LoadProjectConfig() (*ProjectConfig, error) {
	if ProjectEnvaultSettings.ProjectPath == "" {
		return DefaultProjectConfig(), nil
	}

	path := filepath.Join(ProjectEnvaultSettings.ProjectPath, ProjectConfigName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultProjectConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	cfg := DefaultProjectConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrInvalidProjectConfig, err)
	}
	return cfg, nil
}

// SaveProjectConfig writes the project's settings file.
func SaveProjectConfig(cfg *ProjectConfig) error {
	if ProjectEnvaultSettings.ProjectPath == "" {
		return kerrors.ErrProjectNotFound
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding project config: %w", err)
	}

	path := filepath.Join(ProjectEnvaultSettings.ProjectPath, ProjectConfigName)
	return os.WriteFile(path, data, 0644)
}
