package configs

import (
	"fmt"
	"os"
	"path/filepath"
)

// Project markers, checked in order while walking up from the working
// directory. The first directory containing any of them is the project root.
var projectMarkers = []string{ProjectConfigName, ".env.vault", ".env.keys", ".env"}

type UserSettings struct {
	// UserKeysPath is the user-wide key store ($XDG_DATA_HOME/envault/keys),
	// consulted after project-local key sources.
	UserKeysPath string

	// UserConfigsPath is the user-wide config directory.
	UserConfigsPath string
}

type ProjectSettings struct {
	ProjectPath string
	ProjectName string
}

var (
	// UserEnvaultSettings holds the per-user paths, independent of any
	// project. Paths stay empty when the platform directories can't be
	// determined.
	UserEnvaultSettings = &UserSettings{}

	// ProjectEnvaultSettings holds the discovered project state for the
	// current process. Populated by InitProjectSettings; ProjectPath stays
	// empty when no project was found.
	ProjectEnvaultSettings = &ProjectSettings{}
)

func init() {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return
	}

	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return
		}
		dataDir = filepath.Join(home, ".local", "share")
	}

	UserEnvaultSettings = &UserSettings{
		UserKeysPath:    filepath.Join(dataDir, "envault", "keys"),
		UserConfigsPath: filepath.Join(configDir, "envault"),
	}
}

// InitProjectSettings discovers the project root from the working directory.
// Not finding a project is not an error: commands that can run without one
// check ProjectPath themselves.
func InitProjectSettings() error {
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	root := FindProjectRoot(wd)
	ProjectEnvaultSettings = &ProjectSettings{
		ProjectPath: root,
		ProjectName: filepath.Base(root),
	}
	if root == "" {
		ProjectEnvaultSettings.ProjectName = ""
	}
	return nil
}

// FindProjectRoot walks up from dir looking for a project marker. Returns ""
// when none is found before the filesystem root.
func FindProjectRoot(dir string) string {
	for {
		for _, marker := range projectMarkers {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
