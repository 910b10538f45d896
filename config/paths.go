package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// ConfigDir returns the base application config directory.
// If the COMPMGR_CONFIG_DIR environment variable is set, its value is
// used as the base before appending espbuild/compmgr. Otherwise the
// platform user config directory is used:
// - macOS:   ~/Library/Application Support/espbuild/compmgr
// - Linux:   ~/.config/espbuild/compmgr
// - Windows: %AppData%\espbuild\compmgr
func ConfigDir() (string, error) {
	dir := os.Getenv(CONFIG_DIR_ENV_KEY)
	if dir != "" {
		return filepath.Join(dir, CONFIG_DEFAULT_HOME_RELATIVE_PATH), nil
	}

	userConfigDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to retrieve user config directory: %w", err)
	}

	return filepath.Join(userConfigDir, CONFIG_DEFAULT_HOME_RELATIVE_PATH), nil
}

// ConfigFilePath returns the absolute path to the compmgr config file,
// without creating any directories.
func ConfigFilePath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, CONFIG_FILE_NAME), nil
}
