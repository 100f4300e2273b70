package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// MaestroHome returns the maestro home directory.
// Priority order:
//  1. MAESTRO_HOME environment variable (if set)
//  2. .maestro under the current working directory
//
// The directory is created if it doesn't exist.
func MaestroHome() (string, error) {
	if home := os.Getenv("MAESTRO_HOME"); home != "" {
		if err := os.MkdirAll(home, 0755); err != nil {
			return "", fmt.Errorf("create maestro home directory: %w", err)
		}
		return home, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	home := filepath.Join(cwd, ".maestro")
	if err := os.MkdirAll(home, 0755); err != nil {
		return "", fmt.Errorf("create maestro home directory: %w", err)
	}
	return home, nil
}

// HistoryDBPath returns the run history database path: an explicit override
// wins, otherwise $MAESTRO_HOME/history.db.
func HistoryDBPath(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	home, err := MaestroHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "history.db"), nil
}
