package store

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DirName is the per-project and per-user resonance directory name.
	DirName = ".resonance"

	// DBFile is the SQLite history file inside DirName.
	DBFile = "resonance.db"
)

// GlobalResonancePath returns the path to the global .resonance directory.
// On Unix: ~/.resonance
// On Windows: %USERPROFILE%\.resonance
func GlobalResonancePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, DirName), nil
}

// LocalResonancePath returns the path to the local .resonance directory
// for the given project root.
func LocalResonancePath(projectRoot string) string {
	return filepath.Join(projectRoot, DirName)
}
