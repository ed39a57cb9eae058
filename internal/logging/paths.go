package logging

import (
	"os"
	"path/filepath"
)

// DefaultLogDir returns the default log directory (~/.paperrag/logs/).
// Falls back to the temp directory if home directory is unavailable.
func DefaultLogDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".paperrag", "logs")
	}
	return filepath.Join(home, ".paperrag", "logs")
}

// DefaultLogPath returns the default pipeline log path.
func DefaultLogPath() string {
	return filepath.Join(DefaultLogDir(), "paperrag.log")
}

// EnsureLogDir creates the log directory if it doesn't exist.
func EnsureLogDir() error {
	return os.MkdirAll(DefaultLogDir(), 0o755)
}
