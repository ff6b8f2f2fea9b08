//go:build darwin

package logger

import (
	"os"
	"path/filepath"
)

// defaultLogDir returns the log directory.
// Uses ~/Library/Logs/Bypass Monitor/ so both daemons find it regardless
// of which user account they run under.
func defaultLogDir() string {
	home, err := os.UserHomeDir()
	if err == nil {
		dir := filepath.Join(home, "Library", "Logs", "Bypass Monitor")
		_ = os.MkdirAll(dir, 0755)
		return dir
	}

	// Fallback: next to executable
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}
