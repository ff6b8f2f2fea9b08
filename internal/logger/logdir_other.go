//go:build !darwin

package logger

import (
	"os"
	"path/filepath"
)

// defaultLogDir returns the log directory next to the executable.
func defaultLogDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}
