// Package elevate checks process privileges for the privileged daemon.
package elevate

import "os"

// IsAdmin returns true if the current process is running as root.
func IsAdmin() bool {
	return os.Geteuid() == 0
}
