//go:build !linux && !darwin

package notifier

import "syscall"

// bindControl is a no-op on platforms without a socket-to-interface
// binding option; the dialer's LocalAddr still pins the source address.
func bindControl(ifName string, ifIndex int) func(network, address string, c syscall.RawConn) error {
	return nil
}
