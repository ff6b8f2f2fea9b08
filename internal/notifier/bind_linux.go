//go:build linux

package notifier

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// bindControl pins outgoing sockets to the named interface with
// SO_BINDTODEVICE, so replies reflect the bypass path even if the
// routing table prefers the tunnel.
func bindControl(ifName string, ifIndex int) func(network, address string, c syscall.RawConn) error {
	return func(network, address string, c syscall.RawConn) error {
		var sockErr error
		err := c.Control(func(fd uintptr) {
			sockErr = unix.BindToDevice(int(fd), ifName)
		})
		if err != nil {
			return err
		}
		return sockErr
	}
}
