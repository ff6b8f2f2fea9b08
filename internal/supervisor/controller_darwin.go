//go:build darwin

package supervisor

import (
	"context"
	"fmt"
	"net/netip"
	"os/exec"
)

// Launch starts the application. `open -a` hands the launch to
// launchservices, so the daemon never holds the app as a child process.
func (c *ExecController) Launch(ctx context.Context) error {
	if len(c.launchCommand) > 0 {
		return startDetached(c.launchCommand)
	}
	_, err := c.run.Run(ctx, "open", "-a", c.name)
	return err
}

// SetBindAddress writes the app's persisted bind-address preference.
// Must happen before Launch; the app reads the preference once at startup.
func (c *ExecController) SetBindAddress(ctx context.Context, ip netip.Addr) error {
	if !ip.IsValid() {
		return fmt.Errorf("invalid bind address")
	}
	_, err := c.run.Run(ctx, "defaults", "write", c.prefDomain, c.bindKey, ip.String())
	return err
}

// startDetached launches a configured command without waiting on it.
func startDetached(command []string) error {
	cmd := exec.Command(command[0], command[1:]...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", command[0], err)
	}
	// Reap the child when it eventually exits.
	go cmd.Wait()
	return nil
}
