//go:build !darwin

package supervisor

import (
	"context"
	"fmt"
	"net/netip"
	"os"
	"os/exec"
	"strings"
)

// Launch starts the application from the configured launch command.
func (c *ExecController) Launch(ctx context.Context) error {
	if len(c.launchCommand) == 0 {
		return fmt.Errorf("no launch command configured for %s", c.name)
	}
	cmd := exec.Command(c.launchCommand[0], c.launchCommand[1:]...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", c.launchCommand[0], err)
	}
	// Reap the child when it eventually exits.
	go cmd.Wait()
	return nil
}

// SetBindAddress rewrites the bind-address line in the app's preference
// file. Must happen before Launch; the app reads the file once at startup.
func (c *ExecController) SetBindAddress(ctx context.Context, ip netip.Addr) error {
	if !ip.IsValid() {
		return fmt.Errorf("invalid bind address")
	}
	if c.prefFile == "" {
		return fmt.Errorf("no preference file configured for %s", c.name)
	}

	var lines []string
	if data, err := os.ReadFile(c.prefFile); err == nil {
		lines = strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to read preferences: %w", err)
	}

	prefix := c.bindKey + "="
	replaced := false
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), prefix) {
			lines[i] = prefix + ip.String()
			replaced = true
			break
		}
	}
	if !replaced {
		lines = append(lines, prefix+ip.String())
	}

	out := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(c.prefFile, []byte(out), 0644); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	return nil
}
