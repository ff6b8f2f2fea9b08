package supervisor

import (
	"context"
	"net/netip"
	"strings"

	"github.com/user/bypass-monitor/internal/oscmd"
)

// Controller abstracts process control for the managed application:
// signal by name, query by name, launch by name, and the app's persisted
// bind-address preference.
type Controller interface {
	IsRunning(ctx context.Context) (bool, error)
	Launch(ctx context.Context) error
	QuitGracefully(ctx context.Context) error
	ForceKill(ctx context.Context) error
	SetBindAddress(ctx context.Context, ip netip.Addr) error
}

// ExecController controls the application with standard process tools
// (pgrep/pkill) addressed by process name.
type ExecController struct {
	run           oscmd.Runner
	name          string
	launchCommand []string
	prefDomain    string
	bindKey       string
	prefFile      string
}

// NewExecController creates a controller for the named application.
// launchCommand overrides the platform launch default when non-empty.
func NewExecController(run oscmd.Runner, name string, launchCommand []string, prefDomain, bindKey, prefFile string) *ExecController {
	return &ExecController{
		run:           run,
		name:          name,
		launchCommand: launchCommand,
		prefDomain:    prefDomain,
		bindKey:       bindKey,
		prefFile:      prefFile,
	}
}

// IsRunning reports whether a process with the configured name exists.
// pgrep exits non-zero both for "no match" and for real failures; empty
// output is treated as "not running" in both cases so a missing pgrep
// cannot wedge the supervisor.
func (c *ExecController) IsRunning(ctx context.Context) (bool, error) {
	out, err := c.run.Run(ctx, "pgrep", "-x", c.name)
	if err != nil {
		return false, nil
	}
	return strings.TrimSpace(string(out)) != "", nil
}

// QuitGracefully sends SIGTERM to the application by name. A missing
// process is success, not an error.
func (c *ExecController) QuitGracefully(ctx context.Context) error {
	_, err := c.run.Run(ctx, "pkill", "-TERM", "-x", c.name)
	return ignoreNoMatch(err)
}

// ForceKill sends SIGKILL to the application by name.
func (c *ExecController) ForceKill(ctx context.Context) error {
	_, err := c.run.Run(ctx, "pkill", "-KILL", "-x", c.name)
	return ignoreNoMatch(err)
}

// pkill exits 1 when no process matched; that is the desired end state
// for both signals.
func ignoreNoMatch(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "exit status 1") {
		return nil
	}
	return err
}
