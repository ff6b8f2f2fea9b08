// Package supervisor drives the managed application's lifecycle from tunnel state.
package supervisor

import (
	"context"
	"fmt"
	"net/netip"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	"github.com/sirupsen/logrus"
)

// State of the managed process as the supervisor last verified it.
type State string

const (
	StateStopped      State = "stopped"
	StateRunningBound State = "running_bound"
)

// Transition describes what a call to Apply did, so the loop can surface
// lifecycle events (desktop notifications, logs) without peeking at
// supervisor internals.
type Transition string

const (
	TransitionNone     Transition = "none"
	TransitionLaunched Transition = "launched"
	TransitionKilled   Transition = "killed"
	TransitionRebound  Transition = "rebound"
)

const defaultVerifyDelay = 500 * time.Millisecond

// Supervisor is a state machine over {running_bound, stopped} driven by
// network snapshots. The tunnel address is the sole authority: present
// means the app should run bound to it, absent means the app must not run.
type Supervisor struct {
	ctl         Controller
	log         *logrus.Entry
	grace       time.Duration
	verifyDelay time.Duration

	initialized     bool
	state           State
	boundIP         netip.Addr
	tunnelDownSince time.Time
}

// New creates a supervisor. grace bounds how long a graceful quit may
// take before escalating to a forced kill.
func New(ctl Controller, log *logrus.Entry, grace time.Duration) *Supervisor {
	return &Supervisor{
		ctl:         ctl,
		log:         log,
		grace:       grace,
		verifyDelay: defaultVerifyDelay,
		state:       StateStopped,
	}
}

// Apply reconciles the process with the snapshot's tunnel state. Errors
// are transient: state is only advanced after verification, so the next
// tick re-attempts the same transition while the condition persists.
func (s *Supervisor) Apply(ctx context.Context, tunnelIP netip.Addr) (Transition, error) {
	if !s.initialized {
		s.syncFromOS(ctx)
	}

	tunnelUp := tunnelIP.IsValid()

	switch {
	case !tunnelUp:
		if s.state != StateRunningBound {
			return TransitionNone, nil
		}
		if s.tunnelDownSince.IsZero() {
			s.tunnelDownSince = time.Now()
			s.log.Warn("tunnel down, stopping managed process")
		}
		if err := s.stop(ctx); err != nil {
			return TransitionNone, err
		}
		s.state = StateStopped
		s.boundIP = netip.Addr{}
		return TransitionKilled, nil

	case s.state == StateStopped:
		if err := s.start(ctx, tunnelIP); err != nil {
			return TransitionNone, err
		}
		s.noteRestore(tunnelIP)
		return TransitionLaunched, nil

	case tunnelIP != s.boundIP:
		s.log.Infof("tunnel address changed %s -> %s, rebinding", s.boundIP, tunnelIP)
		if err := s.stop(ctx); err != nil {
			return TransitionNone, err
		}
		s.state = StateStopped
		s.boundIP = netip.Addr{}
		if err := s.start(ctx, tunnelIP); err != nil {
			return TransitionNone, err
		}
		s.noteRestore(tunnelIP)
		return TransitionRebound, nil

	default:
		return TransitionNone, nil
	}
}

// CurrentState returns the last verified process state.
func (s *Supervisor) CurrentState() State {
	return s.state
}

// syncFromOS derives the initial state from the OS instead of trusting
// anything that survived a restart.
func (s *Supervisor) syncFromOS(ctx context.Context) {
	running, err := s.ctl.IsRunning(ctx)
	if err != nil {
		s.log.WithError(err).Warn("could not determine initial process state")
	}
	if running {
		// Bound address unknown; leaving boundIP invalid forces a
		// rebind as soon as a tunnel address is observed.
		s.state = StateRunningBound
	} else {
		s.state = StateStopped
	}
	s.initialized = true
	s.log.Infof("initial process state: %s", s.state)
}

func (s *Supervisor) noteRestore(tunnelIP netip.Addr) {
	s.state = StateRunningBound
	s.boundIP = tunnelIP
	if !s.tunnelDownSince.IsZero() {
		s.log.Infof("tunnel restored after %s", time.Since(s.tunnelDownSince).Round(time.Second))
		s.tunnelDownSince = time.Time{}
	}
}

// start sets the outbound bind address and then launches. The ordering is
// load-bearing: binding after launch leaves a window where the process
// sends from the wrong address.
func (s *Supervisor) start(ctx context.Context, bindIP netip.Addr) error {
	if err := s.ctl.SetBindAddress(ctx, bindIP); err != nil {
		return fmt.Errorf("failed to set bind address: %w", err)
	}
	if err := s.ctl.Launch(ctx); err != nil {
		return fmt.Errorf("failed to launch: %w", err)
	}
	if err := s.awaitRunning(ctx, true, 10); err != nil {
		return fmt.Errorf("launch not verified: %w", err)
	}
	s.log.Infof("managed process launched, bound to %s", bindIP)
	return nil
}

// stop requests a graceful quit, escalates to a forced kill after the
// grace period, and verifies termination before reporting success. A
// terminated process has zero network activity by construction, which is
// why this is kill, not pause.
func (s *Supervisor) stop(ctx context.Context) error {
	running, err := s.ctl.IsRunning(ctx)
	if err == nil && !running {
		return nil
	}

	if err := s.ctl.QuitGracefully(ctx); err != nil {
		s.log.WithError(err).Warn("graceful quit request failed")
	}

	graceAttempts := int(s.grace / s.verifyDelay)
	if graceAttempts < 1 {
		graceAttempts = 1
	}
	if err := s.awaitRunning(ctx, false, graceAttempts); err == nil {
		s.log.Info("managed process quit gracefully")
		return nil
	}

	s.log.Warn("grace period expired, forcing termination")
	if err := s.ctl.ForceKill(ctx); err != nil {
		return fmt.Errorf("force kill failed: %w", err)
	}
	if err := s.awaitRunning(ctx, false, 10); err != nil {
		return fmt.Errorf("termination not verified: %w", err)
	}
	return nil
}

// awaitRunning polls the controller until the process matches the wanted
// running state, bounded by attempts with a short fixed backoff.
func (s *Supervisor) awaitRunning(ctx context.Context, want bool, attempts int) error {
	policy := retrypolicy.NewBuilder[bool]().
		HandleIf(func(running bool, err error) bool {
			return err != nil || running != want
		}).
		WithDelay(s.verifyDelay).
		WithMaxRetries(attempts).
		Build()

	running, err := failsafe.With(policy).WithContext(ctx).Get(func() (bool, error) {
		return s.ctl.IsRunning(ctx)
	})
	if err != nil {
		return err
	}
	if running != want {
		return fmt.Errorf("process running=%v, wanted %v", running, want)
	}
	return nil
}
