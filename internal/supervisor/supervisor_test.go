package supervisor

import (
	"context"
	"io"
	"net/netip"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeController records every mutating call and flips its running flag
// according to the configured behavior.
type fakeController struct {
	running      bool
	quitStops    bool
	killStops    bool
	launchStarts bool
	calls        []string
}

func (f *fakeController) IsRunning(ctx context.Context) (bool, error) {
	return f.running, nil
}

func (f *fakeController) Launch(ctx context.Context) error {
	f.calls = append(f.calls, "launch")
	if f.launchStarts {
		f.running = true
	}
	return nil
}

func (f *fakeController) QuitGracefully(ctx context.Context) error {
	f.calls = append(f.calls, "quit")
	if f.quitStops {
		f.running = false
	}
	return nil
}

func (f *fakeController) ForceKill(ctx context.Context) error {
	f.calls = append(f.calls, "kill")
	if f.killStops {
		f.running = false
	}
	return nil
}

func (f *fakeController) SetBindAddress(ctx context.Context, ip netip.Addr) error {
	f.calls = append(f.calls, "bind "+ip.String())
	return nil
}

func testLog() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log.WithField("component", "test")
}

func newTestSupervisor(ctl *fakeController) *Supervisor {
	s := New(ctl, testLog(), 4*time.Millisecond)
	s.verifyDelay = time.Millisecond
	return s
}

func addr(s string) netip.Addr {
	return netip.MustParseAddr(s)
}

func TestKillBeforeRebindOrdering(t *testing.T) {
	ctl := &fakeController{quitStops: true, killStops: true, launchStarts: true}
	s := newTestSupervisor(ctl)
	ctx := context.Background()

	tr, err := s.Apply(ctx, addr("10.0.0.5"))
	require.NoError(t, err)
	assert.Equal(t, TransitionLaunched, tr)

	tr, err = s.Apply(ctx, netip.Addr{})
	require.NoError(t, err)
	assert.Equal(t, TransitionKilled, tr)

	tr, err = s.Apply(ctx, addr("10.0.0.9"))
	require.NoError(t, err)
	assert.Equal(t, TransitionLaunched, tr)

	assert.Equal(t, []string{"bind 10.0.0.5", "launch", "quit", "bind 10.0.0.9", "launch"}, ctl.calls,
		"terminate before binding the new address, bind before launching")
}

func TestNoopOnUnchangedTunnel(t *testing.T) {
	ctl := &fakeController{launchStarts: true}
	s := newTestSupervisor(ctl)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := s.Apply(ctx, addr("10.0.0.5"))
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"bind 10.0.0.5", "launch"}, ctl.calls,
		"repeated identical snapshots must launch exactly once")
}

func TestRebindOnChangedTunnelAddress(t *testing.T) {
	ctl := &fakeController{quitStops: true, launchStarts: true}
	s := newTestSupervisor(ctl)
	ctx := context.Background()

	_, err := s.Apply(ctx, addr("10.0.0.5"))
	require.NoError(t, err)

	tr, err := s.Apply(ctx, addr("10.0.0.9"))
	require.NoError(t, err)
	assert.Equal(t, TransitionRebound, tr)
	assert.Equal(t, []string{"bind 10.0.0.5", "launch", "quit", "bind 10.0.0.9", "launch"}, ctl.calls)
}

func TestGracefulQuitEscalatesToForceKill(t *testing.T) {
	ctl := &fakeController{running: true, killStops: true}
	s := newTestSupervisor(ctl)

	tr, err := s.Apply(context.Background(), netip.Addr{})
	require.NoError(t, err)
	assert.Equal(t, TransitionKilled, tr)
	assert.Equal(t, []string{"quit", "kill"}, ctl.calls)
	assert.Equal(t, StateStopped, s.CurrentState())
}

func TestUnverifiedTerminationKeepsStateForRetry(t *testing.T) {
	ctl := &fakeController{running: true}
	s := newTestSupervisor(ctl)
	ctx := context.Background()

	tr, err := s.Apply(ctx, netip.Addr{})
	require.Error(t, err)
	assert.Equal(t, TransitionNone, tr)
	assert.Equal(t, StateRunningBound, s.CurrentState(), "unverified kill must leave state for the next tick")

	// The process finally dies; the persisting condition succeeds now.
	ctl.killStops = true
	tr, err = s.Apply(ctx, netip.Addr{})
	require.NoError(t, err)
	assert.Equal(t, TransitionKilled, tr)
}

func TestUnverifiedLaunchRetriesNextTick(t *testing.T) {
	ctl := &fakeController{}
	s := newTestSupervisor(ctl)
	ctx := context.Background()

	_, err := s.Apply(ctx, addr("10.0.0.5"))
	require.Error(t, err)
	assert.Equal(t, StateStopped, s.CurrentState())

	ctl.launchStarts = true
	tr, err := s.Apply(ctx, addr("10.0.0.5"))
	require.NoError(t, err)
	assert.Equal(t, TransitionLaunched, tr)
	assert.Equal(t, []string{"bind 10.0.0.5", "launch", "bind 10.0.0.5", "launch"}, ctl.calls)
}

func TestFreshStartRebindsAlreadyRunningProcess(t *testing.T) {
	// The daemon restarted while the app kept running: the bound address
	// is unknown, so the first tunnel observation must force a rebind.
	ctl := &fakeController{running: true, quitStops: true, launchStarts: true}
	s := newTestSupervisor(ctl)

	tr, err := s.Apply(context.Background(), addr("10.0.0.5"))
	require.NoError(t, err)
	assert.Equal(t, TransitionRebound, tr)
	assert.Equal(t, []string{"quit", "bind 10.0.0.5", "launch"}, ctl.calls)
}

func TestTunnelDownTimestampLifecycle(t *testing.T) {
	ctl := &fakeController{quitStops: true, killStops: true, launchStarts: true}
	s := newTestSupervisor(ctl)
	ctx := context.Background()

	_, err := s.Apply(ctx, addr("10.0.0.5"))
	require.NoError(t, err)
	assert.True(t, s.tunnelDownSince.IsZero())

	_, err = s.Apply(ctx, netip.Addr{})
	require.NoError(t, err)
	assert.False(t, s.tunnelDownSince.IsZero(), "down transition records when it was first observed")

	_, err = s.Apply(ctx, addr("10.0.0.5"))
	require.NoError(t, err)
	assert.True(t, s.tunnelDownSince.IsZero(), "restore clears the timestamp")
}
