package monitor

import (
	"context"
	"net/netip"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/user/bypass-monitor/internal/notify"
	"github.com/user/bypass-monitor/internal/supervisor"
)

// ProcessSupervisor reconciles the managed process with the tunnel state.
type ProcessSupervisor interface {
	Apply(ctx context.Context, tunnelIP netip.Addr) (supervisor.Transition, error)
}

// TunnelWatch is the user-level loop: probe, then drive the process
// supervisor. Its interval is short to keep the window between a tunnel
// drop and process termination small.
type TunnelWatch struct {
	probe    Prober
	sup      ProcessSupervisor
	interval time.Duration
	log      *logrus.Entry
}

// NewTunnelWatch creates the tunnel watch loop.
func NewTunnelWatch(probe Prober, sup ProcessSupervisor, interval time.Duration, log *logrus.Entry) *TunnelWatch {
	return &TunnelWatch{
		probe:    probe,
		sup:      sup,
		interval: interval,
		log:      log,
	}
}

// Run ticks immediately, then on every interval until ctx is cancelled.
func (w *TunnelWatch) Run(ctx context.Context) {
	w.Tick(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("tunnel watch stopping")
			return
		case <-ticker.C:
			w.Tick(ctx)
		}
	}
}

// Tick runs one probe/supervise pass and surfaces lifecycle transitions
// as desktop notifications.
func (w *TunnelWatch) Tick(ctx context.Context) {
	snap := w.probe.Probe(ctx)

	transition, err := w.sup.Apply(ctx, snap.TunnelIP)
	if err != nil {
		w.log.WithError(err).Error("supervisor apply failed, will retry next tick")
		return
	}

	switch transition {
	case supervisor.TransitionKilled:
		notify.Send(w.log, "Bypass Monitor", "VPN down: media server stopped")
	case supervisor.TransitionLaunched:
		notify.Send(w.log, "Bypass Monitor", "VPN up: media server started on "+snap.TunnelIP.String())
	case supervisor.TransitionRebound:
		notify.Send(w.log, "Bypass Monitor", "VPN address changed: media server rebound to "+snap.TunnelIP.String())
	}
}
