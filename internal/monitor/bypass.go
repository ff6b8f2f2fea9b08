// Package monitor runs the two polling loops that reconcile system state
// with the current network truth.
package monitor

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/user/bypass-monitor/internal/netprobe"
)

// Prober produces the per-tick network snapshot.
type Prober interface {
	Probe(ctx context.Context) netprobe.Snapshot
}

// Reconciler applies firewall state for a snapshot.
type Reconciler interface {
	Reconcile(ctx context.Context, snap netprobe.Snapshot) error
}

// EndpointNotifier pushes the public address when it changes.
type EndpointNotifier interface {
	NotifyIfChanged(ctx context.Context, snap netprobe.Snapshot) error
}

// BypassLoop is the privileged loop: probe, reconcile firewall rules,
// notify the endpoint. Steps run sequentially; a failed step never
// aborts the tick or the loop.
type BypassLoop struct {
	probe    Prober
	firewall Reconciler
	endpoint EndpointNotifier
	interval time.Duration
	log      *logrus.Entry
}

// NewBypassLoop creates the bypass loop.
func NewBypassLoop(probe Prober, firewall Reconciler, endpoint EndpointNotifier, interval time.Duration, log *logrus.Entry) *BypassLoop {
	return &BypassLoop{
		probe:    probe,
		firewall: firewall,
		endpoint: endpoint,
		interval: interval,
		log:      log,
	}
}

// Run ticks immediately, then on every interval until ctx is cancelled.
func (l *BypassLoop) Run(ctx context.Context) {
	l.Tick(ctx)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.log.Info("bypass loop stopping")
			return
		case <-ticker.C:
			l.Tick(ctx)
		}
	}
}

// Tick runs one probe/reconcile/notify pass, best effort.
func (l *BypassLoop) Tick(ctx context.Context) {
	snap := l.probe.Probe(ctx)

	if err := l.firewall.Reconcile(ctx, snap); err != nil {
		l.log.WithError(err).Error("firewall reconcile failed, will retry next tick")
	}

	if err := l.endpoint.NotifyIfChanged(ctx, snap); err != nil {
		l.log.WithError(err).Error("endpoint notification failed, will retry next tick")
	}
}
