// Package firewall reconciles pf anchor rules with the current network snapshot.
package firewall

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/user/bypass-monitor/internal/netprobe"
	"github.com/user/bypass-monitor/internal/oscmd"
)

// privateCIDRs is the LAN allowlist: traffic to these ranges is passed
// before the route-to override so local traffic keeps its normal path.
var privateCIDRs = []string{
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
	"169.254.0.0/16",
}

// appliedConfig is the fingerprint of the snapshot fields the rules were
// last successfully loaded for. Compared whole, never diffed.
type appliedConfig struct {
	iface   string
	ip      string
	gateway string
}

// Reconciler derives pf rules from a network snapshot and loads them into
// a named anchor. It never flushes the anchor on shutdown; stale-but-correct
// rules beat a window where traffic rides the tunnel.
type Reconciler struct {
	run         oscmd.Runner
	log         *logrus.Entry
	anchor      string
	servicePort int
	applied     *appliedConfig
}

// New creates a reconciler for the named anchor.
func New(run oscmd.Runner, log *logrus.Entry, anchor string, servicePort int) *Reconciler {
	return &Reconciler{
		run:         run,
		log:         log,
		anchor:      anchor,
		servicePort: servicePort,
	}
}

// Reconcile loads rules for the snapshot unless the anchor already holds
// them. An undetermined uplink skips the tick. Failures leave the cached
// fingerprint unchanged so the next tick retries.
func (r *Reconciler) Reconcile(ctx context.Context, snap netprobe.Snapshot) error {
	if !snap.HasUplink() {
		r.log.Debug("uplink undetermined, skipping firewall reconcile")
		return nil
	}

	want := appliedConfig{
		iface:   snap.PhysicalInterface,
		ip:      snap.PhysicalIP.String(),
		gateway: snap.Gateway.String(),
	}

	loaded, err := r.anchorLoaded(ctx)
	if err != nil {
		// Observation beats cache: if we cannot see the anchor, assume
		// it is gone and reload.
		r.log.WithError(err).Warn("anchor inspection failed, forcing reload")
		loaded = false
	}

	if loaded && r.applied != nil && *r.applied == want {
		r.log.Debug("firewall rules current, nothing to do")
		return nil
	}

	rules := renderRules(want, r.servicePort)
	if err := r.loadAnchor(ctx, rules); err != nil {
		return fmt.Errorf("failed to load anchor %s: %w", r.anchor, err)
	}

	if err := r.enableFiltering(ctx); err != nil {
		// pf is usually already enabled; the loaded anchor still counts.
		r.log.WithError(err).Warn("could not enable packet filtering")
	}

	r.applied = &want
	r.log.WithFields(logrus.Fields{
		"interface": want.iface,
		"ip":        want.ip,
		"gateway":   want.gateway,
	}).Info("firewall rules applied")
	return nil
}

// anchorLoaded reports whether the anchor currently holds any rules.
// Rules flushed behind our back must invalidate the fingerprint.
func (r *Reconciler) anchorLoaded(ctx context.Context) (bool, error) {
	out, err := r.run.Run(ctx, "pfctl", "-a", r.anchor, "-sr")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(string(out)) != "", nil
}

func (r *Reconciler) loadAnchor(ctx context.Context, rules string) error {
	_, err := r.run.RunInput(ctx, []byte(rules), "pfctl", "-a", r.anchor, "-f", "-")
	return err
}

// enableFiltering turns on pf globally. -E is reference counted and
// harmless when pf is already running.
func (r *Reconciler) enableFiltering(ctx context.Context) error {
	_, err := r.run.Run(ctx, "pfctl", "-E")
	return err
}

// renderRules builds the anchor rule set:
// inbound service traffic on the physical interface, a pass for private
// ranges, and a route-to override forcing everything else from the
// physical IP out the physical interface/gateway pair.
func renderRules(cfg appliedConfig, servicePort int) string {
	var rules strings.Builder
	rules.WriteString("# bypass monitor rules\n")

	rules.WriteString(fmt.Sprintf("pass in quick on %s proto tcp from any to any port = %d\n",
		cfg.iface, servicePort))

	for _, cidr := range privateCIDRs {
		rules.WriteString(fmt.Sprintf("pass out quick from %s to %s\n", cfg.ip, cidr))
	}

	rules.WriteString(fmt.Sprintf("pass out route-to (%s %s) from %s to any\n",
		cfg.iface, cfg.gateway, cfg.ip))

	return rules.String()
}
