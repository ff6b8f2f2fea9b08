// Package netprobe derives the current network truth from the OS.
package netprobe

import "net/netip"

// Snapshot captures the network facts one loop tick acts on. A snapshot
// is never mutated; every tick recomputes a fresh one from the OS.
type Snapshot struct {
	PhysicalInterface string     // non-tunnel uplink; empty if undetectable
	PhysicalIP        netip.Addr // address on the uplink; invalid if unknown
	Gateway           netip.Addr // default gateway; invalid if unknown
	TunnelIP          netip.Addr // first address on a tunnel-class interface; invalid = VPN down
}

// HasUplink reports whether the physical uplink was determined this tick.
// A snapshot without an uplink means "network undetermined, skip the tick".
func (s Snapshot) HasUplink() bool {
	return s.PhysicalInterface != "" && s.PhysicalIP.IsValid()
}

// TunnelUp reports whether a tunnel-class interface holds an address.
// An invalid TunnelIP is the affirmative signal that the VPN is down;
// no cached value may override it.
func (s Snapshot) TunnelUp() bool {
	return s.TunnelIP.IsValid()
}
