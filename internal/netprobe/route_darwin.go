//go:build darwin

package netprobe

import (
	"context"
	"fmt"
	"net/netip"
)

// defaultRoute retrieves the default route interface and gateway (macOS).
func (p *Prober) defaultRoute(ctx context.Context) (string, netip.Addr, error) {
	out, err := p.run.Run(ctx, "route", "-n", "get", "default")
	if err != nil {
		return "", netip.Addr{}, fmt.Errorf("failed to get default route: %w", err)
	}
	return parseRouteGet(string(out))
}
