package netprobe

import (
	"errors"
	"fmt"
	"net/netip"
	"strings"
)

var errNoIPv4 = errors.New("no IPv4 address")

// parseRouteGet parses `route -n get default` output (macOS/BSD) into
// the interface name and gateway address.
func parseRouteGet(out string) (string, netip.Addr, error) {
	var gwStr, ifName string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "gateway:") {
			gwStr = strings.TrimSpace(strings.TrimPrefix(line, "gateway:"))
		}
		if strings.HasPrefix(line, "interface:") {
			ifName = strings.TrimSpace(strings.TrimPrefix(line, "interface:"))
		}
	}

	if gwStr == "" || ifName == "" {
		return "", netip.Addr{}, fmt.Errorf("could not parse default route")
	}

	gw, err := netip.ParseAddr(gwStr)
	if err != nil {
		return "", netip.Addr{}, fmt.Errorf("failed to parse gateway: %w", err)
	}

	return ifName, gw, nil
}

// parseIPRoute parses `ip -4 route show default` output (Linux), e.g.
// "default via 192.168.1.1 dev eth0 proto dhcp metric 100".
func parseIPRoute(out string) (string, netip.Addr, error) {
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 5 || fields[0] != "default" {
			continue
		}

		var gwStr, ifName string
		for i := 1; i < len(fields)-1; i++ {
			switch fields[i] {
			case "via":
				gwStr = fields[i+1]
			case "dev":
				ifName = fields[i+1]
			}
		}
		if gwStr == "" || ifName == "" {
			continue
		}

		gw, err := netip.ParseAddr(gwStr)
		if err != nil {
			return "", netip.Addr{}, fmt.Errorf("failed to parse gateway: %w", err)
		}
		return ifName, gw, nil
	}

	return "", netip.Addr{}, fmt.Errorf("could not parse default route")
}
