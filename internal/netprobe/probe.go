package netprobe

import (
	"context"
	"net"
	"net/netip"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/user/bypass-monitor/internal/oscmd"
)

// Prober reads interface, address, gateway, and tunnel facts from the OS.
// Partial failure leaves the affected snapshot fields absent; Probe never
// returns an error.
type Prober struct {
	run            oscmd.Runner
	log            *logrus.Entry
	tunnelPrefixes []string

	// Seams for tests; default to the net package.
	interfaces     func() ([]net.Interface, error)
	interfaceAddrs func(*net.Interface) ([]net.Addr, error)
}

// NewProber creates a prober. tunnelPrefixes name the interface classes
// that count as VPN tunnels (for example utun, wg, ppp).
func NewProber(run oscmd.Runner, log *logrus.Entry, tunnelPrefixes []string) *Prober {
	return &Prober{
		run:            run,
		log:            log,
		tunnelPrefixes: tunnelPrefixes,
		interfaces:     net.Interfaces,
		interfaceAddrs: (*net.Interface).Addrs,
	}
}

// Probe returns the current network snapshot. Each underlying query is
// bounded by the runner's timeout.
func (p *Prober) Probe(ctx context.Context) Snapshot {
	var snap Snapshot

	ifName, gw, err := p.defaultRoute(ctx)
	if err != nil {
		p.log.WithError(err).Debug("default route undetermined")
	} else {
		snap.PhysicalInterface = ifName
		snap.Gateway = gw
		if ip, err := p.interfaceIPv4(ifName); err != nil {
			p.log.WithError(err).Debugf("no address on %s", ifName)
		} else {
			snap.PhysicalIP = ip
		}
	}

	snap.TunnelIP = p.tunnelIP()
	return snap
}

// interfaceIPv4 returns the first IPv4 address assigned to the named interface.
func (p *Prober) interfaceIPv4(name string) (netip.Addr, error) {
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return netip.Addr{}, err
	}
	addrs, err := p.interfaceAddrs(iface)
	if err != nil {
		return netip.Addr{}, err
	}
	return firstIPv4(addrs)
}

// tunnelIP returns the first IPv4 address found on any up tunnel-class
// interface, or an invalid Addr when no tunnel is up.
func (p *Prober) tunnelIP() netip.Addr {
	ifaces, err := p.interfaces()
	if err != nil {
		p.log.WithError(err).Debug("interface enumeration failed")
		return netip.Addr{}
	}

	for i := range ifaces {
		iface := ifaces[i]
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		if !p.isTunnelName(iface.Name) {
			continue
		}
		addrs, err := p.interfaceAddrs(&iface)
		if err != nil {
			continue
		}
		if ip, err := firstIPv4(addrs); err == nil {
			return ip
		}
	}

	return netip.Addr{}
}

func (p *Prober) isTunnelName(name string) bool {
	lower := strings.ToLower(name)
	for _, prefix := range p.tunnelPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

func firstIPv4(addrs []net.Addr) (netip.Addr, error) {
	for _, a := range addrs {
		var ip net.IP
		switch v := a.(type) {
		case *net.IPNet:
			ip = v.IP
		case *net.IPAddr:
			ip = v.IP
		default:
			continue
		}
		addr, ok := netip.AddrFromSlice(ip)
		if !ok {
			continue
		}
		addr = addr.Unmap()
		if addr.Is4() && !addr.IsLinkLocalUnicast() {
			return addr, nil
		}
	}
	return netip.Addr{}, errNoIPv4
}
