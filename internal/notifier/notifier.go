// Package notifier pushes the bypass path's public address to the managed application.
package notifier

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/user/bypass-monitor/internal/netprobe"
)

// TokenSource resolves the managed application's auth token.
type TokenSource interface {
	Token() (string, error)
}

// Publisher pushes connection URLs to the external service.
type Publisher interface {
	PublishConnections(ctx context.Context, token string, urls []string) error
}

// Notifier tracks the last public IP confirmed to the service and pushes
// an update whenever the observed one differs. The record only advances
// after a successful push, so a failed push retries against the same
// stale baseline next tick.
type Notifier struct {
	tokens     TokenSource
	publisher  Publisher
	probeURL   string
	publicPort int
	log        *logrus.Entry

	lastKnownPublicIP string

	// Seam for tests; defaults to the bound HTTP probe.
	resolvePublicIP func(ctx context.Context, snap netprobe.Snapshot) (string, error)
}

// New creates a notifier. probeURL must return the caller's public IP as
// plain text; publicPort is the externally reachable service port.
func New(tokens TokenSource, publisher Publisher, probeURL string, publicPort int, log *logrus.Entry) *Notifier {
	n := &Notifier{
		tokens:     tokens,
		publisher:  publisher,
		probeURL:   probeURL,
		publicPort: publicPort,
		log:        log,
	}
	n.resolvePublicIP = n.boundPublicIP
	return n
}

// NotifyIfChanged probes the public IP over the bypass path and pushes it
// when it differs from the last confirmed value. A missing token degrades
// to a warned no-op; everything else is retryable.
func (n *Notifier) NotifyIfChanged(ctx context.Context, snap netprobe.Snapshot) error {
	if !snap.HasUplink() {
		n.log.Debug("uplink undetermined, skipping endpoint check")
		return nil
	}

	token, err := n.tokens.Token()
	if err != nil {
		n.log.WithError(err).Warn("no auth token, endpoint notification disabled this tick")
		return nil
	}

	ip, err := n.resolvePublicIP(ctx, snap)
	if err != nil {
		return fmt.Errorf("public IP probe failed: %w", err)
	}

	if ip == n.lastKnownPublicIP {
		return nil
	}

	connURL := fmt.Sprintf("http://%s:%d", ip, n.publicPort)
	if err := n.publisher.PublishConnections(ctx, token, []string{connURL}); err != nil {
		return fmt.Errorf("failed to publish %s: %w", connURL, err)
	}

	n.log.Infof("public address changed %q -> %q", n.lastKnownPublicIP, ip)
	n.lastKnownPublicIP = ip
	return nil
}

// boundPublicIP asks the probe URL for our public IP from a socket bound
// to the physical interface and address, so the answer reflects the
// bypass path rather than the tunnel.
func (n *Notifier) boundPublicIP(ctx context.Context, snap netprobe.Snapshot) (string, error) {
	client, err := boundClient(snap)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.probeURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("probe returned %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64))
	if err != nil {
		return "", err
	}

	ipStr := strings.TrimSpace(string(body))
	if _, err := netip.ParseAddr(ipStr); err != nil {
		return "", fmt.Errorf("probe returned %q: %w", ipStr, err)
	}
	return ipStr, nil
}

// boundClient builds an HTTP client whose sockets carry the physical
// source address and are pinned to the physical interface.
func boundClient(snap netprobe.Snapshot) (*http.Client, error) {
	iface, err := net.InterfaceByName(snap.PhysicalInterface)
	if err != nil {
		return nil, fmt.Errorf("physical interface vanished: %w", err)
	}

	dialer := &net.Dialer{
		Timeout:   5 * time.Second,
		LocalAddr: &net.TCPAddr{IP: snap.PhysicalIP.AsSlice()},
		Control:   bindControl(snap.PhysicalInterface, iface.Index),
	}

	return &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			DialContext:       dialer.DialContext,
			DisableKeepAlives: true,
		},
	}, nil
}
