package config

import (
	"fmt"
	"net/url"
)

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Version < 1 {
		return fmt.Errorf("invalid config version")
	}

	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log config: %w", err)
	}
	if err := c.Network.Validate(); err != nil {
		return fmt.Errorf("network config: %w", err)
	}
	if err := c.Bypass.Validate(); err != nil {
		return fmt.Errorf("bypass config: %w", err)
	}
	if err := c.TunnelWatch.Validate(); err != nil {
		return fmt.Errorf("tunnel_watch config: %w", err)
	}
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app config: %w", err)
	}

	// The watch loop must observe tunnel drops faster than the bypass
	// loop re-derives firewall state.
	if c.TunnelWatch.IntervalSeconds >= c.Bypass.IntervalSeconds {
		return fmt.Errorf("tunnel_watch interval (%ds) must be shorter than bypass interval (%ds)",
			c.TunnelWatch.IntervalSeconds, c.Bypass.IntervalSeconds)
	}

	return nil
}

// Validate validates log configuration.
func (l *Log) Validate() error {
	switch l.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown level: %s", l.Level)
	}
	if l.MaxBytes < 4096 {
		return fmt.Errorf("max_bytes must be at least 4096")
	}
	return nil
}

// Validate validates network probe configuration.
func (n *Network) Validate() error {
	if len(n.TunnelPrefixes) == 0 {
		return fmt.Errorf("tunnel_prefixes is required")
	}
	if n.CommandTimeoutSeconds < 1 || n.CommandTimeoutSeconds > 60 {
		return fmt.Errorf("command_timeout_seconds must be between 1 and 60")
	}
	return nil
}

// Validate validates bypass loop configuration.
func (b *Bypass) Validate() error {
	if b.IntervalSeconds < 1 {
		return fmt.Errorf("interval_seconds must be positive")
	}
	if b.Anchor == "" {
		return fmt.Errorf("anchor is required")
	}
	if b.ServicePort < 1 || b.ServicePort > 65535 {
		return fmt.Errorf("service_port must be between 1 and 65535")
	}
	if b.PublicPort < 1 || b.PublicPort > 65535 {
		return fmt.Errorf("public_port must be between 1 and 65535")
	}
	if _, err := url.Parse(b.ProbeURL); err != nil || b.ProbeURL == "" {
		return fmt.Errorf("invalid probe_url: %s", b.ProbeURL)
	}
	return nil
}

// Validate validates tunnel watch configuration.
func (t *TunnelWatch) Validate() error {
	if t.IntervalSeconds < 1 {
		return fmt.Errorf("interval_seconds must be positive")
	}
	if t.GraceSeconds < 1 {
		return fmt.Errorf("grace_seconds must be positive")
	}
	return nil
}

// Validate validates managed application configuration.
func (a *App) Validate() error {
	if a.Name == "" {
		return fmt.Errorf("name is required")
	}
	if a.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	if _, err := url.Parse(a.BaseURL); err != nil {
		return fmt.Errorf("invalid base_url: %w", err)
	}
	if a.PrefDomain == "" {
		return fmt.Errorf("pref_domain is required")
	}
	if a.BindAddressKey == "" {
		return fmt.Errorf("bind_address_key is required")
	}
	return nil
}
