// Package config handles bypass monitor configuration loading, saving, and validation.
package config

// Config represents the main configuration structure shared by both daemons.
type Config struct {
	Version     int         `yaml:"version"`
	Log         Log         `yaml:"log"`
	Network     Network     `yaml:"network"`
	Bypass      Bypass      `yaml:"bypass"`
	TunnelWatch TunnelWatch `yaml:"tunnel_watch"`
	App         App         `yaml:"app"`
}

// Log configures the per-component rotating log files.
type Log struct {
	Dir      string `yaml:"dir,omitempty"` // empty = OS default
	Level    string `yaml:"level"`
	MaxBytes int64  `yaml:"max_bytes"` // rotation threshold per log file
}

// Network configures how the probe reads network truth from the OS.
type Network struct {
	TunnelPrefixes        []string `yaml:"tunnel_prefixes"`
	CommandTimeoutSeconds int      `yaml:"command_timeout_seconds"`
}

// Bypass configures the privileged bypass loop (firewall + endpoint push).
type Bypass struct {
	IntervalSeconds int    `yaml:"interval_seconds"`
	Anchor          string `yaml:"anchor"`
	ServicePort     int    `yaml:"service_port"`
	PublicPort      int    `yaml:"public_port"`
	ProbeURL        string `yaml:"probe_url"`
}

// TunnelWatch configures the user-level tunnel watch loop (process supervisor).
type TunnelWatch struct {
	IntervalSeconds int `yaml:"interval_seconds"`
	GraceSeconds    int `yaml:"grace_seconds"`
}

// App describes the managed media server application.
type App struct {
	Name            string   `yaml:"name"`             // process name for running checks and signals
	LaunchCommand   []string `yaml:"launch_command"`   // command + args; empty = launch by name
	BaseURL         string   `yaml:"base_url"`         // local HTTP endpoint of the app
	PrefDomain      string   `yaml:"pref_domain"`      // preference domain holding the bind address
	BindAddressKey  string   `yaml:"bind_address_key"` // preference key for the bind address
	TokenPaths      []string `yaml:"token_paths,omitempty"`
	PreferencesFile string   `yaml:"preferences_file,omitempty"` // app preference XML, token fallback
}

// DefaultConfig returns a default configuration.
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Log: Log{
			Level:    "info",
			MaxBytes: 1 << 20,
		},
		Network: Network{
			TunnelPrefixes:        []string{"utun", "tun", "tap", "wg", "ppp", "ipsec"},
			CommandTimeoutSeconds: 5,
		},
		Bypass: Bypass{
			IntervalSeconds: 60,
			Anchor:          "com.bypassmonitor.rules",
			ServicePort:     32400,
			PublicPort:      32400,
			ProbeURL:        "https://api.ipify.org",
		},
		TunnelWatch: TunnelWatch{
			IntervalSeconds: 5,
			GraceSeconds:    10,
		},
		App: App{
			Name:           "Media Server",
			BaseURL:        "http://127.0.0.1:32400",
			PrefDomain:     "com.mediaserver.server",
			BindAddressKey: "BindAddress",
		},
	}
}
