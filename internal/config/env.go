package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadEnv loads environment variables from local .env files if present.
// Missing files are not an error; the process environment always wins.
func LoadEnv() {
	for _, file := range []string{".env", ".env.local"} {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		_ = godotenv.Overload(file)
	}
}

// GetConfigPath returns the configuration path: BYPASS_CONFIG if set,
// otherwise config.yaml next to the executable.
func GetConfigPath() string {
	if p := os.Getenv("BYPASS_CONFIG"); p != "" {
		return p
	}
	exe, err := os.Executable()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(filepath.Dir(exe), "config.yaml")
}

// applyEnvOverrides lets a few operational knobs be tuned per host
// without editing the config file.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_DIR"); v != "" {
		cfg.Log.Dir = v
	}
	if v := envInt("BYPASS_INTERVAL_SECONDS"); v > 0 {
		cfg.Bypass.IntervalSeconds = v
	}
	if v := envInt("TUNNEL_WATCH_INTERVAL_SECONDS"); v > 0 {
		cfg.TunnelWatch.IntervalSeconds = v
	}
	if v := os.Getenv("BYPASS_PROBE_URL"); v != "" {
		cfg.Bypass.ProbeURL = v
	}
}

func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
