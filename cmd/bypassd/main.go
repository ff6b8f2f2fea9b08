// Bypassd is the privileged bypass daemon: it keeps packet-filter rules
// and the published connection address in sync with the current network.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/user/bypass-monitor/internal/config"
	"github.com/user/bypass-monitor/internal/elevate"
	"github.com/user/bypass-monitor/internal/firewall"
	"github.com/user/bypass-monitor/internal/logger"
	"github.com/user/bypass-monitor/internal/mediaserver"
	"github.com/user/bypass-monitor/internal/monitor"
	"github.com/user/bypass-monitor/internal/netprobe"
	"github.com/user/bypass-monitor/internal/notifier"
	"github.com/user/bypass-monitor/internal/oscmd"
)

func main() {
	configPath := pflag.String("config", "", "path to config file")
	pflag.Parse()

	config.LoadEnv()
	if *configPath == "" {
		*configPath = config.GetConfigPath()
	}

	mgr := config.NewManager(*configPath)
	if err := mgr.Load(); err != nil {
		logger.New("bypassd", logger.Options{}).WithError(err).Fatal("failed to load config")
	}
	cfg := mgr.Get()

	log := logger.New("bypassd", logger.Options{
		Dir:      cfg.Log.Dir,
		Level:    cfg.Log.Level,
		MaxBytes: cfg.Log.MaxBytes,
	})
	defer logger.Recover(log, "bypassd")

	// pf anchors can only be managed as root.
	if !elevate.IsAdmin() {
		log.Fatal("bypassd must run as root")
	}

	runner := oscmd.NewRunner(time.Duration(cfg.Network.CommandTimeoutSeconds) * time.Second)

	probe := netprobe.NewProber(runner, logger.Component(log, "netprobe"), cfg.Network.TunnelPrefixes)
	fw := firewall.New(runner, logger.Component(log, "firewall"), cfg.Bypass.Anchor, cfg.Bypass.ServicePort)
	tokens := mediaserver.NewTokenStore(cfg.App.TokenPaths, cfg.App.PreferencesFile)
	client := mediaserver.NewClient(cfg.App.BaseURL, logger.Component(log, "mediaserver"))
	endpoint := notifier.New(tokens, client, cfg.Bypass.ProbeURL, cfg.Bypass.PublicPort,
		logger.Component(log, "notifier"))

	loop := monitor.NewBypassLoop(probe, fw, endpoint,
		time.Duration(cfg.Bypass.IntervalSeconds)*time.Second,
		logger.Component(log, "bypass"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Infof("bypassd starting, interval %ds, anchor %s", cfg.Bypass.IntervalSeconds, cfg.Bypass.Anchor)
	loop.Run(ctx)

	// No firewall teardown on exit: stale-but-correct rules keep the
	// bypass path live until the daemon comes back.
	log.Info("bypassd exiting")
}
