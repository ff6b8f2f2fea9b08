// Tunnelwatch is the user-level watch daemon: it stops the managed
// application the moment the VPN tunnel drops and relaunches it, bound to
// the tunnel address, when the tunnel returns.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/user/bypass-monitor/internal/config"
	"github.com/user/bypass-monitor/internal/logger"
	"github.com/user/bypass-monitor/internal/monitor"
	"github.com/user/bypass-monitor/internal/netprobe"
	"github.com/user/bypass-monitor/internal/oscmd"
	"github.com/user/bypass-monitor/internal/supervisor"
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
		logger.New("tunnelwatch", logger.Options{}).WithError(err).Fatal("failed to load config")
	}
	cfg := mgr.Get()

	log := logger.New("tunnelwatch", logger.Options{
		Dir:      cfg.Log.Dir,
		Level:    cfg.Log.Level,
		MaxBytes: cfg.Log.MaxBytes,
	})
	defer logger.Recover(log, "tunnelwatch")

	runner := oscmd.NewRunner(time.Duration(cfg.Network.CommandTimeoutSeconds) * time.Second)

	probe := netprobe.NewProber(runner, logger.Component(log, "netprobe"), cfg.Network.TunnelPrefixes)
	ctl := supervisor.NewExecController(runner, cfg.App.Name, cfg.App.LaunchCommand,
		cfg.App.PrefDomain, cfg.App.BindAddressKey, cfg.App.PreferencesFile)
	sup := supervisor.New(ctl, logger.Component(log, "supervisor"),
		time.Duration(cfg.TunnelWatch.GraceSeconds)*time.Second)

	watch := monitor.NewTunnelWatch(probe, sup,
		time.Duration(cfg.TunnelWatch.IntervalSeconds)*time.Second,
		logger.Component(log, "tunnelwatch"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Infof("tunnelwatch starting, interval %ds, app %q", cfg.TunnelWatch.IntervalSeconds, cfg.App.Name)
	watch.Run(ctx)
	log.Info("tunnelwatch exiting")
}
