// pulsebar is a status-line aggregator for swaybar/i3bar.
//
// It polls independent, occasionally unreliable data sources — MPD for the
// current track, wpctl for the sink volume, a weather CLI, optionally
// CPU/RAM load — and streams one merged line per tick to stdout in the
// i3bar JSON protocol. A source that fails simply shows its fallback glyph
// until it recovers; nothing a source does can stall the bar.
//
// Usage:
//
//	pulsebar [flags]
//
// Flags:
//
//	-config string    Path to configuration file (default: ~/.config/pulsebar/config.toml)
//	-no-mpd           Disable the now-playing source
//	-no-vol           Disable the volume source
//	-no-weather       Disable the weather source
//	-sys              Enable the CPU/RAM source
//	-check-weather    Re-validate the weather station on every poll
//	-no-stop-on-hide  Keep updating while the bar is hidden
//	-output string    Stream format: auto, protocol, or plain (default auto)
//	-verbose          Enable verbose logging
//	-version          Print version and exit
//
// Environment:
//
//	MPD_HOST          MPD target: unix socket path (leading /) or host:port
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"

	"gitlab.com/tinyland/lab/pulsebar/pkg/config"
	"gitlab.com/tinyland/lab/pulsebar/pkg/sources"
	"gitlab.com/tinyland/lab/pulsebar/pkg/sources/mpdsource"
	"gitlab.com/tinyland/lab/pulsebar/pkg/sources/sysload"
	"gitlab.com/tinyland/lab/pulsebar/pkg/sources/volume"
	"gitlab.com/tinyland/lab/pulsebar/pkg/sources/weather"
	"gitlab.com/tinyland/lab/pulsebar/pkg/statusline"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

// warmup gives the pollers a head start so the very first tick already has
// real segment text instead of three fallbacks.
const warmup = 20 * time.Millisecond

func main() {
	var (
		configPath   = flag.String("config", "", "Path to configuration file")
		noMPD        = flag.Bool("no-mpd", false, "Disable the now-playing source")
		noVol        = flag.Bool("no-vol", false, "Disable the volume source")
		noWeather    = flag.Bool("no-weather", false, "Disable the weather source")
		sys          = flag.Bool("sys", false, "Enable the CPU/RAM source")
		checkWeather = flag.Bool("check-weather", false, "Re-validate the weather station on every poll")
		noStopOnHide = flag.Bool("no-stop-on-hide", false, "Keep updating while the bar is hidden")
		output       = flag.String("output", "", "Stream format: auto, protocol, or plain")
		verbose      = flag.Bool("verbose", false, "Enable verbose logging")
		showVersion  = flag.Bool("version", false, "Print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("pulsebar %s (%s)\n", version, commit)
		os.Exit(0)
	}

	// Load configuration; flags override the file.
	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFromFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if *noMPD {
		cfg.Sources.MPD.Enabled = false
	}
	if *noVol {
		cfg.Sources.Volume.Enabled = false
	}
	if *noWeather {
		cfg.Sources.Weather.Enabled = false
	}
	if *sys {
		cfg.Sources.Sysload.Enabled = true
	}
	if *checkWeather {
		cfg.Sources.Weather.Check = true
	}
	if *noStopOnHide {
		cfg.General.StopOnHide = false
	}
	if *output != "" {
		cfg.General.Output = *output
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	// Diagnostics go to stderr; stdout belongs to the protocol stream.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(cfg.General.LogLevel, *verbose),
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("received shutdown signal")
		cancel()
	}()

	// Build the poller list in declared segment order.
	var pollers []*sources.Poller
	if cfg.Sources.MPD.Enabled {
		pollers = append(pollers, sources.NewPoller(mpdsource.New(mpdsource.Config{
			Host:       cfg.Sources.MPD.Host,
			Interval:   cfg.Sources.MPD.Interval.Duration,
			RetryDelay: cfg.Sources.MPD.RetryDelay.Duration,
			Fallback:   cfg.Sources.MPD.Fallback,
		}), logger))
	}
	if cfg.Sources.Volume.Enabled {
		pollers = append(pollers, sources.NewPoller(volume.New(volume.Config{
			Command:  cfg.Sources.Volume.Command,
			Sink:     cfg.Sources.Volume.Sink,
			Interval: cfg.Sources.Volume.Interval.Duration,
			Fallback: cfg.Sources.Volume.Fallback,
		}), logger))
	}
	if cfg.Sources.Weather.Enabled {
		pollers = append(pollers, sources.NewPoller(weather.New(weather.Config{
			Command:  cfg.Sources.Weather.Command,
			Check:    cfg.Sources.Weather.Check,
			Interval: cfg.Sources.Weather.Interval.Duration,
			Fallback: cfg.Sources.Weather.Fallback,
		}), logger))
	}
	if cfg.Sources.Sysload.Enabled {
		pollers = append(pollers, sources.NewPoller(sysload.New(sysload.Config{
			Interval: cfg.Sources.Sysload.Interval.Duration,
			Fallback: cfg.Sources.Sysload.Fallback,
		}), logger))
	}

	for _, p := range pollers {
		p.Start(ctx)
		logger.Debug("poller started",
			"source", p.Source().Name(),
			"interval", p.Source().Interval(),
		)
	}
	time.Sleep(warmup)

	header := statusline.DefaultHeader()
	if !cfg.General.StopOnHide {
		header.DisableSignals()
	}

	opts := []statusline.LoopOption{statusline.WithTick(cfg.General.Tick.Duration)}
	if plainOutput(cfg.General.Output) {
		opts = append(opts, statusline.WithPlainOutput())
	}

	loop := statusline.NewLoop(pollers, opts...)
	if err := loop.Run(ctx, os.Stdout, header); err != nil && err != context.Canceled {
		logger.Error("render loop failed", "error", err)
		os.Exit(1)
	}
}

// plainOutput resolves the output mode: "auto" means plain when stdout is
// an interactive terminal, protocol otherwise.
func plainOutput(mode string) bool {
	switch mode {
	case "plain":
		return true
	case "protocol":
		return false
	default:
		fd := os.Stdout.Fd()
		return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}
}

// logLevel maps the configured level to slog, with -verbose forcing debug.
func logLevel(level string, verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
