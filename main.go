package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/smazurov/thermview/cmd"
	"github.com/smazurov/thermview/internal/api"
	"github.com/smazurov/thermview/internal/capture"
	"github.com/smazurov/thermview/internal/config"
	"github.com/smazurov/thermview/internal/devices"
	"github.com/smazurov/thermview/internal/display"
	"github.com/smazurov/thermview/internal/events"
	"github.com/smazurov/thermview/internal/led"
	"github.com/smazurov/thermview/internal/logging"
	"github.com/smazurov/thermview/internal/metrics/exporters"
	"github.com/smazurov/thermview/internal/systemd"
	"github.com/smazurov/thermview/internal/thermal"
	"github.com/smazurov/thermview/internal/version"
	"github.com/spf13/cobra"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"config.toml"`

	// Capture settings
	Device         string `help:"Capture device path, stable device ID, or synthetic" short:"d" default:"/dev/video0" toml:"capture.device" env:"CAPTURE_DEVICE"`
	ErrorPolicy    string `help:"What a bad frame does (skip, fatal)" default:"skip" toml:"capture.error_policy" env:"CAPTURE_ERROR_POLICY"`
	PollIntervalMs int    `help:"Stop signal poll interval in milliseconds" default:"10" toml:"capture.poll_interval_ms" env:"CAPTURE_POLL_INTERVAL_MS"`
	ReadTimeoutMs  int    `help:"Frame wait timeout in milliseconds" default:"1000" toml:"capture.read_timeout_ms" env:"CAPTURE_READ_TIMEOUT_MS"`
	NaNPolicy      string `help:"NaN handling in peak search (ignore, reject)" default:"ignore" toml:"capture.nan_policy" env:"CAPTURE_NAN_POLICY"`

	// Display settings
	OverlayLabel bool `help:"Draw the peak temperature next to the crosshair" default:"false" toml:"overlay.label" env:"OVERLAY_LABEL"`
	JPEGQuality  int  `help:"Heatmap JPEG quality (1-100)" default:"85" toml:"display.jpeg_quality" env:"DISPLAY_JPEG_QUALITY"`

	// Server settings
	Port string `help:"Port to listen on" short:"p" default:":8090" toml:"server.port" env:"SERVER_PORT"`

	// Auth settings
	AuthUsername string `help:"Basic auth username for protected endpoints" default:"" toml:"auth.username" env:"AUTH_USERNAME"`
	AuthPassword string `help:"Basic auth password for protected endpoints" default:"" toml:"auth.password" env:"AUTH_PASSWORD"`

	// Observability settings
	ObsPrometheusEnabled bool `help:"Expose Prometheus metrics on /metrics" default:"true" toml:"obs.prometheus_enabled" env:"OBS_PROMETHEUS_ENABLED"`
	ObsSSEEnabled        bool `help:"Publish periodic metrics on /api/metrics" default:"true" toml:"obs.sse_enabled" env:"OBS_SSE_ENABLED"`

	// Feature flags
	FeaturesLEDControl bool `help:"Show capture status on the board LED" default:"false" toml:"features.led_control_enabled" env:"FEATURES_LED_CONTROL_ENABLED"`

	// Logging settings
	LoggingLevel   string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat  string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingCapture string `help:"Capture logging level" default:"info" toml:"logging.capture" env:"LOGGING_CAPTURE"`
	LoggingDisplay string `help:"Display logging level" default:"info" toml:"logging.display" env:"LOGGING_DISPLAY"`
	LoggingAPI     string `help:"API logging level" default:"info" toml:"logging.api" env:"LOGGING_API"`
	LoggingHTTP    string `help:"HTTP request logging level" default:"info" toml:"logging.http" env:"LOGGING_HTTP"`
	LoggingDevices string `help:"Device watcher logging level" default:"info" toml:"logging.devices" env:"LOGGING_DEVICES"`
}

func loggingConfig(opts *Options) logging.Config {
	return logging.Config{
		Level:  opts.LoggingLevel,
		Format: opts.LoggingFormat,
		Modules: map[string]string{
			"capture": opts.LoggingCapture,
			"display": opts.LoggingDisplay,
			"api":     opts.LoggingAPI,
			"http":    opts.LoggingHTTP,
			"devices": opts.LoggingDevices,
		},
	}
}

// resolveDevice maps stable device IDs to device nodes.
func resolveDevice(device string) (string, error) {
	if device == capture.SyntheticDevice || strings.HasPrefix(device, "/") {
		return device, nil
	}
	return devices.ResolveDevicePath(device)
}

func main() {
	var positionalDevice string
	var cli humacli.CLI

	cli = humacli.New(func(hooks humacli.Hooks, opts *Options) {
		if loadErr := config.LoadConfig(opts, cli.Root()); loadErr != nil {
			slog.Warn("Failed to load config", "error", loadErr)
		}
		if positionalDevice != "" {
			opts.Device = positionalDevice
		}

		logging.Initialize(loggingConfig(opts))
		logger := logging.GetLogger("main")

		policy, err := capture.ParseErrorPolicy(opts.ErrorPolicy)
		if err != nil {
			logger.Error("Invalid configuration", "error", err)
			os.Exit(2)
		}
		nanPolicy, err := thermal.ParseNaNPolicy(opts.NaNPolicy)
		if err != nil {
			logger.Error("Invalid configuration", "error", err)
			os.Exit(2)
		}

		eventBus := events.New()

		// Mirror log entries onto the bus for /api/logs/stream.
		logging.SetLogCallback(func(entry logging.LogEntry) {
			eventBus.Publish(entry.Event())
		})

		sink := display.New(display.Options{Quality: opts.JPEGQuality})
		session := capture.New(capture.Config{
			Device: opts.Device,
			Open: func(path string) (capture.Source, error) {
				resolved, err := resolveDevice(path)
				if err != nil {
					return nil, err
				}
				return capture.DeviceOpener(opts.ReadTimeoutMs)(resolved)
			},
			Sink: sink,
			Pipeline: thermal.NewPipeline(thermal.Options{
				NaNPolicy: nanPolicy,
				Label:     opts.OverlayLabel,
			}),
			Policy:       policy,
			PollInterval: time.Duration(opts.PollIntervalMs) * time.Millisecond,
			Events:       eventBus,
		})

		detector := devices.NewDetector()
		deviceWatcher := devices.NewWatcher(detector, eventBus, logging.GetLogger("devices"))

		apiOpts := &api.Options{
			AuthUsername: opts.AuthUsername,
			AuthPassword: opts.AuthPassword,
			Session:      session,
			Display:      sink,
			EventBus:     eventBus,
			Detector:     detector,
		}
		if opts.ObsPrometheusEnabled {
			apiOpts.PrometheusHandler = exporters.HTTPHandler()
		}
		server := api.NewServer(apiOpts)

		var sseExporter *exporters.SSEExporter
		if opts.ObsSSEEnabled {
			sseExporter = exporters.NewSSEExporter(eventBus)
		}

		notifier := systemd.NewNotifier(logging.GetLogger("systemd"))
		eventBus.Subscribe(func(e events.SessionStateEvent) {
			switch e.State {
			case "connected":
				notifier.Ready()
				notifier.Status("capturing from %s", e.Device)
			case "stopped":
				notifier.Status("stopped: %s", e.Reason)
			}
		})

		var indicator *led.Indicator
		if opts.FeaturesLEDControl {
			ledLogger := logging.GetLogger("led")
			ctrl, name := led.Detect(ledLogger)
			if name != "" {
				indicator = led.NewIndicator(ctrl, name, eventBus, ledLogger)
			}
		}

		watcher := config.NewConfigWatcher(opts.Config, config.ReadLoggingConfig, logging.GetLogger("config"))
		watcher.OnReload(func(cfg logging.Config) {
			logger.Info("Reloading log levels", "level", cfg.Level)
			logging.SetLevels(cfg)
		})

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})

		hooks.OnStart(func() {
			defer close(done)

			if _, statErr := os.Stat(opts.Config); statErr == nil {
				if startErr := watcher.Start(); startErr != nil {
					logger.Warn("Failed to watch config file", "error", startErr)
				}
			}
			if sseExporter != nil {
				sseExporter.Start(ctx)
			}
			if indicator != nil {
				indicator.Start()
			}
			go notifier.Watchdog(ctx)
			go func() {
				if watchErr := deviceWatcher.Run(ctx); watchErr != nil {
					logger.Warn("Device hotplug watcher stopped", "error", watchErr)
				}
			}()

			go func() {
				if startErr := server.Start(opts.Port); startErr != nil {
					logger.Error("Failed to start HTTP server", "error", startErr)
					os.Exit(1)
				}
			}()

			logger.Info("Starting capture", "device", opts.Device, "error_policy", policy, "nan_policy", nanPolicy)
			runErr := session.Run(ctx)

			notifier.Stopping()
			if stopErr := server.Stop(); stopErr != nil {
				logger.Error("Error stopping HTTP server", "error", stopErr)
			}
			if sseExporter != nil {
				sseExporter.Stop()
			}
			if indicator != nil {
				indicator.Stop()
			}
			if stopErr := watcher.Stop(); stopErr != nil {
				logger.Warn("Error stopping config watcher", "error", stopErr)
			}

			switch {
			case errors.Is(runErr, capture.ErrDeviceOpen):
				logger.Error("Cannot open capture device", "error", runErr)
				os.Exit(1)
			case runErr != nil:
				logger.Error("Capture stopped on error", "error", runErr)
				os.Exit(1)
			}
			logger.Info("Capture stopped", "frames", session.Stats().Frames, "skipped", session.Stats().Skipped)
		})

		hooks.OnStop(func() {
			logger.Info("Shutting down")
			cancel()
			select {
			case <-done:
			case <-time.After(5 * time.Second):
				logger.Warn("Capture did not stop in time")
			}
		})
	})

	root := cli.Root()
	root.Use = "thermview [device]"
	root.Short = "Thermal camera heatmap viewer"
	root.Version = version.Full()
	root.Args = cobra.MaximumNArgs(1)
	parseOptions := root.PersistentPreRun
	root.PersistentPreRun = func(c *cobra.Command, args []string) {
		if c == root && len(args) == 1 {
			positionalDevice = args[0]
		}
		if parseOptions != nil {
			parseOptions(c, args)
		}
	}

	root.AddCommand(cmd.CreateDevicesCmd())

	cli.Run()
}
