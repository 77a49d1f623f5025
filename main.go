package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/smazurov/radionode/cmd"
	"github.com/smazurov/radionode/internal/config"
	"github.com/smazurov/radionode/internal/logging"
)

const shutdownTimeout = 5 * time.Second

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"config.toml"`

	// Server settings
	Port string `help:"Port to listen on" short:"p" default:":8090" toml:"server.port" env:"SERVER_PORT"`

	// Auth settings
	AuthUsername string `help:"Basic auth username" default:"admin" toml:"auth.username" env:"AUTH_USERNAME"`
	AuthPassword string `help:"Basic auth password" default:"password" toml:"auth.password" env:"AUTH_PASSWORD"`

	// NATS settings
	NatsServer string `help:"NATS server URL, empty disables the bridge" default:"" toml:"nats.server" env:"NATS_SERVER"`
	NatsNode   string `help:"Node name used in NATS subjects" default:"radionode" toml:"nats.node" env:"NATS_NODE"`

	// Sink settings
	SinkPath          string `help:"File or FIFO receiving captured samples, empty disables the pump" default:"" toml:"sink.path" env:"SINK_PATH"`
	SinkFormat        string `help:"Sample format written to the sink (CF32, CS32, CS16)" default:"CF32" toml:"sink.format" env:"SINK_FORMAT"`
	SinkStatsInterval string `help:"Signal statistics period, 0 disables" default:"0s" toml:"sink.stats_interval" env:"SINK_STATS_INTERVAL"`

	// Features settings
	MetricsEnabled bool   `help:"Expose Prometheus metrics" default:"true" toml:"features.metrics_enabled" env:"FEATURES_METRICS"`
	FeaturesLeds   bool   `help:"Enable LED control" default:"false" toml:"features.led_control_enabled" env:"FEATURES_LED_CONTROL"`
	MdnsEnabled    bool   `help:"Advertise the API over mDNS" default:"false" toml:"mdns.enabled" env:"MDNS_ENABLED"`
	MdnsInstance   string `help:"mDNS instance name, defaults to the hostname" default:"" toml:"mdns.instance" env:"MDNS_INSTANCE"`

	// Logging settings
	LoggingLevel  string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingDevice string `help:"Device logging level" default:"info" toml:"logging.device" env:"LOGGING_DEVICE"`
	LoggingStream string `help:"Stream logging level" default:"info" toml:"logging.stream" env:"LOGGING_STREAM"`
	LoggingPump   string `help:"Capture pump logging level" default:"info" toml:"logging.pump" env:"LOGGING_PUMP"`
	LoggingApi    string `help:"API logging level" default:"info" toml:"logging.api" env:"LOGGING_API"`
	LoggingNats   string `help:"NATS logging level" default:"info" toml:"logging.nats" env:"LOGGING_NATS"`
}

func main() {
	var cli humacli.CLI
	cli = humacli.New(func(hooks humacli.Hooks, opts *Options) {
		if loadErr := config.LoadConfig(opts, cli.Root()); loadErr != nil {
			slog.Warn("Failed to load config", "error", loadErr)
		}

		logging.Initialize(logging.Config{
			Level:  opts.LoggingLevel,
			Format: opts.LoggingFormat,
			Modules: map[string]string{
				"device": opts.LoggingDevice,
				"stream": opts.LoggingStream,
				"pump":   opts.LoggingPump,
				"api":    opts.LoggingApi,
				"nats":   opts.LoggingNats,
			},
		})
		logger := logging.GetLogger("main")

		statsInterval, err := time.ParseDuration(opts.SinkStatsInterval)
		if err != nil {
			logger.Warn("Invalid sink stats interval, statistics disabled", "value", opts.SinkStatsInterval)
			statsInterval = 0
		}

		instance := ""
		if opts.MdnsEnabled {
			instance = opts.MdnsInstance
			if instance == "" {
				if instance, err = os.Hostname(); err != nil {
					instance = "radionode"
				}
			}
		}

		var service *cmd.Service

		hooks.OnStart(func() {
			service, err = cmd.NewService(cmd.ServeOptions{
				ConfigPath:        opts.Config,
				Addr:              opts.Port,
				AuthUsername:      opts.AuthUsername,
				AuthPassword:      opts.AuthPassword,
				MetricsEnabled:    opts.MetricsEnabled,
				LedsEnabled:       opts.FeaturesLeds,
				NatsServer:        opts.NatsServer,
				NatsNode:          opts.NatsNode,
				MdnsInstance:      instance,
				SinkPath:          opts.SinkPath,
				SinkFormat:        opts.SinkFormat,
				SinkStatsInterval: statsInterval,
			})
			if err != nil {
				logger.Error("Failed to open radio", "error", err)
				os.Exit(1)
			}

			logger.Info("Starting HTTP server", "port", opts.Port)
			if startErr := service.Run(); startErr != nil {
				logger.Error("Failed to start HTTP server", "error", startErr)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			if service == nil {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			service.Shutdown(ctx)
		})
	})

	cli.Root().AddCommand(cmd.CreateDevicesCmd())
	cli.Root().AddCommand(cmd.CreateCaptureCmd())
	cli.Root().AddCommand(cmd.CreateTuneCmd())

	cli.Run()
}
