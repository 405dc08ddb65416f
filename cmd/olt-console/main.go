package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	southbound "github.com/nanoncore/olt-console"
	"github.com/nanoncore/olt-console/config"
	"github.com/nanoncore/olt-console/logging"
	"github.com/nanoncore/olt-console/metrics"
	"github.com/nanoncore/olt-console/vendors/huawei"
)

var (
	// Build info (set at compile time)
	BuildVersion = "dev"
	BuildCommit  = "unknown"
)

// Options holds the global command line flags
type Options struct {
	ConfigFile    string
	EnvFile       string
	Device        string
	Debug         bool
	JSONLog       bool
	MetricsListen string
	Output        string
}

// app is the state shared by the subcommands once flags are parsed.
type app struct {
	opts     Options
	cfg      *config.Config
	log      zerolog.Logger
	registry *prometheus.Registry
	metrics  *metrics.Collectors
	server   *http.Server
}

func main() {
	if err := rootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "olt-console",
		Short: "Operate Huawei GPON OLTs over their CLI",
		Long: `olt-console drives the SSH console of Huawei MA5600T/MA5800 OLTs:
  - read system version and ONT inventory
  - look up ONTs by serial number
  - provision ONTs and their service ports in batch`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return a.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.shutdown()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.opts.ConfigFile, "config.file", "c", "olt.yaml", "Device configuration file")
	flags.StringVar(&a.opts.EnvFile, "env-file", "", "Credentials file (default ./.env)")
	flags.StringVarP(&a.opts.Device, "device", "d", "", "Configured device to operate on")
	flags.BoolVar(&a.opts.Debug, "debug", false, "Enable debug logging")
	flags.BoolVar(&a.opts.JSONLog, "log.json", false, "Log as JSON")
	flags.StringVar(&a.opts.MetricsListen, "metrics.listen", "", "Serve Prometheus metrics on this address")
	flags.StringVarP(&a.opts.Output, "output", "o", "text", "Output format: text or yaml")

	version := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("olt-console %s (%s)\n", BuildVersion, BuildCommit)
		},
	}

	root.AddCommand(
		version,
		devicesCommand(a),
		sysinfoCommand(a),
		inventoryCommand(a),
		lookupCommand(a),
		servicePortsCommand(a),
		provisionCommand(a),
		statusCommand(a),
	)
	return root
}

func (a *app) setup() error {
	var envFiles []string
	if a.opts.EnvFile != "" {
		envFiles = append(envFiles, a.opts.EnvFile)
	}
	cfg, err := config.Load(a.opts.ConfigFile, envFiles...)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logCfg := cfg.Log
	if a.opts.Debug {
		logCfg.Level = "debug"
	}
	if a.opts.JSONLog {
		logCfg.JSON = true
	}
	a.log, err = logging.New(&logCfg)
	if err != nil {
		return err
	}

	listen := cfg.Metrics.Listen
	if a.opts.MetricsListen != "" {
		listen = a.opts.MetricsListen
	}
	a.registry = prometheus.NewRegistry()
	a.metrics = metrics.New(a.registry)
	if listen != "" {
		a.serveMetrics(listen, cfg.Metrics.Path)
	}
	return nil
}

func (a *app) serveMetrics(listen, path string) {
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	a.server = &http.Server{Addr: listen, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	a.log.Info().Str("listen", listen).Str("metrics_path", path).Msg("starting http server")
	go func() {
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error().Err(err).Msg("error starting http server")
		}
	}()
}

func (a *app) shutdown() error {
	if a.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return a.server.Shutdown(ctx)
}

// olt builds the driver for the selected device.
func (a *app) olt() (*huawei.Olt, error) {
	eq, err := a.equipment()
	if err != nil {
		return nil, err
	}
	return southbound.NewOlt(eq, southbound.WithLogger(a.log), southbound.WithMetrics(a.metrics))
}

func (a *app) equipment() (*southbound.EquipmentConfig, error) {
	name := a.opts.Device
	if name == "" {
		names := a.cfg.DeviceNames()
		if len(names) != 1 {
			return nil, fmt.Errorf("--device is required when %d devices are configured", len(names))
		}
		name = names[0]
	}
	return a.cfg.Equipment(name)
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
