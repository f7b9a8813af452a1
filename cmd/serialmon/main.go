// Command serialmon monitors several serial devices with timestamps and
// keyword highlighting.
//
//	serialmon /dev/ttyAMA2,/dev/ttyAMA3 --baud 38400
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/luhtfiimanal/serialmon/config"
	"github.com/luhtfiimanal/serialmon/monitor"
)

// Build variables - set by ldflags during build.
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	v := config.New()
	var (
		configPath  string
		printConfig bool
	)

	cmd := &cobra.Command{
		Use:   "serialmon DEVICE[,DEVICE...] [DEVICE...]",
		Short: "Monitor multiple serial devices with timestamps",
		Long: "serialmon tails several serial devices at once and prints every line with a\n" +
			"timestamp and the device it came from. Protocol keywords (HELLO, CLAIM, JOIN,\n" +
			"ASSIGN, COORDINATOR, MEMBER) are highlighted and DEBUG: lines are dimmed.",
		Example: "  serialmon /dev/ttyAMA2,/dev/ttyAMA3\n" +
			"  serialmon /dev/ttyUSB0 /dev/ttyUSB1 --baud 115200\n" +
			"  serialmon /dev/ttyAMA2,/dev/ttyAMA3,/dev/ttyAMA4 -b 38400",
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, buildTime),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMonitor(cmd.Context(), v, configPath, printConfig, args, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.Flags()
	flags.StringVar(&configPath, "config", "", "config file (default is $HOME/.config/serialmon/config.yml)")
	flags.BoolVar(&printConfig, "print-config", false, "print the resolved configuration as YAML and exit")
	flags.IntP(config.KeyBaud, "b", config.DefaultBaud, "baud rate for all devices")
	flags.Duration(config.KeyReadTimeout, config.DefaultReadTimeout, "how long a read waits before re-checking for shutdown")
	flags.Duration(config.KeyShutdownTimeout, config.DefaultShutdownTimeout, "how long to wait for readers to stop after Ctrl+C")
	flags.Int(config.KeyDeviceWidth, config.DefaultDeviceWidth, "width of the device name column")
	flags.String(config.KeyColor, config.DefaultColor, "color output: auto, always or never")
	flags.String(config.KeyLogLevel, config.DefaultLogLevel, "diagnostic log level on stderr: debug, info, warn or error")
	for _, key := range []string{
		config.KeyBaud, config.KeyReadTimeout, config.KeyShutdownTimeout,
		config.KeyDeviceWidth, config.KeyColor, config.KeyLogLevel,
	} {
		_ = v.BindPFlag(key, flags.Lookup(key))
	}
	return cmd
}

func runMonitor(ctx context.Context, v *viper.Viper, configPath string, printConfig bool, args []string, stdout, stderr io.Writer) error {
	cfg, err := config.Load(v, configPath)
	if err != nil {
		report(stderr, config.ColorAuto, err.Error())
		return err
	}

	specs := cfg.Devices
	if len(args) > 0 {
		specs = args
	}
	devices := config.ParseDevices(specs)

	if printConfig {
		cfg.Devices = devices
		out, err := config.Dump(cfg)
		if err != nil {
			report(stderr, cfg.Color, err.Error())
			return err
		}
		_, err = stdout.Write(out)
		return err
	}

	if err := config.CheckDevices(devices); err != nil {
		report(stderr, cfg.Color, describe(err))
		return err
	}

	logger := newLogger(stderr, cfg.LogLevel)
	logger.Debug("configuration loaded",
		"config", cfg.ConfigPath, "devices", devices, "baud", cfg.Baud, "read_timeout", cfg.ReadTimeout)

	styles := monitor.NewStyles(newRenderer(stdout, cfg.Color))
	console := monitor.NewConsole(stdout)
	m := monitor.New(devices, styles, console, monitor.Options{
		Baud:            cfg.Baud,
		ReadTimeout:     cfg.ReadTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
		DeviceWidth:     cfg.DeviceWidth,
		Logger:          logger,
	})
	m.Run(ctx)

	_ = console.Println(m.Formatter().Stopped())
	return nil
}

func describe(err error) string {
	var devErr *config.DeviceError
	switch {
	case errors.Is(err, config.ErrNoDevices):
		return "No devices specified"
	case errors.Is(err, config.ErrDeviceNotFound) && errors.As(err, &devErr):
		return fmt.Sprintf("Device %s does not exist", devErr.Device)
	default:
		return err.Error()
	}
}

// report prints a fatal startup error before any reader exists.
func report(w io.Writer, color, message string) {
	styles := monitor.NewStyles(newRenderer(w, color))
	f := monitor.NewFormatter(styles, monitor.AssignColors(nil, nil), 0)
	_ = monitor.NewConsole(w).Println(f.Failure(message))
}

func newRenderer(w io.Writer, color string) *lipgloss.Renderer {
	r := lipgloss.NewRenderer(w)
	switch color {
	case config.ColorAlways:
		r.SetColorProfile(termenv.ANSI)
	case config.ColorNever:
		r.SetColorProfile(termenv.Ascii)
	}
	return r
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}
