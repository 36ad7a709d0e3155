package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/slok/idev/cmd/idev/commands"
	"github.com/slok/idev/internal/log"
	loglogrus "github.com/slok/idev/internal/log/logrus"
	metricsprometheus "github.com/slok/idev/internal/metrics/prometheus"
)

const (
	// Version is the application version (set via ldflags).
	Version = "dev"
)

// Run runs the main application.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) (err error) {
	app := kingpin.New("idev", "Talk to iOS devices through lifetime safe native handles.")
	app.DefaultEnvars()
	rootCmd := commands.NewRootCommand(app)

	// Setup commands (registers flags).
	devicesCmd := commands.NewDevicesCommand(rootCmd, app)
	getValueCmd := commands.NewGetValueCommand(rootCmd, app)
	historyCmd := commands.NewHistoryCommand(rootCmd, app)

	serviceCmd := app.Command("service", "Manage lockdown services.")
	serviceStartCmd := commands.NewServiceStartCommand(rootCmd, serviceCmd)

	imgCmd := commands.NewImageCommand(app)
	imageLookupCmd := commands.NewImageLookupCommand(rootCmd, imgCmd)
	imageMountCmd := commands.NewImageMountCommand(rootCmd, imgCmd)

	cmds := map[string]commands.Command{
		devicesCmd.Name():      devicesCmd,
		getValueCmd.Name():     getValueCmd,
		historyCmd.Name():      historyCmd,
		serviceStartCmd.Name(): serviceStartCmd,
		imageLookupCmd.Name():  imageLookupCmd,
		imageMountCmd.Name():   imageMountCmd,
	}

	// Parse command.
	cmdName, err := app.Parse(args[1:])
	if err != nil {
		return fmt.Errorf("invalid command configuration: %w", err)
	}

	// Set standard input/output.
	rootCmd.Stdin = stdin
	rootCmd.Stdout = stdout
	rootCmd.Stderr = stderr

	// Commands that print structured output are quiet unless debugging.
	printerCommands := map[string]bool{
		"devices":      true,
		"get-value":    true,
		"history":      true,
		"image lookup": true,
	}
	if printerCommands[cmdName] && !rootCmd.Debug {
		rootCmd.NoLog = true
	}

	// Set logger.
	rootCmd.Logger = getLogger(*rootCmd)

	// Set metrics, written once the command finishes.
	reg := prometheus.NewRegistry()
	rootCmd.Metrics = metricsprometheus.NewRecorder(reg)
	if rootCmd.MetricsFile != "" {
		defer func() {
			if werr := prometheus.WriteToTextfile(rootCmd.MetricsFile, reg); werr != nil {
				rootCmd.Logger.Warningf("could not write metrics: %s", werr)
			}
		}()
	}

	var g run.Group

	// OS signals.
	{
		signalCtx, signalCancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
		defer signalCancel()

		g.Add(
			func() error {
				<-signalCtx.Done()
				rootCmd.Logger.Debugf("Termination signal received")
				return nil
			},
			func(_ error) {
				signalCancel()
			},
		)
	}

	// Execute command.
	{
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		g.Add(
			func() error {
				err := cmds[cmdName].Run(ctx)
				if err != nil {
					return fmt.Errorf("%q command failed: %w", cmdName, err)
				}
				return nil
			},
			func(_ error) {
				cancel()
			},
		)
	}

	return g.Run()
}

// getLogger returns the application logger.
func getLogger(config commands.RootCommand) log.Logger {
	if config.NoLog {
		return log.Noop
	}

	logrusLog := logrus.New()
	logrusLog.Out = config.Stderr // Keep stdout for printers.
	logrusLogEntry := logrus.NewEntry(logrusLog)

	if config.Debug {
		logrusLogEntry.Logger.SetLevel(logrus.DebugLevel)
	}

	switch config.LoggerType {
	case commands.LoggerTypeDefault:
		logrusLogEntry.Logger.SetFormatter(&logrus.TextFormatter{
			ForceColors:   !config.NoColor,
			DisableColors: config.NoColor,
		})
	case commands.LoggerTypeJSON:
		logrusLogEntry.Logger.SetFormatter(&logrus.JSONFormatter{})
	}

	logger := loglogrus.NewLogrus(logrusLogEntry).WithValues(log.Kv{
		"version": Version,
	})

	logger.Debugf("Debug level is enabled")

	return logger
}

func main() {
	ctx := context.Background()
	err := Run(ctx, os.Args, os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
