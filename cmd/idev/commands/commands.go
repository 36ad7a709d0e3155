package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/alecthomas/kingpin/v2"
	"k8s.io/client-go/util/homedir"

	"github.com/slok/idev/internal/conventions"
	"github.com/slok/idev/internal/log"
	"github.com/slok/idev/internal/metrics"
	"github.com/slok/idev/internal/native"
	"github.com/slok/idev/internal/native/fake"
	"github.com/slok/idev/internal/printer"
	storageio "github.com/slok/idev/internal/storage/io"
	"github.com/slok/idev/internal/storage/sqlite"
)

const (
	// LoggerTypeDefault is the logger default type.
	LoggerTypeDefault = "default"
	// LoggerTypeJSON is the logger json type.
	LoggerTypeJSON = "json"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatPlist = "plist"
)

var formats = []string{formatTable, formatJSON, formatPlist}

// Command represents an application command, all commands that want to be executed
// should implement and setup on main.
type Command interface {
	Name() string
	Run(ctx context.Context) error
}

// RootCommand represents the root command configuration and global configuration
// for all the commands.
type RootCommand struct {
	// Global flags.
	Debug       bool
	NoLog       bool
	NoColor     bool
	LoggerType  string
	DBPath      string
	DevicesFile string
	UDID        string
	Label       string
	MetricsFile string

	// Global instances.
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
	Logger  log.Logger
	Metrics metrics.Recorder
}

// NewRootCommand initializes the main root configuration.
func NewRootCommand(app *kingpin.Application) *RootCommand {
	c := &RootCommand{}

	app.Flag("debug", "Enable debug mode.").BoolVar(&c.Debug)
	app.Flag("no-log", "Disable logger.").BoolVar(&c.NoLog)
	app.Flag("no-color", "Disable logger color.").BoolVar(&c.NoColor)
	app.Flag("logger", "Selects the logger type.").Default(LoggerTypeDefault).EnumVar(&c.LoggerType, LoggerTypeDefault, LoggerTypeJSON)

	defaultDBPath := conventions.DBPath(filepath.Join(homedir.HomeDir(), conventions.DefaultDataDir))
	app.Flag("db-path", "Path to the SQLite operation journal.").Default(defaultDBPath).StringVar(&c.DBPath)
	app.Flag("devices-file", "YAML file with the simulated devices, a single default device is simulated when not set.").StringVar(&c.DevicesFile)
	app.Flag("udid", "Target device UDID, the first attached device when not set.").Short('u').StringVar(&c.UDID)
	app.Flag("label", "Lockdown client label.").Default("idev").StringVar(&c.Label)
	app.Flag("metrics-file", "Write the command Prometheus metrics to this file (textfile collector format).").StringVar(&c.MetricsFile)

	return c
}

// newLibrary returns the native library the commands operate on.
func newLibrary(ctx context.Context, rootCmd *RootCommand) (native.Library, error) {
	cfg := fake.LibraryConfig{Logger: rootCmd.Logger}

	if rootCmd.DevicesFile != "" {
		path, err := filepath.Abs(rootCmd.DevicesFile)
		if err != nil {
			return nil, fmt.Errorf("could not resolve devices file path: %w", err)
		}

		devices, err := storageio.NewDevicesYAMLRepository(os.DirFS("/")).ListDevices(ctx, path[1:])
		if err != nil {
			return nil, fmt.Errorf("could not load devices: %w", err)
		}
		cfg.Devices = devices
	}

	lib, err := fake.NewLibrary(cfg)
	if err != nil {
		return nil, fmt.Errorf("could not create native library: %w", err)
	}

	return lib, nil
}

// newRepository opens the operation journal.
func newRepository(ctx context.Context, rootCmd *RootCommand) (*sqlite.Repository, error) {
	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: rootCmd.DBPath,
		Logger: rootCmd.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create repository: %w", err)
	}

	return repo, nil
}

func newPrinter(format string, w io.Writer) printer.Printer {
	switch format {
	case formatJSON:
		return printer.NewJSONPrinter(w)
	case formatPlist:
		return printer.NewPlistPrinter(w)
	default:
		return printer.NewTablePrinter(w)
	}
}

func closeRepository(repo *sqlite.Repository, logger log.Logger) {
	if err := repo.Close(); err != nil {
		logger.Warningf("could not close repository: %s", err)
	}
}
