package lib

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/slok/idev/internal/conventions"
	"github.com/slok/idev/internal/log"
	"github.com/slok/idev/internal/metrics"
	metricsprometheus "github.com/slok/idev/internal/metrics/prometheus"
	"github.com/slok/idev/internal/native"
	"github.com/slok/idev/internal/native/fake"
	"github.com/slok/idev/internal/session"
	"github.com/slok/idev/internal/storage"
	"github.com/slok/idev/internal/storage/sqlite"
)

// NativeLibrary is the binding to the native device library the SDK drives.
//
// Every handle it returns is owned by the SDK and released exactly once.
// Implementations must be comparable, pointer implementations always are.
type NativeLibrary = native.Library

// Config configures the SDK client.
//
// All fields are optional. An empty Config{} uses ~/.idev/idev.db for the
// operation journal and a simulated device library.
type Config struct {
	// DBPath is the SQLite journal database path.
	// Default: ~/.idev/idev.db.
	DBPath string

	// DataDir is the base directory for idev data.
	// Default: ~/.idev.
	DataDir string

	// Logger receives structured log output from the SDK.
	// Default: noop (silent). See the log sub-package for the interface.
	Logger log.Logger

	// Library is the native device library binding. When nil a simulated
	// library with [Config].Devices attached is used.
	Library NativeLibrary

	// Devices are the devices attached to the simulated library. When empty
	// a single simulated device is attached. Ignored when Library is set.
	Devices []Device

	// Label is the lockdown client label sent to the devices.
	// Default: "idev".
	Label string

	// MetricsRegisterer registers the SDK operation metrics. Default: no metrics.
	MetricsRegisterer prometheus.Registerer
}

func (c *Config) defaults() error {
	if c.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("could not get user home dir: %w", err)
		}
		c.DataDir = filepath.Join(home, conventions.DefaultDataDir)
	}

	if c.DBPath == "" {
		c.DBPath = conventions.DBPath(c.DataDir)
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	if c.Label == "" {
		c.Label = session.DefaultLabel
	}

	return nil
}

// Client is the main SDK entry point for talking to devices programmatically.
//
// Create a Client with [New] and release its resources with [Client.Close].
// A Client is safe for concurrent use.
type Client struct {
	library native.Library
	repo    storage.Repository
	metrics metrics.Recorder
	logger  log.Logger
	label   string
	closeFn func() error
}

// New creates a new SDK client backed by a SQLite journal.
//
// The caller must call [Client.Close] when done to release the database
// connection. Typically used with defer:
//
//	client, err := lib.New(ctx, lib.Config{})
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
func New(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	library := cfg.Library
	if library == nil {
		fakeLib, err := fake.NewLibrary(fake.LibraryConfig{
			Devices: toInternalDevices(cfg.Devices),
			Logger:  cfg.Logger,
		})
		if err != nil {
			return nil, mapError(fmt.Errorf("could not create simulated library: %w", err))
		}
		library = fakeLib
	}

	rec := metrics.Noop
	if cfg.MetricsRegisterer != nil {
		rec = metricsprometheus.NewRecorder(cfg.MetricsRegisterer)
	}

	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: cfg.DBPath,
		Logger: cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create repository: %w", err)
	}

	return &Client{
		library: library,
		repo:    repo,
		metrics: rec,
		logger:  cfg.Logger,
		label:   cfg.Label,
		closeFn: repo.Close,
	}, nil
}

// Close releases resources held by the client, including the database connection.
// After Close returns, the client must not be used.
func (c *Client) Close() error {
	if c.closeFn != nil {
		return c.closeFn()
	}
	return nil
}
