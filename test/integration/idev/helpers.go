package idev

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/slok/idev/test/integration/testutils"
)

// Config holds integration test configuration loaded from environment variables.
type Config struct {
	Binary string
}

func (c *Config) defaults() error {
	if c.Binary == "" {
		c.Binary = "idev"
	}

	// go test changes the CWD to the test package directory, relative paths
	// would not point to the built binary.
	if !filepath.IsAbs(c.Binary) {
		return fmt.Errorf("IDEV_INTEGRATION_BINARY must be an absolute path, got %q", c.Binary)
	}
	if _, err := os.Stat(c.Binary); err != nil {
		return fmt.Errorf("idev binary not found at %q: %w", c.Binary, err)
	}

	return nil
}

// NewConfig loads integration test configuration from environment variables.
// If the config is invalid or the activation env var is not set, the test is skipped.
func NewConfig(t *testing.T) Config {
	t.Helper()

	const (
		envActivation = "IDEV_INTEGRATION"
		envBinary     = "IDEV_INTEGRATION_BINARY"
	)

	if os.Getenv(envActivation) != "true" {
		t.Skipf("Skipping integration test: %s is not set to 'true'", envActivation)
	}

	c := Config{
		Binary: os.Getenv(envBinary),
	}

	if err := c.defaults(); err != nil {
		t.Skipf("Skipping due to invalid config: %s", err)
	}

	return c
}

// Env is the isolated environment a test runs idev in.
type Env struct {
	Config      Config
	DBPath      string
	DevicesFile string
}

// Run runs idev with the environment journal and devices.
func (e Env) Run(ctx context.Context, args ...string) (stdout, stderr []byte, err error) {
	env := []string{
		"IDEV_DB_PATH=" + e.DBPath,
		"IDEV_DEVICES_FILE=" + e.DevicesFile,
	}
	return testutils.RunIdevArgs(ctx, env, e.Config.Binary, args, true)
}
