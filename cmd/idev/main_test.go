package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runIdev(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	all := append([]string{"idev", "--no-log", "--db-path", dbPath}, args...)
	err := Run(context.Background(), all, strings.NewReader(""), &stdout, &stderr)

	return stdout.String(), err
}

func TestRunCommands(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "idev.db")

	out, err := runIdev(t, dbPath, "devices")
	require.NoError(t, err)
	assert.Equal(t, "00008030-001C2D3E4F5A6B7C\n", out)

	out, err = runIdev(t, dbPath, "get-value", "ProductVersion")
	require.NoError(t, err)
	assert.Equal(t, "16.7.2\n", out)

	out, err = runIdev(t, dbPath, "service", "start", "com.apple.afc", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"port": 49152`)

	_, err = runIdev(t, dbPath, "get-value", "Missing")
	assert.Error(t, err)

	dir := t.TempDir()
	image := filepath.Join(dir, "DeveloperDiskImage.dmg")
	require.NoError(t, os.WriteFile(image, []byte("image"), 0o600))
	require.NoError(t, os.WriteFile(image+".signature", []byte("signature"), 0o600))

	out, err = runIdev(t, dbPath, "image", "mount", "--image", image)
	require.NoError(t, err)
	assert.Contains(t, out, "mounted on 00008030-001C2D3E4F5A6B7C")

	out, err = runIdev(t, dbPath, "history", "--format", "json")
	require.NoError(t, err)
	for _, kind := range []string{"get-value", "start-service", "upload-image", "mount-image"} {
		assert.Contains(t, out, `"kind": "`+kind+`"`)
	}
	assert.Contains(t, out, `"status": "failed"`)

	out, err = runIdev(t, dbPath, "history", "--kind", "mount-image", "--format", "json")
	require.NoError(t, err)
	assert.NotContains(t, out, "get-value")
}

func TestRunMetricsFile(t *testing.T) {
	dir := t.TempDir()
	metricsFile := filepath.Join(dir, "idev.prom")

	_, err := runIdev(t, filepath.Join(dir, "idev.db"), "--metrics-file", metricsFile, "get-value", "DeviceName")
	require.NoError(t, err)

	data, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `idev_operations_total{kind="get-value",status="succeeded"} 1`)
}

func TestRunInvalidCommand(t *testing.T) {
	_, err := runIdev(t, filepath.Join(t.TempDir(), "idev.db"), "reboot")
	assert.Error(t, err)
}
