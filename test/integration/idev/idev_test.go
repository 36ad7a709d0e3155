package idev_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	intidev "github.com/slok/idev/test/integration/idev"
)

const devicesYAML = `devices:
  - udid: integration-a
    values:
      DeviceName: integration phone
      ProductVersion: "17.1"
    services:
      - com.apple.mobile.mobile_image_mounter
      - com.apple.afc
    image_types:
      - Developer
  - udid: integration-b
    locked: true
    services:
      - com.apple.mobile.mobile_image_mounter
    image_types:
      - Developer
`

// operationItem matches the JSON output of `idev history --format json`.
type operationItem struct {
	ID         string `json:"id"`
	DeviceUDID string `json:"device_udid"`
	Kind       string `json:"kind"`
	Target     string `json:"target"`
	Status     string `json:"status"`
	Error      string `json:"error"`
}

func newEnv(t *testing.T) intidev.Env {
	t.Helper()

	config := intidev.NewConfig(t)
	dir := t.TempDir()
	devicesFile := filepath.Join(dir, "devices.yaml")
	require.NoError(t, os.WriteFile(devicesFile, []byte(devicesYAML), 0o600))

	return intidev.Env{
		Config:      config,
		DBPath:      filepath.Join(dir, "idev.db"),
		DevicesFile: devicesFile,
	}
}

func history(t *testing.T, ctx context.Context, env intidev.Env) []operationItem {
	t.Helper()

	stdout, stderr, err := env.Run(ctx, "history", "--format", "json", "--limit", "0")
	require.NoError(t, err, string(stderr))

	var ops []operationItem
	require.NoError(t, json.Unmarshal(stdout, &ops))
	return ops
}

func TestIdevDevices(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	env := newEnv(t)

	stdout, stderr, err := env.Run(ctx, "devices", "--format", "json")
	require.NoError(t, err, string(stderr))

	var udids []string
	require.NoError(t, json.Unmarshal(stdout, &udids))
	assert.Equal(t, []string{"integration-a", "integration-b"}, udids)
}

func TestIdevGetValue(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	env := newEnv(t)

	stdout, stderr, err := env.Run(ctx, "get-value", "ProductVersion", "--udid", "integration-a")
	require.NoError(t, err, string(stderr))
	assert.Equal(t, "17.1\n", string(stdout))

	_, _, err = env.Run(ctx, "get-value", "Missing", "--udid", "integration-a")
	assert.Error(t, err)

	ops := history(t, ctx, env)
	require.Len(t, ops, 2)
	assert.Equal(t, "failed", ops[0].Status)
	assert.Equal(t, "Missing", ops[0].Target)
	assert.Equal(t, "succeeded", ops[1].Status)
}

func TestIdevImageMount(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	env := newEnv(t)

	imagePath := filepath.Join(t.TempDir(), "DeveloperDiskImage.dmg")
	require.NoError(t, os.WriteFile(imagePath, make([]byte, 300*1024), 0o600))
	require.NoError(t, os.WriteFile(imagePath+".signature", []byte("signature"), 0o600))

	_, stderr, err := env.Run(ctx, "image", "mount", "--image", imagePath, "--udid", "integration-a")
	require.NoError(t, err, string(stderr))

	// Locked devices refuse the upload.
	_, _, err = env.Run(ctx, "image", "mount", "--image", imagePath, "--udid", "integration-b")
	assert.Error(t, err)

	ops := history(t, ctx, env)
	require.Len(t, ops, 3)
	assert.Equal(t, "integration-b", ops[0].DeviceUDID)
	assert.Equal(t, "upload-image", ops[0].Kind)
	assert.Equal(t, "failed", ops[0].Status)
	assert.NotEmpty(t, ops[0].Error)
	assert.Equal(t, "mount-image", ops[1].Kind)
	assert.Equal(t, "upload-image", ops[2].Kind)
}

func TestIdevServiceStart(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	env := newEnv(t)

	stdout, stderr, err := env.Run(ctx, "service", "start", "com.apple.afc", "--format", "json", "--udid", "integration-a")
	require.NoError(t, err, string(stderr))

	var svc struct {
		Identifier string `json:"identifier"`
		Port       int    `json:"port"`
	}
	require.NoError(t, json.Unmarshal(stdout, &svc))
	assert.Equal(t, "com.apple.afc", svc.Identifier)
	assert.NotZero(t, svc.Port)
}
