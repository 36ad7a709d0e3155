package lib_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/idev/internal/native/fake"
	"github.com/slok/idev/pkg/lib"
)

var testDevices = []lib.Device{
	{
		UDID: "udid-a",
		Values: map[string]map[string]any{
			"":                     {"DeviceName": "phone a", "ProductVersion": "17.1"},
			"com.apple.disk_usage": {"TotalDiskCapacity": uint64(1024)},
		},
		Services:   []string{"com.apple.mobile.mobile_image_mounter", "com.apple.afc"},
		ImageTypes: []string{lib.DeveloperImageType},
	},
	{
		UDID:     "udid-b",
		Locked:   true,
		Services: []string{"com.apple.mobile.mobile_image_mounter"},
	},
}

// newTestClient creates a client with a temp SQLite DB for test isolation.
func newTestClient(t *testing.T, cfg lib.Config) *lib.Client {
	t.Helper()

	cfg.DBPath = filepath.Join(t.TempDir(), "test.db")
	cfg.DataDir = t.TempDir()
	if cfg.Devices == nil {
		cfg.Devices = testDevices
	}

	client, err := lib.New(context.Background(), cfg)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = client.Close()
	})

	return client
}

func writeImage(t *testing.T) string {
	t.Helper()

	imagePath := filepath.Join(t.TempDir(), "DeveloperDiskImage.dmg")
	require.NoError(t, os.WriteFile(imagePath, []byte(strings.Repeat("i", 100*1024)), 0o600))
	require.NoError(t, os.WriteFile(imagePath+".signature", []byte("signature"), 0o600))

	return imagePath
}

func TestNew(t *testing.T) {
	_, err := lib.New(context.Background(), lib.Config{
		DBPath:  filepath.Join(t.TempDir(), "test.db"),
		Devices: []lib.Device{{UDID: ""}},
	})
	assert.ErrorIs(t, err, lib.ErrNotValid)
}

// valueLibrary is an uncomparable value implementation of the native library.
type valueLibrary struct {
	*fake.Library
	tags []string
}

func TestUncomparableLibrary(t *testing.T) {
	fakeLib, err := fake.NewLibrary(fake.LibraryConfig{})
	require.NoError(t, err)

	client := newTestClient(t, lib.Config{Library: valueLibrary{Library: fakeLib, tags: []string{"a"}}})

	_, err = client.ListDevices(context.Background())
	assert.ErrorIs(t, err, lib.ErrNotValid)

	_, err = client.GetValue(context.Background(), "", "", "ProductVersion")
	assert.ErrorIs(t, err, lib.ErrNotValid)

	assert.Zero(t, fakeLib.LiveHandles())
}

func TestListDevices(t *testing.T) {
	client := newTestClient(t, lib.Config{})

	udids, err := client.ListDevices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"udid-a", "udid-b"}, udids)
}

func TestGetValue(t *testing.T) {
	tests := map[string]struct {
		udid   string
		domain string
		key    string
		exp    any
		expErr error
	}{
		"A global key should be read.": {
			udid: "udid-a",
			key:  "ProductVersion",
			exp:  "17.1",
		},

		"Without UDID the first device should be used.": {
			key: "DeviceName",
			exp: "phone a",
		},

		"A domain key should be read.": {
			udid:   "udid-a",
			domain: "com.apple.disk_usage",
			key:    "TotalDiskCapacity",
			exp:    uint64(1024),
		},

		"A missing key should fail with not found.": {
			udid:   "udid-a",
			key:    "Missing",
			expErr: lib.ErrNotFound,
		},

		"An unknown device should fail with not found.": {
			udid:   "udid-x",
			key:    "ProductVersion",
			expErr: lib.ErrNotFound,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			client := newTestClient(t, lib.Config{})

			v, err := client.GetValue(context.Background(), test.udid, test.domain, test.key)
			if test.expErr != nil {
				assert.ErrorIs(t, err, test.expErr)
			} else if assert.NoError(t, err) {
				assert.Equal(t, test.exp, v)
			}
		})
	}
}

func TestStartService(t *testing.T) {
	tests := map[string]struct {
		identifier string
		expErr     error
	}{
		"A device service should start.": {
			identifier: "com.apple.afc",
		},

		"An unknown service should fail with not found.": {
			identifier: "com.apple.unknown",
			expErr:     lib.ErrNotFound,
		},

		"A missing identifier should fail with not valid.": {
			expErr: lib.ErrNotValid,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			client := newTestClient(t, lib.Config{})

			svc, err := client.StartService(context.Background(), "udid-a", test.identifier)
			if test.expErr != nil {
				assert.ErrorIs(t, err, test.expErr)
			} else if assert.NoError(t, err) {
				assert.Equal(t, "udid-a", svc.UDID)
				assert.Equal(t, test.identifier, svc.Identifier)
				assert.NotZero(t, svc.Port)
			}
		})
	}
}

func TestMountImage(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)
	ctx := context.Background()

	reg := prometheus.NewRegistry()
	client := newTestClient(t, lib.Config{MetricsRegisterer: reg})
	imagePath := writeImage(t)

	lookup, err := client.LookupImage(ctx, "udid-a", "")
	require.NoError(err)
	assert.False(lookup.Mounted())

	var lastSent uint64
	res, err := client.MountImage(ctx, lib.MountImageOpts{
		UDID:      "udid-a",
		ImagePath: imagePath,
		Progress:  func(sent, total uint64) { lastSent = sent },
	})
	require.NoError(err)
	assert.True(res.Uploaded)
	assert.True(res.Mounted)
	assert.False(res.AlreadyMounted)
	assert.Equal(int64(100*1024), res.Size)
	assert.Equal(uint64(100*1024), lastSent)

	lookup, err = client.LookupImage(ctx, "udid-a", lib.DeveloperImageType)
	require.NoError(err)
	assert.True(lookup.Mounted())
	assert.Equal([][]byte{[]byte("signature")}, lookup.Signatures)

	// The same image again is detected as mounted.
	res, err = client.MountImage(ctx, lib.MountImageOpts{UDID: "udid-a", ImagePath: imagePath})
	require.NoError(err)
	assert.True(res.AlreadyMounted)
	assert.False(res.Uploaded)

	expected := `
# HELP idev_uploaded_image_bytes_total Total disk image bytes uploaded to devices.
# TYPE idev_uploaded_image_bytes_total counter
idev_uploaded_image_bytes_total 102400
`
	assert.NoError(testutil.GatherAndCompare(reg, strings.NewReader(expected), "idev_uploaded_image_bytes_total"))
}

func TestMountImageErrors(t *testing.T) {
	tests := map[string]struct {
		opts   func(imagePath string) lib.MountImageOpts
		expErr error
	}{
		"A missing image path should fail with not valid.": {
			opts:   func(string) lib.MountImageOpts { return lib.MountImageOpts{UDID: "udid-a"} },
			expErr: lib.ErrNotValid,
		},

		"A missing signature should fail with not found.": {
			opts: func(imagePath string) lib.MountImageOpts {
				return lib.MountImageOpts{UDID: "udid-a", ImagePath: imagePath, SignaturePath: imagePath + ".missing"}
			},
			expErr: lib.ErrNotFound,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			client := newTestClient(t, lib.Config{})

			_, err := client.MountImage(context.Background(), test.opts(writeImage(t)))
			assert.ErrorIs(t, err, test.expErr)
		})
	}
}

func TestMountImageLockedDevice(t *testing.T) {
	client := newTestClient(t, lib.Config{})

	_, err := client.MountImage(context.Background(), lib.MountImageOpts{UDID: "udid-b", ImagePath: writeImage(t)})
	assert.Error(t, err)

	ops, err := client.History(context.Background(), &lib.HistoryOpts{UDID: "udid-b"})
	require.NoError(t, err)
	require.NotEmpty(t, ops)
	assert.False(t, ops[0].Succeeded)
	assert.NotEmpty(t, ops[0].Error)
}

func TestHistory(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)
	ctx := context.Background()

	client := newTestClient(t, lib.Config{})

	_, err := client.GetValue(ctx, "udid-a", "", "ProductVersion")
	require.NoError(err)
	_, err = client.StartService(ctx, "udid-a", "com.apple.afc")
	require.NoError(err)
	_, err = client.GetValue(ctx, "udid-a", "", "Missing")
	require.Error(err)

	ops, err := client.History(ctx, nil)
	require.NoError(err)
	require.Len(ops, 3)
	for _, op := range ops {
		assert.Equal("udid-a", op.DeviceUDID)
		assert.NotEmpty(op.ID)
	}

	ops, err = client.History(ctx, &lib.HistoryOpts{Kind: lib.OperationKindGetValue})
	require.NoError(err)
	assert.Len(ops, 2)

	ops, err = client.History(ctx, &lib.HistoryOpts{Kind: lib.OperationKindStartService})
	require.NoError(err)
	require.Len(ops, 1)
	assert.Equal("com.apple.afc", ops[0].Target)
	assert.True(ops[0].Succeeded)

	_, err = client.History(ctx, &lib.HistoryOpts{Limit: -1})
	assert.ErrorIs(err, lib.ErrNotValid)
}
