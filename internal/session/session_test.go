package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/idev/internal/lockdown"
	"github.com/slok/idev/internal/model"
	"github.com/slok/idev/internal/native"
	"github.com/slok/idev/internal/native/fake"
	"github.com/slok/idev/internal/session"
)

func TestOpen(t *testing.T) {
	tests := map[string]struct {
		devices []model.Device
		udid    string
		prepare func(lib *fake.Library)
		expUDID string
		expErr  error
	}{
		"Without UDID the first device should be used.": {
			devices: []model.Device{{UDID: "b"}, {UDID: "a"}},
			expUDID: "a",
		},

		"An explicit UDID should be used.": {
			devices: []model.Device{{UDID: "b"}, {UDID: "a"}},
			udid:    "b",
			expUDID: "b",
		},

		"An unknown UDID should fail.": {
			devices: []model.Device{{UDID: "a"}},
			udid:    "x",
			expErr:  model.ErrNotFound,
		},

		"A failed client handshake should release the device.": {
			devices: []model.Device{{UDID: "a"}},
			prepare: func(lib *fake.Library) {
				lib.FailNext(fake.OpClientNew, native.LockdownPasswordProtected)
			},
			expErr: lockdown.ErrPasswordProtected,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			lib, err := fake.NewLibrary(fake.LibraryConfig{Devices: test.devices})
			require.NoError(err)
			if test.prepare != nil {
				test.prepare(lib)
			}

			s, err := session.Open(session.Config{Library: lib, UDID: test.udid})

			if test.expErr != nil {
				assert.ErrorIs(err, test.expErr)
			} else if assert.NoError(err) {
				assert.Equal(test.expUDID, s.UDID())
				assert.Equal(session.DefaultLabel, s.Client.Label)
				assert.NoError(s.Close())
			}

			assert.Zero(lib.LiveHandles())
			assert.Zero(native.References(lib))
			assert.Empty(lib.Violations(), lib.Summary())
		})
	}
}

func TestSessionImageMounter(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	lib, err := fake.NewLibrary(fake.LibraryConfig{})
	require.NoError(err)

	s, err := session.Open(session.Config{Library: lib, Label: "test"})
	require.NoError(err)

	m, err := s.ImageMounter()
	require.NoError(err)
	_, err = m.LookupImage(model.DeveloperImageType)
	require.NoError(err)

	svc, err := s.StartService("com.apple.afc")
	require.NoError(err)
	assert.Equal("com.apple.afc", svc.Label)

	// Device, client, two services and the mounter.
	assert.Equal(5, lib.LiveHandles())

	assert.NoError(s.Close())
	assert.NoError(s.Close())

	// Children are released before their parents, so every free reaches the library.
	assert.Equal(1, lib.CallCount(fake.OpMounterFree))
	assert.Equal(2, lib.CallCount(fake.OpServiceFree))
	assert.Equal(1, lib.CallCount(fake.OpClientFree))
	assert.Equal(1, lib.CallCount(fake.OpDeviceFree))
	assert.Zero(lib.LiveHandles())
	assert.Empty(lib.Violations(), lib.Summary())
}

func TestSessionUnknownService(t *testing.T) {
	lib, err := fake.NewLibrary(fake.LibraryConfig{Devices: []model.Device{{UDID: "a"}}})
	require.NoError(t, err)

	s, err := session.Open(session.Config{Library: lib})
	require.NoError(t, err)
	defer s.Close()

	_, err = s.ImageMounter()
	assert.ErrorIs(t, err, model.ErrNotFound)
}
