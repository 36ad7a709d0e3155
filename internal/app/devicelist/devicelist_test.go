package devicelist_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/idev/internal/app/devicelist"
	"github.com/slok/idev/internal/device"
	"github.com/slok/idev/internal/native"
	"github.com/slok/idev/internal/native/nativemock"
)

func TestNewService(t *testing.T) {
	_, err := devicelist.NewService(devicelist.ServiceConfig{})
	assert.Error(t, err)

	svc, err := devicelist.NewService(devicelist.ServiceConfig{Library: &nativemock.MockLibrary{}})
	assert.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestService_Run(t *testing.T) {
	tests := map[string]struct {
		mock      func(m *nativemock.MockLibrary)
		expResult []string
		expErr    error
	}{
		"Devices should be returned sorted.": {
			mock: func(m *nativemock.MockLibrary) {
				m.On("Init").Once().Return(nil)
				m.On("DeviceList").Once().Return([]string{"b", "a", "c"}, native.StatusSuccess)
				m.On("Cleanup").Once()
			},
			expResult: []string{"a", "b", "c"},
		},

		"No devices should return an empty list.": {
			mock: func(m *nativemock.MockLibrary) {
				m.On("Init").Once().Return(nil)
				m.On("DeviceList").Once().Return([]string{}, native.StatusSuccess)
				m.On("Cleanup").Once()
			},
			expResult: []string{},
		},

		"A native failure should be returned.": {
			mock: func(m *nativemock.MockLibrary) {
				m.On("Init").Once().Return(nil)
				m.On("DeviceList").Once().Return(nil, native.DeviceNoDevice)
				m.On("Cleanup").Once()
			},
			expErr: device.ErrNoDevice,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			lib := &nativemock.MockLibrary{}
			test.mock(lib)

			svc, err := devicelist.NewService(devicelist.ServiceConfig{Library: lib})
			require.NoError(err)

			got, err := svc.Run(context.Background(), devicelist.Request{})

			if test.expErr != nil {
				assert.ErrorIs(err, test.expErr)
			} else if assert.NoError(err) {
				assert.Equal(test.expResult, got)
			}
			lib.AssertExpectations(t)
		})
	}
}
