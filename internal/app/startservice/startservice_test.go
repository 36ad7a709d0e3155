package startservice_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/idev/internal/app/startservice"
	"github.com/slok/idev/internal/lockdown"
	"github.com/slok/idev/internal/model"
	"github.com/slok/idev/internal/native"
	"github.com/slok/idev/internal/native/fake"
	"github.com/slok/idev/internal/native/nativemock"
	"github.com/slok/idev/internal/storage/memory"
	"github.com/slok/idev/internal/storage/storagemock"
)

func TestNewService(t *testing.T) {
	tests := map[string]struct {
		config startservice.ServiceConfig
		expErr bool
	}{
		"valid config should create service": {
			config: startservice.ServiceConfig{
				Library:    &nativemock.MockLibrary{},
				Repository: &storagemock.MockRepository{},
			},
		},
		"missing library should fail": {
			config: startservice.ServiceConfig{
				Repository: &storagemock.MockRepository{},
			},
			expErr: true,
		},
		"missing repository should fail": {
			config: startservice.ServiceConfig{
				Library: &nativemock.MockLibrary{},
			},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			svc, err := startservice.NewService(test.config)
			if test.expErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, svc)
			}
		})
	}
}

func TestService_Run(t *testing.T) {
	tests := map[string]struct {
		req       startservice.Request
		prepare   func(lib *fake.Library)
		expResult *startservice.Result
		expErr    error
		expOps    int
	}{
		"A known service should start.": {
			req: startservice.Request{Identifier: "com.apple.afc"},
			expResult: &startservice.Result{
				UDID:       fake.DefaultDeviceUDID,
				Identifier: "com.apple.afc",
				Port:       49152,
			},
			expOps: 1,
		},

		"An unknown service should fail and be journaled.": {
			req:    startservice.Request{Identifier: "com.apple.unknown"},
			expErr: model.ErrNotFound,
			expOps: 1,
		},

		"A service limit failure should be journaled.": {
			req: startservice.Request{Identifier: "com.apple.afc"},
			prepare: func(lib *fake.Library) {
				lib.FailNext(fake.OpStartService, native.LockdownServiceLimit)
			},
			expErr: lockdown.ErrServiceLimit,
			expOps: 1,
		},

		"A missing identifier should fail without touching the device.": {
			req:    startservice.Request{},
			expErr: model.ErrNotValid,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			lib, err := fake.NewLibrary(fake.LibraryConfig{})
			require.NoError(err)
			if test.prepare != nil {
				test.prepare(lib)
			}
			repo, err := memory.NewRepository(memory.RepositoryConfig{})
			require.NoError(err)

			svc, err := startservice.NewService(startservice.ServiceConfig{Library: lib, Repository: repo})
			require.NoError(err)

			res, err := svc.Run(context.Background(), test.req)

			if test.expErr != nil {
				assert.ErrorIs(err, test.expErr)
			} else if assert.NoError(err) {
				assert.Equal(test.expResult, res)
			}

			ops, err := repo.ListOperations(context.Background(), model.OperationListOpts{Kind: model.OperationKindStartService})
			require.NoError(err)
			assert.Len(ops, test.expOps)

			assert.Zero(lib.LiveHandles())
			assert.Zero(native.References(lib))
			assert.Empty(lib.Violations(), lib.Summary())
		})
	}
}
