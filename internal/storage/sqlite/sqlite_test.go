package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/idev/internal/log"
	"github.com/slok/idev/internal/model"
	"github.com/slok/idev/internal/storage/sqlite"
)

func operationFixture(id, udid string, kind model.OperationKind, createdAt time.Time) model.Operation {
	return model.Operation{
		ID:         id,
		DeviceUDID: udid,
		Kind:       kind,
		Target:     "target-" + id,
		Status:     model.OperationStatusSucceeded,
		CreatedAt:  createdAt,
	}
}

func newRepo(t *testing.T) (*sqlite.Repository, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "nested", "test.db")
	repo, err := sqlite.NewRepository(context.Background(), sqlite.RepositoryConfig{
		DBPath: dbPath,
		Logger: log.Noop,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo, dbPath
}

func TestRepositoryCreateGet(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t)

	now := time.Now().UTC()
	op := operationFixture("op-1", "udid-1", model.OperationKindUploadImage, now)
	op.PayloadDigest = "sha256:2c26b46b68ffc68ff99b453c1d30413413422d706483bfa0f98a5e886266e7ae"
	op.PayloadSize = 2048
	op.Status = model.OperationStatusFailed
	op.Error = "image mounter: device locked"
	require.NoError(t, repo.CreateOperation(ctx, op))

	got, err := repo.GetOperation(ctx, "op-1")
	require.NoError(t, err)
	assert.Equal(t, op, *got)

	_, err = repo.GetOperation(ctx, "op-x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrNotFound))
}

func TestRepositoryConstraints(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t)

	op := operationFixture("op-1", "udid-1", model.OperationKindGetValue, time.Now())
	require.NoError(t, repo.CreateOperation(ctx, op))

	err := repo.CreateOperation(ctx, op)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrAlreadyExists))

	invalid := operationFixture("op-2", "", model.OperationKindGetValue, time.Now())
	err = repo.CreateOperation(ctx, invalid)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrNotValid))
}

func TestRepositoryListOperations(t *testing.T) {
	base := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)

	tests := map[string]struct {
		opts   model.OperationListOpts
		expIDs []string
	}{
		"Without filters should return everything newest first.": {
			expIDs: []string{"op-4", "op-3", "op-2", "op-1"},
		},
		"Filtering by device should return only its operations.": {
			opts:   model.OperationListOpts{DeviceUDID: "udid-1"},
			expIDs: []string{"op-3", "op-1"},
		},
		"Filtering by kind should return only that kind.": {
			opts:   model.OperationListOpts{Kind: model.OperationKindMountImage},
			expIDs: []string{"op-4", "op-3"},
		},
		"Limit should cap the results.": {
			opts:   model.OperationListOpts{Limit: 2},
			expIDs: []string{"op-4", "op-3"},
		},
		"Unknown devices should return nothing.": {
			opts: model.OperationListOpts{DeviceUDID: "udid-x"},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo, _ := newRepo(t)

			for _, op := range []model.Operation{
				operationFixture("op-1", "udid-1", model.OperationKindGetValue, base),
				operationFixture("op-2", "udid-2", model.OperationKindStartService, base.Add(time.Second)),
				operationFixture("op-3", "udid-1", model.OperationKindMountImage, base.Add(2*time.Second)),
				operationFixture("op-4", "udid-2", model.OperationKindMountImage, base.Add(3*time.Second)),
			} {
				require.NoError(t, repo.CreateOperation(ctx, op))
			}

			ops, err := repo.ListOperations(ctx, test.opts)
			require.NoError(t, err)

			var ids []string
			for _, op := range ops {
				ids = append(ids, op.ID)
			}
			assert.Equal(t, test.expIDs, ids)
		})
	}
}

func TestRepositoryReopen(t *testing.T) {
	ctx := context.Background()
	repo, dbPath := newRepo(t)

	require.NoError(t, repo.CreateOperation(ctx, operationFixture("op-1", "udid-1", model.OperationKindGetValue, time.Now())))
	require.NoError(t, repo.Close())

	// Migrations are idempotent and data survives.
	repo2, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{DBPath: dbPath})
	require.NoError(t, err)
	defer repo2.Close()

	_, err = repo2.GetOperation(ctx, "op-1")
	assert.NoError(t, err)
}

func TestNewRepositoryInvalidConfig(t *testing.T) {
	_, err := sqlite.NewRepository(context.Background(), sqlite.RepositoryConfig{})
	assert.ErrorContains(t, err, "db path is required")
}
