package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/slok/idev/internal/log"
	"github.com/slok/idev/internal/model"
)

// RepositoryConfig is the configuration for the memory repository.
type RepositoryConfig struct {
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.Memory"})
	return nil
}

// Repository is an in-memory implementation of storage.Repository.
type Repository struct {
	operations map[string]model.Operation
	mu         sync.RWMutex
	logger     log.Logger
}

// NewRepository creates a new memory repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Repository{
		operations: make(map[string]model.Operation),
		logger:     cfg.Logger,
	}, nil
}

// CreateOperation stores a new operation.
func (r *Repository) CreateOperation(ctx context.Context, op model.Operation) error {
	if err := op.Validate(); err != nil {
		return fmt.Errorf("invalid operation: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.operations[op.ID]; ok {
		return fmt.Errorf("operation %s: %w", op.ID, model.ErrAlreadyExists)
	}

	r.operations[op.ID] = op
	r.logger.Debugf("Journaled %s operation %s", op.Kind, op.ID)

	return nil
}

// GetOperation retrieves an operation by ID.
func (r *Repository) GetOperation(ctx context.Context, id string) (*model.Operation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	op, ok := r.operations[id]
	if !ok {
		return nil, fmt.Errorf("operation %s: %w", id, model.ErrNotFound)
	}

	return &op, nil
}

// ListOperations returns the operations newest first.
func (r *Repository) ListOperations(ctx context.Context, opts model.OperationListOpts) ([]model.Operation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ops := make([]model.Operation, 0, len(r.operations))
	for _, op := range r.operations {
		if opts.DeviceUDID != "" && op.DeviceUDID != opts.DeviceUDID {
			continue
		}
		if opts.Kind != "" && op.Kind != opts.Kind {
			continue
		}
		ops = append(ops, op)
	}

	sort.Slice(ops, func(i, j int) bool {
		if ops[i].CreatedAt.Equal(ops[j].CreatedAt) {
			return ops[i].ID > ops[j].ID
		}
		return ops[i].CreatedAt.After(ops[j].CreatedAt)
	})

	if opts.Limit > 0 && len(ops) > opts.Limit {
		ops = ops[:opts.Limit]
	}

	return ops, nil
}
