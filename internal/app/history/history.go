package history

import (
	"context"
	"fmt"

	"github.com/slok/idev/internal/log"
	"github.com/slok/idev/internal/model"
	"github.com/slok/idev/internal/storage"
)

// ServiceConfig is the configuration for the history service.
type ServiceConfig struct {
	Repository storage.Repository
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Service lists the journaled device operations.
type Service struct {
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new history service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request represents the history request parameters.
type Request struct {
	// UDID filters by device, optional.
	UDID string
	// Kind filters by operation kind, optional.
	Kind model.OperationKind
	// Limit is the maximum number of operations, zero means all of them.
	Limit int
}

// Run lists the journaled operations, newest first.
func (s *Service) Run(ctx context.Context, req Request) ([]model.Operation, error) {
	if req.Limit < 0 {
		return nil, fmt.Errorf("limit can't be negative: %w", model.ErrNotValid)
	}

	s.logger.Debugf("listing operations with filter: udid=%q kind=%q limit=%d", req.UDID, req.Kind, req.Limit)

	ops, err := s.repo.ListOperations(ctx, model.OperationListOpts{
		DeviceUDID: req.UDID,
		Kind:       req.Kind,
		Limit:      req.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("could not list operations: %w", err)
	}

	s.logger.Debugf("found %d operations", len(ops))
	return ops, nil
}
