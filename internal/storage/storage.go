package storage

import (
	"context"

	"github.com/slok/idev/internal/model"
)

// Repository is the interface for the operation journal persistence.
type Repository interface {
	CreateOperation(ctx context.Context, op model.Operation) error
	GetOperation(ctx context.Context, id string) (*model.Operation, error)
	// ListOperations returns the operations newest first.
	ListOperations(ctx context.Context, opts model.OperationListOpts) ([]model.Operation, error)
}

// DeviceRepository is the interface for the simulated devices definitions.
type DeviceRepository interface {
	ListDevices(ctx context.Context, path string) ([]model.Device, error)
}
