package model

import (
	"fmt"
	"time"
)

// OperationKind is the kind of device operation.
type OperationKind string

const (
	OperationKindGetValue     OperationKind = "get-value"
	OperationKindStartService OperationKind = "start-service"
	OperationKindLookupImage  OperationKind = "lookup-image"
	OperationKindUploadImage  OperationKind = "upload-image"
	OperationKindMountImage   OperationKind = "mount-image"
)

// OperationStatus represents the outcome of an operation.
type OperationStatus string

const (
	OperationStatusSucceeded OperationStatus = "succeeded"
	OperationStatusFailed    OperationStatus = "failed"
)

// Operation is a journal entry of an operation run against a device.
type Operation struct {
	ID         string
	DeviceUDID string
	Kind       OperationKind
	// Target is what the operation acted on: a lockdown key, a service identifier or an image type.
	Target string
	// PayloadDigest and PayloadSize describe the uploaded image, if any.
	PayloadDigest string
	PayloadSize   int64
	Status        OperationStatus
	Error         string
	CreatedAt     time.Time
}

// Validate validates the operation.
func (o Operation) Validate() error {
	if o.ID == "" {
		return fmt.Errorf("id is required: %w", ErrNotValid)
	}

	if o.DeviceUDID == "" {
		return fmt.Errorf("device udid is required: %w", ErrNotValid)
	}

	switch o.Kind {
	case OperationKindGetValue, OperationKindStartService, OperationKindLookupImage, OperationKindUploadImage, OperationKindMountImage:
	default:
		return fmt.Errorf("unknown operation kind %q: %w", o.Kind, ErrNotValid)
	}

	switch o.Status {
	case OperationStatusSucceeded:
	case OperationStatusFailed:
		if o.Error == "" {
			return fmt.Errorf("failed operations require an error: %w", ErrNotValid)
		}
	default:
		return fmt.Errorf("unknown operation status %q: %w", o.Status, ErrNotValid)
	}

	if o.PayloadSize < 0 {
		return fmt.Errorf("payload size can't be negative: %w", ErrNotValid)
	}

	return nil
}

// OperationListOpts filters the listed operations.
type OperationListOpts struct {
	DeviceUDID string
	Kind       OperationKind
	Limit      int
}
