package lib

import (
	"errors"
	"time"

	"github.com/slok/idev/internal/model"
)

// Errors returned by the SDK. Check them with [errors.Is].
var (
	// ErrNotFound is returned when a device, lockdown value or service does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNotValid is returned on invalid input.
	ErrNotValid = errors.New("not valid")
	// ErrMissingDependency is returned when a native object, or one it was
	// derived from, was released before being used.
	ErrMissingDependency = errors.New("missing object dependency")
)

// DeveloperImageType is the image type of developer disk images.
const DeveloperImageType = model.DeveloperImageType

// Device is a device attached to the simulated library.
type Device struct {
	// UDID is the unique device identifier.
	UDID string
	// Locked devices refuse image uploads and mounts.
	Locked bool
	// Values are lockdown values keyed by domain ("" is the global domain) and key.
	Values map[string]map[string]any
	// Services are the lockdown service identifiers the device can start.
	Services []string
	// ImageTypes are the image types the image mounter accepts.
	ImageTypes []string
}

// Service is a lockdown service started on a device.
type Service struct {
	UDID       string
	Identifier string
	// Port is the device port the service listens on.
	Port       uint16
	SSLEnabled bool
}

// ImageLookup is the result of looking up the mounted images of a type.
type ImageLookup struct {
	UDID      string
	ImageType string
	// Signatures of the mounted images, empty when nothing is mounted.
	Signatures [][]byte
}

// Mounted returns true when at least one image of the type is mounted.
func (l ImageLookup) Mounted() bool { return len(l.Signatures) > 0 }

// MountImageOpts are the options of [Client.MountImage].
type MountImageOpts struct {
	// UDID of the device, the first attached device when empty.
	UDID string
	// ImagePath is the local disk image path. Required.
	ImagePath string
	// SignaturePath is the local image signature path.
	// Default: ImagePath with a ".signature" suffix.
	SignaturePath string
	// ImageType is the image type. Default: [DeveloperImageType].
	ImageType string
	// UploadOnly uploads the image without mounting it.
	UploadOnly bool
	// Progress is called while the image is uploaded. It can't abort the upload.
	Progress func(sent, total uint64)
}

// MountResult is the result of [Client.MountImage].
type MountResult struct {
	UDID      string
	ImageType string
	// Digest is the image content digest.
	Digest string
	// Size is the image size in bytes.
	Size int64
	// AlreadyMounted is true when the device already had the image mounted,
	// in that case nothing is uploaded.
	AlreadyMounted bool
	Uploaded       bool
	Mounted        bool
}

// OperationKind is the kind of a journaled operation.
type OperationKind string

const (
	OperationKindGetValue     OperationKind = OperationKind(model.OperationKindGetValue)
	OperationKindStartService OperationKind = OperationKind(model.OperationKindStartService)
	OperationKindLookupImage  OperationKind = OperationKind(model.OperationKindLookupImage)
	OperationKindUploadImage  OperationKind = OperationKind(model.OperationKindUploadImage)
	OperationKindMountImage   OperationKind = OperationKind(model.OperationKindMountImage)
)

// Operation is a journal entry of an operation run against a device.
type Operation struct {
	ID         string
	DeviceUDID string
	Kind       OperationKind
	// Target is what the operation acted on: a lockdown key, a service identifier or an image type.
	Target        string
	PayloadDigest string
	PayloadSize   int64
	// Succeeded is false when the operation failed, Error has the reason.
	Succeeded bool
	Error     string
	CreatedAt time.Time
}

// HistoryOpts filters the journal entries returned by [Client.History].
type HistoryOpts struct {
	UDID  string
	Kind  OperationKind
	Limit int
}

func toInternalDevices(ds []Device) []model.Device {
	if len(ds) == 0 {
		return nil
	}

	result := make([]model.Device, len(ds))
	for i, d := range ds {
		result[i] = model.Device{
			UDID:       d.UDID,
			Locked:     d.Locked,
			Values:     d.Values,
			Services:   d.Services,
			ImageTypes: d.ImageTypes,
		}
	}
	return result
}

func fromInternalOperations(ops []model.Operation) []Operation {
	result := make([]Operation, len(ops))
	for i, o := range ops {
		result[i] = Operation{
			ID:            o.ID,
			DeviceUDID:    o.DeviceUDID,
			Kind:          OperationKind(o.Kind),
			Target:        o.Target,
			PayloadDigest: o.PayloadDigest,
			PayloadSize:   o.PayloadSize,
			Succeeded:     o.Status == model.OperationStatusSucceeded,
			Error:         o.Error,
			CreatedAt:     o.CreatedAt,
		}
	}
	return result
}

func mapError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, model.ErrNotFound):
		return joinErrors(err, ErrNotFound)
	case errors.Is(err, model.ErrNotValid):
		return joinErrors(err, ErrNotValid)
	case errors.Is(err, model.ErrMissingDependency):
		return joinErrors(err, ErrMissingDependency)
	default:
		return err
	}
}

func joinErrors(original, sentinel error) error {
	return &mappedError{original: original, sentinel: sentinel}
}

type mappedError struct {
	original error
	sentinel error
}

func (e *mappedError) Error() string { return e.original.Error() }

func (e *mappedError) Is(target error) bool {
	return target == e.sentinel
}

func (e *mappedError) Unwrap() error { return e.original }
