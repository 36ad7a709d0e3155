package device

import (
	"fmt"

	"github.com/slok/idev/internal/model"
	"github.com/slok/idev/internal/native"
)

// Error is a device subsystem error.
type Error int32

const (
	Success          Error = Error(native.StatusSuccess)
	ErrInvalidArg    Error = Error(native.DeviceInvalidArg)
	ErrUnknown       Error = Error(native.DeviceUnknownError)
	ErrNoDevice      Error = Error(native.DeviceNoDevice)
	ErrNotEnoughData Error = Error(native.DeviceNotEnoughData)
	ErrSSL           Error = Error(native.DeviceSSLError)
	ErrTimeout       Error = Error(native.DeviceTimeout)

	// ErrMissingObjectDependency is never returned by the native library, only
	// when the device handle was already released.
	ErrMissingObjectDependency Error = -1000
)

var errorNames = map[Error]string{
	Success:                    "success",
	ErrInvalidArg:              "invalid argument",
	ErrUnknown:                 "unknown error",
	ErrNoDevice:                "no device",
	ErrNotEnoughData:           "not enough data",
	ErrSSL:                     "ssl error",
	ErrTimeout:                 "timeout",
	ErrMissingObjectDependency: "missing object dependency",
}

func (e Error) Error() string {
	if name, ok := errorNames[e]; ok {
		return "device: " + name
	}
	return fmt.Sprintf("device: error %d", int32(e))
}

// Is makes device errors match the generic model errors.
func (e Error) Is(target error) bool {
	switch target {
	case model.ErrMissingDependency:
		return e == ErrMissingObjectDependency
	case model.ErrNotFound:
		return e == ErrNoDevice
	case model.ErrNotValid:
		return e == ErrInvalidArg
	}
	return false
}

// fromStatus maps a native status to an error, nil on success. Codes unknown
// to the subsystem are reported as ErrUnknown.
func fromStatus(st native.Status) error {
	if st == native.StatusSuccess {
		return nil
	}

	e := Error(st)
	if _, ok := errorNames[e]; !ok || e == ErrMissingObjectDependency {
		return ErrUnknown
	}
	return e
}
