package imagemounter

import (
	"fmt"

	"github.com/slok/idev/internal/model"
	"github.com/slok/idev/internal/native"
)

// Error is a mobile image mounter error.
type Error int32

const (
	Success          Error = Error(native.StatusSuccess)
	ErrInvalidArg    Error = Error(native.MounterInvalidArg)
	ErrPlistError    Error = Error(native.MounterPlistError)
	ErrConnFailed    Error = Error(native.MounterConnFailed)
	ErrCommandFailed Error = Error(native.MounterCommandFailed)
	ErrDeviceLocked  Error = Error(native.MounterDeviceLocked)
	ErrNotSupported  Error = Error(native.MounterNotSupported)
	ErrUnknown       Error = Error(native.MounterUnknownError)

	// The following are never returned by the native library.

	// ErrMissingObjectDependency is returned when the mounter, or any object it
	// depends on, was already released.
	ErrMissingObjectDependency Error = -1000
	// ErrPayloadNotFound is returned when the image file can't be read.
	ErrPayloadNotFound Error = -1001
	// ErrSignatureNotFound is returned when the image signature file can't be read.
	ErrSignatureNotFound Error = -1002
)

var errorNames = map[Error]string{
	Success:                    "success",
	ErrInvalidArg:              "invalid argument",
	ErrPlistError:              "plist error",
	ErrConnFailed:              "connection failed",
	ErrCommandFailed:           "command failed",
	ErrDeviceLocked:            "device locked",
	ErrNotSupported:            "not supported",
	ErrUnknown:                 "unknown error",
	ErrMissingObjectDependency: "missing object dependency",
	ErrPayloadNotFound:         "image payload not found",
	ErrSignatureNotFound:       "image signature not found",
}

func (e Error) Error() string {
	if name, ok := errorNames[e]; ok {
		return "image mounter: " + name
	}
	return fmt.Sprintf("image mounter: error %d", int32(e))
}

// Is makes image mounter errors match the generic model errors.
func (e Error) Is(target error) bool {
	switch target {
	case model.ErrMissingDependency:
		return e == ErrMissingObjectDependency
	case model.ErrNotFound:
		return e == ErrPayloadNotFound || e == ErrSignatureNotFound
	case model.ErrNotValid:
		return e == ErrInvalidArg
	}
	return false
}

// Native reports whether the error came from the native library.
func (e Error) Native() bool {
	return e < Success && e > ErrMissingObjectDependency
}

func fromStatus(st native.Status) error {
	if st == native.StatusSuccess {
		return nil
	}

	e := Error(st)
	if _, ok := errorNames[e]; !ok || !e.Native() {
		return ErrUnknown
	}
	return e
}
