package lockdown

import (
	"fmt"

	"github.com/slok/idev/internal/model"
	"github.com/slok/idev/internal/native"
)

// Error is a lockdown service error.
type Error int32

const (
	Success                                Error = Error(native.StatusSuccess)
	ErrInvalidArg                          Error = Error(native.LockdownInvalidArg)
	ErrInvalidConf                         Error = Error(native.LockdownInvalidConf)
	ErrPlistError                          Error = Error(native.LockdownPlistError)
	ErrPairingFailed                       Error = Error(native.LockdownPairingFailed)
	ErrSSLError                            Error = Error(native.LockdownSSLError)
	ErrDictError                           Error = Error(native.LockdownDictError)
	ErrReceiveTimeout                      Error = Error(native.LockdownReceiveTimeout)
	ErrMuxError                            Error = Error(native.LockdownMuxError)
	ErrNoRunningSession                    Error = Error(native.LockdownNoRunningSession)
	ErrInvalidResponse                     Error = Error(native.LockdownInvalidResponse)
	ErrMissingKey                          Error = Error(native.LockdownMissingKey)
	ErrMissingValue                        Error = Error(native.LockdownMissingValue)
	ErrGetProhibited                       Error = Error(native.LockdownGetProhibited)
	ErrSetProhibited                       Error = Error(native.LockdownSetProhibited)
	ErrRemoveProhibited                    Error = Error(native.LockdownRemoveProhibited)
	ErrImmutableValue                      Error = Error(native.LockdownImmutableValue)
	ErrPasswordProtected                   Error = Error(native.LockdownPasswordProtected)
	ErrUserDeniedPairing                   Error = Error(native.LockdownUserDeniedPairing)
	ErrPairingDialogResponsePending        Error = Error(native.LockdownPairingDialogResponsePending)
	ErrMissingHostID                       Error = Error(native.LockdownMissingHostID)
	ErrInvalidHostID                       Error = Error(native.LockdownInvalidHostID)
	ErrSessionActive                       Error = Error(native.LockdownSessionActive)
	ErrSessionInactive                     Error = Error(native.LockdownSessionInactive)
	ErrMissingSessionID                    Error = Error(native.LockdownMissingSessionID)
	ErrInvalidSessionID                    Error = Error(native.LockdownInvalidSessionID)
	ErrMissingService                      Error = Error(native.LockdownMissingService)
	ErrInvalidService                      Error = Error(native.LockdownInvalidService)
	ErrServiceLimit                        Error = Error(native.LockdownServiceLimit)
	ErrMissingPairRecord                   Error = Error(native.LockdownMissingPairRecord)
	ErrSavePairRecordFailed                Error = Error(native.LockdownSavePairRecordFailed)
	ErrInvalidPairRecord                   Error = Error(native.LockdownInvalidPairRecord)
	ErrInvalidActivationRecord             Error = Error(native.LockdownInvalidActivationRecord)
	ErrMissingActivationRecord             Error = Error(native.LockdownMissingActivationRecord)
	ErrServiceProhibited                   Error = Error(native.LockdownServiceProhibited)
	ErrEscrowLocked                        Error = Error(native.LockdownEscrowLocked)
	ErrPairingProhibitedOverThisConnection Error = Error(native.LockdownPairingProhibitedOverThisConnection)
	ErrFMIPProtected                       Error = Error(native.LockdownFMIPProtected)
	ErrMCProtected                         Error = Error(native.LockdownMCProtected)
	ErrMCChallengeRequired                 Error = Error(native.LockdownMCChallengeRequired)
	ErrUnknown                             Error = Error(native.LockdownUnknownError)

	// ErrMissingObjectDependency is never returned by the native library, only
	// when the client, or the device it was created from, was already released.
	ErrMissingObjectDependency Error = -1000
)

var errorNames = map[Error]string{
	Success:                                "success",
	ErrInvalidArg:                          "invalid argument",
	ErrInvalidConf:                         "invalid configuration",
	ErrPlistError:                          "plist error",
	ErrPairingFailed:                       "pairing failed",
	ErrSSLError:                            "ssl error",
	ErrDictError:                           "dictionary error",
	ErrReceiveTimeout:                      "receive timeout",
	ErrMuxError:                            "mux error",
	ErrNoRunningSession:                    "no running session",
	ErrInvalidResponse:                     "invalid response",
	ErrMissingKey:                          "missing key",
	ErrMissingValue:                        "missing value",
	ErrGetProhibited:                       "get prohibited",
	ErrSetProhibited:                       "set prohibited",
	ErrRemoveProhibited:                    "remove prohibited",
	ErrImmutableValue:                      "immutable value",
	ErrPasswordProtected:                   "password protected",
	ErrUserDeniedPairing:                   "user denied pairing",
	ErrPairingDialogResponsePending:        "pairing dialog response pending",
	ErrMissingHostID:                       "missing host id",
	ErrInvalidHostID:                       "invalid host id",
	ErrSessionActive:                       "session active",
	ErrSessionInactive:                     "session inactive",
	ErrMissingSessionID:                    "missing session id",
	ErrInvalidSessionID:                    "invalid session id",
	ErrMissingService:                      "missing service",
	ErrInvalidService:                      "invalid service",
	ErrServiceLimit:                        "service limit",
	ErrMissingPairRecord:                   "missing pair record",
	ErrSavePairRecordFailed:                "save pair record failed",
	ErrInvalidPairRecord:                   "invalid pair record",
	ErrInvalidActivationRecord:             "invalid activation record",
	ErrMissingActivationRecord:             "missing activation record",
	ErrServiceProhibited:                   "service prohibited",
	ErrEscrowLocked:                        "escrow locked",
	ErrPairingProhibitedOverThisConnection: "pairing prohibited over this connection",
	ErrFMIPProtected:                       "find my iphone protected",
	ErrMCProtected:                         "mobile configuration protected",
	ErrMCChallengeRequired:                 "mobile configuration challenge required",
	ErrUnknown:                             "unknown error",
	ErrMissingObjectDependency:             "missing object dependency",
}

func (e Error) Error() string {
	if name, ok := errorNames[e]; ok {
		return "lockdown: " + name
	}
	return fmt.Sprintf("lockdown: error %d", int32(e))
}

// Is makes lockdown errors match the generic model errors.
func (e Error) Is(target error) bool {
	switch target {
	case model.ErrMissingDependency:
		return e == ErrMissingObjectDependency
	case model.ErrNotFound:
		return e == ErrMissingKey || e == ErrMissingValue || e == ErrInvalidService || e == ErrMissingService
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
