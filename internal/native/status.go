package native

// Device subsystem status codes.
const (
	DeviceInvalidArg    Status = -1
	DeviceUnknownError  Status = -2
	DeviceNoDevice      Status = -3
	DeviceNotEnoughData Status = -4
	DeviceSSLError      Status = -6
	DeviceTimeout       Status = -7
)

// Lockdown subsystem status codes.
const (
	LockdownInvalidArg                          Status = -1
	LockdownInvalidConf                         Status = -2
	LockdownPlistError                          Status = -3
	LockdownPairingFailed                       Status = -4
	LockdownSSLError                            Status = -5
	LockdownDictError                           Status = -6
	LockdownReceiveTimeout                      Status = -7
	LockdownMuxError                            Status = -8
	LockdownNoRunningSession                    Status = -9
	LockdownInvalidResponse                     Status = -10
	LockdownMissingKey                          Status = -11
	LockdownMissingValue                        Status = -12
	LockdownGetProhibited                       Status = -13
	LockdownSetProhibited                       Status = -14
	LockdownRemoveProhibited                    Status = -15
	LockdownImmutableValue                      Status = -16
	LockdownPasswordProtected                   Status = -17
	LockdownUserDeniedPairing                   Status = -18
	LockdownPairingDialogResponsePending        Status = -19
	LockdownMissingHostID                       Status = -20
	LockdownInvalidHostID                       Status = -21
	LockdownSessionActive                       Status = -22
	LockdownSessionInactive                     Status = -23
	LockdownMissingSessionID                    Status = -24
	LockdownInvalidSessionID                    Status = -25
	LockdownMissingService                      Status = -26
	LockdownInvalidService                      Status = -27
	LockdownServiceLimit                        Status = -28
	LockdownMissingPairRecord                   Status = -29
	LockdownSavePairRecordFailed                Status = -30
	LockdownInvalidPairRecord                   Status = -31
	LockdownInvalidActivationRecord             Status = -32
	LockdownMissingActivationRecord             Status = -33
	LockdownServiceProhibited                   Status = -34
	LockdownEscrowLocked                        Status = -35
	LockdownPairingProhibitedOverThisConnection Status = -36
	LockdownFMIPProtected                       Status = -37
	LockdownMCProtected                         Status = -38
	LockdownMCChallengeRequired                 Status = -39
	LockdownUnknownError                        Status = -256
)

// Mobile image mounter subsystem status codes.
const (
	MounterInvalidArg    Status = -1
	MounterPlistError    Status = -2
	MounterConnFailed    Status = -3
	MounterCommandFailed Status = -4
	MounterDeviceLocked  Status = -5
	MounterNotSupported  Status = -6
	MounterUnknownError  Status = -256
)
