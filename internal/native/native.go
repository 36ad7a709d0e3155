package native

// Handle is an opaque native object reference. It is only meaningful to the
// library that returned it and must be freed through that same library.
type Handle uintptr

// NullHandle is never returned for a successfully constructed object.
const NullHandle Handle = 0

// Status is the raw status code returned by a native call. Zero is success,
// everything else is subsystem specific and must be translated by the caller.
type Status int32

// StatusSuccess is the shared success code of every native subsystem.
const StatusSuccess Status = 0

// UploadCallback is called by the native layer while an image is streamed to
// the device. A negative return aborts the transfer, anything else continues.
type UploadCallback func(sent, total uint64) int64

// Library is the native device library call surface.
type Library interface {
	// Init prepares the process wide library state. It is called once before
	// the first object is created.
	Init() error
	// Cleanup tears down the process wide state after the last object is gone.
	Cleanup()

	Devices
	Lockdown
	ImageMounter
}

// Devices is the device discovery and connection surface.
type Devices interface {
	DeviceList() ([]string, Status)
	DeviceNew(udid string) (Handle, Status)
	DeviceFree(device Handle)
}

// Lockdown is the lockdown service surface.
type Lockdown interface {
	LockdownClientNewWithHandshake(device Handle, label string) (Handle, Status)
	LockdownClientFree(client Handle)
	// LockdownGetValue returns a plist compatible Go value. Empty domain or key
	// are passed to the device as "not set".
	LockdownGetValue(client Handle, domain, key string) (any, Status)
	LockdownStartService(client Handle, identifier string) (Handle, Status)
	LockdownServiceInfo(service Handle) (port uint16, sslEnabled bool, st Status)
	LockdownServiceDescriptorFree(service Handle)
}

// ImageMounter is the mobile image mounter service surface.
type ImageMounter interface {
	MobileImageMounterNew(device, service Handle) (Handle, Status)
	MobileImageMounterFree(mounter Handle)
	MobileImageMounterUploadImage(mounter Handle, imageType string, image, signature []byte, cb UploadCallback) Status
	MobileImageMounterMountImage(mounter Handle, imagePath string, signature []byte, imageType string) (any, Status)
	MobileImageMounterLookupImage(mounter Handle, imageType string) (any, Status)
	MobileImageMounterHangup(mounter Handle) Status
}
