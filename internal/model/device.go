package model

import "fmt"

// Device is a device known by a native library backend.
type Device struct {
	UDID string
	// Locked devices refuse image mounts.
	Locked bool
	// Values are lockdown values keyed by domain ("" is the global domain) and key.
	Values map[string]map[string]any
	// Services are the lockdown service identifiers the device can start.
	Services []string
	// ImageTypes are the image types the image mounter accepts.
	ImageTypes []string
}

// Validate validates the device.
func (d Device) Validate() error {
	if d.UDID == "" {
		return fmt.Errorf("udid is required: %w", ErrNotValid)
	}
	return nil
}

// HasService returns true if the device can start the service identifier.
func (d Device) HasService(identifier string) bool {
	for _, s := range d.Services {
		if s == identifier {
			return true
		}
	}
	return false
}

// SupportsImageType returns true if the device mounter accepts the image type.
// An empty type is accepted by every device.
func (d Device) SupportsImageType(imageType string) bool {
	if imageType == "" {
		return true
	}
	for _, t := range d.ImageTypes {
		if t == imageType {
			return true
		}
	}
	return false
}

const (
	// ImageMounterServiceID is the lockdown identifier of the image mounter service.
	ImageMounterServiceID = "com.apple.mobile.mobile_image_mounter"
	// DeveloperImageType is the default image type for developer disk images.
	DeveloperImageType = "Developer"
	// DefaultImageStagingPath is the device path images are uploaded to before mounting.
	DefaultImageStagingPath = "/private/var/mobile/Media/PublicStaging/staging.dimage"
)
