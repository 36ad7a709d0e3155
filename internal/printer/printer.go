package printer

import "github.com/slok/idev/internal/model"

// Printer knows how to print device information in different formats.
type Printer interface {
	PrintDevices(udids []string) error
	PrintValue(v any) error
	PrintService(svc Service) error
	PrintMountedImages(images MountedImages) error
	PrintOperations(ops []model.Operation) error
	PrintMessage(msg string) error
}

// Service is a started lockdown service.
type Service struct {
	UDID       string `json:"udid" plist:"UDID"`
	Identifier string `json:"identifier" plist:"Identifier"`
	Port       uint16 `json:"port" plist:"Port"`
	SSLEnabled bool   `json:"ssl_enabled" plist:"SSLEnabled"`
}

// MountedImages are the images of a type mounted on a device.
type MountedImages struct {
	UDID       string   `json:"udid" plist:"UDID"`
	ImageType  string   `json:"image_type" plist:"ImageType"`
	Signatures [][]byte `json:"signatures" plist:"ImageSignature"`
}
