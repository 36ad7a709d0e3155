package io

import (
	"context"
	"fmt"
	"io/fs"
	"path"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/slok/idev/internal/model"
)

// DevicesYAMLRepository loads simulated device definitions from YAML files.
// Files with a .toml extension are read as TOML.
type DevicesYAMLRepository struct {
	fs fs.FS
}

// NewDevicesYAMLRepository creates a new YAML devices repository.
func NewDevicesYAMLRepository(filesystem fs.FS) *DevicesYAMLRepository {
	return &DevicesYAMLRepository{fs: filesystem}
}

// ListDevices loads the devices of a YAML file and returns validated domain models.
func (r *DevicesYAMLRepository) ListDevices(ctx context.Context, filePath string) ([]model.Device, error) {
	data, err := fs.ReadFile(r.fs, filePath)
	if err != nil {
		return nil, fmt.Errorf("reading devices file: %w", err)
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	format, unmarshal := "YAML", yaml.Unmarshal
	if path.Ext(filePath) == ".toml" {
		format, unmarshal = "TOML", toml.Unmarshal
	}

	var file DevicesFile
	if err := unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", format, err)
	}

	if err := file.validate(); err != nil {
		return nil, fmt.Errorf("invalid devices file: %w", err)
	}

	devices := make([]model.Device, 0, len(file.Devices))
	for _, d := range file.Devices {
		devices = append(devices, d.toModel())
	}

	return devices, nil
}

// DevicesFile represents the structure of a devices file.
type DevicesFile struct {
	Devices []Device `yaml:"devices" toml:"devices"`
}

// Device represents the structure of a simulated device.
type Device struct {
	UDID       string                    `yaml:"udid" toml:"udid"`
	Locked     bool                      `yaml:"locked" toml:"locked"`
	Values     map[string]any            `yaml:"values" toml:"values"`
	Domains    map[string]map[string]any `yaml:"domains" toml:"domains"`
	Services   []string                  `yaml:"services" toml:"services"`
	ImageTypes []string                  `yaml:"image_types" toml:"image_types"`
}

func (f DevicesFile) validate() error {
	if len(f.Devices) == 0 {
		return fmt.Errorf("at least one device is required")
	}

	seen := map[string]bool{}
	for i, d := range f.Devices {
		if d.UDID == "" {
			return fmt.Errorf("device %d: udid is required", i)
		}
		if seen[d.UDID] {
			return fmt.Errorf("device %s: duplicated udid", d.UDID)
		}
		seen[d.UDID] = true

		if _, ok := d.Domains[""]; ok {
			return fmt.Errorf("device %s: global domain values go in values", d.UDID)
		}
	}

	return nil
}

func (d Device) toModel() model.Device {
	values := map[string]map[string]any{}
	if d.Values != nil {
		values[""] = d.Values
	}
	for domain, v := range d.Domains {
		values[domain] = v
	}

	return model.Device{
		UDID:       d.UDID,
		Locked:     d.Locked,
		Values:     values,
		Services:   d.Services,
		ImageTypes: d.ImageTypes,
	}
}
