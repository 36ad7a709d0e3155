package device

import (
	"fmt"
	"sync/atomic"

	"github.com/slok/idev/internal/handle"
	"github.com/slok/idev/internal/log"
	"github.com/slok/idev/internal/native"
)

// List returns the UDIDs of the devices attached to the library.
func List(lib native.Library) ([]string, error) {
	if err := native.Acquire(lib); err != nil {
		return nil, err
	}
	defer native.Release(lib)

	udids, st := lib.DeviceList()
	if err := fromStatus(st); err != nil {
		return nil, fmt.Errorf("could not list devices: %w", err)
	}

	return udids, nil
}

// Config is the configuration of a device connection.
type Config struct {
	Library native.Library
	UDID    string
	Logger  log.Logger
}

func (c *Config) defaults() error {
	if c.Library == nil {
		return fmt.Errorf("library is required")
	}

	if c.UDID == "" {
		return fmt.Errorf("udid is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "device.Device", "udid": c.UDID})

	return nil
}

// Device is an open device connection. It is the root of every handle chain,
// clients and services derived from it stop working once it is closed.
type Device struct {
	UDID string

	lib      native.Library
	lock     *handle.Lock
	logger   log.Logger
	released atomic.Bool
}

// New opens a device. The process wide native runtime is held until the device
// is closed.
func New(cfg Config) (*Device, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if err := native.Acquire(cfg.Library); err != nil {
		return nil, err
	}

	h, st := cfg.Library.DeviceNew(cfg.UDID)
	if err := fromStatus(st); err != nil {
		native.Release(cfg.Library)
		return nil, fmt.Errorf("could not open device %s: %w", cfg.UDID, err)
	}

	cfg.Logger.Debugf("Device opened")

	return &Device{
		UDID:   cfg.UDID,
		lib:    cfg.Library,
		lock:   handle.New(h, nil),
		logger: cfg.Logger,
	}, nil
}

// Lock returns an observer of the device handle to chain dependent objects on.
func (d *Device) Lock() *handle.Lock { return d.lock.Clone() }

// Library returns the native library the device was opened with.
func (d *Device) Library() native.Library { return d.lib }

// Logger returns the device logger.
func (d *Device) Logger() log.Logger { return d.logger }

// Close frees the device handle and drops the runtime reference. It is safe
// to call many times and always returns nil.
func (d *Device) Close() error {
	if !d.lock.Release(d.lib.DeviceFree) {
		d.logger.Debugf("Device free skipped, already released")
	}

	if d.released.CompareAndSwap(false, true) {
		native.Release(d.lib)
	}

	return nil
}
