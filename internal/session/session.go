// Package session opens the chain of native objects an operation needs on a
// device and tears it down, children first, when the operation is done.
package session

import (
	"fmt"

	"github.com/slok/idev/internal/device"
	"github.com/slok/idev/internal/imagemounter"
	"github.com/slok/idev/internal/lockdown"
	"github.com/slok/idev/internal/log"
	"github.com/slok/idev/internal/model"
	"github.com/slok/idev/internal/native"
)

// DefaultLabel is the lockdown client label used when none is set.
const DefaultLabel = "idev"

// Config is the configuration of a device session.
type Config struct {
	Library native.Library
	// UDID of the device, the first attached device is used when empty.
	UDID   string
	Label  string
	Logger log.Logger
}

func (c *Config) defaults() error {
	if c.Library == nil {
		return fmt.Errorf("library is required")
	}

	if c.Label == "" {
		c.Label = DefaultLabel
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

type closer interface {
	Close() error
}

// Session is a device with a lockdown client on it.
type Session struct {
	Device *device.Device
	Client *lockdown.Client

	opened []closer
	logger log.Logger
}

// Open opens the device and its lockdown client.
func Open(cfg Config) (*Session, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	udid := cfg.UDID
	if udid == "" {
		udids, err := device.List(cfg.Library)
		if err != nil {
			return nil, err
		}
		if len(udids) == 0 {
			return nil, fmt.Errorf("no attached devices: %w", model.ErrNotFound)
		}
		udid = udids[0]
	}

	dev, err := device.New(device.Config{Library: cfg.Library, UDID: udid, Logger: cfg.Logger})
	if err != nil {
		return nil, err
	}

	s := &Session{
		Device: dev,
		opened: []closer{dev},
		logger: cfg.Logger.WithValues(log.Kv{"svc": "session.Session", "udid": udid}),
	}

	client, err := lockdown.NewClient(dev, cfg.Label)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	s.Client = client
	s.track(client)

	return s, nil
}

// UDID returns the session device UDID.
func (s *Session) UDID() string { return s.Device.UDID }

// StartService starts a lockdown service. It is released with the session.
func (s *Session) StartService(identifier string) (*lockdown.Service, error) {
	svc, err := s.Client.StartService(identifier)
	if err != nil {
		return nil, err
	}
	s.track(svc)

	return svc, nil
}

// ImageMounter starts the image mounter service and connects to it. It is
// released with the session.
func (s *Session) ImageMounter() (*imagemounter.Mounter, error) {
	svc, err := s.StartService(model.ImageMounterServiceID)
	if err != nil {
		return nil, err
	}

	m, err := imagemounter.New(s.Device, svc)
	if err != nil {
		return nil, err
	}
	s.track(m)

	return m, nil
}

func (s *Session) track(c closer) { s.opened = append(s.opened, c) }

// Close releases everything opened by the session, last opened first. It is
// safe to call many times.
func (s *Session) Close() error {
	for i := len(s.opened) - 1; i >= 0; i-- {
		_ = s.opened[i].Close()
	}
	s.logger.Debugf("Session closed, %d objects released", len(s.opened))
	s.opened = nil

	return nil
}
