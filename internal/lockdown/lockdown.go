package lockdown

import (
	"fmt"

	"github.com/slok/idev/internal/device"
	"github.com/slok/idev/internal/handle"
	"github.com/slok/idev/internal/log"
	"github.com/slok/idev/internal/native"
)

// Client is a lockdown client connected to a device.
type Client struct {
	Label string

	lib    native.Library
	lock   *handle.Lock
	logger log.Logger
}

// NewClient connects to the lockdown service of dev, performing the pairing
// handshake. The client stops working once dev is closed.
func NewClient(dev *device.Device, label string) (*Client, error) {
	parent := dev.Lock()
	dh, err := parent.Check()
	if err != nil {
		return nil, fmt.Errorf("could not create lockdown client: %w", ErrMissingObjectDependency)
	}

	lib := dev.Library()
	h, st := lib.LockdownClientNewWithHandshake(dh, label)
	if err := fromStatus(st); err != nil {
		return nil, fmt.Errorf("could not create lockdown client: %w", err)
	}

	logger := dev.Logger().WithValues(log.Kv{"svc": "lockdown.Client", "label": label})
	logger.Debugf("Lockdown client connected")

	return &Client{
		Label:  label,
		lib:    lib,
		lock:   handle.New(h, parent),
		logger: logger,
	}, nil
}

// GetValue returns the value of key in domain. An empty domain means the
// global domain, an empty key returns the whole domain.
func (c *Client) GetValue(domain, key string) (any, error) {
	h, err := c.lock.Check()
	if err != nil {
		return nil, ErrMissingObjectDependency
	}

	v, st := c.lib.LockdownGetValue(h, domain, key)
	if err := fromStatus(st); err != nil {
		return nil, fmt.Errorf("could not get value %q of domain %q: %w", key, domain, err)
	}

	return v, nil
}

// StartService starts the service identifier on the device. The returned
// service depends on the client and stops working once the client is closed.
func (c *Client) StartService(identifier string) (*Service, error) {
	h, err := c.lock.Check()
	if err != nil {
		return nil, ErrMissingObjectDependency
	}

	sh, st := c.lib.LockdownStartService(h, identifier)
	if err := fromStatus(st); err != nil {
		return nil, fmt.Errorf("could not start service %s: %w", identifier, err)
	}

	svc := &Service{
		Label:  identifier,
		lib:    c.lib,
		lock:   handle.New(sh, c.lock.Clone()),
		logger: c.logger.WithValues(log.Kv{"svc": "lockdown.Service", "service": identifier}),
	}

	port, ssl, st := c.lib.LockdownServiceInfo(sh)
	if err := fromStatus(st); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("could not read service %s descriptor: %w", identifier, err)
	}
	svc.Port = port
	svc.SSLEnabled = ssl

	svc.logger.Debugf("Service started on port %d", port)

	return svc, nil
}

// Close disconnects the client. It is safe to call many times and always
// returns nil.
func (c *Client) Close() error {
	if !c.lock.Release(c.lib.LockdownClientFree) {
		c.logger.Debugf("Lockdown client free skipped, client or device already released")
	}
	return nil
}

// Service is a started lockdown service descriptor.
type Service struct {
	Label      string
	Port       uint16
	SSLEnabled bool

	lib    native.Library
	lock   *handle.Lock
	logger log.Logger
}

// Lock returns an observer of the service handle to chain dependent objects on.
func (s *Service) Lock() *handle.Lock { return s.lock.Clone() }

// Logger returns the service logger.
func (s *Service) Logger() log.Logger { return s.logger }

// Close frees the service descriptor. It is safe to call many times and always
// returns nil.
func (s *Service) Close() error {
	if !s.lock.Release(s.lib.LockdownServiceDescriptorFree) {
		s.logger.Debugf("Service descriptor free skipped, service or one of its dependencies already released")
	}
	return nil
}
