package devicelist

import (
	"context"
	"fmt"
	"sort"

	"github.com/slok/idev/internal/device"
	"github.com/slok/idev/internal/log"
	"github.com/slok/idev/internal/native"
)

// ServiceConfig is the configuration for the device list service.
type ServiceConfig struct {
	Library native.Library
	Logger  log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Library == nil {
		return fmt.Errorf("library is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Service lists the attached devices.
type Service struct {
	lib    native.Library
	logger log.Logger
}

// NewService creates a new device list service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		lib:    cfg.Library,
		logger: cfg.Logger,
	}, nil
}

// Request represents the device list request parameters.
type Request struct{}

// Run returns the UDIDs of the attached devices, sorted.
func (s *Service) Run(ctx context.Context, req Request) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	udids, err := device.List(s.lib)
	if err != nil {
		return nil, fmt.Errorf("could not list devices: %w", err)
	}
	sort.Strings(udids)

	s.logger.Debugf("found %d devices", len(udids))
	return udids, nil
}
