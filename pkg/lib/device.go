package lib

import (
	"context"
	"fmt"

	"github.com/slok/idev/internal/app/devicelist"
	"github.com/slok/idev/internal/app/getvalue"
	"github.com/slok/idev/internal/app/startservice"
)

// ListDevices returns the UDIDs of the attached devices, sorted.
func (c *Client) ListDevices(ctx context.Context) ([]string, error) {
	svc, err := devicelist.NewService(devicelist.ServiceConfig{
		Library: c.library,
		Logger:  c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	udids, err := svc.Run(ctx, devicelist.Request{})
	if err != nil {
		return nil, mapError(err)
	}

	return udids, nil
}

// GetValue reads a lockdown value from a device.
//
// An empty udid uses the first attached device. An empty domain is the global
// domain and an empty key returns the whole domain.
func (c *Client) GetValue(ctx context.Context, udid, domain, key string) (any, error) {
	svc, err := getvalue.NewService(getvalue.ServiceConfig{
		Library:    c.library,
		Repository: c.repo,
		Metrics:    c.metrics,
		Label:      c.label,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	res, err := svc.Run(ctx, getvalue.Request{UDID: udid, Domain: domain, Key: key})
	if err != nil {
		return nil, mapError(err)
	}

	return res.Value, nil
}

// StartService starts a lockdown service on a device and returns where it listens.
//
// An empty udid uses the first attached device.
func (c *Client) StartService(ctx context.Context, udid, identifier string) (*Service, error) {
	svc, err := startservice.NewService(startservice.ServiceConfig{
		Library:    c.library,
		Repository: c.repo,
		Metrics:    c.metrics,
		Label:      c.label,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	res, err := svc.Run(ctx, startservice.Request{UDID: udid, Identifier: identifier})
	if err != nil {
		return nil, mapError(err)
	}

	return &Service{
		UDID:       res.UDID,
		Identifier: res.Identifier,
		Port:       res.Port,
		SSLEnabled: res.SSLEnabled,
	}, nil
}
