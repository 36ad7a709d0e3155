package startservice

import (
	"context"
	"fmt"

	"github.com/slok/idev/internal/journal"
	"github.com/slok/idev/internal/log"
	"github.com/slok/idev/internal/metrics"
	"github.com/slok/idev/internal/model"
	"github.com/slok/idev/internal/native"
	"github.com/slok/idev/internal/session"
	"github.com/slok/idev/internal/storage"
)

// ServiceConfig is the configuration for the start service service.
type ServiceConfig struct {
	Library    native.Library
	Repository storage.Repository
	Metrics    metrics.Recorder
	Label      string
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Library == nil {
		return fmt.Errorf("library is required")
	}

	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Service starts lockdown services on a device.
type Service struct {
	lib      native.Library
	recorder *journal.Recorder
	label    string
	logger   log.Logger
}

// NewService creates a new start service service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	recorder, err := journal.NewRecorder(journal.RecorderConfig{
		Repository: cfg.Repository,
		Metrics:    cfg.Metrics,
		Logger:     cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create journal recorder: %w", err)
	}

	return &Service{
		lib:      cfg.Library,
		recorder: recorder,
		label:    cfg.Label,
		logger:   cfg.Logger,
	}, nil
}

// Request represents the start service request parameters.
type Request struct {
	UDID       string
	Identifier string
}

// Result describes the started service.
type Result struct {
	UDID       string
	Identifier string
	Port       uint16
	SSLEnabled bool
}

// Run starts the service, reads its descriptor and releases it.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if req.Identifier == "" {
		return nil, fmt.Errorf("service identifier is required: %w", model.ErrNotValid)
	}

	op := model.Operation{
		DeviceUDID: req.UDID,
		Kind:       model.OperationKindStartService,
		Target:     req.Identifier,
	}

	res, err := s.run(req, &op)
	s.recorder.Record(ctx, op, err)
	if err != nil {
		return nil, err
	}

	s.logger.Infof("service %s started on %s port %d", res.Identifier, res.UDID, res.Port)
	return res, nil
}

func (s *Service) run(req Request, op *model.Operation) (*Result, error) {
	sess, err := session.Open(session.Config{Library: s.lib, UDID: req.UDID, Label: s.label, Logger: s.logger})
	if err != nil {
		return nil, fmt.Errorf("could not open device: %w", err)
	}
	defer sess.Close()
	op.DeviceUDID = sess.UDID()

	svc, err := sess.StartService(req.Identifier)
	if err != nil {
		return nil, err
	}

	return &Result{
		UDID:       sess.UDID(),
		Identifier: svc.Label,
		Port:       svc.Port,
		SSLEnabled: svc.SSLEnabled,
	}, nil
}
