package getvalue

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

// ServiceConfig is the configuration for the get value service.
type ServiceConfig struct {
	Library    native.Library
	Repository storage.Repository
	Metrics    metrics.Recorder
	// Label is the lockdown client label, defaults to session.DefaultLabel.
	Label  string
	Logger log.Logger
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

// Service reads lockdown values from a device.
type Service struct {
	lib      native.Library
	recorder *journal.Recorder
	label    string
	logger   log.Logger
}

// NewService creates a new get value service.
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

// Request represents the get value request parameters.
type Request struct {
	// UDID of the device, the first attached device when empty.
	UDID string
	// Domain is the lockdown domain, the global domain when empty.
	Domain string
	// Key is the value key, the whole domain when empty.
	Key string
}

// Result is the value read from the device.
type Result struct {
	UDID  string
	Value any
}

// Run reads a lockdown value and journals the read.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	op := model.Operation{
		DeviceUDID: req.UDID,
		Kind:       model.OperationKindGetValue,
		Target:     Target(req.Domain, req.Key),
	}

	res, err := s.run(req, &op)
	s.recorder.Record(ctx, op, err)
	if err != nil {
		return nil, err
	}

	return res, nil
}

func (s *Service) run(req Request, op *model.Operation) (*Result, error) {
	sess, err := session.Open(session.Config{Library: s.lib, UDID: req.UDID, Label: s.label, Logger: s.logger})
	if err != nil {
		return nil, fmt.Errorf("could not open device: %w", err)
	}
	defer sess.Close()
	op.DeviceUDID = sess.UDID()

	v, err := sess.Client.GetValue(req.Domain, req.Key)
	if err != nil {
		return nil, err
	}

	s.logger.Debugf("read %s from %s", op.Target, op.DeviceUDID)
	return &Result{UDID: sess.UDID(), Value: v}, nil
}

// Target returns the journal target of a domain key pair.
func Target(domain, key string) string {
	if key == "" {
		key = "*"
	}
	if domain == "" {
		return key
	}
	return domain + "/" + key
}
