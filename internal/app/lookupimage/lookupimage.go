package lookupimage

import (
	"context"
	"fmt"

	"github.com/slok/idev/internal/imagemounter"
	"github.com/slok/idev/internal/journal"
	"github.com/slok/idev/internal/log"
	"github.com/slok/idev/internal/metrics"
	"github.com/slok/idev/internal/model"
	"github.com/slok/idev/internal/native"
	"github.com/slok/idev/internal/session"
	"github.com/slok/idev/internal/storage"
)

// ServiceConfig is the configuration for the lookup image service.
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

// Service looks up the images mounted on a device.
type Service struct {
	lib      native.Library
	recorder *journal.Recorder
	label    string
	logger   log.Logger
}

// NewService creates a new lookup image service.
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

// Request represents the lookup image request parameters.
type Request struct {
	UDID string
	// ImageType defaults to model.DeveloperImageType.
	ImageType string
}

// Result is the lookup outcome.
type Result struct {
	UDID      string
	ImageType string
	// Signatures of the mounted images, empty when nothing is mounted.
	Signatures [][]byte
	// Response is the raw device response.
	Response any
}

// Mounted returns true when an image of the type is mounted.
func (r Result) Mounted() bool { return len(r.Signatures) > 0 }

// Run asks the image mounter service which images of a type are mounted.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if req.ImageType == "" {
		req.ImageType = model.DeveloperImageType
	}

	op := model.Operation{
		DeviceUDID: req.UDID,
		Kind:       model.OperationKindLookupImage,
		Target:     req.ImageType,
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

	m, err := sess.ImageMounter()
	if err != nil {
		return nil, err
	}

	resp, err := m.LookupImage(req.ImageType)
	if err != nil {
		return nil, err
	}

	if err := m.Hangup(); err != nil {
		s.logger.Warningf("could not hang up image mounter: %s", err)
	}

	return &Result{
		UDID:       sess.UDID(),
		ImageType:  req.ImageType,
		Signatures: imagemounter.MountedSignatures(resp),
		Response:   resp,
	}, nil
}
