package mountimage

import (
	"bytes"
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

// ServiceConfig is the configuration for the mount image service.
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

// Service uploads disk images to a device and mounts them.
type Service struct {
	lib      native.Library
	recorder *journal.Recorder
	label    string
	logger   log.Logger
}

// NewService creates a new mount image service.
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

// Request represents the mount image request parameters.
type Request struct {
	UDID          string
	ImagePath     string
	SignaturePath string
	// ImageType defaults to model.DeveloperImageType.
	ImageType string
	// UploadOnly stages the image on the device without mounting it.
	UploadOnly bool
	// Progress observes the upload, optional.
	Progress imagemounter.ProgressFunc
}

func (r *Request) defaults() error {
	if r.ImagePath == "" {
		return fmt.Errorf("image path is required: %w", model.ErrNotValid)
	}

	if r.SignaturePath == "" {
		return fmt.Errorf("signature path is required: %w", model.ErrNotValid)
	}

	if r.ImageType == "" {
		r.ImageType = model.DeveloperImageType
	}

	return nil
}

// Result is the outcome of a mount.
type Result struct {
	UDID      string
	ImageType string
	Digest    string
	Size      int64
	// AlreadyMounted is set when the same image was mounted before the request,
	// nothing is uploaded in that case.
	AlreadyMounted bool
	Uploaded       bool
	Mounted        bool
}

// Run loads the image payload, uploads it and mounts it. Upload and mount are
// journaled independently.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	if err := req.defaults(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	upload := model.Operation{
		DeviceUDID: req.UDID,
		Kind:       model.OperationKindUploadImage,
		Target:     req.ImageType,
	}

	// Nothing reaches the device until the payload is fully loaded.
	payload, err := imagemounter.LoadPayload(req.ImagePath, req.SignaturePath)
	if err != nil {
		s.recorder.Record(ctx, upload, err)
		return nil, err
	}
	desc := payload.Descriptor()
	upload.PayloadDigest = desc.Digest.String()
	upload.PayloadSize = desc.Size

	res := &Result{
		ImageType: req.ImageType,
		Digest:    upload.PayloadDigest,
		Size:      upload.PayloadSize,
	}

	sess, err := session.Open(session.Config{Library: s.lib, UDID: req.UDID, Label: s.label, Logger: s.logger})
	if err != nil {
		err = fmt.Errorf("could not open device: %w", err)
		s.recorder.Record(ctx, upload, err)
		return nil, err
	}
	defer sess.Close()
	res.UDID = sess.UDID()
	upload.DeviceUDID = sess.UDID()

	logger := s.logger.WithValues(log.Kv{"udid": res.UDID, "image-type": req.ImageType, "digest": res.Digest})

	m, err := sess.ImageMounter()
	if err != nil {
		s.recorder.Record(ctx, upload, err)
		return nil, err
	}
	defer s.hangup(m)

	mounted, err := s.alreadyMounted(m, req.ImageType, payload.Signature)
	if err != nil {
		s.recorder.Record(ctx, upload, err)
		return nil, err
	}
	if mounted {
		logger.Infof("image already mounted, nothing to do")
		res.AlreadyMounted = true
		res.Mounted = true
		return res, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var opts []imagemounter.UploadOption
	if req.Progress != nil {
		opts = append(opts, imagemounter.WithProgress(req.Progress))
	}
	err = m.UploadPayload(payload, req.ImageType, opts...)
	s.recorder.Record(ctx, upload, err)
	if err != nil {
		return nil, err
	}
	res.Uploaded = true
	logger.Infof("image uploaded (%d bytes)", res.Size)

	if req.UploadOnly {
		return res, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mount := upload
	mount.Kind = model.OperationKindMountImage
	_, err = m.MountImage(model.DefaultImageStagingPath, req.SignaturePath, req.ImageType)
	s.recorder.Record(ctx, mount, err)
	if err != nil {
		return nil, err
	}
	res.Mounted = true
	logger.Infof("image mounted")

	return res, nil
}

func (s *Service) alreadyMounted(m *imagemounter.Mounter, imageType string, signature []byte) (bool, error) {
	resp, err := m.LookupImage(imageType)
	if err != nil {
		return false, err
	}

	for _, sig := range imagemounter.MountedSignatures(resp) {
		if bytes.Equal(sig, signature) {
			return true, nil
		}
	}

	return false, nil
}

func (s *Service) hangup(m *imagemounter.Mounter) {
	if err := m.Hangup(); err != nil {
		s.logger.Warningf("could not hang up image mounter: %s", err)
	}
}
