package journal

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/slok/idev/internal/log"
	"github.com/slok/idev/internal/metrics"
	"github.com/slok/idev/internal/model"
	"github.com/slok/idev/internal/storage"
)

// RecorderConfig is the configuration of the operation recorder.
type RecorderConfig struct {
	Repository storage.Repository
	Metrics    metrics.Recorder
	Logger     log.Logger
	// TimeNow is used to timestamp operations, defaults to time.Now.
	TimeNow func() time.Time
}

func (c *RecorderConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.Metrics == nil {
		c.Metrics = metrics.Noop
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "journal.Recorder"})

	if c.TimeNow == nil {
		c.TimeNow = time.Now
	}

	return nil
}

// Recorder journals the outcome of device operations.
type Recorder struct {
	repo    storage.Repository
	metrics metrics.Recorder
	logger  log.Logger
	timeNow func() time.Time
}

// NewRecorder creates a new operation recorder.
func NewRecorder(cfg RecorderConfig) (*Recorder, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Recorder{
		repo:    cfg.Repository,
		metrics: cfg.Metrics,
		logger:  cfg.Logger,
		timeNow: cfg.TimeNow,
	}, nil
}

// Record stores op with the outcome of opErr and returns the stored operation.
// A journal failure is logged and never hides the outcome of the operation.
// Operations that never resolved a device are not journaled.
func (r *Recorder) Record(ctx context.Context, op model.Operation, opErr error) model.Operation {
	if op.DeviceUDID == "" {
		r.logger.Debugf("Skipping %s operation journal, no device", op.Kind)
		return op
	}

	now := r.timeNow().UTC()
	op.ID = ulid.MustNew(ulid.Timestamp(now), rand.Reader).String()
	op.CreatedAt = now
	op.Status = model.OperationStatusSucceeded
	op.Error = ""
	if opErr != nil {
		op.Status = model.OperationStatusFailed
		op.Error = opErr.Error()
	}

	r.metrics.IncOperation(op.Kind, op.Status)
	if op.Kind == model.OperationKindUploadImage && op.Status == model.OperationStatusSucceeded {
		r.metrics.AddUploadedBytes(op.PayloadSize)
	}

	if err := r.repo.CreateOperation(ctx, op); err != nil {
		r.logger.Warningf("could not journal %s operation: %s", op.Kind, err)
	}

	return op
}
