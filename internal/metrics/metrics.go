package metrics

import (
	"github.com/slok/idev/internal/model"
)

// Recorder knows how to record device operation metrics.
type Recorder interface {
	IncOperation(kind model.OperationKind, status model.OperationStatus)
	AddUploadedBytes(n int64)
}

// Noop is a recorder that doesn't record anything.
var Noop Recorder = noop{}

type noop struct{}

func (noop) IncOperation(model.OperationKind, model.OperationStatus) {}
func (noop) AddUploadedBytes(int64)                                  {}
