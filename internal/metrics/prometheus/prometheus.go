package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/slok/idev/internal/metrics"
	"github.com/slok/idev/internal/model"
)

const namespace = "idev"

// Recorder is a Prometheus backed metrics.Recorder.
type Recorder struct {
	operations    *prometheus.CounterVec
	uploadedBytes prometheus.Counter
}

// NewRecorder creates a new Prometheus recorder and registers its metrics on reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Total device operations by kind and status.",
			},
			[]string{"kind", "status"},
		),
		uploadedBytes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "uploaded_image_bytes_total",
				Help:      "Total disk image bytes uploaded to devices.",
			},
		),
	}

	reg.MustRegister(r.operations, r.uploadedBytes)

	return r
}

func (r *Recorder) IncOperation(kind model.OperationKind, status model.OperationStatus) {
	r.operations.WithLabelValues(string(kind), string(status)).Inc()
}

func (r *Recorder) AddUploadedBytes(n int64) {
	if n > 0 {
		r.uploadedBytes.Add(float64(n))
	}
}

var _ metrics.Recorder = &Recorder{}
