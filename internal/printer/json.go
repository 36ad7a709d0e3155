package printer

import (
	"encoding/json"
	"io"
	"time"

	"github.com/slok/idev/internal/model"
)

// JSONPrinter prints device information in JSON format.
type JSONPrinter struct {
	writer io.Writer
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

// operationOutput represents a journaled operation.
type operationOutput struct {
	ID            string    `json:"id"`
	DeviceUDID    string    `json:"device_udid"`
	Kind          string    `json:"kind"`
	Target        string    `json:"target"`
	PayloadDigest string    `json:"payload_digest,omitempty"`
	PayloadSize   int64     `json:"payload_size,omitempty"`
	Status        string    `json:"status"`
	Error         string    `json:"error,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// messageOutput represents a simple message output.
type messageOutput struct {
	Message string `json:"message"`
}

// PrintDevices prints the UDIDs as a JSON array.
func (j *JSONPrinter) PrintDevices(udids []string) error {
	if udids == nil {
		udids = []string{}
	}
	return j.encode(udids)
}

// PrintValue prints a lockdown value. Data values are base64 encoded.
func (j *JSONPrinter) PrintValue(v any) error { return j.encode(v) }

// PrintService prints a started service.
func (j *JSONPrinter) PrintService(svc Service) error { return j.encode(svc) }

// PrintMountedImages prints the mounted images, signatures are base64 encoded.
func (j *JSONPrinter) PrintMountedImages(images MountedImages) error {
	if images.Signatures == nil {
		images.Signatures = [][]byte{}
	}
	return j.encode(images)
}

// PrintOperations prints journaled operations.
func (j *JSONPrinter) PrintOperations(ops []model.Operation) error {
	items := make([]operationOutput, len(ops))
	for i, op := range ops {
		items[i] = operationOutput{
			ID:            op.ID,
			DeviceUDID:    op.DeviceUDID,
			Kind:          string(op.Kind),
			Target:        op.Target,
			PayloadDigest: op.PayloadDigest,
			PayloadSize:   op.PayloadSize,
			Status:        string(op.Status),
			Error:         op.Error,
			CreatedAt:     op.CreatedAt.UTC(),
		}
	}

	return j.encode(items)
}

// PrintMessage prints a simple message in JSON format.
func (j *JSONPrinter) PrintMessage(msg string) error {
	return j.encode(messageOutput{Message: msg})
}

func (j *JSONPrinter) encode(v any) error {
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
