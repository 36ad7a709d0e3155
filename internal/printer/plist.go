package printer

import (
	"io"
	"time"

	"howett.net/plist"

	"github.com/slok/idev/internal/model"
)

// PlistPrinter prints device information as XML property lists, the format
// devices use natively.
type PlistPrinter struct {
	writer io.Writer
}

// NewPlistPrinter creates a new plist printer.
func NewPlistPrinter(w io.Writer) *PlistPrinter {
	return &PlistPrinter{writer: w}
}

type plistOperation struct {
	ID            string    `plist:"ID"`
	DeviceUDID    string    `plist:"DeviceUDID"`
	Kind          string    `plist:"Kind"`
	Target        string    `plist:"Target"`
	PayloadDigest string    `plist:"PayloadDigest,omitempty"`
	PayloadSize   int64     `plist:"PayloadSize,omitempty"`
	Status        string    `plist:"Status"`
	Error         string    `plist:"Error,omitempty"`
	CreatedAt     time.Time `plist:"CreatedAt"`
}

type plistMessage struct {
	Message string `plist:"Message"`
}

func (p *PlistPrinter) PrintDevices(udids []string) error {
	if udids == nil {
		udids = []string{}
	}
	return p.encode(udids)
}

func (p *PlistPrinter) PrintValue(v any) error { return p.encode(v) }

func (p *PlistPrinter) PrintService(svc Service) error { return p.encode(svc) }

func (p *PlistPrinter) PrintMountedImages(images MountedImages) error {
	if images.Signatures == nil {
		images.Signatures = [][]byte{}
	}
	return p.encode(images)
}

func (p *PlistPrinter) PrintOperations(ops []model.Operation) error {
	items := make([]plistOperation, len(ops))
	for i, op := range ops {
		items[i] = plistOperation{
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

	return p.encode(items)
}

func (p *PlistPrinter) PrintMessage(msg string) error {
	return p.encode(plistMessage{Message: msg})
}

func (p *PlistPrinter) encode(v any) error {
	enc := plist.NewEncoderForFormat(p.writer, plist.XMLFormat)
	enc.Indent("\t")
	if err := enc.Encode(v); err != nil {
		return err
	}
	_, err := io.WriteString(p.writer, "\n")
	return err
}

var (
	_ Printer = &TablePrinter{}
	_ Printer = &JSONPrinter{}
	_ Printer = &PlistPrinter{}
)
