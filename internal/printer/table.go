package printer

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/slok/idev/internal/model"
)

// TablePrinter prints device information in a human friendly format.
type TablePrinter struct {
	writer io.Writer
}

// NewTablePrinter creates a new table printer.
func NewTablePrinter(w io.Writer) *TablePrinter {
	return &TablePrinter{writer: w}
}

// PrintDevices prints one UDID per line.
func (t *TablePrinter) PrintDevices(udids []string) error {
	for _, u := range udids {
		fmt.Fprintln(t.writer, u)
	}
	return nil
}

// PrintValue prints a lockdown value, dictionaries as sorted key value lines.
func (t *TablePrinter) PrintValue(v any) error {
	writeValue(t.writer, v, 0)
	return nil
}

func writeValue(w io.Writer, v any, depth int) {
	indent := strings.Repeat("  ", depth)

	switch v := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			switch v[k].(type) {
			case map[string]any, []any:
				fmt.Fprintf(w, "%s%s:\n", indent, k)
				writeValue(w, v[k], depth+1)
			default:
				fmt.Fprintf(w, "%s%s: %s\n", indent, k, scalar(v[k]))
			}
		}
	case []any:
		for _, e := range v {
			switch e.(type) {
			case map[string]any, []any:
				fmt.Fprintf(w, "%s-\n", indent)
				writeValue(w, e, depth+1)
			default:
				fmt.Fprintf(w, "%s- %s\n", indent, scalar(e))
			}
		}
	default:
		fmt.Fprintf(w, "%s%s\n", indent, scalar(v))
	}
}

func scalar(v any) string {
	if b, ok := v.([]byte); ok {
		return FormatSignature(b)
	}
	return fmt.Sprint(v)
}

// PrintService prints a started service.
func (t *TablePrinter) PrintService(svc Service) error {
	fmt.Fprintf(t.writer, "Device:     %s\n", svc.UDID)
	fmt.Fprintf(t.writer, "Service:    %s\n", svc.Identifier)
	fmt.Fprintf(t.writer, "Port:       %d\n", svc.Port)
	fmt.Fprintf(t.writer, "SSL:        %t\n", svc.SSLEnabled)
	return nil
}

// PrintMountedImages prints the signatures of the mounted images.
func (t *TablePrinter) PrintMountedImages(images MountedImages) error {
	if len(images.Signatures) == 0 {
		fmt.Fprintf(t.writer, "No %s image mounted on %s\n", images.ImageType, images.UDID)
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "DEVICE\tTYPE\tSIGNATURE")
	for _, sig := range images.Signatures {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", images.UDID, images.ImageType, FormatSignature(sig))
	}

	return nil
}

// PrintOperations prints journaled operations in a table format.
func (t *TablePrinter) PrintOperations(ops []model.Operation) error {
	if len(ops) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "ID\tDEVICE\tKIND\tTARGET\tSIZE\tSTATUS\tCREATED")
	for _, op := range ops {
		size := "-"
		if op.PayloadSize > 0 {
			size = FormatBytes(op.PayloadSize)
		}
		status := string(op.Status)
		if op.Error != "" {
			status = fmt.Sprintf("%s (%s)", op.Status, op.Error)
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			op.ID,
			op.DeviceUDID,
			op.Kind,
			op.Target,
			size,
			status,
			TimeAgo(op.CreatedAt),
		)
	}

	return nil
}

// PrintMessage prints a simple text message.
func (t *TablePrinter) PrintMessage(msg string) error {
	fmt.Fprintln(t.writer, msg)
	return nil
}
