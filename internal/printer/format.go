package printer

import (
	"encoding/hex"
	"fmt"
	"time"
)

// FormatBytes returns a human-readable byte size string.
// Examples: "0 B", "512 B", "1.5 KB", "700.0 MB", "10.0 GB".
func FormatBytes(bytes int64) string {
	if bytes < 1024 {
		return fmt.Sprintf("%d B", max(bytes, 0))
	}

	units := []string{"KB", "MB", "GB", "TB"}
	v := float64(bytes) / 1024
	i := 0
	for v >= 1024 && i < len(units)-1 {
		v /= 1024
		i++
	}

	return fmt.Sprintf("%.1f %s", v, units[i])
}

var agoUnits = []struct {
	name string
	size time.Duration
}{
	{name: "day", size: 24 * time.Hour},
	{name: "hour", size: time.Hour},
	{name: "minute", size: time.Minute},
	{name: "second", size: time.Second},
}

// TimeAgo returns a human-readable relative time string in UTC.
// Examples: "5 seconds ago (UTC)", "2 minutes ago (UTC)", "3 hours ago (UTC)".
func TimeAgo(t time.Time) string {
	diff := time.Now().UTC().Sub(t.UTC())
	if diff < 0 {
		return "in the future (UTC)"
	}

	for _, u := range agoUnits {
		n := int(diff / u.size)
		if n == 0 && u.size != time.Second {
			continue
		}
		if n == 1 {
			return fmt.Sprintf("1 %s ago (UTC)", u.name)
		}
		return fmt.Sprintf("%d %ss ago (UTC)", n, u.name)
	}

	return "0 seconds ago (UTC)"
}

// FormatTimestamp returns a formatted timestamp string in UTC.
// Format: "2006-01-02 15:04:05 UTC".
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05 UTC")
}

// FormatSignature returns a shortened hex representation of an image signature.
func FormatSignature(sig []byte) string {
	const short = 8
	if len(sig) <= short {
		return hex.EncodeToString(sig)
	}
	return hex.EncodeToString(sig[:short]) + "..."
}
