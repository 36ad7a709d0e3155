package conventions

import "path/filepath"

const (
	// DefaultDataDir is the default idev data directory name (relative to home).
	DefaultDataDir = ".idev"
	// DBFile is the journal database filename inside the data directory.
	DBFile = "idev.db"
	// MetricsFile is the metrics textfile name inside the data directory.
	MetricsFile = "metrics.prom"

	// SignatureSuffix is appended to an image path to find its signature when
	// no signature path is given.
	SignatureSuffix = ".signature"
)

// DBPath returns the journal database path inside a data directory.
func DBPath(dataDir string) string {
	return filepath.Join(dataDir, DBFile)
}

// MetricsPath returns the metrics textfile path inside a data directory.
func MetricsPath(dataDir string) string {
	return filepath.Join(dataDir, MetricsFile)
}

// SignaturePath returns the default signature path of an image.
func SignaturePath(imagePath string) string {
	return imagePath + SignatureSuffix
}
