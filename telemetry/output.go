package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/pthm-cable/liquid/config"
)

// csvFile is an append-only CSV table whose header is written with the
// first batch of rows.
type csvFile struct {
	name   string
	f      *os.File
	header bool
}

func createCSV(dir, name string) (*csvFile, error) {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", name, err)
	}
	return &csvFile{name: name, f: f}, nil
}

// append marshals rows, a slice of gocsv-tagged structs.
func (c *csvFile) append(rows any) error {
	var err error
	if c.header {
		err = gocsv.MarshalWithoutHeaders(rows, c.f)
	} else if err = gocsv.Marshal(rows, c.f); err == nil {
		c.header = true
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", c.name, err)
	}
	return nil
}

// OutputManager writes a run directory: telemetry.csv with one row per
// stats window, perf.csv with the phase timings of the same windows and
// config.yaml with the configuration the run started from.
type OutputManager struct {
	dir       string
	telemetry *csvFile
	perf      *csvFile
}

// NewOutputManager creates dir and its CSV files. It returns nil when dir
// is empty; every method is a no-op on a nil manager.
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	var err error
	if om.telemetry, err = createCSV(dir, "telemetry.csv"); err != nil {
		return nil, err
	}
	if om.perf, err = createCSV(dir, "perf.csv"); err != nil {
		om.telemetry.f.Close()
		return nil, err
	}
	return om, nil
}

// WriteConfig saves cfg as config.yaml.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteWindow appends the stats of one window and the phase timings
// measured up to its end.
func (om *OutputManager) WriteWindow(stats WindowStats, perf PerfStats) error {
	if om == nil {
		return nil
	}
	if err := om.telemetry.append([]WindowStats{stats}); err != nil {
		return err
	}
	return om.perf.append([]PerfStatsCSV{perf.ToCSV(stats.WindowEndStep)})
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close closes both CSV files and returns the first error.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	var firstErr error
	for _, c := range []*csvFile{om.telemetry, om.perf} {
		if err := c.f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
