package reporting

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jconnelly/underwriting-ai-agent-demos/internal/models"
	"github.com/klauspost/compress/gzip"
)

// GzipSuffix selects compressed output in Export and ExportResultLog.
const GzipSuffix = ".gz"

// ResultLog is the raw dump of every configuration and result of a run.
type ResultLog struct {
	TestConfigurations map[string]models.TestConfiguration `json:"test_configurations"`
	TestResults        []*models.EvaluationResult          `json:"test_results"`
	ExportTimestamp    time.Time                           `json:"export_timestamp"`
}

// Export writes r as indented JSON to path, gzip-compressed when path ends
// in .gz. Parent directories are created.
func Export(path string, r *Report) error {
	return writeJSON(path, r)
}

// Load reads a report written by Export.
func Load(path string) (*Report, error) {
	var r Report
	if err := readJSON(path, &r); err != nil {
		return nil, err
	}
	if r.TestResults == nil {
		r.TestResults = map[string]*ComparisonReport{}
	}
	return &r, nil
}

// ExportResultLog writes configs and results to path, gzip-compressed when
// path ends in .gz.
func ExportResultLog(path string, configs []models.TestConfiguration, results []*models.EvaluationResult, now time.Time) error {
	byID := make(map[string]models.TestConfiguration, len(configs))
	for _, c := range configs {
		byID[c.ID] = c
	}
	if results == nil {
		results = []*models.EvaluationResult{}
	}
	return writeJSON(path, &ResultLog{
		TestConfigurations: byID,
		TestResults:        results,
		ExportTimestamp:    now,
	})
}

// LoadResultLog reads a file written by ExportResultLog.
func LoadResultLog(path string) (*ResultLog, error) {
	var l ResultLog
	if err := readJSON(path, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

func writeJSON(path string, v any) (err error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", path, err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory for %s: %w", path, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()

	var w io.Writer = f
	if strings.HasSuffix(path, GzipSuffix) {
		zw := gzip.NewWriter(f)
		defer func() {
			if cerr := zw.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("compressing %s: %w", path, cerr)
			}
		}()
		w = zw
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func readJSON(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, GzipSuffix) {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("decompressing %s: %w", path, err)
		}
		defer zr.Close()
		r = zr
	}

	if err := json.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}
