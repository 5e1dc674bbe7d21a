// Package reports writes timestamped JSON report files.
//
// Filenames follow {prefix}-{YYYYMMDD-HHMMSS}.json, in UTC, so repeated
// lookups of the same wallet sort chronologically.
package reports

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const timestampLayout = "20060102-150405"

// WriteJSON pretty-prints data into a new file under dir, creating dir if
// needed, and returns the file's path.
func WriteJSON(dir, prefix string, data any, now time.Time) (string, error) {
	if dir == "" {
		dir = "reports"
	}
	if prefix == "" {
		prefix = "report"
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create reports directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s-%s.json", prefix, now.UTC().Format(timestampLayout)))

	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal JSON: %w", err)
	}
	b = append(b, '\n')

	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}
