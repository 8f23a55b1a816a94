package store

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nvandessel/resonance/internal/sanitize"
)

// ExportJSONL writes every record in s, oldest first, one JSON object per line.
// Returns the number of records written.
func ExportJSONL(ctx context.Context, s ResultStore, w io.Writer) (int, error) {
	records, err := s.List(ctx, Filter{})
	if err != nil {
		return 0, err
	}

	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	n := 0
	for i := len(records) - 1; i >= 0; i-- {
		if err := enc.Encode(records[i]); err != nil {
			return n, fmt.Errorf("failed to encode record %s: %w", records[i].ID, err)
		}
		n++
	}
	if err := bw.Flush(); err != nil {
		return n, fmt.Errorf("failed to flush export: %w", err)
	}
	return n, nil
}

// ExportJSONLFile writes the export to path, replacing any existing file and
// creating missing parent directories.
func ExportJSONLFile(ctx context.Context, s ResultStore, path string) (int, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return 0, fmt.Errorf("failed to create export directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create export file: %w", err)
	}
	n, err := ExportJSONL(ctx, s, f)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("failed to close export file: %w", cerr)
	}
	return n, err
}

// ImportJSONL reads records from r into s. Lines that fail to parse or hold
// an invalid record are skipped and counted. Lines have no length limit, so
// full trajectories round-trip. Returns (imported, skipped).
func ImportJSONL(ctx context.Context, s ResultStore, r io.Reader) (int, int, error) {
	reader := bufio.NewReader(r)

	imported, skipped := 0, 0
	for {
		line, readErr := reader.ReadBytes('\n')
		if readErr != nil && readErr != io.EOF {
			return imported, skipped, fmt.Errorf("reading import: %w", readErr)
		}

		if line = bytes.TrimSpace(line); len(line) > 0 {
			var rec Record
			if err := json.Unmarshal(line, &rec); err != nil {
				skipped++
			} else if _, err := prepare(rec); err != nil {
				skipped++
			} else {
				rec.Summary = sanitize.Summary(rec.Summary)
				if _, err := s.Save(ctx, rec); err != nil {
					return imported, skipped, fmt.Errorf("failed to import record %s: %w", rec.ID, err)
				}
				imported++
			}
		}

		if readErr == io.EOF {
			return imported, skipped, nil
		}
	}
}
