package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"

	"github.com/nagavaishak/Celsius/internal/domain"
)

// RunArchiver implements domain.Archiver: it uploads a finalized run's full
// record log (JSONL) and its verdict (JSON) under a per-run prefix. The
// archive is an immutable audit trail; nothing here deletes or rewrites.
type RunArchiver struct {
	writer domain.BlobWriter
	prefix string
}

// NewRunArchiver creates a RunArchiver writing under the given key prefix,
// e.g. "validations".
func NewRunArchiver(writer domain.BlobWriter, prefix string) *RunArchiver {
	if prefix == "" {
		prefix = "validations"
	}
	return &RunArchiver{writer: writer, prefix: prefix}
}

// ArchiveRun uploads observations.jsonl and verdict.json for the run.
func (a *RunArchiver) ArchiveRun(ctx context.Context, runID string, records []domain.ObservationRecord, report domain.VerdictReport) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i := range records {
		if err := enc.Encode(&records[i]); err != nil {
			return fmt.Errorf("s3blob: encode record %d: %w", i, err)
		}
	}
	key := path.Join(a.prefix, runID, "observations.jsonl")
	if err := a.writer.Put(ctx, key, &buf, "application/x-ndjson"); err != nil {
		return fmt.Errorf("s3blob: archive records for run %s: %w", runID, err)
	}

	verdict, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("s3blob: encode verdict: %w", err)
	}
	key = path.Join(a.prefix, runID, "verdict.json")
	if err := a.writer.Put(ctx, key, bytes.NewReader(verdict), "application/json"); err != nil {
		return fmt.Errorf("s3blob: archive verdict for run %s: %w", runID, err)
	}
	return nil
}
