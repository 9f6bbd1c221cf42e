// ABOUTME: Ingests decoder output files into a store, one batch per file.
// ABOUTME: A file either applies fully or not at all; re-runs are idempotent.
package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"

	"github.com/klmckay/healthdb/internal/models"
)

// Store is the subset of the entity store ingestion needs.
type Store interface {
	UpsertBatch(recs []models.FieldRecord) ([]error, error)
}

// Result summarizes one import run.
type Result struct {
	Batch   uuid.UUID
	Files   int
	Records int
	// RecordErrors holds per-record rejections (constraint violations,
	// invalid records). The surrounding batches still committed.
	RecordErrors []error
	// FileErrors holds whole-file failures; those files applied nothing.
	FileErrors []error
}

// Importer drives normalized-record files into a store.
type Importer struct {
	store Store
}

// New returns an Importer writing to store.
func New(store Store) *Importer {
	return &Importer{store: store}
}

// ImportFiles processes each file as one atomic batch. A failed file is
// recorded and skipped; the remaining files still import. Re-processing a
// file that partially overlaps an earlier download converges to one row per
// real-world event.
func (im *Importer) ImportFiles(paths []string, showProgress bool) (*Result, error) {
	res := &Result{Batch: uuid.New()}

	var bar *progressbar.ProgressBar
	if showProgress {
		bar = progressbar.NewOptions(len(paths),
			progressbar.OptionSetDescription("Importing"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("files"),
			progressbar.OptionThrottle(200*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)
	}

	for _, path := range paths {
		n, recErrs, err := im.importFile(path)
		if err != nil {
			res.FileErrors = append(res.FileErrors, fmt.Errorf("%s: %w", path, err))
		} else {
			res.Files++
			res.Records += n
			res.RecordErrors = append(res.RecordErrors, recErrs...)
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	return res, nil
}

// importFile decodes one normalized-record file and applies it in a single
// transaction.
func (im *Importer) importFile(path string) (int, []error, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, nil, fmt.Errorf("read: %w", err)
	}
	var recs []models.FieldRecord
	if err := json.Unmarshal(data, &recs); err != nil {
		return 0, nil, fmt.Errorf("decode: %w", err)
	}
	recErrs, err := im.store.UpsertBatch(recs)
	if err != nil {
		return 0, nil, err
	}
	return len(recs) - len(recErrs), recErrs, nil
}
