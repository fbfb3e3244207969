package sheets

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/hiredeck/applicant-radar/internal/candidate"
)

// CSVStore appends candidate records to a local CSV file. It doubles as the
// durable backup behind the Google Sheets sink and as the primary store when
// Sheets is disabled.
type CSVStore struct {
	path   string
	logger *zap.Logger
}

func NewCSVStore(path string, logger *zap.Logger) *CSVStore {
	return &CSVStore{path: path, logger: logger}
}

// Add writes one record, creating the file with its header row on first use.
func (c *CSVStore) Add(_ context.Context, rec *candidate.Record) error {
	_, statErr := os.Stat(c.path)
	isNew := os.IsNotExist(statErr)

	f, err := os.OpenFile(c.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening csv store: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	if isNew {
		if err := w.Write(stringRow(headers)); err != nil {
			return fmt.Errorf("writing csv headers: %w", err)
		}
	}

	if err := w.Write(stringRow(row(rec))); err != nil {
		return fmt.Errorf("writing csv row: %w", err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing csv store: %w", err)
	}

	c.logger.Info("candidate stored in csv", zap.String("name", rec.Name), zap.String("file", c.path))
	return nil
}

func stringRow(cells []any) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = fmt.Sprint(c)
	}
	return out
}
