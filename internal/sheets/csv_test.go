package sheets

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hiredeck/applicant-radar/internal/candidate"
	"github.com/hiredeck/applicant-radar/internal/scoring"
)

func sampleRecord() *candidate.Record {
	return &candidate.Record{
		Timestamp: time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC),
		Name:      "Jane Doe",
		Email:     "jane@example.com",
		Phone:     "+1 555-123-4567",
		Position:  "Backend Engineer",
		Subject:   "Application for Backend Engineer",
		Score:     8,
		Feedback:  []string{"Required Skills: 2/2 matched", "Experience: 5 years (meets requirement)"},
		Status:    scoring.StatusPassed,
		CVPath:    "cv_cache/Jane_Doe_CV.pdf",
	}
}

func TestCSVStoreAdd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "applications_backup.csv")
	store := NewCSVStore(path, zap.NewNop())

	if err := store.Add(context.Background(), sampleRecord()); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if err := store.Add(context.Background(), sampleRecord()); err != nil {
		t.Fatalf("second add: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening csv: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading csv: %v", err)
	}

	// Header once, then one row per add.
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0][0] != "Timestamp" || rows[0][9] != "Subject" {
		t.Fatalf("unexpected header row: %v", rows[0])
	}

	got := rows[1]
	if got[1] != "Jane Doe" || got[2] != "jane@example.com" || got[5] != "8" {
		t.Fatalf("unexpected data row: %v", got)
	}
	if got[6] != "Required Skills: 2/2 matched; Experience: 5 years (meets requirement)" {
		t.Fatalf("feedback cell = %q", got[6])
	}
	if got[7] != "Passed" {
		t.Fatalf("status cell = %q", got[7])
	}
}
