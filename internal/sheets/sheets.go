// Package sheets is the storage sink for candidate records: a Google Sheets
// implementation that falls back to a local CSV backup on its own failures,
// and a standalone CSV implementation for installs without Sheets access.
package sheets

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/hiredeck/applicant-radar/internal/candidate"
)

// Sink stores one candidate record. Implementations are best-effort: a
// returned error means the record was lost everywhere, including backups.
type Sink interface {
	Add(ctx context.Context, rec *candidate.Record) error
}

var headers = []any{
	"Timestamp", "Name", "Email", "Phone", "Position",
	"Score", "Feedback", "Status", "CV Path", "Subject",
}

func row(rec *candidate.Record) []any {
	return []any{
		rec.Timestamp.Format("2006-01-02 15:04:05"),
		rec.Name,
		rec.Email,
		rec.Phone,
		rec.Position,
		rec.Score,
		rec.FeedbackLine(),
		string(rec.Status),
		rec.CVPath,
		rec.Subject,
	}
}

// Config describes the Google Sheets target.
type Config struct {
	CredentialsFile string `mapstructure:"credentials-file"`
	SpreadsheetID   string `mapstructure:"spreadsheet-id"`
	SheetName       string `mapstructure:"sheet-name"`
}

// GoogleSheets appends candidate rows to a spreadsheet. API failures fall
// back to the CSV backup, so a Sheets outage never loses a record.
type GoogleSheets struct {
	svc      *sheetsapi.Service
	cfg      Config
	backup   *CSVStore
	logger   *zap.Logger
	prepared bool
}

// NewGoogleSheets authenticates with the service-account credentials file
// and verifies the target sheet has its header row.
func NewGoogleSheets(ctx context.Context, cfg Config, backup *CSVStore, logger *zap.Logger) (*GoogleSheets, error) {
	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is required")
	}
	if cfg.SheetName == "" {
		cfg.SheetName = "Applications"
	}

	data, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("reading sheets credentials: %w", err)
	}

	creds, err := google.CredentialsFromJSON(ctx, data, sheetsapi.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parsing sheets credentials: %w", err)
	}

	svc, err := sheetsapi.NewService(ctx, option.WithTokenSource(creds.TokenSource))
	if err != nil {
		return nil, fmt.Errorf("building sheets service: %w", err)
	}

	s := &GoogleSheets{svc: svc, cfg: cfg, backup: backup, logger: logger}
	if err := s.ensureHeaders(ctx); err != nil {
		// Header setup failing is not fatal: Add falls back to CSV.
		logger.Warn("setting up sheet headers", zap.Error(err))
	}

	return s, nil
}

func (s *GoogleSheets) ensureHeaders(ctx context.Context) error {
	if s.prepared {
		return nil
	}

	headerRange := fmt.Sprintf("%s!A1:J1", s.cfg.SheetName)
	resp, err := s.svc.Spreadsheets.Values.Get(s.cfg.SpreadsheetID, headerRange).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("checking sheet headers: %w", err)
	}

	if len(resp.Values) == 0 {
		_, err = s.svc.Spreadsheets.Values.
			Update(s.cfg.SpreadsheetID, headerRange, &sheetsapi.ValueRange{Values: [][]any{headers}}).
			ValueInputOption("RAW").
			Context(ctx).
			Do()
		if err != nil {
			return fmt.Errorf("writing sheet headers: %w", err)
		}
		s.logger.Info("sheet headers created", zap.String("sheet", s.cfg.SheetName))
	}

	s.prepared = true
	return nil
}

// Add appends the record to the spreadsheet, falling back to the CSV backup
// when the API call fails.
func (s *GoogleSheets) Add(ctx context.Context, rec *candidate.Record) error {
	if err := s.ensureHeaders(ctx); err == nil {
		appendRange := fmt.Sprintf("%s!A:J", s.cfg.SheetName)
		_, err := s.svc.Spreadsheets.Values.
			Append(s.cfg.SpreadsheetID, appendRange, &sheetsapi.ValueRange{Values: [][]any{row(rec)}}).
			ValueInputOption("RAW").
			InsertDataOption("INSERT_ROWS").
			Context(ctx).
			Do()
		if err == nil {
			s.logger.Info("candidate stored in sheet", zap.String("name", rec.Name))
			return nil
		}
		s.logger.Error("appending to sheet", zap.Error(err))
	}

	if s.backup == nil {
		return fmt.Errorf("sheet append failed and no csv backup configured")
	}

	s.logger.Warn("falling back to csv backup", zap.String("name", rec.Name))
	return s.backup.Add(ctx, rec)
}
