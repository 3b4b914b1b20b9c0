// Package export mirrors transaction records into a Google Sheets
// spreadsheet. The mirror is write-only bookkeeping for the user; the
// record store stays the source of truth.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"fintrack/internal/core"
)

// ErrRowNotFound is returned when no mirrored row carries the record id.
var ErrRowNotFound = errors.New("mirrored row not found")

// Mirror is the slice of the exporter the worker drives.
type Mirror interface {
	AppendRecord(ctx context.Context, tx core.Transaction) error
	UpdateRecord(ctx context.Context, tx core.Transaction) error
	DeleteRecord(ctx context.Context, id string) error
}

type SheetsMirror struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ Mirror = (*SheetsMirror)(nil)

// NewFromEnv creates a Sheets mirror from environment variables.
// Required: GOOGLE_SPREADSHEET_ID. Auth comes from
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS. GOOGLE_SHEET_NAME defaults to
// "Transactions".
func NewFromEnv(ctx context.Context) (*SheetsMirror, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	sheetName := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))
	if sheetName == "" {
		sheetName = "Transactions"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &SheetsMirror{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		var err error
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// row layout: A=id, B=date, C=text, D=amount (decimal), E=type, F=category
func recordRow(tx core.Transaction) []any {
	return []any{
		tx.ID,
		tx.Date.String(),
		tx.Text,
		float64(tx.Amount.Cents) / 100.0,
		string(tx.Type),
		string(tx.Category),
	}
}

// AppendRecord adds the record as a new row at the bottom of the sheet.
func (m *SheetsMirror) AppendRecord(ctx context.Context, tx core.Transaction) error {
	rng := fmt.Sprintf("%s!A:F", m.sheetName)
	vr := &gsheet.ValueRange{Values: [][]any{recordRow(tx)}}

	_, err := m.svc.Spreadsheets.Values.Append(m.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append row to %s: %w", m.sheetName, err)
	}

	slog.InfoContext(ctx, "Record mirrored to sheet",
		"record_id", tx.ID,
		"sheet", m.sheetName)
	return nil
}

// UpdateRecord rewrites the row carrying the record's id. A record that
// was never mirrored (for example when the mirror was enabled later) is
// appended instead.
func (m *SheetsMirror) UpdateRecord(ctx context.Context, tx core.Transaction) error {
	rowNum, err := m.findRow(ctx, tx.ID)
	if errors.Is(err, ErrRowNotFound) {
		return m.AppendRecord(ctx, tx)
	}
	if err != nil {
		return err
	}

	rng := fmt.Sprintf("%s!A%d:F%d", m.sheetName, rowNum, rowNum)
	vr := &gsheet.ValueRange{Values: [][]any{recordRow(tx)}}
	_, err = m.svc.Spreadsheets.Values.Update(m.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update row %d in %s: %w", rowNum, m.sheetName, err)
	}
	return nil
}

// DeleteRecord clears the row carrying the record's id. Clearing keeps
// later row numbers stable so concurrent updates cannot hit a shifted
// row. A row that was never mirrored is not an error.
func (m *SheetsMirror) DeleteRecord(ctx context.Context, id string) error {
	rowNum, err := m.findRow(ctx, id)
	if errors.Is(err, ErrRowNotFound) {
		slog.WarnContext(ctx, "Delete for unmirrored record", "record_id", id)
		return nil
	}
	if err != nil {
		return err
	}

	rng := fmt.Sprintf("%s!A%d:F%d", m.sheetName, rowNum, rowNum)
	_, err = m.svc.Spreadsheets.Values.Clear(m.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear row %d in %s: %w", rowNum, m.sheetName, err)
	}
	return nil
}

// findRow scans the id column for the record. Sheet rows are 1-based.
func (m *SheetsMirror) findRow(ctx context.Context, id string) (int, error) {
	rng := fmt.Sprintf("%s!A:A", m.sheetName)
	resp, err := m.svc.Spreadsheets.Values.Get(m.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read id column of %s: %w", m.sheetName, err)
	}
	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		if cell, ok := row[0].(string); ok && cell == id {
			return i + 1, nil
		}
	}
	return 0, ErrRowNotFound
}
