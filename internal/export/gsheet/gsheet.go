package gsheet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"factoring/internal/amqp"
	ports "factoring/internal/export"

	goption "google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"
)

// Client appends audit events as rows to a Google Sheets audit trail.
type Client struct {
	svc           *sheets.Service
	spreadsheetID string
	sheetName     string
}

var _ ports.AuditAppender = (*Client)(nil)

// NewFromEnv creates a Sheets client using environment variables.
// Required: AUDIT_SPREADSHEET_ID
// Optional: AUDIT_SHEET_NAME (default "Audit")
// Auth: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("AUDIT_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing AUDIT_SPREADSHEET_ID")
	}

	sheetName := strings.TrimSpace(os.Getenv("AUDIT_SHEET_NAME"))
	if sheetName == "" {
		sheetName = "Audit"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context) (*sheets.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))

	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := sheets.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(sheets.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return service, nil
}

// Append writes one audit event as a row and returns its range reference.
func (c *Client) Append(ctx context.Context, event *amqp.AuditEvent) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	// Find the next empty row from the current sheet dimensions.
	rng := fmt.Sprintf("%s!A:A", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("get sheet dimensions for %s: %w", c.sheetName, err)
	}
	nextRow := len(resp.Values) + 1

	row := eventRow(event)
	dataRange := fmt.Sprintf("%s!A%d:G%d", c.sheetName, nextRow, nextRow)
	vr := &sheets.ValueRange{Values: [][]any{row}}

	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("update %s: %w", dataRange, err)
	}

	slog.DebugContext(ctx, "Appended audit event to sheet",
		"sheet", c.sheetName,
		"row", nextRow,
		"event", event.Event)

	return dataRange, nil
}

// eventRow flattens an audit event into the trail's column layout:
// Timestamp, Event, BatchSize, Inserted, Skipped, Currencies, Count.
func eventRow(event *amqp.AuditEvent) []any {
	currencies := ""
	if event.FromCurrency != "" || event.ToCurrency != "" {
		currencies = fmt.Sprintf("%s->%s", event.FromCurrency, event.ToCurrency)
	}
	return []any{
		event.Timestamp.Format("2006-01-02 15:04:05"),
		event.Event,
		event.BatchSize,
		event.Inserted,
		event.DuplicatesSkipped,
		currencies,
		event.Count,
	}
}
