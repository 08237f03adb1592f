package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"cobranca/internal/core"
	ports "cobranca/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	reportSheet   string
	summarySheet  string
}

// Ensure interface conformance
var _ ports.ReportWriter = (*Client)(nil)

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID.
// Credentials: GOOGLE_CREDENTIALS_JSON, GOOGLE_CREDENTIALS_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
// Sheet names: GOOGLE_SHEET_NAME (default "Debts"),
// GOOGLE_SUMMARY_SHEET_NAME (default "Summary").
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	reportSheet := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))
	if reportSheet == "" {
		reportSheet = "Debts"
	}
	summarySheet := strings.TrimSpace(os.Getenv("GOOGLE_SUMMARY_SHEET_NAME"))
	if summarySheet == "" {
		summarySheet = "Summary"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		reportSheet:   reportSheet,
		summarySheet:  summarySheet,
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	credentialsJSON := strings.TrimSpace(os.Getenv("GOOGLE_CREDENTIALS_JSON"))
	credentialsFile := strings.TrimSpace(os.Getenv("GOOGLE_CREDENTIALS_FILE"))
	if credentialsJSON == "" && credentialsFile == "" {
		credentialsFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentials []byte
	var err error

	switch {
	case credentialsJSON != "":
		credentials = []byte(credentialsJSON)
	case credentialsFile != "":
		credentials, err = os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read credentials file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_CREDENTIALS_JSON, GOOGLE_CREDENTIALS_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentials),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created")
	return service, nil
}

// WriteDebtReport replaces the debt report sheet with one header row plus one
// row per rollup. Amounts are written as decimal values; the sheet does the
// currency formatting.
func (c *Client) WriteDebtReport(ctx context.Context, asOf core.Date, rows []core.ClientDebt) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	values := make([][]any, 0, len(rows)+1)
	values = append(values, []any{"As of", asOf.String(), "", "", ""})
	values = append(values, []any{"Client", "Contract", "Total debt", "Overdue", "Oldest overdue"})
	for _, r := range rows {
		values = append(values, []any{
			r.Client.Name,
			r.Contract.Description,
			r.TotalDebt.Reais(),
			r.OverdueCount,
			r.OldestOverdue.String(),
		})
	}

	ref, err := c.replaceSheet(ctx, c.reportSheet, values)
	if err != nil {
		return "", fmt.Errorf("write debt report: %w", err)
	}
	return ref, nil
}

// WriteStatusSummary replaces the summary sheet with the status cross-tab.
func (c *Client) WriteStatusSummary(ctx context.Context, asOf core.Date, buckets []core.StatusBucket) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	values := make([][]any, 0, len(buckets)+2)
	values = append(values, []any{"As of", asOf.String(), "", ""})
	values = append(values, []any{"Status", "Count", "Total value", "Avg days overdue"})
	for _, b := range buckets {
		values = append(values, []any{
			string(b.Status),
			b.Count,
			b.TotalValue.Reais(),
			b.AvgDaysOverdue,
		})
	}

	ref, err := c.replaceSheet(ctx, c.summarySheet, values)
	if err != nil {
		return "", fmt.Errorf("write status summary: %w", err)
	}
	return ref, nil
}

func (c *Client) replaceSheet(ctx context.Context, sheetName string, values [][]any) (string, error) {
	clearRange := fmt.Sprintf("%s!A:Z", sheetName)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return "", fmt.Errorf("clear %s: %w", clearRange, err)
	}

	writeRange := fmt.Sprintf("%s!A1", sheetName)
	vr := &gsheet.ValueRange{Values: values}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, writeRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do(); err != nil {
		return "", fmt.Errorf("update %s: %w", writeRange, err)
	}

	return fmt.Sprintf("%s!A1:E%d", sheetName, len(values)), nil
}
