// Package sheets exports built statements to a Google spreadsheet, one
// row per line item plus a summary block. It is the delivery surface the
// statement worker uses for clients who receive their ledgers as shared
// spreadsheets.
package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"hoaledger/internal/core"
	"hoaledger/internal/log"
)

const defaultSheetName = "Statements"

type Exporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// New creates an Exporter writing to the named sheet of spreadsheetID.
// An empty sheetName falls back to "Statements". Credentials come from
// the environment: an OAuth client plus the token saved by oauth-init
// (GOOGLE_OAUTH_CLIENT_JSON/GOOGLE_OAUTH_CLIENT_FILE with
// GOOGLE_OAUTH_TOKEN_JSON/GOOGLE_OAUTH_TOKEN_FILE), or a service account
// (GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS).
func New(ctx context.Context, spreadsheetID, sheetName string) (*Exporter, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}

	sheetName = strings.TrimSpace(sheetName)
	if sheetName == "" {
		sheetName = defaultSheetName
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Exporter{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// newSheetsService initializes a Sheets Service. An OAuth client in the
// environment selects the OAuth path and then requires a saved token;
// otherwise Service Account credentials are used.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	clientJSON, err := readCredential("GOOGLE_OAUTH_CLIENT_JSON", "GOOGLE_OAUTH_CLIENT_FILE")
	if err != nil {
		return nil, err
	}
	if clientJSON != nil {
		return newOAuthService(ctx, clientJSON)
	}
	return newServiceAccountService(ctx)
}

// newOAuthService builds a Sheets Service from an OAuth client and the
// refresh token written by oauth-init.
func newOAuthService(ctx context.Context, clientJSON []byte) (*gsheet.Service, error) {
	tokenJSON, err := readCredential("GOOGLE_OAUTH_TOKEN_JSON", "GOOGLE_OAUTH_TOKEN_FILE")
	if err != nil {
		return nil, err
	}
	if tokenJSON == nil {
		return nil, errors.New("missing oauth token (set GOOGLE_OAUTH_TOKEN_JSON or GOOGLE_OAUTH_TOKEN_FILE)")
	}

	cfg, err := google.ConfigFromJSON(clientJSON, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse oauth client: %w", err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(tokenJSON, &token); err != nil {
		return nil, fmt.Errorf("parse oauth token: %w", err)
	}

	service, err := gsheet.NewService(ctx, goption.WithHTTPClient(cfg.Client(ctx, &token)))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func newServiceAccountService(ctx context.Context) (*gsheet.Service, error) {
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
		return nil, errors.New("missing credentials (set GOOGLE_OAUTH_CLIENT_JSON, GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// readCredential returns the credential from the JSON env var, or the
// contents of the file named by the file env var, or nil when neither is
// set.
func readCredential(jsonVar, fileVar string) ([]byte, error) {
	if v := strings.TrimSpace(os.Getenv(jsonVar)); v != "" {
		return []byte(v), nil
	}
	if path := strings.TrimSpace(os.Getenv(fileVar)); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", fileVar, err)
		}
		return data, nil
	}
	return nil, nil
}

// ExportStatement appends the ledger to the configured sheet: a title
// row, a header, one row per line item, and a summary block.
func (e *Exporter) ExportStatement(ctx context.Context, clientID, unitID string, ledger *core.StatementLedger) error {
	values := statementRows(clientID, unitID, ledger)

	vr := &gsheet.ValueRange{Values: values}
	_, err := e.svc.Spreadsheets.Values.
		Append(e.spreadsheetID, e.sheetName+"!A1", vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append statement rows: %w", err)
	}

	slog.InfoContext(ctx, "Exported statement to Google Sheets",
		log.FieldClientID, clientID,
		log.FieldUnitID, unitID,
		"sheet", e.sheetName,
		"rows", len(values))
	return nil
}

func statementRows(clientID, unitID string, ledger *core.StatementLedger) [][]interface{} {
	values := [][]interface{}{
		{fmt.Sprintf("Statement for %s / %s", clientID, unitID)},
		{"Date", "Description", "Category", "Charges", "Penalties", "Payments", "Balance"},
	}

	for _, item := range ledger.LineItems {
		values = append(values, []interface{}{
			item.Date.Format(core.DateLayout),
			item.Description,
			item.Category.String(),
			item.Amount.Major(),
			item.Penalty.Major(),
			item.PaymentsApplied.Major(),
			item.Balance.Major(),
		})
	}

	s := ledger.Summary
	values = append(values,
		[]interface{}{},
		[]interface{}{"Dues balance", ledger.DuesSubtotal.RunningBalance.Major()},
		[]interface{}{"Utility balance", ledger.UtilitySubtotal.RunningBalance.Major()},
		[]interface{}{"Past due", s.PastDue.Count, s.PastDue.Total.Major()},
		[]interface{}{"Coming due", s.ComingDue.Count, s.ComingDue.Total.Major()},
		[]interface{}{"Paid", s.Paid.Count, s.Paid.Total.Major()},
		[]interface{}{"Total balance", s.TotalBalance.Major()},
	)
	return values
}
