package export

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/api/option"
	sheetsv4 "google.golang.org/api/sheets/v4"

	"bjj-tournament/internal/models"
)

// Sheets mirrors tables into tabs of one spreadsheet. Each tab must exist;
// its contents are replaced on every mirror.
type Sheets struct {
	srv           *sheetsv4.Service
	spreadsheetID string
}

func NewSheets(ctx context.Context, serviceAccountJSONPath, spreadsheetID string) (*Sheets, error) {
	if _, err := os.Stat(serviceAccountJSONPath); err != nil {
		return nil, fmt.Errorf("service account json: %w", err)
	}
	srv, err := sheetsv4.NewService(ctx,
		option.WithCredentialsFile(serviceAccountJSONPath),
		option.WithScopes(sheetsv4.SpreadsheetsScope),
	)
	if err != nil {
		return nil, err
	}
	return &Sheets{srv: srv, spreadsheetID: spreadsheetID}, nil
}

func (s *Sheets) SpreadsheetID() string { return s.spreadsheetID }

// TabName is the spreadsheet tab registrations of kind are mirrored to.
func TabName(kind models.Kind) string {
	if kind == models.KindMinor {
		return "Menores"
	}
	return "Adultos"
}

// Mirror replaces the tab contents with t. It returns the number of data rows
// written.
func (s *Sheets) Mirror(ctx context.Context, tab string, t Table) (int, error) {
	_, err := s.srv.Spreadsheets.Values.Clear(s.spreadsheetID, tab, &sheetsv4.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("clear %s: %w", tab, err)
	}

	_, err = s.srv.Spreadsheets.Values.Update(s.spreadsheetID, tab+"!A1", &sheetsv4.ValueRange{Values: values(t)}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return 0, fmt.Errorf("write %s: %w", tab, err)
	}
	return len(t.Rows), nil
}

func values(t Table) [][]interface{} {
	out := make([][]interface{}, 0, len(t.Rows)+1)
	out = append(out, row(t.Header))
	for _, r := range t.Rows {
		out = append(out, row(r))
	}
	return out
}

func row(cells []string) []interface{} {
	out := make([]interface{}, len(cells))
	for i, c := range cells {
		out[i] = c
	}
	return out
}
