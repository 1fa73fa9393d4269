package ledger

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const valueInputRaw = "RAW"

// sheetsAPI is the subset of the Google Sheets service the ledger needs.
type sheetsAPI interface {
	SheetTitles(ctx context.Context, spreadsheetID string) ([]string, error)
	AddSheet(ctx context.Context, spreadsheetID, title string) error
	Get(ctx context.Context, spreadsheetID, rng string) ([][]interface{}, error)
	Update(ctx context.Context, spreadsheetID, rng string, values [][]interface{}) error
	Append(ctx context.Context, spreadsheetID, rng string, values [][]interface{}) error
}

// Sheets records entries in a Google spreadsheet tab. The title column is read
// once and kept as a snapshot that every Append extends, so a batch of Exists
// checks costs one remote read. Each Append is one remote write.
type Sheets struct {
	api           sheetsAPI
	spreadsheetID string
	sheet         string
	logger        *zap.Logger

	seen map[string]struct{}
}

// NewSheets authenticates with the service account credentials file.
func NewSheets(ctx context.Context, credentialsFile, spreadsheetID, sheet string, logger *zap.Logger) (*Sheets, error) {
	opts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}
	if f := strings.TrimSpace(credentialsFile); f != "" {
		opts = append(opts, option.WithCredentialsFile(f))
	}

	srv, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return newSheets(&googleSheets{srv: srv}, spreadsheetID, sheet, logger), nil
}

func newSheets(api sheetsAPI, spreadsheetID, sheet string, logger *zap.Logger) *Sheets {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sheets{api: api, spreadsheetID: spreadsheetID, sheet: sheet, logger: logger}
}

func (s *Sheets) Init(ctx context.Context) error {
	titles, err := s.api.SheetTitles(ctx, s.spreadsheetID)
	if err != nil {
		return fmt.Errorf("get spreadsheet metadata: %w", err)
	}

	exists := false
	for _, t := range titles {
		if t == s.sheet {
			exists = true
			break
		}
	}

	if !exists {
		if err := s.api.AddSheet(ctx, s.spreadsheetID, s.sheet); err != nil {
			return fmt.Errorf("add sheet %q: %w", s.sheet, err)
		}
		if err := s.writeHeader(ctx); err != nil {
			return err
		}
		s.logger.Info("created new sheet with headers", zap.String("sheet", s.sheet))
		return nil
	}

	header, err := s.api.Get(ctx, s.spreadsheetID, s.sheet+"!A1:B1")
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	if len(header) == 0 || len(header[0]) == 0 {
		if err := s.writeHeader(ctx); err != nil {
			return err
		}
		s.logger.Info("wrote headers to empty sheet", zap.String("sheet", s.sheet))
		return nil
	}
	if fmt.Sprint(header[0][0]) != HeaderTitle {
		return fmt.Errorf("spreadsheet %s sheet %q: %w", s.spreadsheetID, s.sheet, ErrSchema)
	}
	return nil
}

func (s *Sheets) Exists(ctx context.Context, title string) (bool, error) {
	if s.seen == nil {
		titles, err := s.Titles(ctx)
		if err != nil {
			return false, err
		}
		s.seen = make(map[string]struct{}, len(titles))
		for _, t := range titles {
			s.seen[t] = struct{}{}
		}
	}

	_, ok := s.seen[title]
	return ok, nil
}

func (s *Sheets) Titles(ctx context.Context) ([]string, error) {
	rows, err := s.api.Get(ctx, s.spreadsheetID, s.sheet+"!A:A")
	if err != nil {
		return nil, fmt.Errorf("read title column: %w", err)
	}
	if len(rows) == 0 || len(rows[0]) == 0 || fmt.Sprint(rows[0][0]) != HeaderTitle {
		return nil, fmt.Errorf("spreadsheet %s sheet %q: %w", s.spreadsheetID, s.sheet, ErrSchema)
	}

	titles := make([]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		titles = append(titles, fmt.Sprint(row[0]))
	}
	return titles, nil
}

func (s *Sheets) Append(ctx context.Context, entry Entry) error {
	values := [][]interface{}{{entry.Title, entry.Link}}
	if err := s.api.Append(ctx, s.spreadsheetID, s.sheet+"!A:B", values); err != nil {
		return fmt.Errorf("append row: %w", err)
	}
	if s.seen != nil {
		s.seen[entry.Title] = struct{}{}
	}

	s.logger.Info("added job to google sheet", zap.String("title", entry.Title))
	return nil
}

func (s *Sheets) Close() error { return nil }

func (s *Sheets) writeHeader(ctx context.Context) error {
	header := [][]interface{}{{HeaderTitle, HeaderLink}}
	if err := s.api.Update(ctx, s.spreadsheetID, s.sheet+"!A1", header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	return nil
}

type googleSheets struct {
	srv *sheets.Service
}

func (g *googleSheets) SheetTitles(ctx context.Context, spreadsheetID string) ([]string, error) {
	resp, err := g.srv.Spreadsheets.Get(spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	titles := make([]string, 0, len(resp.Sheets))
	for _, sheet := range resp.Sheets {
		if sheet == nil || sheet.Properties == nil {
			continue
		}
		titles = append(titles, sheet.Properties.Title)
	}
	return titles, nil
}

func (g *googleSheets) AddSheet(ctx context.Context, spreadsheetID, title string) error {
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: title},
			},
		}},
	}
	_, err := g.srv.Spreadsheets.BatchUpdate(spreadsheetID, req).Context(ctx).Do()
	return err
}

func (g *googleSheets) Get(ctx context.Context, spreadsheetID, rng string) ([][]interface{}, error) {
	resp, err := g.srv.Spreadsheets.Values.Get(spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

func (g *googleSheets) Update(ctx context.Context, spreadsheetID, rng string, values [][]interface{}) error {
	_, err := g.srv.Spreadsheets.Values.Update(spreadsheetID, rng, &sheets.ValueRange{Values: values}).
		ValueInputOption(valueInputRaw).
		Context(ctx).
		Do()
	return err
}

func (g *googleSheets) Append(ctx context.Context, spreadsheetID, rng string, values [][]interface{}) error {
	_, err := g.srv.Spreadsheets.Values.Append(spreadsheetID, rng, &sheets.ValueRange{Values: values}).
		ValueInputOption(valueInputRaw).
		Context(ctx).
		Do()
	return err
}
