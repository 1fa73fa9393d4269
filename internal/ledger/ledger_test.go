package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

// checkIdempotentAppend appends the same title twice with an Exists check in
// between, the way the orchestrator does, and expects a single stored row.
func checkIdempotentAppend(t *testing.T, l Ledger) {
	t.Helper()
	ctx := context.Background()

	entry := Entry{Title: "Software Engineering Intern", Link: "https://jobs.example.com/1"}
	for i := 0; i < 2; i++ {
		exists, err := l.Exists(ctx, entry.Title)
		if err != nil {
			t.Fatalf("exists: %v", err)
		}
		if exists != (i == 1) {
			t.Fatalf("attempt %d: unexpected exists=%v", i, exists)
		}
		if !exists {
			if err := l.Append(ctx, entry); err != nil {
				t.Fatalf("append: %v", err)
			}
		}
	}

	// titles are compared verbatim
	exists, err := l.Exists(ctx, "software engineering intern")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if exists {
		t.Fatalf("expected case-different title to be treated as new")
	}

	titles, err := l.Titles(ctx)
	if err != nil {
		t.Fatalf("titles: %v", err)
	}
	if len(titles) != 1 || titles[0] != entry.Title {
		t.Fatalf("expected exactly one stored row, got %v", titles)
	}
}

func TestMemoryIdempotentAppend(t *testing.T) {
	checkIdempotentAppend(t, NewMemory())
}

func TestXLSXIdempotentAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "internships.xlsx")
	l := NewXLSX(path, "Internships", zap.NewNop())

	if err := l.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	// a second init keeps the existing header
	if err := l.Init(context.Background()); err != nil {
		t.Fatalf("second init: %v", err)
	}

	checkIdempotentAppend(t, l)
}

func TestXLSXSchemaViolation(t *testing.T) {
	broken := NewXLSX(filepath.Join(t.TempDir(), "broken.xlsx"), "Sheet1", zap.NewNop())
	if err := broken.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	// overwrite the header cell to simulate a foreign sheet
	f := openWorkbook(t, broken.path)
	if err := f.SetCellValue("Sheet1", "A1", "Name"); err != nil {
		t.Fatalf("set cell: %v", err)
	}
	if err := f.SaveAs(broken.path); err != nil {
		t.Fatalf("save: %v", err)
	}
	f.Close()

	if err := broken.Init(context.Background()); !errors.Is(err, ErrSchema) {
		t.Fatalf("expected ErrSchema from init, got %v", err)
	}
	if _, err := broken.Exists(context.Background(), "x"); !errors.Is(err, ErrSchema) {
		t.Fatalf("expected ErrSchema from exists, got %v", err)
	}
}

func TestSQLiteIdempotentAppend(t *testing.T) {
	ctx := context.Background()
	l, err := Open(ctx, &Config{Kind: KindSQLite, Path: filepath.Join(t.TempDir(), "ledger.db")}, zap.NewNop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer l.Close()

	if err := l.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	checkIdempotentAppend(t, l)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	l, err := Open(ctx, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := l.(*Memory); !ok {
		t.Fatalf("expected memory ledger by default, got %T", l)
	}

	tests := []struct {
		name    string
		cfg     *Config
		wantErr string
	}{
		{name: "xlsx without path", cfg: &Config{Kind: "xlsx"}, wantErr: "ledger.path"},
		{name: "sheets without id", cfg: &Config{Kind: "sheets"}, wantErr: "ledger.spreadsheet-id"},
		{name: "postgres without dsn", cfg: &Config{Kind: "postgres"}, wantErr: "ledger.dsn"},
		{name: "bad table", cfg: &Config{Kind: "sqlite", Path: filepath.Join(t.TempDir(), "x.db"), Table: "jobs; drop"}, wantErr: "invalid ledger table"},
		{name: "postgres bad table", cfg: &Config{Kind: "postgres", DSN: "postgres://localhost/jobs", Table: "bad-name"}, wantErr: "invalid ledger table"},
		{name: "sheets missing credentials", cfg: &Config{Kind: "sheets", SpreadsheetID: "id", CredentialsFile: filepath.Join(t.TempDir(), "missing.json")}, wantErr: "create sheets service"},
		{name: "unknown kind", cfg: &Config{Kind: "csv"}, wantErr: "unsupported ledger kind"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := Open(ctx, tt.cfg, zap.NewNop())
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
			if l != nil {
				t.Fatalf("expected a nil ledger on error, got %T", l)
			}
		})
	}
}

func TestRebind(t *testing.T) {
	pg := &SQL{driver: "postgres"}
	if got := pg.rebind("INSERT INTO jobs VALUES (?, ?, ?);"); got != "INSERT INTO jobs VALUES ($1, $2, $3);" {
		t.Fatalf("unexpected postgres query: %s", got)
	}

	lite := &SQL{driver: "sqlite"}
	if got := lite.rebind("SELECT ?"); got != "SELECT ?" {
		t.Fatalf("unexpected sqlite query: %s", got)
	}
}
