package ledger

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func openWorkbook(t *testing.T, path string) *excelize.File {
	t.Helper()
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	return f
}

func TestXLSXInitCreatesHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "internships.xlsx")
	l := NewXLSX(path, "Internships", zap.NewNop())

	if err := l.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}

	f := openWorkbook(t, path)
	defer f.Close()

	rows, err := f.GetRows("Internships")
	if err != nil {
		t.Fatalf("get rows: %v", err)
	}
	if len(rows) != 1 || len(rows[0]) != 2 || rows[0][0] != HeaderTitle || rows[0][1] != HeaderLink {
		t.Fatalf("unexpected header rows: %v", rows)
	}
}

func TestXLSXAppendFitsColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "internships.xlsx")
	l := NewXLSX(path, "Sheet1", zap.NewNop())
	ctx := context.Background()

	if err := l.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	entry := Entry{Title: "Backend Engineering Intern (Summer)", Link: "https://jobs.example.com/backend"}
	if err := l.Append(ctx, entry); err != nil {
		t.Fatalf("append: %v", err)
	}

	f := openWorkbook(t, path)
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	if err != nil {
		t.Fatalf("get rows: %v", err)
	}
	if len(rows) != 2 || rows[1][0] != entry.Title || rows[1][1] != entry.Link {
		t.Fatalf("unexpected rows: %v", rows)
	}

	width, err := f.GetColWidth("Sheet1", "A")
	if err != nil {
		t.Fatalf("get width: %v", err)
	}
	if width != float64(len(entry.Title)+2) {
		t.Fatalf("expected width %d, got %v", len(entry.Title)+2, width)
	}
}
