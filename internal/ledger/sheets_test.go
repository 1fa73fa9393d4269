package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"
)

// fakeSheets keeps tabs as rows of cells and counts remote calls.
type fakeSheets struct {
	tabs  map[string][][]interface{}
	calls map[string]int
}

func newFakeSheets() *fakeSheets {
	return &fakeSheets{tabs: map[string][][]interface{}{}, calls: map[string]int{}}
}

func tabOf(rng string) string {
	return strings.SplitN(rng, "!", 2)[0]
}

func (f *fakeSheets) SheetTitles(context.Context, string) ([]string, error) {
	f.calls["titles"]++
	var titles []string
	for name := range f.tabs {
		titles = append(titles, name)
	}
	return titles, nil
}

func (f *fakeSheets) AddSheet(_ context.Context, _ string, title string) error {
	f.calls["add"]++
	f.tabs[title] = nil
	return nil
}

func (f *fakeSheets) Get(_ context.Context, _ string, rng string) ([][]interface{}, error) {
	f.calls["get"]++
	rows := f.tabs[tabOf(rng)]
	if strings.HasSuffix(rng, "!A1:B1") && len(rows) > 1 {
		return rows[:1], nil
	}
	return rows, nil
}

func (f *fakeSheets) Update(_ context.Context, _ string, rng string, values [][]interface{}) error {
	f.calls["update"]++
	tab := tabOf(rng)
	rows := f.tabs[tab]
	if len(rows) == 0 {
		f.tabs[tab] = values
		return nil
	}
	rows[0] = values[0]
	return nil
}

func (f *fakeSheets) Append(_ context.Context, _ string, rng string, values [][]interface{}) error {
	f.calls["append"]++
	tab := tabOf(rng)
	f.tabs[tab] = append(f.tabs[tab], values...)
	return nil
}

func TestSheetsInitCreatesTabWithHeader(t *testing.T) {
	api := newFakeSheets()
	l := newSheets(api, "spreadsheet", "Internships", zap.NewNop())

	if err := l.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}

	rows := api.tabs["Internships"]
	if len(rows) != 1 || rows[0][0] != HeaderTitle || rows[0][1] != HeaderLink {
		t.Fatalf("unexpected tab contents: %v", rows)
	}
	if api.calls["add"] != 1 {
		t.Fatalf("expected one add sheet call, got %d", api.calls["add"])
	}
}

func TestSheetsInitWritesHeaderToEmptyTab(t *testing.T) {
	api := newFakeSheets()
	api.tabs["Sheet1"] = nil
	l := newSheets(api, "spreadsheet", "Sheet1", zap.NewNop())

	if err := l.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	if api.calls["add"] != 0 || api.calls["update"] != 1 {
		t.Fatalf("unexpected calls: %v", api.calls)
	}
}

func TestSheetsSchemaViolation(t *testing.T) {
	api := newFakeSheets()
	api.tabs["Sheet1"] = [][]interface{}{{"Company", "Role"}}
	l := newSheets(api, "spreadsheet", "Sheet1", zap.NewNop())

	if err := l.Init(context.Background()); !errors.Is(err, ErrSchema) {
		t.Fatalf("expected ErrSchema, got %v", err)
	}
}

func TestSheetsIdempotentAppend(t *testing.T) {
	api := newFakeSheets()
	l := newSheets(api, "spreadsheet", "Sheet1", zap.NewNop())
	if err := l.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}

	checkIdempotentAppend(t, l)

	if api.calls["append"] != 1 {
		t.Fatalf("expected one remote write, got %d", api.calls["append"])
	}
}

func TestSheetsReadsTitleColumnOncePerBatch(t *testing.T) {
	api := newFakeSheets()
	api.tabs["Sheet1"] = [][]interface{}{{HeaderTitle, HeaderLink}, {"Recorded Intern", "https://example.com/0"}}
	l := newSheets(api, "spreadsheet", "Sheet1", zap.NewNop())
	ctx := context.Background()

	if err := l.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	readsAfterInit := api.calls["get"]

	for i := 0; i < 50; i++ {
		title := fmt.Sprintf("Intern %d", i)
		exists, err := l.Exists(ctx, title)
		if err != nil {
			t.Fatalf("exists %q: %v", title, err)
		}
		if exists {
			t.Fatalf("%q reported as recorded", title)
		}
		if err := l.Append(ctx, Entry{Title: title, Link: "https://example.com"}); err != nil {
			t.Fatalf("append %q: %v", title, err)
		}
	}

	for _, title := range []string{"Recorded Intern", "Intern 0", "Intern 49"} {
		exists, err := l.Exists(ctx, title)
		if err != nil {
			t.Fatalf("exists %q: %v", title, err)
		}
		if !exists {
			t.Fatalf("%q should be recorded", title)
		}
	}

	if reads := api.calls["get"] - readsAfterInit; reads != 1 {
		t.Fatalf("expected one title column read for the batch, got %d", reads)
	}
	if api.calls["append"] != 50 {
		t.Fatalf("expected 50 remote writes, got %d", api.calls["append"])
	}
}
