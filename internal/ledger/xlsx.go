package ledger

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"unicode/utf8"

	"github.com/gofrs/flock"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Excel refuses column widths above 255 characters.
const maxColumnWidth = 255

// XLSX records entries in a local workbook. Every call reopens the file, so
// Exists always sees rows written by earlier calls.
type XLSX struct {
	path   string
	sheet  string
	lock   *flock.Flock
	logger *zap.Logger
}

func NewXLSX(path, sheet string, logger *zap.Logger) *XLSX {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &XLSX{
		path:   path,
		sheet:  sheet,
		lock:   flock.New(path + ".lock"),
		logger: logger,
	}
}

func (x *XLSX) Init(_ context.Context) error {
	return x.withLock(func() error {
		f, created, err := x.open()
		if err != nil {
			return err
		}
		defer f.Close()

		changed := created
		idx, err := f.GetSheetIndex(x.sheet)
		if err != nil {
			return fmt.Errorf("look up sheet %q: %w", x.sheet, err)
		}
		if idx == -1 {
			if _, err := f.NewSheet(x.sheet); err != nil {
				return fmt.Errorf("create sheet %q: %w", x.sheet, err)
			}
			changed = true
		}

		rows, err := f.GetRows(x.sheet)
		if err != nil {
			return fmt.Errorf("read sheet %q: %w", x.sheet, err)
		}

		switch {
		case len(rows) == 0:
			if err := f.SetSheetRow(x.sheet, "A1", &[]interface{}{HeaderTitle, HeaderLink}); err != nil {
				return fmt.Errorf("write header: %w", err)
			}
			if err := fitColumns(f, x.sheet, [][]string{{HeaderTitle, HeaderLink}}); err != nil {
				return err
			}
			x.logger.Info("created new sheet with headers", zap.String("sheet", x.sheet))
			changed = true
		case len(rows[0]) == 0 || rows[0][0] != HeaderTitle:
			return fmt.Errorf("%s sheet %q: %w", x.path, x.sheet, ErrSchema)
		}

		if !changed {
			return nil
		}
		return f.SaveAs(x.path)
	})
}

func (x *XLSX) Exists(ctx context.Context, title string) (bool, error) {
	titles, err := x.Titles(ctx)
	if err != nil {
		return false, err
	}
	for _, t := range titles {
		if t == title {
			return true, nil
		}
	}
	return false, nil
}

func (x *XLSX) Titles(_ context.Context) ([]string, error) {
	var titles []string
	err := x.withLock(func() error {
		rows, err := x.rows()
		if err != nil {
			return err
		}
		for _, row := range rows[1:] {
			if len(row) > 0 && row[0] != "" {
				titles = append(titles, row[0])
			}
		}
		return nil
	})
	return titles, err
}

func (x *XLSX) Append(_ context.Context, entry Entry) error {
	return x.withLock(func() error {
		f, err := excelize.OpenFile(x.path)
		if err != nil {
			return fmt.Errorf("open %s: %w", x.path, err)
		}
		defer f.Close()

		rows, err := f.GetRows(x.sheet)
		if err != nil {
			return fmt.Errorf("read sheet %q: %w", x.sheet, err)
		}

		cell, err := excelize.CoordinatesToCellName(1, len(rows)+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(x.sheet, cell, &[]interface{}{entry.Title, entry.Link}); err != nil {
			return fmt.Errorf("write row %s: %w", cell, err)
		}

		if err := fitColumns(f, x.sheet, append(rows, []string{entry.Title, entry.Link})); err != nil {
			return err
		}

		if err := f.SaveAs(x.path); err != nil {
			return fmt.Errorf("save %s: %w", x.path, err)
		}

		x.logger.Info("added job to ledger", zap.String("title", entry.Title))
		return nil
	})
}

func (x *XLSX) Close() error { return nil }

// rows returns all rows of the sheet, header included, after checking the header.
func (x *XLSX) rows() ([][]string, error) {
	f, err := excelize.OpenFile(x.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", x.path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(x.sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", x.sheet, err)
	}
	if len(rows) == 0 || len(rows[0]) == 0 || rows[0][0] != HeaderTitle {
		return nil, fmt.Errorf("%s sheet %q: %w", x.path, x.sheet, ErrSchema)
	}
	return rows, nil
}

// open opens the workbook, creating it with the target sheet when the file is absent.
func (x *XLSX) open() (*excelize.File, bool, error) {
	f, err := excelize.OpenFile(x.path)
	if err == nil {
		return f, false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, false, fmt.Errorf("open %s: %w", x.path, err)
	}

	f = excelize.NewFile()
	if x.sheet != defaultSheet {
		if err := f.SetSheetName(defaultSheet, x.sheet); err != nil {
			f.Close()
			return nil, false, fmt.Errorf("rename default sheet: %w", err)
		}
	}
	x.logger.Info("creating new workbook", zap.String("path", x.path))
	return f, true, nil
}

func (x *XLSX) withLock(fn func() error) error {
	if err := x.lock.Lock(); err != nil {
		return fmt.Errorf("lock %s: %w", x.path, err)
	}
	defer x.lock.Unlock()

	return fn()
}

// fitColumns sets each column width to its longest cell plus padding.
func fitColumns(f *excelize.File, sheet string, rows [][]string) error {
	widths := map[int]int{}
	for _, row := range rows {
		for i, cell := range row {
			if n := utf8.RuneCountInString(cell); n > widths[i] {
				widths[i] = n
			}
		}
	}

	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if width+2 > maxColumnWidth {
			width = maxColumnWidth - 2
		}
		if err := f.SetColWidth(sheet, col, col, float64(width+2)); err != nil {
			return fmt.Errorf("set width of column %s: %w", col, err)
		}
	}
	return nil
}
