package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/intern-scout/internal/logger"
)

const (
	KindMemory   = "memory"
	KindXLSX     = "xlsx"
	KindSheets   = "sheets"
	KindSQLite   = "sqlite"
	KindPostgres = "postgres"

	HeaderTitle = "Title"
	HeaderLink  = "Link"

	defaultSheet = "Sheet1"
	defaultTable = "jobs"
)

// ErrSchema is returned when an existing ledger lacks the title column.
var ErrSchema = errors.New("ledger schema violation: title column not found")

// Entry is one recorded job.
type Entry struct {
	Title string
	Link  string
}

// Ledger stores the titles of jobs that were already reported.
// Implementations are not safe for concurrent runs against the same store.
type Ledger interface {
	// Init creates the backing sheet, tab or table with its header when absent.
	Init(ctx context.Context) error
	Exists(ctx context.Context, title string) (bool, error)
	Append(ctx context.Context, entry Entry) error
	Titles(ctx context.Context) ([]string, error)
	Close() error
}

// Config selects and locates a ledger backend.
type Config struct {
	Kind            string `mapstructure:"kind"`
	Path            string `mapstructure:"path"`
	Sheet           string `mapstructure:"sheet"`
	SpreadsheetID   string `mapstructure:"spreadsheet-id"`
	CredentialsFile string `mapstructure:"credentials-file"`
	DSN             string `mapstructure:"dsn"`
	Table           string `mapstructure:"table"`
}

// Open builds the ledger described by cfg. Init is not called.
func Open(ctx context.Context, cfg *Config, log *zap.Logger) (Ledger, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	kind := strings.ToLower(strings.TrimSpace(cfg.Kind))
	if kind == "" {
		kind = KindMemory
	}

	sheet := strings.TrimSpace(cfg.Sheet)
	if sheet == "" {
		sheet = defaultSheet
	}
	table := strings.TrimSpace(cfg.Table)
	if table == "" {
		table = defaultTable
	}

	switch kind {
	case KindMemory:
		return NewMemory(), nil
	case KindXLSX:
		if strings.TrimSpace(cfg.Path) == "" {
			return nil, errors.New("ledger.path is required for the xlsx ledger")
		}
		return NewXLSX(cfg.Path, sheet, logger.WithLedgerFields(log, kind, cfg.Path)), nil
	case KindSheets:
		if strings.TrimSpace(cfg.SpreadsheetID) == "" {
			return nil, errors.New("ledger.spreadsheet-id is required for the sheets ledger")
		}
		s, err := NewSheets(ctx, cfg.CredentialsFile, cfg.SpreadsheetID, sheet, logger.WithLedgerFields(log, kind, cfg.SpreadsheetID))
		if err != nil {
			return nil, err
		}
		return s, nil
	case KindSQLite:
		if strings.TrimSpace(cfg.Path) == "" {
			return nil, errors.New("ledger.path is required for the sqlite ledger")
		}
		dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", cfg.Path)
		s, err := OpenSQL(ctx, "sqlite", dsn, table, logger.WithLedgerFields(log, kind, cfg.Path))
		if err != nil {
			return nil, err
		}
		return s, nil
	case KindPostgres:
		if strings.TrimSpace(cfg.DSN) == "" {
			return nil, errors.New("ledger.dsn is required for the postgres ledger")
		}
		s, err := OpenSQL(ctx, "postgres", cfg.DSN, table, logger.WithLedgerFields(log, kind, table))
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported ledger kind: %s", cfg.Kind)
	}
}
