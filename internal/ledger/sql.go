package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQL records entries in a table of a sqlite or postgres database.
type SQL struct {
	db     *sql.DB
	driver string
	table  string
	logger *zap.Logger
}

// OpenSQL opens the database with the given database/sql driver ("sqlite" or "postgres").
func OpenSQL(ctx context.Context, driver, dsn, table string, logger *zap.Logger) (*SQL, error) {
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid ledger table name %q", table)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}

	// sqlite typically wants a single writer
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s database: %w", driver, err)
	}

	return &SQL{db: db, driver: driver, table: table, logger: logger}, nil
}

func (s *SQL) Init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	title TEXT NOT NULL,
	link TEXT NOT NULL,
	recorded_at TIMESTAMP NOT NULL
);`, s.table))
	if err != nil {
		return fmt.Errorf("create table %s: %w", s.table, err)
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT title, link FROM %s WHERE 1 = 0;`, s.table))
	if err != nil {
		return fmt.Errorf("table %s: %w: %v", s.table, ErrSchema, err)
	}
	return rows.Close()
}

func (s *SQL) Exists(ctx context.Context, title string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		s.rebind(fmt.Sprintf(`SELECT 1 FROM %s WHERE title = ? LIMIT 1;`, s.table)),
		title,
	).Scan(&one)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("look up title: %w", err)
	}
	return true, nil
}

func (s *SQL) Append(ctx context.Context, entry Entry) error {
	_, err := s.db.ExecContext(ctx,
		s.rebind(fmt.Sprintf(`INSERT INTO %s (title, link, recorded_at) VALUES (?, ?, ?);`, s.table)),
		entry.Title, entry.Link, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}

	s.logger.Info("added job to ledger", zap.String("title", entry.Title))
	return nil
}

func (s *SQL) Titles(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT title FROM %s ORDER BY recorded_at;`, s.table))
	if err != nil {
		return nil, fmt.Errorf("list titles: %w", err)
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, err
		}
		titles = append(titles, title)
	}
	return titles, rows.Err()
}

func (s *SQL) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// rebind rewrites ? placeholders to $n for postgres.
func (s *SQL) rebind(query string) string {
	if s.driver != "postgres" {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
