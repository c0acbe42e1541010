// Package store persists issued quotes in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hyperifyio/cotizador/internal/classify"
	"github.com/hyperifyio/cotizador/internal/pricing"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// DefaultListLimit bounds List when no limit is given.
const DefaultListLimit = 200

// ErrNotFound is returned by Get for an unknown quote id.
var ErrNotFound = errors.New("quote not found")

// Record is one saved quote.
type Record struct {
	ID          int64             `json:"id"`
	Ref         string            `json:"ref"`
	CreatedAt   time.Time         `json:"created_at"`
	ClientName  string            `json:"cliente_nombre"`
	ClientType  string            `json:"cliente_tipo"`
	Brief       string            `json:"brief"`
	Weights     classify.Weights  `json:"mod_levels"`
	Reasons     []string          `json:"reasons"`
	BaseUSD     float64           `json:"base_usd"`
	AdjustedUSD float64           `json:"adjusted_usd"`
	Scenarios   pricing.Scenarios `json:"escenarios"`
	Coefs       pricing.Coefs     `json:"coefs"`
}

// Stats summarises the saved quotes.
type Stats struct {
	Count            int                     `json:"count"`
	AvgAdjustedUSD   float64                 `json:"avg_adjusted_usd"`
	TotalAdjustedUSD float64                 `json:"total_adjusted_usd"`
	Modules          map[classify.Module]int `json:"modules"`
}

// Store wraps the quotes database.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS quotes (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	ref            TEXT NOT NULL UNIQUE,
	ts             TEXT NOT NULL,
	cliente_nombre TEXT NOT NULL DEFAULT '',
	cliente_tipo   TEXT NOT NULL DEFAULT '',
	brief          TEXT NOT NULL DEFAULT '',
	mod_levels     TEXT NOT NULL DEFAULT '{}',
	reasons        TEXT NOT NULL DEFAULT '[]',
	base_usd       REAL NOT NULL DEFAULT 0,
	adjusted_usd   REAL NOT NULL DEFAULT 0,
	escenarios     TEXT NOT NULL DEFAULT '{}',
	coefs          TEXT NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS quotes_ts ON quotes(ts);
`

// Open connects to the SQLite database at path, creating its directory,
// applying pragmas and the schema.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("open database: empty path")
	}
	if !strings.HasPrefix(path, "file:") && path != ":memory:" {
		if err := ensureDir(path); err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// one writer keeps SQLite free of lock contention
	db.SetMaxOpenConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB { return s.db }

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath is $XDG_DATA_HOME/cotizador/quotes.db, or the same under
// ~/.local/share.
func DefaultDBPath() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "cotizador", "quotes.db"), nil
}

func ensureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

// Save inserts rec and returns its id. A missing Ref gets a new UUID and a
// zero CreatedAt becomes now; both are written back to rec.
func (s *Store) Save(ctx context.Context, rec *Record) (int64, error) {
	if rec.Ref == "" {
		rec.Ref = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	weights := rec.Weights
	if weights == nil {
		weights = classify.Weights{}
	}
	reasons := rec.Reasons
	if reasons == nil {
		reasons = []string{}
	}
	enc := jsonColumns{}
	levels := enc.add(weights)
	why := enc.add(reasons)
	scen := enc.add(rec.Scenarios)
	coefs := enc.add(rec.Coefs)
	if enc.err != nil {
		return 0, fmt.Errorf("save quote: %w", enc.err)
	}
	res, err := s.db.ExecContext(ctx, `
INSERT INTO quotes (ref, ts, cliente_nombre, cliente_tipo, brief, mod_levels, reasons, base_usd, adjusted_usd, escenarios, coefs)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Ref, rec.CreatedAt.Format(time.RFC3339), rec.ClientName, rec.ClientType, rec.Brief,
		levels, why, rec.BaseUSD, rec.AdjustedUSD, scen, coefs)
	if err != nil {
		return 0, fmt.Errorf("save quote: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("save quote: %w", err)
	}
	rec.ID = id
	return id, nil
}

type jsonColumns struct{ err error }

func (j *jsonColumns) add(v any) string {
	if j.err != nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		j.err = err
		return ""
	}
	return string(b)
}

const selectColumns = `id, ref, ts, cliente_nombre, cliente_tipo, brief, mod_levels, reasons, base_usd, adjusted_usd, escenarios, coefs`

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var (
		rec                              Record
		ts, levels, reasons, scen, coefs string
	)
	if err := row.Scan(&rec.ID, &rec.Ref, &ts, &rec.ClientName, &rec.ClientType, &rec.Brief,
		&levels, &reasons, &rec.BaseUSD, &rec.AdjustedUSD, &scen, &coefs); err != nil {
		return Record{}, err
	}
	created, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return Record{}, fmt.Errorf("quote %d: bad timestamp %q: %w", rec.ID, ts, err)
	}
	rec.CreatedAt = created
	for _, col := range []struct {
		name string
		raw  string
		dst  any
	}{
		{"mod_levels", levels, &rec.Weights},
		{"reasons", reasons, &rec.Reasons},
		{"escenarios", scen, &rec.Scenarios},
		{"coefs", coefs, &rec.Coefs},
	} {
		if err := json.Unmarshal([]byte(col.raw), col.dst); err != nil {
			return Record{}, fmt.Errorf("quote %d: decode %s: %w", rec.ID, col.name, err)
		}
	}
	return rec, nil
}

// List returns up to limit quotes, newest first. A non-positive limit
// means DefaultListLimit.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM quotes ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}
	defer rows.Close()
	out := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("list quotes: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}
	return out, nil
}

// Get returns the quote with id or ErrNotFound.
func (s *Store) Get(ctx context.Context, id int64) (Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM quotes WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err != nil {
		return Record{}, fmt.Errorf("get quote: %w", err)
	}
	return rec, nil
}

// Stats counts saved quotes, averages their adjusted price and counts how
// often each module was quoted.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	st := Stats{Modules: map[classify.Module]int{}}
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(AVG(adjusted_usd), 0), COALESCE(SUM(adjusted_usd), 0) FROM quotes`,
	).Scan(&st.Count, &st.AvgAdjustedUSD, &st.TotalAdjustedUSD)
	if err != nil {
		return Stats{}, fmt.Errorf("quote stats: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT m.key, COUNT(*)
FROM quotes AS q, json_each(q.mod_levels) AS m
WHERE m.value > 0
GROUP BY m.key`)
	if err != nil {
		return Stats{}, fmt.Errorf("module stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return Stats{}, fmt.Errorf("module stats: %w", err)
		}
		st.Modules[classify.Module(key)] = n
	}
	if err := rows.Err(); err != nil {
		return Stats{}, fmt.Errorf("module stats: %w", err)
	}
	return st, nil
}
