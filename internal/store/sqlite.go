package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/roso1102/reboard/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

// Filterable fields are real columns; the rest of the component lives in
// the payload blob. seq preserves insertion order for listings.
const sqliteMigration = `
CREATE TABLE IF NOT EXISTS components (
	id        TEXT PRIMARY KEY,
	seq       INTEGER NOT NULL DEFAULT 0,
	category  TEXT NOT NULL,
	status    TEXT NOT NULL,
	grade     TEXT NOT NULL,
	payload   TEXT NOT NULL,
	tested_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS orders (
	id        TEXT PRIMARY KEY,
	status    TEXT NOT NULL DEFAULT 'confirmed',
	payload   TEXT NOT NULL,
	placed_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_components_category ON components(category);
CREATE INDEX IF NOT EXISTS idx_components_status ON components(status);
CREATE INDEX IF NOT EXISTS idx_components_grade ON components(grade);
CREATE INDEX IF NOT EXISTS idx_components_seq ON components(seq);
CREATE INDEX IF NOT EXISTS idx_orders_placed_at ON orders(placed_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveComponent(ctx context.Context, c *model.Component) error {
	if err := c.Validate(); err != nil {
		return err
	}
	payload, err := json.Marshal(c)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal component")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO components (id, seq, category, status, grade, payload, tested_at)
		 VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM components), ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			category = excluded.category,
			status   = excluded.status,
			grade    = excluded.grade,
			payload  = excluded.payload`,
		c.ID, c.Category, string(c.Status), string(c.Diagnostic.Grade), string(payload), c.TestedAt.UTC(),
	)
	return eris.Wrapf(err, "sqlite: save component %s", c.ID)
}

func (s *SQLiteStore) GetComponent(ctx context.Context, id string) (*model.Component, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT payload FROM components WHERE id = ?`, id,
	)
	return scanComponent(row)
}

func (s *SQLiteStore) ListComponents(ctx context.Context, filter ComponentFilter) ([]model.Component, error) {
	query := `SELECT payload FROM components WHERE 1=1`
	var args []any

	if filter.Category != "" {
		query += ` AND category = ?`
		args = append(args, filter.Category)
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.Grade != "" {
		query += ` AND grade = ?`
		args = append(args, string(filter.Grade))
	}
	query += ` ORDER BY seq ASC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 500
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list components")
	}
	defer rows.Close()

	var out []model.Component
	for rows.Next() {
		c, err := scanComponent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list components iterate")
}

func (s *SQLiteStore) UpdateComponent(ctx context.Context, c *model.Component) error {
	if err := c.Validate(); err != nil {
		return err
	}
	payload, err := json.Marshal(c)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal component")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE components SET category = ?, status = ?, grade = ?, payload = ? WHERE id = ?`,
		c.Category, string(c.Status), string(c.Diagnostic.Grade), string(payload), c.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update component %s", c.ID)
	}
	return checkRowsAffected(res, "component", c.ID)
}

func (s *SQLiteStore) SaveOrder(ctx context.Context, o *model.Order) error {
	payload, err := json.Marshal(o)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal order")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO orders (id, status, payload, placed_at) VALUES (?, ?, ?, ?)`,
		o.ID, string(o.Status), string(payload), o.PlacedAt.UTC(),
	)
	return eris.Wrapf(err, "sqlite: save order %s", o.ID)
}

func (s *SQLiteStore) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT payload, status FROM orders WHERE id = ?`, id,
	)
	return scanOrder(row)
}

func (s *SQLiteStore) ListOrders(ctx context.Context, limit int) ([]model.Order, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload, status FROM orders ORDER BY placed_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list orders")
	}
	defer rows.Close()

	var out []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list orders iterate")
}

func (s *SQLiteStore) UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE orders SET status = ?, payload = json_set(payload, '$.status', ?) WHERE id = ?`,
		string(status), string(status), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update order status %s", id)
	}
	return checkRowsAffected(res, "order", id)
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "%s %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanComponent(row scannable) (*model.Component, error) {
	var payload string
	err := row.Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan component")
	}

	var c model.Component
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal component")
	}
	return &c, nil
}

func scanOrder(row scannable) (*model.Order, error) {
	var payload, status string
	err := row.Scan(&payload, &status)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan order")
	}

	var o model.Order
	if err := json.Unmarshal([]byte(payload), &o); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal order")
	}
	o.Status = model.OrderStatus(status)
	return &o, nil
}
