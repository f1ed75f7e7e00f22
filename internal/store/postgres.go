package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/roso1102/reboard/internal/db"
	"github.com/roso1102/reboard/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// the hot paths of the catalog.
var preparedStatements = map[string]string{
	"save_component": `INSERT INTO components (id, category, status, grade, payload, tested_at) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET category = EXCLUDED.category, status = EXCLUDED.status, grade = EXCLUDED.grade, payload = EXCLUDED.payload`,
	"get_component":       `SELECT payload FROM components WHERE id = $1`,
	"update_component":    `UPDATE components SET category = $1, status = $2, grade = $3, payload = $4 WHERE id = $5`,
	"save_order":          `INSERT INTO orders (id, status, payload, placed_at) VALUES ($1, $2, $3, $4)`,
	"get_order":           `SELECT payload, status FROM orders WHERE id = $1`,
	"update_order_status": `UPDATE orders SET status = $1, payload = jsonb_set(payload, '{status}', to_jsonb($1::text)) WHERE id = $2`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// Pool returns the underlying database pool for subsystems that need
// direct query access.
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS components (
	id        TEXT PRIMARY KEY,
	seq       BIGSERIAL,
	category  TEXT NOT NULL,
	status    TEXT NOT NULL,
	grade     TEXT NOT NULL,
	payload   JSONB NOT NULL,
	tested_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS orders (
	id        TEXT PRIMARY KEY,
	status    TEXT NOT NULL DEFAULT 'confirmed',
	payload   JSONB NOT NULL,
	placed_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_components_category ON components(category);
CREATE INDEX IF NOT EXISTS idx_components_status ON components(status);
CREATE INDEX IF NOT EXISTS idx_components_grade ON components(grade);
CREATE INDEX IF NOT EXISTS idx_components_seq ON components(seq);
CREATE INDEX IF NOT EXISTS idx_orders_placed_at ON orders(placed_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) SaveComponent(ctx context.Context, c *model.Component) error {
	if err := c.Validate(); err != nil {
		return err
	}
	payload, err := json.Marshal(c)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal component")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO components (id, category, status, grade, payload, tested_at) VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE SET category = EXCLUDED.category, status = EXCLUDED.status, grade = EXCLUDED.grade, payload = EXCLUDED.payload`,
		c.ID, c.Category, string(c.Status), string(c.Diagnostic.Grade), string(payload), c.TestedAt.UTC(),
	)
	return eris.Wrapf(err, "postgres: save component %s", c.ID)
}

// ImportComponents bulk-loads a batch of components via COPY. Existing
// rows are not touched; this is for seeding a fresh catalog.
func (s *PostgresStore) ImportComponents(ctx context.Context, components []model.Component) (int64, error) {
	rows := make([][]any, 0, len(components))
	for i := range components {
		c := &components[i]
		if err := c.Validate(); err != nil {
			return 0, err
		}
		payload, err := json.Marshal(c)
		if err != nil {
			return 0, eris.Wrap(err, "postgres: marshal component")
		}
		rows = append(rows, []any{c.ID, c.Category, string(c.Status), string(c.Diagnostic.Grade), string(payload), c.TestedAt.UTC()})
	}
	return db.CopyFrom(ctx, s.pool, "components",
		[]string{"id", "category", "status", "grade", "payload", "tested_at"}, rows)
}

func (s *PostgresStore) GetComponent(ctx context.Context, id string) (*model.Component, error) {
	var payload string
	err := s.pool.QueryRow(ctx, `SELECT payload FROM components WHERE id = $1`, id).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get component %s", id)
	}

	var c model.Component
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal component")
	}
	return &c, nil
}

func (s *PostgresStore) ListComponents(ctx context.Context, filter ComponentFilter) ([]model.Component, error) {
	query := `SELECT payload FROM components WHERE 1=1`
	var args []any

	if filter.Category != "" {
		args = append(args, filter.Category)
		query += ` AND category = $` + itoa(len(args))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += ` AND status = $` + itoa(len(args))
	}
	if filter.Grade != "" {
		args = append(args, string(filter.Grade))
		query += ` AND grade = $` + itoa(len(args))
	}
	query += ` ORDER BY seq ASC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 500
	}
	args = append(args, limit)
	query += ` LIMIT $` + itoa(len(args))

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += ` OFFSET $` + itoa(len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list components")
	}
	defer rows.Close()

	var out []model.Component
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "postgres: scan component")
		}
		var c model.Component
		if err := json.Unmarshal([]byte(payload), &c); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal component")
		}
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list components iterate")
}

func (s *PostgresStore) UpdateComponent(ctx context.Context, c *model.Component) error {
	if err := c.Validate(); err != nil {
		return err
	}
	payload, err := json.Marshal(c)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal component")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE components SET category = $1, status = $2, grade = $3, payload = $4 WHERE id = $5`,
		c.Category, string(c.Status), string(c.Diagnostic.Grade), string(payload), c.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update component %s", c.ID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "component %s", c.ID)
	}
	return nil
}

func (s *PostgresStore) SaveOrder(ctx context.Context, o *model.Order) error {
	payload, err := json.Marshal(o)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal order")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO orders (id, status, payload, placed_at) VALUES ($1, $2, $3, $4)`,
		o.ID, string(o.Status), string(payload), o.PlacedAt.UTC(),
	)
	return eris.Wrapf(err, "postgres: save order %s", o.ID)
}

func (s *PostgresStore) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	var payload, status string
	err := s.pool.QueryRow(ctx, `SELECT payload, status FROM orders WHERE id = $1`, id).Scan(&payload, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get order %s", id)
	}

	var o model.Order
	if err := json.Unmarshal([]byte(payload), &o); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal order")
	}
	o.Status = model.OrderStatus(status)
	return &o, nil
}

func (s *PostgresStore) ListOrders(ctx context.Context, limit int) ([]model.Order, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx,
		`SELECT payload, status FROM orders ORDER BY placed_at DESC LIMIT $1`, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list orders")
	}
	defer rows.Close()

	var out []model.Order
	for rows.Next() {
		var payload, status string
		if err := rows.Scan(&payload, &status); err != nil {
			return nil, eris.Wrap(err, "postgres: scan order")
		}
		var o model.Order
		if err := json.Unmarshal([]byte(payload), &o); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal order")
		}
		o.Status = model.OrderStatus(status)
		out = append(out, o)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list orders iterate")
}

func (s *PostgresStore) UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE orders SET status = $1, payload = jsonb_set(payload, '{status}', to_jsonb($1::text)) WHERE id = $2`,
		string(status), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update order status %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "order %s", id)
	}
	return nil
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
