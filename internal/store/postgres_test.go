package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roso1102/reboard/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgresStore_GetComponent_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT payload FROM components WHERE id = \$1`).
		WithArgs("nonexistent").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetComponent(context.Background(), "nonexistent")
	assert.True(t, eris.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetComponent(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	c := testComponent("ESP32", "Microcontroller", 92)
	payload, err := json.Marshal(c)
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT payload FROM components WHERE id = \$1`).
		WithArgs(c.ID).
		WillReturnRows(pgxmock.NewRows([]string{"payload"}).AddRow(string(payload)))

	got, err := s.GetComponent(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.Name, got.Name)
	assert.Equal(t, model.GradeA, got.Diagnostic.Grade)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveComponent(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	c := testComponent("DHT22", "Sensor", 88)
	mock.ExpectExec(`INSERT INTO components`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, s.SaveComponent(context.Background(), &c))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveComponent_Invalid(t *testing.T) {
	s, _ := newMockPostgresStore(t)

	c := testComponent("Bad", "Sensor", 60)
	c.Quantity = -3
	assert.Error(t, s.SaveComponent(context.Background(), &c), "validation runs before any SQL")
}

func TestPostgresStore_UpdateComponent_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	c := testComponent("Ghost", "Sensor", 60)
	mock.ExpectExec(`UPDATE components SET`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.UpdateComponent(context.Background(), &c)
	assert.True(t, eris.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListComponents_Filtered(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	c := testComponent("BME280", "Sensor", 75)
	payload, err := json.Marshal(c)
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT payload FROM components WHERE 1=1 AND category = \$1 AND grade = \$2 ORDER BY seq ASC LIMIT \$3`).
		WithArgs("Sensor", "B", 500).
		WillReturnRows(pgxmock.NewRows([]string{"payload"}).AddRow(string(payload)))

	got, err := s.ListComponents(context.Background(), ComponentFilter{Category: "Sensor", Grade: model.GradeB})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, c.ID, got[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_OrderStatus(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE orders SET status = \$1`).
		WithArgs("shipped", "order-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, s.UpdateOrderStatus(context.Background(), "order-1", model.OrderShipped))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ImportComponents(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	batch := []model.Component{
		testComponent("ESP32", "Microcontroller", 92),
		testComponent("DHT22", "Sensor", 60),
	}
	mock.ExpectCopyFrom(pgx.Identifier{"components"},
		[]string{"id", "category", "status", "grade", "payload", "tested_at"}).
		WillReturnResult(2)

	n, err := s.ImportComponents(context.Background(), batch)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
