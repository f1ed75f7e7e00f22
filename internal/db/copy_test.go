package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyFrom_EmptyRows(t *testing.T) {
	n, err := CopyFrom(context.Background(), nil, "components", []string{"id", "payload"}, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestCopyFrom_Success(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"components"}, []string{"id", "payload"}).WillReturnResult(2)

	rows := [][]any{{"a", "{}"}, {"b", "{}"}}
	n, err := CopyFrom(context.Background(), mock, "components", []string{"id", "payload"}, rows)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFrom_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"components"}, []string{"id", "payload"}).
		WillReturnError(fmt.Errorf("copy failed"))

	_, err = CopyFrom(context.Background(), mock, "components", []string{"id", "payload"}, [][]any{{"a", "{}"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COPY INTO components")
	assert.NoError(t, mock.ExpectationsWereMet())
}
