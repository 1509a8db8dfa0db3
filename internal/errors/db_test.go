package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapDBErrorNil(t *testing.T) {
	assert.NoError(t, MapDBError(nil))
}

func TestMapDBErrorNoRows(t *testing.T) {
	err := MapDBError(fmt.Errorf("get job: %w", pgx.ErrNoRows))
	assert.True(t, IsNotFound(err))
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestMapDBErrorUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:   pgerrcode.UniqueViolation,
		Detail: "Key (size_key)=(8.5x11) already exists.",
	}
	err := MapDBError(pgErr)
	assert.True(t, IsConflict(err))
	assert.Equal(t, "size_key", GetField(err))
}

func TestMapDBErrorUniqueViolationColumnName(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:       pgerrcode.UniqueViolation,
		ColumnName: "code",
		Detail:     "Key (something_else)=(x) already exists.",
	}
	err := MapDBError(pgErr)
	// Column name from the server wins over detail parsing.
	assert.Equal(t, "code", GetField(err))
}

func TestMapDBErrorUniqueViolationNoDetail(t *testing.T) {
	err := MapDBError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})
	assert.True(t, IsConflict(err))
	assert.Empty(t, GetField(err))
}

func TestMapDBErrorForeignKeyMessages(t *testing.T) {
	cases := []struct {
		table string
		want  string
	}{
		{"counterparties", "referenced counterparty does not exist"},
		{"chain_links", "referenced chain document does not exist"},
		{"jobs", "referenced job does not exist"},
		{"pricing_rules", "referenced row does not exist or is still in use"},
	}
	for _, tc := range cases {
		t.Run(tc.table, func(t *testing.T) {
			err := MapDBError(&pgconn.PgError{
				Code:      pgerrcode.ForeignKeyViolation,
				TableName: tc.table,
			})
			assert.True(t, IsValidation(err))
			var appErr *AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tc.want, appErr.Message)
		})
	}
}

func TestMapDBErrorConstraintViolations(t *testing.T) {
	check := MapDBError(&pgconn.PgError{Code: pgerrcode.CheckViolation, ColumnName: "quantity"})
	assert.True(t, IsValidation(check))
	assert.Equal(t, "quantity", GetField(check))

	notNull := MapDBError(&pgconn.PgError{Code: pgerrcode.NotNullViolation, ColumnName: "job_number"})
	assert.True(t, IsValidation(notNull))
	assert.Equal(t, "job_number", GetField(notNull))
}

func TestMapDBErrorContext(t *testing.T) {
	timeout := MapDBError(fmt.Errorf("query: %w", context.DeadlineExceeded))
	assert.Equal(t, ErrCodeTimeout, GetCode(timeout))

	canceled := MapDBError(context.Canceled)
	assert.Equal(t, ErrCodeCanceled, GetCode(canceled))
}

func TestMapDBErrorUnknownPgError(t *testing.T) {
	err := MapDBError(&pgconn.PgError{Code: pgerrcode.DeadlockDetected})
	assert.True(t, IsInternal(err))
}

func TestMapDBErrorPassesThroughUnrecognized(t *testing.T) {
	plain := errors.New("driver: bad connection")
	assert.Same(t, plain, MapDBError(plain))
}

func TestIsUniqueViolation(t *testing.T) {
	wrapped := fmt.Errorf("insert: %w", &pgconn.PgError{Code: pgerrcode.UniqueViolation})
	assert.True(t, IsUniqueViolation(wrapped))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}))
	assert.False(t, IsUniqueViolation(errors.New("other")))
}
