package errors

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// reKeyField extracts the field name from a unique violation detail:
// "Key (field)=(value) already exists.".
var reKeyField = regexp.MustCompile(`Key \(([^)]+)\)=`)

// MapDBError maps database errors to AppError instances:
//   - pgx.ErrNoRows → NotFound
//   - unique violations → Conflict
//   - foreign key violations → Validation (referenced row missing or in use)
//   - check / not-null violations → Validation
//   - context deadline / cancel → Timeout / Canceled
//
// Unrecognized errors are returned unchanged.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &AppError{Code: ErrCodeTimeout, Message: "database operation timed out", Cause: err}
	}
	if errors.Is(err, context.Canceled) {
		return &AppError{Code: ErrCodeCanceled, Message: "database operation canceled", Cause: err}
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return &AppError{Code: ErrCodeNotFound, Message: "resource not found", Cause: err}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return mapPgError(pgErr)
	}
	return err
}

func mapPgError(pgErr *pgconn.PgError) error {
	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		return &AppError{
			Code:    ErrCodeConflict,
			Message: "value already exists",
			Field:   uniqueViolationField(pgErr),
			Cause:   pgErr,
		}
	case pgerrcode.ForeignKeyViolation:
		return &AppError{
			Code:    ErrCodeValidation,
			Message: foreignKeyMessage(pgErr),
			Cause:   pgErr,
		}
	case pgerrcode.CheckViolation:
		return &AppError{
			Code:    ErrCodeValidation,
			Message: "value violates a data constraint",
			Field:   pgErr.ColumnName,
			Cause:   pgErr,
		}
	case pgerrcode.NotNullViolation:
		return &AppError{
			Code:    ErrCodeValidation,
			Message: "required field is missing",
			Field:   pgErr.ColumnName,
			Cause:   pgErr,
		}
	default:
		return &AppError{Code: ErrCodeInternal, Message: "database error", Cause: pgErr}
	}
}

func uniqueViolationField(pgErr *pgconn.PgError) string {
	if pgErr.ColumnName != "" {
		return pgErr.ColumnName
	}
	if pgErr.Detail != "" {
		if m := reKeyField.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
			return m[1]
		}
	}
	return ""
}

func foreignKeyMessage(pgErr *pgconn.PgError) string {
	table := strings.ToLower(strings.TrimSpace(pgErr.TableName))
	switch {
	case strings.Contains(table, "counterpart"):
		return "referenced counterparty does not exist"
	case strings.Contains(table, "chain_link"):
		return "referenced chain document does not exist"
	case strings.Contains(table, "job"):
		return "referenced job does not exist"
	default:
		return "referenced row does not exist or is still in use"
	}
}

// IsUniqueViolation reports whether err is a raw unique constraint violation,
// useful where a conflict is absorbed as an idempotent no-op instead of
// surfaced.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
