package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/pressrun/backoffice/internal/domain/model"
	apperrors "github.com/pressrun/backoffice/internal/errors"
)

// CounterpartyRepo provides database operations for counterparties.
type CounterpartyRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewCounterpartyRepo creates a CounterpartyRepo with the given database handle.
func NewCounterpartyRepo(db *sql.DB, tp TimeProvider) *CounterpartyRepo {
	if tp == nil {
		tp = &RealTimeProvider{}
	}
	return &CounterpartyRepo{DB: db, timeProvider: tp}
}

const counterpartyColumns = `id, name, kind, code, created_at, updated_at`

// Create registers a counterparty. Codes, when present, are uppercased and
// unique; they seed the per-counterparty document numbering sequence.
func (r *CounterpartyRepo) Create(ctx context.Context, req *model.CreateCounterpartyRequest) (*model.Counterparty, error) {
	if req == nil {
		return nil, errors.New("create counterparty request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var code *string
	if req.Code != nil {
		normalized := strings.ToUpper(strings.TrimSpace(*req.Code))
		code = &normalized
	}

	now := r.timeProvider.Now().UTC()
	row := r.DB.QueryRowContext(ctx, `
		INSERT INTO counterparties (name, kind, code, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		RETURNING `+counterpartyColumns,
		req.Name, req.Kind, code, now)
	cp, err := scanCounterparty(row)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return cp, nil
}

// GetByID retrieves a counterparty by ID.
func (r *CounterpartyRepo) GetByID(ctx context.Context, id string) (*model.Counterparty, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+counterpartyColumns+`
		FROM counterparties
		WHERE id = $1
	`, id)
	cp, err := scanCounterparty(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCounterpartyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get counterparty: %w", err)
	}
	return cp, nil
}

// List returns all counterparties ordered by name.
func (r *CounterpartyRepo) List(ctx context.Context) ([]*model.Counterparty, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+counterpartyColumns+`
		FROM counterparties
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list counterparties: %w", err)
	}
	defer rows.Close()

	var cps []*model.Counterparty
	for rows.Next() {
		cp, scanErr := scanCounterparty(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan counterparty: %w", scanErr)
		}
		cps = append(cps, cp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate counterparties: %w", err)
	}
	return cps, nil
}

func scanCounterparty(scanner rowScanner) (*model.Counterparty, error) {
	var (
		cp   model.Counterparty
		code sql.NullString
	)
	if err := scanner.Scan(&cp.ID, &cp.Name, &cp.Kind, &code, &cp.CreatedAt, &cp.UpdatedAt); err != nil {
		return nil, err
	}
	cp.Code = nullableString(code)
	return &cp, nil
}
