package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hirelane/recruitment-service/internal/domain"
)

// LookupRepository manages form support tables.
type LookupRepository interface {
	Create(ctx context.Context, item *domain.LookupItem) error
	Update(ctx context.Context, item *domain.LookupItem) error
	GetByID(ctx context.Context, id string) (*domain.LookupItem, error)
	ListByKind(ctx context.Context, kind domain.LookupKind, displayedOnly bool) ([]domain.LookupItem, error)
	GetMany(ctx context.Context, kind domain.LookupKind, ids []string) ([]domain.LookupItem, error)
}

type lookupRepository struct {
	pool *pgxpool.Pool
}

// NewLookupRepository constructs repository.
func NewLookupRepository(pool *pgxpool.Pool) LookupRepository {
	return &lookupRepository{pool: pool}
}

const lookupColumns = `id, kind, name, short_name, display_in_form`

func scanLookup(row pgx.Row) (*domain.LookupItem, error) {
	var item domain.LookupItem
	if err := row.Scan(&item.ID, &item.Kind, &item.Name, &item.ShortName, &item.DisplayInForm); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *lookupRepository) Create(ctx context.Context, item *domain.LookupItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO lookup_items (id, kind, name, short_name, display_in_form) VALUES ($1, $2, $3, $4, $5)`,
		item.ID, item.Kind, item.Name, item.ShortName, item.DisplayInForm,
	)
	return mapErr("create lookup", err)
}

func (r *lookupRepository) Update(ctx context.Context, item *domain.LookupItem) error {
	cmd, err := r.pool.Exec(ctx,
		`UPDATE lookup_items SET name=$1, short_name=$2, display_in_form=$3 WHERE id=$4 AND kind=$5`,
		item.Name, item.ShortName, item.DisplayInForm, item.ID, item.Kind,
	)
	if err != nil {
		return mapErr("update lookup", err)
	}
	return requireAffected("update lookup", cmd)
}

func (r *lookupRepository) GetByID(ctx context.Context, id string) (*domain.LookupItem, error) {
	item, err := scanLookup(r.pool.QueryRow(ctx, `SELECT `+lookupColumns+` FROM lookup_items WHERE id=$1`, id))
	return item, mapErr("get lookup", err)
}

func (r *lookupRepository) ListByKind(ctx context.Context, kind domain.LookupKind, displayedOnly bool) ([]domain.LookupItem, error) {
	query := `SELECT ` + lookupColumns + ` FROM lookup_items
        WHERE kind=$1 AND (NOT $2 OR display_in_form)
        ORDER BY name`
	return r.collect(ctx, "list lookups", query, kind, displayedOnly)
}

func (r *lookupRepository) GetMany(ctx context.Context, kind domain.LookupKind, ids []string) ([]domain.LookupItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + lookupColumns + ` FROM lookup_items WHERE kind=$1 AND id::text = ANY($2) ORDER BY name`
	return r.collect(ctx, "get lookups", query, kind, ids)
}

func (r *lookupRepository) collect(ctx context.Context, op, query string, args ...any) ([]domain.LookupItem, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapErr(op, err)
	}
	defer rows.Close()

	var items []domain.LookupItem
	for rows.Next() {
		item, err := scanLookup(rows)
		if err != nil {
			return nil, mapErr(op, err)
		}
		items = append(items, *item)
	}
	return items, mapErr(op, rows.Err())
}
