package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stringdesk/stringing-service/internal/domain"
)

// StringRepository manages the string catalog.
type StringRepository interface {
	Create(ctx context.Context, option *domain.StringOption) error
	Update(ctx context.Context, option *domain.StringOption) error
	GetByID(ctx context.Context, id string) (*domain.StringOption, error)
	List(ctx context.Context, activeOnly bool) ([]domain.StringOption, error)
	Delete(ctx context.Context, id string) error
}

type stringRepository struct {
	pool *pgxpool.Pool
}

// NewStringRepository builds repository.
func NewStringRepository(pool *pgxpool.Pool) StringRepository {
	return &stringRepository{pool: pool}
}

func (r *stringRepository) Create(ctx context.Context, option *domain.StringOption) error {
	const query = `
        INSERT INTO string_options (name, brand, gauge, active, price_cents)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		option.Name,
		option.Brand,
		option.Gauge,
		option.Active,
		option.PriceCents,
	).Scan(&option.ID, &option.CreatedAt, &option.UpdatedAt)
}

func (r *stringRepository) Update(ctx context.Context, option *domain.StringOption) error {
	const query = `
        UPDATE string_options SET name=$1, brand=$2, gauge=$3, active=$4, price_cents=$5, updated_at=NOW()
        WHERE id=$6`
	cmd, err := r.pool.Exec(ctx, query,
		option.Name,
		option.Brand,
		option.Gauge,
		option.Active,
		option.PriceCents,
		option.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *stringRepository) GetByID(ctx context.Context, id string) (*domain.StringOption, error) {
	const query = `
        SELECT id, name, brand, gauge, active, price_cents, created_at, updated_at
        FROM string_options WHERE id=$1`
	var option domain.StringOption
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&option.ID,
		&option.Name,
		&option.Brand,
		&option.Gauge,
		&option.Active,
		&option.PriceCents,
		&option.CreatedAt,
		&option.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &option, nil
}

func (r *stringRepository) List(ctx context.Context, activeOnly bool) ([]domain.StringOption, error) {
	query := `
        SELECT id, name, brand, gauge, active, price_cents, created_at, updated_at
        FROM string_options`
	if activeOnly {
		query += " WHERE active"
	}
	query += " ORDER BY brand, name"

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.StringOption
	for rows.Next() {
		var option domain.StringOption
		if err := rows.Scan(
			&option.ID,
			&option.Name,
			&option.Brand,
			&option.Gauge,
			&option.Active,
			&option.PriceCents,
			&option.CreatedAt,
			&option.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, option)
	}
	return result, rows.Err()
}

func (r *stringRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM string_options WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
