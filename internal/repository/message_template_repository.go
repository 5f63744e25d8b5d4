package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// MessageTemplateRepository reads shop-edited message bodies. Keys without a
// row fall back to the built-in templates.
type MessageTemplateRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Upsert(ctx context.Context, key, body string) error
}

type messageTemplateRepository struct {
	pool *pgxpool.Pool
}

// NewMessageTemplateRepository builds repository.
func NewMessageTemplateRepository(pool *pgxpool.Pool) MessageTemplateRepository {
	return &messageTemplateRepository{pool: pool}
}

func (r *messageTemplateRepository) Get(ctx context.Context, key string) (string, error) {
	var body string
	err := r.pool.QueryRow(ctx, `SELECT body FROM message_templates WHERE template_key=$1`, key).Scan(&body)
	return body, err
}

func (r *messageTemplateRepository) Upsert(ctx context.Context, key, body string) error {
	const query = `
        INSERT INTO message_templates (template_key, body) VALUES ($1,$2)
        ON CONFLICT (template_key) DO UPDATE SET body=EXCLUDED.body, updated_at=NOW()`
	_, err := r.pool.Exec(ctx, query, key, body)
	return err
}
