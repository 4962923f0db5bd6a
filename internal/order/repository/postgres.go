package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"delta-market/backend/internal/order/domain"
)

// PostgresRepository persists orders in the orders table. Durability and
// same-row serialization come from the database itself: Complete is a
// conditional UPDATE, so two concurrent completes of the same ID cannot race
// into inconsistent state.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an order repository that uses the given db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const orderColumns = `id, name, email, product, plan, price, payment, platform, referral, status, created_at, completed_at`

// Create persists the order. Returns domain.ErrOrderIDTaken when the ID exists.
func (r *PostgresRepository) Create(ctx context.Context, o *domain.Order) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO NOTHING`,
		o.ID, o.Name, o.Email, o.Product, o.Plan, o.Price, o.Payment, o.Platform,
		o.Referral, string(o.Status), o.CreatedAt, o.CompletedAt,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrOrderIDTaken
	}
	return nil
}

// GetByID returns the order for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return o, nil
}

// Complete marks the order completed. The WHERE status = 'pending' guard makes
// exactly one of any set of concurrent completes observe already=false.
func (r *PostgresRepository) Complete(ctx context.Context, id string, at time.Time) (*domain.Order, bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = $2, completed_at = $3
		WHERE id = $1 AND status = $4`,
		id, string(domain.StatusCompleted), at, string(domain.StatusPending),
	)
	if err != nil {
		return nil, false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, false, err
	}
	o, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if o == nil {
		return nil, false, domain.ErrOrderNotFound
	}
	return o, n == 0, nil
}

// Delete removes the order permanently.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// List returns all orders.
func (r *PostgresRepository) List(ctx context.Context) ([]*domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var o domain.Order
	var status string
	var completedAt sql.NullTime
	err := row.Scan(&o.ID, &o.Name, &o.Email, &o.Product, &o.Plan, &o.Price,
		&o.Payment, &o.Platform, &o.Referral, &status, &o.CreatedAt, &completedAt)
	if err != nil {
		return nil, err
	}
	o.Status = domain.Status(status)
	if completedAt.Valid {
		t := completedAt.Time
		o.CompletedAt = &t
	}
	return &o, nil
}
