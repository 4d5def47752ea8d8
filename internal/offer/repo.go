package offer

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, o *Offer) error
	GetByID(ctx context.Context, id string) (*Offer, error)
	Update(ctx context.Context, o *Offer) error
	SetActive(ctx context.Context, id, ownerID string, active bool) error
	ListActive(ctx context.Context, f Filter) ([]Offer, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Offer, error)
	Count(ctx context.Context) (int64, error)
}

type pgRepo struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) Repository {
	return &pgRepo{pool: pool}
}

const offerCols = `id, owner_id, title, description, offer_type, price_cents,
	delivery_days, is_active, created_at, updated_at`

func scanOffer(row pgx.Row) (*Offer, error) {
	var o Offer
	err := row.Scan(&o.ID, &o.OwnerID, &o.Title, &o.Description, &o.Type,
		&o.PriceCents, &o.DeliveryDays, &o.IsActive, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (r *pgRepo) Create(ctx context.Context, o *Offer) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO offers (id, owner_id, title, description, offer_type, price_cents,
			delivery_days, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)`,
		o.ID, o.OwnerID, o.Title, o.Description, o.Type, o.PriceCents,
		o.DeliveryDays, o.IsActive, o.CreatedAt)
	return err
}

func (r *pgRepo) GetByID(ctx context.Context, id string) (*Offer, error) {
	return scanOffer(r.pool.QueryRow(ctx,
		`SELECT `+offerCols+` FROM offers WHERE id = $1`, id))
}

func (r *pgRepo) Update(ctx context.Context, o *Offer) error {
	res, err := r.pool.Exec(ctx,
		`UPDATE offers
		 SET title = $3, description = $4, offer_type = $5, price_cents = $6,
		     delivery_days = $7, updated_at = NOW()
		 WHERE id = $1 AND owner_id = $2`,
		o.ID, o.OwnerID, o.Title, o.Description, o.Type, o.PriceCents, o.DeliveryDays)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgRepo) SetActive(ctx context.Context, id, ownerID string, active bool) error {
	res, err := r.pool.Exec(ctx,
		`UPDATE offers SET is_active = $3, updated_at = NOW() WHERE id = $1 AND owner_id = $2`,
		id, ownerID, active)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgRepo) ListActive(ctx context.Context, f Filter) ([]Offer, error) {
	query := `SELECT ` + offerCols + ` FROM offers WHERE is_active`
	args := []any{}
	if f.Type != "" {
		args = append(args, f.Type)
		query += fmt.Sprintf(` AND offer_type = $%d`, len(args))
	}
	if f.MaxPriceCents > 0 {
		args = append(args, f.MaxPriceCents)
		query += fmt.Sprintf(` AND price_cents <= $%d`, len(args))
	}
	if f.OwnerID != "" {
		args = append(args, f.OwnerID)
		query += fmt.Sprintf(` AND owner_id = $%d`, len(args))
	}
	query += ` ORDER BY created_at DESC`
	return r.list(ctx, query, args...)
}

func (r *pgRepo) ListByOwner(ctx context.Context, ownerID string) ([]Offer, error) {
	return r.list(ctx,
		`SELECT `+offerCols+` FROM offers WHERE owner_id = $1 ORDER BY created_at DESC`,
		ownerID)
}

func (r *pgRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM offers`).Scan(&n)
	return n, err
}

func (r *pgRepo) list(ctx context.Context, query string, args ...any) ([]Offer, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var offers []Offer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		offers = append(offers, *o)
	}
	return offers, rows.Err()
}
