package review

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, r *Review) error
	GetByOrder(ctx context.Context, orderID string) (*Review, error)
	ListBySeller(ctx context.Context, sellerID string, limit, offset int) ([]Review, error)
	SellerSummary(ctx context.Context, sellerID string) (SellerSummary, error)
}

type pgRepo struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepo{pool: pool}
}

func (r *pgRepo) Create(ctx context.Context, rv *Review) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO reviews (id, order_id, buyer_id, seller_id, rating, comment, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rv.ID, rv.OrderID, rv.BuyerID, rv.SellerID, rv.Rating, rv.Comment, rv.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrExists
		}
		return err
	}
	return nil
}

func (r *pgRepo) GetByOrder(ctx context.Context, orderID string) (*Review, error) {
	rv := new(Review)
	err := r.pool.QueryRow(ctx,
		`SELECT r.id, r.order_id, r.buyer_id, u.name, r.seller_id, r.rating, r.comment, r.created_at
		 FROM reviews r
		 JOIN users u ON r.buyer_id = u.id
		 WHERE r.order_id = $1`,
		orderID,
	).Scan(&rv.ID, &rv.OrderID, &rv.BuyerID, &rv.BuyerName, &rv.SellerID, &rv.Rating, &rv.Comment, &rv.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rv, nil
}

func (r *pgRepo) ListBySeller(ctx context.Context, sellerID string, limit, offset int) ([]Review, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT r.id, r.order_id, r.buyer_id, u.name, r.seller_id, r.rating, r.comment, r.created_at
		 FROM reviews r
		 JOIN users u ON r.buyer_id = u.id
		 WHERE r.seller_id = $1
		 ORDER BY r.created_at DESC
		 LIMIT $2 OFFSET $3`,
		sellerID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Review
	for rows.Next() {
		var rv Review
		if err := rows.Scan(&rv.ID, &rv.OrderID, &rv.BuyerID, &rv.BuyerName, &rv.SellerID, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

func (r *pgRepo) SellerSummary(ctx context.Context, sellerID string) (SellerSummary, error) {
	s := SellerSummary{SellerID: sellerID}
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(AVG(rating), 0) FROM reviews WHERE seller_id = $1`,
		sellerID,
	).Scan(&s.TotalReviews, &s.AverageRating)
	return s, err
}
