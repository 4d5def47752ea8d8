package order

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository is the persistence contract for orders. Status changes go
// through conditional updates keyed on the current status, so concurrent
// transitions cannot race past each other; the boolean result reports
// whether the swap happened.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	GetBySessionID(ctx context.Context, sessionID string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	ListAll(ctx context.Context, limit, offset int) ([]Order, error)
	ListDeliveredBefore(ctx context.Context, cutoff time.Time, limit int) ([]Order, error)
	ListPaidBefore(ctx context.Context, cutoff time.Time, limit int) ([]Order, error)

	// Transition swaps status from -> to iff the row still holds from.
	Transition(ctx context.Context, id string, from, to Status) (bool, error)
	// MarkDelivered is the paid -> delivered swap plus the delivery payload.
	MarkDelivered(ctx context.Context, id, content, meetingLink string, at time.Time) (bool, error)

	SellerEarnings(ctx context.Context, sellerID string) (EarningsSummary, error)
	Stats(ctx context.Context) (Stats, error)
}

type pgRepo struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) Repository {
	return &pgRepo{pool: pool}
}

const orderCols = `id, offer_id, buyer_id, seller_id, status, amount_cents,
	platform_fee_cents, seller_amount_cents, payment_session_id,
	COALESCE(content, ''), COALESCE(meeting_link, ''), delivered_at, created_at, updated_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.OfferID, &o.BuyerID, &o.SellerID, &o.Status,
		&o.AmountCents, &o.PlatformFeeCents, &o.SellerAmountCents,
		&o.PaymentSessionID, &o.Content, &o.MeetingLink, &o.DeliveredAt,
		&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (r *pgRepo) Create(ctx context.Context, o *Order) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO orders (id, offer_id, buyer_id, seller_id, status, amount_cents,
			platform_fee_cents, seller_amount_cents, payment_session_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)`,
		o.ID, o.OfferID, o.BuyerID, o.SellerID, o.Status, o.AmountCents,
		o.PlatformFeeCents, o.SellerAmountCents, o.PaymentSessionID, o.CreatedAt)
	return err
}

func (r *pgRepo) GetByID(ctx context.Context, id string) (*Order, error) {
	return scanOrder(r.pool.QueryRow(ctx,
		`SELECT `+orderCols+` FROM orders WHERE id = $1`, id))
}

func (r *pgRepo) GetBySessionID(ctx context.Context, sessionID string) (*Order, error) {
	return scanOrder(r.pool.QueryRow(ctx,
		`SELECT `+orderCols+` FROM orders WHERE payment_session_id = $1`, sessionID))
}

func (r *pgRepo) listQuery(ctx context.Context, query string, args ...any) ([]Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func (r *pgRepo) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	return r.listQuery(ctx,
		`SELECT `+orderCols+` FROM orders
		 WHERE buyer_id = $1 OR seller_id = $1 ORDER BY created_at DESC`, userID)
}

func (r *pgRepo) ListAll(ctx context.Context, limit, offset int) ([]Order, error) {
	return r.listQuery(ctx,
		`SELECT `+orderCols+` FROM orders ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
}

func (r *pgRepo) ListDeliveredBefore(ctx context.Context, cutoff time.Time, limit int) ([]Order, error) {
	return r.listQuery(ctx,
		`SELECT `+orderCols+` FROM orders
		 WHERE status = 'delivered' AND delivered_at < $1
		 ORDER BY delivered_at ASC LIMIT $2`, cutoff, limit)
}

func (r *pgRepo) ListPaidBefore(ctx context.Context, cutoff time.Time, limit int) ([]Order, error) {
	return r.listQuery(ctx,
		`SELECT `+orderCols+` FROM orders
		 WHERE status = 'paid' AND created_at < $1
		 ORDER BY created_at ASC LIMIT $2`, cutoff, limit)
}

func (r *pgRepo) Transition(ctx context.Context, id string, from, to Status) (bool, error) {
	res, err := r.pool.Exec(ctx,
		`UPDATE orders SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`,
		id, from, to)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() > 0, nil
}

func (r *pgRepo) MarkDelivered(ctx context.Context, id, content, meetingLink string, at time.Time) (bool, error) {
	res, err := r.pool.Exec(ctx,
		`UPDATE orders
		 SET status = 'delivered', content = NULLIF($2, ''), meeting_link = NULLIF($3, ''),
		     delivered_at = $4, updated_at = NOW()
		 WHERE id = $1 AND status = 'paid'`,
		id, content, meetingLink, at)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() > 0, nil
}

func (r *pgRepo) SellerEarnings(ctx context.Context, sellerID string) (EarningsSummary, error) {
	var s EarningsSummary
	err := r.pool.QueryRow(ctx,
		`SELECT
			COALESCE(SUM(seller_amount_cents) FILTER (WHERE status IN ('paid','delivered')), 0),
			COALESCE(SUM(seller_amount_cents) FILTER (WHERE status = 'completed'), 0)
		 FROM orders WHERE seller_id = $1`, sellerID,
	).Scan(&s.PendingCents, &s.ReleasedCents)
	return s, err
}

func (r *pgRepo) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{ByStatus: map[Status]int64{}}
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM orders GROUP BY status`)
	if err != nil {
		return stats, err
	}
	defer rows.Close()
	for rows.Next() {
		var st Status
		var n int64
		if err := rows.Scan(&st, &n); err != nil {
			return stats, err
		}
		stats.ByStatus[st] = n
	}
	if err := rows.Err(); err != nil {
		return stats, err
	}
	err = r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0), COALESCE(SUM(platform_fee_cents), 0)
		 FROM orders WHERE status = 'completed'`,
	).Scan(&stats.GrossCents, &stats.PlatformFeeCents)
	return stats, err
}
