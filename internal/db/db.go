package db

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens a pgx pool and verifies the connection.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	log.Println("Connected to Postgres successfully")
	return pool, nil
}

// EnsureSchema creates any missing tables and indexes. Statements are
// idempotent so the server can run this on every boot.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'applicant' CHECK (role IN ('applicant','student','admin')),
			bio TEXT,
			university TEXT,
			study_program TEXT,
			country TEXT,
			avatar_url TEXT,
			is_verified BOOLEAN NOT NULL DEFAULT FALSE,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS offers (
			id UUID PRIMARY KEY,
			owner_id UUID NOT NULL REFERENCES users(id),
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			offer_type TEXT NOT NULL CHECK (offer_type IN ('written_review','video_call','chat_session')),
			price_cents BIGINT NOT NULL,
			delivery_days INTEGER NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_offers_owner ON offers(owner_id)`,
		`CREATE INDEX IF NOT EXISTS idx_offers_active ON offers(is_active) WHERE is_active`,
		`CREATE TABLE IF NOT EXISTS orders (
			id UUID PRIMARY KEY,
			offer_id UUID NOT NULL REFERENCES offers(id),
			buyer_id UUID NOT NULL REFERENCES users(id),
			seller_id UUID NOT NULL REFERENCES users(id),
			status TEXT NOT NULL CHECK (status IN ('pending','paid','delivered','completed','cancelled','refunded')),
			amount_cents BIGINT NOT NULL,
			platform_fee_cents BIGINT NOT NULL,
			seller_amount_cents BIGINT NOT NULL,
			payment_session_id TEXT NOT NULL UNIQUE,
			content TEXT,
			meeting_link TEXT,
			delivered_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CHECK (amount_cents = platform_fee_cents + seller_amount_cents)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_buyer ON orders(buyer_id)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_seller ON orders(seller_id)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status)`,
		`CREATE TABLE IF NOT EXISTS reviews (
			id UUID PRIMARY KEY,
			order_id UUID NOT NULL UNIQUE REFERENCES orders(id),
			buyer_id UUID NOT NULL REFERENCES users(id),
			seller_id UUID NOT NULL REFERENCES users(id),
			rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
			comment TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reviews_seller ON reviews(seller_id)`,
		`CREATE TABLE IF NOT EXISTS universities (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			country TEXT NOT NULL,
			city TEXT NOT NULL,
			logo_url TEXT,
			website TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS payment_events (
			event_id TEXT PRIMARY KEY,
			event_type TEXT NOT NULL,
			processed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS payment_dead_letters (
			id UUID PRIMARY KEY,
			event_id TEXT NOT NULL,
			event_type TEXT NOT NULL,
			payload BYTEA NOT NULL,
			reason TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}
	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
