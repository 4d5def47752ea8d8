package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/admitlink/admitlink/internal/config"
	"github.com/admitlink/admitlink/internal/db"
	"github.com/admitlink/admitlink/internal/order"
	"github.com/admitlink/admitlink/internal/payment"
)

const sweepBatch = 100

// The sweeper runs the periodic order maintenance passes: auto-completing
// orders stuck in delivered past the window, and optionally cancelling paid
// orders that never got a delivery.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	repo := order.NewPgRepository(pool)
	gateway := payment.NewClient(cfg.PaymentAPIURL, cfg.PaymentSecretKey)
	svc := order.NewService(repo, gateway, nil, nil, cfg.AutoCompleteAfter)

	log.Printf("[sweeper] running every %s (auto-complete after %s)", cfg.SweepInterval, cfg.AutoCompleteAfter)

	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	sweep(ctx, svc, cfg.StalePaidAfter)
	for {
		select {
		case <-ctx.Done():
			log.Println("[sweeper] shutting down")
			return
		case <-ticker.C:
			sweep(ctx, svc, cfg.StalePaidAfter)
		}
	}
}

func sweep(ctx context.Context, svc *order.Service, stalePaidAfter time.Duration) {
	n, err := svc.SweepAutoComplete(ctx, sweepBatch)
	if err != nil {
		log.Printf("[sweeper] auto-complete pass failed: %v", err)
	} else if n > 0 {
		log.Printf("[sweeper] auto-completed %d orders", n)
	}

	if stalePaidAfter <= 0 {
		return
	}
	n, err = svc.SweepStalePaid(ctx, stalePaidAfter, sweepBatch)
	if err != nil {
		log.Printf("[sweeper] stale-paid pass failed: %v", err)
	} else if n > 0 {
		log.Printf("[sweeper] cancelled %d stale paid orders", n)
	}
}
