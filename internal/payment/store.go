package payment

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EventStore records processed webhook event ids (the idempotency key for
// at-least-once gateway delivery) and dead-letters events that verified but
// could not be applied, so paid money is never dropped with only a log line.
type EventStore interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	MarkProcessed(ctx context.Context, eventID, eventType string) error
	DeadLetter(ctx context.Context, eventID, eventType string, payload []byte, reason string) error
}

type pgEventStore struct {
	pool *pgxpool.Pool
}

func NewPgEventStore(pool *pgxpool.Pool) EventStore {
	return &pgEventStore{pool: pool}
}

func (s *pgEventStore) Seen(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM payment_events WHERE event_id = $1)`, eventID,
	).Scan(&exists)
	return exists, err
}

func (s *pgEventStore) MarkProcessed(ctx context.Context, eventID, eventType string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO payment_events (event_id, event_type, processed_at)
		 VALUES ($1, $2, $3) ON CONFLICT (event_id) DO NOTHING`,
		eventID, eventType, time.Now())
	return err
}

func (s *pgEventStore) DeadLetter(ctx context.Context, eventID, eventType string, payload []byte, reason string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO payment_dead_letters (id, event_id, event_type, payload, reason, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.New().String(), eventID, eventType, payload, reason, time.Now())
	return err
}

// MemoryEventStore is the fixture implementation for demo mode and tests.
type MemoryEventStore struct {
	mu          sync.Mutex
	seen        map[string]string
	deadLetters []DeadLetteredEvent
}

type DeadLetteredEvent struct {
	EventID   string
	EventType string
	Payload   []byte
	Reason    string
}

func NewMemoryEventStore() *MemoryEventStore {
	return &MemoryEventStore{seen: map[string]string{}}
}

func (s *MemoryEventStore) Seen(_ context.Context, eventID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seen[eventID]
	return ok, nil
}

func (s *MemoryEventStore) MarkProcessed(_ context.Context, eventID, eventType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen[eventID] = eventType
	return nil
}

func (s *MemoryEventStore) DeadLetter(_ context.Context, eventID, eventType string, payload []byte, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deadLetters = append(s.deadLetters, DeadLetteredEvent{
		EventID: eventID, EventType: eventType, Payload: payload, Reason: reason,
	})
	return nil
}

// DeadLetters returns a copy of the recorded dead letters.
func (s *MemoryEventStore) DeadLetters() []DeadLetteredEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]DeadLetteredEvent(nil), s.deadLetters...)
}
