package order

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepository is the in-memory fixture store used in demo mode and in
// tests. It honors the same conditional-update semantics as the Postgres
// repository, including the status CAS.
type MemoryRepository struct {
	mu     sync.Mutex
	orders map[string]*Order
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{orders: map[string]*Order{}}
}

func (m *MemoryRepository) Create(_ context.Context, o *Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *o
	m.orders[o.ID] = &cp
	return nil
}

func (m *MemoryRepository) GetByID(_ context.Context, id string) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *MemoryRepository) GetBySessionID(_ context.Context, sessionID string) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.PaymentSessionID == sessionID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryRepository) list(match func(*Order) bool) []Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Order
	for _, o := range m.orders {
		if match(o) {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *MemoryRepository) ListByUser(_ context.Context, userID string) ([]Order, error) {
	return m.list(func(o *Order) bool {
		return o.BuyerID == userID || o.SellerID == userID
	}), nil
}

func (m *MemoryRepository) ListAll(_ context.Context, limit, offset int) ([]Order, error) {
	all := m.list(func(*Order) bool { return true })
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (m *MemoryRepository) ListDeliveredBefore(_ context.Context, cutoff time.Time, limit int) ([]Order, error) {
	out := m.list(func(o *Order) bool {
		return o.Status == StatusDelivered && o.DeliveredAt != nil && o.DeliveredAt.Before(cutoff)
	})
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryRepository) ListPaidBefore(_ context.Context, cutoff time.Time, limit int) ([]Order, error) {
	out := m.list(func(o *Order) bool {
		return o.Status == StatusPaid && o.CreatedAt.Before(cutoff)
	})
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryRepository) Transition(_ context.Context, id string, from, to Status) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	o.UpdatedAt = time.Now()
	return true, nil
}

func (m *MemoryRepository) MarkDelivered(_ context.Context, id, content, meetingLink string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok || o.Status != StatusPaid {
		return false, nil
	}
	o.Status = StatusDelivered
	o.Content = content
	o.MeetingLink = meetingLink
	deliveredAt := at
	o.DeliveredAt = &deliveredAt
	o.UpdatedAt = time.Now()
	return true, nil
}

func (m *MemoryRepository) SellerEarnings(_ context.Context, sellerID string) (EarningsSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var s EarningsSummary
	for _, o := range m.orders {
		if o.SellerID != sellerID {
			continue
		}
		switch o.Status {
		case StatusPaid, StatusDelivered:
			s.PendingCents += o.SellerAmountCents
		case StatusCompleted:
			s.ReleasedCents += o.SellerAmountCents
		}
	}
	return s, nil
}

func (m *MemoryRepository) Stats(_ context.Context) (Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := Stats{ByStatus: map[Status]int64{}}
	for _, o := range m.orders {
		stats.ByStatus[o.Status]++
		if o.Status == StatusCompleted {
			stats.GrossCents += o.AmountCents
			stats.PlatformFeeCents += o.PlatformFeeCents
		}
	}
	return stats, nil
}
