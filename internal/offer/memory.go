package offer

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepository is the demo-mode fixture store for offers.
type MemoryRepository struct {
	mu     sync.Mutex
	offers map[string]*Offer
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{offers: map[string]*Offer{}}
}

func (m *MemoryRepository) Create(_ context.Context, o *Offer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *o
	m.offers[o.ID] = &cp
	return nil
}

func (m *MemoryRepository) GetByID(_ context.Context, id string) (*Offer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.offers[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *MemoryRepository) Update(_ context.Context, o *Offer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.offers[o.ID]
	if !ok || cur.OwnerID != o.OwnerID {
		return ErrNotFound
	}
	cur.Title = o.Title
	cur.Description = o.Description
	cur.Type = o.Type
	cur.PriceCents = o.PriceCents
	cur.DeliveryDays = o.DeliveryDays
	cur.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryRepository) SetActive(_ context.Context, id, ownerID string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.offers[id]
	if !ok || o.OwnerID != ownerID {
		return ErrNotFound
	}
	o.IsActive = active
	o.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryRepository) list(match func(*Offer) bool) []Offer {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Offer
	for _, o := range m.offers {
		if match(o) {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *MemoryRepository) ListActive(_ context.Context, f Filter) ([]Offer, error) {
	return m.list(func(o *Offer) bool {
		if !o.IsActive {
			return false
		}
		if f.Type != "" && o.Type != f.Type {
			return false
		}
		if f.MaxPriceCents > 0 && o.PriceCents > f.MaxPriceCents {
			return false
		}
		if f.OwnerID != "" && o.OwnerID != f.OwnerID {
			return false
		}
		return true
	}), nil
}

func (m *MemoryRepository) ListByOwner(_ context.Context, ownerID string) ([]Offer, error) {
	return m.list(func(o *Offer) bool { return o.OwnerID == ownerID }), nil
}

func (m *MemoryRepository) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.offers)), nil
}
