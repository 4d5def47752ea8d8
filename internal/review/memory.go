package review

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepository backs demo mode.
type MemoryRepository struct {
	mu      sync.Mutex
	reviews map[string]*Review // keyed by order id
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{reviews: make(map[string]*Review)}
}

func (m *MemoryRepository) Create(_ context.Context, rv *Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reviews[rv.OrderID]; ok {
		return ErrExists
	}
	cp := *rv
	m.reviews[rv.OrderID] = &cp
	return nil
}

func (m *MemoryRepository) GetByOrder(_ context.Context, orderID string) (*Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rv, ok := m.reviews[orderID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rv
	return &cp, nil
}

func (m *MemoryRepository) ListBySeller(_ context.Context, sellerID string, limit, offset int) ([]Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Review
	for _, rv := range m.reviews {
		if rv.SellerID == sellerID {
			out = append(out, *rv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryRepository) SellerSummary(_ context.Context, sellerID string) (SellerSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := SellerSummary{SellerID: sellerID}
	var total int
	for _, rv := range m.reviews {
		if rv.SellerID == sellerID {
			s.TotalReviews++
			total += rv.Rating
		}
	}
	if s.TotalReviews > 0 {
		s.AverageRating = float64(total) / float64(s.TotalReviews)
	}
	return s, nil
}
