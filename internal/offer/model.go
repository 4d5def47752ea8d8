package offer

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound   = errors.New("offer not found")
	ErrValidation = errors.New("invalid offer")
)

type Type string

const (
	TypeWrittenReview Type = "written_review"
	TypeVideoCall     Type = "video_call"
	TypeChatSession   Type = "chat_session"
)

const (
	MinPriceCents   = 500
	MaxPriceCents   = 50000
	MinDeliveryDays = 1
	MaxDeliveryDays = 30
)

// Offer is a consultation service listed by a student. Pausing an offer
// (is_active = false) hides it from discovery and checkout without touching
// order history.
type Offer struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Type         Type      `json:"offer_type"`
	PriceCents   int64     `json:"price_cents"`
	DeliveryDays int       `json:"delivery_days"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (t Type) Valid() bool {
	switch t {
	case TypeWrittenReview, TypeVideoCall, TypeChatSession:
		return true
	}
	return false
}

// Validate checks the listable bounds for price, delivery window, and type.
func (o *Offer) Validate() error {
	if o.Title == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if o.Description == "" {
		return fmt.Errorf("%w: description is required", ErrValidation)
	}
	if !o.Type.Valid() {
		return fmt.Errorf("%w: unknown offer type %q", ErrValidation, o.Type)
	}
	if o.PriceCents < MinPriceCents || o.PriceCents > MaxPriceCents {
		return fmt.Errorf("%w: price must be between %d and %d cents", ErrValidation, MinPriceCents, MaxPriceCents)
	}
	if o.DeliveryDays < MinDeliveryDays || o.DeliveryDays > MaxDeliveryDays {
		return fmt.Errorf("%w: delivery days must be between %d and %d", ErrValidation, MinDeliveryDays, MaxDeliveryDays)
	}
	return nil
}

// Filter narrows discovery listings. Zero values mean "any".
type Filter struct {
	Type          Type
	MaxPriceCents int64
	OwnerID       string
}
