package review

import (
	"errors"
	"time"
)

var (
	ErrNotFound   = errors.New("review not found")
	ErrExists     = errors.New("review already exists for this order")
	ErrValidation = errors.New("invalid review")
)

const maxCommentLen = 1000

type Review struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"order_id"`
	BuyerID   string    `json:"buyer_id"`
	BuyerName string    `json:"buyer_name,omitempty"`
	SellerID  string    `json:"seller_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

func (r *Review) Validate() error {
	if r.Rating < 1 || r.Rating > 5 {
		return ErrValidation
	}
	if len(r.Comment) > maxCommentLen {
		return ErrValidation
	}
	return nil
}

// SellerSummary aggregates a seller's review stats.
type SellerSummary struct {
	SellerID      string  `json:"seller_id"`
	TotalReviews  int     `json:"total_reviews"`
	AverageRating float64 `json:"average_rating"`
}
