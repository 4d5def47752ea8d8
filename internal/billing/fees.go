package billing

import (
	"errors"

	"github.com/shopspring/decimal"
)

var ErrValidation = errors.New("invalid amount")

// FeeSplit is the platform/seller division of a price. The two parts always
// sum to the price they were computed from.
type FeeSplit struct {
	PlatformFeeCents  int64 `json:"platform_fee_cents"`
	SellerAmountCents int64 `json:"seller_amount_cents"`
}

// Calculator splits prices according to a fixed commission rate.
type Calculator struct {
	rate decimal.Decimal
}

// NewCalculator builds a Calculator for a commission rate expressed as a
// fraction, e.g. 0.15 for 15%.
func NewCalculator(rate float64) Calculator {
	return Calculator{rate: decimal.NewFromFloat(rate)}
}

// ComputeFees maps a listed price to the platform fee and the seller payout.
// The fee is rounded half-up on whole cents; the payout is the remainder, so
// no cent is ever lost or duplicated.
func (c Calculator) ComputeFees(priceCents int64) (FeeSplit, error) {
	if priceCents < 0 {
		return FeeSplit{}, ErrValidation
	}
	fee := decimal.NewFromInt(priceCents).Mul(c.rate).Round(0).IntPart()
	return FeeSplit{
		PlatformFeeCents:  fee,
		SellerAmountCents: priceCents - fee,
	}, nil
}
