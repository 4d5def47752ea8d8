package billing

import (
	"errors"
	"testing"
)

func TestComputeFeesDefaultRate(t *testing.T) {
	calc := NewCalculator(0.15)

	split, err := calc.ComputeFees(2500)
	if err != nil {
		t.Fatalf("ComputeFees(2500): %v", err)
	}
	if split.PlatformFeeCents != 375 {
		t.Errorf("platform fee = %d, want 375", split.PlatformFeeCents)
	}
	if split.SellerAmountCents != 2125 {
		t.Errorf("seller amount = %d, want 2125", split.SellerAmountCents)
	}
}

func TestComputeFeesRounding(t *testing.T) {
	calc := NewCalculator(0.15)

	tests := []struct {
		price int64
		fee   int64
	}{
		{0, 0},
		{1, 0},    // 0.15 rounds down
		{3, 0},    // 0.45 rounds down
		{4, 1},    // 0.60 rounds up
		{10, 2},   // 1.50 rounds half-up
		{500, 75}, // minimum listable price
		{50000, 7500},
		{999, 150},  // 149.85
		{1001, 150}, // 150.15
	}
	for _, tt := range tests {
		split, err := calc.ComputeFees(tt.price)
		if err != nil {
			t.Fatalf("ComputeFees(%d): %v", tt.price, err)
		}
		if split.PlatformFeeCents != tt.fee {
			t.Errorf("ComputeFees(%d) fee = %d, want %d", tt.price, split.PlatformFeeCents, tt.fee)
		}
	}
}

func TestComputeFeesSumInvariant(t *testing.T) {
	// fee + payout must equal the price for every non-negative input,
	// including rates that do not divide cents evenly.
	for _, rate := range []float64{0.15, 0.1, 0.2, 0.125, 0.333} {
		calc := NewCalculator(rate)
		for price := int64(0); price <= 50000; price += 7 {
			split, err := calc.ComputeFees(price)
			if err != nil {
				t.Fatalf("ComputeFees(%d) rate=%v: %v", price, rate, err)
			}
			if split.PlatformFeeCents+split.SellerAmountCents != price {
				t.Fatalf("rate=%v price=%d: fee %d + seller %d != price",
					rate, price, split.PlatformFeeCents, split.SellerAmountCents)
			}
		}
	}
}

func TestComputeFeesRejectsNegative(t *testing.T) {
	calc := NewCalculator(0.15)
	if _, err := calc.ComputeFees(-1); !errors.Is(err, ErrValidation) {
		t.Fatalf("ComputeFees(-1) err = %v, want ErrValidation", err)
	}
}
