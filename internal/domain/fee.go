package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// Fee is a monetary line added to a cart or order total, separate from
// product prices and tax.
type Fee struct {
	ID       string          `json:"id,omitempty"`
	Name     string          `json:"name"`
	Amount   decimal.Decimal `json:"amount"`
	TaxTotal decimal.Decimal `json:"taxTotal"`
}

func (f Fee) Total() decimal.Decimal {
	return f.Amount.Add(f.TaxTotal)
}

// FeeTarget is the fee-collection surface of a cart or order, as seen by a
// fee provider during one calculation pass.
type FeeTarget interface {
	LineItems() []LineItem
	HasFee(name string) bool
	// AddFee appends fee unless one with the same name exists; it reports
	// whether the fee was added.
	AddFee(fee Fee) bool
}

// CartFeeProvider is invoked once per fee-calculation pass, after the
// target's fees have been reset.
type CartFeeProvider interface {
	ApplyFees(ctx context.Context, target FeeTarget) error
}

// feeList implements the name-deduplicated fee collection shared by carts and orders.
type feeList []Fee

func (l feeList) find(name string) int {
	for i, f := range l {
		if f.Name == name {
			return i
		}
	}
	return -1
}

func (l feeList) total() decimal.Decimal {
	sum := decimal.Zero
	for _, f := range l {
		sum = sum.Add(f.Total())
	}
	return sum
}
