package settlements

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Breakdown is the derived money split for one order.
type Breakdown struct {
	OrderAmount      int64
	PlatformFeeRate  decimal.Decimal
	PlatformFee      int64
	WholesalerAmount int64
}

// Compute derives the platform fee and wholesaler payout for an order amount.
// The fee is floored so the platform never rounds in its own favor past a
// whole currency unit, and fee + payout always reconstruct the order amount.
func Compute(orderAmount int64, feeRate decimal.Decimal) (Breakdown, error) {
	if orderAmount < 0 {
		return Breakdown{}, fmt.Errorf("order amount must not be negative, got %d", orderAmount)
	}
	if feeRate.IsNegative() || feeRate.GreaterThan(decimal.NewFromInt(1)) {
		return Breakdown{}, fmt.Errorf("fee rate must be within [0, 1], got %s", feeRate)
	}

	fee := decimal.NewFromInt(orderAmount).Mul(feeRate).Floor().IntPart()
	return Breakdown{
		OrderAmount:      orderAmount,
		PlatformFeeRate:  feeRate,
		PlatformFee:      fee,
		WholesalerAmount: orderAmount - fee,
	}, nil
}
