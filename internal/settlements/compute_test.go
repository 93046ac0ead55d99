package settlements

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestComputeStandardRate(t *testing.T) {
	breakdown, err := Compute(10000, decimal.RequireFromString("0.05"))
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if breakdown.PlatformFee != 500 {
		t.Fatalf("expected fee 500, got %d", breakdown.PlatformFee)
	}
	if breakdown.WholesalerAmount != 9500 {
		t.Fatalf("expected payout 9500, got %d", breakdown.WholesalerAmount)
	}
}

func TestComputeFloorsFee(t *testing.T) {
	// 9999 * 0.05 = 499.95 → fee floors to 499
	breakdown, err := Compute(9999, decimal.RequireFromString("0.05"))
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if breakdown.PlatformFee != 499 {
		t.Fatalf("expected floored fee 499, got %d", breakdown.PlatformFee)
	}
	if breakdown.WholesalerAmount != 9500 {
		t.Fatalf("expected payout 9500, got %d", breakdown.WholesalerAmount)
	}
}

func TestComputeSplitAlwaysReconstructsTotal(t *testing.T) {
	rates := []string{"0", "0.01", "0.05", "0.0725", "0.333", "1"}
	amounts := []int64{0, 1, 7, 99, 10000, 999999999}

	for _, rate := range rates {
		feeRate := decimal.RequireFromString(rate)
		for _, amount := range amounts {
			breakdown, err := Compute(amount, feeRate)
			if err != nil {
				t.Fatalf("compute(%d, %s): %v", amount, rate, err)
			}
			if breakdown.PlatformFee+breakdown.WholesalerAmount != amount {
				t.Fatalf("split %d+%d does not reconstruct %d at rate %s",
					breakdown.PlatformFee, breakdown.WholesalerAmount, amount, rate)
			}
			if breakdown.PlatformFee < 0 || breakdown.WholesalerAmount < 0 {
				t.Fatalf("negative component at amount=%d rate=%s: %+v", amount, rate, breakdown)
			}
		}
	}
}

func TestComputeRejectsBadInputs(t *testing.T) {
	if _, err := Compute(-1, decimal.RequireFromString("0.05")); err == nil {
		t.Fatal("expected error for negative amount")
	}
	if _, err := Compute(100, decimal.RequireFromString("-0.01")); err == nil {
		t.Fatal("expected error for negative rate")
	}
	if _, err := Compute(100, decimal.RequireFromString("1.01")); err == nil {
		t.Fatal("expected error for rate above 1")
	}
}
