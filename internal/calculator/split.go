// Package calculator holds the pure settlement computations: equal-share
// allocation, group balances, suggested transfers and expense summaries.
// Nothing here performs I/O.
package calculator

import (
	"github.com/shopspring/decimal"
)

// EqualShare returns total / n rounded half away from zero to cents.
// Returns zero when n is not positive.
func EqualShare(total decimal.Decimal, n int) decimal.Decimal {
	if n <= 0 {
		return decimal.Zero
	}
	return total.DivRound(decimal.NewFromInt(int64(n)), 2)
}

// SplitEqually allocates total across the participants using the largest
// remainder method. Each participant receives floor(total / n) cents; the
// leftover cents go one each to the earliest participants in the given
// order. The allocations always sum to total exactly.
//
// total must be a non-negative amount with at most two fractional digits.
func SplitEqually(total decimal.Decimal, participants []string) map[string]decimal.Decimal {
	shares := make(map[string]decimal.Decimal, len(participants))
	n := int64(len(participants))
	if n == 0 {
		return shares
	}

	totalCents := total.Shift(2).IntPart()
	base := totalCents / n
	remainder := totalCents % n

	for i, p := range participants {
		c := base
		if int64(i) < remainder {
			c++
		}
		shares[p] = decimal.New(c, -2)
	}
	return shares
}
