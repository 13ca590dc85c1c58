package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// ComputeBalances derives the settlement report for a group from its
// current roster and its complete expense history.
//
// Algorithm:
//   - total = every expense amount, regardless of whether the payer is still a member
//   - shares = total split equally across the roster (see SplitEqually)
//   - paid[m] = amounts paid by member m; payments by former members count
//     toward total but are reported as Unattributed instead
//   - net[m] = paid[m] - shares[m]
//   - transfers: greedy matching of the largest debts with the largest credits
//
// An empty roster yields a zero report rather than dividing by zero.
func ComputeBalances(group *models.Group, roster []models.Member, expenses []*models.Expense) *models.BalanceReport {
	report := &models.BalanceReport{
		GroupID:      group.ID,
		GroupName:    group.Name,
		Total:        decimal.Zero,
		MemberCount:  len(roster),
		EqualShare:   decimal.Zero,
		Shares:       make(map[string]decimal.Decimal, len(roster)),
		Paid:         make(map[string]decimal.Decimal, len(roster)),
		NetBalances:  make(map[string]decimal.Decimal, len(roster)),
		Unattributed: decimal.Zero,
	}
	if len(roster) == 0 {
		return report
	}

	memberIDs := make([]string, len(roster))
	for i, m := range roster {
		memberIDs[i] = m.UserID
		report.Paid[m.UserID] = decimal.Zero
	}

	for _, e := range expenses {
		report.Total = report.Total.Add(e.Amount)
		paid, isMember := report.Paid[e.PayerID]
		if !isMember {
			report.Unattributed = report.Unattributed.Add(e.Amount)
			continue
		}
		report.Paid[e.PayerID] = paid.Add(e.Amount)
	}

	report.EqualShare = EqualShare(report.Total, len(roster))
	report.Shares = SplitEqually(report.Total, memberIDs)
	for _, id := range memberIDs {
		report.NetBalances[id] = report.Paid[id].Sub(report.Shares[id])
	}

	report.Transfers = SuggestTransfers(report.NetBalances)
	return report
}

// SuggestTransfers returns payments that would bring every balance to zero
// as far as the balances allow. Debtors and creditors are matched greedily,
// largest first, with ties broken by ID so the result is deterministic.
func SuggestTransfers(net map[string]decimal.Decimal) []models.Transfer {
	type party struct {
		id     string
		amount decimal.Decimal // always positive
	}

	var creditors, debtors []party
	for id, bal := range net {
		switch {
		case bal.IsPositive():
			creditors = append(creditors, party{id, bal})
		case bal.IsNegative():
			debtors = append(debtors, party{id, bal.Neg()})
		}
	}

	byAmount := func(ps []party) {
		sort.Slice(ps, func(i, j int) bool {
			if c := ps[i].amount.Cmp(ps[j].amount); c != 0 {
				return c > 0
			}
			return ps[i].id < ps[j].id
		})
	}
	byAmount(creditors)
	byAmount(debtors)

	var transfers []models.Transfer
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := decimal.Min(debtors[i].amount, creditors[j].amount)
		if amount.IsPositive() {
			transfers = append(transfers, models.Transfer{
				From:   debtors[i].id,
				To:     creditors[j].id,
				Amount: amount,
			})
		}

		debtors[i].amount = debtors[i].amount.Sub(amount)
		creditors[j].amount = creditors[j].amount.Sub(amount)

		// Move to next debtor/creditor if fully settled
		if debtors[i].amount.IsZero() {
			i++
		}
		if creditors[j].amount.IsZero() {
			j++
		}
	}
	return transfers
}
