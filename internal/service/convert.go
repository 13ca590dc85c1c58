package service

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

func toUser(u *models.User) User {
	return User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func toGroup(g *models.Group) Group {
	members := make([]Member, len(g.Members))
	for i, m := range g.Members {
		members[i] = Member{
			UserID:      m.UserID,
			Email:       m.Email,
			DisplayName: m.DisplayName,
			JoinedAt:    m.JoinedAt,
		}
	}
	return Group{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		CreatedBy:   g.CreatedBy,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
		Members:     members,
	}
}

func toExpense(e *models.Expense) Expense {
	return Expense{
		ID:          e.ID,
		GroupID:     e.GroupID,
		PayerID:     e.PayerID,
		Amount:      e.Amount.StringFixed(2),
		Description: e.Description,
		Category:    e.Category,
		Metadata:    json.RawMessage(e.Metadata),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func toExpenses(expenses []*models.Expense) []Expense {
	out := make([]Expense, len(expenses))
	for i, e := range expenses {
		out[i] = toExpense(e)
	}
	return out
}

func toAmounts(m map[string]decimal.Decimal) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v.StringFixed(2)
	}
	return out
}

func toSummary(s *models.ExpenseSummary) ExpenseSummary {
	return ExpenseSummary{
		GroupID:    s.GroupID,
		Total:      s.Total.StringFixed(2),
		Count:      s.Count,
		ByCategory: toAmounts(s.ByCategory),
		ByUser:     toAmounts(s.ByUser),
	}
}

func toBalanceReport(r *models.BalanceReport) BalanceReport {
	transfers := make([]Transfer, len(r.Transfers))
	for i, t := range r.Transfers {
		transfers[i] = Transfer{From: t.From, To: t.To, Amount: t.Amount.StringFixed(2)}
	}
	return BalanceReport{
		GroupID:      r.GroupID,
		GroupName:    r.GroupName,
		Total:        r.Total.StringFixed(2),
		MemberCount:  r.MemberCount,
		EqualShare:   r.EqualShare.StringFixed(2),
		Shares:       toAmounts(r.Shares),
		Paid:         toAmounts(r.Paid),
		NetBalances:  toAmounts(r.NetBalances),
		Unattributed: r.Unattributed.StringFixed(2),
		Transfers:    transfers,
	}
}
