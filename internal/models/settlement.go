package models

import "github.com/shopspring/decimal"

// BalanceReport is the settlement view of a group, derived from its
// roster and complete expense history.
type BalanceReport struct {
	GroupID   string
	GroupName string

	// Total is the sum of every expense ever recorded for the group.
	Total decimal.Decimal

	// MemberCount is the size of the current roster.
	MemberCount int

	// EqualShare is Total / MemberCount rounded half away from zero to
	// cents. It is the display figure; Shares may differ from it by a cent
	// and EqualShare*MemberCount need not equal Total.
	EqualShare decimal.Decimal

	// Shares is each member's exact allocation of Total. Leftover cents go
	// to the earliest members, so the shares always sum to Total.
	Shares map[string]decimal.Decimal

	// Paid is the amount each current member has paid. Keyed by user ID.
	Paid map[string]decimal.Decimal

	// NetBalances is Paid minus Shares per member.
	// Positive = owed money by the group, negative = owes money.
	NetBalances map[string]decimal.Decimal

	// Unattributed is the part of Total paid by users who are no longer
	// members. It counts toward Total but toward nobody's Paid.
	Unattributed decimal.Decimal

	// Transfers is a suggested set of payments that would clear the
	// net balances. Read-only: nothing records them.
	Transfers []Transfer
}

// Transfer is a suggested payment from a debtor to a creditor.
type Transfer struct {
	From   string // Member who owes
	To     string // Member who is owed
	Amount decimal.Decimal
}

// ExpenseSummary aggregates a group's expenses.
type ExpenseSummary struct {
	GroupID string
	Total   decimal.Decimal
	Count   int

	// ByCategory excludes expenses without a category.
	ByCategory map[string]decimal.Decimal

	// ByUser is keyed by the payer's display label (name, else email).
	ByUser map[string]decimal.Decimal
}
