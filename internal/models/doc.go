// Package models defines the core domain models for the shared-expense ledger.
//
// # Models
//
//   - User: a registered account, the identity anchor for everything else
//   - Group: a named set of users sharing expenses
//   - Membership / Member: the relation placing a user in a group
//   - Expense: one payment made by a member on behalf of a group
//   - BalanceReport / ExpenseSummary: read-side results derived from expenses
//
// # Design Principles
//
//  1. Relationships are ID strings, never pointers, so values can be copied
//     and compared freely.
//  2. Money is always decimal.Decimal with two fractional digits. Nothing in
//     this package stores an amount as a float.
//  3. Optional text fields use the empty string for "absent"; stores persist
//     them as NULL.
//  4. Timestamps are Unix seconds.
package models
