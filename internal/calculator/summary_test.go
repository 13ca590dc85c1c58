package calculator

import (
	"testing"

	"github.com/mmynk/splitledger/internal/models"
)

func TestSummarize(t *testing.T) {
	users := map[string]*models.User{
		"A": {ID: "A", Email: "alice@example.com", DisplayName: "Alice"},
		"B": {ID: "B", Email: "bob@example.com"},
	}
	expenses := []*models.Expense{
		{PayerID: "A", Amount: dec("30.00"), Category: "food"},
		{PayerID: "A", Amount: dec("5.50"), Category: "food"},
		{PayerID: "B", Amount: dec("10.00"), Category: "travel"},
		{PayerID: "B", Amount: dec("4.50")},
	}

	s := Summarize("g1", expenses, users)

	assertDec(t, "total", s.Total, "50.00")
	if s.Count != 4 {
		t.Errorf("count = %d, want 4", s.Count)
	}
	if len(s.ByCategory) != 2 {
		t.Errorf("expected 2 categories, got %v", s.ByCategory)
	}
	assertDec(t, "food", s.ByCategory["food"], "35.50")
	assertDec(t, "travel", s.ByCategory["travel"], "10.00")
	assertDec(t, "Alice", s.ByUser["Alice"], "35.50")
	assertDec(t, "bob by email", s.ByUser["bob@example.com"], "14.50")
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize("g1", nil, nil)
	assertDec(t, "total", s.Total, "0")
	if s.Count != 0 || len(s.ByCategory) != 0 || len(s.ByUser) != 0 {
		t.Errorf("expected empty summary, got %+v", s)
	}
}
