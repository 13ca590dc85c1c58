package ledger

import (
	"context"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// ComputeGroupBalances returns who owes whom in a group. The roster and the
// full expense history are read in one transaction so the report reflects
// a single snapshot.
func (l *Ledger) ComputeGroupBalances(ctx context.Context, groupID, requestedBy string) (*models.BalanceReport, error) {
	var report *models.BalanceReport
	err := l.store.WithTx(ctx, func(q storage.Queries) error {
		if err := requireMember(ctx, q, groupID, requestedBy); err != nil {
			return err
		}

		group, err := loadGroup(ctx, q, groupID)
		if err != nil {
			return err
		}
		expenses, err := q.ListExpensesByGroup(ctx, groupID, Page{})
		if err != nil {
			return err
		}

		report = calculator.ComputeBalances(group, group.Members, expenses)
		return nil
	})
	if err != nil {
		l.logDenied("ComputeGroupBalances", err, "group_id", groupID, "user_id", requestedBy)
		return nil, err
	}

	l.logger.Debug("Balances computed",
		"group_id", groupID,
		"members", report.MemberCount,
		"total", report.Total.StringFixed(2),
	)
	return report, nil
}
