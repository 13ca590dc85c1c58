package service

import (
	"context"
	"log/slog"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/models"
)

const ExpenseServiceName = "splitledger.v1.ExpenseService"

const (
	ExpenseServiceCreateExpenseProcedure          = "/" + ExpenseServiceName + "/CreateExpense"
	ExpenseServiceGetExpenseProcedure             = "/" + ExpenseServiceName + "/GetExpense"
	ExpenseServiceListGroupExpensesProcedure      = "/" + ExpenseServiceName + "/ListGroupExpenses"
	ExpenseServiceListUserExpensesProcedure       = "/" + ExpenseServiceName + "/ListUserExpenses"
	ExpenseServiceUpdateExpenseProcedure          = "/" + ExpenseServiceName + "/UpdateExpense"
	ExpenseServiceDeleteExpenseProcedure          = "/" + ExpenseServiceName + "/DeleteExpense"
	ExpenseServiceSummarizeGroupExpensesProcedure = "/" + ExpenseServiceName + "/SummarizeGroupExpenses"
	ExpenseServiceGetGroupBalancesProcedure       = "/" + ExpenseServiceName + "/GetGroupBalances"
)

// ExpenseService handles expenses, summaries and balances. Every procedure
// requires authentication; mount it behind middleware.RequireAuth.
type ExpenseService struct {
	ledger *ledger.Ledger
	logger *slog.Logger
}

// NewExpenseService creates an ExpenseService over l.
func NewExpenseService(l *ledger.Ledger, logger *slog.Logger) *ExpenseService {
	return &ExpenseService{ledger: l, logger: logger}
}

// NewExpenseServiceHandler builds the HTTP handler and returns the path to
// mount it on.
func NewExpenseServiceHandler(svc *ExpenseService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{WithJSON()}, opts...)

	mux := http.NewServeMux()
	mux.Handle(ExpenseServiceCreateExpenseProcedure, connect.NewUnaryHandler(ExpenseServiceCreateExpenseProcedure, svc.CreateExpense, opts...))
	mux.Handle(ExpenseServiceGetExpenseProcedure, connect.NewUnaryHandler(ExpenseServiceGetExpenseProcedure, svc.GetExpense, opts...))
	mux.Handle(ExpenseServiceListGroupExpensesProcedure, connect.NewUnaryHandler(ExpenseServiceListGroupExpensesProcedure, svc.ListGroupExpenses, opts...))
	mux.Handle(ExpenseServiceListUserExpensesProcedure, connect.NewUnaryHandler(ExpenseServiceListUserExpensesProcedure, svc.ListUserExpenses, opts...))
	mux.Handle(ExpenseServiceUpdateExpenseProcedure, connect.NewUnaryHandler(ExpenseServiceUpdateExpenseProcedure, svc.UpdateExpense, opts...))
	mux.Handle(ExpenseServiceDeleteExpenseProcedure, connect.NewUnaryHandler(ExpenseServiceDeleteExpenseProcedure, svc.DeleteExpense, opts...))
	mux.Handle(ExpenseServiceSummarizeGroupExpensesProcedure, connect.NewUnaryHandler(ExpenseServiceSummarizeGroupExpensesProcedure, svc.SummarizeGroupExpenses, opts...))
	mux.Handle(ExpenseServiceGetGroupBalancesProcedure, connect.NewUnaryHandler(ExpenseServiceGetGroupBalancesProcedure, svc.GetGroupBalances, opts...))
	return "/" + ExpenseServiceName + "/", mux
}

// CreateExpense records an expense paid by the caller.
func (s *ExpenseService) CreateExpense(ctx context.Context, req *connect.Request[CreateExpenseRequest]) (*connect.Response[ExpenseResponse], error) {
	amount, err := parseAmount(req.Msg.Amount)
	if err != nil {
		return nil, err
	}

	expense, err := s.ledger.CreateExpense(ctx, middleware.GetUserID(ctx), ledger.NewExpense{
		GroupID:     req.Msg.GroupID,
		Amount:      amount,
		Description: req.Msg.Description,
		Category:    req.Msg.Category,
		Metadata:    models.Metadata(req.Msg.Metadata),
	})
	if err != nil {
		return nil, toConnectError(s.logger, "CreateExpense", err)
	}
	return connect.NewResponse(&ExpenseResponse{Expense: toExpense(expense)}), nil
}

// GetExpense retrieves an expense by ID.
func (s *ExpenseService) GetExpense(ctx context.Context, req *connect.Request[GetExpenseRequest]) (*connect.Response[ExpenseResponse], error) {
	expense, err := s.ledger.GetExpense(ctx, req.Msg.ExpenseID)
	if err != nil {
		return nil, toConnectError(s.logger, "GetExpense", err)
	}
	return connect.NewResponse(&ExpenseResponse{Expense: toExpense(expense)}), nil
}

// ListGroupExpenses returns a page of a group's expenses, newest first.
func (s *ExpenseService) ListGroupExpenses(ctx context.Context, req *connect.Request[ListGroupExpensesRequest]) (*connect.Response[ListExpensesResponse], error) {
	expenses, err := s.ledger.ListGroupExpenses(ctx, req.Msg.GroupID, middleware.GetUserID(ctx), ledger.Page{
		Limit:  req.Msg.Limit,
		Offset: req.Msg.Offset,
	})
	if err != nil {
		return nil, toConnectError(s.logger, "ListGroupExpenses", err)
	}
	return connect.NewResponse(&ListExpensesResponse{Expenses: toExpenses(expenses)}), nil
}

// ListUserExpenses returns a page of the caller's expenses across groups.
func (s *ExpenseService) ListUserExpenses(ctx context.Context, req *connect.Request[ListUserExpensesRequest]) (*connect.Response[ListExpensesResponse], error) {
	expenses, err := s.ledger.ListUserExpenses(ctx, middleware.GetUserID(ctx), ledger.Page{
		Limit:  req.Msg.Limit,
		Offset: req.Msg.Offset,
	})
	if err != nil {
		return nil, toConnectError(s.logger, "ListUserExpenses", err)
	}
	return connect.NewResponse(&ListExpensesResponse{Expenses: toExpenses(expenses)}), nil
}

// UpdateExpense edits an expense. Only its payer may.
func (s *ExpenseService) UpdateExpense(ctx context.Context, req *connect.Request[UpdateExpenseRequest]) (*connect.Response[ExpenseResponse], error) {
	patch := ledger.ExpensePatch{
		Description: req.Msg.Description,
		Category:    req.Msg.Category,
	}
	if req.Msg.Amount != nil {
		amount, err := parseAmount(*req.Msg.Amount)
		if err != nil {
			return nil, err
		}
		patch.Amount = &amount
	}
	switch {
	case req.Msg.ClearMetadata:
		var absent models.Metadata
		patch.Metadata = &absent
	case req.Msg.Metadata != nil:
		m := models.Metadata(req.Msg.Metadata)
		patch.Metadata = &m
	}

	expense, err := s.ledger.UpdateExpense(ctx, req.Msg.ExpenseID, patch, middleware.GetUserID(ctx))
	if err != nil {
		return nil, toConnectError(s.logger, "UpdateExpense", err)
	}
	return connect.NewResponse(&ExpenseResponse{Expense: toExpense(expense)}), nil
}

// DeleteExpense deletes an expense. Only its payer may.
func (s *ExpenseService) DeleteExpense(ctx context.Context, req *connect.Request[DeleteExpenseRequest]) (*connect.Response[Empty], error) {
	if err := s.ledger.DeleteExpense(ctx, req.Msg.ExpenseID, middleware.GetUserID(ctx)); err != nil {
		return nil, toConnectError(s.logger, "DeleteExpense", err)
	}
	return connect.NewResponse(&Empty{}), nil
}

// SummarizeGroupExpenses aggregates a group's expenses.
func (s *ExpenseService) SummarizeGroupExpenses(ctx context.Context, req *connect.Request[SummarizeGroupExpensesRequest]) (*connect.Response[ExpenseSummary], error) {
	summary, err := s.ledger.SummarizeGroupExpenses(ctx, req.Msg.GroupID, middleware.GetUserID(ctx))
	if err != nil {
		return nil, toConnectError(s.logger, "SummarizeGroupExpenses", err)
	}
	out := toSummary(summary)
	return connect.NewResponse(&out), nil
}

// GetGroupBalances reports who owes whom in a group.
func (s *ExpenseService) GetGroupBalances(ctx context.Context, req *connect.Request[GetGroupBalancesRequest]) (*connect.Response[BalanceReport], error) {
	report, err := s.ledger.ComputeGroupBalances(ctx, req.Msg.GroupID, middleware.GetUserID(ctx))
	if err != nil {
		return nil, toConnectError(s.logger, "GetGroupBalances", err)
	}
	out := toBalanceReport(report)
	return connect.NewResponse(&out), nil
}
