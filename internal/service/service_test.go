package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
)

type testEnv struct {
	server *httptest.Server
}

// setupTestServer mounts all three services the way cmd/server does.
func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	l, err := ledger.New(store, auth.NewBcryptHasher(bcrypt.MinCost), auth.NewJWTManager("test-secret", time.Hour), ledger.DefaultLimits(), logger)
	if err != nil {
		t.Fatalf("Failed to create ledger: %v", err)
	}

	public := connect.WithInterceptors(middleware.OptionalAuth(l), middleware.LoggingInterceptor(logger))
	private := connect.WithInterceptors(middleware.RequireAuth(l), middleware.LoggingInterceptor(logger))

	mux := http.NewServeMux()
	mux.Handle(NewUserServiceHandler(NewUserService(l, logger), public))
	mux.Handle(NewGroupServiceHandler(NewGroupService(l, logger), private))
	mux.Handle(NewExpenseServiceHandler(NewExpenseService(l, logger), private))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return &testEnv{server: server}
}

func call[Req, Res any](t *testing.T, env *testEnv, procedure, token string, msg *Req) (*Res, error) {
	t.Helper()

	client := connect.NewClient[Req, Res](env.server.Client(), env.server.URL+procedure, WithJSON())
	req := connect.NewRequest(msg)
	if token != "" {
		req.Header().Set("Authorization", "Bearer "+token)
	}
	resp, err := client.CallUnary(context.Background(), req)
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

func mustCall[Req, Res any](t *testing.T, env *testEnv, procedure, token string, msg *Req) *Res {
	t.Helper()

	res, err := call[Req, Res](t, env, procedure, token, msg)
	if err != nil {
		t.Fatalf("%s failed: %v", procedure, err)
	}
	return res
}

// signUp registers and logs in a user, returning its ID and token.
func signUp(t *testing.T, env *testEnv, email string) (string, string) {
	t.Helper()

	mustCall[RegisterRequest, UserResponse](t, env, UserServiceRegisterProcedure, "", &RegisterRequest{
		Email:    email,
		Password: "password123",
	})
	login := mustCall[LoginRequest, LoginResponse](t, env, UserServiceLoginProcedure, "", &LoginRequest{
		Email:    email,
		Password: "password123",
	})
	return login.User.ID, login.Token
}

func expectCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if got := connect.CodeOf(err); err == nil || got != want {
		t.Fatalf("expected %v, got %v", want, err)
	}
}

func TestUserService(t *testing.T) {
	env := setupTestServer(t)

	aliceID, token := signUp(t, env, "alice@example.com")

	t.Run("duplicate registration", func(t *testing.T) {
		_, err := call[RegisterRequest, UserResponse](t, env, UserServiceRegisterProcedure, "", &RegisterRequest{
			Email:    "ALICE@example.com",
			Password: "password123",
		})
		expectCode(t, err, connect.CodeAlreadyExists)
	})

	t.Run("bad login", func(t *testing.T) {
		_, err := call[LoginRequest, LoginResponse](t, env, UserServiceLoginProcedure, "", &LoginRequest{
			Email:    "alice@example.com",
			Password: "nope-nope",
		})
		expectCode(t, err, connect.CodeUnauthenticated)
	})

	t.Run("current user requires token", func(t *testing.T) {
		_, err := call[Empty, UserResponse](t, env, UserServiceGetCurrentUserProcedure, "", &Empty{})
		expectCode(t, err, connect.CodeUnauthenticated)

		me := mustCall[Empty, UserResponse](t, env, UserServiceGetCurrentUserProcedure, token, &Empty{})
		if me.User.ID != aliceID {
			t.Errorf("current user = %s, want %s", me.User.ID, aliceID)
		}
	})

	t.Run("update profile", func(t *testing.T) {
		name := "Alice"
		res := mustCall[UpdateCurrentUserRequest, UserResponse](t, env, UserServiceUpdateCurrentUserProcedure, token, &UpdateCurrentUserRequest{
			DisplayName: &name,
		})
		if res.User.DisplayName != "Alice" {
			t.Errorf("display name = %q, want Alice", res.User.DisplayName)
		}

		other := mustCall[GetUserRequest, UserResponse](t, env, UserServiceGetUserProcedure, token, &GetUserRequest{UserID: aliceID})
		if other.User.Email != "alice@example.com" {
			t.Errorf("unexpected user: %+v", other.User)
		}
	})
}

func TestGroupService(t *testing.T) {
	env := setupTestServer(t)

	_, aliceToken := signUp(t, env, "alice@example.com")
	bobID, bobToken := signUp(t, env, "bob@example.com")
	_, eveToken := signUp(t, env, "eve@example.com")

	t.Run("requires authentication", func(t *testing.T) {
		_, err := call[CreateGroupRequest, GroupResponse](t, env, GroupServiceCreateGroupProcedure, "", &CreateGroupRequest{Name: "X"})
		expectCode(t, err, connect.CodeUnauthenticated)
	})

	created := mustCall[CreateGroupRequest, GroupResponse](t, env, GroupServiceCreateGroupProcedure, aliceToken, &CreateGroupRequest{
		Name: "Roommates",
	})
	groupID := created.Group.ID
	if len(created.Group.Members) != 1 {
		t.Fatalf("expected creator on roster, got %+v", created.Group.Members)
	}

	mustCall[AddMemberRequest, AddMemberResponse](t, env, GroupServiceAddMemberProcedure, aliceToken, &AddMemberRequest{
		GroupID: groupID,
		UserID:  bobID,
	})

	t.Run("duplicate member", func(t *testing.T) {
		_, err := call[AddMemberRequest, AddMemberResponse](t, env, GroupServiceAddMemberProcedure, aliceToken, &AddMemberRequest{
			GroupID: groupID,
			UserID:  bobID,
		})
		expectCode(t, err, connect.CodeAlreadyExists)
	})

	t.Run("denial hides details", func(t *testing.T) {
		name := "Hijacked"
		_, err := call[UpdateGroupRequest, GroupResponse](t, env, GroupServiceUpdateGroupProcedure, eveToken, &UpdateGroupRequest{
			GroupID: groupID,
			Name:    &name,
		})
		expectCode(t, err, connect.CodePermissionDenied)

		var connectErr *connect.Error
		if errors.As(err, &connectErr) && connectErr.Message() != "not authorized" {
			t.Errorf("message = %q, want %q", connectErr.Message(), "not authorized")
		}
	})

	t.Run("list groups", func(t *testing.T) {
		res := mustCall[ListGroupsRequest, ListGroupsResponse](t, env, GroupServiceListGroupsProcedure, bobToken, &ListGroupsRequest{})
		if len(res.Groups) != 1 || res.Groups[0].ID != groupID || len(res.Groups[0].Members) != 2 {
			t.Errorf("unexpected groups: %+v", res.Groups)
		}
	})

	t.Run("only creator deletes", func(t *testing.T) {
		_, err := call[DeleteGroupRequest, Empty](t, env, GroupServiceDeleteGroupProcedure, bobToken, &DeleteGroupRequest{GroupID: groupID})
		expectCode(t, err, connect.CodePermissionDenied)
	})

	t.Run("leave then remove again", func(t *testing.T) {
		mustCall[RemoveMemberRequest, Empty](t, env, GroupServiceRemoveMemberProcedure, bobToken, &RemoveMemberRequest{
			GroupID: groupID,
			UserID:  bobID,
		})
		_, err := call[RemoveMemberRequest, Empty](t, env, GroupServiceRemoveMemberProcedure, aliceToken, &RemoveMemberRequest{
			GroupID: groupID,
			UserID:  bobID,
		})
		expectCode(t, err, connect.CodeNotFound)
	})

	mustCall[DeleteGroupRequest, Empty](t, env, GroupServiceDeleteGroupProcedure, aliceToken, &DeleteGroupRequest{GroupID: groupID})
	_, err := call[GetGroupRequest, GroupResponse](t, env, GroupServiceGetGroupProcedure, aliceToken, &GetGroupRequest{GroupID: groupID})
	expectCode(t, err, connect.CodeNotFound)
}

func TestExpenseService(t *testing.T) {
	env := setupTestServer(t)

	aliceID, aliceToken := signUp(t, env, "alice@example.com")
	bobID, bobToken := signUp(t, env, "bob@example.com")
	_, eveToken := signUp(t, env, "eve@example.com")

	group := mustCall[CreateGroupRequest, GroupResponse](t, env, GroupServiceCreateGroupProcedure, aliceToken, &CreateGroupRequest{Name: "Trip"})
	groupID := group.Group.ID
	mustCall[AddMemberRequest, AddMemberResponse](t, env, GroupServiceAddMemberProcedure, aliceToken, &AddMemberRequest{GroupID: groupID, UserID: bobID})

	rent := mustCall[CreateExpenseRequest, ExpenseResponse](t, env, ExpenseServiceCreateExpenseProcedure, aliceToken, &CreateExpenseRequest{
		GroupID:  groupID,
		Amount:   "30",
		Category: "lodging",
		Metadata: json.RawMessage(`{"location": "NYC"}`),
	})
	mustCall[CreateExpenseRequest, ExpenseResponse](t, env, ExpenseServiceCreateExpenseProcedure, bobToken, &CreateExpenseRequest{
		GroupID:  groupID,
		Amount:   "10.00",
		Metadata: json.RawMessage(`null`),
	})

	if rent.Expense.Amount != "30.00" {
		t.Errorf("amount = %q, want 30.00", rent.Expense.Amount)
	}

	t.Run("metadata round trip", func(t *testing.T) {
		got := mustCall[GetExpenseRequest, ExpenseResponse](t, env, ExpenseServiceGetExpenseProcedure, bobToken, &GetExpenseRequest{ExpenseID: rent.Expense.ID})

		var want, have map[string]any
		json.Unmarshal([]byte(`{"location": "NYC"}`), &want)
		if err := json.Unmarshal(got.Expense.Metadata, &have); err != nil {
			t.Fatalf("metadata is not JSON: %q", got.Expense.Metadata)
		}
		if !reflect.DeepEqual(want, have) {
			t.Errorf("metadata = %v, want %v", have, want)
		}

		list := mustCall[ListGroupExpensesRequest, ListExpensesResponse](t, env, ExpenseServiceListGroupExpensesProcedure, aliceToken, &ListGroupExpensesRequest{GroupID: groupID})
		if len(list.Expenses) != 2 {
			t.Fatalf("expected 2 expenses, got %d", len(list.Expenses))
		}
		if string(list.Expenses[0].Metadata) != "null" {
			t.Errorf("explicit null lost: %q", list.Expenses[0].Metadata)
		}
	})

	t.Run("invalid input", func(t *testing.T) {
		_, err := call[CreateExpenseRequest, ExpenseResponse](t, env, ExpenseServiceCreateExpenseProcedure, aliceToken, &CreateExpenseRequest{
			GroupID: groupID,
			Amount:  "ten",
		})
		expectCode(t, err, connect.CodeInvalidArgument)

		_, err = call[CreateExpenseRequest, ExpenseResponse](t, env, ExpenseServiceCreateExpenseProcedure, aliceToken, &CreateExpenseRequest{
			GroupID: groupID,
			Amount:  "-5",
		})
		expectCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("non-member", func(t *testing.T) {
		_, err := call[CreateExpenseRequest, ExpenseResponse](t, env, ExpenseServiceCreateExpenseProcedure, eveToken, &CreateExpenseRequest{
			GroupID: groupID,
			Amount:  "5.00",
		})
		expectCode(t, err, connect.CodePermissionDenied)

		_, err = call[GetGroupBalancesRequest, BalanceReport](t, env, ExpenseServiceGetGroupBalancesProcedure, eveToken, &GetGroupBalancesRequest{GroupID: groupID})
		expectCode(t, err, connect.CodePermissionDenied)
	})

	t.Run("balances", func(t *testing.T) {
		report := mustCall[GetGroupBalancesRequest, BalanceReport](t, env, ExpenseServiceGetGroupBalancesProcedure, bobToken, &GetGroupBalancesRequest{GroupID: groupID})
		if report.Total != "40.00" || report.EqualShare != "20.00" {
			t.Errorf("total/share = %s/%s, want 40.00/20.00", report.Total, report.EqualShare)
		}
		if report.NetBalances[aliceID] != "10.00" || report.NetBalances[bobID] != "-10.00" {
			t.Errorf("unexpected net balances: %v", report.NetBalances)
		}
		want := []Transfer{{From: bobID, To: aliceID, Amount: "10.00"}}
		if !reflect.DeepEqual(report.Transfers, want) {
			t.Errorf("transfers = %+v, want %+v", report.Transfers, want)
		}
	})

	t.Run("summary", func(t *testing.T) {
		summary := mustCall[SummarizeGroupExpensesRequest, ExpenseSummary](t, env, ExpenseServiceSummarizeGroupExpensesProcedure, aliceToken, &SummarizeGroupExpensesRequest{GroupID: groupID})
		if summary.Count != 2 || summary.Total != "40.00" {
			t.Errorf("count/total = %d/%s", summary.Count, summary.Total)
		}
		if len(summary.ByCategory) != 1 || summary.ByCategory["lodging"] != "30.00" {
			t.Errorf("unexpected categories: %v", summary.ByCategory)
		}
		if summary.ByUser["bob@example.com"] != "10.00" {
			t.Errorf("unexpected by-user: %v", summary.ByUser)
		}
	})

	t.Run("update and delete by payer only", func(t *testing.T) {
		amount := "12.34"
		_, err := call[UpdateExpenseRequest, ExpenseResponse](t, env, ExpenseServiceUpdateExpenseProcedure, bobToken, &UpdateExpenseRequest{
			ExpenseID: rent.Expense.ID,
			Amount:    &amount,
		})
		expectCode(t, err, connect.CodePermissionDenied)

		updated := mustCall[UpdateExpenseRequest, ExpenseResponse](t, env, ExpenseServiceUpdateExpenseProcedure, aliceToken, &UpdateExpenseRequest{
			ExpenseID:     rent.Expense.ID,
			Amount:        &amount,
			ClearMetadata: true,
		})
		if updated.Expense.Amount != "12.34" || updated.Expense.Metadata != nil {
			t.Errorf("unexpected expense: %+v", updated.Expense)
		}

		mine := mustCall[ListUserExpensesRequest, ListExpensesResponse](t, env, ExpenseServiceListUserExpensesProcedure, aliceToken, &ListUserExpensesRequest{})
		if len(mine.Expenses) != 1 || mine.Expenses[0].PayerID != aliceID {
			t.Errorf("unexpected user expenses: %+v", mine.Expenses)
		}

		_, err = call[DeleteExpenseRequest, Empty](t, env, ExpenseServiceDeleteExpenseProcedure, bobToken, &DeleteExpenseRequest{ExpenseID: rent.Expense.ID})
		expectCode(t, err, connect.CodePermissionDenied)
		mustCall[DeleteExpenseRequest, Empty](t, env, ExpenseServiceDeleteExpenseProcedure, aliceToken, &DeleteExpenseRequest{ExpenseID: rent.Expense.ID})

		_, err = call[GetExpenseRequest, ExpenseResponse](t, env, ExpenseServiceGetExpenseProcedure, aliceToken, &GetExpenseRequest{ExpenseID: rent.Expense.ID})
		expectCode(t, err, connect.CodeNotFound)
	})
}

func TestToConnectError(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		err  error
		want connect.Code
	}{
		{ledger.ErrInvalidCredentials, connect.CodeUnauthenticated},
		{ledger.ErrUnauthorized, connect.CodePermissionDenied},
		{ledger.ErrValidation, connect.CodeInvalidArgument},
		{ledger.ErrNotFound, connect.CodeNotFound},
		{ledger.ErrConflict, connect.CodeAlreadyExists},
		{errors.New("disk on fire"), connect.CodeInternal},
	}
	for _, tt := range tests {
		if got := connect.CodeOf(toConnectError(logger, "Test", tt.err)); got != tt.want {
			t.Errorf("%v mapped to %v, want %v", tt.err, got, tt.want)
		}
	}

	internal := toConnectError(logger, "Test", errors.New("disk on fire"))
	var connectErr *connect.Error
	if errors.As(internal, &connectErr) && connectErr.Message() != "internal error" {
		t.Errorf("internal details leaked: %q", connectErr.Message())
	}
}
