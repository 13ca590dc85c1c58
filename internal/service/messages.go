package service

import "encoding/json"

// Empty is the response of procedures that return nothing.
type Empty struct{}

// User is the public view of an account. The password digest never leaves
// the server.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
	CreatedAt   int64  `json:"created_at"`
	UpdatedAt   int64  `json:"updated_at"`
}

type RegisterRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
	Password    string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type GetUserRequest struct {
	UserID string `json:"user_id"`
}

// UpdateCurrentUserRequest changes the caller's profile. Omitted fields are
// left unchanged.
type UpdateCurrentUserRequest struct {
	Email       *string `json:"email,omitempty"`
	DisplayName *string `json:"display_name,omitempty"`
}

type UserResponse struct {
	User User `json:"user"`
}

// Member is a roster entry.
type Member struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
	JoinedAt    int64  `json:"joined_at"`
}

type Group struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	CreatedBy   string   `json:"created_by"`
	CreatedAt   int64    `json:"created_at"`
	UpdatedAt   int64    `json:"updated_at"`
	Members     []Member `json:"members"`
}

type CreateGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type GetGroupRequest struct {
	GroupID string `json:"group_id"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []Group `json:"groups"`
}

type UpdateGroupRequest struct {
	GroupID     string  `json:"group_id"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

type DeleteGroupRequest struct {
	GroupID string `json:"group_id"`
}

type GroupResponse struct {
	Group Group `json:"group"`
}

type AddMemberRequest struct {
	GroupID string `json:"group_id"`
	UserID  string `json:"user_id"`
}

type Membership struct {
	GroupID  string `json:"group_id"`
	UserID   string `json:"user_id"`
	JoinedAt int64  `json:"joined_at"`
}

type AddMemberResponse struct {
	Membership Membership `json:"membership"`
}

type RemoveMemberRequest struct {
	GroupID string `json:"group_id"`
	UserID  string `json:"user_id"`
}

// Expense carries metadata verbatim: the key is omitted when the expense
// has none, and is the literal null when null was stored.
type Expense struct {
	ID          string          `json:"id"`
	GroupID     string          `json:"group_id"`
	PayerID     string          `json:"payer_id"`
	Amount      string          `json:"amount"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category,omitempty"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
	CreatedAt   int64           `json:"created_at"`
	UpdatedAt   int64           `json:"updated_at"`
}

// CreateExpenseRequest records an expense paid by the caller.
type CreateExpenseRequest struct {
	GroupID     string          `json:"group_id"`
	Amount      string          `json:"amount"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category,omitempty"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
}

type GetExpenseRequest struct {
	ExpenseID string `json:"expense_id"`
}

// UpdateExpenseRequest edits an expense. Omitted fields are unchanged.
// Metadata replaces the document (null included); ClearMetadata removes it.
type UpdateExpenseRequest struct {
	ExpenseID     string          `json:"expense_id"`
	Amount        *string         `json:"amount,omitempty"`
	Description   *string         `json:"description,omitempty"`
	Category      *string         `json:"category,omitempty"`
	Metadata      json.RawMessage `json:"metadata,omitempty"`
	ClearMetadata bool            `json:"clear_metadata,omitempty"`
}

type DeleteExpenseRequest struct {
	ExpenseID string `json:"expense_id"`
}

type ExpenseResponse struct {
	Expense Expense `json:"expense"`
}

type ListGroupExpensesRequest struct {
	GroupID string `json:"group_id"`
	Limit   int    `json:"limit,omitempty"`
	Offset  int    `json:"offset,omitempty"`
}

// ListUserExpensesRequest lists the caller's own expenses.
type ListUserExpensesRequest struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

type ListExpensesResponse struct {
	Expenses []Expense `json:"expenses"`
}

type SummarizeGroupExpensesRequest struct {
	GroupID string `json:"group_id"`
}

type ExpenseSummary struct {
	GroupID    string            `json:"group_id"`
	Total      string            `json:"total"`
	Count      int               `json:"count"`
	ByCategory map[string]string `json:"by_category"`
	ByUser     map[string]string `json:"by_user"`
}

type GetGroupBalancesRequest struct {
	GroupID string `json:"group_id"`
}

type Transfer struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type BalanceReport struct {
	GroupID      string            `json:"group_id"`
	GroupName    string            `json:"group_name"`
	Total        string            `json:"total"`
	MemberCount  int               `json:"member_count"`
	EqualShare   string            `json:"equal_share"`
	Shares       map[string]string `json:"shares"`
	Paid         map[string]string `json:"paid"`
	NetBalances  map[string]string `json:"net_balances"`
	Unattributed string            `json:"unattributed"`
	Transfers    []Transfer        `json:"transfers"`
}
