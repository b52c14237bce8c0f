package api

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuthService

type RegisterRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Password    string `json:"password"`
}

type RegisterResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User      User      `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// GroupService

type CreateGroupRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	MemberIDs   []string `json:"memberIds"`
}

type CreateGroupResponse struct {
	Group Group `json:"group"`
}

type GetGroupRequest struct {
	GroupID string `json:"groupId"`
}

type GetGroupResponse struct {
	Group Group `json:"group"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []GroupSummary `json:"groups"`
}

type GetGroupExpensesRequest struct {
	GroupID string `json:"groupId"`
}

type GetGroupExpensesResponse struct {
	Group       Group           `json:"group"`
	Expenses    []Expense       `json:"expenses"`
	Settlements []Settlement    `json:"settlements"`
	Balances    []MemberBalance `json:"balances"`
}

// ExpenseService

// Share is a percentage or an exact amount for one participant.
type Share struct {
	UserID string          `json:"userId"`
	Value  decimal.Decimal `json:"value"`
}

type Item struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	AssignedTo  []string        `json:"assignedTo"`
}

// CreateExpenseRequest carries the inputs for one split type: Participants
// for equal, Shares for percentage and exact, Items with Subtotal and
// Participants for itemized.
type CreateExpenseRequest struct {
	Description  string          `json:"description"`
	Category     string          `json:"category,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	Date         time.Time       `json:"date"`
	PayerID      string          `json:"payerId"`
	SplitType    string          `json:"splitType"`
	Participants []string        `json:"participants,omitempty"`
	Shares       []Share         `json:"shares,omitempty"`
	Items        []Item          `json:"items,omitempty"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	GroupID      string          `json:"groupId,omitempty"`
}

type CreateExpenseResponse struct {
	Expense Expense `json:"expense"`
}

type DeleteExpenseRequest struct {
	ExpenseID string `json:"expenseId"`
}

type DeleteExpenseResponse struct {
	Success bool `json:"success"`
}

type GetExpensesBetweenUsersRequest struct {
	UserID string `json:"userId"`
}

type GetExpensesBetweenUsersResponse struct {
	Expenses    []Expense    `json:"expenses"`
	Settlements []Settlement `json:"settlements"`
	OtherUser   User         `json:"otherUser"`
	Balance     Balance      `json:"balance"`
}

// SettlementService

type CreateSettlementRequest struct {
	Amount            decimal.Decimal `json:"amount"`
	Note              string          `json:"note,omitempty"`
	PaidByUserID      string          `json:"paidByUserId"`
	ReceivedByUserID  string          `json:"receivedByUserId"`
	GroupID           string          `json:"groupId,omitempty"`
	RelatedExpenseIDs []string        `json:"relatedExpenseIds,omitempty"`
	Date              time.Time       `json:"date"`
}

type CreateSettlementResponse struct {
	Settlement Settlement `json:"settlement"`
}

// Settlement entity types.
const (
	EntityUser  = "user"
	EntityGroup = "group"
)

type GetSettlementDataRequest struct {
	EntityType string `json:"entityType"`
	EntityID   string `json:"entityId"`
}

// GetSettlementDataResponse fills Counterpart and Balance for a user, Group
// and Balances for a group.
type GetSettlementDataResponse struct {
	Type        string               `json:"type"`
	Counterpart *User                `json:"counterpart,omitempty"`
	Balance     *Balance             `json:"balance,omitempty"`
	Group       *GroupSummary        `json:"group,omitempty"`
	Balances    []CounterpartBalance `json:"balances,omitempty"`
}

// DashboardService

type GetUserBalancesRequest struct{}

type GetUserBalancesResponse struct {
	YouOwe       decimal.Decimal     `json:"youOwe"`
	YouAreOwed   decimal.Decimal     `json:"youAreOwed"`
	TotalBalance decimal.Decimal     `json:"totalBalance"`
	OweList      []CounterpartAmount `json:"oweList"`
	OwedByList   []CounterpartAmount `json:"owedByList"`
}

type GetUserGroupsRequest struct{}

type UserGroup struct {
	GroupSummary
	Balance decimal.Decimal `json:"balance"`
}

type GetUserGroupsResponse struct {
	Groups []UserGroup `json:"groups"`
}

// GetTotalSpentRequest and GetMonthlySpendingRequest default Year to the
// current year in UTC.
type GetTotalSpentRequest struct {
	Year int `json:"year,omitempty"`
}

type GetTotalSpentResponse struct {
	Year  int             `json:"year"`
	Total decimal.Decimal `json:"total"`
}

type GetMonthlySpendingRequest struct {
	Year int `json:"year,omitempty"`
}

type MonthTotal struct {
	Month time.Time       `json:"month"`
	Total decimal.Decimal `json:"total"`
}

type GetMonthlySpendingResponse struct {
	Months []MonthTotal `json:"months"`
}

// ContactService

type ListContactsRequest struct{}

type ListContactsResponse struct {
	Users  []User         `json:"users"`
	Groups []GroupSummary `json:"groups"`
}
