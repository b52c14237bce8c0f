package api

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

type Split struct {
	UserID string          `json:"userId"`
	Amount decimal.Decimal `json:"amount"`
	Paid   bool            `json:"paid"`
}

type Expense struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	PayerID     string          `json:"payerId"`
	SplitType   string          `json:"splitType"`
	Splits      []Split         `json:"splits"`
	GroupID     string          `json:"groupId,omitempty"`
	CreatedBy   string          `json:"createdBy"`
	CreatedAt   int64           `json:"createdAt"`
}

type Settlement struct {
	ID                string          `json:"id"`
	GroupID           string          `json:"groupId,omitempty"`
	FromUserID        string          `json:"fromUserId"`
	ToUserID          string          `json:"toUserId"`
	Amount            decimal.Decimal `json:"amount"`
	Date              time.Time       `json:"date"`
	Note              string          `json:"note,omitempty"`
	RelatedExpenseIDs []string        `json:"relatedExpenseIds,omitempty"`
	CreatedBy         string          `json:"createdBy"`
	CreatedAt         int64           `json:"createdAt"`
}

type Member struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	ImageURL    string `json:"imageUrl,omitempty"`
	Role        string `json:"role"`
	JoinedAt    int64  `json:"joinedAt"`
}

type Group struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	CreatedBy   string   `json:"createdBy"`
	Members     []Member `json:"members"`
	CreatedAt   int64    `json:"createdAt"`
}

// GroupSummary is a group without member details.
type GroupSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MemberCount int    `json:"memberCount"`
}

// Balance is one viewer's position; Net > 0 means the viewer is owed.
type Balance struct {
	YouAreOwed decimal.Decimal `json:"youAreOwed"`
	YouOwe     decimal.Decimal `json:"youOwe"`
	Net        decimal.Decimal `json:"netBalance"`
}

// Debt is an amount owed to or by UserID, depending on the list holding it.
type Debt struct {
	UserID string          `json:"userId"`
	Amount decimal.Decimal `json:"amount"`
}

// MemberBalance is one group member's netted standing.
type MemberBalance struct {
	UserID      string          `json:"userId"`
	DisplayName string          `json:"displayName"`
	Owed        decimal.Decimal `json:"owed"`
	Owing       decimal.Decimal `json:"owing"`
	Net         decimal.Decimal `json:"net"`
	Owes        []Debt          `json:"owes"`
	OwedBy      []Debt          `json:"owedBy"`
}

// CounterpartBalance is the viewer's position against one other user.
type CounterpartBalance struct {
	User User `json:"user"`
	Balance
}

// CounterpartAmount is an absolute amount on one side of the dashboard.
type CounterpartAmount struct {
	User   User            `json:"user"`
	Amount decimal.Decimal `json:"amount"`
}
