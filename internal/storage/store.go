// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/mmynk/splitx/internal/models"
)

// ErrNotFound is wrapped by every lookup that finds no row.
var ErrNotFound = errors.New("not found")

// ExpenseFilter narrows ListExpenses. Zero values mean "no constraint".
type ExpenseFilter struct {
	// GroupID restricts to one group's expenses.
	GroupID string
	// DirectOnly restricts to expenses outside any group. Ignored when GroupID is set.
	DirectOnly bool
	// UserID restricts to expenses the user paid or has a split in.
	UserID string
	// Since and Until bound Date, inclusive and exclusive.
	Since time.Time
	Until time.Time
}

// SettlementFilter narrows ListSettlements; same semantics as ExpenseFilter,
// with UserID matching either side of the payment.
type SettlementFilter struct {
	GroupID    string
	DirectOnly bool
	UserID     string
	Since      time.Time
	Until      time.Time
}

// UserStore persists accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	// GetUsersByIDs omits unknown ids from the result.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
}

// GroupStore persists groups and their membership.
type GroupStore interface {
	// CreateGroup populates ID and CreatedAt when unset.
	CreateGroup(ctx context.Context, group *models.Group) error
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)
	ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error)
}

// ExpenseStore persists expenses together with their splits.
type ExpenseStore interface {
	CreateExpense(ctx context.Context, expense *models.Expense) error
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)
	DeleteExpense(ctx context.Context, expenseID string) error
	// ListExpenses returns matches ordered by date, newest first.
	ListExpenses(ctx context.Context, filter ExpenseFilter) ([]*models.Expense, error)
}

// SettlementStore persists recorded payments.
type SettlementStore interface {
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error
	GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error)
	// ListSettlements returns matches ordered by date, newest first.
	ListSettlements(ctx context.Context, filter SettlementFilter) ([]*models.Settlement, error)
}

// Store defines everything the services need from persistence.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	UserStore
	GroupStore
	ExpenseStore
	SettlementStore

	// Close releases any resources held by the store.
	Close() error
}
