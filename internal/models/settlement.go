package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNonPositiveAmount = errors.New("amount must be greater than 0")
	ErrSelfSettlement    = errors.New("payer and receiver cannot be the same user")
)

// Settlement represents money that already moved from one user to another,
// reducing what the payer owes the receiver.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// GroupID is the group this settlement belongs to.
	// Empty for direct (two-party) settlements.
	GroupID string

	// FromUserID is the user who paid (debtor settling up).
	FromUserID string

	// ToUserID is the user who received payment (creditor being paid).
	ToUserID string

	// Amount is the payment amount.
	Amount decimal.Decimal

	// Date is when the payment happened.
	Date time.Time

	// Note is an optional description for the settlement.
	Note string

	// RelatedExpenseIDs optionally lists the expenses this payment covers.
	// Informational only; the ledger does not use it.
	RelatedExpenseIDs []string

	// CreatedBy is the user ID who recorded this settlement.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the settlement was recorded.
	CreatedAt int64
}

// IsDirect reports whether the settlement is outside any group.
func (s *Settlement) IsDirect() bool {
	return s.GroupID == ""
}

// Involves reports whether userID paid or received the settlement.
func (s *Settlement) Involves(userID string) bool {
	return s.FromUserID == userID || s.ToUserID == userID
}

// Between reports whether the settlement moved money between a and b,
// in either direction.
func (s *Settlement) Between(a, b string) bool {
	return (s.FromUserID == a && s.ToUserID == b) || (s.FromUserID == b && s.ToUserID == a)
}

// Validate checks the write-path invariants of a settlement.
func (s *Settlement) Validate() error {
	if !s.Amount.IsPositive() {
		return ErrNonPositiveAmount
	}
	if s.FromUserID == "" || s.ToUserID == "" {
		return errors.New("payer and receiver are required")
	}
	if s.FromUserID == s.ToUserID {
		return ErrSelfSettlement
	}
	return nil
}
