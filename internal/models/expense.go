package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Tolerance is the largest difference allowed between a sum of shares and
// the total it should add up to.
var Tolerance = decimal.New(1, -2)

// SplitType names how an expense's shares were computed.
type SplitType string

const (
	SplitEqual      SplitType = "equal"
	SplitPercentage SplitType = "percentage"
	SplitExact      SplitType = "exact"
	SplitItemized   SplitType = "itemized"
)

// Valid reports whether t is a known split type.
func (t SplitType) Valid() bool {
	switch t {
	case SplitEqual, SplitPercentage, SplitExact, SplitItemized:
		return true
	}
	return false
}

var (
	ErrSplitSumMismatch = errors.New("split amounts must add up to the total expense amount")
	ErrDuplicateSplit   = errors.New("a user can hold only one split per expense")
)

// Split is one user's share of an expense.
type Split struct {
	// UserID is the user who owes this share.
	UserID string

	// Amount is the share owed to the payer.
	Amount decimal.Decimal

	// Paid marks a share already settled outside the ledger.
	// The payer's own share is usually recorded as paid.
	Paid bool
}

// Expense represents a payment by one user on behalf of several.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// Description is the human-readable label (e.g., "Dinner").
	Description string

	// Category is a free-form spending category. Defaults to "Other".
	Category string

	// Amount is the total paid.
	Amount decimal.Decimal

	// Date is when the expense happened.
	Date time.Time

	// PayerID is the user who paid the full amount.
	PayerID string

	// SplitType records how Splits were computed.
	SplitType SplitType

	// Splits are the per-user shares. The payer may appear here; that share
	// never creates a debt.
	Splits []Split

	// GroupID is the owning group. Empty for direct (two-party) expenses.
	GroupID string

	// CreatedBy is the user ID who recorded the expense.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64
}

// IsDirect reports whether the expense is outside any group.
func (e *Expense) IsDirect() bool {
	return e.GroupID == ""
}

// SplitFor returns userID's share, if any.
func (e *Expense) SplitFor(userID string) (Split, bool) {
	for _, s := range e.Splits {
		if s.UserID == userID {
			return s, true
		}
	}
	return Split{}, false
}

// Involves reports whether userID paid the expense or holds a share of it.
func (e *Expense) Involves(userID string) bool {
	if e.PayerID == userID {
		return true
	}
	_, ok := e.SplitFor(userID)
	return ok
}

// Validate checks the write-path invariants of an expense.
func (e *Expense) Validate() error {
	if !e.Amount.IsPositive() {
		return ErrNonPositiveAmount
	}
	if e.PayerID == "" {
		return errors.New("payer is required")
	}
	if len(e.Splits) == 0 {
		return errors.New("at least one split is required")
	}
	for _, s := range e.Splits {
		if s.UserID == "" {
			return errors.New("split user is required")
		}
		if s.Amount.IsNegative() {
			return fmt.Errorf("split for %s: amount cannot be negative", s.UserID)
		}
	}
	if id, ok := DuplicateSplit(e.Splits); ok {
		return fmt.Errorf("%w: %s", ErrDuplicateSplit, id)
	}
	if !SplitsBalanced(e.Amount, e.Splits) {
		return ErrSplitSumMismatch
	}
	return nil
}

// DuplicateSplit returns the first user holding more than one split.
func DuplicateSplit(splits []Split) (string, bool) {
	seen := make(map[string]struct{}, len(splits))
	for _, s := range splits {
		if _, ok := seen[s.UserID]; ok {
			return s.UserID, true
		}
		seen[s.UserID] = struct{}{}
	}
	return "", false
}

// SumSplits adds up the share amounts.
func SumSplits(splits []Split) decimal.Decimal {
	sum := decimal.Zero
	for _, s := range splits {
		sum = sum.Add(s.Amount)
	}
	return sum
}

// SplitsBalanced reports whether the shares add up to amount within Tolerance.
func SplitsBalanced(amount decimal.Decimal, splits []Split) bool {
	return WithinTolerance(SumSplits(splits), amount)
}

// WithinTolerance reports whether |a - b| <= Tolerance.
func WithinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Tolerance)
}
