package ledger

import (
	"fmt"

	"github.com/mmynk/splitx/internal/models"
)

// ScopeError reports a request that cannot describe a ledger: fewer than two
// distinct participants, or a direct view of a user paired with themselves.
// Stored records are never a ScopeError; a settlement from a user to
// themselves is skipped with a self_settlement Warning, and the write path
// rejects it earlier with models.ErrSelfSettlement.
type ScopeError struct {
	Op     string
	Reason string
}

func (e *ScopeError) Error() string {
	return fmt.Sprintf("ledger: %s: %s", e.Op, e.Reason)
}

// WarningKind classifies a skipped contribution.
type WarningKind string

const (
	WarnSplitSumMismatch WarningKind = "split_sum_mismatch"
	WarnInvalidAmount    WarningKind = "invalid_amount"
	WarnDuplicateSplit   WarningKind = "duplicate_split"
	WarnSelfSettlement   WarningKind = "self_settlement"
	WarnMissingPayer     WarningKind = "missing_payer"
	WarnOutOfScope       WarningKind = "out_of_scope"
)

// Warning describes a record (or part of one) left out of a computation.
type Warning struct {
	Kind     WarningKind
	RecordID string
	UserID   string
	Detail   string
}

func (w Warning) String() string {
	s := fmt.Sprintf("%s: record %s", w.Kind, w.RecordID)
	if w.UserID != "" {
		s += " user " + w.UserID
	}
	if w.Detail != "" {
		s += ": " + w.Detail
	}
	return s
}

// checkExpense reports why an expense cannot be used, if it cannot.
func checkExpense(e *models.Expense) (Warning, bool) {
	switch {
	case e.PayerID == "":
		return Warning{Kind: WarnMissingPayer, RecordID: e.ID}, false
	case !e.Amount.IsPositive():
		return Warning{Kind: WarnInvalidAmount, RecordID: e.ID, Detail: "amount " + e.Amount.String()}, false
	}
	for _, s := range e.Splits {
		if s.Amount.IsNegative() {
			return Warning{Kind: WarnInvalidAmount, RecordID: e.ID, UserID: s.UserID, Detail: "negative share " + s.Amount.String()}, false
		}
	}
	if id, dup := models.DuplicateSplit(e.Splits); dup {
		return Warning{Kind: WarnDuplicateSplit, RecordID: e.ID, UserID: id}, false
	}
	if !models.SplitsBalanced(e.Amount, e.Splits) {
		return Warning{
			Kind:     WarnSplitSumMismatch,
			RecordID: e.ID,
			Detail:   fmt.Sprintf("shares sum to %s, total is %s", models.SumSplits(e.Splits), e.Amount),
		}, false
	}
	return Warning{}, true
}

// checkSettlement reports why a settlement cannot be used, if it cannot.
func checkSettlement(s *models.Settlement) (Warning, bool) {
	switch {
	case s.FromUserID == "" || s.ToUserID == "":
		return Warning{Kind: WarnMissingPayer, RecordID: s.ID}, false
	case s.FromUserID == s.ToUserID:
		return Warning{Kind: WarnSelfSettlement, RecordID: s.ID, UserID: s.FromUserID}, false
	case !s.Amount.IsPositive():
		return Warning{Kind: WarnInvalidAmount, RecordID: s.ID, Detail: "amount " + s.Amount.String()}, false
	}
	return Warning{}, true
}

// screen drops malformed records, returning pointers into the input slices.
func screen(expenses []models.Expense, settlements []models.Settlement) ([]*models.Expense, []*models.Settlement, []Warning) {
	var warnings []Warning
	exps := make([]*models.Expense, 0, len(expenses))
	for i := range expenses {
		if w, ok := checkExpense(&expenses[i]); !ok {
			warnings = append(warnings, w)
			continue
		}
		exps = append(exps, &expenses[i])
	}
	sets := make([]*models.Settlement, 0, len(settlements))
	for i := range settlements {
		if w, ok := checkSettlement(&settlements[i]); !ok {
			warnings = append(warnings, w)
			continue
		}
		sets = append(sets, &settlements[i])
	}
	return exps, sets, warnings
}
