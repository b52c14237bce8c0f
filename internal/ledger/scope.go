package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitx/internal/models"
)

// directRecords keeps the group-less records that involve both a and b.
func directRecords(a, b string, expenses []models.Expense, settlements []models.Settlement) ([]models.Expense, []models.Settlement) {
	var exps []models.Expense
	for i := range expenses {
		e := &expenses[i]
		if e.IsDirect() && e.Involves(a) && e.Involves(b) {
			exps = append(exps, *e)
		}
	}
	var sets []models.Settlement
	for i := range settlements {
		s := &settlements[i]
		if s.IsDirect() && s.Between(a, b) {
			sets = append(sets, *s)
		}
	}
	return exps, sets
}

// DirectBalance is viewer's balance against counterpart over their direct
// (group-less) records. Net > 0 means counterpart owes viewer. Records may
// span other users and groups; only the direct ones between the two count.
func DirectBalance(viewer, counterpart string, expenses []models.Expense, settlements []models.Settlement) (Balance, []Warning, error) {
	if viewer == "" || counterpart == "" || viewer == counterpart {
		return Balance{}, nil, &ScopeError{Op: "direct balance", Reason: "two distinct users are required"}
	}
	exps, sets := directRecords(viewer, counterpart, expenses, settlements)
	b, warnings := Aggregate(viewer, ScopeOf(viewer, counterpart), exps, sets)
	return b, warnings, nil
}

// DirectLedger nets the same records DirectBalance folds. After netting,
// Cell(counterpart, viewer) - Cell(viewer, counterpart) equals the
// DirectBalance net.
func DirectLedger(viewer, counterpart string, expenses []models.Expense, settlements []models.Settlement) (*Ledger, []Warning, error) {
	if viewer == counterpart {
		return nil, nil, &ScopeError{Op: "direct ledger", Reason: "two distinct users are required"}
	}
	exps, sets := directRecords(viewer, counterpart, expenses, settlements)
	l, warnings, err := build("direct ledger", []string{viewer, counterpart}, exps, sets, false)
	if err != nil {
		return nil, nil, err
	}
	l.Net()
	return l, warnings, nil
}

// MemberLedger is one group member's totals and netted edges.
type MemberLedger struct {
	ID     string
	Owed   decimal.Decimal
	Owing  decimal.Decimal
	Net    decimal.Decimal
	Owes   []Debt
	OwedBy []Credit
}

// GroupResult is the full picture of a group.
type GroupResult struct {
	Members  []MemberLedger
	Ledger   *Ledger // netted
	Warnings []Warning
}

// Member returns the entry for id, if present.
func (r *GroupResult) Member(id string) (MemberLedger, bool) {
	for _, m := range r.Members {
		if m.ID == id {
			return m, true
		}
	}
	return MemberLedger{}, false
}

// GroupLedger nets the group's records pairwise and folds each member's
// totals. The caller passes the records belonging to the group; shares and
// settlements naming non-members are skipped with a Warning.
func GroupLedger(memberIDs []string, expenses []models.Expense, settlements []models.Settlement) (*GroupResult, error) {
	l, err := newLedger("group ledger", memberIDs)
	if err != nil {
		return nil, err
	}
	exps, sets, warnings := screen(expenses, settlements)
	warnings = l.record(exps, sets, warnings, true)
	l.Net()

	scope := ScopeOf(l.ids...)
	res := &GroupResult{Ledger: l, Warnings: warnings, Members: make([]MemberLedger, 0, len(l.ids))}
	for _, id := range l.ids {
		f := newFold(id, scope)
		f.run(exps, sets)
		res.Members = append(res.Members, MemberLedger{
			ID:     id,
			Owed:   f.total.Owed,
			Owing:  f.total.Owing,
			Net:    f.total.Net(),
			Owes:   l.Owes(id),
			OwedBy: l.OwedBy(id),
		})
	}
	return res, nil
}
