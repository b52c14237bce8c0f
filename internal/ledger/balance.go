package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitx/internal/models"
)

// Balance is a user's position over some set of records.
type Balance struct {
	Owed  decimal.Decimal // others must pay this user
	Owing decimal.Decimal // this user must pay others
}

// Net is Owed - Owing. Positive means the user is owed money.
func (b Balance) Net() decimal.Decimal {
	return b.Owed.Sub(b.Owing)
}

// Position is a viewer's balance against one counterpart.
type Position struct {
	CounterpartID string
	Owed          decimal.Decimal // counterpart owes viewer
	Owing         decimal.Decimal // viewer owes counterpart

	// Since is the date of the earliest record that increased what the
	// viewer owes the counterpart: an unpaid expense share, or a payment
	// the viewer received from the counterpart (an advance the viewer now
	// owes back). Settlements the viewer paid never move it. Zero if there
	// is none.
	Since time.Time
}

// Net is Owed - Owing. Positive means the counterpart owes the viewer.
func (p Position) Net() decimal.Decimal {
	return p.Owed.Sub(p.Owing)
}

// Scope restricts which users a computation may attribute money to.
// The zero Scope contains everyone.
type Scope struct {
	ids map[string]struct{}
}

// Everyone is the unrestricted scope.
func Everyone() Scope {
	return Scope{}
}

// ScopeOf limits a computation to the given users.
func ScopeOf(ids ...string) Scope {
	s := Scope{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s
}

// Contains reports whether id is inside the scope.
func (s Scope) Contains(id string) bool {
	if s.ids == nil {
		return true
	}
	_, ok := s.ids[id]
	return ok
}

type position struct {
	owed, owing decimal.Decimal
	since       time.Time
}

func (p *position) owingSince(t time.Time) {
	if p.since.IsZero() || t.Before(p.since) {
		p.since = t
	}
}

// fold accumulates one viewer's balance, overall and per counterpart.
// Each record must be passed exactly once; order does not matter.
type fold struct {
	viewer string
	scope  Scope
	total  Balance
	peers  map[string]*position
}

func newFold(viewer string, scope Scope) *fold {
	return &fold{
		viewer: viewer,
		scope:  scope,
		total:  Balance{Owed: decimal.Zero, Owing: decimal.Zero},
		peers:  make(map[string]*position),
	}
}

func (f *fold) peer(id string) *position {
	p, ok := f.peers[id]
	if !ok {
		p = &position{owed: decimal.Zero, owing: decimal.Zero}
		f.peers[id] = p
	}
	return p
}

func (f *fold) expense(e *models.Expense) {
	if e.PayerID == f.viewer {
		for _, s := range e.Splits {
			if s.UserID == f.viewer || s.Paid || !f.scope.Contains(s.UserID) {
				continue
			}
			f.total.Owed = f.total.Owed.Add(s.Amount)
			p := f.peer(s.UserID)
			p.owed = p.owed.Add(s.Amount)
		}
		return
	}
	if !f.scope.Contains(e.PayerID) {
		return
	}
	s, ok := e.SplitFor(f.viewer)
	if !ok || s.Paid {
		return
	}
	f.total.Owing = f.total.Owing.Add(s.Amount)
	p := f.peer(e.PayerID)
	p.owing = p.owing.Add(s.Amount)
	p.owingSince(e.Date)
}

func (f *fold) settlement(s *models.Settlement) {
	switch f.viewer {
	case s.FromUserID:
		if !f.scope.Contains(s.ToUserID) {
			return
		}
		f.total.Owing = f.total.Owing.Sub(s.Amount)
		p := f.peer(s.ToUserID)
		p.owing = p.owing.Sub(s.Amount)
	case s.ToUserID:
		if !f.scope.Contains(s.FromUserID) {
			return
		}
		f.total.Owed = f.total.Owed.Sub(s.Amount)
		p := f.peer(s.FromUserID)
		p.owed = p.owed.Sub(s.Amount)
		p.owingSince(s.Date)
	}
}

func (f *fold) run(expenses []*models.Expense, settlements []*models.Settlement) {
	for _, e := range expenses {
		f.expense(e)
	}
	for _, s := range settlements {
		f.settlement(s)
	}
}

func (f *fold) positions() []Position {
	out := make([]Position, 0, len(f.peers))
	for id, p := range f.peers {
		out = append(out, Position{CounterpartID: id, Owed: p.owed, Owing: p.owing, Since: p.since})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CounterpartID < out[j].CounterpartID })
	return out
}

// Aggregate folds the records into viewer's owed/owing totals. Only
// counterparts inside scope are counted. Settlements discharge obligations
// regardless of their order relative to the expenses; totals are not clamped,
// so an over-payment shows up as a negative Owed or Owing.
func Aggregate(viewer string, scope Scope, expenses []models.Expense, settlements []models.Settlement) (Balance, []Warning) {
	exps, sets, warnings := screen(expenses, settlements)
	f := newFold(viewer, scope)
	f.run(exps, sets)
	return f.total, warnings
}

// Positions is Aggregate broken down per counterpart, sorted by counterpart ID.
func Positions(viewer string, scope Scope, expenses []models.Expense, settlements []models.Settlement) ([]Position, []Warning) {
	_, positions, warnings := Summarize(viewer, scope, expenses, settlements)
	return positions, warnings
}

// Summarize returns the Aggregate total and the Positions from a single
// pass over the records.
func Summarize(viewer string, scope Scope, expenses []models.Expense, settlements []models.Settlement) (Balance, []Position, []Warning) {
	exps, sets, warnings := screen(expenses, settlements)
	f := newFold(viewer, scope)
	f.run(exps, sets)
	return f.total, f.positions(), warnings
}
