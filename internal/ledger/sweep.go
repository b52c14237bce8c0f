package ledger

import (
	"context"
	"runtime"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/splitx/internal/models"
)

// OutstandingDebt is a positive amount a user owes one counterpart.
type OutstandingDebt struct {
	CounterpartID string
	Amount        decimal.Decimal
	Since         time.Time // see Position.Since
}

// UserDebts lists everything one user owes.
type UserDebts struct {
	UserID string
	Debts  []OutstandingDebt
}

// Total adds up the user's debts.
func (u UserDebts) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, d := range u.Debts {
		sum = sum.Add(d.Amount)
	}
	return sum
}

type sweepOptions struct {
	workers int
}

// SweepOption configures OutstandingDebts.
type SweepOption func(*sweepOptions)

// WithWorkers bounds how many users are folded concurrently.
// Values below one mean GOMAXPROCS.
func WithWorkers(n int) SweepOption {
	return func(o *sweepOptions) {
		o.workers = n
	}
}

// OutstandingDebts folds the direct (group-less) records once per user,
// against all of that user's counterparts at once, and reports every
// counterpart the user owes a positive amount.
//
// Per counterpart the fold keeps a running total that may go negative (the
// counterpart owes the user, or the user paid in advance); it is never
// clamped, so advances net against debts regardless of record order.
//
// Users are folded in parallel. The result keeps the order of userIDs and
// only includes users with at least one debt; each user's debts are sorted
// by amount, largest first.
func OutstandingDebts(ctx context.Context, userIDs []string, expenses []models.Expense, settlements []models.Settlement, opts ...SweepOption) ([]UserDebts, []Warning, error) {
	o := sweepOptions{workers: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers < 1 {
		o.workers = runtime.GOMAXPROCS(0)
	}

	exps, sets, warnings := screen(expenses, settlements)
	idx := indexDirect(exps, sets)

	results := make([]UserDebts, len(userIDs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for i, id := range userIDs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			f := newFold(id, Everyone())
			f.run(idx.expenses[id], idx.settlements[id])
			results[i] = UserDebts{UserID: id, Debts: debtsOf(f)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, warnings, err
	}

	out := make([]UserDebts, 0, len(results))
	for _, r := range results {
		if len(r.Debts) > 0 {
			out = append(out, r)
		}
	}
	return out, warnings, nil
}

// directIndex maps each user to the direct records involving them, each
// record listed once per user.
type directIndex struct {
	expenses    map[string][]*models.Expense
	settlements map[string][]*models.Settlement
}

func indexDirect(exps []*models.Expense, sets []*models.Settlement) directIndex {
	idx := directIndex{
		expenses:    make(map[string][]*models.Expense),
		settlements: make(map[string][]*models.Settlement),
	}
	for _, e := range exps {
		if !e.IsDirect() {
			continue
		}
		seen := map[string]bool{e.PayerID: true}
		idx.expenses[e.PayerID] = append(idx.expenses[e.PayerID], e)
		for _, s := range e.Splits {
			if seen[s.UserID] {
				continue
			}
			seen[s.UserID] = true
			idx.expenses[s.UserID] = append(idx.expenses[s.UserID], e)
		}
	}
	for _, s := range sets {
		if !s.IsDirect() {
			continue
		}
		idx.settlements[s.FromUserID] = append(idx.settlements[s.FromUserID], s)
		idx.settlements[s.ToUserID] = append(idx.settlements[s.ToUserID], s)
	}
	return idx
}

func debtsOf(f *fold) []OutstandingDebt {
	var debts []OutstandingDebt
	for id, p := range f.peers {
		amount := p.owing.Sub(p.owed)
		if !amount.IsPositive() {
			continue
		}
		debts = append(debts, OutstandingDebt{CounterpartID: id, Amount: amount, Since: p.since})
	}
	sort.Slice(debts, func(i, j int) bool {
		if c := debts[i].Amount.Cmp(debts[j].Amount); c != 0 {
			return c > 0
		}
		return debts[i].CounterpartID < debts[j].CounterpartID
	})
	return debts
}
