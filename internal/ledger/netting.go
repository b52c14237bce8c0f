package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitx/internal/models"
)

// Debt is an amount owed to another participant.
type Debt struct {
	To     string
	Amount decimal.Decimal
}

// Credit is an amount owed by another participant.
type Credit struct {
	From   string
	Amount decimal.Decimal
}

// Edge is one directed debt in the ledger.
type Edge struct {
	From   string
	To     string
	Amount decimal.Decimal
}

// Ledger is a directed debt matrix: Cell(a, b) is what a owes b.
// Before Net, both Cell(a, b) and Cell(b, a) may be non-zero and cells may be
// negative (an advance). After Net, at most one of each pair is non-zero and
// no cell is negative.
type Ledger struct {
	ids   []string
	index map[string]int
	cells [][]decimal.Decimal
}

func newLedger(op string, participants []string) (*Ledger, error) {
	l := &Ledger{index: make(map[string]int, len(participants))}
	for _, id := range participants {
		if id == "" {
			continue
		}
		if _, dup := l.index[id]; dup {
			continue
		}
		l.index[id] = len(l.ids)
		l.ids = append(l.ids, id)
	}
	if len(l.ids) < 2 {
		return nil, &ScopeError{Op: op, Reason: "at least two participants are required"}
	}
	l.cells = make([][]decimal.Decimal, len(l.ids))
	for i := range l.cells {
		l.cells[i] = make([]decimal.Decimal, len(l.ids))
		for j := range l.cells[i] {
			l.cells[i][j] = decimal.Zero
		}
	}
	return l, nil
}

// Build records every expense and settlement between the participants,
// without netting. Participants are deduplicated, keeping their first
// position; fewer than two distinct participants is a *ScopeError.
// Contributions naming anyone outside participants are skipped with an
// out_of_scope Warning.
func Build(participants []string, expenses []models.Expense, settlements []models.Settlement) (*Ledger, []Warning, error) {
	return build("build", participants, expenses, settlements, true)
}

func build(op string, participants []string, expenses []models.Expense, settlements []models.Settlement, strict bool) (*Ledger, []Warning, error) {
	l, err := newLedger(op, participants)
	if err != nil {
		return nil, nil, err
	}
	exps, sets, warnings := screen(expenses, settlements)
	return l, l.record(exps, sets, warnings, strict), nil
}

// record adds screened records to the matrix, appending to warnings.
func (l *Ledger) record(exps []*models.Expense, sets []*models.Settlement, warnings []Warning, strict bool) []Warning {
	outOfScope := func(record, user string) {
		if strict {
			warnings = append(warnings, Warning{Kind: WarnOutOfScope, RecordID: record, UserID: user})
		}
	}

	for _, e := range exps {
		payer, ok := l.index[e.PayerID]
		if !ok {
			outOfScope(e.ID, e.PayerID)
			continue
		}
		for _, s := range e.Splits {
			if s.UserID == e.PayerID || s.Paid {
				continue
			}
			debtor, ok := l.index[s.UserID]
			if !ok {
				outOfScope(e.ID, s.UserID)
				continue
			}
			l.cells[debtor][payer] = l.cells[debtor][payer].Add(s.Amount)
		}
	}

	for _, s := range sets {
		from, okFrom := l.index[s.FromUserID]
		to, okTo := l.index[s.ToUserID]
		if !okFrom || !okTo {
			user := s.FromUserID
			if okFrom {
				user = s.ToUserID
			}
			outOfScope(s.ID, user)
			continue
		}
		l.cells[from][to] = l.cells[from][to].Sub(s.Amount)
	}
	return warnings
}

// Net reduces each pair of opposing cells to a single non-negative edge.
// Pairs are visited once each, in participant order. Net on an already
// netted ledger changes nothing.
func (l *Ledger) Net() {
	for a := range l.ids {
		for b := a + 1; b < len(l.ids); b++ {
			diff := l.cells[a][b].Sub(l.cells[b][a])
			switch diff.Sign() {
			case 1:
				l.cells[a][b], l.cells[b][a] = diff, decimal.Zero
			case -1:
				l.cells[a][b], l.cells[b][a] = decimal.Zero, diff.Neg()
			default:
				l.cells[a][b], l.cells[b][a] = decimal.Zero, decimal.Zero
			}
		}
	}
}

// IsNetted reports whether every pair has at most one positive edge and no
// cell is negative.
func (l *Ledger) IsNetted() bool {
	for a := range l.ids {
		for b := range l.ids {
			if a == b {
				continue
			}
			if l.cells[a][b].IsNegative() {
				return false
			}
			if a < b && l.cells[a][b].IsPositive() && l.cells[b][a].IsPositive() {
				return false
			}
		}
	}
	return true
}

// Participants returns the ledger's participants in processing order.
func (l *Ledger) Participants() []string {
	return append([]string(nil), l.ids...)
}

// Cell returns what a owes b. Unknown users and a == b yield zero.
func (l *Ledger) Cell(a, b string) decimal.Decimal {
	i, okA := l.index[a]
	j, okB := l.index[b]
	if !okA || !okB || i == j {
		return decimal.Zero
	}
	return l.cells[i][j]
}

// Owes lists every participant id owes a positive amount to.
func (l *Ledger) Owes(id string) []Debt {
	i, ok := l.index[id]
	if !ok {
		return nil
	}
	var out []Debt
	for j, other := range l.ids {
		if i != j && l.cells[i][j].IsPositive() {
			out = append(out, Debt{To: other, Amount: l.cells[i][j]})
		}
	}
	return out
}

// OwedBy lists every participant owing id a positive amount.
func (l *Ledger) OwedBy(id string) []Credit {
	j, ok := l.index[id]
	if !ok {
		return nil
	}
	var out []Credit
	for i, other := range l.ids {
		if i != j && l.cells[i][j].IsPositive() {
			out = append(out, Credit{From: other, Amount: l.cells[i][j]})
		}
	}
	return out
}

// NetOf is what everyone owes id minus what id owes everyone.
// Net does not change it.
func (l *Ledger) NetOf(id string) decimal.Decimal {
	i, ok := l.index[id]
	if !ok {
		return decimal.Zero
	}
	net := decimal.Zero
	for j := range l.ids {
		if i != j {
			net = net.Add(l.cells[j][i]).Sub(l.cells[i][j])
		}
	}
	return net
}

// Edges lists every positive cell, row by row.
func (l *Ledger) Edges() []Edge {
	var out []Edge
	for i, from := range l.ids {
		for j, to := range l.ids {
			if i != j && l.cells[i][j].IsPositive() {
				out = append(out, Edge{From: from, To: to, Amount: l.cells[i][j]})
			}
		}
	}
	return out
}

// Clone returns an independent copy.
func (l *Ledger) Clone() *Ledger {
	c := &Ledger{
		ids:   append([]string(nil), l.ids...),
		index: make(map[string]int, len(l.index)),
		cells: make([][]decimal.Decimal, len(l.cells)),
	}
	for k, v := range l.index {
		c.index[k] = v
	}
	for i := range l.cells {
		c.cells[i] = append([]decimal.Decimal(nil), l.cells[i]...)
	}
	return c
}

// Equal reports whether both ledgers have the same participants and cells.
func (l *Ledger) Equal(o *Ledger) bool {
	if len(l.ids) != len(o.ids) {
		return false
	}
	for i := range l.ids {
		if l.ids[i] != o.ids[i] {
			return false
		}
		for j := range l.ids {
			if !l.cells[i][j].Equal(o.cells[i][j]) {
				return false
			}
		}
	}
	return true
}
