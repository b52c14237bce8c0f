package ledger

import (
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitx/internal/models"
)

func TestGroupLedger(t *testing.T) {
	members := []string{"A", "B", "C"}
	expenses := []models.Expense{
		inGroup("g", equalExpense("e1", "A", "90", day0, "B", "C")),
		inGroup("g", equalExpense("e2", "B", "60", day0, "A", "C")),
		inGroup("g", equalExpense("e3", "C", "30", day0, "A", "X")), // X left the group
	}
	settlements := []models.Settlement{settle("s1", "C", "A", "10", day0)}

	res, err := GroupLedger(members, expenses, settlements)
	require.NoError(t, err)
	require.Len(t, res.Members, 3)

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, WarnOutOfScope, res.Warnings[0].Kind)
	assert.Equal(t, "X", res.Warnings[0].UserID)

	// Gross: B->A 30, C->A 30, A->B 20, C->B 20, A->C 10; C paid A 10.
	a, _ := res.Member("A")
	assert.True(t, a.Owed.Equal(d("50")), "A owed = %s", a.Owed)
	assert.True(t, a.Owing.Equal(d("30")))
	assert.True(t, a.Net.Equal(d("20")))
	require.Len(t, a.OwedBy, 2)
	assert.Equal(t, "B", a.OwedBy[0].From)
	assert.True(t, a.OwedBy[0].Amount.Equal(d("10")))
	assert.Equal(t, "C", a.OwedBy[1].From)
	assert.True(t, a.OwedBy[1].Amount.Equal(d("10")))
	assert.Empty(t, a.Owes)

	c, _ := res.Member("C")
	assert.True(t, c.Net.Equal(d("-30")), "C net = %s", c.Net)
	require.Len(t, c.Owes, 2)
	assert.Equal(t, "A", c.Owes[0].To)
	assert.True(t, c.Owes[0].Amount.Equal(d("10")))
	assert.Equal(t, "B", c.Owes[1].To)
	assert.True(t, c.Owes[1].Amount.Equal(d("20")))

	sum := decimal.Zero
	for _, m := range res.Members {
		sum = sum.Add(m.Net)
		assert.True(t, m.Net.Equal(res.Ledger.NetOf(m.ID)), "fold and matrix disagree for %s", m.ID)
	}
	assert.True(t, sum.IsZero())
}

func TestGroupLedger_SingleMember(t *testing.T) {
	_, err := GroupLedger([]string{"A"}, nil, nil)
	var scopeErr *ScopeError
	assert.ErrorAs(t, err, &scopeErr)
}

// randomRecords produces well-formed records between users; shares are whole
// cents that add up exactly to each total.
func randomRecords(r *rand.Rand, users []string, groupID string) ([]models.Expense, []models.Settlement) {
	var expenses []models.Expense
	for i := 0; i < 5+r.Intn(20); i++ {
		payer := users[r.Intn(len(users))]
		totalCents := int64(1 + r.Intn(50000))
		perm := r.Perm(len(users))
		n := 1 + r.Intn(len(users))
		remaining := totalCents
		var splits []models.Split
		for k := 0; k < n; k++ {
			cents := remaining
			if k < n-1 {
				cents = r.Int63n(remaining + 1)
			}
			remaining -= cents
			uid := users[perm[k]]
			splits = append(splits, models.Split{
				UserID: uid,
				Amount: decimal.New(cents, -2),
				Paid:   uid == payer || r.Intn(10) == 0,
			})
		}
		expenses = append(expenses, models.Expense{
			ID:      "e" + string(rune('a'+i)),
			PayerID: payer,
			Amount:  decimal.New(totalCents, -2),
			Date:    day0.Add(time.Duration(r.Intn(1000)) * time.Hour),
			Splits:  splits,
			GroupID: groupID,
		})
	}
	var settlements []models.Settlement
	for i := 0; i < r.Intn(8); i++ {
		from, to := r.Intn(len(users)), r.Intn(len(users))
		if from == to {
			continue
		}
		settlements = append(settlements, models.Settlement{
			ID:         "s" + string(rune('a'+i)),
			FromUserID: users[from],
			ToUserID:   users[to],
			Amount:     decimal.New(int64(1+r.Intn(20000)), -2),
			Date:       day0.Add(time.Duration(r.Intn(1000)) * time.Hour),
			GroupID:    groupID,
		})
	}
	return expenses, settlements
}

func TestConservation_Randomized(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	all := []string{"u1", "u2", "u3", "u4", "u5", "u6"}

	for trial := 0; trial < 200; trial++ {
		users := all[:2+r.Intn(len(all)-1)]
		expenses, settlements := randomRecords(r, users, "g")

		res, err := GroupLedger(users, expenses, settlements)
		require.NoError(t, err)
		require.Empty(t, res.Warnings)

		sum := decimal.Zero
		for _, m := range res.Members {
			sum = sum.Add(m.Net)
		}
		require.True(t, sum.IsZero(), "trial %d: nets sum to %s", trial, sum)
		require.True(t, res.Ledger.IsNetted())

		scalar := decimal.Zero
		for _, u := range users {
			b, _ := Aggregate(u, Everyone(), expenses, settlements)
			scalar = scalar.Add(b.Net())
		}
		require.True(t, scalar.IsZero(), "trial %d: aggregate nets sum to %s", trial, scalar)
	}
}
