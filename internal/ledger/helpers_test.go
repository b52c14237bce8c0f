package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitx/internal/models"
)

var day0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// equalExpense splits amount evenly between payer and others; the payer's
// own share is marked paid, as the expense form records it.
func equalExpense(id, payer, amount string, at time.Time, others ...string) models.Expense {
	total := d(amount)
	n := int64(len(others) + 1)
	share := total.Div(decimal.NewFromInt(n)).Round(2)
	splits := []models.Split{{UserID: payer, Amount: total.Sub(share.Mul(decimal.NewFromInt(n - 1))), Paid: true}}
	for _, o := range others {
		splits = append(splits, models.Split{UserID: o, Amount: share})
	}
	return models.Expense{ID: id, PayerID: payer, Amount: total, Date: at, SplitType: models.SplitEqual, Splits: splits}
}

func settle(id, from, to, amount string, at time.Time) models.Settlement {
	return models.Settlement{ID: id, FromUserID: from, ToUserID: to, Amount: d(amount), Date: at}
}

func inGroup(groupID string, e models.Expense) models.Expense {
	e.GroupID = groupID
	return e
}
