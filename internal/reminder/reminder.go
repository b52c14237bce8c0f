// Package reminder sweeps the direct ledger for outstanding debts and
// publishes one payment reminder per indebted user.
package reminder

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
)

// Debt is one amount the reminded user owes.
type Debt struct {
	CounterpartID   string          `json:"counterpartId"`
	CounterpartName string          `json:"counterpartName"`
	Amount          decimal.Decimal `json:"amount"`
	Since           time.Time       `json:"since"`
}

// Reminder is the message published for one user.
type Reminder struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Debts  []Debt `json:"debts"`
}

// Total adds up the reminder's debts.
func (r Reminder) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, d := range r.Debts {
		sum = sum.Add(d.Amount)
	}
	return sum
}

// Publisher delivers reminders.
type Publisher interface {
	Publish(ctx context.Context, r Reminder) error
}

// LogPublisher writes reminders to the log. Used when no broker is
// configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, r Reminder) error {
	p.logger.InfoContext(ctx, "Payment reminder",
		"user_id", r.UserID,
		"email", r.Email,
		"debts", len(r.Debts),
		"total", r.Total().StringFixed(2),
	)
	return nil
}
