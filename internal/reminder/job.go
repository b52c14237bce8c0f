package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/mmynk/splitx/internal/ledger"
	"github.com/mmynk/splitx/internal/metrics"
	"github.com/mmynk/splitx/internal/models"
	"github.com/mmynk/splitx/internal/storage"
	"github.com/mmynk/splitx/pkg/logging"
)

// Store is what a sweep reads.
type Store interface {
	ListUsers(ctx context.Context) ([]*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	ListExpenses(ctx context.Context, filter storage.ExpenseFilter) ([]*models.Expense, error)
	ListSettlements(ctx context.Context, filter storage.SettlementFilter) ([]*models.Settlement, error)
}

// Summary counts one sweep's outcome. Processed is the number of indebted
// users found.
type Summary struct {
	Processed int
	Published int
	Failed    int
}

// Job runs reminder sweeps.
type Job struct {
	store     Store
	publisher Publisher
	metrics   *metrics.Metrics
	workers   int
}

// Option configures a Job.
type Option func(*Job)

// WithWorkers bounds how many users are folded concurrently.
func WithWorkers(n int) Option {
	return func(j *Job) {
		j.workers = n
	}
}

// WithMetrics records sweep duration and reminder outcomes on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(j *Job) {
		j.metrics = m
	}
}

func NewJob(store Store, publisher Publisher, opts ...Option) *Job {
	j := &Job{store: store, publisher: publisher}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Run performs one sweep over the direct records. A failed publish is
// counted and the sweep goes on; load errors and counterparts that cannot
// be resolved abort it.
func (j *Job) Run(ctx context.Context) (Summary, error) {
	logger := logging.FromContext(ctx)
	start := time.Now()
	defer func() { j.metrics.SweepDuration(time.Since(start)) }()

	var summary Summary

	users, err := j.store.ListUsers(ctx)
	if err != nil {
		return summary, fmt.Errorf("list users: %w", err)
	}
	expenses, err := j.store.ListExpenses(ctx, storage.ExpenseFilter{DirectOnly: true})
	if err != nil {
		return summary, fmt.Errorf("list expenses: %w", err)
	}
	settlements, err := j.store.ListSettlements(ctx, storage.SettlementFilter{DirectOnly: true})
	if err != nil {
		return summary, fmt.Errorf("list settlements: %w", err)
	}

	cache := newUserCache(j.store, users)
	ids := make([]string, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}

	exps := make([]models.Expense, len(expenses))
	for i, e := range expenses {
		exps[i] = *e
	}
	sets := make([]models.Settlement, len(settlements))
	for i, s := range settlements {
		sets[i] = *s
	}

	debts, warnings, err := ledger.OutstandingDebts(ctx, ids, exps, sets, ledger.WithWorkers(j.workers))
	for _, w := range warnings {
		logger.Warn("Ledger record skipped", "kind", w.Kind, "record_id", w.RecordID, "detail", w.Detail)
		j.metrics.IntegrityWarning(string(w.Kind))
	}
	if err != nil {
		return summary, fmt.Errorf("outstanding debts: %w", err)
	}

	for _, ud := range debts {
		summary.Processed++

		r, err := j.reminderFor(ctx, cache, ud)
		if err != nil {
			return summary, err
		}

		if err := j.publisher.Publish(ctx, r); err != nil {
			summary.Failed++
			j.metrics.Reminder(metrics.ResultFailed)
			logger.Error("Failed to publish reminder", "user_id", r.UserID, "error", err)
			continue
		}
		summary.Published++
		j.metrics.Reminder(metrics.ResultPublished)
	}

	logger.Info("Reminder sweep complete",
		"users", len(users),
		"processed", summary.Processed,
		"published", summary.Published,
		"failed", summary.Failed,
		"duration", time.Since(start),
	)
	return summary, nil
}

func (j *Job) reminderFor(ctx context.Context, cache *userCache, ud ledger.UserDebts) (Reminder, error) {
	user, err := cache.get(ctx, ud.UserID)
	if err != nil {
		return Reminder{}, err
	}
	r := Reminder{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.DisplayName,
		Debts:  make([]Debt, len(ud.Debts)),
	}
	for i, d := range ud.Debts {
		counterpart, err := cache.get(ctx, d.CounterpartID)
		if err != nil {
			return Reminder{}, err
		}
		r.Debts[i] = Debt{
			CounterpartID:   d.CounterpartID,
			CounterpartName: counterpart.DisplayName,
			Amount:          d.Amount,
			Since:           d.Since,
		}
	}
	return r, nil
}

// userCache lives for one sweep. Lookups that miss fall through to the
// store; it is only used from the sweep goroutine.
type userCache struct {
	store Store
	users map[string]*models.User
}

func newUserCache(store Store, seed []*models.User) *userCache {
	c := &userCache{store: store, users: make(map[string]*models.User, len(seed))}
	for _, u := range seed {
		c.users[u.ID] = u
	}
	return c
}

func (c *userCache) get(ctx context.Context, id string) (*models.User, error) {
	if u, ok := c.users[id]; ok {
		return u, nil
	}
	u, err := c.store.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("resolve user %s: %w", id, err)
	}
	c.users[id] = u
	return u, nil
}
