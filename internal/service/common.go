// Package service implements the splitx.v1 Connect services.
package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitx/internal/auth"
	"github.com/mmynk/splitx/internal/calculator"
	"github.com/mmynk/splitx/internal/ledger"
	"github.com/mmynk/splitx/internal/metrics"
	"github.com/mmynk/splitx/internal/middleware"
	"github.com/mmynk/splitx/internal/models"
	"github.com/mmynk/splitx/internal/storage"
	"github.com/mmynk/splitx/pkg/api"
	"github.com/mmynk/splitx/pkg/logging"
)

var (
	errNotGroupMember = errors.New("you are not a member of this group")
	errNotParty       = errors.New("you must be either the payer or the receiver")
)

// callerID returns the authenticated user or an Unauthenticated error.
func callerID(ctx context.Context) (string, error) {
	id := middleware.GetUserID(ctx)
	if id == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return id, nil
}

// connectError maps domain and storage errors onto Connect codes. Errors
// that already carry a code pass through.
func connectError(err error) error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return err
	}

	var scopeErr *ledger.ScopeError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.As(err, &scopeErr),
		errors.Is(err, models.ErrSplitSumMismatch),
		errors.Is(err, models.ErrDuplicateSplit),
		errors.Is(err, models.ErrNonPositiveAmount),
		errors.Is(err, models.ErrSelfSettlement),
		errors.Is(err, calculator.ErrNoParticipants),
		errors.Is(err, calculator.ErrPercentageTotal),
		errors.Is(err, calculator.ErrZeroSubtotal),
		errors.Is(err, calculator.ErrUnassignedItems):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	}
	return connect.NewError(connect.CodeInternal, err)
}

// reportWarnings logs skipped ledger records and counts them.
func reportWarnings(ctx context.Context, m *metrics.Metrics, warnings []ledger.Warning) {
	logger := logging.FromContext(ctx)
	for _, w := range warnings {
		logger.Warn("Ledger record skipped",
			"kind", w.Kind,
			"record_id", w.RecordID,
			"user_id", w.UserID,
			"detail", w.Detail,
		)
		m.IntegrityWarning(string(w.Kind))
	}
}

func expenseValues(in []*models.Expense) []models.Expense {
	out := make([]models.Expense, len(in))
	for i, e := range in {
		out[i] = *e
	}
	return out
}

func settlementValues(in []*models.Settlement) []models.Settlement {
	out := make([]models.Settlement, len(in))
	for i, s := range in {
		out[i] = *s
	}
	return out
}

// loadGroupForMember fetches a group and checks userID belongs to it.
func loadGroupForMember(ctx context.Context, store storage.GroupStore, groupID, userID string) (*models.Group, error) {
	if groupID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("group id is required"))
	}
	group, err := store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, connectError(err)
	}
	if !group.HasMember(userID) {
		return nil, connect.NewError(connect.CodePermissionDenied, errNotGroupMember)
	}
	return group, nil
}

// lookupUsers resolves ids to users; missing ids are left out.
func lookupUsers(ctx context.Context, store storage.UserStore, ids []string) (map[string]*models.User, error) {
	users, err := store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, connectError(err)
	}
	return users, nil
}

// requireUsers fails with NotFound unless every id is a known user.
func requireUsers(ctx context.Context, store storage.UserStore, ids []string) (map[string]*models.User, error) {
	users, err := lookupUsers(ctx, store, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if _, ok := users[id]; !ok {
			return nil, connect.NewError(connect.CodeNotFound, errors.New("user not found: "+id))
		}
	}
	return users, nil
}

func toAPIUser(u *models.User) api.User {
	if u == nil {
		return api.User{}
	}
	return api.User{ID: u.ID, Email: u.Email, DisplayName: u.DisplayName, ImageURL: u.ImageURL}
}

// userOrUnknown keeps a record renderable after its user was removed.
func userOrUnknown(users map[string]*models.User, id string) api.User {
	if u, ok := users[id]; ok {
		return toAPIUser(u)
	}
	return api.User{ID: id, DisplayName: "Unknown"}
}

func toAPIExpense(e *models.Expense) api.Expense {
	splits := make([]api.Split, len(e.Splits))
	for i, s := range e.Splits {
		splits[i] = api.Split{UserID: s.UserID, Amount: s.Amount, Paid: s.Paid}
	}
	return api.Expense{
		ID:          e.ID,
		Description: e.Description,
		Category:    e.Category,
		Amount:      e.Amount,
		Date:        e.Date,
		PayerID:     e.PayerID,
		SplitType:   string(e.SplitType),
		Splits:      splits,
		GroupID:     e.GroupID,
		CreatedBy:   e.CreatedBy,
		CreatedAt:   e.CreatedAt,
	}
}

func toAPIExpenses(in []*models.Expense) []api.Expense {
	out := make([]api.Expense, len(in))
	for i, e := range in {
		out[i] = toAPIExpense(e)
	}
	return out
}

func toAPISettlement(s *models.Settlement) api.Settlement {
	return api.Settlement{
		ID:                s.ID,
		GroupID:           s.GroupID,
		FromUserID:        s.FromUserID,
		ToUserID:          s.ToUserID,
		Amount:            s.Amount,
		Date:              s.Date,
		Note:              s.Note,
		RelatedExpenseIDs: s.RelatedExpenseIDs,
		CreatedBy:         s.CreatedBy,
		CreatedAt:         s.CreatedAt,
	}
}

func toAPISettlements(in []*models.Settlement) []api.Settlement {
	out := make([]api.Settlement, len(in))
	for i, s := range in {
		out[i] = toAPISettlement(s)
	}
	return out
}

func toAPIGroup(g *models.Group, users map[string]*models.User) api.Group {
	members := make([]api.Member, len(g.Members))
	for i, m := range g.Members {
		u := userOrUnknown(users, m.UserID)
		members[i] = api.Member{
			UserID:      m.UserID,
			DisplayName: u.DisplayName,
			Email:       u.Email,
			ImageURL:    u.ImageURL,
			Role:        m.Role,
			JoinedAt:    m.JoinedAt,
		}
	}
	return api.Group{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		CreatedBy:   g.CreatedBy,
		Members:     members,
		CreatedAt:   g.CreatedAt,
	}
}

func toGroupSummary(g *models.Group) api.GroupSummary {
	return api.GroupSummary{ID: g.ID, Name: g.Name, Description: g.Description, MemberCount: len(g.Members)}
}

func toAPIBalance(b ledger.Balance) api.Balance {
	return api.Balance{YouAreOwed: b.Owed, YouOwe: b.Owing, Net: b.Net()}
}

// sortUsersByName orders case-insensitively by display name, then id.
func sortUsersByName(users []api.User) {
	sort.Slice(users, func(i, j int) bool {
		a, b := strings.ToLower(users[i].DisplayName), strings.ToLower(users[j].DisplayName)
		if a != b {
			return a < b
		}
		return users[i].ID < users[j].ID
	})
}

func sortGroupsByName(groups []api.GroupSummary) {
	sort.Slice(groups, func(i, j int) bool {
		a, b := strings.ToLower(groups[i].Name), strings.ToLower(groups[j].Name)
		if a != b {
			return a < b
		}
		return groups[i].ID < groups[j].ID
	})
}

// sortAmountsDesc orders largest first, then by user id.
func sortAmountsDesc(list []api.CounterpartAmount) {
	sort.Slice(list, func(i, j int) bool {
		if c := list[i].Amount.Cmp(list[j].Amount); c != 0 {
			return c > 0
		}
		return list[i].User.ID < list[j].User.ID
	})
}
