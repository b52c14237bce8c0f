package service

import (
	"context"
	"fmt"
	"time"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitx/internal/ledger"
	"github.com/mmynk/splitx/internal/metrics"
	"github.com/mmynk/splitx/internal/models"
	"github.com/mmynk/splitx/internal/storage"
	"github.com/mmynk/splitx/pkg/api"
	"github.com/mmynk/splitx/pkg/api/apiconnect"
	"github.com/mmynk/splitx/pkg/logging"
)

var _ apiconnect.DashboardServiceHandler = (*DashboardService)(nil)

// DashboardService implements the Connect DashboardService.
type DashboardService struct {
	store   storage.Store
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewDashboardService creates a new DashboardService. m may be nil.
func NewDashboardService(store storage.Store, m *metrics.Metrics) *DashboardService {
	return &DashboardService{store: store, metrics: m, now: time.Now}
}

// GetUserBalances summarizes the caller's direct (group-less) balances.
// The totals are gross; the lists hold each counterpart's net.
func (s *DashboardService) GetUserBalances(ctx context.Context, req *connect.Request[api.GetUserBalancesRequest]) (*connect.Response[api.GetUserBalancesResponse], error) {
	logger := logging.FromContext(ctx)
	me, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	logger.Info("GetUserBalances request received")

	expenses, err := s.store.ListExpenses(ctx, storage.ExpenseFilter{DirectOnly: true, UserID: me})
	if err != nil {
		logger.Error("GetUserBalances failed", "error", err)
		return nil, connectError(err)
	}
	settlements, err := s.store.ListSettlements(ctx, storage.SettlementFilter{DirectOnly: true, UserID: me})
	if err != nil {
		logger.Error("GetUserBalances failed", "error", err)
		return nil, connectError(err)
	}

	total, positions, warnings := ledger.Summarize(me, ledger.Everyone(), expenseValues(expenses), settlementValues(settlements))
	reportWarnings(ctx, s.metrics, warnings)

	ids := make([]string, len(positions))
	for i, p := range positions {
		ids[i] = p.CounterpartID
	}
	users, err := lookupUsers(ctx, s.store, ids)
	if err != nil {
		return nil, err
	}

	resp := &api.GetUserBalancesResponse{
		YouOwe:       total.Owing,
		YouAreOwed:   total.Owed,
		TotalBalance: total.Net(),
		OweList:      []api.CounterpartAmount{},
		OwedByList:   []api.CounterpartAmount{},
	}
	for _, p := range positions {
		net := p.Net()
		entry := api.CounterpartAmount{User: userOrUnknown(users, p.CounterpartID), Amount: net.Abs()}
		switch net.Sign() {
		case 1:
			resp.OwedByList = append(resp.OwedByList, entry)
		case -1:
			resp.OweList = append(resp.OweList, entry)
		}
	}
	sortAmountsDesc(resp.OweList)
	sortAmountsDesc(resp.OwedByList)

	logger.Info("GetUserBalances successful",
		"owe_count", len(resp.OweList),
		"owed_by_count", len(resp.OwedByList),
	)
	return connect.NewResponse(resp), nil
}

// GetUserGroups returns each of the caller's groups with the caller's net
// balance inside it.
func (s *DashboardService) GetUserGroups(ctx context.Context, req *connect.Request[api.GetUserGroupsRequest]) (*connect.Response[api.GetUserGroupsResponse], error) {
	logger := logging.FromContext(ctx)
	me, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	logger.Info("GetUserGroups request received")

	groups, err := s.store.ListGroupsForUser(ctx, me)
	if err != nil {
		logger.Error("GetUserGroups failed", "error", err)
		return nil, connectError(err)
	}

	out := make([]api.UserGroup, 0, len(groups))
	for _, g := range groups {
		expenses, err := s.store.ListExpenses(ctx, storage.ExpenseFilter{GroupID: g.ID, UserID: me})
		if err != nil {
			logger.Error("GetUserGroups failed", "group_id", g.ID, "error", err)
			return nil, connectError(err)
		}
		settlements, err := s.store.ListSettlements(ctx, storage.SettlementFilter{GroupID: g.ID, UserID: me})
		if err != nil {
			logger.Error("GetUserGroups failed", "group_id", g.ID, "error", err)
			return nil, connectError(err)
		}
		b, warnings := ledger.Aggregate(me, ledger.ScopeOf(g.MemberIDs()...),
			expenseValues(expenses), settlementValues(settlements))
		reportWarnings(ctx, s.metrics, warnings)
		out = append(out, api.UserGroup{GroupSummary: toGroupSummary(g), Balance: b.Net()})
	}

	logger.Info("GetUserGroups successful", "count", len(out))
	return connect.NewResponse(&api.GetUserGroupsResponse{Groups: out}), nil
}

// GetTotalSpent sums the caller's shares of expenses dated in the year.
func (s *DashboardService) GetTotalSpent(ctx context.Context, req *connect.Request[api.GetTotalSpentRequest]) (*connect.Response[api.GetTotalSpentResponse], error) {
	logger := logging.FromContext(ctx)
	me, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	year, err := s.year(req.Msg.Year)
	if err != nil {
		return nil, err
	}
	logger.Info("GetTotalSpent request received", "year", year)

	expenses, err := s.yearExpenses(ctx, me, year)
	if err != nil {
		logger.Error("GetTotalSpent failed", "error", err)
		return nil, connectError(err)
	}

	total := decimal.Zero
	for _, e := range expenses {
		if sp, ok := e.SplitFor(me); ok {
			total = total.Add(sp.Amount)
		}
	}

	return connect.NewResponse(&api.GetTotalSpentResponse{Year: year, Total: total}), nil
}

// GetMonthlySpending buckets the caller's shares by calendar month (UTC).
// All twelve months are returned in order.
func (s *DashboardService) GetMonthlySpending(ctx context.Context, req *connect.Request[api.GetMonthlySpendingRequest]) (*connect.Response[api.GetMonthlySpendingResponse], error) {
	logger := logging.FromContext(ctx)
	me, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	year, err := s.year(req.Msg.Year)
	if err != nil {
		return nil, err
	}
	logger.Info("GetMonthlySpending request received", "year", year)

	expenses, err := s.yearExpenses(ctx, me, year)
	if err != nil {
		logger.Error("GetMonthlySpending failed", "error", err)
		return nil, connectError(err)
	}

	months := make([]api.MonthTotal, 12)
	for i := range months {
		months[i] = api.MonthTotal{
			Month: time.Date(year, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC),
			Total: decimal.Zero,
		}
	}
	for _, e := range expenses {
		sp, ok := e.SplitFor(me)
		if !ok {
			continue
		}
		m := int(e.Date.UTC().Month()) - 1
		months[m].Total = months[m].Total.Add(sp.Amount)
	}

	return connect.NewResponse(&api.GetMonthlySpendingResponse{Months: months}), nil
}

func (s *DashboardService) year(requested int) (int, error) {
	if requested == 0 {
		return s.now().UTC().Year(), nil
	}
	if requested < 1970 || requested > 9999 {
		return 0, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("invalid year %d", requested))
	}
	return requested, nil
}

func (s *DashboardService) yearExpenses(ctx context.Context, userID string, year int) ([]*models.Expense, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return s.store.ListExpenses(ctx, storage.ExpenseFilter{
		UserID: userID,
		Since:  start,
		Until:  start.AddDate(1, 0, 0),
	})
}
