package service

import (
	"context"
	"errors"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitx/internal/ledger"
	"github.com/mmynk/splitx/internal/metrics"
	"github.com/mmynk/splitx/internal/models"
	"github.com/mmynk/splitx/internal/storage"
	"github.com/mmynk/splitx/pkg/api"
	"github.com/mmynk/splitx/pkg/api/apiconnect"
	"github.com/mmynk/splitx/pkg/logging"
)

var _ apiconnect.GroupServiceHandler = (*GroupService)(nil)

// GroupService implements the Connect GroupService
type GroupService struct {
	store   storage.Store
	metrics *metrics.Metrics
}

// NewGroupService creates a new GroupService with the given storage backend.
// m may be nil.
func NewGroupService(store storage.Store, m *metrics.Metrics) *GroupService {
	return &GroupService{store: store, metrics: m}
}

// CreateGroup creates a new group. The caller becomes its admin.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	logger := logging.FromContext(ctx)
	me, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	logger.Info("CreateGroup request received",
		"name", req.Msg.Name,
		"members_count", len(req.Msg.MemberIDs),
	)

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("group name is required"))
	}

	group := &models.Group{
		Name:        name,
		Description: strings.TrimSpace(req.Msg.Description),
		CreatedBy:   me,
		Members:     []models.Member{{UserID: me, Role: models.RoleAdmin}},
	}
	seen := map[string]bool{me: true}
	for _, id := range req.Msg.MemberIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		group.Members = append(group.Members, models.Member{UserID: id, Role: models.RoleMember})
	}

	users, err := requireUsers(ctx, s.store, group.MemberIDs())
	if err != nil {
		logger.Error("CreateGroup failed", "error", err)
		return nil, err
	}

	// Save to storage (generates ID and CreatedAt)
	if err := s.store.CreateGroup(ctx, group); err != nil {
		logger.Error("CreateGroup failed", "error", err)
		return nil, connectError(err)
	}

	logger.Info("Group created", "group_id", group.ID)

	return connect.NewResponse(&api.CreateGroupResponse{
		Group: toAPIGroup(group, users),
	}), nil
}

// GetGroup retrieves a group by ID. Only members may read it.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	logger := logging.FromContext(ctx)
	me, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	logger.Info("GetGroup request received", "group_id", req.Msg.GroupID)

	group, err := loadGroupForMember(ctx, s.store, req.Msg.GroupID, me)
	if err != nil {
		logger.Error("GetGroup failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, err
	}
	users, err := lookupUsers(ctx, s.store, group.MemberIDs())
	if err != nil {
		return nil, err
	}

	logger.Info("GetGroup successful", "group_id", group.ID, "name", group.Name)

	return connect.NewResponse(&api.GetGroupResponse{
		Group: toAPIGroup(group, users),
	}), nil
}

// ListGroups returns the caller's groups sorted by name.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	logger := logging.FromContext(ctx)
	me, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	logger.Info("ListGroups request received")

	groups, err := s.store.ListGroupsForUser(ctx, me)
	if err != nil {
		logger.Error("ListGroups failed", "error", err)
		return nil, connectError(err)
	}

	summaries := make([]api.GroupSummary, len(groups))
	for i, g := range groups {
		summaries[i] = toGroupSummary(g)
	}
	sortGroupsByName(summaries)

	logger.Info("ListGroups successful", "count", len(summaries))

	return connect.NewResponse(&api.ListGroupsResponse{
		Groups: summaries,
	}), nil
}

// GetGroupExpenses returns the group with its records and the netted
// roster of member balances.
func (s *GroupService) GetGroupExpenses(ctx context.Context, req *connect.Request[api.GetGroupExpensesRequest]) (*connect.Response[api.GetGroupExpensesResponse], error) {
	logger := logging.FromContext(ctx)
	me, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	groupID := req.Msg.GroupID
	logger.Info("GetGroupExpenses request received", "group_id", groupID)

	group, err := loadGroupForMember(ctx, s.store, groupID, me)
	if err != nil {
		logger.Error("GetGroupExpenses failed", "group_id", groupID, "error", err)
		return nil, err
	}

	expenses, err := s.store.ListExpenses(ctx, storage.ExpenseFilter{GroupID: group.ID})
	if err != nil {
		logger.Error("GetGroupExpenses failed - could not list expenses", "group_id", groupID, "error", err)
		return nil, connectError(err)
	}
	settlements, err := s.store.ListSettlements(ctx, storage.SettlementFilter{GroupID: group.ID})
	if err != nil {
		logger.Error("GetGroupExpenses failed - could not list settlements", "group_id", groupID, "error", err)
		return nil, connectError(err)
	}
	users, err := lookupUsers(ctx, s.store, group.MemberIDs())
	if err != nil {
		return nil, err
	}

	balances, err := s.roster(ctx, group, users, expenses, settlements)
	if err != nil {
		logger.Error("GetGroupExpenses failed - calculation error", "group_id", groupID, "error", err)
		return nil, err
	}

	logger.Info("GetGroupExpenses successful",
		"group_id", groupID,
		"expenses_count", len(expenses),
		"settlements_count", len(settlements),
	)

	return connect.NewResponse(&api.GetGroupExpensesResponse{
		Group:       toAPIGroup(group, users),
		Expenses:    toAPIExpenses(expenses),
		Settlements: toAPISettlements(settlements),
		Balances:    balances,
	}), nil
}

// roster runs the group ledger. A group with a single member has nobody to
// owe, so its roster is that member at zero.
func (s *GroupService) roster(ctx context.Context, group *models.Group, users map[string]*models.User, expenses []*models.Expense, settlements []*models.Settlement) ([]api.MemberBalance, error) {
	if len(group.Members) < 2 {
		out := make([]api.MemberBalance, 0, len(group.Members))
		for _, m := range group.Members {
			out = append(out, zeroMemberBalance(m.UserID, userOrUnknown(users, m.UserID).DisplayName))
		}
		return out, nil
	}

	res, err := ledger.GroupLedger(group.MemberIDs(), expenseValues(expenses), settlementValues(settlements))
	if err != nil {
		return nil, connectError(err)
	}
	reportWarnings(ctx, s.metrics, res.Warnings)

	out := make([]api.MemberBalance, len(res.Members))
	for i, m := range res.Members {
		owes := make([]api.Debt, len(m.Owes))
		for j, d := range m.Owes {
			owes[j] = api.Debt{UserID: d.To, Amount: d.Amount}
		}
		owedBy := make([]api.Debt, len(m.OwedBy))
		for j, c := range m.OwedBy {
			owedBy[j] = api.Debt{UserID: c.From, Amount: c.Amount}
		}
		out[i] = api.MemberBalance{
			UserID:      m.ID,
			DisplayName: userOrUnknown(users, m.ID).DisplayName,
			Owed:        m.Owed,
			Owing:       m.Owing,
			Net:         m.Net,
			Owes:        owes,
			OwedBy:      owedBy,
		}
	}
	return out, nil
}

func zeroMemberBalance(id, name string) api.MemberBalance {
	return api.MemberBalance{
		UserID:      id,
		DisplayName: name,
		Owes:        []api.Debt{},
		OwedBy:      []api.Debt{},
	}
}
