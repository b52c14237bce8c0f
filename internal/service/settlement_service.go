package service

import (
	"context"
	"errors"
	"fmt"
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

var _ apiconnect.SettlementServiceHandler = (*SettlementService)(nil)

// SettlementService implements the Connect SettlementService.
type SettlementService struct {
	store   storage.Store
	metrics *metrics.Metrics
}

// NewSettlementService creates a new SettlementService. m may be nil.
func NewSettlementService(store storage.Store, m *metrics.Metrics) *SettlementService {
	return &SettlementService{store: store, metrics: m}
}

// CreateSettlement records a payment between two users. The caller must be
// one of them.
func (s *SettlementService) CreateSettlement(ctx context.Context, req *connect.Request[api.CreateSettlementRequest]) (*connect.Response[api.CreateSettlementResponse], error) {
	logger := logging.FromContext(ctx)
	me, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	msg := req.Msg
	logger.Info("CreateSettlement request received",
		"from_user_id", msg.PaidByUserID,
		"to_user_id", msg.ReceivedByUserID,
		"amount", msg.Amount,
		"group_id", msg.GroupID,
	)

	settlement := &models.Settlement{
		GroupID:           msg.GroupID,
		FromUserID:        msg.PaidByUserID,
		ToUserID:          msg.ReceivedByUserID,
		Amount:            msg.Amount,
		Date:              msg.Date,
		Note:              strings.TrimSpace(msg.Note),
		RelatedExpenseIDs: msg.RelatedExpenseIDs,
		CreatedBy:         me,
	}
	if err := settlement.Validate(); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	if !settlement.Involves(me) {
		return nil, connect.NewError(connect.CodePermissionDenied, errNotParty)
	}

	if settlement.GroupID != "" {
		group, err := loadGroupForMember(ctx, s.store, settlement.GroupID, me)
		if err != nil {
			logger.Error("CreateSettlement failed", "group_id", settlement.GroupID, "error", err)
			return nil, err
		}
		if !group.HasMember(settlement.FromUserID) || !group.HasMember(settlement.ToUserID) {
			return nil, connect.NewError(connect.CodeInvalidArgument,
				errors.New("both users must be members of the group"))
		}
	} else if _, err := requireUsers(ctx, s.store, []string{settlement.FromUserID, settlement.ToUserID}); err != nil {
		return nil, err
	}

	if err := s.store.CreateSettlement(ctx, settlement); err != nil {
		logger.Error("CreateSettlement failed", "error", err)
		return nil, connectError(err)
	}

	logger.Info("Settlement created", "settlement_id", settlement.ID)

	return connect.NewResponse(&api.CreateSettlementResponse{
		Settlement: toAPISettlement(settlement),
	}), nil
}

// GetSettlementData previews what the caller and a user, or the caller and
// each member of a group, owe each other.
func (s *SettlementService) GetSettlementData(ctx context.Context, req *connect.Request[api.GetSettlementDataRequest]) (*connect.Response[api.GetSettlementDataResponse], error) {
	logger := logging.FromContext(ctx)
	me, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	logger.Info("GetSettlementData request received",
		"entity_type", req.Msg.EntityType,
		"entity_id", req.Msg.EntityID,
	)

	var resp *api.GetSettlementDataResponse
	switch req.Msg.EntityType {
	case api.EntityUser:
		resp, err = s.userSettlementData(ctx, me, req.Msg.EntityID)
	case api.EntityGroup:
		resp, err = s.groupSettlementData(ctx, me, req.Msg.EntityID)
	default:
		return nil, connect.NewError(connect.CodeInvalidArgument,
			fmt.Errorf("invalid entity type %q", req.Msg.EntityType))
	}
	if err != nil {
		logger.Error("GetSettlementData failed", "error", err)
		return nil, err
	}
	return connect.NewResponse(resp), nil
}

func (s *SettlementService) userSettlementData(ctx context.Context, me, other string) (*api.GetSettlementDataResponse, error) {
	if other == "" || other == me {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("another user id is required"))
	}
	user, err := s.store.GetUserByID(ctx, other)
	if err != nil {
		return nil, connectError(err)
	}
	expenses, settlements, err := directRecordsBetween(ctx, s.store, me, other)
	if err != nil {
		return nil, connectError(err)
	}

	balance, warnings, err := ledger.DirectBalance(me, other, expenseValues(expenses), settlementValues(settlements))
	if err != nil {
		return nil, connectError(err)
	}
	reportWarnings(ctx, s.metrics, warnings)

	counterpart := toAPIUser(user)
	b := toAPIBalance(balance)
	return &api.GetSettlementDataResponse{
		Type:        api.EntityUser,
		Counterpart: &counterpart,
		Balance:     &b,
	}, nil
}

// groupSettlementData lists every other member in membership order, with
// the caller's position against them inside the group.
func (s *SettlementService) groupSettlementData(ctx context.Context, me, groupID string) (*api.GetSettlementDataResponse, error) {
	group, err := loadGroupForMember(ctx, s.store, groupID, me)
	if err != nil {
		return nil, err
	}
	expenses, err := s.store.ListExpenses(ctx, storage.ExpenseFilter{GroupID: group.ID})
	if err != nil {
		return nil, connectError(err)
	}
	settlements, err := s.store.ListSettlements(ctx, storage.SettlementFilter{GroupID: group.ID})
	if err != nil {
		return nil, connectError(err)
	}
	users, err := lookupUsers(ctx, s.store, group.MemberIDs())
	if err != nil {
		return nil, err
	}

	positions, warnings := ledger.Positions(me, ledger.ScopeOf(group.MemberIDs()...),
		expenseValues(expenses), settlementValues(settlements))
	reportWarnings(ctx, s.metrics, warnings)

	byID := make(map[string]ledger.Position, len(positions))
	for _, p := range positions {
		byID[p.CounterpartID] = p
	}

	balances := make([]api.CounterpartBalance, 0, len(group.Members))
	for _, m := range group.Members {
		if m.UserID == me {
			continue
		}
		p := byID[m.UserID]
		balances = append(balances, api.CounterpartBalance{
			User:    userOrUnknown(users, m.UserID),
			Balance: toAPIBalance(ledger.Balance{Owed: p.Owed, Owing: p.Owing}),
		})
	}

	summary := toGroupSummary(group)
	return &api.GetSettlementDataResponse{
		Type:     api.EntityGroup,
		Group:    &summary,
		Balances: balances,
	}, nil
}
