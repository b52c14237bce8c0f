package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitx/internal/calculator"
	"github.com/mmynk/splitx/internal/ledger"
	"github.com/mmynk/splitx/internal/metrics"
	"github.com/mmynk/splitx/internal/models"
	"github.com/mmynk/splitx/internal/storage"
	"github.com/mmynk/splitx/pkg/api"
	"github.com/mmynk/splitx/pkg/api/apiconnect"
	"github.com/mmynk/splitx/pkg/logging"
)

var _ apiconnect.ExpenseServiceHandler = (*ExpenseService)(nil)

// ExpenseService implements the Connect ExpenseService.
type ExpenseService struct {
	store   storage.Store
	metrics *metrics.Metrics
}

// NewExpenseService creates a new ExpenseService. m may be nil.
func NewExpenseService(store storage.Store, m *metrics.Metrics) *ExpenseService {
	return &ExpenseService{store: store, metrics: m}
}

// CreateExpense computes the splits for the requested split type and
// stores the expense.
func (s *ExpenseService) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	logger := logging.FromContext(ctx)
	me, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	msg := req.Msg
	logger.Info("CreateExpense request received",
		"description", msg.Description,
		"amount", msg.Amount,
		"split_type", msg.SplitType,
		"group_id", msg.GroupID,
	)

	description := strings.TrimSpace(msg.Description)
	if description == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("description is required"))
	}
	splitType := models.SplitType(msg.SplitType)
	if !splitType.Valid() {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("unknown split type %q", msg.SplitType))
	}
	payerID := msg.PayerID
	if payerID == "" {
		payerID = me
	}

	splits, err := calculator.Compute(calculator.Request{
		Type:         splitType,
		Amount:       msg.Amount,
		PayerID:      payerID,
		Participants: msg.Participants,
		Shares:       toCalculatorShares(msg.Shares),
		Items:        toCalculatorItems(msg.Items),
		Subtotal:     msg.Subtotal,
	})
	if err != nil {
		logger.Warn("CreateExpense rejected", "error", err)
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	expense := &models.Expense{
		Description: description,
		Category:    strings.TrimSpace(msg.Category),
		Amount:      msg.Amount,
		Date:        msg.Date,
		PayerID:     payerID,
		SplitType:   splitType,
		Splits:      splits,
		GroupID:     msg.GroupID,
		CreatedBy:   me,
	}
	if err := expense.Validate(); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	involved := []string{payerID}
	for _, sp := range splits {
		involved = append(involved, sp.UserID)
	}
	if expense.GroupID != "" {
		group, err := loadGroupForMember(ctx, s.store, expense.GroupID, me)
		if err != nil {
			logger.Error("CreateExpense failed", "group_id", expense.GroupID, "error", err)
			return nil, err
		}
		for _, id := range involved {
			if !group.HasMember(id) {
				return nil, connect.NewError(connect.CodeInvalidArgument,
					fmt.Errorf("user %s is not a member of the group", id))
			}
		}
	} else if _, err := requireUsers(ctx, s.store, involved); err != nil {
		return nil, err
	}

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		logger.Error("CreateExpense failed", "error", err)
		return nil, connectError(err)
	}

	logger.Info("Expense created", "expense_id", expense.ID, "splits_count", len(expense.Splits))

	return connect.NewResponse(&api.CreateExpenseResponse{
		Expense: toAPIExpense(expense),
	}), nil
}

// DeleteExpense removes an expense. Only its creator or payer may do so.
func (s *ExpenseService) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	logger := logging.FromContext(ctx)
	me, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	logger.Info("DeleteExpense request received", "expense_id", req.Msg.ExpenseID)

	expense, err := s.store.GetExpense(ctx, req.Msg.ExpenseID)
	if err != nil {
		logger.Error("DeleteExpense failed", "expense_id", req.Msg.ExpenseID, "error", err)
		return nil, connectError(err)
	}
	if expense.CreatedBy != me && expense.PayerID != me {
		return nil, connect.NewError(connect.CodePermissionDenied,
			errors.New("only the creator or payer can delete this expense"))
	}

	if err := s.store.DeleteExpense(ctx, expense.ID); err != nil {
		logger.Error("DeleteExpense failed", "expense_id", expense.ID, "error", err)
		return nil, connectError(err)
	}

	logger.Info("Expense deleted", "expense_id", expense.ID)

	return connect.NewResponse(&api.DeleteExpenseResponse{Success: true}), nil
}

// GetExpensesBetweenUsers returns the direct records shared by the caller
// and another user, with the caller's balance against them.
func (s *ExpenseService) GetExpensesBetweenUsers(ctx context.Context, req *connect.Request[api.GetExpensesBetweenUsersRequest]) (*connect.Response[api.GetExpensesBetweenUsersResponse], error) {
	logger := logging.FromContext(ctx)
	me, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	other := req.Msg.UserID
	logger.Info("GetExpensesBetweenUsers request received", "other_user_id", other)

	if other == "" || other == me {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("another user id is required"))
	}
	otherUser, err := s.store.GetUserByID(ctx, other)
	if err != nil {
		return nil, connectError(err)
	}

	expenses, settlements, err := directRecordsBetween(ctx, s.store, me, other)
	if err != nil {
		logger.Error("GetExpensesBetweenUsers failed", "error", err)
		return nil, connectError(err)
	}

	balance, warnings, err := ledger.DirectBalance(me, other, expenseValues(expenses), settlementValues(settlements))
	if err != nil {
		return nil, connectError(err)
	}
	reportWarnings(ctx, s.metrics, warnings)

	logger.Info("GetExpensesBetweenUsers successful",
		"other_user_id", other,
		"expenses_count", len(expenses),
		"settlements_count", len(settlements),
	)

	return connect.NewResponse(&api.GetExpensesBetweenUsersResponse{
		Expenses:    toAPIExpenses(expenses),
		Settlements: toAPISettlements(settlements),
		OtherUser:   toAPIUser(otherUser),
		Balance:     toAPIBalance(balance),
	}), nil
}

// directRecordsBetween loads the group-less expenses where one of a and b
// paid and the other holds a share, and the direct settlements between them.
func directRecordsBetween(ctx context.Context, store storage.Store, a, b string) ([]*models.Expense, []*models.Settlement, error) {
	all, err := store.ListExpenses(ctx, storage.ExpenseFilter{DirectOnly: true, UserID: a})
	if err != nil {
		return nil, nil, err
	}
	var expenses []*models.Expense
	for _, e := range all {
		_, aShare := e.SplitFor(a)
		_, bShare := e.SplitFor(b)
		if (e.PayerID == a && bShare) || (e.PayerID == b && aShare) {
			expenses = append(expenses, e)
		}
	}

	sets, err := store.ListSettlements(ctx, storage.SettlementFilter{DirectOnly: true, UserID: a})
	if err != nil {
		return nil, nil, err
	}
	var settlements []*models.Settlement
	for _, st := range sets {
		if st.Between(a, b) {
			settlements = append(settlements, st)
		}
	}
	return expenses, settlements, nil
}

func toCalculatorShares(in []api.Share) []calculator.Share {
	out := make([]calculator.Share, len(in))
	for i, sh := range in {
		out[i] = calculator.Share{UserID: sh.UserID, Value: sh.Value}
	}
	return out
}

func toCalculatorItems(in []api.Item) []calculator.Item {
	out := make([]calculator.Item, len(in))
	for i, it := range in {
		out[i] = calculator.Item{Description: it.Description, Amount: it.Amount, AssignedTo: it.AssignedTo}
	}
	return out
}
