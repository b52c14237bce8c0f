package service

import (
	"context"

	"connectrpc.com/connect"

	"github.com/mmynk/splitx/internal/storage"
	"github.com/mmynk/splitx/pkg/api"
	"github.com/mmynk/splitx/pkg/api/apiconnect"
	"github.com/mmynk/splitx/pkg/logging"
)

var _ apiconnect.ContactServiceHandler = (*ContactService)(nil)

// ContactService implements the Connect ContactService.
type ContactService struct {
	store storage.Store
}

// NewContactService creates a new ContactService.
func NewContactService(store storage.Store) *ContactService {
	return &ContactService{store: store}
}

// ListContacts returns everyone the caller shares a direct expense with and
// the caller's groups, each sorted by name.
func (s *ContactService) ListContacts(ctx context.Context, req *connect.Request[api.ListContactsRequest]) (*connect.Response[api.ListContactsResponse], error) {
	logger := logging.FromContext(ctx)
	me, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	logger.Info("ListContacts request received")

	expenses, err := s.store.ListExpenses(ctx, storage.ExpenseFilter{DirectOnly: true, UserID: me})
	if err != nil {
		logger.Error("ListContacts failed", "error", err)
		return nil, connectError(err)
	}

	seen := map[string]bool{me: true}
	var ids []string
	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, e := range expenses {
		add(e.PayerID)
		for _, sp := range e.Splits {
			add(sp.UserID)
		}
	}

	users, err := lookupUsers(ctx, s.store, ids)
	if err != nil {
		return nil, err
	}
	contacts := make([]api.User, 0, len(users))
	for _, id := range ids {
		// Removed users are left out.
		if u, ok := users[id]; ok {
			contacts = append(contacts, toAPIUser(u))
		}
	}
	sortUsersByName(contacts)

	groups, err := s.store.ListGroupsForUser(ctx, me)
	if err != nil {
		logger.Error("ListContacts failed", "error", err)
		return nil, connectError(err)
	}
	summaries := make([]api.GroupSummary, len(groups))
	for i, g := range groups {
		summaries[i] = toGroupSummary(g)
	}
	sortGroupsByName(summaries)

	logger.Info("ListContacts successful", "users_count", len(contacts), "groups_count", len(summaries))
	return connect.NewResponse(&api.ListContactsResponse{Users: contacts, Groups: summaries}), nil
}
