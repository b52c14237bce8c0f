package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/splitx/pkg/api"
)

func TestCreateSettlement(t *testing.T) {
	env := setupTestServer(t)
	alice, bob, carol := env.addUser(t, "Alice"), env.addUser(t, "Bob"), env.addUser(t, "Carol")
	ctx := context.Background()

	groupResp, err := env.as(t, alice).groups.CreateGroup(ctx, connect.NewRequest(&api.CreateGroupRequest{
		Name:      "Trip",
		MemberIDs: []string{bob.ID},
	}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	groupID := groupResp.Msg.Group.ID

	resp, err := env.as(t, bob).settlements.CreateSettlement(ctx, connect.NewRequest(&api.CreateSettlementRequest{
		Amount:           dec("12.50"),
		Note:             " cash ",
		PaidByUserID:     bob.ID,
		ReceivedByUserID: alice.ID,
		GroupID:          groupID,
	}))
	if err != nil {
		t.Fatalf("CreateSettlement failed: %v", err)
	}
	s := resp.Msg.Settlement
	if s.ID == "" {
		t.Error("expected non-empty settlement ID")
	}
	if s.Note != "cash" {
		t.Errorf("note: expected 'cash', got '%s'", s.Note)
	}
	if s.CreatedBy != bob.ID {
		t.Errorf("created by: expected %s, got %s", bob.ID, s.CreatedBy)
	}
	checkAmount(t, "amount", s.Amount, "12.50")

	tests := []struct {
		name   string
		caller string
		req    api.CreateSettlementRequest
		code   connect.Code
	}{
		{
			name:   "zero amount",
			caller: "bob",
			req:    api.CreateSettlementRequest{Amount: dec("0"), PaidByUserID: bob.ID, ReceivedByUserID: alice.ID},
			code:   connect.CodeInvalidArgument,
		},
		{
			name:   "self payment",
			caller: "bob",
			req:    api.CreateSettlementRequest{Amount: dec("5"), PaidByUserID: bob.ID, ReceivedByUserID: bob.ID},
			code:   connect.CodeInvalidArgument,
		},
		{
			name:   "caller not a party",
			caller: "carol",
			req:    api.CreateSettlementRequest{Amount: dec("5"), PaidByUserID: bob.ID, ReceivedByUserID: alice.ID},
			code:   connect.CodePermissionDenied,
		},
		{
			name:   "receiver outside group",
			caller: "bob",
			req:    api.CreateSettlementRequest{Amount: dec("5"), PaidByUserID: bob.ID, ReceivedByUserID: carol.ID, GroupID: groupID},
			code:   connect.CodeInvalidArgument,
		},
		{
			name:   "unknown receiver",
			caller: "bob",
			req:    api.CreateSettlementRequest{Amount: dec("5"), PaidByUserID: bob.ID, ReceivedByUserID: "ghost"},
			code:   connect.CodeNotFound,
		},
	}

	callers := map[string]clients{"bob": env.as(t, bob), "carol": env.as(t, carol)}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := callers[tt.caller].settlements.CreateSettlement(ctx, connect.NewRequest(&req))
			checkCode(t, err, tt.code)
		})
	}
}

func TestGetSettlementDataUser(t *testing.T) {
	env := setupTestServer(t)
	alice, bob := env.addUser(t, "Alice"), env.addUser(t, "Bob")
	ctx := context.Background()

	equalExpense(t, env.as(t, alice), alice, "100", "", alice, bob)
	equalExpense(t, env.as(t, bob), bob, "40", "", alice, bob)

	resp, err := env.as(t, bob).settlements.GetSettlementData(ctx, connect.NewRequest(&api.GetSettlementDataRequest{
		EntityType: api.EntityUser,
		EntityID:   alice.ID,
	}))
	if err != nil {
		t.Fatalf("GetSettlementData failed: %v", err)
	}
	if resp.Msg.Type != api.EntityUser {
		t.Errorf("type: expected 'user', got '%s'", resp.Msg.Type)
	}
	if resp.Msg.Counterpart == nil || resp.Msg.Counterpart.ID != alice.ID {
		t.Fatalf("counterpart: expected Alice, got %+v", resp.Msg.Counterpart)
	}
	if resp.Msg.Balance == nil {
		t.Fatal("expected balance")
	}
	checkAmount(t, "you owe", resp.Msg.Balance.YouOwe, "50")
	checkAmount(t, "you are owed", resp.Msg.Balance.YouAreOwed, "20")
	checkAmount(t, "net", resp.Msg.Balance.Net, "-30")

	_, err = env.as(t, bob).settlements.GetSettlementData(ctx, connect.NewRequest(&api.GetSettlementDataRequest{
		EntityType: api.EntityUser,
		EntityID:   "ghost",
	}))
	checkCode(t, err, connect.CodeNotFound)
}

func TestGetSettlementDataGroup(t *testing.T) {
	env := setupTestServer(t)
	alice, bob, carol := env.addUser(t, "Alice"), env.addUser(t, "Bob"), env.addUser(t, "Carol")
	ctx := context.Background()

	groupResp, err := env.as(t, alice).groups.CreateGroup(ctx, connect.NewRequest(&api.CreateGroupRequest{
		Name:      "Roommates",
		MemberIDs: []string{bob.ID, carol.ID},
	}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	groupID := groupResp.Msg.Group.ID

	// Only Bob and Alice share an expense; Carol stays listed at zero.
	equalExpense(t, env.as(t, alice), alice, "60", groupID, alice, bob)
	if _, err := env.as(t, bob).settlements.CreateSettlement(ctx, connect.NewRequest(&api.CreateSettlementRequest{
		Amount: dec("40"), PaidByUserID: bob.ID, ReceivedByUserID: alice.ID, GroupID: groupID,
	})); err != nil {
		t.Fatalf("CreateSettlement failed: %v", err)
	}

	resp, err := env.as(t, alice).settlements.GetSettlementData(ctx, connect.NewRequest(&api.GetSettlementDataRequest{
		EntityType: api.EntityGroup,
		EntityID:   groupID,
	}))
	if err != nil {
		t.Fatalf("GetSettlementData failed: %v", err)
	}
	if resp.Msg.Group == nil || resp.Msg.Group.MemberCount != 3 {
		t.Fatalf("group: expected 3 members, got %+v", resp.Msg.Group)
	}
	if len(resp.Msg.Balances) != 2 {
		t.Fatalf("balances: expected 2, got %d", len(resp.Msg.Balances))
	}

	bobBal, carolBal := resp.Msg.Balances[0], resp.Msg.Balances[1]
	if bobBal.User.ID != bob.ID || carolBal.User.ID != carol.ID {
		t.Fatalf("expected members in membership order, got %s, %s", bobBal.User.ID, carolBal.User.ID)
	}
	// An over-payment is not clamped.
	checkAmount(t, "Bob net", bobBal.Net, "-10")
	checkAmount(t, "Carol net", carolBal.Net, "0")
}

func TestGetSettlementDataInvalidType(t *testing.T) {
	env := setupTestServer(t)
	alice := env.addUser(t, "Alice")

	_, err := env.as(t, alice).settlements.GetSettlementData(context.Background(), connect.NewRequest(&api.GetSettlementDataRequest{
		EntityType: "team",
		EntityID:   "x",
	}))
	checkCode(t, err, connect.CodeInvalidArgument)
}
