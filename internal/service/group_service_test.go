package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitx/internal/models"
	"github.com/mmynk/splitx/pkg/api"
)

func TestCreateGroup(t *testing.T) {
	env := setupTestServer(t)
	alice, bob, carol := env.addUser(t, "Alice"), env.addUser(t, "Bob"), env.addUser(t, "Carol")

	resp, err := env.as(t, alice).groups.CreateGroup(context.Background(), connect.NewRequest(&api.CreateGroupRequest{
		Name:      "  Roommates ",
		MemberIDs: []string{bob.ID, carol.ID, bob.ID, alice.ID},
	}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	group := resp.Msg.Group
	if group.ID == "" {
		t.Error("expected non-empty group ID")
	}
	if group.Name != "Roommates" {
		t.Errorf("name: expected 'Roommates', got '%s'", group.Name)
	}
	if len(group.Members) != 3 {
		t.Fatalf("members: expected 3, got %d", len(group.Members))
	}
	if group.Members[0].UserID != alice.ID || group.Members[0].Role != models.RoleAdmin {
		t.Errorf("expected creator as admin first, got %+v", group.Members[0])
	}
	if group.Members[1].DisplayName != "Bob" || group.Members[1].Role != models.RoleMember {
		t.Errorf("expected Bob as member, got %+v", group.Members[1])
	}
	if group.CreatedAt == 0 {
		t.Error("expected non-zero CreatedAt")
	}
}

func TestCreateGroupErrors(t *testing.T) {
	env := setupTestServer(t)
	alice := env.addUser(t, "Alice")
	c := env.as(t, alice)

	tests := []struct {
		name string
		req  *api.CreateGroupRequest
		code connect.Code
	}{
		{"empty name", &api.CreateGroupRequest{Name: "   "}, connect.CodeInvalidArgument},
		{"unknown member", &api.CreateGroupRequest{Name: "Trip", MemberIDs: []string{"missing"}}, connect.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.groups.CreateGroup(context.Background(), connect.NewRequest(tt.req))
			checkCode(t, err, tt.code)
		})
	}
}

func TestGetGroup(t *testing.T) {
	env := setupTestServer(t)
	alice, bob, eve := env.addUser(t, "Alice"), env.addUser(t, "Bob"), env.addUser(t, "Eve")
	ctx := context.Background()

	createResp, err := env.as(t, alice).groups.CreateGroup(ctx, connect.NewRequest(&api.CreateGroupRequest{
		Name:      "Work Lunch",
		MemberIDs: []string{bob.ID},
	}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	groupID := createResp.Msg.Group.ID

	getResp, err := env.as(t, bob).groups.GetGroup(ctx, connect.NewRequest(&api.GetGroupRequest{GroupID: groupID}))
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	if getResp.Msg.Group.Name != "Work Lunch" {
		t.Errorf("name: expected 'Work Lunch', got '%s'", getResp.Msg.Group.Name)
	}
	if len(getResp.Msg.Group.Members) != 2 {
		t.Errorf("members: expected 2, got %d", len(getResp.Msg.Group.Members))
	}

	_, err = env.as(t, eve).groups.GetGroup(ctx, connect.NewRequest(&api.GetGroupRequest{GroupID: groupID}))
	checkCode(t, err, connect.CodePermissionDenied)

	_, err = env.as(t, bob).groups.GetGroup(ctx, connect.NewRequest(&api.GetGroupRequest{GroupID: "non-existent-id"}))
	checkCode(t, err, connect.CodeNotFound)
}

func TestListGroups(t *testing.T) {
	env := setupTestServer(t)
	alice, bob := env.addUser(t, "Alice"), env.addUser(t, "Bob")
	ctx := context.Background()

	for _, name := range []string{"Zoo Trip", "apartment", "Book Club"} {
		if _, err := env.as(t, alice).groups.CreateGroup(ctx, connect.NewRequest(&api.CreateGroupRequest{Name: name})); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}
	}

	resp, err := env.as(t, alice).groups.ListGroups(ctx, connect.NewRequest(&api.ListGroupsRequest{}))
	if err != nil {
		t.Fatalf("ListGroups failed: %v", err)
	}
	want := []string{"apartment", "Book Club", "Zoo Trip"}
	if len(resp.Msg.Groups) != len(want) {
		t.Fatalf("groups: expected %d, got %d", len(want), len(resp.Msg.Groups))
	}
	for i, name := range want {
		if resp.Msg.Groups[i].Name != name {
			t.Errorf("groups[%d]: expected '%s', got '%s'", i, name, resp.Msg.Groups[i].Name)
		}
	}

	resp, err = env.as(t, bob).groups.ListGroups(ctx, connect.NewRequest(&api.ListGroupsRequest{}))
	if err != nil {
		t.Fatalf("ListGroups failed: %v", err)
	}
	if len(resp.Msg.Groups) != 0 {
		t.Errorf("expected no groups for Bob, got %d", len(resp.Msg.Groups))
	}
}

func TestGetGroupExpenses(t *testing.T) {
	env := setupTestServer(t)
	alice, bob, carol := env.addUser(t, "Alice"), env.addUser(t, "Bob"), env.addUser(t, "Carol")
	ctx := context.Background()

	createResp, err := env.as(t, alice).groups.CreateGroup(ctx, connect.NewRequest(&api.CreateGroupRequest{
		Name:      "Roommates",
		MemberIDs: []string{bob.ID, carol.ID},
	}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	groupID := createResp.Msg.Group.ID

	// Alice pays 90 for three, Bob pays 30 for three.
	equalExpense(t, env.as(t, alice), alice, "90", groupID, alice, bob, carol)
	equalExpense(t, env.as(t, bob), bob, "30", groupID, alice, bob, carol)

	// A direct expense must not leak into the group.
	equalExpense(t, env.as(t, alice), alice, "50", "", alice, bob)

	resp, err := env.as(t, carol).groups.GetGroupExpenses(ctx, connect.NewRequest(&api.GetGroupExpensesRequest{GroupID: groupID}))
	if err != nil {
		t.Fatalf("GetGroupExpenses failed: %v", err)
	}
	if len(resp.Msg.Expenses) != 2 {
		t.Errorf("expenses: expected 2, got %d", len(resp.Msg.Expenses))
	}
	if len(resp.Msg.Balances) != 3 {
		t.Fatalf("balances: expected 3, got %d", len(resp.Msg.Balances))
	}

	byID := make(map[string]api.MemberBalance)
	for _, b := range resp.Msg.Balances {
		byID[b.UserID] = b
	}

	a := byID[alice.ID]
	checkAmount(t, "Alice owed", a.Owed, "60")
	checkAmount(t, "Alice owing", a.Owing, "10")
	checkAmount(t, "Alice net", a.Net, "50")
	if len(a.Owes) != 0 {
		t.Errorf("Alice owes: expected none, got %+v", a.Owes)
	}
	if len(a.OwedBy) != 2 {
		t.Fatalf("Alice owed by: expected 2 entries, got %+v", a.OwedBy)
	}
	owedBy := make(map[string]decimal.Decimal)
	for _, d := range a.OwedBy {
		owedBy[d.UserID] = d.Amount
	}
	checkAmount(t, "Bob owes Alice", owedBy[bob.ID], "20")
	checkAmount(t, "Carol owes Alice", owedBy[carol.ID], "30")

	checkAmount(t, "Bob net", byID[bob.ID].Net, "-10")
	checkAmount(t, "Carol net", byID[carol.ID].Net, "-40")
	if byID[carol.ID].DisplayName != "Carol" {
		t.Errorf("display name: expected 'Carol', got '%s'", byID[carol.ID].DisplayName)
	}
}

func TestGetGroupExpensesSingleMember(t *testing.T) {
	env := setupTestServer(t)
	alice := env.addUser(t, "Alice")
	ctx := context.Background()

	createResp, err := env.as(t, alice).groups.CreateGroup(ctx, connect.NewRequest(&api.CreateGroupRequest{Name: "Solo"}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	resp, err := env.as(t, alice).groups.GetGroupExpenses(ctx, connect.NewRequest(&api.GetGroupExpensesRequest{
		GroupID: createResp.Msg.Group.ID,
	}))
	if err != nil {
		t.Fatalf("GetGroupExpenses failed: %v", err)
	}
	if len(resp.Msg.Balances) != 1 {
		t.Fatalf("balances: expected 1, got %d", len(resp.Msg.Balances))
	}
	if !resp.Msg.Balances[0].Net.IsZero() {
		t.Errorf("net: expected 0, got %s", resp.Msg.Balances[0].Net)
	}
}
