package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/splitx/pkg/api"
)

func TestListContacts(t *testing.T) {
	env := setupTestServer(t)
	alice, bob, carol, dan := env.addUser(t, "Alice"), env.addUser(t, "bob"), env.addUser(t, "Carol"), env.addUser(t, "Dan")
	ctx := context.Background()

	equalExpense(t, env.as(t, carol), carol, "30", "", alice, bob, carol)
	equalExpense(t, env.as(t, alice), alice, "20", "", alice, bob)

	// Dan only shares a group with Alice.
	if _, err := env.as(t, dan).groups.CreateGroup(ctx, connect.NewRequest(&api.CreateGroupRequest{
		Name: "Climbing", MemberIDs: []string{alice.ID},
	})); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	resp, err := env.as(t, alice).contacts.ListContacts(ctx, connect.NewRequest(&api.ListContactsRequest{}))
	if err != nil {
		t.Fatalf("ListContacts failed: %v", err)
	}

	want := []string{"bob", "Carol"}
	if len(resp.Msg.Users) != len(want) {
		t.Fatalf("users: expected %d, got %+v", len(want), resp.Msg.Users)
	}
	for i, name := range want {
		if resp.Msg.Users[i].DisplayName != name {
			t.Errorf("users[%d]: expected '%s', got '%s'", i, name, resp.Msg.Users[i].DisplayName)
		}
	}
	if len(resp.Msg.Groups) != 1 || resp.Msg.Groups[0].Name != "Climbing" {
		t.Errorf("groups: expected Climbing, got %+v", resp.Msg.Groups)
	}
}
