package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitx/internal/models"
	"github.com/mmynk/splitx/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "splitx-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func createUsers(t *testing.T, store *SQLiteStore, names ...string) map[string]*models.User {
	t.Helper()
	users := make(map[string]*models.User, len(names))
	for _, name := range names {
		u := models.NewUser(name+"@example.com", name, "hash")
		if err := store.CreateUser(context.Background(), u); err != nil {
			t.Fatalf("CreateUser(%s) failed: %v", name, err)
		}
		users[name] = u
	}
	return users
}

func TestMigrationsAreIdempotent(t *testing.T) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "nested", "test.db")

	for i := 0; i < 2; i++ {
		store, err := New(dbPath)
		if err != nil {
			t.Fatalf("New() run %d failed: %v", i, err)
		}
		store.Close()
	}
}

func TestUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	users := createUsers(t, store, "alice", "bob")

	t.Run("GetUserByEmail", func(t *testing.T) {
		got, err := store.GetUserByEmail(ctx, "alice@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if got.ID != users["alice"].ID {
			t.Errorf("ID = %s, want %s", got.ID, users["alice"].ID)
		}
		if got.DisplayName != "alice" {
			t.Errorf("DisplayName = %s, want alice", got.DisplayName)
		}
	})

	t.Run("GetUserByEmail returns ErrNotFound", func(t *testing.T) {
		_, err := store.GetUserByEmail(ctx, "nobody@example.com")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})

	t.Run("GetUserByID returns ErrNotFound", func(t *testing.T) {
		_, err := store.GetUserByID(ctx, "missing")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		dup := models.NewUser("alice@example.com", "other", "hash")
		if err := store.CreateUser(ctx, dup); err == nil {
			t.Error("Expected error for duplicate email, got nil")
		}
	})

	t.Run("GetUsersByIDs omits unknown ids", func(t *testing.T) {
		got, err := store.GetUsersByIDs(ctx, []string{users["alice"].ID, users["bob"].ID, "ghost"})
		if err != nil {
			t.Fatalf("GetUsersByIDs failed: %v", err)
		}
		if len(got) != 2 {
			t.Errorf("Expected 2 users, got %d", len(got))
		}
	})

	t.Run("ListUsers", func(t *testing.T) {
		got, err := store.ListUsers(ctx)
		if err != nil {
			t.Fatalf("ListUsers failed: %v", err)
		}
		if len(got) != 2 {
			t.Errorf("Expected 2 users, got %d", len(got))
		}
	})
}

func TestGroups(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	users := createUsers(t, store, "alice", "bob", "carol")

	group := &models.Group{
		Name:      "Roommates",
		CreatedBy: users["alice"].ID,
		Members: []models.Member{
			{UserID: users["alice"].ID, Role: models.RoleAdmin},
			{UserID: users["bob"].ID},
		},
	}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	t.Run("CreateGroup fills defaults", func(t *testing.T) {
		if group.ID == "" {
			t.Error("Expected group ID to be generated")
		}
		if group.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}
		if group.Members[1].Role != models.RoleMember {
			t.Errorf("default role = %q, want %q", group.Members[1].Role, models.RoleMember)
		}
	})

	t.Run("GetGroup includes members in order", func(t *testing.T) {
		got, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		ids := got.MemberIDs()
		if len(ids) != 2 || ids[0] != users["alice"].ID || ids[1] != users["bob"].ID {
			t.Errorf("members = %v", ids)
		}
		if got.Members[0].Role != models.RoleAdmin {
			t.Errorf("creator role = %q, want admin", got.Members[0].Role)
		}
	})

	t.Run("GetGroup returns ErrNotFound", func(t *testing.T) {
		_, err := store.GetGroup(ctx, "missing")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})

	t.Run("ListGroupsForUser", func(t *testing.T) {
		got, err := store.ListGroupsForUser(ctx, users["bob"].ID)
		if err != nil {
			t.Fatalf("ListGroupsForUser failed: %v", err)
		}
		if len(got) != 1 || got[0].ID != group.ID {
			t.Fatalf("Expected bob's one group, got %d", len(got))
		}
		if len(got[0].Members) != 2 {
			t.Errorf("Expected 2 members, got %d", len(got[0].Members))
		}

		none, err := store.ListGroupsForUser(ctx, users["carol"].ID)
		if err != nil {
			t.Fatalf("ListGroupsForUser failed: %v", err)
		}
		if len(none) != 0 {
			t.Errorf("Expected no groups for carol, got %d", len(none))
		}
	})
}

func TestExpenses(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	users := createUsers(t, store, "alice", "bob", "carol")
	alice, bob, carol := users["alice"].ID, users["bob"].ID, users["carol"].ID

	group := &models.Group{Name: "Trip", CreatedBy: alice, Members: []models.Member{{UserID: alice}, {UserID: carol}}}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	jan := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC)

	direct := &models.Expense{
		Description: "Dinner",
		Amount:      decimal.RequireFromString("30.10"),
		Date:        jan,
		PayerID:     alice,
		SplitType:   models.SplitExact,
		Splits: []models.Split{
			{UserID: alice, Amount: decimal.RequireFromString("10.05"), Paid: true},
			{UserID: bob, Amount: decimal.RequireFromString("20.05")},
		},
		CreatedBy: alice,
	}
	grouped := &models.Expense{
		Description: "Fuel",
		Amount:      decimal.RequireFromString("50"),
		Date:        feb,
		PayerID:     carol,
		SplitType:   models.SplitEqual,
		Splits: []models.Split{
			{UserID: alice, Amount: decimal.RequireFromString("25")},
			{UserID: carol, Amount: decimal.RequireFromString("25"), Paid: true},
		},
		GroupID:   group.ID,
		CreatedBy: carol,
	}
	for _, e := range []*models.Expense{direct, grouped} {
		if err := store.CreateExpense(ctx, e); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
	}

	t.Run("CreateExpense fills defaults", func(t *testing.T) {
		if direct.ID == "" || direct.CreatedAt == 0 {
			t.Error("Expected ID and CreatedAt to be generated")
		}
		if direct.Category != "Other" {
			t.Errorf("Category = %q, want Other", direct.Category)
		}
	})

	t.Run("GetExpense round-trips amounts exactly", func(t *testing.T) {
		got, err := store.GetExpense(ctx, direct.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if !got.Amount.Equal(direct.Amount) {
			t.Errorf("Amount = %s, want %s", got.Amount, direct.Amount)
		}
		if !got.Date.Equal(jan) {
			t.Errorf("Date = %v, want %v", got.Date, jan)
		}
		if got.GroupID != "" {
			t.Errorf("GroupID = %q, want empty", got.GroupID)
		}
		if len(got.Splits) != 2 {
			t.Fatalf("Expected 2 splits, got %d", len(got.Splits))
		}
		if got.Splits[0].UserID != alice || !got.Splits[0].Paid {
			t.Errorf("first split = %+v", got.Splits[0])
		}
		if !got.Splits[1].Amount.Equal(decimal.RequireFromString("20.05")) || got.Splits[1].Paid {
			t.Errorf("second split = %+v", got.Splits[1])
		}
	})

	t.Run("ListExpenses filters", func(t *testing.T) {
		tests := []struct {
			name   string
			filter storage.ExpenseFilter
			want   []string
		}{
			{"all, newest first", storage.ExpenseFilter{}, []string{grouped.ID, direct.ID}},
			{"direct only", storage.ExpenseFilter{DirectOnly: true}, []string{direct.ID}},
			{"by group", storage.ExpenseFilter{GroupID: group.ID}, []string{grouped.ID}},
			{"by split participant", storage.ExpenseFilter{UserID: bob}, []string{direct.ID}},
			{"by payer", storage.ExpenseFilter{UserID: carol}, []string{grouped.ID}},
			{"date range", storage.ExpenseFilter{Since: feb, Until: feb.AddDate(0, 1, 0)}, []string{grouped.ID}},
			{"until is exclusive", storage.ExpenseFilter{Until: jan}, nil},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got, err := store.ListExpenses(ctx, tt.filter)
				if err != nil {
					t.Fatalf("ListExpenses failed: %v", err)
				}
				if len(got) != len(tt.want) {
					t.Fatalf("got %d expenses, want %d", len(got), len(tt.want))
				}
				for i := range got {
					if got[i].ID != tt.want[i] {
						t.Errorf("expense %d = %s, want %s", i, got[i].ID, tt.want[i])
					}
					if len(got[i].Splits) != 2 {
						t.Errorf("expense %s has %d splits, want 2", got[i].ID, len(got[i].Splits))
					}
				}
			})
		}
	})

	t.Run("DeleteExpense", func(t *testing.T) {
		if err := store.DeleteExpense(ctx, direct.ID); err != nil {
			t.Fatalf("DeleteExpense failed: %v", err)
		}
		if _, err := store.GetExpense(ctx, direct.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetExpense after delete: error = %v, want ErrNotFound", err)
		}
		if err := store.DeleteExpense(ctx, direct.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("second delete: error = %v, want ErrNotFound", err)
		}
	})
}

func TestSettlements(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	users := createUsers(t, store, "alice", "bob")
	alice, bob := users["alice"].ID, users["bob"].ID

	paid := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	settlement := &models.Settlement{
		FromUserID:        bob,
		ToUserID:          alice,
		Amount:            decimal.RequireFromString("12.34"),
		Date:              paid,
		Note:              "dinner",
		RelatedExpenseIDs: []string{"e1", "e2"},
		CreatedBy:         bob,
	}
	if err := store.CreateSettlement(ctx, settlement); err != nil {
		t.Fatalf("CreateSettlement failed: %v", err)
	}

	t.Run("GetSettlement", func(t *testing.T) {
		got, err := store.GetSettlement(ctx, settlement.ID)
		if err != nil {
			t.Fatalf("GetSettlement failed: %v", err)
		}
		if !got.Amount.Equal(settlement.Amount) {
			t.Errorf("Amount = %s, want %s", got.Amount, settlement.Amount)
		}
		if !got.Date.Equal(paid) {
			t.Errorf("Date = %v, want %v", got.Date, paid)
		}
		if got.Note != "dinner" {
			t.Errorf("Note = %q, want dinner", got.Note)
		}
		if len(got.RelatedExpenseIDs) != 2 {
			t.Errorf("RelatedExpenseIDs = %v", got.RelatedExpenseIDs)
		}
		if !got.IsDirect() {
			t.Error("Expected a direct settlement")
		}
	})

	t.Run("GetSettlement returns ErrNotFound", func(t *testing.T) {
		_, err := store.GetSettlement(ctx, "missing")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})

	t.Run("ListSettlements matches either side", func(t *testing.T) {
		for _, id := range []string{alice, bob} {
			got, err := store.ListSettlements(ctx, storage.SettlementFilter{UserID: id, DirectOnly: true})
			if err != nil {
				t.Fatalf("ListSettlements failed: %v", err)
			}
			if len(got) != 1 {
				t.Errorf("user %s: got %d settlements, want 1", id, len(got))
			}
		}

		got, err := store.ListSettlements(ctx, storage.SettlementFilter{GroupID: "some-group"})
		if err != nil {
			t.Fatalf("ListSettlements failed: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("Expected no group settlements, got %d", len(got))
		}
	})
}
