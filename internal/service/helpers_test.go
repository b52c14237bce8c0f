package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/splitx/internal/auth"
	"github.com/mmynk/splitx/internal/middleware"
	"github.com/mmynk/splitx/internal/models"
	"github.com/mmynk/splitx/internal/storage/sqlite"
	"github.com/mmynk/splitx/pkg/api"
	"github.com/mmynk/splitx/pkg/api/apiconnect"
)

type testEnv struct {
	store *sqlite.SQLiteStore
	jwt   *auth.JWTManager
	url   string
}

// clients talks to the test server as one user.
type clients struct {
	auth        apiconnect.AuthServiceClient
	groups      apiconnect.GroupServiceClient
	expenses    apiconnect.ExpenseServiceClient
	settlements apiconnect.SettlementServiceClient
	dashboard   apiconnect.DashboardServiceClient
	contacts    apiconnect.ContactServiceClient
}

// setupTestServer serves every service over a temp database. All services
// except AuthService require a bearer token.
func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	jwtManager := auth.NewJWTManager("test-secret-0123456789", time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store).WithCost(bcrypt.MinCost)
	requireAuth := connect.WithInterceptors(middleware.RequireAuth(jwtManager))

	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewAuthServiceHandler(NewAuthService(authenticator, jwtManager)))
	mux.Handle(apiconnect.NewGroupServiceHandler(NewGroupService(store, nil), requireAuth))
	mux.Handle(apiconnect.NewExpenseServiceHandler(NewExpenseService(store, nil), requireAuth))
	mux.Handle(apiconnect.NewSettlementServiceHandler(NewSettlementService(store, nil), requireAuth))
	mux.Handle(apiconnect.NewDashboardServiceHandler(NewDashboardService(store, nil), requireAuth))
	mux.Handle(apiconnect.NewContactServiceHandler(NewContactService(store), requireAuth))

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	return &testEnv{store: store, jwt: jwtManager, url: server.URL}
}

// addUser stores a user directly, skipping registration.
func (e *testEnv) addUser(t *testing.T, name string) *models.User {
	t.Helper()
	user := models.NewUser(strings.ToLower(name)+"@example.com", name, "unused")
	if err := e.store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser(%s) failed: %v", name, err)
	}
	return user
}

// as returns clients authenticated as user. A nil user sends no token.
func (e *testEnv) as(t *testing.T, user *models.User) clients {
	t.Helper()
	var opts []connect.ClientOption
	if user != nil {
		token, err := e.jwt.Generate(user)
		if err != nil {
			t.Fatalf("failed to generate token: %v", err)
		}
		opts = append(opts, connect.WithInterceptors(bearer(token)))
	}
	return clients{
		auth:        apiconnect.NewAuthServiceClient(http.DefaultClient, e.url, opts...),
		groups:      apiconnect.NewGroupServiceClient(http.DefaultClient, e.url, opts...),
		expenses:    apiconnect.NewExpenseServiceClient(http.DefaultClient, e.url, opts...),
		settlements: apiconnect.NewSettlementServiceClient(http.DefaultClient, e.url, opts...),
		dashboard:   apiconnect.NewDashboardServiceClient(http.DefaultClient, e.url, opts...),
		contacts:    apiconnect.NewContactServiceClient(http.DefaultClient, e.url, opts...),
	}
}

func bearer(token string) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			req.Header().Set("Authorization", "Bearer "+token)
			return next(ctx, req)
		}
	}
}

// equalExpense records an equal split paid by payer.
func equalExpense(t *testing.T, c clients, payer *models.User, amount, groupID string, participants ...*models.User) api.Expense {
	t.Helper()
	ids := make([]string, len(participants))
	for i, p := range participants {
		ids[i] = p.ID
	}
	resp, err := c.expenses.CreateExpense(context.Background(), connect.NewRequest(&api.CreateExpenseRequest{
		Description:  "Dinner",
		Amount:       dec(amount),
		PayerID:      payer.ID,
		SplitType:    string(models.SplitEqual),
		Participants: ids,
		GroupID:      groupID,
	}))
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	return resp.Msg.Expense
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func checkAmount(t *testing.T, label string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Errorf("%s: expected %s, got %s", label, want, got)
	}
}

func checkCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	var connectErr *connect.Error
	if !errors.As(err, &connectErr) {
		t.Fatalf("expected connect error, got %T: %v", err, err)
	}
	if connectErr.Code() != want {
		t.Errorf("code: expected %v, got %v (%v)", want, connectErr.Code(), err)
	}
}
