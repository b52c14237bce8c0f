package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/splitx/pkg/api"
)

func TestRegisterAndLogin(t *testing.T) {
	env := setupTestServer(t)
	c := env.as(t, nil)
	ctx := context.Background()

	regResp, err := c.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
		Email:       "Alice@Example.com",
		DisplayName: "Alice",
		Password:    "correct-horse",
	}))
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if regResp.Msg.User.ID == "" {
		t.Error("expected non-empty user ID")
	}
	if regResp.Msg.User.Email != "alice@example.com" {
		t.Errorf("email: expected normalized address, got '%s'", regResp.Msg.User.Email)
	}
	if regResp.Msg.Token == "" {
		t.Error("expected token")
	}

	loginResp, err := c.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{
		Email:    "alice@example.com",
		Password: "correct-horse",
	}))
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if loginResp.Msg.User.ID != regResp.Msg.User.ID {
		t.Errorf("user: expected %s, got %s", regResp.Msg.User.ID, loginResp.Msg.User.ID)
	}
	if loginResp.Msg.ExpiresAt.IsZero() {
		t.Error("expected non-zero ExpiresAt")
	}

	claims, err := env.jwt.Validate(loginResp.Msg.Token)
	if err != nil {
		t.Fatalf("token did not validate: %v", err)
	}
	if claims.UserID != regResp.Msg.User.ID {
		t.Errorf("claims: expected user %s, got %s", regResp.Msg.User.ID, claims.UserID)
	}
}

func TestRegisterErrors(t *testing.T) {
	env := setupTestServer(t)
	c := env.as(t, nil)
	ctx := context.Background()

	if _, err := c.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
		Email: "bob@example.com", DisplayName: "Bob", Password: "long-enough",
	})); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	tests := []struct {
		name string
		req  *api.RegisterRequest
		code connect.Code
	}{
		{
			name: "duplicate email",
			req:  &api.RegisterRequest{Email: "BOB@example.com", DisplayName: "Bob", Password: "long-enough"},
			code: connect.CodeAlreadyExists,
		},
		{
			name: "weak password",
			req:  &api.RegisterRequest{Email: "carol@example.com", DisplayName: "Carol", Password: "short"},
			code: connect.CodeInvalidArgument,
		},
		{
			name: "missing email",
			req:  &api.RegisterRequest{DisplayName: "Dan", Password: "long-enough"},
			code: connect.CodeInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.auth.Register(ctx, connect.NewRequest(tt.req))
			checkCode(t, err, tt.code)
		})
	}
}

func TestLoginWrongPassword(t *testing.T) {
	env := setupTestServer(t)
	c := env.as(t, nil)
	ctx := context.Background()

	if _, err := c.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
		Email: "erin@example.com", DisplayName: "Erin", Password: "long-enough",
	})); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	_, err := c.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{Email: "erin@example.com", Password: "wrong-password"}))
	checkCode(t, err, connect.CodeUnauthenticated)

	_, err = c.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{Email: "nobody@example.com", Password: "long-enough"}))
	checkCode(t, err, connect.CodeUnauthenticated)
}

func TestProtectedServiceRequiresToken(t *testing.T) {
	env := setupTestServer(t)

	_, err := env.as(t, nil).groups.ListGroups(context.Background(), connect.NewRequest(&api.ListGroupsRequest{}))
	checkCode(t, err, connect.CodeUnauthenticated)
}
