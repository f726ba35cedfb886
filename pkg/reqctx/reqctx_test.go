package reqctx

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

type stubClaims struct {
	id      uuid.UUID
	role    string
	expired bool
}

func (s stubClaims) GetUserID() uuid.UUID { return s.id }
func (s stubClaims) GetRole() string      { return s.role }
func (s stubClaims) IsExpired() bool      { return s.expired }

func TestClaimsRoundTrip(t *testing.T) {
	ctx := context.Background()
	if IsAuthenticated(ctx) {
		t.Fatal("empty context reported as authenticated")
	}
	if _, ok := UserIDFromContext(ctx); ok {
		t.Fatal("UserIDFromContext ok on empty context")
	}

	id := uuid.New()
	ctx = WithClaims(ctx, stubClaims{id: id, role: "nutritionist"})

	got, ok := UserIDFromContext(ctx)
	if !ok || got != id {
		t.Errorf("UserIDFromContext = %v, %v", got, ok)
	}
	if RoleFromContext(ctx) != "nutritionist" {
		t.Errorf("RoleFromContext = %q", RoleFromContext(ctx))
	}
	if !IsAuthenticated(ctx) {
		t.Error("IsAuthenticated = false")
	}

	expired := WithClaims(context.Background(), stubClaims{id: id, expired: true})
	if IsAuthenticated(expired) {
		t.Error("expired claims reported as authenticated")
	}
}

func TestRequestID(t *testing.T) {
	if RequestIDFromContext(context.Background()) != "" {
		t.Fatal("expected empty request id")
	}
	ctx := WithRequestMeta(context.Background(), &RequestMeta{RequestID: "req-1"})
	if RequestIDFromContext(ctx) != "req-1" {
		t.Errorf("RequestIDFromContext = %q", RequestIDFromContext(ctx))
	}
}
