package devices

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/brewtab/ordering-backend/pkg/db/models"
	pkgerrors "github.com/brewtab/ordering-backend/pkg/errors"
)

type memTokenStore struct {
	bySession map[string]*models.DeviceToken
}

func newMemTokenStore() *memTokenStore {
	return &memTokenStore{bySession: map[string]*models.DeviceToken{}}
}

func (m *memTokenStore) Upsert(ctx context.Context, token *models.DeviceToken) error {
	stored := *token
	m.bySession[token.SessionID] = &stored
	return nil
}

func (m *memTokenStore) FindBySession(ctx context.Context, sessionID string) (*models.DeviceToken, error) {
	return m.bySession[sessionID], nil
}

func (m *memTokenStore) DeleteBySession(ctx context.Context, sessionID string) error {
	delete(m.bySession, sessionID)
	return nil
}

func TestRegisterReplacesToken(t *testing.T) {
	t.Parallel()

	store := newMemTokenStore()
	svc, err := NewService(store)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	ctx := context.Background()

	if _, err := svc.Register(ctx, "sess-1", nil, "tok-a", "ios"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	userID := uuid.New()
	if _, err := svc.Register(ctx, "sess-1", &userID, "tok-b", "IOS"); err != nil {
		t.Fatalf("re-register: %v", err)
	}

	stored := store.bySession["sess-1"]
	if stored.Token != "tok-b" || stored.Platform != "ios" {
		t.Fatalf("expected replacement with normalized platform, got %+v", stored)
	}
	if stored.UserID == nil || *stored.UserID != userID {
		t.Fatal("user binding should be stored")
	}
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()

	svc, _ := NewService(newMemTokenStore())

	if _, err := svc.Register(context.Background(), "sess-1", nil, "  ", "ios"); pkgerrors.As(err) == nil {
		t.Fatalf("blank token should be rejected, got %v", err)
	}

	token, err := svc.Register(context.Background(), "sess-1", nil, "tok", "playstation")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if token.Platform != "unknown" {
		t.Fatalf("unrecognized platform should normalize to unknown, got %q", token.Platform)
	}
}

func TestUnregister(t *testing.T) {
	t.Parallel()

	store := newMemTokenStore()
	svc, _ := NewService(store)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "sess-1", nil, "tok", "web"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := svc.Unregister(ctx, "sess-1"); err != nil {
		t.Fatalf("Unregister: %v", err)
	}
	if got, _ := svc.TokenForSession(ctx, "sess-1"); got != nil {
		t.Fatal("token should be gone after unregister")
	}
}
