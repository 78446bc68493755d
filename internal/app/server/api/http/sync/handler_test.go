package sync

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"steno/internal/app/server/api/http/middleware/auth"
	"steno/internal/domain/record"
	"steno/internal/domain/sync"
	"steno/internal/domain/team"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Sync(ctx context.Context, tc team.TenantContext, req sync.Request) (*sync.Response, error) {
	args := m.Called(ctx, tc, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sync.Response), args.Error(1)
}

func testTenant() team.TenantContext {
	return team.TenantContext{TeamID: 1, UserID: 7, Role: team.RoleEditor, Subscribed: true}
}

func TestHandler_Sync(t *testing.T) {
	svc := new(MockService)
	h := NewHandler(svc, slog.Default(), nil)

	syncedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	site := record.Site{Hostname: "portal.example.com", UpdatedAt: syncedAt.Add(-time.Minute)}

	svc.On("Sync", mock.Anything, testTenant(), mock.Anything).
		Return(&sync.Response{SyncedAt: syncedAt, Sites: []record.Site{site}}, nil)

	ctx := auth.WithTenantContext(context.Background(), testTenant())
	out, err := h.sync(ctx, &syncInput{Body: SyncRequest{Sites: []record.Site{site}}})

	require.NoError(t, err)
	assert.Equal(t, "Ok", out.Body.Status)
	assert.Equal(t, syncedAt, out.Body.SyncedAt)
	assert.Len(t, out.Body.Sites, 1)
	svc.AssertExpectations(t)
}

func TestHandler_Sync_Unauthorized(t *testing.T) {
	svc := new(MockService)
	h := NewHandler(svc, slog.Default(), nil)

	_, err := h.sync(context.Background(), &syncInput{})
	assert.Error(t, err)
	svc.AssertNotCalled(t, "Sync")
}

func TestHandler_Sync_SubscriptionRequired(t *testing.T) {
	svc := new(MockService)
	h := NewHandler(svc, slog.Default(), nil)

	svc.On("Sync", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, sync.ErrSubscriptionRequired)

	ctx := auth.WithTenantContext(context.Background(), testTenant())
	_, err := h.sync(ctx, &syncInput{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "subscription")
}

func TestHandler_Sync_PassesCursor(t *testing.T) {
	svc := new(MockService)
	h := NewHandler(svc, slog.Default(), nil)

	cursor := time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC)
	svc.On("Sync", mock.Anything, mock.Anything, mock.MatchedBy(func(req sync.Request) bool {
		return req.LastSyncedAt != nil && req.LastSyncedAt.Equal(cursor)
	})).Return(&sync.Response{SyncedAt: cursor.Add(time.Hour)}, nil)

	ctx := auth.WithTenantContext(context.Background(), testTenant())
	_, err := h.sync(ctx, &syncInput{Body: SyncRequest{LastSyncedAt: &cursor}})

	require.NoError(t, err)
	svc.AssertExpectations(t)
}
