package record

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"steno/internal/domain/team"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) ListSites(ctx context.Context, teamID int64) ([]Site, error) {
	args := m.Called(ctx, teamID)
	return args.Get(0).([]Site), args.Error(1)
}

func (m *MockRepository) GetSite(ctx context.Context, id uuid.UUID) (*Site, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Site), args.Error(1)
}

func (m *MockRepository) CreateSite(ctx context.Context, s *Site) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockRepository) UpdateSite(ctx context.Context, s *Site) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockRepository) DeleteSite(ctx context.Context, s *Site) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockRepository) ListPersonas(ctx context.Context, teamID int64) ([]Persona, error) {
	args := m.Called(ctx, teamID)
	return args.Get(0).([]Persona), args.Error(1)
}

func (m *MockRepository) GetPersona(ctx context.Context, id uuid.UUID) (*Persona, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Persona), args.Error(1)
}

func (m *MockRepository) CreatePersona(ctx context.Context, p *Persona) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockRepository) UpdatePersona(ctx context.Context, p *Persona) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockRepository) DeletePersona(ctx context.Context, p *Persona) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockRepository) ListScripts(ctx context.Context, teamID int64) ([]Script, error) {
	args := m.Called(ctx, teamID)
	return args.Get(0).([]Script), args.Error(1)
}

func (m *MockRepository) GetScript(ctx context.Context, id uuid.UUID) (*Script, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Script), args.Error(1)
}

func (m *MockRepository) CreateScript(ctx context.Context, s *Script) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockRepository) UpdateScript(ctx context.Context, s *Script) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockRepository) DeleteScript(ctx context.Context, s *Script) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockRepository) CountLiveScripts(ctx context.Context, teamID int64) (int, error) {
	args := m.Called(ctx, teamID)
	return args.Int(0), args.Error(1)
}

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestService(repo Repository) Servicer {
	log := slog.New(slog.NewTextHandler(discard{}, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewService(repo, ClockFunc(func() time.Time { return testNow }), 5, log)
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func ownerCtx() team.TenantContext {
	return team.TenantContext{TeamID: 1, UserID: 10, Role: team.RoleOwner, Subscribed: true}
}

func TestCreateScript_QuotaExceededOnFreeTier(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo)

	tc := ownerCtx()
	tc.Subscribed = false
	repo.On("CountLiveScripts", mock.Anything, tc.TeamID).Return(5, nil)

	_, err := svc.CreateScript(context.Background(), tc, CreateScriptParams{
		Name:   "Sixth",
		Fields: []Field{{Selector: "#a"}},
	})

	require.ErrorIs(t, err, ErrQuotaExceeded)
	repo.AssertNotCalled(t, "CreateScript", mock.Anything, mock.Anything)
}

func TestCreateScript_QuotaIgnoredWhenSubscribed(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo)

	repo.On("CreateScript", mock.Anything, mock.AnythingOfType("*record.Script")).Return(nil)

	script, err := svc.CreateScript(context.Background(), ownerCtx(), CreateScriptParams{
		Name:   "Unlimited",
		Fields: []Field{{Selector: "#a"}},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, script.Version)
	assert.Equal(t, testNow, script.UpdatedAt)
	repo.AssertNotCalled(t, "CountLiveScripts", mock.Anything, mock.Anything)
}

func TestCreateScript_UnderQuotaSucceeds(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo)

	tc := ownerCtx()
	tc.Subscribed = false
	repo.On("CountLiveScripts", mock.Anything, tc.TeamID).Return(4, nil)
	repo.On("CreateScript", mock.Anything, mock.AnythingOfType("*record.Script")).Return(nil)

	script, err := svc.CreateScript(context.Background(), tc, CreateScriptParams{
		Name:   "Fifth",
		Fields: []Field{{Selector: "#a"}},
	})

	require.NoError(t, err)
	assert.Equal(t, tc.TeamID, script.TeamID)
	assert.Equal(t, tc.UserID, script.AuthorID)
}

func TestGetSite_TenantIsolation(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo)

	foreign := &Site{ID: uuid.New(), TeamID: 99, Hostname: "other.example.com"}
	repo.On("GetSite", mock.Anything, foreign.ID).Return(foreign, nil)

	_, err := svc.GetSite(context.Background(), ownerCtx(), foreign.ID)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestDeleteSite_TenantIsolation(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo)

	foreign := &Site{ID: uuid.New(), TeamID: 99, Hostname: "other.example.com"}
	repo.On("GetSite", mock.Anything, foreign.ID).Return(foreign, nil)

	err := svc.DeleteSite(context.Background(), ownerCtx(), foreign.ID)
	require.ErrorIs(t, err, ErrForbidden)
	repo.AssertNotCalled(t, "DeleteSite", mock.Anything, mock.Anything)
}

func TestCreateSite_ViewerDenied(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo)

	tc := ownerCtx()
	tc.Role = team.RoleViewer

	_, err := svc.CreateSite(context.Background(), tc, CreateSiteParams{Hostname: "example.com"})
	require.ErrorIs(t, err, ErrForbidden)
	repo.AssertNotCalled(t, "CreateSite", mock.Anything, mock.Anything)
}

func TestDeleteSite_EditorDenied(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo)

	tc := ownerCtx()
	tc.Role = team.RoleEditor
	site := &Site{ID: uuid.New(), TeamID: tc.TeamID, Hostname: "example.com"}
	repo.On("GetSite", mock.Anything, site.ID).Return(site, nil)

	err := svc.DeleteSite(context.Background(), tc, site.ID)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestDeleteSite_SetsTombstone(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo)

	tc := ownerCtx()
	site := &Site{ID: uuid.New(), TeamID: tc.TeamID, Hostname: "example.com"}
	repo.On("GetSite", mock.Anything, site.ID).Return(site, nil)
	repo.On("DeleteSite", mock.Anything, mock.MatchedBy(func(s *Site) bool {
		return s.DeletedAt != nil && s.DeletedAt.Equal(testNow) && s.UpdatedAt.Equal(testNow)
	})).Return(nil)

	require.NoError(t, svc.DeleteSite(context.Background(), tc, site.ID))
	repo.AssertExpectations(t)
}

func TestUpdateScript_EditorOwnsScript(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo)

	tc := ownerCtx()
	tc.Role = team.RoleEditor
	script := &Script{ID: uuid.New(), TeamID: tc.TeamID, AuthorID: tc.UserID, Name: "Mine", Fields: []Field{{Selector: "#a"}}}
	repo.On("GetScript", mock.Anything, script.ID).Return(script, nil)
	repo.On("UpdateScript", mock.Anything, mock.AnythingOfType("*record.Script")).Return(nil)

	name := "Renamed"
	updated, err := svc.UpdateScript(context.Background(), tc, script.ID, UpdateScriptParams{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, testNow, updated.UpdatedAt)
}

func TestUpdateScript_EditorDeniedOnForeignScript(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo)

	tc := ownerCtx()
	tc.Role = team.RoleEditor
	script := &Script{ID: uuid.New(), TeamID: tc.TeamID, AuthorID: 777, Name: "Not mine"}
	repo.On("GetScript", mock.Anything, script.ID).Return(script, nil)

	name := "Hijack"
	_, err := svc.UpdateScript(context.Background(), tc, script.ID, UpdateScriptParams{Name: &name})
	require.ErrorIs(t, err, ErrForbidden)
}

func TestDeleteScript_AdminOverridesAuthorship(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo)

	tc := ownerCtx()
	tc.Role = team.RoleAdmin
	script := &Script{ID: uuid.New(), TeamID: tc.TeamID, AuthorID: 777, Name: "Someone else's"}
	repo.On("GetScript", mock.Anything, script.ID).Return(script, nil)
	repo.On("DeleteScript", mock.Anything, mock.AnythingOfType("*record.Script")).Return(nil)

	require.NoError(t, svc.DeleteScript(context.Background(), tc, script.ID))
}

func TestCreateSite_RequiresHostname(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo)

	_, err := svc.CreateSite(context.Background(), ownerCtx(), CreateSiteParams{})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateSite_KeepsClientSuppliedID(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo)

	id := uuid.New()
	repo.On("CreateSite", mock.Anything, mock.MatchedBy(func(s *Site) bool {
		return s.ID == id
	})).Return(nil)

	site, err := svc.CreateSite(context.Background(), ownerCtx(), CreateSiteParams{ID: &id, Hostname: "example.com"})
	require.NoError(t, err)
	assert.Equal(t, id, site.ID)
	repo.AssertExpectations(t)
}
