package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"steno/internal/domain/session"
	"steno/internal/domain/team"
	"steno/internal/domain/user"
)

// Auth validates the bearer token and resolves the full acting identity:
// user, current team, role and subscription. Handlers downstream read a
// ready TenantContext and never touch session state themselves.
type Auth struct {
	session session.Servicer
	users   user.Servicer
	teams   team.Servicer
	log     *slog.Logger
}

func New(session session.Servicer, users user.Servicer, teams team.Servicer, log *slog.Logger) *Auth {
	return &Auth{
		session: session,
		users:   users,
		teams:   teams,
		log:     log.With("component", "auth_middleware"),
	}
}

type contextKey string

const tenantKey contextKey = "tenantContext"

func (a *Auth) Middleware() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		token := ctx.Header("Authorization")
		if len(token) < 7 || token[:7] != "Bearer " {
			a.deny(ctx, http.StatusUnauthorized, "Unauthorized")
			return
		}

		userID, err := a.session.Validate(ctx.Context(), token[7:])
		if err != nil {
			a.log.Debug("session validation failed", "error", err)
			a.deny(ctx, http.StatusUnauthorized, "Unauthorized")
			return
		}

		u, err := a.users.Get(ctx.Context(), userID)
		if err != nil {
			a.log.Error("failed to load session user", "user_id", userID, "error", err)
			a.deny(ctx, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if u.CurrentTeamID == nil {
			a.deny(ctx, http.StatusForbidden, "No current team")
			return
		}

		tc, err := a.teams.ResolveContext(ctx.Context(), *u.CurrentTeamID, u.ID)
		if err != nil {
			a.log.Error("failed to resolve tenant context", "user_id", userID, "error", err)
			a.deny(ctx, http.StatusForbidden, "Forbidden")
			return
		}

		newCtx := context.WithValue(ctx.Context(), tenantKey, tc)
		next(huma.WithContext(ctx, newCtx))
	}
}

func (a *Auth) deny(ctx huma.Context, status int, msg string) {
	ctx.SetStatus(status)
	ctx.SetHeader("Content-Type", "application/json")

	if err := json.NewEncoder(ctx.BodyWriter()).Encode(map[string]string{"error": msg}); err != nil {
		a.log.Error("failed to encode auth error", "error", err)
	}
}

// GetTenantContext returns the acting identity stashed by the middleware.
func GetTenantContext(ctx context.Context) (team.TenantContext, bool) {
	tc, ok := ctx.Value(tenantKey).(team.TenantContext)
	return tc, ok
}

// WithTenantContext stores a resolved identity directly, used by handler
// tests to call endpoints without the HTTP middleware stack.
func WithTenantContext(ctx context.Context, tc team.TenantContext) context.Context {
	return context.WithValue(ctx, tenantKey, tc)
}
