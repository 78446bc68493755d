// Steno sync server API.
//
// POST /user/register        # Register (public)
// POST /user/login           # Login, issues bearer token (public)
// GET  /api/user             # Current user + team summary (auth)
// GET  /api/v1/health        # Health check (public)
// CRUD /api/sites            # Sites (auth)
// CRUD /api/personas         # Personas (auth)
// CRUD /api/scripts          # Scripts (auth, free-tier capped)
// POST /api/sync             # Offline batch reconciliation (auth + subscription)

package api

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/exp/slog"

	healthAPI "steno/internal/app/server/api/http/health"
	"steno/internal/app/server/api/http/middleware"
	"steno/internal/app/server/api/http/middleware/auth"
	"steno/internal/app/server/api/http/middleware/logger"
	personaAPI "steno/internal/app/server/api/http/persona"
	scriptAPI "steno/internal/app/server/api/http/script"
	siteAPI "steno/internal/app/server/api/http/site"
	syncAPI "steno/internal/app/server/api/http/sync"
	userAPI "steno/internal/app/server/api/http/user"
	"steno/internal/app/server/config"
	"steno/internal/domain/record"
	"steno/internal/domain/session"
	"steno/internal/domain/sync"
	"steno/internal/domain/team"
	"steno/internal/domain/user"
	sessionStore "steno/internal/infrastructure/session"
	"steno/internal/infrastructure/storage/postgres"
)

type Handlers struct {
	Health  *healthAPI.Handler
	User    *userAPI.Handler
	Site    *siteAPI.Handler
	Persona *personaAPI.Handler
	Script  *scriptAPI.Handler
	Sync    *syncAPI.Handler
}

// New builds the chi mux with every operation registered through huma.
func New(storage *postgres.Storage, redisClient *goredis.Client, cfg *config.Config, log *slog.Logger) *chi.Mux {
	mux := chi.NewMux()

	humaConfig := huma.DefaultConfig("Steno API", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {Type: "http", Scheme: "bearer"},
	}

	API := humachi.New(mux, humaConfig)

	h := handlers(storage, redisClient, cfg, log)
	h.Health.SetupRoutes(API)
	h.User.SetupRoutes(API)
	h.Site.SetupRoutes(API)
	h.Persona.SetupRoutes(API)
	h.Script.SetupRoutes(API)
	h.Sync.SetupRoutes(API)

	return mux
}

func handlers(storage *postgres.Storage, redisClient *goredis.Client, cfg *config.Config, log *slog.Logger) *Handlers {
	sessionRepo := sessionStore.NewRedisStore(redisClient)
	sessionService := session.NewService(sessionRepo, log)

	userRepo := postgres.NewUserRepository(storage, log)
	userService := user.NewService(userRepo, log)

	teamRepo := postgres.NewTeamRepository(storage, log)
	teamService := team.NewService(teamRepo, log)

	authMW := auth.New(sessionService, userService, teamService, log)
	loggerMW := logger.New(log)
	middlewares := middleware.NewContainer()

	middlewares.Add(loggerMW.Middleware())
	healthHandler := healthAPI.NewHandler(log, middlewares.GetAllAndClear())

	middlewares.Add(loggerMW.Middleware())
	userPublicMW := middlewares.GetAllAndClear()
	middlewares.Add(authMW.Middleware())
	middlewares.Add(loggerMW.Middleware())
	userHandler := userAPI.NewHandler(userService, sessionService, log, userPublicMW, middlewares.GetAllAndClear())

	recordRepo := postgres.NewRecordRepository(storage, log)
	recordService := record.NewService(recordRepo, record.SystemClock, cfg.Quota.FreeMaxScripts, log)

	middlewares.Add(authMW.Middleware())
	middlewares.Add(loggerMW.Middleware())
	siteHandler := siteAPI.NewHandler(recordService, log, middlewares.GetAllAndClear())

	middlewares.Add(authMW.Middleware())
	middlewares.Add(loggerMW.Middleware())
	personaHandler := personaAPI.NewHandler(recordService, log, middlewares.GetAllAndClear())

	middlewares.Add(authMW.Middleware())
	middlewares.Add(loggerMW.Middleware())
	scriptHandler := scriptAPI.NewHandler(recordService, log, middlewares.GetAllAndClear())

	syncRepo := postgres.NewSyncRepository(storage, log)
	syncService := sync.NewService(syncRepo, record.SystemClock, log)
	middlewares.Add(authMW.Middleware())
	middlewares.Add(loggerMW.Middleware())
	syncHandler := syncAPI.NewHandler(syncService, log, middlewares.GetAllAndClear())

	return &Handlers{
		Health:  healthHandler,
		User:    userHandler,
		Site:    siteHandler,
		Persona: personaHandler,
		Script:  scriptHandler,
		Sync:    syncHandler,
	}
}
