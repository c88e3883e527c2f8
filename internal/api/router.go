package api

import (
	"context"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/clinichub/accounts-api/internal/api/handler"
	"github.com/clinichub/accounts-api/internal/api/middleware"
	"github.com/clinichub/accounts-api/internal/core/domain"
	"github.com/clinichub/accounts-api/internal/core/ports"
)

// Dependencies collects everything the router needs. All collaborators are
// constructed at startup and passed in; nothing is resolved globally.
type Dependencies struct {
	Users       ports.UserRepository
	Roles       ports.RoleRepository
	AuthService ports.AuthService
	UserService ports.UserService
	RoleService ports.RoleService
	Codec       ports.TokenCodec
	Mongo       *mongo.Database
	Redis       *redis.Client
	Logger      zerolog.Logger
}

// defaultGates is the role allow-list per protected route. An empty list
// admits any authenticated user.
func defaultGates() middleware.RouteGates {
	return middleware.RouteGates{
		"GET /users":        {},
		"GET /users/:id":    {},
		"POST /users":       {domain.RoleAdmin},
		"PUT /users/:id":    {domain.RoleAdmin},
		"DELETE /users/:id": {domain.RoleAdmin},
		"GET /roles":        {},
		"POST /roles":       {domain.RoleAdmin},
		"DELETE /roles/:id": {domain.RoleAdmin},
	}
}

// NewRouter builds and returns the Echo instance with all routes registered.
// Gate configuration is validated against the role table up front: an
// unknown role id fails boot instead of surfacing per request.
func NewRouter(ctx context.Context, deps Dependencies) (*echo.Echo, error) {
	gates := defaultGates()
	if err := middleware.ValidateGates(ctx, gates, deps.Roles); err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("accounts"))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(deps.AuthService)
	userHandler := handler.NewUserHandler(deps.UserService)
	roleHandler := handler.NewRoleHandler(deps.RoleService)
	meHandler := handler.NewMeHandler()

	authn := middleware.Authenticate(deps.Codec, deps.Users)
	gate := func(route string) echo.MiddlewareFunc {
		return middleware.RequireRoles(gates[route]...)
	}

	// --- Auth routes (public) ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Identity ---
	e.GET("/me", meHandler.Get, authn)

	// --- User CRUD (all behind the access middleware) ---
	users := e.Group("/users", authn)
	users.GET("", userHandler.List, gate("GET /users"))
	users.GET("/:id", userHandler.Get, gate("GET /users/:id"))
	users.POST("", userHandler.Create, gate("POST /users"))
	users.PUT("/:id", userHandler.Update, gate("PUT /users/:id"))
	users.DELETE("/:id", userHandler.Delete, gate("DELETE /users/:id"))

	// --- Role administration ---
	roles := e.Group("/roles", authn)
	roles.GET("", roleHandler.List, gate("GET /roles"))
	roles.POST("", roleHandler.Create, gate("POST /roles"))
	roles.DELETE("/:id", roleHandler.Delete, gate("DELETE /roles/:id"))

	// --- Metrics ---
	e.GET("/metrics", echoprometheus.NewHandler())

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)

	return e, nil
}
