package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/pollwise/poll-api/docs"
	"github.com/pollwise/poll-api/internal/api/handler"
	"github.com/pollwise/poll-api/internal/api/middleware"
	"github.com/pollwise/poll-api/internal/core/ports"
	"github.com/pollwise/poll-api/internal/infrastructure/config"
	"github.com/pollwise/poll-api/internal/infrastructure/http/handlers"
)

// Dependencies bundles everything the router wires into handlers. The caller
// (main) owns construction and lifecycle of each piece.
type Dependencies struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Mongo    *mongo.Database
	Redis    *redis.Client
	Tokens   ports.TokenIssuer
	Users    ports.UserRepository
	Sessions ports.SessionService
	Accounts ports.AccountService
	Resets   ports.ResetService
	Profiles ports.ProfileService
	Polls    ports.PollService
	Logs     ports.AuditRepository
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     d.Config.AllowedOrigins,
		AllowCredentials: true,
	}))
	e.Use(echoprometheus.NewMiddleware("pollapi"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Sessions, d.Accounts, d.Resets)
	userHandler := handler.NewUserHandler(d.Accounts, d.Profiles)
	pollHandler := handler.NewPollHandler(d.Polls)
	logHandler := handler.NewLogHandler(d.Logs)

	authn := middleware.Auth(d.Tokens)
	active := middleware.ActiveOnly(d.Users)
	admin := middleware.AdminOnly(d.Users)

	// --- Auth routes (no access token required) ---
	auth := e.Group("/users/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/google", authHandler.Google)
	auth.GET("/refresh", authHandler.Refresh)
	auth.GET("/logout", authHandler.Logout)
	auth.POST("/reset_request", authHandler.RequestReset)
	auth.POST("/reset_password", authHandler.ResetPassword, middleware.ResetGate(d.Tokens))

	// --- Account routes ---
	users := e.Group("/users", authn, active)
	users.GET("", userHandler.List, admin)
	users.GET("/polls", userHandler.MyPolls)
	users.POST("/set_admin", userHandler.SetAdmin, admin)
	users.POST("/profile_pic", userHandler.UploadProfilePic)
	users.POST("/profile_pic/remove", userHandler.RemoveProfilePic)
	users.GET("/:id", userHandler.Get)

	// set_active must work for a deactivated account reactivating itself, and
	// delete only accepts already-deactivated accounts, so both skip the
	// active gate.
	e.POST("/users/set_active", userHandler.SetActive, authn)
	e.POST("/users/delete", userHandler.Delete, authn)

	// --- Poll routes ---
	polls := e.Group("/polls", authn, active)
	polls.POST("/create", pollHandler.Create)
	polls.POST("/edit", pollHandler.Edit)
	polls.POST("/rename", pollHandler.Rename)
	polls.POST("/delete", pollHandler.Delete)
	polls.POST("/answer", pollHandler.Answer)
	polls.GET("/templates", pollHandler.Templates)
	polls.GET("/templates/:name", pollHandler.Template)
	polls.GET("/:id", pollHandler.Get)
	polls.GET("/:id/answers", pollHandler.Answers)

	// --- Audit log ---
	e.GET("/logs/:type", logHandler.ListByType, authn, active, admin)

	// --- Observability ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	// --- Health probes (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(d.Mongo, d.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	return e
}

// requestLogger emits one structured line per request through zerolog.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			log.Info().
				Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}
