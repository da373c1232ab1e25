package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"roommate-service/internal/matching"
	"roommate-service/internal/middleware"
	"roommate-service/internal/observability"
	"roommate-service/internal/telemetry"
)

// RouterConfig carries everything NewRouter mounts.
type RouterConfig struct {
	ServiceName   string
	Auth          gin.HandlerFunc
	Users         *UserHandler
	Preferences   *PreferencesHandler
	Matches       *MatchHandler
	Conversations *ConversationHandler
	Listings      *ListingHandler
	WebSocket     gin.HandlerFunc
	DB            Pinger
	Emitter       *telemetry.AuditEmitter
	Engine        *matching.Engine
	DebugRoutes   bool
}

// NewRouter builds the HTTP surface. Everything except register, login,
// metrics, health and the websocket (which authenticates itself) sits
// behind cfg.Auth.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Logger(),
		gin.Recovery(),
		middleware.RequestID(),
		otelgin.Middleware(cfg.ServiceName),
		observability.HTTPMetricsMiddleware(),
	)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", Healthz(cfg.DB))

	router.POST("/register/", cfg.Users.Register)
	router.POST("/login/", cfg.Users.Login)

	api := router.Group("/", cfg.Auth)
	api.GET("/users/me/", cfg.Users.Me)
	api.DELETE("/users/me/", cfg.Users.DeactivateMe)
	api.POST("/users/me/password/", cfg.Users.ChangePassword)
	api.GET("/users/:id/", cfg.Users.Get)
	api.PATCH("/users/:id/", cfg.Users.Update)

	api.GET("/preferences/", cfg.Preferences.Get)
	api.POST("/preferences/", cfg.Preferences.Replace)
	api.PATCH("/preferences/", cfg.Preferences.Patch)

	api.GET("/matches/", cfg.Matches.ListMatches)

	api.GET("/conversations/", cfg.Conversations.ListConversations)
	api.POST("/conversations/start/", cfg.Conversations.StartConversation)
	api.POST("/conversations/:id/read/", cfg.Conversations.MarkRead)
	api.GET("/messages/", cfg.Conversations.ListMessages)
	api.POST("/messages/", cfg.Conversations.SendMessage)

	api.GET("/listings/", cfg.Listings.List)
	api.POST("/listings/", cfg.Listings.Create)
	api.GET("/listings/mine/", cfg.Listings.Mine)
	api.GET("/listings/:id/", cfg.Listings.Get)
	api.DELETE("/listings/:id/", cfg.Listings.Delete)

	if cfg.WebSocket != nil {
		router.GET("/ws/conversations/:id", cfg.WebSocket)
	}

	RegisterDebugRoutes(api, cfg.Emitter, cfg.Engine, cfg.DebugRoutes)
	return router
}
