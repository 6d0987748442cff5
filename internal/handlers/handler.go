package handlers

import (
	"net/http"
	"time"

	"github.com/OscarR093/monitoreoTermico-sub000/internal/live"
	"github.com/OscarR093/monitoreoTermico-sub000/internal/logger"
	"github.com/OscarR093/monitoreoTermico-sub000/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const defaultCookieName = "access_token"

// Options carries the HTTP-layer settings.
type Options struct {
	CookieName   string
	CookieSecure bool
	TokenTTL     time.Duration
	SendBuffer   int
	// Metrics serves /metrics when set.
	Metrics http.Handler
}

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	gateway  *live.Gateway
	opts     Options
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, gateway *live.Gateway, opts Options, log *logger.Logger) *Handler {
	if opts.CookieName == "" {
		opts.CookieName = defaultCookieName
	}
	return &Handler{services: services, gateway: gateway, opts: opts, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.CustomRecovery(h.recovery))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)
	if h.opts.Metrics != nil {
		router.GET("/metrics", gin.WrapH(h.opts.Metrics))
	}

	// Auth endpoints
	h.registerAuthRoutes(router)

	// API endpoints (protected)
	h.registerAPIRoutes(router)

	// Live telemetry (HTTP upgrade), same port
	router.GET("/", h.wsConnect)
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-in", h.signIn)
		auth.POST("/sign-out", h.signOut)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api", h.authMiddleware)
	{
		api.POST("/auth/sign-up", h.adminMiddleware, h.signUp)
		h.registerHistoryRoutes(api)
		api.GET("/thermocouple-history/:name", h.getThermocoupleHistory)
	}
}

func (h *Handler) registerHistoryRoutes(api *gin.RouterGroup) {
	history := api.Group("/temperature-history")
	{
		history.GET("", h.getHistory)
		history.GET("/filter", h.getFilteredHistory)
		history.GET("/equipment-list", h.getEquipmentList)
		history.GET("/equipment/:name", h.getEquipmentHistory)
		history.GET("/equipment/:name/stats", h.getEquipmentStats)
		history.DELETE("/old-records", h.adminMiddleware, h.deleteOldRecords)
	}
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}
