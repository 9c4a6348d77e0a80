package handlers

import (
	"chamberctl/internal/logger"
	"chamberctl/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "chamberctl/docs" // swagger spec registration
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// Auth endpoints
	h.registerAuthRoutes(router)

	// Versioned API endpoints (protected)
	h.registerAPIRoutes(router)

	// WebSocket telemetry stream (HTTP upgrade) — same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.userIdMiddleware)
	{
		h.registerChamberRoutes(api)
		h.registerHistoryRoutes(api)
	}
}

func (h *Handler) registerChamberRoutes(api *gin.RouterGroup) {
	chamber := api.Group("/chamber")
	{
		chamber.GET("/state", h.getState)

		chamber.GET("/units", h.getUnits)
		chamber.PUT("/units", h.setUnits)

		chamber.PUT("/setpoint", h.setSetPoint)
		chamber.GET("/loops/:loop/pv", h.getProcessValue)
		chamber.GET("/loops/:loop/sp", h.getSetPoint)

		chamber.GET("/cascade/:cascade/setpoint", h.getCascadeSetPoint)
		chamber.PUT("/cascade/:cascade/setpoint", h.setCascadeSetPoint)
		chamber.GET("/cascade/:cascade/loops/:half", h.getCascadeLoop)

		chamber.GET("/profiles", h.listProfiles)
		chamber.POST("/profiles/refresh", h.refreshProfiles)
		chamber.PUT("/profile", h.selectProfile)

		// Body-free mode tokens: start | stop | pause | resume
		chamber.POST("/program/:mode", h.setProgramMode)

		chamber.GET("/ramp", h.getRamp)
		chamber.PUT("/ramp", h.setRamp)
		chamber.PUT("/ramp/scale", h.setRampScale)
		chamber.PUT("/ramp/action", h.setRampAction)

		chamber.GET("/outputs/:output", h.getOutput)
		chamber.POST("/outputs/:output/toggle", h.toggleOutput)
	}
}

func (h *Handler) registerHistoryRoutes(api *gin.RouterGroup) {
	api.GET("/logs", h.getLogs)
	api.GET("/readings", h.getReadings)
}
