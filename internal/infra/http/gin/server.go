package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"staybook/internal/infra/config"
	"staybook/internal/infra/obs"
)

type AvailabilityHTTP interface {
	Calendar(c *gin.Context)
	Check(c *gin.Context)
	Select(c *gin.Context)
	Quote(c *gin.Context)
}

type BookingHTTP interface {
	Create(c *gin.Context)
	Cancel(c *gin.Context)
	Confirm(c *gin.Context)
	Decline(c *gin.Context)
	ListForListing(c *gin.Context)
}

type HostCalendarHTTP interface {
	Config(c *gin.Context)
	Block(c *gin.Context)
	Unblock(c *gin.Context)
	SetPriceRule(c *gin.Context)
	DeletePriceRule(c *gin.Context)
}

type AdminHTTP interface {
	Timeline(c *gin.Context)
	BlockGlobal(c *gin.Context)
}

type Handlers struct {
	Availability AvailabilityHTTP
	Booking      BookingHTTP
	HostCalendar HostCalendarHTTP
	Admin        AdminHTTP
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewRouter(cfg, obsMW, health, h),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func NewRouter(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *gin.Engine {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.TraceContext())
	router.Use(obsMW.AccessLog())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Idempotency-Key", obs.HeaderRequestID, obs.HeaderTraceParent, obs.HeaderTraceState},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			obs.HeaderRequestID,
		},
		MaxAge: 12 * time.Hour,
	}))

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Availability != nil {
		api.GET("/listings/:id/calendar", h.Availability.Calendar)
		api.POST("/listings/:id/calendar/select", h.Availability.Select)
		api.GET("/listings/:id/availability", h.Availability.Check)
		api.GET("/listings/:id/quote", h.Availability.Quote)
	}
	if h.Booking != nil {
		api.POST("/bookings", h.Booking.Create)
		api.POST("/bookings/:id/cancel", h.Booking.Cancel)
		api.POST("/bookings/:id/confirm", h.Booking.Confirm)
		api.POST("/bookings/:id/decline", h.Booking.Decline)
		api.GET("/host/listings/:id/bookings", h.Booking.ListForListing)
	}
	if h.HostCalendar != nil {
		host := api.Group("/host")
		host.GET("/listings/:id/calendar-config", h.HostCalendar.Config)
		host.POST("/listings/:id/blocked-ranges", h.HostCalendar.Block)
		host.DELETE("/blocked-ranges/:rangeId", h.HostCalendar.Unblock)
		host.POST("/listings/:id/price-rules", h.HostCalendar.SetPriceRule)
		host.DELETE("/price-rules/:ruleId", h.HostCalendar.DeletePriceRule)
	}
	if h.Admin != nil {
		admin := api.Group("/admin")
		admin.GET("/timeline", h.Admin.Timeline)
		admin.POST("/blocked-ranges", h.Admin.BlockGlobal)
	}
	return router
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
