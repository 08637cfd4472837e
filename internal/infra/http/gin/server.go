package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"gearshare/internal/infra/config"
	"gearshare/internal/infra/obs"
)

type BookingHTTP interface {
	Create(c *gin.Context)
	Decide(c *gin.Context)
	Cancel(c *gin.Context)
	Complete(c *gin.Context)
	ListMine(c *gin.Context)
	ListIncoming(c *gin.Context)
}

type AvailabilityHTTP interface {
	Calendar(c *gin.Context)
	AddBlock(c *gin.Context)
	RemoveBlock(c *gin.Context)
	Recompute(c *gin.Context)
}

type ListingHTTP interface {
	Get(c *gin.Context)
	ListMine(c *gin.Context)
}

type ReviewHTTP interface {
	Submit(c *gin.Context)
	ListForItem(c *gin.Context)
}

type Handlers struct {
	Booking      BookingHTTP
	Availability AvailabilityHTTP
	Listing      ListingHTTP
	Review       ReviewHTTP
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Idempotency-Key", userEmailHeader},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Booking != nil {
		api.POST("/bookings", h.Booking.Create)
		api.POST("/bookings/:id/decide", h.Booking.Decide)
		api.POST("/bookings/:id/cancel", h.Booking.Cancel)
		api.POST("/bookings/:id/complete", h.Booking.Complete)
		api.GET("/me/bookings", h.Booking.ListMine)
		api.GET("/owner/bookings", h.Booking.ListIncoming)
	}
	if h.Availability != nil {
		api.GET("/items/:id/calendar", h.Availability.Calendar)
		api.POST("/items/:id/blocks", h.Availability.AddBlock)
		api.DELETE("/items/:id/blocks", h.Availability.RemoveBlock)
		api.POST("/items/:id/calendar/recompute", h.Availability.Recompute)
	}
	if h.Listing != nil {
		api.GET("/items/:id", h.Listing.Get)
		api.GET("/me/items", h.Listing.ListMine)
	}
	if h.Review != nil {
		api.POST("/reviews", h.Review.Submit)
		api.GET("/items/:id/reviews", h.Review.ListForItem)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
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
