package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"stayhost/internal/infra/config"
	"stayhost/internal/infra/obs"
)

type RoomHTTP interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Delete(c *gin.Context)
	Nights(c *gin.Context)
	UnavailableDates(c *gin.Context)
	AddSpecialRate(c *gin.Context)
	UpdateSpecialRate(c *gin.Context)
	RemoveSpecialRate(c *gin.Context)
	BlockDates(c *gin.Context)
	UnblockDates(c *gin.Context)
	UpdatePrices(c *gin.Context)
	ExportCalendar(c *gin.Context)
}

type Handlers struct {
	Rooms RoomHTTP
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

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	router := gin.New()
	router.Use(obsMW.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", hostHeader, idempotencyHeader},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"Location",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Rooms != nil {
		rooms := api.Group("/rooms")
		rooms.GET("", h.Rooms.List)
		rooms.POST("", h.Rooms.Create)
		rooms.GET("/:id", h.Rooms.Get)
		rooms.DELETE("/:id", h.Rooms.Delete)
		rooms.GET("/:id/nights", h.Rooms.Nights)
		rooms.GET("/:id/unavailable-dates", h.Rooms.UnavailableDates)
		rooms.POST("/:id/special-rates", h.Rooms.AddSpecialRate)
		rooms.PUT("/:id/special-rates/:rateID", h.Rooms.UpdateSpecialRate)
		rooms.DELETE("/:id/special-rates/:rateID", h.Rooms.RemoveSpecialRate)
		rooms.POST("/:id/blocks", h.Rooms.BlockDates)
		rooms.POST("/:id/unblock", h.Rooms.UnblockDates)
		rooms.PUT("/:id/prices", h.Rooms.UpdatePrices)
		rooms.POST("/:id/calendar-export", h.Rooms.ExportCalendar)
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
