package server

import (
	"chat-room/observability"
	"chat-room/services"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	log      *slog.Logger
	presence services.IPresenceService
	messages services.IMessageService
	monitor  *observability.MonitoringManager
}

func NewHandler(
	log *slog.Logger,
	presence services.IPresenceService,
	messages services.IMessageService,
	monitor *observability.MonitoringManager,
) *Handler {
	return &Handler{log: log, presence: presence, messages: messages, monitor: monitor}
}

// NewRouter wires every room route on a fresh gin engine.
func NewRouter(log *slog.Logger, h *Handler, allowedOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log))
	router.Use(cors.New(corsConfig(allowedOrigins)))

	router.POST("/participants", h.Register)
	router.GET("/participants", h.ListParticipants)
	router.POST("/messages", h.PostMessage)
	router.GET("/messages", h.GetMessages)
	router.POST("/status", h.Heartbeat)
	router.GET("/health", h.Health)
	return router
}

func NewHTTPServer(host string, port int, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func corsConfig(allowedOrigins []string) cors.Config {
	config := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", userHeader},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(allowedOrigins) == 0 || (len(allowedOrigins) == 1 && allowedOrigins[0] == "*") {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = allowedOrigins
	}
	return config
}

func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"user", c.GetHeader(userHeader),
			"duration", time.Since(start),
		)
	}
}
