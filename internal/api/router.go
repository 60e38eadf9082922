package api

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/example/langportal/internal/config"
	"github.com/example/langportal/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerTagNames sync.Once

// NewRouter builds the gin engine with every API route. limiter may be nil.
func NewRouter(h *Handler, auth *TokenAuth, limiter *RateLimiter) *gin.Engine {
	registerTagNames.Do(useJSONFieldNames)

	r := gin.New()
	r.Use(gin.LoggerWithWriter(logger.Writer()), gin.RecoveryWithWriter(logger.Writer()))
	if limiter != nil {
		r.Use(limiter.Middleware())
	}

	r.GET("/health", func(c *gin.Context) {
		respondSuccess(c, http.StatusOK, gin.H{"time": time.Now().UTC()})
	})

	api := r.Group("/api", auth.Middleware())

	sessions := api.Group("/study-sessions")
	{
		sessions.POST("", h.CreateSession)
		sessions.GET("/user/:userId", h.ListUserSessions)
		sessions.GET("/:id", h.GetSession)
		sessions.PUT("/:id", h.UpdateSession)
		sessions.DELETE("/:id", h.DeleteSession)
	}

	progress := api.Group("/progress")
	{
		progress.GET("", h.ListProgress)
		progress.GET("/due", h.DueProgress)
		progress.GET("/stats", h.ProgressStats)
		progress.GET("/export", h.ExportProgress)
	}

	words := api.Group("/words")
	{
		words.POST("", h.CreateWord)
		words.GET("/search", h.SearchWords)
		words.GET("/:id", h.GetWord)
		words.PUT("/:id", h.UpdateWord)
		words.DELETE("/:id", h.DeleteWord)
		words.GET("/:id/related", h.RelatedWords)
	}

	users := api.Group("/users/me")
	{
		users.GET("", h.GetCurrentUser)
		users.PUT("/notifications", h.UpdateNotifications)
		users.POST("/reminder", h.SendReminder)
	}

	return r
}

// useJSONFieldNames makes validation messages name fields as clients send them
func useJSONFieldNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return field.Name
	})
}

// Server is the HTTP front of the portal
type Server struct {
	httpServer *http.Server
}

// NewServer creates a server listening on cfg.Addr
func NewServer(cfg config.HTTPConfig, handler http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Start blocks serving requests until Shutdown is called
func (s *Server) Start() error {
	logger.Infof("HTTP server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
