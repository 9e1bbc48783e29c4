// Package server exposes the task list, the later backlog, SMS delivery and
// the daily rollover over HTTP.
package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sandeepkv93/daycal/internal/notify"
	"github.com/sandeepkv93/daycal/internal/scheduler"
	"github.com/sandeepkv93/daycal/internal/storage"
)

// MaxBodyBytes limits every request body.
const MaxBodyBytes = 1 << 20

type Options struct {
	// Notifier sends /api/send-sms messages. A nil or senderless notifier
	// answers "Twilio is not configured".
	Notifier *notify.Dispatcher
	// Rollover backs /api/cron/daily.
	Rollover *scheduler.Job
	// PublicEnv is returned verbatim by /api/env.
	SupabaseURL     string
	SupabaseAnonKey string
	// StaticDir, if set, is served for every non-API path.
	StaticDir string
}

// Server is the daycal HTTP API.
type Server struct {
	repo   storage.Repository
	opts   Options
	router *gin.Engine
}

func New(repo storage.Repository, opts Options) *Server {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), limitBody(MaxBodyBytes))

	s := &Server{repo: repo, opts: opts, router: router}

	api := router.Group("/api")
	{
		api.GET("/tasks", s.handleListTasks)
		api.POST("/tasks", s.handleSaveTasks)
		api.GET("/later", s.handleListLater)
		api.POST("/later", s.handleSaveLater)
		api.POST("/send-sms", s.handleSendSMS)
		api.GET("/cron/daily", s.handleDaily)
		api.POST("/cron/daily", s.handleDaily)
		api.GET("/env", s.handleEnv)
	}

	if opts.StaticDir != "" {
		router.NoRoute(gin.WrapH(http.FileServer(http.Dir(opts.StaticDir))))
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx ends, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Printf("server running at http://localhost%s/", addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func limitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}
