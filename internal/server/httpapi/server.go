// Package httpapi exposes the registry and record services over HTTP/JSON.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/healthdot/registry/internal/logging"
	"github.com/healthdot/registry/internal/metrics"
	"github.com/healthdot/registry/internal/server/config"
	"github.com/healthdot/registry/internal/server/records"
	"github.com/healthdot/registry/internal/server/registry"
)

// HTTPServer is the public endpoint. Reads are open; mutations and record
// access require a session token.
type HTTPServer struct {
	registry *registry.Service
	records  *records.Service
	config   *config.Config
	logger   logging.Logger
}

func NewHTTPServer(reg *registry.Service, recs *records.Service, cfg *config.Config, logger logging.Logger) *HTTPServer {
	return &HTTPServer{
		registry: reg,
		records:  recs,
		config:   cfg,
		logger:   logger.With("module", "httpapi"),
	}
}

// Router builds the gin engine with all routes and middleware attached.
func (s *HTTPServer) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(metrics.Middleware())

	corsCfg := cors.DefaultConfig()
	if len(s.config.CORSAllowOrigins) == 1 && s.config.CORSAllowOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = s.config.CORSAllowOrigins
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	r.Use(cors.New(corsCfg))

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", metrics.Handler())

	v1 := r.Group("/api/v1")
	v1.POST("/session", s.createSession)

	v1.GET("/tokens", s.listTokens)
	v1.GET("/tokens/:id", s.getToken)
	v1.GET("/tokens/:id/approval", s.getApproved)
	v1.GET("/accounts/:account/balance", s.balanceOf)
	v1.GET("/accounts/:account/operators/:operator", s.isOperator)
	v1.GET("/events", s.listEvents)

	authed := v1.Group("", authRequired([]byte(s.config.SecretKey)))
	authed.POST("/tokens", s.mint)
	authed.POST("/tokens/:id/transfer", s.transfer)
	authed.PUT("/tokens/:id/approval", s.approve)
	authed.PUT("/operators/:operator", s.setOperator)

	authed.POST("/records", s.createRecord)
	authed.GET("/records", s.listRecords)
	authed.GET("/records/:id", s.getRecord)
	authed.POST("/records/:id/finalize", s.finalizeRecord)
	authed.GET("/records/:id/download", s.downloadRecord)

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.config.EndpointAddrHTTP,
		Handler: s.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "http server starting", "addr", s.config.EndpointAddrHTTP)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "http server stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
