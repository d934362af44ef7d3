package compiler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Mohsinsiddi/chainsim/internal/logger"
	"github.com/Mohsinsiddi/chainsim/internal/metrics"
)

// Server is the HTTP compile service. POST /compile takes {"code": "..."}
// and answers with solc's standard JSON output, diagnostics included.
type Server struct {
	compiler Compiler
	log      *zap.Logger
	engine   *gin.Engine
}

// NewServer builds the service around c.
func NewServer(c Compiler) *Server {
	s := &Server{compiler: c, log: logger.Named("compile-server")}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLog(), cors())
	r.POST("/compile", s.handleCompile)
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	s.engine = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.engine, ReadHeaderTimeout: 5 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.log.Info("compile service listening", zap.String("addr", addr))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) handleCompile(c *gin.Context) {
	var req compileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "request body must be {\"code\": \"<solidity source>\"}"})
		return
	}

	timer := metrics.NewTimer(metrics.CompileDuration)
	out, err := s.compiler.Compile(c.Request.Context(), req.Code)
	timer.Stop()
	if err != nil {
		metrics.Compilations.WithLabelValues("failure").Inc()
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	if out.Check() != nil {
		metrics.Compilations.WithLabelValues("error").Inc()
	} else {
		metrics.Compilations.WithLabelValues("ok").Inc()
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		switch {
		case c.Writer.Status() >= 500:
			s.log.Error("HTTP request", fields...)
		case c.Writer.Status() >= 400:
			s.log.Warn("HTTP request", fields...)
		default:
			s.log.Debug("HTTP request", fields...)
		}
	}
}

// cors lets the browser playground call the service from another origin.
func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
