// Package server exposes profile evaluation over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"mamdani/internal/fuzzy"
	"mamdani/internal/model"
	"mamdani/pkg/mamdani"
)

const (
	maxHistoryLimit = 1000
	shutdownTimeout = 5 * time.Second
)

// Evaluator is the subset of the client the HTTP API needs.
type Evaluator interface {
	Profiles() ([]mamdani.ProfileItem, error)
	Evaluate(ctx context.Context, req mamdani.EvaluateRequest) (mamdani.Evaluation, error)
	Signal(ctx context.Context, req mamdani.SignalRequest) (mamdani.Evaluation, error)
	History(ctx context.Context, req mamdani.HistoryRequest) ([]model.EvaluationRecord, error)
	GetEvaluation(ctx context.Context, id string) (model.EvaluationRecord, bool, error)
}

type Server struct {
	svc    Evaluator
	logger *zap.Logger
	router *gin.Engine
}

type EvaluateBody struct {
	Inputs    map[string]any `json:"inputs" binding:"required,min=1"`
	Ephemeral bool           `json:"ephemeral"`
}

type SignalBody struct {
	Prices    []float64 `json:"prices" binding:"required,min=2,dive,gt=0"`
	Ephemeral bool      `json:"ephemeral"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// New wires the routes. A nil gatherer leaves /metrics unregistered.
func New(svc Evaluator, gatherer prometheus.Gatherer, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	s := &Server{svc: svc, logger: logger, router: router}
	router.GET("/healthz", s.handleHealth)
	v1 := router.Group("/v1")
	v1.GET("/profiles", s.handleProfiles)
	v1.POST("/profiles/:name/evaluate", s.handleEvaluate)
	v1.POST("/signal", s.handleSignal)
	v1.GET("/evaluations", s.handleHistory)
	v1.GET("/evaluations/:id", s.handleEvaluation)
	if gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleProfiles(c *gin.Context) {
	items, err := s.svc.Profiles()
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profiles": items})
}

func (s *Server) handleEvaluate(c *gin.Context) {
	var body EvaluateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_REQUEST"})
		return
	}
	inputs, err := mamdani.CoerceInputs(body.Inputs)
	if err != nil {
		s.fail(c, err)
		return
	}
	out, err := s.svc.Evaluate(c.Request.Context(), mamdani.EvaluateRequest{
		Profile:   c.Param("name"),
		Inputs:    inputs,
		Ephemeral: body.Ephemeral,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleSignal(c *gin.Context) {
	var body SignalBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_REQUEST"})
		return
	}
	out, err := s.svc.Signal(c.Request.Context(), mamdani.SignalRequest{Prices: body.Prices, Ephemeral: body.Ephemeral})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleHistory(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		v, err := cast.ToIntE(raw)
		if err != nil || v < 0 || v > maxHistoryLimit {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be an integer in [0, 1000]", Code: "INVALID_LIMIT"})
			return
		}
		limit = v
	}
	records, err := s.svc.History(c.Request.Context(), mamdani.HistoryRequest{Profile: c.Query("profile"), Limit: limit})
	if err != nil {
		s.fail(c, err)
		return
	}
	if records == nil {
		records = []model.EvaluationRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"evaluations": records})
}

func (s *Server) handleEvaluation(c *gin.Context) {
	record, ok, err := s.svc.GetEvaluation(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "evaluation not found", Code: "NOT_FOUND"})
		return
	}
	c.JSON(http.StatusOK, record)
}

func (s *Server) fail(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, mamdani.ErrUnknownProfile):
		status, code = http.StatusNotFound, "UNKNOWN_PROFILE"
	case errors.Is(err, fuzzy.ErrMissingInput):
		status, code = http.StatusBadRequest, "MISSING_INPUT"
	case errors.Is(err, mamdani.ErrInvalidInput):
		status, code = http.StatusBadRequest, "INVALID_INPUT"
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, ErrorResponse{Error: err.Error(), Code: code})
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()
		logger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(started)),
		)
	}
}
