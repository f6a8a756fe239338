// Package server exposes a local case database over the fund-trail HTTP API
// so the viewer, or any other client of that API, can work offline.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vanderheijden86/fundtrail/internal/datasource"
	"github.com/vanderheijden86/fundtrail/pkg/model"
	"github.com/vanderheijden86/fundtrail/pkg/trail"
)

// Store is the data the API serves.
type Store interface {
	Graph(ctx context.Context, ack string) (*trail.Document, error)
	Holds(ctx context.Context, ack string) ([]model.HoldRow, error)
	SaveKYC(ctx context.Context, req model.KYCUpdate) error
	AckNumbers(ctx context.Context) ([]string, error)
}

// Handlers serves the fund-trail API from a Store.
type Handlers struct {
	store  Store
	logger *zap.Logger
}

// NewHandlers returns handlers for store. A nil logger discards logs.
func NewHandlers(store Store, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{store: store, logger: logger}
}

// RegisterRoutes mounts the API on r.
func RegisterRoutes(r gin.IRoutes, h *Handlers) {
	r.GET("/graph_data/:ack", h.HandleGraph)
	r.GET("/put_on_hold_transactions/:ack", h.HandleHolds)
	r.POST("/save_kyc", h.HandleSaveKYC)
	r.GET("/available_ack_nos", h.HandleAckNumbers)
}

// NewRouter builds the engine with request logging and panic recovery.
func NewRouter(store Store, logger *zap.Logger) *gin.Engine {
	h := NewHandlers(store, logger)
	r := gin.New()
	r.Use(requestLogger(h.logger), gin.Recovery())
	RegisterRoutes(r, h)
	return r
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)),
			zap.String("request_id", c.GetHeader(datasource.RequestIDHeader)),
		)
	}
}

// HandleGraph answers GET /graph_data/:ack. Absent data is a 200 with an
// error field, matching what viewers expect.
func (h *Handlers) HandleGraph(c *gin.Context) {
	ack := strings.TrimSpace(c.Param("ack"))
	doc, err := h.store.Graph(c.Request.Context(), ack)
	if err != nil {
		var nd *datasource.NoDataError
		if errors.As(err, &nd) {
			c.JSON(http.StatusOK, gin.H{"error": nd.Message})
			return
		}
		h.logger.Error("graph_data failed", zap.String("ack", ack), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Error processing graph data: %v", err)})
		return
	}
	c.JSON(http.StatusOK, doc.Root)
}

// HandleHolds answers GET /put_on_hold_transactions/:ack.
func (h *Handlers) HandleHolds(c *gin.Context) {
	ack := strings.TrimSpace(c.Param("ack"))
	rows, err := h.store.Holds(c.Request.Context(), ack)
	if err != nil {
		h.logger.Error("put_on_hold_transactions failed", zap.String("ack", ack), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if rows == nil {
		rows = []model.HoldRow{}
	}
	c.JSON(http.StatusOK, rows)
}

// HandleSaveKYC answers POST /save_kyc.
func (h *Handlers) HandleSaveKYC(c *gin.Context) {
	var req model.KYCUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.KYCResult{Status: "error", Message: "invalid request body"})
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, model.KYCResult{Status: "error", Message: err.Error()})
		return
	}

	err := h.store.SaveKYC(c.Request.Context(), req)
	var kerr *datasource.KYCError
	switch {
	case err == nil:
		h.logger.Info("kyc saved", zap.String("txn_id", req.TxnID))
		c.JSON(http.StatusOK, model.KYCResult{Status: model.KYCStatusSuccess})
	case errors.As(err, &kerr):
		c.JSON(http.StatusOK, model.KYCResult{Status: "error", Message: kerr.Message})
	default:
		h.logger.Error("save_kyc failed", zap.String("txn_id", req.TxnID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, model.KYCResult{Status: "error", Message: "Internal server error"})
	}
}

// HandleAckNumbers answers GET /available_ack_nos.
func (h *Handlers) HandleAckNumbers(c *gin.Context) {
	acks, err := h.store.AckNumbers(c.Request.Context())
	if err != nil {
		h.logger.Error("available_ack_nos failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"available_ack_nos": acks})
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
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
