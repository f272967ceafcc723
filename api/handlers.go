package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/chxlky/trello-report/internal/models"
	"github.com/chxlky/trello-report/internal/report"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Runner interface {
	Run(ctx context.Context) (*report.Set, error)
}

type RunLister interface {
	Runs(ctx context.Context, limit int) ([]models.ReportRun, error)
	Run(ctx context.Context, id string) (*models.ReportRun, error)
}

type Handler struct {
	Pipeline Runner
	Archive  RunLister // nil when the archive is disabled

	// Workers bounds background refreshes; a webhook arriving while one is
	// already queued is coalesced into it.
	Workers chan struct{}

	runMu    sync.Mutex
	latestMu sync.RWMutex
	latest   *report.Set
}

func NewHandler(pipeline Runner, archive RunLister) *Handler {
	return &Handler{
		Pipeline: pipeline,
		Archive:  archive,
		Workers:  make(chan struct{}, 1),
	}
}

func (h *Handler) Register(r gin.IRouter) {
	r.GET("/health", h.HealthCheckHandler)
	r.GET("/reports", h.AggregateReportHandler)
	r.GET("/reports/:initials", h.MemberReportHandler)
	r.POST("/reports/refresh", h.RefreshHandler)
	r.GET("/runs", h.RunsHandler)
	r.GET("/runs/:id", h.RunHandler)
	r.POST("/trello-webhook", h.TrelloWebhookHandler)
	r.HEAD("/trello-webhook", h.TrelloWebhookHandler)
}

// Refresh runs the pipeline, one run at a time, and keeps the result as the
// latest report set.
func (h *Handler) Refresh(ctx context.Context) (*report.Set, error) {
	h.runMu.Lock()
	defer h.runMu.Unlock()

	set, err := h.Pipeline.Run(ctx)
	if set != nil {
		h.latestMu.Lock()
		h.latest = set
		h.latestMu.Unlock()
	}
	return set, err
}

func (h *Handler) Latest() *report.Set {
	h.latestMu.RLock()
	defer h.latestMu.RUnlock()
	return h.latest
}

func (h *Handler) scheduleRefresh() bool {
	select {
	case h.Workers <- struct{}{}:
	default:
		return false
	}
	go func() {
		defer func() { <-h.Workers }()
		if _, err := h.Refresh(context.Background()); err != nil {
			zap.L().Error("Background report refresh failed", zap.Error(err))
		}
	}()
	return true
}

func (h *Handler) HealthCheckHandler(c *gin.Context) {
	resp := gin.H{"status": "ok"}
	if latest := h.Latest(); latest != nil {
		resp["generatedAt"] = latest.GeneratedAt
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) AggregateReportHandler(c *gin.Context) {
	latest := h.Latest()
	if latest == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No report generated yet"})
		return
	}
	c.String(http.StatusOK, latest.Aggregate.Body)
}

func (h *Handler) MemberReportHandler(c *gin.Context) {
	latest := h.Latest()
	if latest == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No report generated yet"})
		return
	}
	r, ok := latest.Member(c.Param("initials"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown member initials"})
		return
	}
	c.String(http.StatusOK, r.Body)
}

func (h *Handler) RefreshHandler(c *gin.Context) {
	set, err := h.Refresh(c.Request.Context())
	if err != nil && set == nil {
		zap.L().Error("Report refresh failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	resp := gin.H{"generatedAt": set.GeneratedAt, "reports": len(set.All())}
	if err != nil {
		resp["publishError"] = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) RunsHandler(c *gin.Context) {
	if h.Archive == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Report archive is disabled"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
		return
	}
	runs, err := h.Archive.Runs(c.Request.Context(), limit)
	if err != nil {
		zap.L().Error("Failed to list report runs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list report runs"})
		return
	}
	c.JSON(http.StatusOK, runs)
}

// RunHandler returns one archived run with the text of all its reports.
func (h *Handler) RunHandler(c *gin.Context) {
	if h.Archive == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Report archive is disabled"})
		return
	}
	run, err := h.Archive.Run(c.Request.Context(), c.Param("id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown report run"})
		return
	}
	if err != nil {
		zap.L().Error("Failed to load report run", zap.String("runID", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load report run"})
		return
	}
	c.JSON(http.StatusOK, run)
}

func (h *Handler) TrelloWebhookHandler(c *gin.Context) {
	// Trello can send HEAD, GET, and POST requests to the webhook URL
	if c.Request.Method != http.MethodPost {
		zap.L().Debug("Received non-POST request to webhook endpoint; responding with 200 OK")
		c.Status(http.StatusOK)
		return
	}

	// From now on, assume it's a POST request with JSON payload
	var payload models.TrelloWebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		// This could happen if Trello sends an empty POST request to verify the webhook
		zap.L().Warn("Could not bind JSON payload - likely empty POST request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON payload"})
		return
	}

	action := payload.Action
	zap.L().Info("Received Trello webhook", zap.String("type", action.Type), zap.String("date", action.Date))

	if action.IsListMove() {
		if h.scheduleRefresh() {
			c.JSON(http.StatusOK, gin.H{"message": "Refresh scheduled"})
		} else {
			c.JSON(http.StatusOK, gin.H{"message": "Refresh already pending"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "No action taken"})
}
