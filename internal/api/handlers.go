package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"chatpipe/internal/models"
	"chatpipe/internal/pipeline"
	"chatpipe/internal/provider"
	"chatpipe/internal/store"
)

// PipelineRunner is the executor surface the handlers depend on.
type PipelineRunner interface {
	Run(ctx context.Context, req *pipeline.Request) (*pipeline.Response, error)
}

// Handler wires HTTP routes to the pipeline executor.
type Handler struct {
	runner  PipelineRunner
	history store.Store
	timeout time.Duration
}

// NewHandler constructs a Handler instance.
func NewHandler(runner PipelineRunner, history store.Store, timeout time.Duration) *Handler {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Handler{
		runner:  runner,
		history: history,
		timeout: timeout,
	}
}

// RegisterRoutes attaches all HTTP routes to the router.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	api.POST("/chat", h.chat)
	api.GET("/workflows", h.listWorkflows)
	api.GET("/history", h.listHistory)
	router.GET("/healthz", h.health)
}

type chatRequest struct {
	Messages []models.Message    `json:"messages"`
	Model    string              `json:"model"`
	Workflow string              `json:"workflow"`
	Files    []models.Attachment `json:"files"`
}

func (h *Handler) chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error_kind": provider.KindValidation,
			"message":    "invalid request body",
		})
		return
	}
	requestID := uuid.NewString()

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	resp, err := h.runner.Run(ctx, &pipeline.Request{
		Messages: req.Messages,
		Model:    req.Model,
		Workflow: pipeline.Workflow(req.Workflow),
		Files:    req.Files,
	})
	if err != nil {
		perr := toProviderError(err)
		c.JSON(statusForKind(perr.Kind), gin.H{
			"error_kind": perr.Kind,
			"message":    perr.Message,
			"request_id": requestID,
		})
		return
	}

	h.recordExchange(c.Request.Context(), requestID, req, resp)
	c.JSON(http.StatusOK, gin.H{
		"request_id":     requestID,
		"answer_text":    resp.AnswerText,
		"stage_trace":    resp.StageTrace,
		"search_results": resp.Search,
		"workflow":       resp.Workflow,
		"usage":          resp.Usage,
	})
}

func (h *Handler) recordExchange(ctx context.Context, requestID string, req chatRequest, resp *pipeline.Response) {
	if h.history == nil || len(req.Messages) == 0 {
		return
	}
	question := strings.TrimSpace(req.Messages[len(req.Messages)-1].Content.PlainText())
	_ = h.history.SaveExchange(ctx, &store.Exchange{
		ID:        requestID,
		Workflow:  string(resp.Workflow),
		Question:  question,
		Answer:    resp.AnswerText,
		CreatedAt: time.Now(),
	})
}

func (h *Handler) listWorkflows(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"workflows": pipeline.Workflows()})
}

func (h *Handler) listHistory(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusOK, gin.H{"exchanges": []any{}})
		return
	}
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}
	exchanges, err := h.history.RecentExchanges(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if exchanges == nil {
		exchanges = make([]*store.Exchange, 0)
	}
	c.JSON(http.StatusOK, gin.H{"exchanges": exchanges})
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func toProviderError(err error) *provider.Error {
	var perr *provider.Error
	if errors.As(err, &perr) {
		return perr
	}
	return &provider.Error{Kind: provider.KindUpstream, Message: "pipeline failed", Err: err}
}

func statusForKind(kind provider.ErrorKind) int {
	switch kind {
	case provider.KindValidation:
		return http.StatusBadRequest
	case provider.KindConfiguration:
		return http.StatusInternalServerError
	case provider.KindAuth:
		return http.StatusUnauthorized
	case provider.KindRateLimit:
		return http.StatusTooManyRequests
	case provider.KindUpstream, provider.KindNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
