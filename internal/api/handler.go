// Package api exposes the extraction pipeline over HTTP.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	infragin "github.com/jonesrussell/content-extraction/infrastructure/gin"
	"github.com/jonesrussell/content-extraction/infrastructure/logger"
	"github.com/jonesrussell/content-extraction/internal/domain"
)

// DefaultMaxBodyBytes caps the size of an extraction request body.
const DefaultMaxBodyBytes = 10 << 20

// Response messages.
const (
	MsgInvalidBody      = "Invalid request body. Expected an array of articles."
	MsgNoArticles       = "No articles provided for extraction."
	MsgBodyTooLarge     = "Request body too large"
	MsgExtractionDone   = "Content extraction completed successfully"
	MsgExtractionFailed = "Content extraction failed"
	MsgLive             = "Content Extraction API is running"
	MsgNotFound         = "Not Found"
)

// Pipeline runs one extraction batch.
type Pipeline interface {
	Run(ctx context.Context, articles []domain.RawArticle) (domain.BatchResult, error)
}

// Environment reports which secrets and endpoints are configured.
type Environment struct {
	Store  bool `json:"store"`
	Model  bool `json:"model"`
	APIKey bool `json:"apiKey"`
}

// ExtractionResponse is the 200 body of a completed batch.
type ExtractionResponse struct {
	Success   bool               `json:"success"`
	Message   string             `json:"message"`
	Processed int                `json:"processed"`
	Result    domain.BatchResult `json:"result"`
	Timestamp string             `json:"timestamp"`
}

// ErrorResponse is the body of every non-2xx response produced here.
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// Handler serves the extraction, liveness and health endpoints.
type Handler struct {
	pipeline     Pipeline
	env          Environment
	version      string
	maxBodyBytes int64
	log          logger.Logger
	now          func() time.Time
}

// NewHandler creates a Handler. A non-positive maxBodyBytes uses DefaultMaxBodyBytes.
func NewHandler(pipeline Pipeline, env Environment, version string, maxBodyBytes int64, log logger.Logger) *Handler {
	if version == "" {
		version = infragin.DefaultServiceVersion
	}
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{
		pipeline:     pipeline,
		env:          env,
		version:      version,
		maxBodyBytes: maxBodyBytes,
		log:          log,
		now:          time.Now,
	}
}

func (h *Handler) timestamp() string {
	return infragin.Timestamp(h.now())
}

// TriggerExtraction handles POST /api/trigger-content-extraction.
func (h *Handler) TriggerExtraction(c *gin.Context) {
	articles, status, msg := h.readArticles(c)
	if status != 0 {
		c.JSON(status, ErrorResponse{Error: msg})
		return
	}

	log := logger.FromContext(c.Request.Context())
	log.Info("Processing articles for content extraction", logger.Int("articles", len(articles)))

	result, err := h.pipeline.Run(c.Request.Context(), articles)
	if err != nil {
		log.Error("Content extraction error", logger.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:     MsgExtractionFailed,
			Message:   err.Error(),
			Timestamp: h.timestamp(),
		})
		return
	}

	c.JSON(http.StatusOK, ExtractionResponse{
		Success:   true,
		Message:   MsgExtractionDone,
		Processed: len(articles),
		Result:    result,
		Timestamp: h.timestamp(),
	})
}

// readArticles decodes {"articles": [...]}. A non-zero status means the
// request is rejected with msg.
func (h *Handler) readArticles(c *gin.Context) ([]domain.RawArticle, int, string) {
	raw, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, http.StatusRequestEntityTooLarge, MsgBodyTooLarge
		}
		return nil, http.StatusBadRequest, MsgInvalidBody
	}

	var body struct {
		Articles json.RawMessage `json:"articles"`
	}
	if err = json.Unmarshal(raw, &body); err != nil {
		return nil, http.StatusBadRequest, MsgInvalidBody
	}

	list := bytes.TrimSpace(body.Articles)
	if len(list) == 0 || list[0] != '[' {
		return nil, http.StatusBadRequest, MsgInvalidBody
	}

	var elements []json.RawMessage
	if err = json.Unmarshal(list, &elements); err != nil {
		return nil, http.StatusBadRequest, MsgInvalidBody
	}
	if len(elements) == 0 {
		return nil, http.StatusBadRequest, MsgNoArticles
	}

	return domain.ParseArticles(elements), 0, ""
}

// Health handles GET /api/health.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"timestamp":   h.timestamp(),
		"environment": h.env,
	})
}

// Root handles GET /.
func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "live",
		"message":   MsgLive,
		"timestamp": h.timestamp(),
		"version":   h.version,
	})
}

// NotFound answers every unmatched route.
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: MsgNotFound})
}
