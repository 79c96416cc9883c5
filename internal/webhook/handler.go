package webhook

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/garyjia/kaiten-webhooks/internal/dispatch"
	"github.com/garyjia/kaiten-webhooks/internal/event"
	"github.com/garyjia/kaiten-webhooks/internal/metrics"
)

// Handler handles inbound Kaiten webhook requests
type Handler struct {
	dispatcher *dispatch.Dispatcher
	logger     *zap.Logger
}

// NewHandler creates a new webhook handler
func NewHandler(dispatcher *dispatch.Dispatcher, logger *zap.Logger) *Handler {
	return &Handler{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Handle processes an incoming webhook request. The response is written
// before dispatch is scheduled, so the caller never waits on handlers.
func (h *Handler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.logger.Error("Failed to read request body", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		h.logger.Error("Invalid JSON in webhook payload", zap.Error(err))
		metrics.WebhooksRejected.Inc()
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid JSON"})
		return
	}

	ev := event.FromPayload(payload)
	h.logger.Info("Received webhook",
		zap.String("event_kind", ev.Kind),
		zap.String("delivery_id", ev.DeliveryID))
	metrics.WebhooksReceived.WithLabelValues(ev.Kind).Inc()

	c.JSON(http.StatusOK, gin.H{"message": "Webhook processed successfully"})

	// Fire-and-forget: handlers run after the response, never before.
	h.dispatcher.Go(ev)
}

// Root serves the static service descriptor
func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Kaiten Webhook Server",
		"status":  "running",
	})
}

// Health serves the liveness probe; it has no dependency on dispatch state
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
