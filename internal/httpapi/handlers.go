// Package httpapi exposes the engine's five inbound API entry points
// (spec §6) over HTTP with gin, grounded on the teacher's
// event-service/internal/handlers/event_handlers.go request/response
// style. This substitutes for the teacher's grpc/protobuf surface, which
// SPEC_FULL.md drops as a dependency the engine has no use for.
package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"adaptive-engine/internal/engine"
	"adaptive-engine/internal/errs"
	"adaptive-engine/internal/logger"
	"adaptive-engine/internal/models"
)

// Handler wires the engine's inbound API to gin request handlers.
type Handler struct {
	engine *engine.Engine
	logger *logger.Logger
}

func NewHandler(e *engine.Engine, log *logger.Logger) *Handler {
	return &Handler{engine: e, logger: log}
}

// statusFor maps an engine error Kind onto an HTTP status, per spec §7.
func statusFor(kind errs.Kind) int {
	switch kind {
	case errs.NotFound:
		return http.StatusNotFound
	case errs.InvalidInput:
		return http.StatusBadRequest
	case errs.StaleTransaction, errs.ConstraintViolation:
		return http.StatusConflict
	case errs.Cancelled:
		return http.StatusRequestTimeout
	case errs.Timeout:
		return http.StatusGatewayTimeout
	case errs.StoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	kind := errs.KindOf(err)
	h.logger.WithContext(c.Request.Context()).WithError(err).Warn("request failed")
	c.JSON(statusFor(kind), gin.H{
		"error":   string(kind),
		"message": err.Error(),
	})
}

// StartSession handles POST /api/v1/users/:user_id/session.
func (h *Handler) StartSession(c *gin.Context) {
	userID := c.Param("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_input", "message": "user_id is required"})
		return
	}

	session, err := h.engine.StartSession(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// recordAttemptRequest is the JSON body for RecordAttempt.
type recordAttemptRequest struct {
	Attempt    models.Attempt `json:"attempt"`
	LeetcodeID int            `json:"leetcode_id"`
}

// RecordAttempt handles POST /api/v1/sessions/:session_id/attempts.
func (h *Handler) RecordAttempt(c *gin.Context) {
	sessionID := c.Param("session_id")

	var req recordAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_input", "message": err.Error()})
		return
	}

	if err := h.engine.RecordAttempt(c.Request.Context(), sessionID, req.Attempt, req.LeetcodeID); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CompleteSession handles POST /api/v1/sessions/:session_id/complete.
func (h *Handler) CompleteSession(c *gin.Context) {
	sessionID := c.Param("session_id")

	analytics, err := h.engine.CompleteSession(c.Request.Context(), sessionID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, analytics)
}

// SkipProblem handles POST /api/v1/sessions/:session_id/problems/:leetcode_id/skip.
func (h *Handler) SkipProblem(c *gin.Context) {
	sessionID := c.Param("session_id")
	leetcodeID, err := strconv.Atoi(c.Param("leetcode_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_input", "message": "leetcode_id must be an integer"})
		return
	}

	session, err := h.engine.SkipProblem(c.Request.Context(), sessionID, leetcodeID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// ClassifyStaleSession handles POST /api/v1/sessions/classify-stale.
func (h *Handler) ClassifyStaleSession(c *gin.Context) {
	var session models.Session
	if err := c.ShouldBindJSON(&session); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_input", "message": err.Error()})
		return
	}

	result := h.engine.ClassifyStaleSession(c.Request.Context(), session)
	c.JSON(http.StatusOK, result)
}

// Health handles GET /health.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "adaptive-engine"})
}
