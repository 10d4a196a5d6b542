package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/transitpulse/transit-assistant-backend/internal/middleware"
	"github.com/transitpulse/transit-assistant-backend/internal/models"
	"github.com/transitpulse/transit-assistant-backend/internal/services"
)

// DelayHandler handles delay reports, votes and their moderation
type DelayHandler struct {
	delayService *services.DelayService
	logger       *logrus.Logger
}

// NewDelayHandler creates a new DelayHandler
func NewDelayHandler(delayService *services.DelayService, logger *logrus.Logger) *DelayHandler {
	return &DelayHandler{
		delayService: delayService,
		logger:       logger,
	}
}

// ReportDelay handles POST /api/delays/report
func (h *DelayHandler) ReportDelay(c *gin.Context) {
	var req models.ReportDelayRequest
	if !bindJSON(c, &req) {
		return
	}

	report, err := h.delayService.Report(c.Request.Context(), req, middleware.UserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Delay reported successfully",
		"report":  report,
	})
}

// ListDelays handles GET /api/delays?routeId=&status=&limit=
func (h *DelayHandler) ListDelays(c *gin.Context) {
	limit, err := queryInt(c, "limit", services.DefaultDelayLimit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	reports, err := h.delayService.List(c.Request.Context(), services.DelayListQuery{
		RouteID: c.Query("routeId"),
		Status:  c.Query("status"),
		Limit:   limit,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(reports),
		"reports": reports,
	})
}

// GetDelay handles GET /api/delays/:id
func (h *DelayHandler) GetDelay(c *gin.Context) {
	report, err := h.delayService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"report":  report,
	})
}

// Upvote handles PUT /api/delays/:id/upvote
func (h *DelayHandler) Upvote(c *gin.Context) {
	h.vote(c, models.VoteUp)
}

// Downvote handles PUT /api/delays/:id/downvote
func (h *DelayHandler) Downvote(c *gin.Context) {
	h.vote(c, models.VoteDown)
}

func (h *DelayHandler) vote(c *gin.Context, direction models.VoteDirection) {
	// the body is optional when the caller is authenticated
	var req models.VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Code: CodeBadRequest})
		return
	}

	result, err := h.delayService.Vote(c.Request.Context(), c.Param("id"), middleware.UserID(c), req.UserID, direction)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	message := "Vote removed"
	if result.Voted {
		message = "Vote recorded"
	}

	body := gin.H{
		"success":         true,
		"message":         message,
		"voted":           result.Voted,
		"confidenceScore": result.ConfidenceScore(),
	}
	if direction == models.VoteUp {
		body["upvotes"] = result.Upvotes
	} else {
		body["downvotes"] = result.Downvotes
	}
	c.JSON(http.StatusOK, body)
}

// VerifyDelay handles PUT /api/admin/delays/:id/verify
func (h *DelayHandler) VerifyDelay(c *gin.Context) {
	h.moderate(c, models.ActionVerify)
}

// ResolveDelay handles PUT /api/admin/delays/:id/resolve
func (h *DelayHandler) ResolveDelay(c *gin.Context) {
	h.moderate(c, models.ActionResolve)
}

// RejectDelay handles PUT /api/admin/delays/:id/reject
func (h *DelayHandler) RejectDelay(c *gin.Context) {
	h.moderate(c, models.ActionReject)
}

func (h *DelayHandler) moderate(c *gin.Context, action models.DelayAction) {
	report, err := h.delayService.Moderate(c.Request.Context(), c.Param("id"), action, middleware.UserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"report":  report,
	})
}

// BulkAction handles POST /api/admin/delays/bulk-action
func (h *DelayHandler) BulkAction(c *gin.Context) {
	var req models.BulkActionRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.delayService.BulkAction(c.Request.Context(), req, middleware.UserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"action":    resp.Action,
		"succeeded": resp.Succeeded,
		"failed":    resp.Failed,
		"results":   resp.Results,
	})
}
