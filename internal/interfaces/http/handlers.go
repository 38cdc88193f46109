package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/traveldesk/traveldesk/internal/apperrors"
	"github.com/traveldesk/traveldesk/internal/application/service"
	"github.com/traveldesk/traveldesk/internal/domain/entity"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	requestService service.RequestService
	actionService  service.ActionService
	logger         Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(requestService service.RequestService, actionService service.ActionService, logger Logger) *Handlers {
	return &Handlers{
		requestService: requestService,
		actionService:  actionService,
		logger:         logger,
	}
}

// ErrorResponse is the structured error body every failure returns
type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// ActionResponse is the success body for an applied action
type ActionResponse struct {
	Message string          `json:"message"`
	TRF     *entity.Request `json:"trf"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// CreateRequest handles POST /api/<domain>
func (h *Handlers) CreateRequest(domain entity.Domain) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.CreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			h.writeError(c, apperrors.NewValidation("body", err.Error()))
			return
		}

		request, err := h.requestService.Create(c.Request.Context(), domain, req)
		if err != nil {
			h.writeError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message": "Request submitted.",
			"trf":     request,
		})
	}
}

// ListRequests handles GET /api/<domain>?role=&limit=&offset=
func (h *Handlers) ListRequests(domain entity.Domain) gin.HandlerFunc {
	return func(c *gin.Context) {
		var query struct {
			Role   string `form:"role"`
			Limit  int    `form:"limit"`
			Offset int    `form:"offset"`
		}
		if err := c.ShouldBindQuery(&query); err != nil {
			h.writeError(c, apperrors.NewValidation("query", err.Error()))
			return
		}

		if query.Limit <= 0 || query.Limit > 100 {
			query.Limit = 20
		}
		if query.Offset < 0 {
			query.Offset = 0
		}

		var requests []*entity.Request
		var err error
		if query.Role != "" {
			// Approvers page over the statuses their queue covers
			requests, err = h.requestService.ListForRole(c.Request.Context(), domain, query.Role, query.Limit, query.Offset)
		} else {
			requests, err = h.requestService.List(c.Request.Context(), domain, query.Limit, query.Offset)
		}
		if err != nil {
			h.writeError(c, err)
			return
		}

		if requests == nil {
			requests = []*entity.Request{}
		}
		c.JSON(http.StatusOK, gin.H{"requests": requests})
	}
}

// GetRequest handles GET /api/<domain>/:id
func (h *Handlers) GetRequest(c *gin.Context) {
	request, err := h.requestService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"trf": request})
}

// GetSteps handles GET /api/<domain>/:id/steps
func (h *Handlers) GetSteps(c *gin.Context) {
	steps, err := h.requestService.GetSteps(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"steps": steps})
}

// EditRequest handles PUT /api/<domain>/:id
func (h *Handlers) EditRequest(c *gin.Context) {
	var req service.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, apperrors.NewValidation("body", err.Error()))
		return
	}

	request, err := h.requestService.Edit(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Request updated and resubmitted.",
		"trf":     request,
	})
}

// SubmitAction handles POST /api/<domain>/:id/action with
// {action: approve|reject|cancel, comments, approverRole, approverName}
func (h *Handlers) SubmitAction(c *gin.Context) {
	var req service.ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, apperrors.NewValidation("body", err.Error()))
		return
	}

	switch req.Action {
	case "approve", "reject", "cancel":
	default:
		h.writeError(c, apperrors.NewValidation("action", "action must be approve, reject or cancel"))
		return
	}

	result, err := h.actionService.SubmitAction(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, ActionResponse{
		Message: result.Message,
		TRF:     result.Request,
	})
}

// AdvanceProcessing handles POST /api/<domain>/:id/advance; the domain admin
// teams use it to move an Approved request through its processing stages
func (h *Handlers) AdvanceProcessing(c *gin.Context) {
	var req struct {
		Comments     string `json:"comments"`
		ApproverRole string `json:"approverRole" binding:"required"`
		ApproverName string `json:"approverName" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, apperrors.NewValidation("body", err.Error()))
		return
	}

	result, err := h.actionService.SubmitAction(c.Request.Context(), c.Param("id"), service.ActionRequest{
		Action:       "advance",
		Comments:     req.Comments,
		ApproverRole: req.ApproverRole,
		ApproverName: req.ApproverName,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, ActionResponse{
		Message: result.Message,
		TRF:     result.Request,
	})
}

// writeError maps the error taxonomy onto HTTP statuses with a structured
// JSON body
func (h *Handlers) writeError(c *gin.Context, err error) {
	var validation *apperrors.ValidationError
	if errors.As(err, &validation) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: validation.Message,
			Details: gin.H{"field": validation.Field},
		})
		return
	}

	var notFound *apperrors.NotFoundError
	if errors.As(err, &notFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: notFound.Error(),
		})
		return
	}

	var invalid *apperrors.InvalidTransitionError
	if errors.As(err, &invalid) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_transition",
			Message: invalid.Error(),
			Details: gin.H{"current_status": invalid.CurrentStatus},
		})
		return
	}

	var duplicate *apperrors.DuplicateActionError
	if errors.As(err, &duplicate) {
		c.JSON(http.StatusTooManyRequests, ErrorResponse{
			Error:   "duplicate_action",
			Message: duplicate.Error(),
			Details: gin.H{"retry_after_seconds": duplicate.RetryAfterSeconds()},
		})
		return
	}

	h.logger.Error("Request failed", "error", err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "an internal error occurred",
	})
}
