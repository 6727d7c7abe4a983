package message

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/mshekhar/portfolio-api/internal/model"
	"github.com/mshekhar/portfolio-api/internal/repository"
	messageService "github.com/mshekhar/portfolio-api/internal/service/message"
	"github.com/mshekhar/portfolio-api/pkg/apperror"
	"github.com/mshekhar/portfolio-api/pkg/httputil"
)

// Deliverer covers the admin-triggered delivery operations.
type Deliverer interface {
	SendNotification(ctx context.Context, messageID uuid.UUID, adminEmail string) (*model.DeliveryResult, error)
	SendReply(ctx context.Context, messageID uuid.UUID, replyContent, adminName string) (*model.DeliveryResult, error)
}

type Handler struct {
	service   *messageService.Service
	deliverer Deliverer
}

func NewHandler(service *messageService.Service, deliverer Deliverer) *Handler {
	return &Handler{service: service, deliverer: deliverer}
}

func (h *Handler) Submit(c *gin.Context) {
	var req model.SubmitMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithValidation(c, bindingViolations(err))
		return
	}

	msg, err := h.service.Submit(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, msg)
}

func (h *Handler) List(c *gin.Context) {
	filter := repository.ListMessagesFilter{
		Status: model.MessageStatus(c.Query("status")),
	}
	if limit := c.Query("limit"); limit != "" {
		filter.Limit, _ = strconv.Atoi(limit)
	}
	if offset := c.Query("offset"); offset != "" {
		filter.Offset, _ = strconv.Atoi(offset)
	}

	messages, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, messages)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperror.Validation("invalid message ID"))
		return
	}

	msg, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, msg)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperror.Validation("invalid message ID"))
		return
	}

	var req model.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithValidation(c, bindingViolations(err))
		return
	}

	if err := h.service.UpdateStatus(c.Request.Context(), id, req.Status); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"id": id, "status": req.Status})
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperror.Validation("invalid message ID"))
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"id": id})
}

// Notify triggers the admin notification delivery for a message.
func (h *Handler) Notify(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperror.Validation("invalid message ID"))
		return
	}

	var req model.NotifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithValidation(c, bindingViolations(err))
		return
	}

	result, err := h.deliverer.SendNotification(c.Request.Context(), id, req.AdminEmail)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{
		"email_id":    result.EmailID,
		"duration_ms": result.DurationMS(),
	})
}

// Reply triggers the manual admin reply delivery for a message.
func (h *Handler) Reply(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperror.Validation("invalid message ID"))
		return
	}

	var req model.ReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithValidation(c, bindingViolations(err))
		return
	}

	result, err := h.deliverer.SendReply(c.Request.Context(), id, req.ReplyContent, req.AdminName)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	body := gin.H{
		"email_id":    result.EmailID,
		"duration_ms": result.DurationMS(),
	}
	if result.ResponseTimeHours != nil {
		body["response_time_hours"] = *result.ResponseTimeHours
	}

	httputil.RespondWithSuccess(c, body)
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	messages := r.Group("/messages")
	{
		messages.GET("", h.List)
		messages.GET("/:id", h.Get)
		messages.PATCH("/:id/status", h.UpdateStatus)
		messages.DELETE("/:id", h.Delete)
		messages.POST("/:id/notify", h.Notify)
		messages.POST("/:id/reply", h.Reply)
	}
}

// RegisterSubmitRoute mounts the public submission endpoint. It is
// registered separately so the router can guard it with its own rate
// limiter.
func (h *Handler) RegisterSubmitRoute(r *gin.RouterGroup, middleware ...gin.HandlerFunc) {
	handlers := append(middleware, h.Submit)
	r.POST("/messages", handlers...)
}

// bindingViolations flattens gin's binding error into the violation
// list shape used everywhere else.
func bindingViolations(err error) []string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return []string{err.Error()}
	}

	violations := make([]string, 0, len(ve))
	for _, fe := range ve {
		switch fe.Tag() {
		case "required":
			violations = append(violations, fmt.Sprintf("%s is required", fe.Field()))
		case "email":
			violations = append(violations, fmt.Sprintf("%s must be a valid email", fe.Field()))
		case "min":
			violations = append(violations, fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param()))
		case "max":
			violations = append(violations, fmt.Sprintf("%s must not exceed %s characters", fe.Field(), fe.Param()))
		default:
			violations = append(violations, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return violations
}
