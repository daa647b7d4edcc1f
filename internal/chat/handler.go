package chat

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"chatline/internal/constants"
	"chatline/internal/logger"
	"chatline/pkg/errors"
	"chatline/pkg/models"
)

type Handler struct {
	Service *Service
	Logger  logger.Logger
}

func NewHandler(service *Service, log logger.Logger) *Handler {
	return &Handler{
		Service: service,
		Logger:  log,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	{
		messages := v1.Group("/messages")
		{
			messages.GET("", h.ListMessages)
			messages.POST("", h.CreateMessage)
			messages.GET("/:id", h.GetMessage)
			messages.PUT("/:id", h.UpdateMessage)
			messages.DELETE("/:id", h.DeleteMessage)
		}
	}
}

func (h *Handler) handleError(c *gin.Context, err error) {
	h.Logger.ErrorwCtx(c.Request.Context(), "Request error", "error", err, "path", c.Request.URL.Path)

	status := errors.ToHTTPStatus(err)
	response := errors.ToErrorResponse(err)

	c.JSON(status, response)
}

func messageID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.ErrValidation.WithDetail("id", c.Param("id"))
	}
	return id, nil
}

// ListMessages godoc
// @Summary      List messages
// @Description  Get messages for a group, oldest first
// @Tags         messages
// @Produce      json
// @Param        groupId  query     int  false  "Group ID (defaults to 1)"
// @Param        limit    query     int  false  "Page size"
// @Param        offset   query     int  false  "Page offset"
// @Success      200      {array}   models.Message
// @Failure      500      {object}  errors.ErrorResponse
// @Router       /messages [get]
func (h *Handler) ListMessages(c *gin.Context) {
	var groupID int64
	if raw := c.Query("groupId"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithDetail("groupId", raw)))
			return
		}
		groupID = parsed
	}

	limit, offset := paginationParams(c)

	messages, err := h.Service.ListMessages(c.Request.Context(), groupID, limit, offset)
	if err != nil {
		h.handleError(c, err)
		return
	}
	if messages == nil {
		messages = []models.Message{}
	}
	c.JSON(http.StatusOK, messages)
}

// CreateMessage godoc
// @Summary      Post a message
// @Description  Store a message and queue it for moderation and audit
// @Tags         messages
// @Accept       json
// @Produce      json
// @Param        message  body      CreateMessageRequest  true  "Message data"
// @Success      201      {object}  models.Message
// @Failure      400      {object}  errors.ErrorResponse
// @Failure      500      {object}  errors.ErrorResponse
// @Router       /messages [post]
func (h *Handler) CreateMessage(c *gin.Context) {
	var req CreateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
		return
	}

	msg, err := h.Service.CreateMessage(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, msg)
}

// GetMessage godoc
// @Summary      Get a message by ID
// @Tags         messages
// @Produce      json
// @Param        id   path      int  true  "Message ID"
// @Success      200  {object}  models.Message
// @Failure      404  {object}  errors.ErrorResponse
// @Failure      500  {object}  errors.ErrorResponse
// @Router       /messages/{id} [get]
func (h *Handler) GetMessage(c *gin.Context) {
	id, err := messageID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(err))
		return
	}

	msg, err := h.Service.GetMessage(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, msg)
}

// UpdateMessage godoc
// @Summary      Edit a message
// @Description  Replace the content of a message and queue it for re-moderation
// @Tags         messages
// @Accept       json
// @Produce      json
// @Param        id       path      int                   true  "Message ID"
// @Param        message  body      UpdateMessageRequest  true  "Updated content"
// @Success      200      {object}  models.Message
// @Failure      400      {object}  errors.ErrorResponse
// @Failure      404      {object}  errors.ErrorResponse
// @Failure      500      {object}  errors.ErrorResponse
// @Router       /messages/{id} [put]
func (h *Handler) UpdateMessage(c *gin.Context) {
	id, err := messageID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(err))
		return
	}

	var req UpdateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
		return
	}

	msg, err := h.Service.UpdateMessage(c.Request.Context(), id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, msg)
}

// DeleteMessage godoc
// @Summary      Delete a message
// @Tags         messages
// @Produce      json
// @Param        id   path      int  true  "Message ID"
// @Success      204  "No Content"
// @Failure      404  {object}  errors.ErrorResponse
// @Failure      500  {object}  errors.ErrorResponse
// @Router       /messages/{id} [delete]
func (h *Handler) DeleteMessage(c *gin.Context) {
	id, err := messageID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(err))
		return
	}

	if err := h.Service.DeleteMessage(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func paginationParams(c *gin.Context) (int, int) {
	limit := constants.DefaultLimit
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > constants.MaxLimit {
		limit = constants.MaxLimit
	}

	offset := 0
	if raw := c.Query("offset"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	return limit, offset
}
