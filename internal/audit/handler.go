package audit

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"chatline/internal/constants"
	"chatline/internal/logger"
	"chatline/pkg/errors"
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
		v1.GET("/logs", h.ListLogs)
	}
}

// ListLogs godoc
// @Summary      List audit log entries
// @Description  Get audit entries, newest first, optionally filtered
// @Tags         logs
// @Produce      json
// @Param        userId    query     int     false  "Filter by user ID"
// @Param        entity    query     string  false  "Filter by entity type"
// @Param        entityId  query     int     false  "Filter by entity ID"
// @Param        action    query     string  false  "Filter by action"
// @Param        from      query     string  false  "Created at or after (RFC3339)"
// @Param        to        query     string  false  "Created at or before (RFC3339)"
// @Param        limit     query     int     false  "Page size"
// @Param        offset    query     int     false  "Page offset"
// @Success      200       {array}   LogEntry
// @Failure      400       {object}  errors.ErrorResponse
// @Failure      500       {object}  errors.ErrorResponse
// @Router       /logs [get]
func (h *Handler) ListLogs(c *gin.Context) {
	filter, err := listFilterFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
		return
	}

	entries, err := h.Service.List(c.Request.Context(), filter)
	if err != nil {
		h.Logger.ErrorwCtx(c.Request.Context(), "Request error", "error", err, "path", c.Request.URL.Path)
		c.JSON(errors.ToHTTPStatus(err), errors.ToErrorResponse(err))
		return
	}
	if entries == nil {
		entries = []LogEntry{}
	}

	c.JSON(http.StatusOK, entries)
}

func listFilterFromQuery(c *gin.Context) (ListFilter, error) {
	filter := ListFilter{
		Entity: c.Query("entity"),
		Action: c.Query("action"),
		Limit:  constants.DefaultLimit,
	}

	if raw := c.Query("userId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return ListFilter{}, err
		}
		filter.UserID = id
	}
	if raw := c.Query("entityId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return ListFilter{}, err
		}
		filter.EntityID = id
	}
	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return ListFilter{}, err
		}
		filter.From = from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return ListFilter{}, err
		}
		filter.To = to
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return ListFilter{}, err
		}
		if limit > 0 {
			filter.Limit = limit
		}
	}
	if filter.Limit > constants.MaxLimit {
		filter.Limit = constants.MaxLimit
	}
	if raw := c.Query("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil {
			return ListFilter{}, err
		}
		if offset >= 0 {
			filter.Offset = offset
		}
	}

	return filter, nil
}
