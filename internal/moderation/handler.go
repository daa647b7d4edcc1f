package moderation

import (
	"net/http"
	"strconv"

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
		terms := v1.Group("/terms")
		{
			terms.GET("", h.ListTerms)
			terms.POST("", h.CreateTerm)
			terms.DELETE("/:id", h.DeleteTerm)
		}

		records := v1.Group("/records")
		{
			records.GET("", h.ListRecords)
		}

		v1.POST("/scan", h.ScanContent)
	}
}

func (h *Handler) handleError(c *gin.Context, err error) {
	h.Logger.ErrorwCtx(c.Request.Context(), "Request error", "error", err, "path", c.Request.URL.Path)

	status := errors.ToHTTPStatus(err)
	response := errors.ToErrorResponse(err)

	c.JSON(status, response)
}

// ListTerms godoc
// @Summary      List forbidden terms
// @Description  Get all forbidden terms, enabled or not
// @Tags         terms
// @Produce      json
// @Success      200  {array}   Term
// @Failure      500  {object}  errors.ErrorResponse
// @Router       /terms [get]
func (h *Handler) ListTerms(c *gin.Context) {
	terms, err := h.Service.ListTerms(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, terms)
}

// CreateTerm godoc
// @Summary      Create a forbidden term
// @Description  Add a term to the forbidden list; the scanner is rebuilt immediately
// @Tags         terms
// @Accept       json
// @Produce      json
// @Param        term  body      CreateTermRequest  true  "Term data"
// @Success      201   {object}  Term
// @Failure      400   {object}  errors.ErrorResponse
// @Failure      409   {object}  errors.ErrorResponse
// @Failure      500   {object}  errors.ErrorResponse
// @Router       /terms [post]
func (h *Handler) CreateTerm(c *gin.Context) {
	var req CreateTermRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
		return
	}

	term, err := h.Service.CreateTerm(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, term)
}

// DeleteTerm godoc
// @Summary      Delete a forbidden term
// @Tags         terms
// @Produce      json
// @Param        id   path      string  true  "Term ID"
// @Success      204  "No Content"
// @Failure      404  {object}  errors.ErrorResponse
// @Failure      500  {object}  errors.ErrorResponse
// @Router       /terms/{id} [delete]
func (h *Handler) DeleteTerm(c *gin.Context) {
	if err := h.Service.DeleteTerm(c.Request.Context(), c.Param("id")); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListRecords godoc
// @Summary      List moderation records
// @Description  Get flagged messages, most recently updated first
// @Tags         records
// @Produce      json
// @Param        limit   query     int  false  "Page size"
// @Param        offset  query     int  false  "Page offset"
// @Success      200     {array}   Record
// @Failure      500     {object}  errors.ErrorResponse
// @Router       /records [get]
func (h *Handler) ListRecords(c *gin.Context) {
	limit, offset := paginationParams(c)

	records, err := h.Service.ListRecords(c.Request.Context(), limit, offset)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

type scanRequest struct {
	Content string `json:"content" binding:"required"`
}

type scanResponse struct {
	InvalidTerms []string `json:"invalidTerms"`
}

// ScanContent godoc
// @Summary      Scan content against the current term list
// @Description  Dry-run scan; nothing is recorded or published
// @Tags         records
// @Accept       json
// @Produce      json
// @Param        content  body      scanRequest  true  "Content to scan"
// @Success      200      {object}  scanResponse
// @Failure      400      {object}  errors.ErrorResponse
// @Router       /scan [post]
func (h *Handler) ScanContent(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
		return
	}

	c.JSON(http.StatusOK, scanResponse{InvalidTerms: h.Service.ScanContent(req.Content)})
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
