package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/ErlanBelekov/autos-marketplace/internal/domain"
	"github.com/ErlanBelekov/autos-marketplace/internal/transport/http/httperr"
	"github.com/ErlanBelekov/autos-marketplace/internal/transport/http/middleware"
	"github.com/ErlanBelekov/autos-marketplace/internal/usecase"
	"github.com/gin-gonic/gin"
)

type autoUsecaser interface {
	List(ctx context.Context, in usecase.ListAutosInput) ([]*domain.Auto, error)
	GetByID(ctx context.Context, id string) (*domain.Auto, error)
	Create(ctx context.Context, in usecase.AutoInput, accountID string) (*domain.Auto, error)
	Update(ctx context.Context, id string, in usecase.AutoInput) (*domain.Auto, error)
	Delete(ctx context.Context, id string) error
}

type AutoHandler struct {
	autoUsecase autoUsecaser
	logger      *slog.Logger
}

func NewAutoHandler(autoUsecase autoUsecaser, logger *slog.Logger) *AutoHandler {
	return &AutoHandler{autoUsecase: autoUsecase, logger: logger.With("component", "auto_handler")}
}

type autoRequest struct {
	Brand       string   `json:"brand"`
	Model       string   `json:"model"`
	Year        *int     `json:"year"`
	Price       *float64 `json:"price"`
	Status      string   `json:"status"`
	Description *string  `json:"description"`
}

func (r autoRequest) input() usecase.AutoInput {
	return usecase.AutoInput{
		Brand:       r.Brand,
		Model:       r.Model,
		Year:        r.Year,
		Price:       r.Price,
		Status:      domain.AutoStatus(r.Status),
		Description: r.Description,
	}
}

type autoResponse struct {
	ID          string            `json:"id"`
	Brand       string            `json:"brand"`
	Model       string            `json:"model"`
	Year        *int              `json:"year"`
	Price       *float64          `json:"price"`
	Status      domain.AutoStatus `json:"status"`
	Description *string           `json:"description"`
	CreatedBy   *string           `json:"created_by"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func toAutoResponse(a *domain.Auto) autoResponse {
	return autoResponse{
		ID:          a.ID,
		Brand:       a.Brand,
		Model:       a.Model,
		Year:        a.Year,
		Price:       a.Price,
		Status:      a.Status,
		Description: a.Description,
		CreatedBy:   a.CreatedBy,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

// GET /autos?status=&q=
func (h *AutoHandler) List(c *gin.Context) {
	autos, err := h.autoUsecase.List(c.Request.Context(), usecase.ListAutosInput{
		Status: c.Query("status"),
		Query:  c.Query("q"),
	})
	if err != nil {
		httperr.Write(c, h.logger, "list autos", err)
		return
	}

	resp := make([]autoResponse, len(autos))
	for i, a := range autos {
		resp[i] = toAutoResponse(a)
	}
	c.JSON(http.StatusOK, resp)
}

// GET /autos/:id
func (h *AutoHandler) GetByID(c *gin.Context) {
	a, err := h.autoUsecase.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		httperr.Write(c, h.logger, "get auto", err)
		return
	}
	c.JSON(http.StatusOK, toAutoResponse(a))
}

// POST /autos
func (h *AutoHandler) Create(c *gin.Context) {
	var req autoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, errInvalidBody)
		return
	}

	var accountID string
	if claims, ok := middleware.Claims(c); ok {
		accountID = claims.AccountID
	}

	a, err := h.autoUsecase.Create(c.Request.Context(), req.input(), accountID)
	if err != nil {
		httperr.Write(c, h.logger, "create auto", err)
		return
	}
	c.JSON(http.StatusCreated, toAutoResponse(a))
}

// PUT /autos/:id
func (h *AutoHandler) Update(c *gin.Context) {
	var req autoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, errInvalidBody)
		return
	}

	a, err := h.autoUsecase.Update(c.Request.Context(), c.Param("id"), req.input())
	if err != nil {
		httperr.Write(c, h.logger, "update auto", err)
		return
	}
	c.JSON(http.StatusOK, toAutoResponse(a))
}

// DELETE /autos/:id
func (h *AutoHandler) Delete(c *gin.Context) {
	if err := h.autoUsecase.Delete(c.Request.Context(), c.Param("id")); err != nil {
		httperr.Write(c, h.logger, "delete auto", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Auto deleted"})
}
