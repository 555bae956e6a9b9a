package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clubsphere/clubsphere/internal/services"
	appErrors "github.com/clubsphere/clubsphere/pkg/errors"
	"github.com/clubsphere/clubsphere/pkg/response"
	appValidator "github.com/clubsphere/clubsphere/pkg/validator"
)

// ResourceHandler exposes CRUD endpoints for one club resource.
type ResourceHandler[T any, PT interface {
	*T
	services.Identifiable
}] struct {
	svc *services.ResourceService[T, PT]
}

func NewResourceHandler[T any, PT interface {
	*T
	services.Identifiable
}](svc *services.ResourceService[T, PT]) (*ResourceHandler[T, PT], error) {
	if svc == nil {
		return nil, errors.New("resource handler: service is required")
	}
	return &ResourceHandler[T, PT]{svc: svc}, nil
}

// GET /api/<collection>
func (h *ResourceHandler[T, PT]) List(c *gin.Context) {
	page, limit := services.ClampPage(
		parseIntQuery(c, "page", 1),
		parseIntQuery(c, "limit", services.DefaultResourcePageSize),
		services.DefaultResourcePageSize,
		services.MaxResourcePageSize,
	)

	records, total, err := h.svc.List(requestContext(c), page, limit)
	if err != nil {
		writeResourceError(c, h.svc.Name(), err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, records, response.NewMeta(page, limit, total))
}

// GET /api/<collection>/:id
func (h *ResourceHandler[T, PT]) Get(c *gin.Context) {
	record, err := h.svc.Get(requestContext(c), c.Param("id"))
	if err != nil {
		writeResourceError(c, h.svc.Name(), err)
		return
	}
	response.Success(c, http.StatusOK, record)
}

// POST /api/<collection>
func (h *ResourceHandler[T, PT]) Create(c *gin.Context) {
	record := new(T)
	if err := c.ShouldBindJSON(record); err != nil {
		response.Error(c, appErrors.NewBadRequest("invalid JSON payload"))
		return
	}
	if err := h.svc.Create(requestContext(c), record); err != nil {
		writeResourceError(c, h.svc.Name(), err)
		return
	}
	response.Success(c, http.StatusCreated, record)
}

// PUT|PATCH /api/<collection>/:id
func (h *ResourceHandler[T, PT]) Update(c *gin.Context) {
	patch, err := c.GetRawData()
	if err != nil {
		response.Error(c, appErrors.NewBadRequest("invalid request body"))
		return
	}
	record, err := h.svc.Update(requestContext(c), c.Param("id"), patch)
	if err != nil {
		writeResourceError(c, h.svc.Name(), err)
		return
	}
	response.Success(c, http.StatusOK, record)
}

// DELETE /api/<collection>/:id
func (h *ResourceHandler[T, PT]) Delete(c *gin.Context) {
	if err := h.svc.Delete(requestContext(c), c.Param("id")); err != nil {
		writeResourceError(c, h.svc.Name(), err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func writeResourceError(c *gin.Context, collection string, err error) {
	var validationErr appValidator.ValidationErrors
	switch {
	case errors.Is(err, services.ErrResourceNotFound):
		response.Error(c, appErrors.NewNotFound(collection))
	case errors.Is(err, services.ErrResourceConflict):
		response.Error(c, appErrors.ErrConflict)
	case errors.Is(err, services.ErrInvalidPatch):
		response.Error(c, appErrors.NewBadRequest(err.Error()))
	case errors.As(err, &validationErr):
		response.Error(c, appErrors.NewValidation(formatValidationError(validationErr), validationErr.Fields()))
	default:
		response.Error(c, appErrors.ErrInternalServer.WithInternal(err))
	}
}
