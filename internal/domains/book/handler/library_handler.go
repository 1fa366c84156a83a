package handler

import (
	"errors"
	"net/http"

	"inkwell-backend/internal/domains/book/model"
	"inkwell-backend/internal/domains/book/service"
	"inkwell-backend/internal/shared/middleware"
	"inkwell-backend/internal/shared/response"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

type LibraryHandler struct {
	service service.ServiceInterface
}

func NewLibraryHandler(svc service.ServiceInterface) *LibraryHandler {
	return &LibraryHandler{service: svc}
}

func (h *LibraryHandler) List(c *gin.Context) {
	ownerID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	books, err := h.service.ListLibrary(c.Request.Context(), ownerID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, books)
}

func (h *LibraryHandler) Get(c *gin.Context) {
	ownerID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	bookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid book id")
		return
	}

	book, err := h.service.GetBook(c.Request.Context(), ownerID, bookID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, book)
}

func (h *LibraryHandler) UpdateProgress(c *gin.Context) {
	ownerID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	bookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid book id")
		return
	}

	var req model.UpdateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	if err := h.service.UpdateProgress(c.Request.Context(), ownerID, bookID, req); err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"updated": true})
}

func (h *LibraryHandler) respondError(c *gin.Context, err error) {
	var vErrs validation.Errors
	switch {
	case errors.As(err, &vErrs):
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_FAILED", "validation failed", vErrs)
	case errors.Is(err, model.ErrBookNotFound):
		response.NotFound(c, "book not found")
	case errors.Is(err, model.ErrNotOwner):
		response.Forbidden(c, "you do not own this book")
	default:
		response.InternalServerError(c, "something went wrong")
	}
}
