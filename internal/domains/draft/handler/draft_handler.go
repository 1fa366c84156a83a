package handler

import (
	"errors"
	"net/http"

	"inkwell-backend/internal/domains/draft/model"
	"inkwell-backend/internal/domains/draft/service"
	"inkwell-backend/internal/shared/middleware"
	"inkwell-backend/internal/shared/response"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

type DraftHandler struct {
	service service.ServiceInterface
}

func NewDraftHandler(svc service.ServiceInterface) *DraftHandler {
	return &DraftHandler{service: svc}
}

func (h *DraftHandler) Create(c *gin.Context) {
	ownerID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	var req model.CreateDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	draft, err := h.service.CreateDraft(c.Request.Context(), ownerID, req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, draft)
}

func (h *DraftHandler) List(c *gin.Context) {
	ownerID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	drafts, err := h.service.ListDrafts(c.Request.Context(), ownerID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, drafts)
}

func (h *DraftHandler) Get(c *gin.Context) {
	ownerID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	draftID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid draft id")
		return
	}

	result, err := h.service.GetDraft(c.Request.Context(), ownerID, draftID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

func (h *DraftHandler) Update(c *gin.Context) {
	ownerID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	draftID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid draft id")
		return
	}

	var req model.UpdateDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	draft, err := h.service.UpdateDraft(c.Request.Context(), ownerID, draftID, req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, draft)
}

func (h *DraftHandler) Delete(c *gin.Context) {
	ownerID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	draftID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid draft id")
		return
	}

	if err := h.service.DeleteDraft(c.Request.Context(), ownerID, draftID); err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *DraftHandler) AddChapter(c *gin.Context) {
	ownerID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	draftID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid draft id")
		return
	}

	var req model.CreateChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	chapter, err := h.service.AddChapter(c.Request.Context(), ownerID, draftID, req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, chapter)
}

func (h *DraftHandler) UpdateChapter(c *gin.Context) {
	ownerID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	draftID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid draft id")
		return
	}

	chapterID, err := uuid.Parse(c.Param("chapter_id"))
	if err != nil {
		response.BadRequest(c, "invalid chapter id")
		return
	}

	var req model.UpdateChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	chapter, err := h.service.UpdateChapter(c.Request.Context(), ownerID, draftID, chapterID, req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, chapter)
}

func (h *DraftHandler) DeleteChapter(c *gin.Context) {
	ownerID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	draftID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid draft id")
		return
	}

	chapterID, err := uuid.Parse(c.Param("chapter_id"))
	if err != nil {
		response.BadRequest(c, "invalid chapter id")
		return
	}

	if err := h.service.DeleteChapter(c.Request.Context(), ownerID, draftID, chapterID); err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// respondError maps domain errors to HTTP responses.
func (h *DraftHandler) respondError(c *gin.Context, err error) {
	var vErrs validation.Errors
	switch {
	case errors.As(err, &vErrs):
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_FAILED", "validation failed", vErrs)
	case errors.Is(err, model.ErrDraftNotFound):
		response.NotFound(c, "draft not found")
	case errors.Is(err, model.ErrChapterNotFound):
		response.NotFound(c, "chapter not found")
	case errors.Is(err, model.ErrNotOwner):
		response.Forbidden(c, "you do not own this draft")
	default:
		response.InternalServerError(c, "something went wrong")
	}
}
