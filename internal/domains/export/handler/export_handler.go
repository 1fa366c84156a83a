package handler

import (
	"errors"
	"net/http"

	"inkwell-backend/internal/domains/export/model"
	"inkwell-backend/internal/domains/export/service"
	"inkwell-backend/internal/shared/middleware"
	"inkwell-backend/internal/shared/response"
	"inkwell-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ExportHandler struct {
	service service.ServiceInterface
}

func NewExportHandler(service service.ServiceInterface) *ExportHandler {
	return &ExportHandler{service: service}
}

// Export handles POST /drafts/:id/export. Responds 201 when the export
// created a new library entry, 200 when it refreshed an existing one.
func (h *ExportHandler) Export(c *gin.Context) {
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

	result, err := h.service.Export(c.Request.Context(), draftID, ownerID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	status := http.StatusOK
	if result.Action == model.ActionCreated {
		status = http.StatusCreated
	}
	response.Success(c, status, result)
}

func (h *ExportHandler) respondError(c *gin.Context, err error) {
	code := "SYS_001"
	var exportErr *model.ExportError
	if errors.As(err, &exportErr) {
		code = exportErr.Code
	}

	switch {
	case errors.Is(err, model.ErrDraftNotFound):
		response.ErrorResponse(c, http.StatusNotFound, code, "draft not found")
	case errors.Is(err, model.ErrForbidden):
		response.ErrorResponse(c, http.StatusForbidden, code, "you do not own this draft")
	case errors.Is(err, model.ErrEmptyDraft):
		response.ErrorResponse(c, http.StatusUnprocessableEntity, code, "draft has no chapters to export")
	case errors.Is(err, model.ErrInsufficientFunds):
		response.ErrorResponse(c, http.StatusPaymentRequired, code, "not enough credits for the export fee")
	case errors.Is(err, model.ErrUploadFailed):
		response.ErrorResponse(c, http.StatusBadGateway, code, "could not store the exported book, please retry")
	case errors.Is(err, model.ErrPersistenceFailed):
		logger.Error("Export persistence failed", err)
		response.ErrorResponse(c, http.StatusInternalServerError, code, "export could not be completed")
	default:
		logger.Error("Export failed", err)
		response.InternalServerError(c, "export failed")
	}
}
