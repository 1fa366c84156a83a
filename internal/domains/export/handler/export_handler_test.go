package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"inkwell-backend/internal/domains/export/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubExportService struct {
	result *model.ExportResult
	err    error
}

func (s *stubExportService) Export(ctx context.Context, draftID, ownerID uuid.UUID) (*model.ExportResult, error) {
	return s.result, s.err
}

type exportResponse struct {
	Success bool                `json:"success"`
	Data    *model.ExportResult `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func postExport(t *testing.T, svc *stubExportService, ownerID uuid.UUID, draftID string) (*httptest.ResponseRecorder, exportResponse) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/drafts/:id/export",
		func(c *gin.Context) { c.Set("userID", ownerID) },
		NewExportHandler(svc).Export,
	)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/drafts/"+draftID+"/export", nil)
	router.ServeHTTP(w, req)

	var body exportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestExportHandler_CreatedAndUpdatedStatuses(t *testing.T) {
	tests := []struct {
		name       string
		action     model.ExportAction
		wantStatus int
	}{
		{name: "new library entry", action: model.ActionCreated, wantStatus: http.StatusCreated},
		{name: "refreshed library entry", action: model.ActionUpdated, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bookID := uuid.New()
			svc := &stubExportService{result: &model.ExportResult{BookID: bookID, Action: tt.action}}

			w, body := postExport(t, svc, uuid.New(), uuid.NewString())

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.True(t, body.Success)
			require.NotNil(t, body.Data)
			assert.Equal(t, bookID, body.Data.BookID)
			assert.Equal(t, tt.action, body.Data.Action)
		})
	}
}

func TestExportHandler_ErrorStatusesAndCodes(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "draft not found",
			err:        model.NewExportError(model.ErrCodeDraftNotFound, "draft not found", model.ErrDraftNotFound),
			wantStatus: http.StatusNotFound,
			wantCode:   model.ErrCodeDraftNotFound,
		},
		{
			name:       "forbidden",
			err:        model.NewExportError(model.ErrCodeForbidden, "draft belongs to another owner", model.ErrForbidden),
			wantStatus: http.StatusForbidden,
			wantCode:   model.ErrCodeForbidden,
		},
		{
			name:       "empty draft",
			err:        model.NewExportError(model.ErrCodeEmptyDraft, "draft has no chapters", model.ErrEmptyDraft),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   model.ErrCodeEmptyDraft,
		},
		{
			name:       "insufficient funds",
			err:        model.NewExportError(model.ErrCodeInsufficientFunds, "not enough credits for export fee", model.ErrInsufficientFunds),
			wantStatus: http.StatusPaymentRequired,
			wantCode:   model.ErrCodeInsufficientFunds,
		},
		{
			name:       "upload failed",
			err:        model.NewExportError(model.ErrCodeUploadFailed, "failed to upload archive", fmt.Errorf("%w: %v", model.ErrUploadFailed, errors.New("connection reset"))),
			wantStatus: http.StatusBadGateway,
			wantCode:   model.ErrCodeUploadFailed,
		},
		{
			name:       "persistence failed",
			err:        model.NewExportError(model.ErrCodePersistenceFailed, "failed to record exported book", fmt.Errorf("%w: %v", model.ErrPersistenceFailed, errors.New("commit failed"))),
			wantStatus: http.StatusInternalServerError,
			wantCode:   model.ErrCodePersistenceFailed,
		},
		{
			name:       "unclassified error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_SERVER_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := postExport(t, &stubExportService{err: tt.err}, uuid.New(), uuid.NewString())

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.wantCode, body.Error.Code)
		})
	}
}

func TestExportHandler_InvalidDraftID(t *testing.T) {
	w, body := postExport(t, &stubExportService{}, uuid.New(), "not-a-uuid")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, body.Error)
	assert.Equal(t, "BAD_REQUEST", body.Error.Code)
}

func TestExportHandler_MissingAuthContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/drafts/:id/export", NewExportHandler(&stubExportService{}).Export)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/drafts/"+uuid.NewString()+"/export", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
