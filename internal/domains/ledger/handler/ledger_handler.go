package handler

import (
	"net/http"

	"inkwell-backend/internal/domains/ledger/model"
	"inkwell-backend/internal/domains/ledger/service"
	"inkwell-backend/internal/shared/middleware"
	"inkwell-backend/internal/shared/response"
	"inkwell-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

type LedgerHandler struct {
	service service.ServiceInterface
}

func NewLedgerHandler(service service.ServiceInterface) *LedgerHandler {
	return &LedgerHandler{service: service}
}

// GetBalance handles GET /credits/balance.
func (h *LedgerHandler) GetBalance(c *gin.Context) {
	ownerID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	balance, err := h.service.GetBalance(c.Request.Context(), ownerID)
	if err != nil {
		logger.Error("Failed to read credit balance", err)
		response.InternalServerError(c, "failed to read balance")
		return
	}

	response.Success(c, http.StatusOK, model.BalanceResponse{Balance: balance})
}
