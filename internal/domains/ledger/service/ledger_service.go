package service

import (
	"context"

	"inkwell-backend/internal/domains/ledger/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ServiceInterface interface {
	GetBalance(ctx context.Context, ownerID uuid.UUID) (decimal.Decimal, error)
}

type LedgerService struct {
	repo repository.Repository
}

func NewLedgerService(repo repository.Repository) *LedgerService {
	return &LedgerService{repo: repo}
}

func (s *LedgerService) GetBalance(ctx context.Context, ownerID uuid.UUID) (decimal.Decimal, error) {
	return s.repo.GetBalance(ctx, ownerID)
}
