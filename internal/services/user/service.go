package user

import (
	"context"

	"datasub/internal/models"
	"datasub/internal/repositories"
)

// Service serves user-facing account reads: profile, wallet balance and
// transaction history.
type Service interface {
	Profile(ctx context.Context, userID uint) (*models.User, error)
	Transactions(ctx context.Context, userID uint, offset, limit int) ([]models.Transaction, int64, error)
	Fundings(ctx context.Context, userID uint, offset, limit int) ([]models.WalletFunding, int64, error)
}

type service struct {
	userRepo    repositories.UserRepository
	txRepo      repositories.TransactionRepository
	fundingRepo repositories.WalletFundingRepository
}

func NewService(userRepo repositories.UserRepository, txRepo repositories.TransactionRepository, fundingRepo repositories.WalletFundingRepository) Service {
	return &service{userRepo: userRepo, txRepo: txRepo, fundingRepo: fundingRepo}
}

func (s *service) Profile(ctx context.Context, userID uint) (*models.User, error) {
	return s.userRepo.GetByID(userID)
}

func (s *service) Transactions(ctx context.Context, userID uint, offset, limit int) ([]models.Transaction, int64, error) {
	return s.txRepo.ListByUser(userID, offset, limit)
}

func (s *service) Fundings(ctx context.Context, userID uint, offset, limit int) ([]models.WalletFunding, int64, error) {
	return s.fundingRepo.ListByUser(userID, offset, limit)
}
