// Package ledger owns the atomic wallet balance primitives. Every balance
// change in the system goes through one of these single-statement updates;
// application code never reads a balance and writes it back.
package ledger

import (
	"context"
	"fmt"

	"datasub/internal/models"

	"gorm.io/gorm"
)

// Service exposes the wallet ledger operations.
type Service interface {
	// Deduct removes amount from the user's wallet. Fails with
	// ErrInsufficientFunds when the guarded update matches no row.
	Deduct(ctx context.Context, userID uint, amount float64) error
	// Refund returns a previously deducted amount (compensation path).
	Refund(ctx context.Context, userID uint, amount float64) error
	// Increment credits the wallet (funding settlement path).
	Increment(ctx context.Context, userID uint, amount float64) error
	// Balance reads the current wallet balance.
	Balance(ctx context.Context, userID uint) (float64, error)
}

type service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) Service {
	if db == nil {
		panic("db is required")
	}
	return &service{db: db}
}

func (s *service) Deduct(ctx context.Context, userID uint, amount float64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	// The balance guard in the WHERE clause is the only insufficient-funds
	// check; there is no prior read that could race.
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND wallet_balance >= ?", userID, amount).
		Update("wallet_balance", gorm.Expr("wallet_balance - ?", amount))
	if res.Error != nil {
		return fmt.Errorf("wallet deduct failed: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientFunds
	}
	return nil
}

func (s *service) credit(ctx context.Context, userID uint, amount float64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("wallet_balance", gorm.Expr("wallet_balance + ?", amount))
	if res.Error != nil {
		return fmt.Errorf("wallet credit failed: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *service) Refund(ctx context.Context, userID uint, amount float64) error {
	return s.credit(ctx, userID, amount)
}

func (s *service) Increment(ctx context.Context, userID uint, amount float64) error {
	return s.credit(ctx, userID, amount)
}

func (s *service) Balance(ctx context.Context, userID uint) (float64, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Select("wallet_balance").First(&user, userID).Error; err != nil {
		return 0, ErrUserNotFound
	}
	return user.WalletBalance, nil
}
