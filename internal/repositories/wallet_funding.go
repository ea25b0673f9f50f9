package repositories

import (
	"datasub/internal/models"

	"gorm.io/gorm"
)

// SettlementOps are the operations available inside a settlement database
// transaction. Funding update, transaction insert and wallet credit commit
// or roll back as one unit, so a funding can never be marked completed
// without the credited transaction row.
type SettlementOps interface {
	// CompleteIfPending flips the funding to completed only when it is
	// still pending. Returns false when another settlement already won.
	CompleteIfPending(reference, gatewayResponse string) (bool, error)
	// FailIfPending marks the funding failed only when it is still pending.
	FailIfPending(reference, gatewayResponse string) (bool, error)
	// TransactionExistsByReference reports whether a transaction row was
	// already recorded for this payment reference.
	TransactionExistsByReference(reference string) (bool, error)
	// CreateTransaction inserts the completed funding transaction.
	// Returns ErrDuplicateKey when the reference was already recorded.
	CreateTransaction(tx *models.Transaction) error
	// CreditWallet atomically increments the user's wallet balance.
	CreditWallet(userID uint, amount float64) error
}

// WalletFundingRepository defines funding persistence operations.
type WalletFundingRepository interface {
	Create(funding *models.WalletFunding) error
	GetByReference(reference string) (*models.WalletFunding, error)
	ListByUser(userID uint, offset, limit int) ([]models.WalletFunding, int64, error)
	// InSettlement runs fn inside a database transaction scoped to
	// settlement of a single payment reference.
	InSettlement(fn func(ops SettlementOps) error) error
}

type walletFundingRepository struct {
	db *gorm.DB
}

func NewWalletFundingRepository(db *gorm.DB) WalletFundingRepository {
	return &walletFundingRepository{db: db}
}

func (r *walletFundingRepository) Create(funding *models.WalletFunding) error {
	return translateError(r.db.Create(funding).Error, ErrFundingNotFound)
}

func (r *walletFundingRepository) GetByReference(reference string) (*models.WalletFunding, error) {
	var funding models.WalletFunding
	if err := r.db.Where("payment_reference = ?", reference).First(&funding).Error; err != nil {
		return nil, translateError(err, ErrFundingNotFound)
	}
	return &funding, nil
}

func (r *walletFundingRepository) ListByUser(userID uint, offset, limit int) ([]models.WalletFunding, int64, error) {
	var fundings []models.WalletFunding
	var total int64

	query := r.db.Model(&models.WalletFunding{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&fundings).Error
	return fundings, total, err
}

func (r *walletFundingRepository) InSettlement(fn func(ops SettlementOps) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&settlementOps{tx: tx})
	})
}

type settlementOps struct {
	tx *gorm.DB
}

func (o *settlementOps) setStatusIfPending(reference, status, gatewayResponse string) (bool, error) {
	res := o.tx.Model(&models.WalletFunding{}).
		Where("payment_reference = ? AND status = ?", reference, models.FundingStatusPending).
		Updates(map[string]interface{}{
			"status":           status,
			"gateway_response": gatewayResponse,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (o *settlementOps) CompleteIfPending(reference, gatewayResponse string) (bool, error) {
	return o.setStatusIfPending(reference, models.FundingStatusCompleted, gatewayResponse)
}

func (o *settlementOps) FailIfPending(reference, gatewayResponse string) (bool, error) {
	return o.setStatusIfPending(reference, models.FundingStatusFailed, gatewayResponse)
}

func (o *settlementOps) TransactionExistsByReference(reference string) (bool, error) {
	var count int64
	err := o.tx.Model(&models.Transaction{}).
		Where("payment_reference = ?", reference).
		Count(&count).Error
	return count > 0, err
}

func (o *settlementOps) CreateTransaction(tx *models.Transaction) error {
	return translateError(o.tx.Create(tx).Error, ErrTransactionNotFound)
}

func (o *settlementOps) CreditWallet(userID uint, amount float64) error {
	res := o.tx.Model(&models.User{}).Where("id = ?", userID).
		Update("wallet_balance", gorm.Expr("wallet_balance + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
