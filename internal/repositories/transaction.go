package repositories

import (
	"time"

	"datasub/internal/models"

	"gorm.io/gorm"
)

// TransactionFilter narrows admin transaction listings.
type TransactionFilter struct {
	UserID   uint
	Type     string
	Status   string
	Statuses []string
	From     *time.Time
	To       *time.Time
	Offset   int
	Limit    int
}

// ResolutionOps are the operations available inside a dispute-resolution
// database transaction. The conditional status update and the compensating
// wallet credit commit or roll back together.
type ResolutionOps interface {
	// UpdateStatusIfIn applies fields to the transaction only when its
	// current status is one of allowed. Returns false when another writer
	// already moved the row (zero rows affected).
	UpdateStatusIfIn(id uint, allowed []string, fields map[string]interface{}) (bool, error)
	// CreditWallet atomically increments a user's wallet balance.
	CreditWallet(userID uint, amount float64) error
}

// TransactionRepository defines transaction persistence operations.
type TransactionRepository interface {
	Create(tx *models.Transaction) error
	GetByID(id uint) (*models.Transaction, error)
	GetByPaymentReference(ref string) (*models.Transaction, error)
	UpdateFields(id uint, fields map[string]interface{}) error
	ListByUser(userID uint, offset, limit int) ([]models.Transaction, int64, error)
	List(filter TransactionFilter) ([]models.Transaction, int64, error)
	CountByStatus() (map[string]int64, error)
	SumAmountByTypeAndStatus(txType, status string) (float64, error)
	// InResolution runs fn inside a database transaction scoped to dispute
	// resolution.
	InResolution(fn func(ops ResolutionOps) error) error
}

type transactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(tx *models.Transaction) error {
	return translateError(r.db.Create(tx).Error, ErrTransactionNotFound)
}

func (r *transactionRepository) GetByID(id uint) (*models.Transaction, error) {
	var tx models.Transaction
	if err := r.db.First(&tx, id).Error; err != nil {
		return nil, translateError(err, ErrTransactionNotFound)
	}
	return &tx, nil
}

func (r *transactionRepository) GetByPaymentReference(ref string) (*models.Transaction, error) {
	var tx models.Transaction
	if err := r.db.Where("payment_reference = ?", ref).First(&tx).Error; err != nil {
		return nil, translateError(err, ErrTransactionNotFound)
	}
	return &tx, nil
}

func (r *transactionRepository) UpdateFields(id uint, fields map[string]interface{}) error {
	res := r.db.Model(&models.Transaction{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

func (r *transactionRepository) ListByUser(userID uint, offset, limit int) ([]models.Transaction, int64, error) {
	return r.List(TransactionFilter{UserID: userID, Offset: offset, Limit: limit})
}

func (r *transactionRepository) List(filter TransactionFilter) ([]models.Transaction, int64, error) {
	var txs []models.Transaction
	var total int64

	query := r.db.Model(&models.Transaction{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", *filter.To)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	err := query.Order("created_at DESC").Offset(filter.Offset).Limit(limit).Find(&txs).Error
	return txs, total, err
}

func (r *transactionRepository) CountByStatus() (map[string]int64, error) {
	type row struct {
		Status string
		Total  int64
	}
	var rows []row
	err := r.db.Model(&models.Transaction{}).
		Select("status, COUNT(*) as total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, rw := range rows {
		counts[rw.Status] = rw.Total
	}
	return counts, nil
}

func (r *transactionRepository) SumAmountByTypeAndStatus(txType, status string) (float64, error) {
	var sum float64
	err := r.db.Model(&models.Transaction{}).
		Where("type = ? AND status = ?", txType, status).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error
	return sum, err
}

func (r *transactionRepository) InResolution(fn func(ops ResolutionOps) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&resolutionOps{tx: tx})
	})
}

type resolutionOps struct {
	tx *gorm.DB
}

func (o *resolutionOps) UpdateStatusIfIn(id uint, allowed []string, fields map[string]interface{}) (bool, error) {
	res := o.tx.Model(&models.Transaction{}).
		Where("id = ? AND status IN ?", id, allowed).
		Updates(fields)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (o *resolutionOps) CreditWallet(userID uint, amount float64) error {
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
