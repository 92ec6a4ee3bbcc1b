package repository

import (
	"handcraft_market/internal/models"

	"gorm.io/gorm"
)

// TransactionFilters narrows ListTransactions. Zero values mean "no filter".
type TransactionFilters struct {
	ArtistID uint
	OrderID  uint
	Type     models.TransactionType
	Status   models.TransactionStatus
}

type TransactionRepository interface {
	Create(tx *models.Transaction) error
	GetByCommissionAndType(commissionID uint, txType models.TransactionType) (*models.Transaction, error)
	UpdateStatusByCommission(commissionID uint, txType models.TransactionType, status models.TransactionStatus) error
	UpdateStatusByWithdraw(withdrawID uint, txType models.TransactionType, status models.TransactionStatus) error
	List(filters TransactionFilters, offset, limit int) ([]models.Transaction, int64, error)
	CountByCommissionAndType(commissionID uint, txType models.TransactionType) (int64, error)
	WithTx(tx *gorm.DB) TransactionRepository
}

type transactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) WithTx(tx *gorm.DB) TransactionRepository {
	return &transactionRepository{db: tx}
}

func (r *transactionRepository) Create(tx *models.Transaction) error {
	return r.db.Create(tx).Error
}

func (r *transactionRepository) GetByCommissionAndType(commissionID uint, txType models.TransactionType) (*models.Transaction, error) {
	var tx models.Transaction
	err := r.db.Where("commission_id = ? AND type = ?", commissionID, txType).First(&tx).Error
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// UpdateStatusByCommission moves a still-pending ledger row to a terminal
// status. Rows already terminal are left untouched: the ledger is
// append-only once settled.
func (r *transactionRepository) UpdateStatusByCommission(commissionID uint, txType models.TransactionType, status models.TransactionStatus) error {
	return r.db.Model(&models.Transaction{}).
		Where("commission_id = ? AND type = ? AND status = ?", commissionID, txType, models.TxStatusPending).
		Update("status", status).Error
}

func (r *transactionRepository) UpdateStatusByWithdraw(withdrawID uint, txType models.TransactionType, status models.TransactionStatus) error {
	return r.db.Model(&models.Transaction{}).
		Where("withdraw_id = ? AND type = ? AND status = ?", withdrawID, txType, models.TxStatusPending).
		Update("status", status).Error
}

func (r *transactionRepository) List(filters TransactionFilters, offset, limit int) ([]models.Transaction, int64, error) {
	query := r.db.Model(&models.Transaction{})
	if filters.ArtistID != 0 {
		query = query.Where("artist_id = ?", filters.ArtistID)
	}
	if filters.OrderID != 0 {
		query = query.Where("order_id = ?", filters.OrderID)
	}
	if filters.Type != "" {
		query = query.Where("type = ?", filters.Type)
	}
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var txs []models.Transaction
	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&txs).Error
	return txs, total, err
}

func (r *transactionRepository) CountByCommissionAndType(commissionID uint, txType models.TransactionType) (int64, error) {
	var count int64
	err := r.db.Model(&models.Transaction{}).
		Where("commission_id = ? AND type = ?", commissionID, txType).
		Count(&count).Error
	return count, err
}
