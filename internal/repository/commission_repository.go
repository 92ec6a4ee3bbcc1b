package repository

import (
	"errors"

	"handcraft_market/internal/models"

	"gorm.io/gorm"
)

type CommissionRepository interface {
	Create(record *models.CommissionRecord) error
	GetByID(id uint) (*models.CommissionRecord, error)
	GetByOrderAndArtist(orderID, artistID uint) (*models.CommissionRecord, error)
	GetByOrderID(orderID uint) ([]models.CommissionRecord, error)
	Update(record *models.CommissionRecord) error
	SumPendingEarnings(artistID uint) (int64, error)
	SumReleasedEarnings(artistID uint) (int64, error)
	WithTx(tx *gorm.DB) CommissionRepository
}

type commissionRepository struct {
	db *gorm.DB
}

func NewCommissionRepository(db *gorm.DB) CommissionRepository {
	return &commissionRepository{db: db}
}

func (r *commissionRepository) WithTx(tx *gorm.DB) CommissionRepository {
	return &commissionRepository{db: tx}
}

func (r *commissionRepository) Create(record *models.CommissionRecord) error {
	return r.db.Create(record).Error
}

func (r *commissionRepository) GetByID(id uint) (*models.CommissionRecord, error) {
	var record models.CommissionRecord
	err := r.db.First(&record, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (r *commissionRepository) GetByOrderAndArtist(orderID, artistID uint) (*models.CommissionRecord, error) {
	var record models.CommissionRecord
	err := r.db.Where("order_id = ? AND artist_id = ?", orderID, artistID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (r *commissionRepository) GetByOrderID(orderID uint) ([]models.CommissionRecord, error) {
	var records []models.CommissionRecord
	err := r.db.Where("order_id = ?", orderID).Find(&records).Error
	return records, err
}

func (r *commissionRepository) Update(record *models.CommissionRecord) error {
	return r.db.Save(record).Error
}

// SumPendingEarnings totals unreleased, unreversed earnings for an artist.
func (r *commissionRepository) SumPendingEarnings(artistID uint) (int64, error) {
	var sum int64
	err := r.db.Model(&models.CommissionRecord{}).
		Select("COALESCE(SUM(artist_earning), 0)").
		Where("artist_id = ? AND is_paid = ? AND reversed_at IS NULL", artistID, false).
		Scan(&sum).Error
	return sum, err
}

// SumReleasedEarnings totals released earnings for an artist.
func (r *commissionRepository) SumReleasedEarnings(artistID uint) (int64, error) {
	var sum int64
	err := r.db.Model(&models.CommissionRecord{}).
		Select("COALESCE(SUM(artist_earning), 0)").
		Where("artist_id = ? AND is_paid = ?", artistID, true).
		Scan(&sum).Error
	return sum, err
}
