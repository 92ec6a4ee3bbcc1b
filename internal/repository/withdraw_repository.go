package repository

import (
	"errors"

	"handcraft_market/internal/models"

	"gorm.io/gorm"
)

type WithdrawRepository interface {
	Create(request *models.WithdrawRequest) error
	GetByID(id uint) (*models.WithdrawRequest, error)
	GetByArtistID(artistID uint) ([]models.WithdrawRequest, error)
	GetByStatus(status models.WithdrawStatus) ([]models.WithdrawRequest, error)
	Update(request *models.WithdrawRequest) error
	SumApproved(artistID uint) (int64, error)
	SumPending(artistID uint) (int64, error)
	WithTx(tx *gorm.DB) WithdrawRepository
}

type withdrawRepository struct {
	db *gorm.DB
}

func NewWithdrawRepository(db *gorm.DB) WithdrawRepository {
	return &withdrawRepository{db: db}
}

func (r *withdrawRepository) WithTx(tx *gorm.DB) WithdrawRepository {
	return &withdrawRepository{db: tx}
}

func (r *withdrawRepository) Create(request *models.WithdrawRequest) error {
	return r.db.Create(request).Error
}

func (r *withdrawRepository) GetByID(id uint) (*models.WithdrawRequest, error) {
	var request models.WithdrawRequest
	err := r.db.First(&request, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &request, nil
}

func (r *withdrawRepository) GetByArtistID(artistID uint) ([]models.WithdrawRequest, error) {
	var requests []models.WithdrawRequest
	err := r.db.Where("artist_id = ?", artistID).Order("created_at DESC").Find(&requests).Error
	return requests, err
}

func (r *withdrawRepository) GetByStatus(status models.WithdrawStatus) ([]models.WithdrawRequest, error) {
	var requests []models.WithdrawRequest
	err := r.db.Where("status = ?", status).Order("created_at ASC").Find(&requests).Error
	return requests, err
}

func (r *withdrawRepository) Update(request *models.WithdrawRequest) error {
	return r.db.Save(request).Error
}

func (r *withdrawRepository) SumApproved(artistID uint) (int64, error) {
	var sum int64
	err := r.db.Model(&models.WithdrawRequest{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("artist_id = ? AND status = ?", artistID, models.WithdrawApproved).
		Scan(&sum).Error
	return sum, err
}

// SumPending totals unresolved requests; pending withdrawals reserve their
// amount against the available balance.
func (r *withdrawRepository) SumPending(artistID uint) (int64, error) {
	var sum int64
	err := r.db.Model(&models.WithdrawRequest{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("artist_id = ? AND status = ?", artistID, models.WithdrawPending).
		Scan(&sum).Error
	return sum, err
}
