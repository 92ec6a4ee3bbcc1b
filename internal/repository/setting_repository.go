package repository

import (
	"errors"

	"handcraft_market/internal/models"

	"gorm.io/gorm"
)

type SettingRepository interface {
	Create(setting *models.PlatformSetting) error
	Get(settingName string) (*models.PlatformSetting, error)
	Update(setting *models.PlatformSetting) error
}

type settingRepository struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) SettingRepository {
	return &settingRepository{db: db}
}

func (r *settingRepository) Create(setting *models.PlatformSetting) error {
	return r.db.Create(setting).Error
}

func (r *settingRepository) Get(settingName string) (*models.PlatformSetting, error) {
	var setting models.PlatformSetting
	err := r.db.Where("setting_name = ? AND is_active = ?", settingName, true).First(&setting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &setting, nil
}

func (r *settingRepository) Update(setting *models.PlatformSetting) error {
	return r.db.Save(setting).Error
}
