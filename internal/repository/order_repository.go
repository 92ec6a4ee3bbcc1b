package repository

import (
	"errors"
	"time"

	"handcraft_market/internal/models"

	"gorm.io/gorm"
)

// OrderFilters narrows ListOrders. Zero values mean "no filter".
type OrderFilters struct {
	CustomerID uint
	ArtistID   uint
	Status     models.OrderStatus
}

// OrderStatistics is the aggregate the admin dashboard reads instead of
// re-deriving totals from paginated lists.
type OrderStatistics struct {
	CountsByStatus     map[models.OrderStatus]int64 `json:"counts_by_status"`
	TotalRevenue       int64                        `json:"total_revenue"`       // delivered orders
	PlatformCommission int64                        `json:"platform_commission"` // released commissions
	ArtistEarnings     int64                        `json:"artist_earnings"`     // released commissions
}

type OrderRepository interface {
	Create(order *models.Order) error
	Update(order *models.Order) error
	GetByID(id uint) (*models.Order, error)
	GetByCode(code string) (*models.Order, error)
	List(filters OrderFilters, offset, limit int) ([]models.Order, int64, error)
	GetStaleWaitingForPayment(olderThan time.Time) ([]models.Order, error)
	GetStatistics(from, to time.Time) (*OrderStatistics, error)
	WithTx(tx *gorm.DB) OrderRepository
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) WithTx(tx *gorm.DB) OrderRepository {
	return &orderRepository{db: tx}
}

func (r *orderRepository) Create(order *models.Order) error {
	return r.db.Create(order).Error
}

func (r *orderRepository) Update(order *models.Order) error {
	return r.db.Save(order).Error
}

func (r *orderRepository) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	err := r.db.Preload("Items").First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByCode(code string) (*models.Order, error) {
	var order models.Order
	err := r.db.Preload("Items").Where("order_code = ?", code).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) List(filters OrderFilters, offset, limit int) ([]models.Order, int64, error) {
	query := r.db.Model(&models.Order{})
	if filters.CustomerID != 0 {
		query = query.Where("customer_id = ?", filters.CustomerID)
	}
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.ArtistID != 0 {
		query = query.Where(
			"id IN (?)",
			r.db.Model(&models.OrderItem{}).Select("order_id").Where("artist_id = ?", filters.ArtistID),
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	err := query.Preload("Items").Order("created_at DESC").Offset(offset).Limit(limit).Find(&orders).Error
	return orders, total, err
}

func (r *orderRepository) GetStaleWaitingForPayment(olderThan time.Time) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Where("status = ? AND created_at < ?", models.StatusWaitingForPayment, olderThan).
		Find(&orders).Error
	return orders, err
}

func (r *orderRepository) GetStatistics(from, to time.Time) (*OrderStatistics, error) {
	stats := &OrderStatistics{CountsByStatus: make(map[models.OrderStatus]int64)}

	rows := []struct {
		Status models.OrderStatus
		Count  int64
	}{}
	err := r.db.Model(&models.Order{}).
		Select("status, count(*) as count").
		Where("created_at BETWEEN ? AND ?", from, to).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		stats.CountsByStatus[row.Status] = row.Count
	}

	err = r.db.Model(&models.Order{}).
		Select("COALESCE(SUM(total_amount), 0)").
		Where("status = ? AND created_at BETWEEN ? AND ?", models.StatusDelivered, from, to).
		Scan(&stats.TotalRevenue).Error
	if err != nil {
		return nil, err
	}

	type split struct {
		Commission int64
		Earning    int64
	}
	var s split
	err = r.db.Model(&models.CommissionRecord{}).
		Select("COALESCE(SUM(platform_commission), 0) as commission, COALESCE(SUM(artist_earning), 0) as earning").
		Where("is_paid = ? AND created_at BETWEEN ? AND ?", true, from, to).
		Scan(&s).Error
	if err != nil {
		return nil, err
	}
	stats.PlatformCommission = s.Commission
	stats.ArtistEarnings = s.Earning

	return stats, nil
}
