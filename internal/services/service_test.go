package services_test

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"handcraft_market/internal/database"
	"handcraft_market/internal/models"
	"handcraft_market/internal/repository"
	"handcraft_market/internal/services"
	"handcraft_market/pkg/keyedlock"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// the pool must not open a second connection to a :memory: database
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type fixture struct {
	db       *gorm.DB
	locks    *keyedlock.KeyedMutex
	orders   services.OrderService
	wallet   services.WalletService
	products repository.ProductRepository

	commissionRepo  repository.CommissionRepository
	transactionRepo repository.TransactionRepository
	withdrawRepo    repository.WithdrawRepository
	orderRepo       repository.OrderRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := setupTestDB(t)

	orderRepo := repository.NewOrderRepository(db)
	productRepo := repository.NewProductRepository(db)
	commissionRepo := repository.NewCommissionRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	withdrawRepo := repository.NewWithdrawRepository(db)
	settingRepo := repository.NewSettingRepository(db)

	locks := keyedlock.New()
	return &fixture{
		db:              db,
		locks:           locks,
		orders:          services.NewOrderService(db, orderRepo, productRepo, commissionRepo, settingRepo, nil, locks, 0.10),
		wallet:          services.NewWalletService(db, commissionRepo, transactionRepo, withdrawRepo, nil, nil, locks),
		products:        productRepo,
		commissionRepo:  commissionRepo,
		transactionRepo: transactionRepo,
		withdrawRepo:    withdrawRepo,
		orderRepo:       orderRepo,
	}
}

const (
	customerID = uint(1)
	artistID   = uint(2)
	artist2ID  = uint(3)
	adminID    = uint(9)
	strangerID = uint(77)
)

func (f *fixture) createProduct(t *testing.T, artist uint, price int64) *models.Product {
	t.Helper()
	product := &models.Product{ArtistID: artist, Name: "ceramic vase", Price: price, IsActive: true}
	if err := f.products.Create(product); err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}

// createOrder places a 2,000,000 VND single-artist order with a 50,000 VND
// shipping fee, the worked example used throughout the financial tests.
func (f *fixture) createOrder(t *testing.T) *models.Order {
	t.Helper()
	product := f.createProduct(t, artistID, 2_000_000)
	order, err := f.orders.CreateOrder(customerID, []services.CheckoutItem{
		{ProductID: product.ID, Quantity: 1},
	}, 50_000)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	return order
}

func (f *fixture) transition(t *testing.T, orderID uint, target models.OrderStatus, role models.ActorRole, actorID uint) *models.Order {
	t.Helper()
	order, err := f.orders.RequestTransition(orderID, target, role, actorID)
	if err != nil {
		t.Fatalf("transition to %s as %s: %v", target, role, err)
	}
	return order
}

func (f *fixture) countTransactions(t *testing.T, filters repository.TransactionFilters) int64 {
	t.Helper()
	_, total, err := f.transactionRepo.List(filters, 0, 100)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	return total
}
