package services

import (
	"fmt"
	"log"
	"sort"
	"time"

	"handcraft_market/internal/models"
	"handcraft_market/internal/redis"
	"handcraft_market/internal/repository"
	"handcraft_market/internal/settlement"
	"handcraft_market/pkg/keyedlock"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CheckoutItem is one product line requested at order creation.
type CheckoutItem struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

type OrderService interface {
	CreateOrder(customerID uint, items []CheckoutItem, shippingFee int64) (*models.Order, error)
	RequestTransition(orderID uint, target models.OrderStatus, role models.ActorRole, actorID uint) (*models.Order, error)
	GetOrderByID(id uint) (*models.Order, error)
	GetOrderByCode(code string) (*models.Order, error)
	GetOrderStatus(id uint) (models.OrderStatus, error)
	ListArtistProducts(artistID uint) ([]models.Product, error)
	ListOrders(filters repository.OrderFilters, page, limit int) ([]models.Order, int64, error)
	GetOrderStatistics(from, to time.Time) (*repository.OrderStatistics, error)
	CancelStalePayments(timeout time.Duration) (int, error)
}

type orderService struct {
	db             *gorm.DB
	orderRepo      repository.OrderRepository
	productRepo    repository.ProductRepository
	commissionRepo repository.CommissionRepository
	settingRepo    repository.SettingRepository
	cache          *redis.Client
	locks          *keyedlock.KeyedMutex
	defaultRate    float64
}

func NewOrderService(
	db *gorm.DB,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	commissionRepo repository.CommissionRepository,
	settingRepo repository.SettingRepository,
	cache *redis.Client,
	locks *keyedlock.KeyedMutex,
	defaultRate float64,
) OrderService {
	return &orderService{
		db:             db,
		orderRepo:      orderRepo,
		productRepo:    productRepo,
		commissionRepo: commissionRepo,
		settingRepo:    settingRepo,
		cache:          cache,
		locks:          locks,
		defaultRate:    defaultRate,
	}
}

func (s *orderService) CreateOrder(customerID uint, items []CheckoutItem, shippingFee int64) (*models.Order, error) {
	if len(items) == 0 || shippingFee < 0 {
		return nil, models.ErrInvalidAmount
	}

	order := &models.Order{
		OrderCode:   uuid.NewString(),
		CustomerID:  customerID,
		ShippingFee: shippingFee,
		Status:      models.StatusWaitingForPayment,
	}

	var gross int64
	for _, item := range items {
		product, err := s.productRepo.GetByID(item.ProductID)
		if err != nil {
			return nil, err
		}
		subtotal := int64(item.Quantity) * product.Price
		gross += subtotal
		order.Items = append(order.Items, models.OrderItem{
			ProductID: product.ID,
			ArtistID:  product.ArtistID,
			Quantity:  item.Quantity,
			UnitPrice: product.Price,
			Subtotal:  subtotal,
		})
	}
	order.TotalAmount = gross + shippingFee

	if err := s.orderRepo.Create(order); err != nil {
		return nil, err
	}
	return order, nil
}

// RequestTransition moves one order through the fulfillment table. The whole
// read-validate-write sequence is a critical section per order, and the
// status change plus its ledger side effects commit as one transaction.
// Re-requesting the transition the order already took is a no-op returning
// the current snapshot, so client retries stay safe.
func (s *orderService) RequestTransition(orderID uint, target models.OrderStatus, role models.ActorRole, actorID uint) (*models.Order, error) {
	key := fmt.Sprintf("order:%d", orderID)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}

	if order.Status == target {
		return order, nil
	}
	if !models.CanTransition(order.Status, target) {
		return nil, models.ErrInvalidTransition
	}
	if !s.actorMayTransition(order, target, role, actorID) {
		return nil, models.ErrInvalidTransition
	}

	if transitionTouchesWallets(order.Status, target) {
		unlock := s.lockArtistWallets(order)
		defer unlock()
	}

	// Read the commission rate before opening the transaction: settingRepo is
	// bound to the outer *gorm.DB, and checking out a second connection while
	// the transaction holds one deadlocks a saturated pool.
	rate := s.commissionRate()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		return s.applyTransition(tx, order, target, rate)
	})
	if err != nil {
		return nil, err
	}

	s.refreshProjections(order)
	return order, nil
}

// transitionTouchesWallets reports whether the transition has commission
// side effects and therefore must also hold the affected artists' wallet
// locks.
func transitionTouchesWallets(from, target models.OrderStatus) bool {
	switch target {
	case models.StatusPaid, models.StatusDelivered, models.StatusRefunded:
		return true
	case models.StatusCancelled:
		return from == models.StatusPaid
	}
	return false
}

// lockArtistWallets takes the wallet lock of every artist in the order, in
// ascending id order so two orders sharing artists cannot deadlock. The
// order lock is already held; wallet operations never take order locks, so
// the ordering is acyclic.
func (s *orderService) lockArtistWallets(order *models.Order) func() {
	ids := make([]uint, 0, len(order.Items))
	for id := range settlement.SplitByArtist(order.Items) {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		s.locks.Lock(fmt.Sprintf("wallet:%d", id))
	}
	return func() {
		for i := len(ids) - 1; i >= 0; i-- {
			s.locks.Unlock(fmt.Sprintf("wallet:%d", ids[i]))
		}
	}
}

// actorMayTransition enforces the role column of the transition table.
// Shipping → delivered belongs to the owning customer alone: an artisan must
// never be able to self-certify delivery and unlock their own commission.
func (s *orderService) actorMayTransition(order *models.Order, target models.OrderStatus, role models.ActorRole, actorID uint) bool {
	switch {
	case order.Status == models.StatusWaitingForPayment && target == models.StatusPaid:
		return role == models.ActorSystem

	case order.Status == models.StatusWaitingForPayment && target == models.StatusCancelled:
		return role == models.ActorSystem ||
			(role == models.ActorCustomer && actorID == order.CustomerID)

	case order.Status == models.StatusPaid && target == models.StatusProcessing,
		order.Status == models.StatusProcessing && target == models.StatusShipping:
		return role == models.ActorArtist && orderHasArtist(order, actorID)

	case order.Status == models.StatusPaid && target == models.StatusCancelled:
		return role == models.ActorAdmin

	case order.Status == models.StatusShipping && target == models.StatusDelivered:
		return role == models.ActorCustomer && actorID == order.CustomerID

	case target == models.StatusRefunded:
		return role == models.ActorAdmin
	}
	return false
}

func orderHasArtist(order *models.Order, artistID uint) bool {
	for _, item := range order.Items {
		if item.ArtistID == artistID {
			return true
		}
	}
	return false
}

func (s *orderService) applyTransition(tx *gorm.DB, order *models.Order, target models.OrderStatus, rate float64) error {
	now := time.Now()
	from := order.Status
	order.Status = target

	switch target {
	case models.StatusPaid:
		order.PaidAt = &now
		if err := s.applyPaymentEffects(tx, order, rate); err != nil {
			return err
		}
	case models.StatusProcessing:
		order.ProcessingAt = &now
	case models.StatusShipping:
		order.ShippingAt = &now
	case models.StatusDelivered:
		order.DeliveredAt = &now
		if err := s.releaseOrderCommissions(tx, order); err != nil {
			return err
		}
	case models.StatusCancelled:
		order.CancelledAt = &now
		if from == models.StatusPaid {
			if err := s.applyRefundEffects(tx, order); err != nil {
				return err
			}
		}
	case models.StatusRefunded:
		order.RefundedAt = &now
		if err := s.applyRefundEffects(tx, order); err != nil {
			return err
		}
	}

	return s.orderRepo.WithTx(tx).Update(order)
}

// applyPaymentEffects records the capture and one commission split per
// artist whose items appear in the order.
func (s *orderService) applyPaymentEffects(tx *gorm.DB, order *models.Order, rate float64) error {
	entry := &models.Transaction{
		Reference: uuid.NewString(),
		Type:      models.TxPaymentReceived,
		Amount:    order.TotalAmount,
		Status:    models.TxStatusCompleted,
		OrderID:   &order.ID,
	}
	if err := repository.NewTransactionRepository(tx).Create(entry); err != nil {
		return err
	}

	grossByArtist := settlement.SplitByArtist(order.Items)
	for artistID, gross := range grossByArtist {
		if _, err := recordCommissionTx(tx, order.ID, artistID, gross, rate); err != nil {
			return err
		}
	}
	return nil
}

func (s *orderService) releaseOrderCommissions(tx *gorm.DB, order *models.Order) error {
	records, err := s.commissionRepo.WithTx(tx).GetByOrderID(order.ID)
	if err != nil {
		return err
	}
	for i := range records {
		if _, err := releaseCommissionTx(tx, &records[i]); err != nil {
			return err
		}
	}
	return nil
}

// applyRefundEffects returns the captured funds and voids any commission not
// yet released.
func (s *orderService) applyRefundEffects(tx *gorm.DB, order *models.Order) error {
	entry := &models.Transaction{
		Reference: uuid.NewString(),
		Type:      models.TxRefund,
		Amount:    order.TotalAmount,
		Status:    models.TxStatusCompleted,
		OrderID:   &order.ID,
	}
	if err := repository.NewTransactionRepository(tx).Create(entry); err != nil {
		return err
	}

	records, err := s.commissionRepo.WithTx(tx).GetByOrderID(order.ID)
	if err != nil {
		return err
	}
	for i := range records {
		if err := reverseCommissionTx(tx, &records[i]); err != nil {
			return err
		}
	}
	return nil
}

// commissionRate reads the admin-editable platform rate, falling back to the
// configured default when no setting row exists.
func (s *orderService) commissionRate() float64 {
	setting, err := s.settingRepo.Get(models.SettingCommissionRate)
	if err != nil {
		return s.defaultRate
	}
	rate := setting.Value
	if rate < 0 || rate > 1 {
		log.Printf("Ignoring out-of-range commission_rate setting %v", rate)
		return s.defaultRate
	}
	return rate
}

// refreshProjections runs after a transition commits: the order-status
// projection is written through with the new status, wallet summaries are
// invalidated because they are derived aggregates.
func (s *orderService) refreshProjections(order *models.Order) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetOrderStatus(order.ID, order.Status); err != nil {
		log.Printf("Warning: failed to cache order %d status: %v", order.ID, err)
	}
	for artistID := range settlement.SplitByArtist(order.Items) {
		if err := s.cache.InvalidateWalletSummary(artistID); err != nil {
			log.Printf("Warning: failed to invalidate wallet %d cache: %v", artistID, err)
		}
	}
}

func (s *orderService) GetOrderByID(id uint) (*models.Order, error) {
	return s.orderRepo.GetByID(id)
}

func (s *orderService) GetOrderByCode(code string) (*models.Order, error) {
	return s.orderRepo.GetByCode(code)
}

// GetOrderStatus serves the status projection, falling back to the store on
// a cache miss and repopulating the entry.
func (s *orderService) GetOrderStatus(id uint) (models.OrderStatus, error) {
	if s.cache != nil {
		if status, err := s.cache.GetOrderStatus(id); err == nil {
			return status, nil
		}
	}

	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return "", err
	}
	if s.cache != nil {
		if err := s.cache.SetOrderStatus(order.ID, order.Status); err != nil {
			log.Printf("Warning: failed to cache order %d status: %v", order.ID, err)
		}
	}
	return order.Status, nil
}

// ListArtistProducts lists an artist's active catalog.
func (s *orderService) ListArtistProducts(artistID uint) ([]models.Product, error) {
	return s.productRepo.GetByArtistID(artistID)
}

func (s *orderService) ListOrders(filters repository.OrderFilters, page, limit int) ([]models.Order, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.orderRepo.List(filters, (page-1)*limit, limit)
}

func (s *orderService) GetOrderStatistics(from, to time.Time) (*repository.OrderStatistics, error) {
	return s.orderRepo.GetStatistics(from, to)
}

// CancelStalePayments sweeps orders stuck in waiting_for_payment past the
// timeout through the normal cancellation path.
func (s *orderService) CancelStalePayments(timeout time.Duration) (int, error) {
	stale, err := s.orderRepo.GetStaleWaitingForPayment(time.Now().Add(-timeout))
	if err != nil {
		return 0, err
	}

	cancelled := 0
	for _, order := range stale {
		if _, err := s.RequestTransition(order.ID, models.StatusCancelled, models.ActorSystem, 0); err != nil {
			log.Printf("Warning: failed to cancel stale order %d: %v", order.ID, err)
			continue
		}
		cancelled++
	}
	return cancelled, nil
}
