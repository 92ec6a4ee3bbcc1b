package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"handcraft_market/internal/models"
	"handcraft_market/internal/redis"
	"handcraft_market/internal/repository"
	"handcraft_market/pkg/bank"
	"handcraft_market/pkg/keyedlock"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BankDetails is the payout destination an artist names on a withdraw
// request.
type BankDetails struct {
	BankName          string `json:"bank_name" binding:"required"`
	BankAccountName   string `json:"bank_account_name" binding:"required"`
	BankAccountNumber string `json:"bank_account_number" binding:"required"`
}

type WalletService interface {
	RecordCommission(orderID, artistID uint, gross, shippingFee int64, rate float64) (*models.CommissionRecord, error)
	ReleaseCommission(commissionID uint) (*models.CommissionRecord, error)
	RequestWithdrawal(artistID uint, amount int64, details BankDetails) (*models.WithdrawRequest, error)
	ApproveWithdrawal(withdrawID, adminID uint) (*models.WithdrawRequest, error)
	RejectWithdrawal(withdrawID, adminID uint, reason string) (*models.WithdrawRequest, error)
	GetWalletSummary(artistID uint) (*models.WalletSummary, error)
	ListTransactions(filters repository.TransactionFilters, page, limit int) ([]models.Transaction, int64, error)
	ListWithdrawals(status models.WithdrawStatus) ([]models.WithdrawRequest, error)
	ListArtistWithdrawals(artistID uint) ([]models.WithdrawRequest, error)
}

type walletService struct {
	db              *gorm.DB
	commissionRepo  repository.CommissionRepository
	transactionRepo repository.TransactionRepository
	withdrawRepo    repository.WithdrawRepository
	cache           *redis.Client
	bankClient      *bank.Client
	locks           *keyedlock.KeyedMutex
}

func NewWalletService(
	db *gorm.DB,
	commissionRepo repository.CommissionRepository,
	transactionRepo repository.TransactionRepository,
	withdrawRepo repository.WithdrawRepository,
	cache *redis.Client,
	bankClient *bank.Client,
	locks *keyedlock.KeyedMutex,
) WalletService {
	return &walletService{
		db:              db,
		commissionRepo:  commissionRepo,
		transactionRepo: transactionRepo,
		withdrawRepo:    withdrawRepo,
		cache:           cache,
		bankClient:      bankClient,
		locks:           locks,
	}
}

func (s *walletService) walletKey(artistID uint) string {
	return fmt.Sprintf("wallet:%d", artistID)
}

// RecordCommission computes the settlement split for one artist's slice of
// an order and opens the pending ledger entry. Recording the same pair twice
// is refused.
func (s *walletService) RecordCommission(orderID, artistID uint, gross, shippingFee int64, rate float64) (*models.CommissionRecord, error) {
	if gross < 0 || shippingFee < 0 {
		return nil, models.ErrInvalidAmount
	}

	key := s.walletKey(artistID)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	_, err := s.commissionRepo.GetByOrderAndArtist(orderID, artistID)
	if err == nil {
		return nil, models.ErrDuplicateCommission
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	var record *models.CommissionRecord
	err = s.db.Transaction(func(tx *gorm.DB) error {
		record, err = recordCommissionTx(tx, orderID, artistID, gross, rate)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidateWallet(artistID)
	return record, nil
}

// ReleaseCommission makes an accrued commission withdrawable. Calling it a
// second time fails with ErrAlreadyReleased and leaves the ledger untouched,
// so a retry can never mint a second release entry.
func (s *walletService) ReleaseCommission(commissionID uint) (*models.CommissionRecord, error) {
	record, err := s.commissionRepo.GetByID(commissionID)
	if err != nil {
		return nil, err
	}

	key := s.walletKey(record.ArtistID)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	// re-read under the lock
	record, err = s.commissionRepo.GetByID(commissionID)
	if err != nil {
		return nil, err
	}
	if record.IsPaid {
		return record, models.ErrAlreadyReleased
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		_, err := releaseCommissionTx(tx, record)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidateWallet(record.ArtistID)
	return record, nil
}

// RequestWithdrawal opens a pending payout request. The requested amount is
// reserved immediately: a second request racing the first sees a reduced
// available balance.
func (s *walletService) RequestWithdrawal(artistID uint, amount int64, details BankDetails) (*models.WithdrawRequest, error) {
	if amount <= 0 {
		return nil, models.ErrInvalidAmount
	}

	key := s.walletKey(artistID)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	summary, err := s.computeSummary(artistID)
	if err != nil {
		return nil, err
	}
	if amount > summary.AvailableBalance {
		return nil, models.ErrInsufficientBalance
	}

	request := &models.WithdrawRequest{
		ArtistID:          artistID,
		Amount:            amount,
		BankName:          details.BankName,
		BankAccountName:   details.BankAccountName,
		BankAccountNumber: details.BankAccountNumber,
		Status:            models.WithdrawPending,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.withdrawRepo.WithTx(tx).Create(request); err != nil {
			return err
		}
		entry := &models.Transaction{
			Reference:  uuid.NewString(),
			ArtistID:   artistID,
			Type:       models.TxWithdrawPending,
			Amount:     amount,
			Status:     models.TxStatusPending,
			WithdrawID: &request.ID,
		}
		return s.transactionRepo.WithTx(tx).Create(entry)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateWallet(artistID)
	return request, nil
}

// ApproveWithdrawal resolves a pending request and debits the wallet. The
// balance is recomputed under the wallet lock right before committing, so an
// approval racing a refund cannot overdraw. Approving twice fails with
// ErrAlreadyApproved instead of double-debiting.
func (s *walletService) ApproveWithdrawal(withdrawID, adminID uint) (*models.WithdrawRequest, error) {
	request, err := s.withdrawRepo.GetByID(withdrawID)
	if err != nil {
		return nil, err
	}

	key := s.walletKey(request.ArtistID)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	// re-read under the lock
	request, err = s.withdrawRepo.GetByID(withdrawID)
	if err != nil {
		return nil, err
	}
	switch request.Status {
	case models.WithdrawApproved:
		return request, models.ErrAlreadyApproved
	case models.WithdrawRejected:
		return request, models.ErrAlreadyRejected
	}

	// the request's own reservation does not count against itself
	summary, err := s.computeSummary(request.ArtistID)
	if err != nil {
		return nil, err
	}
	available := summary.AvailableBalance + request.Amount
	if request.Amount > available {
		return nil, models.ErrInsufficientBalance
	}

	now := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		request.Status = models.WithdrawApproved
		request.ResolvedAt = &now
		request.ResolvedBy = adminID
		if err := s.withdrawRepo.WithTx(tx).Update(request); err != nil {
			return err
		}

		transactions := s.transactionRepo.WithTx(tx)
		if err := transactions.UpdateStatusByWithdraw(request.ID, models.TxWithdrawPending, models.TxStatusCompleted); err != nil {
			return err
		}
		entry := &models.Transaction{
			Reference:  uuid.NewString(),
			ArtistID:   request.ArtistID,
			Type:       models.TxWithdrawCompleted,
			Amount:     request.Amount,
			Status:     models.TxStatusCompleted,
			WithdrawID: &request.ID,
		}
		return transactions.Create(entry)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateWallet(request.ArtistID)
	s.notifyPayout(request)
	return request, nil
}

// RejectWithdrawal declines a pending request. No balance effect; the artist
// can submit a new request afterwards.
func (s *walletService) RejectWithdrawal(withdrawID, adminID uint, reason string) (*models.WithdrawRequest, error) {
	request, err := s.withdrawRepo.GetByID(withdrawID)
	if err != nil {
		return nil, err
	}

	key := s.walletKey(request.ArtistID)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	request, err = s.withdrawRepo.GetByID(withdrawID)
	if err != nil {
		return nil, err
	}
	switch request.Status {
	case models.WithdrawApproved:
		return request, models.ErrAlreadyApproved
	case models.WithdrawRejected:
		return request, models.ErrAlreadyRejected
	}

	now := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		request.Status = models.WithdrawRejected
		request.RejectReason = reason
		request.ResolvedAt = &now
		request.ResolvedBy = adminID
		if err := s.withdrawRepo.WithTx(tx).Update(request); err != nil {
			return err
		}

		transactions := s.transactionRepo.WithTx(tx)
		if err := transactions.UpdateStatusByWithdraw(request.ID, models.TxWithdrawPending, models.TxStatusCancelled); err != nil {
			return err
		}
		entry := &models.Transaction{
			Reference:  uuid.NewString(),
			ArtistID:   request.ArtistID,
			Type:       models.TxWithdrawRejected,
			Amount:     request.Amount,
			Status:     models.TxStatusCompleted,
			WithdrawID: &request.ID,
		}
		return transactions.Create(entry)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateWallet(request.ArtistID)
	return request, nil
}

// GetWalletSummary returns the committed projection, cached until the next
// wallet mutation.
func (s *walletService) GetWalletSummary(artistID uint) (*models.WalletSummary, error) {
	if s.cache != nil {
		if summary, err := s.cache.GetWalletSummary(artistID); err == nil {
			return summary, nil
		}
	}

	summary, err := s.computeSummary(artistID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetWalletSummary(summary); err != nil {
			log.Printf("Warning: failed to cache wallet %d summary: %v", artistID, err)
		}
	}
	return summary, nil
}

func (s *walletService) computeSummary(artistID uint) (*models.WalletSummary, error) {
	pending, err := s.commissionRepo.SumPendingEarnings(artistID)
	if err != nil {
		return nil, err
	}
	released, err := s.commissionRepo.SumReleasedEarnings(artistID)
	if err != nil {
		return nil, err
	}
	approved, err := s.withdrawRepo.SumApproved(artistID)
	if err != nil {
		return nil, err
	}
	reserved, err := s.withdrawRepo.SumPending(artistID)
	if err != nil {
		return nil, err
	}

	return &models.WalletSummary{
		ArtistID:          artistID,
		PendingCommission: pending,
		AvailableBalance:  released - approved - reserved,
	}, nil
}

func (s *walletService) ListTransactions(filters repository.TransactionFilters, page, limit int) ([]models.Transaction, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.transactionRepo.List(filters, (page-1)*limit, limit)
}

func (s *walletService) ListWithdrawals(status models.WithdrawStatus) ([]models.WithdrawRequest, error) {
	return s.withdrawRepo.GetByStatus(status)
}

// ListArtistWithdrawals is the artist's own request history, newest first.
func (s *walletService) ListArtistWithdrawals(artistID uint) ([]models.WithdrawRequest, error) {
	return s.withdrawRepo.GetByArtistID(artistID)
}

func (s *walletService) invalidateWallet(artistID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateWalletSummary(artistID); err != nil {
		log.Printf("Warning: failed to invalidate wallet %d cache: %v", artistID, err)
	}
}

// notifyPayout tells the bank processor about an approved withdrawal. The
// approval is already committed; a failed notification is only logged and an
// admin resends it from the processor side.
func (s *walletService) notifyPayout(request *models.WithdrawRequest) {
	if s.bankClient == nil {
		return
	}
	_, err := s.bankClient.SendPayoutOrder(bank.PayoutRequest{
		Reference:         fmt.Sprintf("withdraw-%d", request.ID),
		Amount:            request.Amount,
		BankName:          request.BankName,
		BankAccountName:   request.BankAccountName,
		BankAccountNumber: request.BankAccountNumber,
	})
	if err != nil {
		log.Printf("Warning: payout notification for withdraw %d failed: %v", request.ID, err)
	}
}
