package services

import (
	"time"

	"handcraft_market/internal/models"
	"handcraft_market/internal/repository"
	"handcraft_market/internal/settlement"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Shared ledger mutations used by both the order state machine and the
// wallet service. Every helper runs inside the caller's gorm transaction so
// record creation, ledger append and flag flips commit or roll back as one
// unit.

func recordCommissionTx(tx *gorm.DB, orderID, artistID uint, gross int64, rate float64) (*models.CommissionRecord, error) {
	split, err := settlement.Compute(gross, 0, rate)
	if err != nil {
		return nil, err
	}

	record := &models.CommissionRecord{
		OrderID:            orderID,
		ArtistID:           artistID,
		GrossAmount:        gross,
		CommissionRate:     rate,
		PlatformCommission: split.PlatformCommission,
		ArtistEarning:      split.ArtistEarning,
		IsPaid:             false,
	}
	if err := repository.NewCommissionRepository(tx).Create(record); err != nil {
		return nil, err
	}

	entry := &models.Transaction{
		Reference:    uuid.NewString(),
		ArtistID:     artistID,
		Type:         models.TxCommissionPending,
		Amount:       record.ArtistEarning,
		Status:       models.TxStatusPending,
		OrderID:      &orderID,
		CommissionID: &record.ID,
	}
	if err := repository.NewTransactionRepository(tx).Create(entry); err != nil {
		return nil, err
	}

	return record, nil
}

// releaseCommissionTx flips IsPaid and appends the commission_released
// entry. Returns false without touching the ledger when the record is
// already released.
func releaseCommissionTx(tx *gorm.DB, record *models.CommissionRecord) (bool, error) {
	if record.IsPaid {
		return false, nil
	}
	if record.ReversedAt != nil {
		return false, models.ErrCommissionReversed
	}

	record.IsPaid = true
	commissions := repository.NewCommissionRepository(tx)
	if err := commissions.Update(record); err != nil {
		return false, err
	}

	transactions := repository.NewTransactionRepository(tx)
	if err := transactions.UpdateStatusByCommission(record.ID, models.TxCommissionPending, models.TxStatusCompleted); err != nil {
		return false, err
	}

	entry := &models.Transaction{
		Reference:    uuid.NewString(),
		ArtistID:     record.ArtistID,
		Type:         models.TxCommissionReleased,
		Amount:       record.ArtistEarning,
		Status:       models.TxStatusCompleted,
		OrderID:      &record.OrderID,
		CommissionID: &record.ID,
	}
	if err := transactions.Create(entry); err != nil {
		return false, err
	}

	return true, nil
}

// reverseCommissionTx voids an unreleased commission after a refund. Released
// commissions are left alone: clawing back an already-paid-out earning would
// drive the wallet negative, so reconciliation of those stays with the admin.
func reverseCommissionTx(tx *gorm.DB, record *models.CommissionRecord) error {
	if record.IsPaid || record.ReversedAt != nil {
		return nil
	}

	now := time.Now()
	record.ReversedAt = &now
	if err := repository.NewCommissionRepository(tx).Update(record); err != nil {
		return err
	}

	return repository.NewTransactionRepository(tx).
		UpdateStatusByCommission(record.ID, models.TxCommissionPending, models.TxStatusCancelled)
}
