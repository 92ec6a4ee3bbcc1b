package services_test

import (
	"errors"
	"testing"
	"time"

	"handcraft_market/internal/models"
	"handcraft_market/internal/repository"
	"handcraft_market/internal/services"
)

var testBank = services.BankDetails{
	BankName:          "Vietcombank",
	BankAccountName:   "NGUYEN THI MAI",
	BankAccountNumber: "0071000123456",
}

func TestRecordCommissionDuplicate(t *testing.T) {
	f := newFixture(t)
	if _, err := f.wallet.RecordCommission(1, artistID, 2_000_000, 50_000, 0.10); err != nil {
		t.Fatal("record commission:", err)
	}
	_, err := f.wallet.RecordCommission(1, artistID, 2_000_000, 50_000, 0.10)
	if !errors.Is(err, models.ErrDuplicateCommission) {
		t.Fatal("Expected ErrDuplicateCommission, got", err)
	}
}

func TestRecordCommissionInvalidInput(t *testing.T) {
	f := newFixture(t)
	if _, err := f.wallet.RecordCommission(1, artistID, -1, 0, 0.10); !errors.Is(err, models.ErrInvalidAmount) {
		t.Error("Expected ErrInvalidAmount for negative gross, got", err)
	}
	if _, err := f.wallet.RecordCommission(1, artistID, 100, 0, 1.5); !errors.Is(err, models.ErrInvalidAmount) {
		t.Error("Expected ErrInvalidAmount for rate > 1, got", err)
	}
}

func TestReleaseCommissionTwice(t *testing.T) {
	f := newFixture(t)
	record, err := f.wallet.RecordCommission(1, artistID, 2_000_000, 0, 0.10)
	if err != nil {
		t.Fatal("record commission:", err)
	}

	released, err := f.wallet.ReleaseCommission(record.ID)
	if err != nil {
		t.Fatal("release:", err)
	}
	if !released.IsPaid {
		t.Fatal("Expected IsPaid true after release")
	}

	again, err := f.wallet.ReleaseCommission(record.ID)
	if !errors.Is(err, models.ErrAlreadyReleased) {
		t.Fatal("Expected ErrAlreadyReleased, got", err)
	}
	if !again.IsPaid {
		t.Error("Expected IsPaid to stay true")
	}

	n, err := f.transactionRepo.CountByCommissionAndType(record.ID, models.TxCommissionReleased)
	if err != nil {
		t.Fatal("count:", err)
	}
	if n != 1 {
		t.Error("Expected exactly 1 commission_released transaction, got", n)
	}

	entry, err := f.transactionRepo.GetByCommissionAndType(record.ID, models.TxCommissionReleased)
	if err != nil {
		t.Fatal("get release entry:", err)
	}
	if entry.Amount != released.ArtistEarning || entry.Status != models.TxStatusCompleted {
		t.Errorf("release entry mismatch: amount %d status %s", entry.Amount, entry.Status)
	}
}

func TestReleaseReversedCommissionFails(t *testing.T) {
	f := newFixture(t)
	record, err := f.wallet.RecordCommission(1, artistID, 500_000, 0, 0.10)
	if err != nil {
		t.Fatal("record commission:", err)
	}
	now := time.Now()
	record.ReversedAt = &now
	if err := f.commissionRepo.Update(record); err != nil {
		t.Fatal("reverse commission:", err)
	}

	_, err = f.wallet.ReleaseCommission(record.ID)
	if !errors.Is(err, models.ErrCommissionReversed) {
		t.Fatal("Expected ErrCommissionReversed, got", err)
	}
}

func TestWithdrawalReservation(t *testing.T) {
	f := newFixture(t)
	record, err := f.wallet.RecordCommission(1, artistID, 2_000_000, 50_000, 0.10)
	if err != nil {
		t.Fatal("record commission:", err)
	}

	// nothing released yet
	if _, err := f.wallet.RequestWithdrawal(artistID, 1, testBank); !errors.Is(err, models.ErrInsufficientBalance) {
		t.Fatal("Expected ErrInsufficientBalance before release, got", err)
	}

	if _, err := f.wallet.ReleaseCommission(record.ID); err != nil {
		t.Fatal("release:", err)
	}

	summary, err := f.wallet.GetWalletSummary(artistID)
	if err != nil {
		t.Fatal("summary:", err)
	}
	if summary.AvailableBalance != 1_800_000 {
		t.Fatal("Expected available 1800000, got", summary.AvailableBalance)
	}

	request, err := f.wallet.RequestWithdrawal(artistID, 1_800_000, testBank)
	if err != nil {
		t.Fatal("request withdrawal:", err)
	}
	if request.Status != models.WithdrawPending {
		t.Error("Expected pending request, got", request.Status)
	}

	// the pending request reserves the full balance
	if _, err := f.wallet.RequestWithdrawal(artistID, 1, testBank); !errors.Is(err, models.ErrInsufficientBalance) {
		t.Fatal("Expected ErrInsufficientBalance while request pending, got", err)
	}
}

func TestApproveWithdrawal(t *testing.T) {
	f := newFixture(t)
	record, _ := f.wallet.RecordCommission(1, artistID, 1_000_000, 0, 0.10)
	if _, err := f.wallet.ReleaseCommission(record.ID); err != nil {
		t.Fatal("release:", err)
	}
	request, err := f.wallet.RequestWithdrawal(artistID, 900_000, testBank)
	if err != nil {
		t.Fatal("request withdrawal:", err)
	}

	approved, err := f.wallet.ApproveWithdrawal(request.ID, adminID)
	if err != nil {
		t.Fatal("approve:", err)
	}
	if approved.Status != models.WithdrawApproved {
		t.Error("Expected approved, got", approved.Status)
	}
	if approved.ResolvedAt == nil || approved.ResolvedBy != adminID {
		t.Error("Expected resolution metadata on the request")
	}

	summary, err := f.wallet.GetWalletSummary(artistID)
	if err != nil {
		t.Fatal("summary:", err)
	}
	if summary.AvailableBalance != 0 {
		t.Error("Expected available 0 after approval, got", summary.AvailableBalance)
	}

	if n := f.countTransactions(t, repository.TransactionFilters{ArtistID: artistID, Type: models.TxWithdrawCompleted}); n != 1 {
		t.Error("Expected 1 withdraw_completed transaction, got", n)
	}

	// irreversible: a second approval must not double-debit
	if _, err := f.wallet.ApproveWithdrawal(request.ID, adminID); !errors.Is(err, models.ErrAlreadyApproved) {
		t.Fatal("Expected ErrAlreadyApproved, got", err)
	}
	if _, err := f.wallet.RejectWithdrawal(request.ID, adminID, "late"); !errors.Is(err, models.ErrAlreadyApproved) {
		t.Fatal("Expected ErrAlreadyApproved on reject-after-approve, got", err)
	}
	if n := f.countTransactions(t, repository.TransactionFilters{ArtistID: artistID, Type: models.TxWithdrawCompleted}); n != 1 {
		t.Error("Expected still 1 withdraw_completed transaction, got", n)
	}
}

func TestRejectWithdrawalRestoresBalance(t *testing.T) {
	f := newFixture(t)
	record, _ := f.wallet.RecordCommission(1, artistID, 1_000_000, 0, 0.10)
	if _, err := f.wallet.ReleaseCommission(record.ID); err != nil {
		t.Fatal("release:", err)
	}
	request, err := f.wallet.RequestWithdrawal(artistID, 900_000, testBank)
	if err != nil {
		t.Fatal("request withdrawal:", err)
	}

	rejected, err := f.wallet.RejectWithdrawal(request.ID, adminID, "account name mismatch")
	if err != nil {
		t.Fatal("reject:", err)
	}
	if rejected.Status != models.WithdrawRejected {
		t.Error("Expected rejected, got", rejected.Status)
	}
	if rejected.RejectReason != "account name mismatch" {
		t.Error("Expected reason stored, got", rejected.RejectReason)
	}

	summary, err := f.wallet.GetWalletSummary(artistID)
	if err != nil {
		t.Fatal("summary:", err)
	}
	if summary.AvailableBalance != 900_000 {
		t.Error("Expected reservation returned, got", summary.AvailableBalance)
	}

	if _, err := f.wallet.RejectWithdrawal(request.ID, adminID, "again"); !errors.Is(err, models.ErrAlreadyRejected) {
		t.Fatal("Expected ErrAlreadyRejected, got", err)
	}

	// the artist can come back with a new request
	if _, err := f.wallet.RequestWithdrawal(artistID, 900_000, testBank); err != nil {
		t.Fatal("new request after rejection:", err)
	}
}

func TestBalanceNeverNegative(t *testing.T) {
	f := newFixture(t)

	check := func(step string) {
		summary, err := f.wallet.GetWalletSummary(artistID)
		if err != nil {
			t.Fatalf("%s: summary: %v", step, err)
		}
		if summary.AvailableBalance < 0 {
			t.Fatalf("%s: available balance went negative: %d", step, summary.AvailableBalance)
		}
		if summary.PendingCommission < 0 {
			t.Fatalf("%s: pending commission went negative: %d", step, summary.PendingCommission)
		}
	}

	r1, _ := f.wallet.RecordCommission(1, artistID, 300_000, 0, 0.10)
	check("record 1")
	r2, _ := f.wallet.RecordCommission(2, artistID, 500_000, 0, 0.10)
	check("record 2")
	f.wallet.ReleaseCommission(r1.ID)
	check("release 1")
	w1, err := f.wallet.RequestWithdrawal(artistID, 270_000, testBank)
	if err != nil {
		t.Fatal("request:", err)
	}
	check("request 1")
	f.wallet.ApproveWithdrawal(w1.ID, adminID)
	check("approve 1")
	f.wallet.ReleaseCommission(r2.ID)
	check("release 2")
	if _, err := f.wallet.RequestWithdrawal(artistID, 500_000, testBank); !errors.Is(err, models.ErrInsufficientBalance) {
		t.Fatal("Expected ErrInsufficientBalance, got", err)
	}
	check("over-request rejected")
}

// TestDeliveredUnlocksWithdrawal runs the worked example end to end: payment,
// fulfillment, customer confirmation, then a full withdrawal.
func TestDeliveredUnlocksWithdrawal(t *testing.T) {
	f := newFixture(t)
	order := f.createOrder(t)

	f.transition(t, order.ID, models.StatusPaid, models.ActorSystem, 0)

	summary, _ := f.wallet.GetWalletSummary(artistID)
	if summary.PendingCommission != 1_800_000 || summary.AvailableBalance != 0 {
		t.Fatalf("after payment: expected pending 1800000 / available 0, got %d / %d",
			summary.PendingCommission, summary.AvailableBalance)
	}

	f.transition(t, order.ID, models.StatusProcessing, models.ActorArtist, artistID)
	f.transition(t, order.ID, models.StatusShipping, models.ActorArtist, artistID)
	f.transition(t, order.ID, models.StatusDelivered, models.ActorCustomer, customerID)

	summary, _ = f.wallet.GetWalletSummary(artistID)
	if summary.PendingCommission != 0 || summary.AvailableBalance != 1_800_000 {
		t.Fatalf("after delivery: expected pending 0 / available 1800000, got %d / %d",
			summary.PendingCommission, summary.AvailableBalance)
	}

	if _, err := f.wallet.RequestWithdrawal(artistID, 1_800_000, testBank); err != nil {
		t.Fatal("withdrawal of full balance:", err)
	}
	if _, err := f.wallet.RequestWithdrawal(artistID, 1, testBank); !errors.Is(err, models.ErrInsufficientBalance) {
		t.Fatal("Expected ErrInsufficientBalance for second request, got", err)
	}
}

func TestListArtistWithdrawals(t *testing.T) {
	f := newFixture(t)
	record, _ := f.wallet.RecordCommission(1, artistID, 1_000_000, 0, 0.10)
	if _, err := f.wallet.ReleaseCommission(record.ID); err != nil {
		t.Fatal("release:", err)
	}

	first, err := f.wallet.RequestWithdrawal(artistID, 400_000, testBank)
	if err != nil {
		t.Fatal("first request:", err)
	}
	if _, err := f.wallet.RejectWithdrawal(first.ID, adminID, "wrong account"); err != nil {
		t.Fatal("reject:", err)
	}
	if _, err := f.wallet.RequestWithdrawal(artistID, 500_000, testBank); err != nil {
		t.Fatal("second request:", err)
	}

	history, err := f.wallet.ListArtistWithdrawals(artistID)
	if err != nil {
		t.Fatal("history:", err)
	}
	if len(history) != 2 {
		t.Fatal("Expected 2 requests in the history, got", len(history))
	}
	for _, request := range history {
		if request.ArtistID != artistID {
			t.Error("history leaked request of artist", request.ArtistID)
		}
	}

	other, err := f.wallet.ListArtistWithdrawals(artist2ID)
	if err != nil {
		t.Fatal("other history:", err)
	}
	if len(other) != 0 {
		t.Error("Expected empty history, got", len(other))
	}
}

func TestListTransactionsFilters(t *testing.T) {
	f := newFixture(t)
	record, _ := f.wallet.RecordCommission(1, artistID, 1_000_000, 0, 0.10)
	f.wallet.ReleaseCommission(record.ID)
	f.wallet.RecordCommission(2, artist2ID, 400_000, 0, 0.10)

	txs, total, err := f.wallet.ListTransactions(repository.TransactionFilters{ArtistID: artistID}, 1, 10)
	if err != nil {
		t.Fatal("list:", err)
	}
	if total != 2 {
		t.Error("Expected 2 transactions for artist, got", total)
	}
	for _, tx := range txs {
		if tx.ArtistID != artistID {
			t.Error("filter leaked transaction for artist", tx.ArtistID)
		}
	}

	_, total, err = f.wallet.ListTransactions(repository.TransactionFilters{Type: models.TxCommissionReleased}, 1, 10)
	if err != nil {
		t.Fatal("list by type:", err)
	}
	if total != 1 {
		t.Error("Expected 1 released transaction, got", total)
	}
}
