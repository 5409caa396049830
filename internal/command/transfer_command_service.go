package command

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"

	"github.com/Bhaskar-scientist/Valut-Craft/internal/apperr"
	"github.com/Bhaskar-scientist/Valut-Craft/internal/cqrs"
	"github.com/Bhaskar-scientist/Valut-Craft/internal/events"
	"github.com/Bhaskar-scientist/Valut-Craft/internal/models"
	"github.com/Bhaskar-scientist/Valut-Craft/internal/repository"
)

const (
	maxTransferAttempts = 3
	retryBackoff        = 25 * time.Millisecond
)

var transfersTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "vaultcraft_transfers_total",
		Help: "Total number of transfer commands by outcome.",
	},
	[]string{"result"},
)

// TransferCommandService executes and cancels transfers. Every transfer runs
// as a single database transaction: both wallet rows are locked, the deltas,
// the ledger pair and the status flip all commit together or not at all.
type TransferCommandService struct {
	db             *sql.DB
	walletRepo     *repository.WalletRepository
	walletReadRepo *repository.WalletReadRepository
	writeRepo      *repository.TransactionWriteRepository
	readRepo       *repository.TransactionReadRepository
	ledgerRepo     *repository.LedgerRepository
	publisher      *events.Publisher
}

func NewTransferCommandService(
	db *sql.DB,
	walletRepo *repository.WalletRepository,
	walletReadRepo *repository.WalletReadRepository,
	writeRepo *repository.TransactionWriteRepository,
	readRepo *repository.TransactionReadRepository,
	ledgerRepo *repository.LedgerRepository,
	publisher *events.Publisher,
) *TransferCommandService {
	return &TransferCommandService{
		db:             db,
		walletRepo:     walletRepo,
		walletReadRepo: walletReadRepo,
		writeRepo:      writeRepo,
		readRepo:       readRepo,
		ledgerRepo:     ledgerRepo,
		publisher:      publisher,
	}
}

// transferResult carries the committed transaction together with the wallet
// rows as they stand after the commit, so post-commit work never reads back
// from the store.
type transferResult struct {
	txn      *models.Transaction
	sender   *models.Wallet
	receiver *models.Wallet
}

// ExecuteTransfer validates and settles a transfer. INTERNAL_TRANSFER,
// DEPOSIT and WITHDRAWAL settle synchronously; EXTERNAL_TRANSFER is recorded
// PENDING with no balance effect and stays cancellable until settled out of
// band. Serialization failures and deadlocks are retried a bounded number of
// times; business rejections are returned immediately.
func (s *TransferCommandService) ExecuteTransfer(ctx context.Context, cmd cqrs.ExecuteTransferCommand) (*models.Transaction, error) {
	if cmd.Type == "" {
		cmd.Type = models.TransactionTypeInternalTransfer
	}
	if err := validateTransfer(cmd); err != nil {
		transfersTotal.WithLabelValues("failed").Inc()
		return nil, err
	}

	var res *transferResult
	var err error
	for attempt := 1; attempt <= maxTransferAttempts; attempt++ {
		res, err = s.executeOnce(ctx, cmd)
		if err == nil || !isRetryable(err) {
			break
		}
		logrus.WithFields(logrus.Fields{
			"attempt":      attempt,
			"senderWallet": cmd.SenderWalletID,
		}).Warn("Retrying transfer after serialization conflict")
		time.Sleep(retryBackoff * time.Duration(attempt))
	}
	if err != nil {
		transfersTotal.WithLabelValues("failed").Inc()
		if isRetryable(err) {
			return nil, apperr.ConcurrencyConflict("transfer aborted after repeated conflicts", err)
		}
		return nil, err
	}

	s.afterTransfer(ctx, cmd, res)
	transfersTotal.WithLabelValues(strings.ToLower(string(res.txn.Status))).Inc()
	return res.txn, nil
}

// executeOnce runs one attempt of the atomic unit. Any failure rolls the
// whole unit back, so a failed attempt leaves no transaction row behind.
func (s *TransferCommandService) executeOnce(ctx context.Context, cmd cqrs.ExecuteTransferCommand) (*transferResult, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transfer: %w", err)
	}
	defer tx.Rollback()

	sender, receiver, err := s.lockWallets(ctx, tx, cmd)
	if err != nil {
		return nil, err
	}
	if sender.Status != models.WalletStatusActive {
		return nil, apperr.StateConflict("sender_wallet_id", "sender wallet is not active")
	}
	if receiver.Status != models.WalletStatusActive {
		return nil, apperr.StateConflict("receiver_wallet_id", "receiver wallet is not active")
	}
	if sender.Balance.LessThan(cmd.Amount) {
		return nil, apperr.InsufficientFunds("insufficient funds")
	}

	now := time.Now().UTC()
	txn := &models.Transaction{
		ID:               uuid.NewString(),
		OrgID:            cmd.OrgID,
		SenderWalletID:   sender.ID,
		ReceiverWalletID: receiver.ID,
		Amount:           cmd.Amount,
		Status:           models.TransactionStatusPending,
		Type:             cmd.Type,
		ReferenceID:      cmd.ReferenceID,
		Description:      cmd.Description,
		CreatedAt:        now,
	}
	if err := s.writeRepo.Create(ctx, tx, txn); err != nil {
		return nil, err
	}

	if cmd.Type == models.TransactionTypeExternalTransfer {
		// Recorded PENDING only. Settlement happens out of band, so no
		// deltas and no ledger entries until then.
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("failed to commit transfer: %w", err)
		}
		return &transferResult{txn: txn, sender: sender, receiver: receiver}, nil
	}

	senderBalance, err := s.walletRepo.ApplyDelta(ctx, tx, sender.ID, cmd.Amount.Neg())
	if err != nil {
		return nil, err
	}
	receiverBalance, err := s.walletRepo.ApplyDelta(ctx, tx, receiver.ID, cmd.Amount)
	if err != nil {
		return nil, err
	}
	if _, _, err := s.ledgerRepo.AppendPair(ctx, tx, txn.ID, sender.ID, receiver.ID, cmd.Amount, now); err != nil {
		return nil, err
	}
	completedAt := time.Now().UTC()
	if err := s.writeRepo.MarkCompleted(ctx, tx, txn.ID, completedAt); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transfer: %w", err)
	}

	txn.Status = models.TransactionStatusCompleted
	txn.CompletedAt = &completedAt
	sender.Balance = senderBalance
	receiver.Balance = receiverBalance
	return &transferResult{txn: txn, sender: sender, receiver: receiver}, nil
}

// lockWallets acquires row locks on both wallets in ascending wallet-id
// order so concurrent transfers over the same pair cannot deadlock,
// then hands them back in sender/receiver order.
func (s *TransferCommandService) lockWallets(ctx context.Context, tx *sql.Tx, cmd cqrs.ExecuteTransferCommand) (*models.Wallet, *models.Wallet, error) {
	firstID, secondID := cmd.SenderWalletID, cmd.ReceiverWalletID
	if secondID < firstID {
		firstID, secondID = secondID, firstID
	}
	first, err := s.walletRepo.GetForUpdate(ctx, tx, firstID, cmd.OrgID)
	if err != nil {
		return nil, nil, relabelWalletErr(err, firstID, cmd)
	}
	second, err := s.walletRepo.GetForUpdate(ctx, tx, secondID, cmd.OrgID)
	if err != nil {
		return nil, nil, relabelWalletErr(err, secondID, cmd)
	}
	if first.ID == cmd.SenderWalletID {
		return first, second, nil
	}
	return second, first, nil
}

// relabelWalletErr names which side of the transfer a lookup failed for,
// since locked reads run in id order rather than role order.
func relabelWalletErr(err error, walletID string, cmd cqrs.ExecuteTransferCommand) error {
	if apperr.KindOf(err) != apperr.KindNotFound {
		return err
	}
	if walletID == cmd.SenderWalletID {
		return apperr.NotFound("sender_wallet_id", "sender wallet not found")
	}
	return apperr.NotFound("receiver_wallet_id", "receiver wallet not found")
}

// afterTransfer does the non-transactional follow-up: cache maintenance,
// event publication, audit log. None of it can fail the committed transfer.
func (s *TransferCommandService) afterTransfer(ctx context.Context, cmd cqrs.ExecuteTransferCommand, res *transferResult) {
	s.readRepo.CacheTransactionView(ctx, cmd.OrgID, txToView(res.txn))
	s.walletReadRepo.InvalidateWalletView(ctx, cmd.OrgID, res.sender.ID)
	s.walletReadRepo.InvalidateWalletView(ctx, cmd.OrgID, res.receiver.ID)

	if res.txn.Status == models.TransactionStatusCompleted {
		if err := s.publisher.Publish(ctx, events.TransactionEventsStream, events.TransferCompleted, events.TransferCompletedEvent{
			TransactionID:    res.txn.ID,
			OrgID:            cmd.OrgID,
			SenderWalletID:   res.sender.ID,
			ReceiverWalletID: res.receiver.ID,
			SenderUserID:     res.sender.UserID,
			ReceiverUserID:   res.receiver.UserID,
			Amount:           res.txn.Amount,
			SenderBalance:    res.sender.Balance,
			ReceiverBalance:  res.receiver.Balance,
			Currency:         res.sender.Currency,
		}); err != nil {
			logrus.WithError(err).Warn("Failed to publish transfer.completed event")
		}
	}

	logrus.WithFields(logrus.Fields{
		"transactionId":  res.txn.ID,
		"orgId":          cmd.OrgID,
		"senderWallet":   res.sender.ID,
		"receiverWallet": res.receiver.ID,
		"amount":         res.txn.Amount.StringFixed(2),
		"type":           string(res.txn.Type),
		"status":         string(res.txn.Status),
	}).Info("Transfer recorded")
}

// CancelTransaction cancels a PENDING transaction. Only external transfers
// are ever observable as PENDING, so a cancel never has balance or ledger
// effects to unwind.
func (s *TransferCommandService) CancelTransaction(ctx context.Context, cmd cqrs.CancelTransactionCommand) (*models.Transaction, error) {
	txn, err := s.writeRepo.GetByID(ctx, cmd.TransactionID, cmd.OrgID)
	if err != nil {
		return nil, err
	}
	if txn.Status != models.TransactionStatusPending {
		return nil, apperr.StateConflict("status", "only pending transactions can be cancelled")
	}
	if err := s.writeRepo.MarkCancelled(ctx, cmd.TransactionID, cmd.OrgID); err != nil {
		return nil, err
	}
	txn.Status = models.TransactionStatusCancelled

	s.readRepo.InvalidateTransactionView(ctx, cmd.OrgID, txn.ID)
	if err := s.publisher.Publish(ctx, events.TransactionEventsStream, events.TransactionCancelled, events.TransactionCancelledEvent{
		TransactionID:    txn.ID,
		OrgID:            cmd.OrgID,
		SenderWalletID:   txn.SenderWalletID,
		ReceiverWalletID: txn.ReceiverWalletID,
	}); err != nil {
		logrus.WithError(err).Warn("Failed to publish transaction.cancelled event")
	}
	return txn, nil
}

// validateTransfer rejects commands that can never settle, before any
// database work.
func validateTransfer(cmd cqrs.ExecuteTransferCommand) error {
	if cmd.SenderWalletID == cmd.ReceiverWalletID {
		return apperr.Validation("sender_wallet_id", "cannot transfer to the same wallet")
	}
	if !cmd.Amount.IsPositive() {
		return apperr.Validation("amount", "amount must be greater than zero")
	}
	if cmd.Amount.Exponent() < -2 {
		return apperr.Validation("amount", "amount must have at most two decimal places")
	}
	if !cmd.Type.Valid() {
		return apperr.Validation("type", "unknown transaction type")
	}
	return nil
}

// isRetryable reports whether err is a postgres serialization failure or
// deadlock, the only error classes the engine retries.
func isRetryable(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "40001" || pqErr.Code == "40P01"
	}
	return false
}

// txToView converts the write model to a read view model.
func txToView(t *models.Transaction) *models.TransactionView {
	return &models.TransactionView{
		ID:               t.ID,
		SenderWalletID:   t.SenderWalletID,
		ReceiverWalletID: t.ReceiverWalletID,
		Amount:           t.Amount,
		Status:           t.Status,
		Type:             t.Type,
		ReferenceID:      t.ReferenceID,
		Description:      t.Description,
		CreatedAt:        t.CreatedAt,
		CompletedAt:      t.CompletedAt,
	}
}
