package command

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Bhaskar-scientist/Valut-Craft/internal/apperr"
	"github.com/Bhaskar-scientist/Valut-Craft/internal/cqrs"
	"github.com/Bhaskar-scientist/Valut-Craft/internal/events"
	"github.com/Bhaskar-scientist/Valut-Craft/internal/models"
	"github.com/Bhaskar-scientist/Valut-Craft/internal/repository"
)

// WalletCommandService writes wallet state and keeps the read model in sync.
type WalletCommandService struct {
	walletRepo     *repository.WalletRepository
	walletReadRepo *repository.WalletReadRepository
	publisher      *events.Publisher
}

func NewWalletCommandService(
	walletRepo *repository.WalletRepository,
	walletReadRepo *repository.WalletReadRepository,
	publisher *events.Publisher,
) *WalletCommandService {
	return &WalletCommandService{
		walletRepo:     walletRepo,
		walletReadRepo: walletReadRepo,
		publisher:      publisher,
	}
}

// CreateWallet opens a wallet for the requesting user. New wallets start
// ACTIVE with a zero balance; only transfers may move the balance afterwards.
func (s *WalletCommandService) CreateWallet(ctx context.Context, cmd cqrs.CreateWalletCommand) (*models.Wallet, error) {
	if cmd.Type == "" {
		cmd.Type = models.WalletTypePrimary
	}
	if !cmd.Type.Valid() {
		return nil, apperr.Validation("type", "unknown wallet type")
	}
	if cmd.Currency == "" {
		cmd.Currency = "INR"
	}

	now := time.Now().UTC()
	wallet := &models.Wallet{
		ID:        uuid.NewString(),
		UserID:    cmd.UserID,
		OrgID:     cmd.OrgID,
		Balance:   decimal.Zero,
		Currency:  cmd.Currency,
		Type:      cmd.Type,
		Status:    models.WalletStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.walletRepo.Create(ctx, wallet); err != nil {
		return nil, err
	}

	s.walletReadRepo.CacheWalletView(ctx, cmd.OrgID, walletToView(wallet))
	if err := s.publisher.Publish(ctx, events.WalletEventsStream, events.WalletCreated, events.WalletCreatedEvent{
		WalletID: wallet.ID,
		OrgID:    wallet.OrgID,
		UserID:   wallet.UserID,
		Type:     string(wallet.Type),
		Currency: wallet.Currency,
	}); err != nil {
		logrus.WithError(err).Warn("Failed to publish wallet.created event")
	}
	return wallet, nil
}

// UpdateWalletStatus moves a wallet through its status machine. Only the
// owning user may change a wallet's status, and CLOSED is terminal.
func (s *WalletCommandService) UpdateWalletStatus(ctx context.Context, cmd cqrs.UpdateWalletStatusCommand) (*models.Wallet, error) {
	if !cmd.Status.Valid() {
		return nil, apperr.Validation("status", "unknown wallet status")
	}

	wallet, err := s.walletRepo.Get(ctx, cmd.WalletID, cmd.OrgID)
	if err != nil {
		return nil, err
	}
	if wallet.UserID != cmd.UserID {
		return nil, apperr.NotFound("wallet_id", "wallet not found")
	}
	if !wallet.Status.CanTransitionTo(cmd.Status) {
		return nil, apperr.StateConflict("status",
			fmt.Sprintf("cannot change wallet status from %s to %s", wallet.Status, cmd.Status))
	}
	if err := s.walletRepo.UpdateStatus(ctx, wallet.ID, wallet.Status, cmd.Status); err != nil {
		return nil, err
	}

	oldStatus := wallet.Status
	wallet.Status = cmd.Status
	wallet.UpdatedAt = time.Now().UTC()

	s.walletReadRepo.InvalidateWalletView(ctx, cmd.OrgID, wallet.ID)
	if err := s.publisher.Publish(ctx, events.WalletEventsStream, events.WalletStatusChanged, events.WalletStatusChangedEvent{
		WalletID:  wallet.ID,
		OrgID:     wallet.OrgID,
		UserID:    wallet.UserID,
		OldStatus: string(oldStatus),
		NewStatus: string(wallet.Status),
	}); err != nil {
		logrus.WithError(err).Warn("Failed to publish wallet.status_changed event")
	}
	return wallet, nil
}

// walletToView converts the write model to the read view model.
func walletToView(w *models.Wallet) *models.WalletView {
	return &models.WalletView{
		ID:        w.ID,
		UserID:    w.UserID,
		Balance:   w.Balance,
		Currency:  w.Currency,
		Type:      w.Type,
		Status:    w.Status,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}
