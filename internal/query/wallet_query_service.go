package query

import (
	"context"

	"github.com/Bhaskar-scientist/Valut-Craft/internal/apperr"
	"github.com/Bhaskar-scientist/Valut-Craft/internal/cqrs"
	"github.com/Bhaskar-scientist/Valut-Craft/internal/models"
	"github.com/Bhaskar-scientist/Valut-Craft/internal/repository"
)

// WalletQueryService serves wallet reads from the Redis-backed read model.
type WalletQueryService struct {
	walletRepo     *repository.WalletRepository
	walletReadRepo *repository.WalletReadRepository
}

func NewWalletQueryService(
	walletRepo *repository.WalletRepository,
	walletReadRepo *repository.WalletReadRepository,
) *WalletQueryService {
	return &WalletQueryService{
		walletRepo:     walletRepo,
		walletReadRepo: walletReadRepo,
	}
}

// GetWallet returns a wallet to its owner. A wallet owned by someone else in
// the same organisation is reported as missing, not forbidden.
func (s *WalletQueryService) GetWallet(ctx context.Context, q cqrs.GetWalletQuery) (*models.WalletView, error) {
	view, err := s.walletReadRepo.GetByID(ctx, q.WalletID, q.OrgID)
	if err != nil {
		return nil, err
	}
	if view.UserID != q.RequestingUserID {
		return nil, apperr.NotFound("wallet_id", "wallet not found")
	}
	return view, nil
}

// ListWallets returns all wallets of one user within the organisation.
func (s *WalletQueryService) ListWallets(ctx context.Context, q cqrs.ListWalletsQuery) ([]models.WalletView, error) {
	return s.walletReadRepo.ListByUserID(ctx, q.UserID, q.OrgID)
}

// GetBalance returns the current balance view of any wallet in the caller's
// organisation. Balance reads are org-scoped, not owner-scoped.
func (s *WalletQueryService) GetBalance(ctx context.Context, q cqrs.GetWalletQuery) (*models.WalletView, error) {
	return s.walletReadRepo.GetByID(ctx, q.WalletID, q.OrgID)
}

// OrgSummary aggregates wallet counts and active balance for the
// organisation. Always computed from PostgreSQL in one statement.
func (s *WalletQueryService) OrgSummary(ctx context.Context, q cqrs.WalletSummaryQuery) (*models.WalletSummary, error) {
	return s.walletRepo.SummaryByOrg(ctx, q.OrgID)
}
