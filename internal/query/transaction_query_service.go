package query

import (
	"context"

	"github.com/Bhaskar-scientist/Valut-Craft/internal/apperr"
	"github.com/Bhaskar-scientist/Valut-Craft/internal/cqrs"
	"github.com/Bhaskar-scientist/Valut-Craft/internal/models"
	"github.com/Bhaskar-scientist/Valut-Craft/internal/repository"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// TransactionQueryService serves transaction reads. Every query is scoped to
// the caller's organisation; wallet history additionally requires ownership.
type TransactionQueryService struct {
	readRepo       *repository.TransactionReadRepository
	walletReadRepo *repository.WalletReadRepository
	ledgerRepo     *repository.LedgerRepository
}

func NewTransactionQueryService(
	readRepo *repository.TransactionReadRepository,
	walletReadRepo *repository.WalletReadRepository,
	ledgerRepo *repository.LedgerRepository,
) *TransactionQueryService {
	return &TransactionQueryService{
		readRepo:       readRepo,
		walletReadRepo: walletReadRepo,
		ledgerRepo:     ledgerRepo,
	}
}

func (s *TransactionQueryService) GetTransaction(ctx context.Context, q cqrs.GetTransactionQuery) (*models.TransactionView, error) {
	return s.readRepo.GetByID(ctx, q.TransactionID, q.OrgID)
}

// ListTransactions returns one page of the organisation's transactions,
// newest first, plus the total matching count.
func (s *TransactionQueryService) ListTransactions(ctx context.Context, q cqrs.ListTransactionsQuery) ([]models.TransactionView, int, error) {
	page, pageSize := normalizePage(q.Page, q.PageSize)
	filter := repository.TransactionFilter{
		OrgID:    q.OrgID,
		Status:   q.Status,
		Type:     q.Type,
		WalletID: q.WalletID,
		From:     q.From,
		To:       q.To,
	}
	return s.readRepo.List(ctx, filter, page, pageSize)
}

// GetLedger returns the double-entry postings of one transaction. The
// transaction lookup doubles as the tenancy check; PENDING and CANCELLED
// transactions legitimately have no entries.
func (s *TransactionQueryService) GetLedger(ctx context.Context, q cqrs.GetLedgerQuery) ([]models.LedgerEntry, error) {
	if _, err := s.readRepo.GetByID(ctx, q.TransactionID, q.OrgID); err != nil {
		return nil, err
	}
	return s.ledgerRepo.EntriesForTransaction(ctx, q.TransactionID)
}

// Summary aggregates the filtered transaction set from one snapshot.
func (s *TransactionQueryService) Summary(ctx context.Context, q cqrs.TransactionSummaryQuery) (*models.TransactionSummary, error) {
	filter := repository.TransactionFilter{
		OrgID:  q.OrgID,
		Status: q.Status,
		Type:   q.Type,
		From:   q.From,
		To:     q.To,
	}
	return s.readRepo.Summary(ctx, filter)
}

// WalletHistory pages through the transactions a wallet took part in. Only
// the wallet's owner may read its history.
func (s *TransactionQueryService) WalletHistory(ctx context.Context, q cqrs.WalletTransactionsQuery) ([]models.TransactionView, int, error) {
	wallet, err := s.walletReadRepo.GetByID(ctx, q.WalletID, q.OrgID)
	if err != nil {
		return nil, 0, err
	}
	if wallet.UserID != q.RequestingUserID {
		return nil, 0, apperr.NotFound("wallet_id", "wallet not found")
	}

	page, pageSize := normalizePage(q.Page, q.PageSize)
	filter := repository.TransactionFilter{
		OrgID:    q.OrgID,
		WalletID: q.WalletID,
	}
	return s.readRepo.List(ctx, filter, page, pageSize)
}

// WalletLedger returns every posting touching a wallet, newest first. Like
// wallet history, the statement is only readable by the wallet's owner.
func (s *TransactionQueryService) WalletLedger(ctx context.Context, q cqrs.WalletLedgerQuery) ([]models.LedgerEntry, error) {
	wallet, err := s.walletReadRepo.GetByID(ctx, q.WalletID, q.OrgID)
	if err != nil {
		return nil, err
	}
	if wallet.UserID != q.RequestingUserID {
		return nil, apperr.NotFound("wallet_id", "wallet not found")
	}
	return s.ledgerRepo.EntriesForWallet(ctx, q.WalletID)
}

// normalizePage clamps paging parameters to sane bounds.
func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}
