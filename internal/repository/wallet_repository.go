package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/Bhaskar-scientist/Valut-Craft/internal/apperr"
	"github.com/Bhaskar-scientist/Valut-Craft/internal/models"
)

// WalletRepository handles all state-mutating operations for wallets.
// It is the only code path that writes wallet balances: the transfer engine
// locks rows through GetForUpdate and moves value through ApplyDelta, always
// inside one transaction.
type WalletRepository struct {
	db *sql.DB
}

func NewWalletRepository(db *sql.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

// Create inserts a wallet. At most one ACTIVE PRIMARY wallet may exist per
// user; the pre-check gives a clean error and the partial unique index makes
// the check-then-insert race lose cleanly with the same error.
func (r *WalletRepository) Create(ctx context.Context, wallet *models.Wallet) error {
	if wallet.Type == models.WalletTypePrimary && wallet.Status == models.WalletStatusActive {
		var exists bool
		err := r.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM wallets WHERE user_id = $1 AND type = 'PRIMARY' AND status = 'ACTIVE')`,
			wallet.UserID,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check for primary wallet: %w", err)
		}
		if exists {
			return apperr.StateConflict("type", "user already has an active primary wallet")
		}
	}

	query := `
		INSERT INTO wallets (id, user_id, org_id, balance, currency, type, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		wallet.ID, wallet.UserID, wallet.OrgID, wallet.Balance, wallet.Currency,
		wallet.Type, wallet.Status, wallet.CreatedAt, wallet.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return apperr.StateConflict("type", "user already has an active primary wallet")
		}
		return fmt.Errorf("failed to create wallet: %w", err)
	}
	return nil
}

// Get fetches the full write model, scoped to the organisation. A wallet
// belonging to another organisation is indistinguishable from a missing one.
func (r *WalletRepository) Get(ctx context.Context, walletID, orgID string) (*models.Wallet, error) {
	query := `
		SELECT id, user_id, org_id, balance, currency, type, status, created_at, updated_at
		FROM wallets
		WHERE id = $1 AND org_id = $2
	`
	var wallet models.Wallet
	err := r.db.QueryRowContext(ctx, query, walletID, orgID).Scan(
		&wallet.ID, &wallet.UserID, &wallet.OrgID, &wallet.Balance, &wallet.Currency,
		&wallet.Type, &wallet.Status, &wallet.CreatedAt, &wallet.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("wallet_id", "wallet not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return &wallet, nil
}

// GetForUpdate locks the wallet row for the duration of tx. Callers that
// lock two wallets must acquire the locks in ascending wallet ID order.
func (r *WalletRepository) GetForUpdate(ctx context.Context, tx *sql.Tx, walletID, orgID string) (*models.Wallet, error) {
	query := `
		SELECT id, user_id, org_id, balance, currency, type, status, created_at, updated_at
		FROM wallets
		WHERE id = $1 AND org_id = $2
		FOR UPDATE
	`
	var wallet models.Wallet
	err := tx.QueryRowContext(ctx, query, walletID, orgID).Scan(
		&wallet.ID, &wallet.UserID, &wallet.OrgID, &wallet.Balance, &wallet.Currency,
		&wallet.Type, &wallet.Status, &wallet.CreatedAt, &wallet.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("wallet_id", "wallet not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock wallet: %w", err)
	}
	return &wallet, nil
}

// ApplyDelta adds delta (negative for a debit) to a locked wallet's balance
// and returns the new balance. The predicate refuses any update that would
// take the balance below zero, backing up the engine's funds pre-check.
func (r *WalletRepository) ApplyDelta(ctx context.Context, tx *sql.Tx, walletID string, delta decimal.Decimal) (decimal.Decimal, error) {
	query := `
		UPDATE wallets
		SET balance = balance + $2, updated_at = NOW()
		WHERE id = $1 AND balance + $2 >= 0
		RETURNING balance
	`
	var newBalance decimal.Decimal
	err := tx.QueryRowContext(ctx, query, walletID, delta).Scan(&newBalance)
	if err == sql.ErrNoRows {
		return decimal.Zero, apperr.InsufficientFunds("insufficient funds")
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to apply balance delta: %w", err)
	}
	return newBalance, nil
}

// UpdateStatus flips a wallet's status, guarded by the expected current
// status so concurrent transitions lose instead of overwriting each other.
func (r *WalletRepository) UpdateStatus(ctx context.Context, walletID string, from, to models.WalletStatus) error {
	query := `
		UPDATE wallets
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`
	result, err := r.db.ExecContext(ctx, query, walletID, from, to)
	if err != nil {
		return fmt.Errorf("failed to update wallet status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return apperr.StateConflict("status", "wallet status changed concurrently")
	}
	return nil
}

// SummaryByOrg aggregates wallet counts and total balance in one statement.
// The balance total covers ACTIVE wallets only.
func (r *WalletRepository) SummaryByOrg(ctx context.Context, orgID string) (*models.WalletSummary, error) {
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'ACTIVE'),
		       COALESCE(SUM(balance) FILTER (WHERE status = 'ACTIVE'), 0)
		FROM wallets
		WHERE org_id = $1
	`
	summary := models.WalletSummary{Currency: "INR"}
	err := r.db.QueryRowContext(ctx, query, orgID).Scan(
		&summary.TotalWallets, &summary.ActiveWallets, &summary.TotalBalance,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to summarise wallets: %w", err)
	}
	return &summary, nil
}
