package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/Bhaskar-scientist/Valut-Craft/internal/apperr"
	"github.com/Bhaskar-scientist/Valut-Craft/internal/models"
)

// TransactionWriteRepository handles all state-mutating operations for
// transactions. Status flips are guarded by the expected current status, so
// a terminal row can never be rewritten.
type TransactionWriteRepository struct {
	db *sql.DB
}

func NewTransactionWriteRepository(db *sql.DB) *TransactionWriteRepository {
	return &TransactionWriteRepository{db: db}
}

// Create inserts a transaction in PENDING state inside the caller's
// transaction. A duplicate reference within the organisation is rejected by
// the partial unique index.
func (r *TransactionWriteRepository) Create(ctx context.Context, tx *sql.Tx, transaction *models.Transaction) error {
	query := `
		INSERT INTO transactions (id, org_id, sender_wallet_id, receiver_wallet_id, amount,
			status, transaction_type, reference_id, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := tx.ExecContext(ctx, query,
		transaction.ID, transaction.OrgID, transaction.SenderWalletID, transaction.ReceiverWalletID,
		transaction.Amount, transaction.Status, transaction.Type,
		nullString(transaction.ReferenceID), nullString(transaction.Description),
		transaction.CreatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return apperr.StateConflict("reference_id", "a transaction with this reference already exists")
		}
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// MarkCompleted flips a PENDING transaction to COMPLETED inside the caller's
// transaction, stamping completed_at.
func (r *TransactionWriteRepository) MarkCompleted(ctx context.Context, tx *sql.Tx, transactionID string, completedAt time.Time) error {
	query := `
		UPDATE transactions
		SET status = 'COMPLETED', completed_at = $2
		WHERE id = $1 AND status = 'PENDING'
	`
	result, err := tx.ExecContext(ctx, query, transactionID, completedAt)
	if err != nil {
		return fmt.Errorf("failed to complete transaction: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return apperr.StateConflict("status", "transaction is not pending")
	}
	return nil
}

// MarkCancelled flips a PENDING transaction to CANCELLED. The status guard
// makes concurrent cancels and settles race safely: exactly one wins.
func (r *TransactionWriteRepository) MarkCancelled(ctx context.Context, transactionID, orgID string) error {
	query := `
		UPDATE transactions
		SET status = 'CANCELLED'
		WHERE id = $1 AND org_id = $2 AND status = 'PENDING'
	`
	result, err := r.db.ExecContext(ctx, query, transactionID, orgID)
	if err != nil {
		return fmt.Errorf("failed to cancel transaction: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return apperr.StateConflict("status", "only pending transactions can be cancelled")
	}
	return nil
}

// GetByID fetches the full write model, scoped to the organisation.
func (r *TransactionWriteRepository) GetByID(ctx context.Context, transactionID, orgID string) (*models.Transaction, error) {
	query := `
		SELECT id, org_id, sender_wallet_id, receiver_wallet_id, amount,
		       status, transaction_type, reference_id, description, created_at, completed_at
		FROM transactions
		WHERE id = $1 AND org_id = $2
	`
	var transaction models.Transaction
	var reference, description sql.NullString
	var completedAt sql.NullTime

	err := r.db.QueryRowContext(ctx, query, transactionID, orgID).Scan(
		&transaction.ID, &transaction.OrgID, &transaction.SenderWalletID, &transaction.ReceiverWalletID,
		&transaction.Amount, &transaction.Status, &transaction.Type,
		&reference, &description, &transaction.CreatedAt, &completedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("transaction_id", "transaction not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	if reference.Valid {
		transaction.ReferenceID = reference.String
	}
	if description.Valid {
		transaction.Description = description.String
	}
	if completedAt.Valid {
		transaction.CompletedAt = &completedAt.Time
	}
	return &transaction, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}
