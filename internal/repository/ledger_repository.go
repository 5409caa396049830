package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Bhaskar-scientist/Valut-Craft/internal/models"
)

// LedgerRepository appends and reads double-entry ledger postings. The
// package exposes no update or delete statements for ledger entries: once
// written, an entry is permanent.
type LedgerRepository struct {
	db *sql.DB
}

func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// pairFor builds the two postings for a settled transfer: a DEBIT carrying
// the negated amount against the sender and a CREDIT carrying the amount
// against the receiver. The pair sums to zero by construction.
func pairFor(transactionID, senderWalletID, receiverWalletID string, amount decimal.Decimal, at time.Time) (models.LedgerEntry, models.LedgerEntry) {
	debit := models.LedgerEntry{
		ID:            uuid.NewString(),
		WalletID:      senderWalletID,
		TransactionID: transactionID,
		Amount:        amount.Neg(),
		Type:          models.EntryTypeDebit,
		CreatedAt:     at,
	}
	credit := models.LedgerEntry{
		ID:            uuid.NewString(),
		WalletID:      receiverWalletID,
		TransactionID: transactionID,
		Amount:        amount,
		Type:          models.EntryTypeCredit,
		CreatedAt:     at,
	}
	return debit, credit
}

// AppendPair writes both postings of a transfer in one statement, inside the
// caller's transaction, so a transaction can never commit with half a pair.
func (r *LedgerRepository) AppendPair(ctx context.Context, tx *sql.Tx, transactionID, senderWalletID, receiverWalletID string, amount decimal.Decimal, at time.Time) (models.LedgerEntry, models.LedgerEntry, error) {
	debit, credit := pairFor(transactionID, senderWalletID, receiverWalletID, amount, at)

	query := `
		INSERT INTO ledger_entries (id, wallet_id, transaction_id, amount, type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6), ($7, $8, $9, $10, $11, $12)
	`
	_, err := tx.ExecContext(ctx, query,
		debit.ID, debit.WalletID, debit.TransactionID, debit.Amount, debit.Type, debit.CreatedAt,
		credit.ID, credit.WalletID, credit.TransactionID, credit.Amount, credit.Type, credit.CreatedAt,
	)
	if err != nil {
		return models.LedgerEntry{}, models.LedgerEntry{}, fmt.Errorf("failed to append ledger entries: %w", err)
	}
	return debit, credit, nil
}

// EntriesForTransaction returns a transaction's postings, debit first.
// An unsettled transaction has no entries and yields an empty slice.
func (r *LedgerRepository) EntriesForTransaction(ctx context.Context, transactionID string) ([]models.LedgerEntry, error) {
	query := `
		SELECT id, wallet_id, transaction_id, amount, type, created_at
		FROM ledger_entries
		WHERE transaction_id = $1
		ORDER BY created_at, type DESC
	`
	return r.queryEntries(ctx, query, transactionID)
}

// EntriesForWallet returns a wallet's postings, newest first.
func (r *LedgerRepository) EntriesForWallet(ctx context.Context, walletID string) ([]models.LedgerEntry, error) {
	query := `
		SELECT id, wallet_id, transaction_id, amount, type, created_at
		FROM ledger_entries
		WHERE wallet_id = $1
		ORDER BY created_at DESC, type
	`
	return r.queryEntries(ctx, query, walletID)
}

func (r *LedgerRepository) queryEntries(ctx context.Context, query string, arg any) ([]models.LedgerEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	defer rows.Close()

	entries := []models.LedgerEntry{}
	for rows.Next() {
		var entry models.LedgerEntry
		if err := rows.Scan(
			&entry.ID, &entry.WalletID, &entry.TransactionID,
			&entry.Amount, &entry.Type, &entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
