package repository

import (
	"context"
	"database/sql"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/Bhaskar-scientist/Valut-Craft/internal/apperr"
	"github.com/Bhaskar-scientist/Valut-Craft/internal/models"
	vcredis "github.com/Bhaskar-scientist/Valut-Craft/internal/redis"
)

const transactionViewKeyPrefix = "transaction:view:"

// TransactionReadRepository handles all read operations for transactions.
// Single-row reads use Redis as the primary read store with a PostgreSQL
// fallback; list, count and summary queries always go to PostgreSQL.
type TransactionReadRepository struct {
	db    *sql.DB
	cache *vcredis.ViewCache[models.TransactionView]
}

func NewTransactionReadRepository(db *sql.DB, redisClient *goredis.Client) *TransactionReadRepository {
	return &TransactionReadRepository{
		db:    db,
		cache: vcredis.NewViewCache[models.TransactionView](redisClient, 0),
	}
}

func transactionCacheKey(orgID, transactionID string) string {
	return fmt.Sprintf("%s%s:%s", transactionViewKeyPrefix, orgID, transactionID)
}

// GetByID returns a TransactionView by attempting Redis first, then
// PostgreSQL. The cache key carries the organisation, so a hit can never
// cross tenants.
func (r *TransactionReadRepository) GetByID(ctx context.Context, transactionID, orgID string) (*models.TransactionView, error) {
	cacheKey := transactionCacheKey(orgID, transactionID)
	if view, ok := r.cache.Get(ctx, cacheKey); ok {
		return view, nil
	}

	// Fallback: PostgreSQL
	query := `
		SELECT id, sender_wallet_id, receiver_wallet_id, amount,
		       status, transaction_type, reference_id, description, created_at, completed_at
		FROM transactions
		WHERE id = $1 AND org_id = $2
	`
	view, err := scanTransactionView(r.db.QueryRowContext(ctx, query, transactionID, orgID))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("transaction_id", "transaction not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	// Warm the cache
	r.CacheTransactionView(ctx, orgID, view)
	return view, nil
}

// List returns one page of the filtered transaction set plus the total
// count. Both statements render the same WHERE body from the filter.
func (r *TransactionReadRepository) List(ctx context.Context, filter TransactionFilter, page, pageSize int) ([]models.TransactionView, int, error) {
	where, args := filter.whereClause()

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM transactions WHERE %s`, where)
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	pageQuery := fmt.Sprintf(`
		SELECT id, sender_wallet_id, receiver_wallet_id, amount,
		       status, transaction_type, reference_id, description, created_at, completed_at
		FROM transactions
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.QueryContext(ctx, pageQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	views := []models.TransactionView{}
	for rows.Next() {
		view, err := scanTransactionView(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan transaction: %w", err)
		}
		views = append(views, *view)
	}
	return views, total, nil
}

// Summary aggregates the filtered set in a single statement, so the counts
// and the volume always describe one snapshot of the table.
func (r *TransactionReadRepository) Summary(ctx context.Context, filter TransactionFilter) (*models.TransactionSummary, error) {
	where, args := filter.whereClause()

	query := fmt.Sprintf(`
		SELECT status, transaction_type, COUNT(*), COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE %s
		GROUP BY status, transaction_type
	`, where)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to summarise transactions: %w", err)
	}
	defer rows.Close()

	summary := &models.TransactionSummary{
		ByStatus:    map[string]int{},
		ByType:      map[string]int{},
		TotalVolume: decimal.Zero,
		Currency:    "INR",
	}
	for rows.Next() {
		var status, txType string
		var count int
		var amount decimal.Decimal
		if err := rows.Scan(&status, &txType, &count, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan summary row: %w", err)
		}
		summary.TotalCount += count
		summary.ByStatus[status] += count
		summary.ByType[txType] += count
		summary.TotalVolume = summary.TotalVolume.Add(amount)
	}
	return summary, nil
}

// CacheTransactionView stores the read model for a transaction in Redis.
// Called by the command side immediately after a successful settle.
func (r *TransactionReadRepository) CacheTransactionView(ctx context.Context, orgID string, view *models.TransactionView) {
	r.cache.Set(ctx, transactionCacheKey(orgID, view.ID), view)
}

// InvalidateTransactionView removes the cached read model, forcing the next
// read through to PostgreSQL. Used after cancels.
func (r *TransactionReadRepository) InvalidateTransactionView(ctx context.Context, orgID, transactionID string) {
	r.cache.Delete(ctx, transactionCacheKey(orgID, transactionID))
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransactionView(row rowScanner) (*models.TransactionView, error) {
	var view models.TransactionView
	var reference, description sql.NullString
	var completedAt sql.NullTime

	err := row.Scan(
		&view.ID, &view.SenderWalletID, &view.ReceiverWalletID, &view.Amount,
		&view.Status, &view.Type, &reference, &description, &view.CreatedAt, &completedAt,
	)
	if err != nil {
		return nil, err
	}
	if reference.Valid {
		view.ReferenceID = reference.String
	}
	if description.Valid {
		view.Description = description.String
	}
	if completedAt.Valid {
		view.CompletedAt = &completedAt.Time
	}
	return &view, nil
}
