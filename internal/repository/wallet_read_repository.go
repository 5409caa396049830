package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/Bhaskar-scientist/Valut-Craft/internal/apperr"
	"github.com/Bhaskar-scientist/Valut-Craft/internal/models"
	vcredis "github.com/Bhaskar-scientist/Valut-Craft/internal/redis"
)

const walletViewKeyPrefix = "wallet:view:"

// walletCacheEntry is the internal Redis representation of a wallet.
// Unlike models.WalletView, it serialises UserID so ownership checks can be
// answered from the cache.
type walletCacheEntry struct {
	ID        string              `json:"id"`
	UserID    string              `json:"userId"`
	Balance   decimal.Decimal     `json:"balance"`
	Currency  string              `json:"currency"`
	Type      models.WalletType   `json:"type"`
	Status    models.WalletStatus `json:"status"`
	CreatedAt time.Time           `json:"createdTimestamp"`
	UpdatedAt time.Time           `json:"updatedTimestamp"`
}

// WalletReadRepository handles all read operations for wallets.
// It treats Redis as the primary read store and falls back to PostgreSQL
// transparently, warming the cache on every cold read. Keys are scoped by
// organisation so a cache hit can never leak across tenants.
type WalletReadRepository struct {
	db    *sql.DB
	cache *vcredis.ViewCache[walletCacheEntry]
}

func NewWalletReadRepository(db *sql.DB, redisClient *goredis.Client) *WalletReadRepository {
	return &WalletReadRepository{
		db:    db,
		cache: vcredis.NewViewCache[walletCacheEntry](redisClient, 0),
	}
}

func walletCacheKey(orgID, walletID string) string {
	return fmt.Sprintf("%s%s:%s", walletViewKeyPrefix, orgID, walletID)
}

func cacheEntryToView(e *walletCacheEntry) *models.WalletView {
	return &models.WalletView{
		ID:        e.ID,
		UserID:    e.UserID,
		Balance:   e.Balance,
		Currency:  e.Currency,
		Type:      e.Type,
		Status:    e.Status,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

// GetByID returns a WalletView, trying Redis first then PostgreSQL.
func (r *WalletReadRepository) GetByID(ctx context.Context, walletID, orgID string) (*models.WalletView, error) {
	cacheKey := walletCacheKey(orgID, walletID)
	if entry, ok := r.cache.Get(ctx, cacheKey); ok {
		return cacheEntryToView(entry), nil
	}

	// Fallback: PostgreSQL, including user_id for the ownership check.
	query := `
		SELECT id, user_id, balance, currency, type, status, created_at, updated_at
		FROM wallets
		WHERE id = $1 AND org_id = $2
	`
	var view models.WalletView
	pgErr := r.db.QueryRowContext(ctx, query, walletID, orgID).Scan(
		&view.ID, &view.UserID, &view.Balance, &view.Currency,
		&view.Type, &view.Status, &view.CreatedAt, &view.UpdatedAt,
	)
	if pgErr == sql.ErrNoRows {
		return nil, apperr.NotFound("wallet_id", "wallet not found")
	}
	if pgErr != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", pgErr)
	}

	// Warm the cache
	r.CacheWalletView(ctx, orgID, &view)
	return &view, nil
}

// ListByUserID returns all WalletViews for the given user from PostgreSQL.
func (r *WalletReadRepository) ListByUserID(ctx context.Context, userID, orgID string) ([]models.WalletView, error) {
	query := `
		SELECT id, user_id, balance, currency, type, status, created_at, updated_at
		FROM wallets
		WHERE user_id = $1 AND org_id = $2
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}
	defer rows.Close()

	views := []models.WalletView{}
	for rows.Next() {
		var view models.WalletView
		if err := rows.Scan(
			&view.ID, &view.UserID, &view.Balance, &view.Currency,
			&view.Type, &view.Status, &view.CreatedAt, &view.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan wallet: %w", err)
		}
		views = append(views, view)
	}
	return views, nil
}

// CacheWalletView stores or refreshes the Redis read model for a wallet.
// Called by the command side after every mutation.
func (r *WalletReadRepository) CacheWalletView(ctx context.Context, orgID string, view *models.WalletView) {
	entry := &walletCacheEntry{
		ID:        view.ID,
		UserID:    view.UserID,
		Balance:   view.Balance,
		Currency:  view.Currency,
		Type:      view.Type,
		Status:    view.Status,
		CreatedAt: view.CreatedAt,
		UpdatedAt: view.UpdatedAt,
	}
	r.cache.Set(ctx, walletCacheKey(orgID, view.ID), entry)
}

// InvalidateWalletView removes the Redis read model entry for a wallet.
// The transfer engine calls this after moving balance so the next read
// reflects the committed state.
func (r *WalletReadRepository) InvalidateWalletView(ctx context.Context, orgID, walletID string) {
	r.cache.Delete(ctx, walletCacheKey(orgID, walletID))
}
