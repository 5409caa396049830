package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// UserView is the read-optimised projection of a user.
// It never exposes PasswordHash.
type UserView struct {
	ID        string    `json:"id"`
	OrgID     string    `json:"orgId"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdTimestamp"`
}

// WalletView is the read-optimised projection of a wallet.
// UserID is populated for ownership checks but never serialised to the API response.
type WalletView struct {
	ID        string          `json:"id"`
	UserID    string          `json:"-"`
	Balance   decimal.Decimal `json:"balance"`
	Currency  string          `json:"currency"`
	Type      WalletType      `json:"type"`
	Status    WalletStatus    `json:"status"`
	CreatedAt time.Time       `json:"createdTimestamp"`
	UpdatedAt time.Time       `json:"updatedTimestamp"`
}

// TransactionView is the read-optimised projection of a transaction.
type TransactionView struct {
	ID               string            `json:"id"`
	SenderWalletID   string            `json:"senderWalletId"`
	ReceiverWalletID string            `json:"receiverWalletId"`
	Amount           decimal.Decimal   `json:"amount"`
	Status           TransactionStatus `json:"status"`
	Type             TransactionType   `json:"type"`
	ReferenceID      string            `json:"referenceId,omitempty"`
	Description      string            `json:"description,omitempty"`
	CreatedAt        time.Time         `json:"createdTimestamp"`
	CompletedAt      *time.Time        `json:"completedTimestamp,omitempty"`
}

// TransactionSummary aggregates a filtered transaction set in one snapshot.
type TransactionSummary struct {
	TotalCount  int             `json:"totalCount"`
	ByStatus    map[string]int  `json:"byStatus"`
	ByType      map[string]int  `json:"byType"`
	TotalVolume decimal.Decimal `json:"totalVolume"`
	Currency    string          `json:"currency"`
}

// WalletSummary aggregates the wallets of an organisation. TotalBalance
// covers ACTIVE wallets only.
type WalletSummary struct {
	TotalWallets  int             `json:"totalWallets"`
	ActiveWallets int             `json:"activeWallets"`
	TotalBalance  decimal.Decimal `json:"totalBalance"`
	Currency      string          `json:"currency"`
}
