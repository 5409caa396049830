package cqrs

import (
	"time"

	"github.com/Bhaskar-scientist/Valut-Craft/internal/models"
)

// ---------- User queries ----------

// GetUserQuery fetches the authenticated user's own profile.
type GetUserQuery struct {
	UserID string
}

// ---------- Wallet queries ----------

// GetWalletQuery fetches a single wallet, subject to ownership check.
type GetWalletQuery struct {
	OrgID            string
	WalletID         string
	RequestingUserID string
}

// ListWalletsQuery fetches all wallets belonging to a user.
type ListWalletsQuery struct {
	OrgID  string
	UserID string
}

// WalletSummaryQuery aggregates all wallets of an organisation.
type WalletSummaryQuery struct {
	OrgID string
}

// ---------- Transaction queries ----------

// GetTransactionQuery fetches a single transaction within an organisation.
type GetTransactionQuery struct {
	OrgID         string
	TransactionID string
}

// ListTransactionsQuery fetches a filtered, paginated transaction page.
// Zero-valued filters are ignored.
type ListTransactionsQuery struct {
	OrgID    string
	Status   models.TransactionStatus
	Type     models.TransactionType
	WalletID string
	From     time.Time
	To       time.Time
	Page     int
	PageSize int
}

// GetLedgerQuery fetches the ledger entries of one transaction.
type GetLedgerQuery struct {
	OrgID         string
	TransactionID string
}

// TransactionSummaryQuery aggregates a filtered transaction set.
type TransactionSummaryQuery struct {
	OrgID  string
	Status models.TransactionStatus
	Type   models.TransactionType
	From   time.Time
	To     time.Time
}

// WalletTransactionsQuery pages through the transactions a wallet took part
// in, as sender or receiver. Subject to ownership check.
type WalletTransactionsQuery struct {
	OrgID            string
	WalletID         string
	RequestingUserID string
	Page             int
	PageSize         int
}

// WalletLedgerQuery fetches every ledger posting touching a wallet.
// Subject to ownership check.
type WalletLedgerQuery struct {
	OrgID            string
	WalletID         string
	RequestingUserID string
}
