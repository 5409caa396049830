package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Organization struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdTimestamp"`
}

type User struct {
	ID           string    `json:"id"`
	OrgID        string    `json:"orgId"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdTimestamp"`
}

type Wallet struct {
	ID        string          `json:"id"`
	UserID    string          `json:"-"`
	OrgID     string          `json:"-"`
	Balance   decimal.Decimal `json:"balance"`
	Currency  string          `json:"currency"`
	Type      WalletType      `json:"type"`
	Status    WalletStatus    `json:"status"`
	CreatedAt time.Time       `json:"createdTimestamp"`
	UpdatedAt time.Time       `json:"updatedTimestamp"`
}

type Transaction struct {
	ID               string            `json:"id"`
	OrgID            string            `json:"-"`
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

// LedgerEntry is one half of a double-entry posting. Entries are append-only:
// exactly one DEBIT (negative amount) and one CREDIT (positive amount) exist
// per settled transaction, and the pair always sums to zero.
type LedgerEntry struct {
	ID            string          `json:"id"`
	WalletID      string          `json:"walletId"`
	TransactionID string          `json:"transactionId"`
	Amount        decimal.Decimal `json:"amount"`
	Type          EntryType       `json:"type"`
	CreatedAt     time.Time       `json:"createdTimestamp"`
}
