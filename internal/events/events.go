package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types
const (
	TransferCompleted    = "transfer.completed"
	TransactionCancelled = "transaction.cancelled"

	WalletCreated       = "wallet.created"
	WalletStatusChanged = "wallet.status_changed"

	UserRegistered = "user.registered"
)

// Stream names
const (
	TransactionEventsStream = "transaction.events"
	WalletEventsStream      = "wallet.events"
	UserEventsStream        = "user.events"
)

// Base event structure
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// Transaction events

// TransferCompletedEvent carries both post-transfer balances so consumers
// (audit log, balance notifier) never have to read back from the store.
type TransferCompletedEvent struct {
	TransactionID    string          `json:"transactionId"`
	OrgID            string          `json:"orgId"`
	SenderWalletID   string          `json:"senderWalletId"`
	ReceiverWalletID string          `json:"receiverWalletId"`
	SenderUserID     string          `json:"senderUserId"`
	ReceiverUserID   string          `json:"receiverUserId"`
	Amount           decimal.Decimal `json:"amount"`
	SenderBalance    decimal.Decimal `json:"senderBalance"`
	ReceiverBalance  decimal.Decimal `json:"receiverBalance"`
	Currency         string          `json:"currency"`
}

type TransactionCancelledEvent struct {
	TransactionID    string `json:"transactionId"`
	OrgID            string `json:"orgId"`
	SenderWalletID   string `json:"senderWalletId"`
	ReceiverWalletID string `json:"receiverWalletId"`
}

// Wallet events

type WalletCreatedEvent struct {
	WalletID string `json:"walletId"`
	OrgID    string `json:"orgId"`
	UserID   string `json:"userId"`
	Type     string `json:"type"`
	Currency string `json:"currency"`
}

type WalletStatusChangedEvent struct {
	WalletID  string `json:"walletId"`
	OrgID     string `json:"orgId"`
	UserID    string `json:"userId"`
	OldStatus string `json:"oldStatus"`
	NewStatus string `json:"newStatus"`
}

// User events

type UserRegisteredEvent struct {
	UserID string `json:"userId"`
	OrgID  string `json:"orgId"`
	Email  string `json:"email"`
}
