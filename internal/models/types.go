package models

// WalletType classifies a wallet. PRIMARY wallets hold the user's main
// balance (at most one ACTIVE per user), BONUS wallets hold promotional
// credit, SYSTEM wallets are organisation-owned pools used as the
// counterparty for deposits and withdrawals.
type WalletType string

const (
	WalletTypePrimary WalletType = "PRIMARY"
	WalletTypeBonus   WalletType = "BONUS"
	WalletTypeSystem  WalletType = "SYSTEM"
)

func (t WalletType) Valid() bool {
	switch t {
	case WalletTypePrimary, WalletTypeBonus, WalletTypeSystem:
		return true
	}
	return false
}

// WalletStatus is the lifecycle state of a wallet. Only ACTIVE wallets can
// send or receive transfers. CLOSED is terminal; wallets are never deleted.
type WalletStatus string

const (
	WalletStatusActive WalletStatus = "ACTIVE"
	WalletStatusLocked WalletStatus = "LOCKED"
	WalletStatusClosed WalletStatus = "CLOSED"
)

func (s WalletStatus) Valid() bool {
	switch s {
	case WalletStatusActive, WalletStatusLocked, WalletStatusClosed:
		return true
	}
	return false
}

// CanTransitionTo reports whether a wallet may move from s to next.
// ACTIVE and LOCKED convert freely between each other and into CLOSED.
func (s WalletStatus) CanTransitionTo(next WalletStatus) bool {
	if s == next {
		return false
	}
	switch s {
	case WalletStatusActive:
		return next == WalletStatusLocked || next == WalletStatusClosed
	case WalletStatusLocked:
		return next == WalletStatusActive || next == WalletStatusClosed
	}
	return false
}

// TransactionStatus is the lifecycle state of a transaction.
// PENDING is the only non-terminal state; COMPLETED, CANCELLED and FAILED
// rows are immutable. FAILED is representable but never produced by the
// synchronous transfer path, which rolls back instead of recording failures.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusCancelled TransactionStatus = "CANCELLED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

func (s TransactionStatus) Valid() bool {
	switch s {
	case TransactionStatusPending, TransactionStatusCompleted,
		TransactionStatusCancelled, TransactionStatusFailed:
		return true
	}
	return false
}

// Terminal reports whether s admits no further transitions.
func (s TransactionStatus) Terminal() bool {
	return s == TransactionStatusCompleted || s == TransactionStatusCancelled || s == TransactionStatusFailed
}

func (s TransactionStatus) CanTransitionTo(next TransactionStatus) bool {
	if s != TransactionStatusPending {
		return false
	}
	return next == TransactionStatusCompleted || next == TransactionStatusCancelled || next == TransactionStatusFailed
}

// TransactionType labels the business intent of a transaction.
// INTERNAL_TRANSFER, DEPOSIT and WITHDRAWAL settle synchronously;
// EXTERNAL_TRANSFER is recorded PENDING until settled or cancelled.
type TransactionType string

const (
	TransactionTypeInternalTransfer TransactionType = "INTERNAL_TRANSFER"
	TransactionTypeExternalTransfer TransactionType = "EXTERNAL_TRANSFER"
	TransactionTypeDeposit          TransactionType = "DEPOSIT"
	TransactionTypeWithdrawal       TransactionType = "WITHDRAWAL"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeInternalTransfer, TransactionTypeExternalTransfer,
		TransactionTypeDeposit, TransactionTypeWithdrawal:
		return true
	}
	return false
}

// EntryType marks the direction of a ledger entry. DEBIT entries carry a
// negative amount, CREDIT entries a positive one.
type EntryType string

const (
	EntryTypeDebit  EntryType = "DEBIT"
	EntryTypeCredit EntryType = "CREDIT"
)
