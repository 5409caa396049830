package cqrs

import (
	"github.com/shopspring/decimal"

	"github.com/Bhaskar-scientist/Valut-Craft/internal/models"
)

type RegisterCommand struct {
	OrganizationName string
	Email            string
	Password         string
}

type LoginCommand struct {
	Email    string
	Password string
}

type RefreshTokenCommand struct {
	Token string
}

type CreateWalletCommand struct {
	OrgID    string
	UserID   string
	Type     models.WalletType
	Currency string
}

type UpdateWalletStatusCommand struct {
	OrgID    string
	UserID   string
	WalletID string
	Status   models.WalletStatus
}

type ExecuteTransferCommand struct {
	OrgID            string
	SenderWalletID   string
	ReceiverWalletID string
	Amount           decimal.Decimal
	Type             models.TransactionType
	ReferenceID      string
	Description      string
}

type CancelTransactionCommand struct {
	OrgID         string
	TransactionID string
}
