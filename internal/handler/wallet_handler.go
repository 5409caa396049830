package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Bhaskar-scientist/Valut-Craft/internal/cqrs"
	"github.com/Bhaskar-scientist/Valut-Craft/internal/middleware"
	"github.com/Bhaskar-scientist/Valut-Craft/internal/models"
)

// WalletCommander defines the write-side operations used by WalletHandler.
type WalletCommander interface {
	CreateWallet(context.Context, cqrs.CreateWalletCommand) (*models.Wallet, error)
	UpdateWalletStatus(context.Context, cqrs.UpdateWalletStatusCommand) (*models.Wallet, error)
}

// WalletQuerier defines the read-side operations used by WalletHandler.
type WalletQuerier interface {
	GetWallet(context.Context, cqrs.GetWalletQuery) (*models.WalletView, error)
	ListWallets(context.Context, cqrs.ListWalletsQuery) ([]models.WalletView, error)
	GetBalance(context.Context, cqrs.GetWalletQuery) (*models.WalletView, error)
	OrgSummary(context.Context, cqrs.WalletSummaryQuery) (*models.WalletSummary, error)
}

// WalletHistoryQuerier serves a wallet's transaction history and ledger
// statement.
type WalletHistoryQuerier interface {
	WalletHistory(context.Context, cqrs.WalletTransactionsQuery) ([]models.TransactionView, int, error)
	WalletLedger(context.Context, cqrs.WalletLedgerQuery) ([]models.LedgerEntry, error)
}

type WalletHandler struct {
	commands   WalletCommander
	queries    WalletQuerier
	txnQueries WalletHistoryQuerier
}

type CreateWalletRequest struct {
	Type     string `json:"type" validate:"omitempty,oneof=PRIMARY BONUS SYSTEM"`
	Currency string `json:"currency" validate:"omitempty,oneof=INR"`
}

type UpdateWalletStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=ACTIVE LOCKED CLOSED"`
}

type ListWalletsResponse struct {
	Wallets    []models.WalletView `json:"wallets"`
	TotalCount int                 `json:"totalCount"`
}

func NewWalletHandler(commands WalletCommander, queries WalletQuerier, txnQueries WalletHistoryQuerier) *WalletHandler {
	return &WalletHandler{commands: commands, queries: queries, txnQueries: txnQueries}
}

// CreateWallet opens a wallet for the authenticated user. Each user can hold
// at most one ACTIVE PRIMARY wallet.
func (h *WalletHandler) CreateWallet(c *gin.Context) {
	orgID, _ := middleware.GetOrgID(c)
	userID, _ := middleware.GetUserID(c)

	var req CreateWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	wallet, err := h.commands.CreateWallet(c.Request.Context(), cqrs.CreateWalletCommand{
		OrgID:    orgID,
		UserID:   userID,
		Type:     models.WalletType(req.Type),
		Currency: req.Currency,
	})
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, wallet)
}

// ListWallets returns all wallets of the authenticated user.
func (h *WalletHandler) ListWallets(c *gin.Context) {
	orgID, _ := middleware.GetOrgID(c)
	userID, _ := middleware.GetUserID(c)

	wallets, err := h.queries.ListWallets(c.Request.Context(), cqrs.ListWalletsQuery{
		OrgID:  orgID,
		UserID: userID,
	})
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListWalletsResponse{Wallets: wallets, TotalCount: len(wallets)})
}

// GetWallet returns one wallet to its owner.
func (h *WalletHandler) GetWallet(c *gin.Context) {
	orgID, _ := middleware.GetOrgID(c)
	userID, _ := middleware.GetUserID(c)
	walletID := c.Param("walletId")
	if err := uuid.Validate(walletID); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid wallet id")
		return
	}

	view, err := h.queries.GetWallet(c.Request.Context(), cqrs.GetWalletQuery{
		OrgID:            orgID,
		WalletID:         walletID,
		RequestingUserID: userID,
	})
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// GetBalance returns the current balance of any wallet in the organisation.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	orgID, _ := middleware.GetOrgID(c)
	walletID := c.Param("walletId")
	if err := uuid.Validate(walletID); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid wallet id")
		return
	}

	view, err := h.queries.GetBalance(c.Request.Context(), cqrs.GetWalletQuery{
		OrgID:    orgID,
		WalletID: walletID,
	})
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"walletId":    view.ID,
		"balance":     view.Balance,
		"currency":    view.Currency,
		"lastUpdated": view.UpdatedAt,
	})
}

// WalletTransactions pages through the transactions a wallet took part in.
// Only the wallet's owner may read its history.
func (h *WalletHandler) WalletTransactions(c *gin.Context) {
	orgID, _ := middleware.GetOrgID(c)
	userID, _ := middleware.GetUserID(c)
	walletID := c.Param("walletId")
	if err := uuid.Validate(walletID); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid wallet id")
		return
	}

	page, pageSize := parsePageParams(c)
	views, total, err := h.txnQueries.WalletHistory(c.Request.Context(), cqrs.WalletTransactionsQuery{
		OrgID:            orgID,
		WalletID:         walletID,
		RequestingUserID: userID,
		Page:             page,
		PageSize:         pageSize,
	})
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListTransactionsResponse{
		Transactions: views,
		TotalCount:   total,
		Page:         page,
		PageSize:     pageSize,
	})
}

// WalletLedger returns every ledger posting touching a wallet, newest
// first. Only the wallet's owner may read its statement.
func (h *WalletHandler) WalletLedger(c *gin.Context) {
	orgID, _ := middleware.GetOrgID(c)
	userID, _ := middleware.GetUserID(c)
	walletID := c.Param("walletId")
	if err := uuid.Validate(walletID); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid wallet id")
		return
	}

	entries, err := h.txnQueries.WalletLedger(c.Request.Context(), cqrs.WalletLedgerQuery{
		OrgID:            orgID,
		WalletID:         walletID,
		RequestingUserID: userID,
	})
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"walletId":      walletID,
		"ledgerEntries": entries,
	})
}

// UpdateStatus moves a wallet through its status machine.
func (h *WalletHandler) UpdateStatus(c *gin.Context) {
	orgID, _ := middleware.GetOrgID(c)
	userID, _ := middleware.GetUserID(c)
	walletID := c.Param("walletId")
	if err := uuid.Validate(walletID); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid wallet id")
		return
	}

	var req UpdateWalletStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	wallet, err := h.commands.UpdateWalletStatus(c.Request.Context(), cqrs.UpdateWalletStatusCommand{
		OrgID:    orgID,
		UserID:   userID,
		WalletID: walletID,
		Status:   models.WalletStatus(req.Status),
	})
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, wallet)
}

// OrgSummary aggregates wallet counts and active balance across the
// caller's organisation.
func (h *WalletHandler) OrgSummary(c *gin.Context) {
	orgID, _ := middleware.GetOrgID(c)

	summary, err := h.queries.OrgSummary(c.Request.Context(), cqrs.WalletSummaryQuery{OrgID: orgID})
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
