package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Bhaskar-scientist/Valut-Craft/internal/apperr"
	"github.com/Bhaskar-scientist/Valut-Craft/internal/cqrs"
	"github.com/Bhaskar-scientist/Valut-Craft/internal/middleware"
	"github.com/Bhaskar-scientist/Valut-Craft/internal/models"
)

// TransferCommander defines the write-side operations used by TransactionHandler.
type TransferCommander interface {
	ExecuteTransfer(context.Context, cqrs.ExecuteTransferCommand) (*models.Transaction, error)
	CancelTransaction(context.Context, cqrs.CancelTransactionCommand) (*models.Transaction, error)
}

// TransactionQuerier defines the read-side operations used by TransactionHandler.
type TransactionQuerier interface {
	GetTransaction(context.Context, cqrs.GetTransactionQuery) (*models.TransactionView, error)
	ListTransactions(context.Context, cqrs.ListTransactionsQuery) ([]models.TransactionView, int, error)
	GetLedger(context.Context, cqrs.GetLedgerQuery) ([]models.LedgerEntry, error)
	Summary(context.Context, cqrs.TransactionSummaryQuery) (*models.TransactionSummary, error)
}

// WalletOwnerChecker verifies that the requesting user owns a wallet before
// the transfer command runs.
type WalletOwnerChecker interface {
	GetWallet(context.Context, cqrs.GetWalletQuery) (*models.WalletView, error)
}

type TransactionHandler struct {
	commands      TransferCommander
	queries       TransactionQuerier
	walletQueries WalletOwnerChecker
}

type TransferRequest struct {
	SenderWalletID   string          `json:"senderWalletId" validate:"required,uuid4"`
	ReceiverWalletID string          `json:"receiverWalletId" validate:"required,uuid4"`
	Amount           decimal.Decimal `json:"amount" validate:"required"`
	Type             string          `json:"type" validate:"omitempty,oneof=INTERNAL_TRANSFER EXTERNAL_TRANSFER DEPOSIT WITHDRAWAL"`
	ReferenceID      string          `json:"referenceId" validate:"max=128"`
	Description      string          `json:"description" validate:"max=255"`
}

type ListTransactionsResponse struct {
	Transactions []models.TransactionView `json:"transactions"`
	TotalCount   int                      `json:"totalCount"`
	Page         int                      `json:"page"`
	PageSize     int                      `json:"pageSize"`
}

type LedgerResponse struct {
	TransactionID string               `json:"transactionId"`
	LedgerEntries []models.LedgerEntry `json:"ledgerEntries"`
}

func NewTransactionHandler(commands TransferCommander, queries TransactionQuerier, walletQueries WalletOwnerChecker) *TransactionHandler {
	return &TransactionHandler{commands: commands, queries: queries, walletQueries: walletQueries}
}

// Transfer moves funds between two wallets of the caller's organisation.
// The caller must own the sender wallet.
func (h *TransactionHandler) Transfer(c *gin.Context) {
	orgID, _ := middleware.GetOrgID(c)
	userID, _ := middleware.GetUserID(c)

	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	// The sender wallet must belong to the caller. Wallets owned by someone
	// else report as missing.
	if _, err := h.walletQueries.GetWallet(c.Request.Context(), cqrs.GetWalletQuery{
		OrgID:            orgID,
		WalletID:         req.SenderWalletID,
		RequestingUserID: userID,
	}); err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			middleware.RespondWithError(c, http.StatusNotFound, "Sender wallet not found")
			return
		}
		middleware.RespondWithAppError(c, err)
		return
	}

	transaction, err := h.commands.ExecuteTransfer(c.Request.Context(), cqrs.ExecuteTransferCommand{
		OrgID:            orgID,
		SenderWalletID:   req.SenderWalletID,
		ReceiverWalletID: req.ReceiverWalletID,
		Amount:           req.Amount,
		Type:             models.TransactionType(req.Type),
		ReferenceID:      req.ReferenceID,
		Description:      req.Description,
	})
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, transaction)
}

// ListTransactions pages through the organisation's transactions, filtered
// by status, type, wallet participation and date range.
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	orgID, _ := middleware.GetOrgID(c)

	q := cqrs.ListTransactionsQuery{
		OrgID:    orgID,
		Status:   models.TransactionStatus(c.Query("status")),
		Type:     models.TransactionType(c.Query("type")),
		WalletID: c.Query("walletId"),
	}
	if q.Status != "" && !q.Status.Valid() {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid status filter")
		return
	}
	if q.Type != "" && !q.Type.Valid() {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid type filter")
		return
	}

	var err error
	if q.From, err = parseTimeParam(c.Query("from")); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid from date, expected RFC3339")
		return
	}
	if q.To, err = parseTimeParam(c.Query("to")); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid to date, expected RFC3339")
		return
	}
	q.Page, q.PageSize = parsePageParams(c)

	views, total, err := h.queries.ListTransactions(c.Request.Context(), q)
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListTransactionsResponse{
		Transactions: views,
		TotalCount:   total,
		Page:         q.Page,
		PageSize:     q.PageSize,
	})
}

func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	orgID, _ := middleware.GetOrgID(c)
	transactionID := c.Param("transactionId")
	if err := uuid.Validate(transactionID); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid transaction id")
		return
	}

	view, err := h.queries.GetTransaction(c.Request.Context(), cqrs.GetTransactionQuery{
		OrgID:         orgID,
		TransactionID: transactionID,
	})
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// GetLedger returns the double-entry postings behind one transaction.
func (h *TransactionHandler) GetLedger(c *gin.Context) {
	orgID, _ := middleware.GetOrgID(c)
	transactionID := c.Param("transactionId")
	if err := uuid.Validate(transactionID); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid transaction id")
		return
	}

	entries, err := h.queries.GetLedger(c.Request.Context(), cqrs.GetLedgerQuery{
		OrgID:         orgID,
		TransactionID: transactionID,
	})
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, LedgerResponse{
		TransactionID: transactionID,
		LedgerEntries: entries,
	})
}

// Summary aggregates the filtered transaction set.
func (h *TransactionHandler) Summary(c *gin.Context) {
	orgID, _ := middleware.GetOrgID(c)

	q := cqrs.TransactionSummaryQuery{
		OrgID:  orgID,
		Status: models.TransactionStatus(c.Query("status")),
		Type:   models.TransactionType(c.Query("type")),
	}
	if q.Status != "" && !q.Status.Valid() {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid status filter")
		return
	}
	if q.Type != "" && !q.Type.Valid() {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid type filter")
		return
	}

	var err error
	if q.From, err = parseTimeParam(c.Query("from")); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid from date, expected RFC3339")
		return
	}
	if q.To, err = parseTimeParam(c.Query("to")); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid to date, expected RFC3339")
		return
	}

	summary, err := h.queries.Summary(c.Request.Context(), q)
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// CancelTransaction cancels a PENDING transaction.
func (h *TransactionHandler) CancelTransaction(c *gin.Context) {
	orgID, _ := middleware.GetOrgID(c)
	transactionID := c.Param("transactionId")
	if err := uuid.Validate(transactionID); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid transaction id")
		return
	}

	transaction, err := h.commands.CancelTransaction(c.Request.Context(), cqrs.CancelTransactionCommand{
		OrgID:         orgID,
		TransactionID: transactionID,
	})
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, transaction)
}

// parseTimeParam parses an optional RFC3339 query parameter.
func parseTimeParam(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, value)
}

// parsePageParams reads optional page/pageSize query parameters, clamped to
// the same bounds the query service enforces, so responses echo the paging
// that was actually applied.
func parsePageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}
