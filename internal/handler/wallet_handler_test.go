package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/Bhaskar-scientist/Valut-Craft/internal/apperr"
	"github.com/Bhaskar-scientist/Valut-Craft/internal/cqrs"
	"github.com/Bhaskar-scientist/Valut-Craft/internal/models"
)

// ---- mock implementations ----

type mockWalletCommander struct {
	createFn func(cqrs.CreateWalletCommand) (*models.Wallet, error)
	statusFn func(cqrs.UpdateWalletStatusCommand) (*models.Wallet, error)
}

func (m *mockWalletCommander) CreateWallet(_ context.Context, cmd cqrs.CreateWalletCommand) (*models.Wallet, error) {
	if m.createFn != nil {
		return m.createFn(cmd)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockWalletCommander) UpdateWalletStatus(_ context.Context, cmd cqrs.UpdateWalletStatusCommand) (*models.Wallet, error) {
	if m.statusFn != nil {
		return m.statusFn(cmd)
	}
	return nil, fmt.Errorf("not configured")
}

type mockWalletQuerier struct {
	getFn     func(cqrs.GetWalletQuery) (*models.WalletView, error)
	listFn    func(cqrs.ListWalletsQuery) ([]models.WalletView, error)
	balanceFn func(cqrs.GetWalletQuery) (*models.WalletView, error)
	summaryFn func(cqrs.WalletSummaryQuery) (*models.WalletSummary, error)
}

func (m *mockWalletQuerier) GetWallet(_ context.Context, q cqrs.GetWalletQuery) (*models.WalletView, error) {
	if m.getFn != nil {
		return m.getFn(q)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockWalletQuerier) ListWallets(_ context.Context, q cqrs.ListWalletsQuery) ([]models.WalletView, error) {
	if m.listFn != nil {
		return m.listFn(q)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockWalletQuerier) GetBalance(_ context.Context, q cqrs.GetWalletQuery) (*models.WalletView, error) {
	if m.balanceFn != nil {
		return m.balanceFn(q)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockWalletQuerier) OrgSummary(_ context.Context, q cqrs.WalletSummaryQuery) (*models.WalletSummary, error) {
	if m.summaryFn != nil {
		return m.summaryFn(q)
	}
	return nil, fmt.Errorf("not configured")
}

type mockWalletHistoryQuerier struct {
	historyFn func(cqrs.WalletTransactionsQuery) ([]models.TransactionView, int, error)
	ledgerFn  func(cqrs.WalletLedgerQuery) ([]models.LedgerEntry, error)
}

func (m *mockWalletHistoryQuerier) WalletHistory(_ context.Context, q cqrs.WalletTransactionsQuery) ([]models.TransactionView, int, error) {
	if m.historyFn != nil {
		return m.historyFn(q)
	}
	return nil, 0, fmt.Errorf("not configured")
}
func (m *mockWalletHistoryQuerier) WalletLedger(_ context.Context, q cqrs.WalletLedgerQuery) ([]models.LedgerEntry, error) {
	if m.ledgerFn != nil {
		return m.ledgerFn(q)
	}
	return nil, fmt.Errorf("not configured")
}

// ---- helpers ----

func newWalletTestRouter(cmds WalletCommander, qrys WalletQuerier, history WalletHistoryQuerier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(fakeAuth("usr-001", "org-001"))
	h := NewWalletHandler(cmds, qrys, history)
	v1 := r.Group("/v1/wallets")
	v1.POST("", h.CreateWallet)
	v1.GET("", h.ListWallets)
	v1.GET("/summary", h.OrgSummary)
	v1.GET("/:walletId", h.GetWallet)
	v1.GET("/:walletId/balance", h.GetBalance)
	v1.GET("/:walletId/transactions", h.WalletTransactions)
	v1.GET("/:walletId/ledger", h.WalletLedger)
	v1.PATCH("/:walletId/status", h.UpdateStatus)
	return r
}

func wltDoRequest(router *gin.Engine, method, url string, body interface{}) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, url, nil)
	if body != nil {
		b, _ := json.Marshal(body)
		req, _ = http.NewRequest(method, url, strings.NewReader(string(b)))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// ---- test data ----

func aWallet() *models.Wallet {
	return &models.Wallet{
		ID:        tSenderWalletID,
		UserID:    "usr-001",
		OrgID:     "org-001",
		Balance:   decimal.RequireFromString("500.00"),
		Currency:  "INR",
		Type:      models.WalletTypePrimary,
		Status:    models.WalletStatusActive,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
}

// ---- tests ----

func TestCreateWallet(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		createFn       func(cqrs.CreateWalletCommand) (*models.Wallet, error)
		expectedStatus int
	}{
		{
			name: "success - create wallet with defaults",
			body: map[string]interface{}{},
			createFn: func(cmd cqrs.CreateWalletCommand) (*models.Wallet, error) {
				return aWallet(), nil
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "success - create bonus wallet",
			body: map[string]interface{}{"type": "BONUS"},
			createFn: func(cmd cqrs.CreateWalletCommand) (*models.Wallet, error) {
				w := aWallet()
				w.Type = models.WalletTypeBonus
				return w, nil
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "bad request - unknown wallet type",
			body:           map[string]interface{}{"type": "SAVINGS"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad request - unsupported currency",
			body:           map[string]interface{}{"currency": "USD"},
			expectedStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmds := &mockWalletCommander{createFn: tt.createFn}
			router := newWalletTestRouter(cmds, &mockWalletQuerier{}, &mockWalletHistoryQuerier{})
			w := wltDoRequest(router, http.MethodPost, "/v1/wallets", tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestListWallets(t *testing.T) {
	views := []models.WalletView{*aSenderWalletView()}
	listFn := func(q cqrs.ListWalletsQuery) ([]models.WalletView, error) { return views, nil }
	router := newWalletTestRouter(&mockWalletCommander{}, &mockWalletQuerier{listFn: listFn}, &mockWalletHistoryQuerier{})

	w := wltDoRequest(router, http.MethodGet, "/v1/wallets", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d; body: %s", w.Code, w.Body.String())
	}

	var resp ListWalletsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.TotalCount != 1 {
		t.Errorf("totalCount = %d, want 1", resp.TotalCount)
	}
}

func TestGetWallet(t *testing.T) {
	tests := []struct {
		name           string
		walletID       string
		getFn          func(cqrs.GetWalletQuery) (*models.WalletView, error)
		expectedStatus int
	}{
		{
			name:     "success - fetch own wallet",
			walletID: tSenderWalletID,
			getFn: func(q cqrs.GetWalletQuery) (*models.WalletView, error) {
				return aSenderWalletView(), nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:     "not found - wallet owned by someone else",
			walletID: tSenderWalletID,
			getFn: func(q cqrs.GetWalletQuery) (*models.WalletView, error) {
				return nil, apperr.NotFound("wallet_id", "wallet not found")
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "bad request - malformed wallet id",
			walletID:       "not-a-uuid",
			expectedStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qrys := &mockWalletQuerier{getFn: tt.getFn}
			router := newWalletTestRouter(&mockWalletCommander{}, qrys, &mockWalletHistoryQuerier{})
			w := wltDoRequest(router, http.MethodGet, "/v1/wallets/"+tt.walletID, nil)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestGetBalance(t *testing.T) {
	qrys := &mockWalletQuerier{balanceFn: func(q cqrs.GetWalletQuery) (*models.WalletView, error) {
		if q.RequestingUserID != "" {
			return nil, fmt.Errorf("balance reads must not be owner-scoped")
		}
		return aSenderWalletView(), nil
	}}
	router := newWalletTestRouter(&mockWalletCommander{}, qrys, &mockWalletHistoryQuerier{})

	w := wltDoRequest(router, http.MethodGet, "/v1/wallets/"+tSenderWalletID+"/balance", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d; body: %s", w.Code, w.Body.String())
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	for _, key := range []string{"walletId", "balance", "currency", "lastUpdated"} {
		if _, ok := resp[key]; !ok {
			t.Errorf("balance response missing %q; body: %s", key, w.Body.String())
		}
	}
}

func TestWalletTransactions(t *testing.T) {
	tests := []struct {
		name           string
		walletID       string
		historyFn      func(cqrs.WalletTransactionsQuery) ([]models.TransactionView, int, error)
		expectedStatus int
	}{
		{
			name:     "success - wallet history",
			walletID: tSenderWalletID,
			historyFn: func(q cqrs.WalletTransactionsQuery) ([]models.TransactionView, int, error) {
				return []models.TransactionView{*aTransactionView()}, 1, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:     "not found - wallet owned by someone else",
			walletID: tSenderWalletID,
			historyFn: func(q cqrs.WalletTransactionsQuery) ([]models.TransactionView, int, error) {
				return nil, 0, apperr.NotFound("wallet_id", "wallet not found")
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "bad request - malformed wallet id",
			walletID:       "not-a-uuid",
			expectedStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			history := &mockWalletHistoryQuerier{historyFn: tt.historyFn}
			router := newWalletTestRouter(&mockWalletCommander{}, &mockWalletQuerier{}, history)
			w := wltDoRequest(router, http.MethodGet, "/v1/wallets/"+tt.walletID+"/transactions", nil)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestWalletLedger(t *testing.T) {
	tests := []struct {
		name           string
		walletID       string
		ledgerFn       func(cqrs.WalletLedgerQuery) ([]models.LedgerEntry, error)
		expectedStatus int
	}{
		{
			name:     "success - wallet ledger statement",
			walletID: tSenderWalletID,
			ledgerFn: func(q cqrs.WalletLedgerQuery) ([]models.LedgerEntry, error) {
				return []models.LedgerEntry{
					{ID: "led-1", WalletID: tSenderWalletID, TransactionID: tTransactionID, Amount: decimal.RequireFromString("-100.50"), Type: models.EntryTypeDebit},
				}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:     "not found - wallet owned by someone else",
			walletID: tSenderWalletID,
			ledgerFn: func(q cqrs.WalletLedgerQuery) ([]models.LedgerEntry, error) {
				return nil, apperr.NotFound("wallet_id", "wallet not found")
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "bad request - malformed wallet id",
			walletID:       "not-a-uuid",
			expectedStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			history := &mockWalletHistoryQuerier{ledgerFn: tt.ledgerFn}
			router := newWalletTestRouter(&mockWalletCommander{}, &mockWalletQuerier{}, history)
			w := wltDoRequest(router, http.MethodGet, "/v1/wallets/"+tt.walletID+"/ledger", nil)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestUpdateWalletStatus(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		statusFn       func(cqrs.UpdateWalletStatusCommand) (*models.Wallet, error)
		expectedStatus int
	}{
		{
			name: "success - lock wallet",
			body: map[string]interface{}{"status": "LOCKED"},
			statusFn: func(cmd cqrs.UpdateWalletStatusCommand) (*models.Wallet, error) {
				w := aWallet()
				w.Status = models.WalletStatusLocked
				return w, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "bad request - unknown status",
			body:           map[string]interface{}{"status": "FROZEN"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad request - missing status",
			body:           map[string]interface{}{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "conflict - closed wallet cannot be reopened",
			body: map[string]interface{}{"status": "ACTIVE"},
			statusFn: func(cmd cqrs.UpdateWalletStatusCommand) (*models.Wallet, error) {
				return nil, apperr.StateConflict("status", "cannot change wallet status from CLOSED to ACTIVE")
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "not found - wallet owned by someone else",
			body: map[string]interface{}{"status": "LOCKED"},
			statusFn: func(cmd cqrs.UpdateWalletStatusCommand) (*models.Wallet, error) {
				return nil, apperr.NotFound("wallet_id", "wallet not found")
			},
			expectedStatus: http.StatusNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmds := &mockWalletCommander{statusFn: tt.statusFn}
			router := newWalletTestRouter(cmds, &mockWalletQuerier{}, &mockWalletHistoryQuerier{})
			w := wltDoRequest(router, http.MethodPatch, "/v1/wallets/"+tSenderWalletID+"/status", tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestWalletOrgSummary(t *testing.T) {
	qrys := &mockWalletQuerier{summaryFn: func(q cqrs.WalletSummaryQuery) (*models.WalletSummary, error) {
		return &models.WalletSummary{
			TotalWallets:  4,
			ActiveWallets: 3,
			TotalBalance:  decimal.RequireFromString("1250.75"),
			Currency:      "INR",
		}, nil
	}}
	router := newWalletTestRouter(&mockWalletCommander{}, qrys, &mockWalletHistoryQuerier{})

	w := wltDoRequest(router, http.MethodGet, "/v1/wallets/summary", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d; body: %s", w.Code, w.Body.String())
	}
}
