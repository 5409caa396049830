package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Bhaskar-scientist/Valut-Craft/internal/events"
)

type wsMessage struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Notifier is the websocket hub. It consumes transaction and wallet events
// from the redis streams and pushes balance updates to every open connection
// of the affected wallet owners.
type Notifier struct {
	clients map[string]map[*websocket.Conn]bool
	mu      sync.Mutex
}

func NewNotifier() *Notifier {
	return &Notifier{
		clients: make(map[string]map[*websocket.Conn]bool),
	}
}

func (n *Notifier) RegisterConnection(userID string, conn *websocket.Conn) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.clients[userID] == nil {
		n.clients[userID] = make(map[*websocket.Conn]bool)
	}
	n.clients[userID][conn] = true
}

func (n *Notifier) UnregisterConnection(userID string, conn *websocket.Conn) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if conns, ok := n.clients[userID]; ok {
		delete(conns, conn)
		conn.Close()
		if len(conns) == 0 {
			delete(n.clients, userID)
		}
	}
}

// NotifyBalance pushes the new balance of one wallet to its owner's open
// connections. Dead connections are dropped as they are discovered.
func (n *Notifier) NotifyBalance(userID, walletID string, balance decimal.Decimal, currency string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	message := wsMessage{
		Type: "balance_update",
		Data: map[string]any{
			"walletId": walletID,
			"balance":  balance,
			"currency": currency,
		},
	}
	payload, _ := json.Marshal(message)

	for conn := range n.clients[userID] {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			logrus.WithError(err).WithField("userId", userID).Warn("Dropping dead websocket connection")
			conn.Close()
			delete(n.clients[userID], conn)
		}
	}
}

// HandleTransactionEvent is the redis stream subscriber handler for
// transaction events. Completed transfers fan out to both wallet owners.
func (n *Notifier) HandleTransactionEvent(ctx context.Context, event events.Event) error {
	switch event.Type {
	case events.TransferCompleted:
		dataBytes, _ := json.Marshal(event.Data)
		var data events.TransferCompletedEvent
		if err := json.Unmarshal(dataBytes, &data); err != nil {
			return fmt.Errorf("failed to unmarshal transfer.completed event: %w", err)
		}
		n.NotifyBalance(data.SenderUserID, data.SenderWalletID, data.SenderBalance, data.Currency)
		n.NotifyBalance(data.ReceiverUserID, data.ReceiverWalletID, data.ReceiverBalance, data.Currency)
		logrus.WithFields(logrus.Fields{
			"transactionId": data.TransactionID,
			"orgId":         data.OrgID,
			"amount":        data.Amount.StringFixed(2),
		}).Info("Transfer completed")
	case events.TransactionCancelled:
		dataBytes, _ := json.Marshal(event.Data)
		var data events.TransactionCancelledEvent
		if err := json.Unmarshal(dataBytes, &data); err != nil {
			return fmt.Errorf("failed to unmarshal transaction.cancelled event: %w", err)
		}
		logrus.WithFields(logrus.Fields{
			"transactionId": data.TransactionID,
			"orgId":         data.OrgID,
		}).Info("Transaction cancelled")
	}
	return nil
}

// HandleWalletEvent audits wallet lifecycle events from the wallet stream.
func (n *Notifier) HandleWalletEvent(ctx context.Context, event events.Event) error {
	switch event.Type {
	case events.WalletCreated:
		dataBytes, _ := json.Marshal(event.Data)
		var data events.WalletCreatedEvent
		if err := json.Unmarshal(dataBytes, &data); err != nil {
			return fmt.Errorf("failed to unmarshal wallet.created event: %w", err)
		}
		logrus.WithFields(logrus.Fields{
			"walletId": data.WalletID,
			"userId":   data.UserID,
			"type":     data.Type,
		}).Info("Wallet created")
	case events.WalletStatusChanged:
		dataBytes, _ := json.Marshal(event.Data)
		var data events.WalletStatusChangedEvent
		if err := json.Unmarshal(dataBytes, &data); err != nil {
			return fmt.Errorf("failed to unmarshal wallet.status_changed event: %w", err)
		}
		logrus.WithFields(logrus.Fields{
			"walletId":  data.WalletID,
			"oldStatus": data.OldStatus,
			"newStatus": data.NewStatus,
		}).Info("Wallet status changed")
	}
	return nil
}
