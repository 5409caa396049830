package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/Bhaskar-scientist/Valut-Craft/internal/middleware"
	"github.com/Bhaskar-scientist/Valut-Craft/internal/notify"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSHandler upgrades authenticated requests to websocket connections that
// receive balance updates pushed by the notifier.
type WSHandler struct {
	notifier *notify.Notifier
}

func NewWSHandler(notifier *notify.Notifier) *WSHandler {
	return &WSHandler{notifier: notifier}
}

// Subscribe upgrades the connection and keeps it registered until the
// client disconnects. The connection is read-only from the client's side.
func (h *WSHandler) Subscribe(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Warn("Websocket upgrade failed")
		return
	}

	h.notifier.RegisterConnection(userID, conn)
	defer h.notifier.UnregisterConnection(userID, conn)

	logrus.WithField("userId", userID).Info("Websocket client connected")

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
