package app

import (
	"context"
	"time"

	"team_portal_service/internal/chat/domain"
	"team_portal_service/pkg/logger"
	"team_portal_service/pkg/middlewares"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

const (
	pingInterval = 30 * time.Second
	writeTimeout = 10 * time.Second
)

// StreamHandler attaches websocket connections to the broadcast hub.
type StreamHandler struct {
	uc *ChatUseCase
}

// NewStreamHandler create StreamHandler
func NewStreamHandler(uc *ChatUseCase) *StreamHandler {
	return &StreamHandler{uc: uc}
}

// HandleConnection is the entry point for one stream connection. It
// subscribes the caller to the hub and relays every event in order until
// the client disconnects or the hub drops the subscription.
func (h *StreamHandler) HandleConnection(conn *websocket.Conn) {
	user := domain.User{}
	if id, ok := conn.Locals(middlewares.TokenUserID).(string); ok {
		user.ID = id
	}
	if name, ok := conn.Locals(middlewares.TokenUserName).(string); ok {
		user.Name = name
	}
	if role, ok := conn.Locals(middlewares.TokenRole).(string); ok {
		user.Role = role
	}
	logger.Log.Info("stream connected", zap.String("userID", user.ID))

	sub := h.uc.OpenStream(user)

	ctxClose, cancel := context.WithCancel(context.Background())
	defer func() {
		h.uc.CloseStream(sub)
		cancel()
		conn.Close()
		logger.Log.Info("stream closed", zap.String("userID", user.ID))
	}()

	// fiber answers pings itself; the handler is only for visibility.
	conn.SetPongHandler(func(appData string) error {
		logger.Log.Debug("stream pong", zap.String("userID", user.ID))
		return nil
	})

	// Writer: hub events and periodic pings. When the hub closes the
	// subscription channel the connection is closed here, which unblocks
	// the read loop below.
	go func() {
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()

		for {
			select {
			case ev, ok := <-sub.Events():
				if !ok {
					closeStreamConnection(conn, websocket.CloseTryAgainLater, "stream lagging")
					return
				}
				conn.SetWriteDeadline(time.Now().Add(writeTimeout))
				if err := conn.WriteJSON(ev); err != nil {
					logger.Log.Errorf("stream write error:", err)
					conn.Close()
					return
				}
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
					logger.Log.Errorf("stream ping error:", err)
					conn.Close()
					return
				}
			case <-ctxClose.Done():
				return
			}
		}
	}()

	// Reader: clients never send payloads on the stream, reading only
	// detects disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Log.Debug("stream closed by client", zap.String("userID", user.ID))
			} else {
				logger.Log.Errorf("stream read error:", err)
			}
			return
		}
	}
}

func closeStreamConnection(conn *websocket.Conn, code int, reason string) {
	if err := conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(writeTimeout)); err != nil {
		logger.Log.Errorf("stream close error:", err)
	}
	conn.Close()
}
