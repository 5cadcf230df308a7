// internal/handlers/ws.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"github.com/vikt-quiz/vikt/internal/live"
)

// spectatorReadTimeout bounds each spectator read so silent
// disconnects are detected even when the peer never sends a close
// frame. Spectator pages ping every 30s.
const spectatorReadTimeout = 75 * time.Second

// writeTimeout bounds direct (non-broadcast) writes to one client.
const writeTimeout = 5 * time.Second

// identifyMessage is a player's first inbound frame.
type identifyMessage struct {
	Type      string `json:"type"`
	Name      string `json:"name"`
	Reconnect bool   `json:"reconnect,omitempty"`
}

// playerMessage is every subsequent inbound player frame.
type playerMessage struct {
	Type   string `json:"type"`
	Answer string `json:"answer,omitempty"`
}

// wsSocket adapts *websocket.Conn to the live.Socket contract.
type wsSocket struct {
	c *websocket.Conn
}

func (s *wsSocket) Write(ctx context.Context, data []byte) error {
	return s.c.Write(ctx, websocket.MessageText, data)
}

func (s *wsSocket) Close(code websocket.StatusCode, reason string) error {
	return s.c.Close(code, reason)
}

// PlayerWSHandler upgrades a player connection. The first frame must
// identify the player by display name; a malformed identification is
// fatal to the connection. After the initial snapshot the loop blocks
// on inbound answer frames until disconnect.
func PlayerWSHandler(logger *logrus.Logger, orch *live.Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: []string{"*"}, // Adjust in production
		})
		if err != nil {
			logger.Warnf("player websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		ctx := r.Context()

		typ, data, err := c.Read(ctx)
		if err != nil {
			logger.Warnf("player closed before identifying: %v", err)
			return
		}
		var ident identifyMessage
		if typ != websocket.MessageText || json.Unmarshal(data, &ident) != nil ||
			ident.Type != "identify" || strings.TrimSpace(ident.Name) == "" {
			c.Close(websocket.StatusPolicyViolation, "expected identify message with a name")
			return
		}

		sock := &wsSocket{c: c}
		conn, outcome := orch.ConnectPlayer(ident.Name, sock, ident.Reconnect)
		if outcome == live.RejectedDuplicate {
			// The registry already closed this socket.
			return
		}
		defer orch.DisconnectPlayer(conn)

		sendSnapshot(ctx, logger, sock, func() (interface{}, error) {
			return orch.PlayerSnapshot(ctx)
		})

		readPlayerMessages(ctx, c, orch, conn, logger)

		c.Close(websocket.StatusNormalClosure, "")
	}
}

// readPlayerMessages loops on inbound frames. Malformed frames after
// identification get a diagnostic and the connection stays open.
func readPlayerMessages(ctx context.Context, c *websocket.Conn, orch *live.Orchestrator, conn *live.PlayerConn, logger *logrus.Logger) {
	for {
		typ, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				logger.Infof("player %q closed the connection", conn.Name)
			} else if !strings.Contains(err.Error(), "context canceled") {
				logger.Warnf("player %q read error: %v", conn.Name, err)
			}
			return
		}
		if typ != websocket.MessageText {
			continue
		}

		var msg playerMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Warnf("invalid json from player %q: %v", conn.Name, err)
			sendWsError(c, "invalid JSON")
			continue
		}

		switch msg.Type {
		case "answer":
			if err := orch.RecordAnswer(ctx, conn.Name, msg.Answer); err != nil {
				logger.Warnf("failed to record answer from %q: %v", conn.Name, err)
			}
		case "ping":
			sendWsMessage(c, map[string]string{"type": "pong"})
		default:
			sendWsError(c, "unknown message type: "+msg.Type)
		}
	}
}

// SpectatorWSHandler upgrades a spectator connection. Spectators are
// anonymous and always accepted; any inbound frame refreshes their
// liveness, and a quiet peer is dropped after the read timeout.
func SpectatorWSHandler(logger *logrus.Logger, orch *live.Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			logger.Warnf("spectator websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		sock := &wsSocket{c: c}
		conn := orch.ConnectSpectator(sock)
		defer orch.DisconnectSpectator(conn.ID)

		sendSnapshot(r.Context(), logger, sock, func() (interface{}, error) {
			return orch.SpectatorSnapshot(r.Context())
		})

		for {
			readCtx, cancel := context.WithTimeout(r.Context(), spectatorReadTimeout)
			_, _, err := c.Read(readCtx)
			cancel()
			if err != nil {
				status := websocket.CloseStatus(err)
				if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
					logger.Infof("spectator %s closed the connection", conn.ID)
				} else {
					logger.Infof("spectator %s inactive or gone: %v", conn.ID, err)
				}
				return
			}
			orch.TouchSpectator(conn.ID)
		}
	}
}

// sendSnapshot delivers the initial state payload to a fresh client.
// Failure is non-fatal; the next broadcast will catch them up.
func sendSnapshot(ctx context.Context, logger *logrus.Logger, sock *wsSocket, build func() (interface{}, error)) {
	snap, err := build()
	if err != nil {
		logger.Warnf("failed to build initial snapshot: %v", err)
		return
	}
	data, err := json.Marshal(snap)
	if err != nil {
		logger.Errorf("failed to marshal initial snapshot: %v", err)
		return
	}
	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	if err := sock.Write(writeCtx, data); err != nil {
		logger.Warnf("failed to send initial snapshot: %v", err)
	}
}

// sendWsMessage marshals a message and writes it with a bounded
// timeout. Errors are left for the read loop to detect.
func sendWsMessage(c *websocket.Conn, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	_ = c.Write(ctx, websocket.MessageText, data)
}

// sendWsError sends a structured error diagnostic to the client.
func sendWsError(c *websocket.Conn, errorMsg string) {
	sendWsMessage(c, map[string]interface{}{
		"type":    "error",
		"message": errorMsg,
	})
}
