package websocket

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"screener-engine/internal/domain"
)

const (
	pushInterval = 5 * time.Second
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler streams the latest ranking cycle to websocket clients.
type Handler struct {
	repo     domain.ScreenerRepository
	interval time.Duration
	logger   *slog.Logger
}

func NewHandler(repo domain.ScreenerRepository, logger *slog.Logger) *Handler {
	return &Handler{
		repo:     repo,
		interval: pushInterval,
		logger:   logger,
	}
}

type message struct {
	Type  string               `json:"type"` // "ranking" or "waiting"
	Cycle *domain.RankingCycle `json:"cycle,omitempty"`
}

func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade", "error", err)
		return
	}
	defer conn.Close()

	h.logger.Info("websocket client connected", "remote", r.RemoteAddr)
	closed := h.readLoop(conn)

	var lastID string
	if !h.push(conn, &lastID, true) {
		return
	}

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !h.push(conn, &lastID, false) {
				return
			}
		case <-closed:
			h.logger.Info("websocket client disconnected", "remote", r.RemoteAddr)
			return
		case <-r.Context().Done():
			return
		}
	}
}

// push writes the latest cycle when it changed since the last write, or
// unconditionally when force is set.
func (h *Handler) push(conn *websocket.Conn, lastID *string, force bool) bool {
	cycle, ok := h.repo.LatestCycle()
	msg := message{Type: "waiting"}
	if ok {
		if !force && cycle.ID == *lastID {
			return h.ping(conn)
		}
		msg = message{Type: "ranking", Cycle: &cycle}
		*lastID = cycle.ID
	} else if !force {
		return h.ping(conn)
	}

	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(msg); err != nil {
		h.logger.Debug("websocket write", "error", err)
		return false
	}
	return true
}

func (h *Handler) ping(conn *websocket.Conn) bool {
	err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
	return err == nil
}

// readLoop drains client frames so control messages are processed and
// reports when the connection closes.
func (h *Handler) readLoop(conn *websocket.Conn) <-chan struct{} {
	done := make(chan struct{})
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	return done
}
