package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	maxMsgSize       = 1 << 12 // 4 KB
	defaultInterval  = 1 * time.Second
	maxInterval      = 10 * time.Second
	maxIntervalMilli = 10_000
)

const (
	frameState = "state"
	frameError = "error"
)

// wsEnvelope is the frame written to stream clients.
type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// The stream is read-only and bound to the local status address, so any
// origin may subscribe.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// stateStream pushes snapshots to one client.
type stateStream struct {
	h        *Handler
	conn     *websocket.Conn
	interval time.Duration
}

// @Summary      Stream thermostat state
// @Description  Upgrades to a WebSocket and pushes {"type":"state","data":...} frames every interval (default 1s, max 10s).
// @Tags         thermostat
// @Param        interval     query  string  false  "Go duration, e.g. 2s"
// @Param        interval_ms  query  int     false  "Interval in milliseconds"
// @Router       /ws [get]
func (h *Handler) wsConnect(c *gin.Context) {
	interval := h.parseInterval(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logInfo("ws_upgrade_failed", "err", err)
		return
	}
	defer func() { _ = conn.Close() }()

	s := &stateStream{h: h, conn: conn, interval: interval}
	s.run(c.Request.Context())
}

// run sends the current snapshot, then one per interval until the client
// goes away. A failing first read closes the stream; later read failures
// are reported to the client as error frames.
func (s *stateStream) run(ctx context.Context) {
	s.conn.SetReadLimit(maxMsgSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	go s.drain(done)

	if err := s.pushState(ctx, true); err != nil {
		s.h.logInfo("ws_initial_state_failed", "err", err)
		return
	}

	ticker := time.NewTicker(s.interval)
	ping := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer ping.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ping.C:
			if err := s.write(websocket.PingMessage, nil); err != nil {
				s.h.logInfo("ws_ping_failed", "err", err)
				return
			}
		case <-ticker.C:
			if err := s.pushState(ctx, false); err != nil {
				s.h.logInfo("ws_write_failed", "err", err)
				return
			}
		}
	}
}

// pushState writes one state frame. When the snapshot cannot be loaded the
// error is returned on the first push and sent as an error frame afterwards.
func (s *stateStream) pushState(ctx context.Context, first bool) error {
	st, err := s.h.services.Monitoring.GetState(ctx)
	if err != nil {
		s.h.logError("ws_get_state_failed", "err", err)
		if first {
			return err
		}
		return s.writeJSON(wsEnvelope{Type: frameError, Error: errGetState})
	}
	return s.writeJSON(wsEnvelope{Type: frameState, Data: st})
}

func (s *stateStream) writeJSON(v interface{}) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(v)
}

func (s *stateStream) write(messageType int, data []byte) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(messageType, data)
}

// drain consumes client frames so control frames are processed and a
// disconnect is noticed.
func (s *stateStream) drain(done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			s.h.logInfo("ws_read_closed", "err", err)
			return
		}
	}
}

// parseInterval reads ?interval=2s or ?interval_ms=2000 within bounds.
func (h *Handler) parseInterval(c *gin.Context) time.Duration {
	if s := c.Query("interval"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 && d <= maxInterval {
			return d
		}
	}
	if ms := c.Query("interval_ms"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil && v > 0 && v <= maxIntervalMilli {
			return time.Duration(v) * time.Millisecond
		}
	}
	return defaultInterval
}
