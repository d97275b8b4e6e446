package handlers

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"patient-portal-server/internal/apperr"
	"patient-portal-server/internal/live"
	"patient-portal-server/internal/models"
	"patient-portal-server/internal/notice"
	"patient-portal-server/internal/store"
	"patient-portal-server/internal/utils"
)

// Stream event types.
const (
	EventResponses = "responses"
	EventNotice    = "notice"
	EventError     = "error"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// StreamEvent is one push to a live client. Data is the full response list,
// the current notice (null once dismissed) or an error.
type StreamEvent struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// StreamHandler pushes the live response list and notices over SSE or
// WebSocket.
type StreamHandler struct {
	Hub       *live.Hub
	Responses *store.ResponseStore
	Board     *notice.Board
	Log       *zap.Logger
	upgrader  websocket.Upgrader
}

// NewStreamHandler creates a new StreamHandler. Upgrades are accepted from
// origin, or from any origin when origin is empty.
func NewStreamHandler(hub *live.Hub, responses *store.ResponseStore, board *notice.Board, origin string, log *zap.Logger) *StreamHandler {
	return &StreamHandler{
		Hub:       hub,
		Responses: responses,
		Board:     board,
		Log:       log.Named("stream"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				o := r.Header.Get("Origin")
				return origin == "" || o == "" || o == origin
			},
		},
	}
}

// events merges response snapshots and notice changes for owner into one
// channel, closed when ctx is done.
func (h *StreamHandler) events(ctx context.Context, owner string, opts store.ListOptions) <-chan StreamEvent {
	snapshots := live.Observe(ctx, h.Hub, live.ResponseTopic(owner), func(ctx context.Context) ([]models.FormResponse, error) {
		return h.Responses.List(ctx, owner, opts)
	})
	notices := h.Hub.Subscribe(live.NoticeTopic(owner))

	out := make(chan StreamEvent)
	go func() {
		defer close(out)
		defer h.Hub.Unsubscribe(notices)

		for {
			var ev StreamEvent
			select {
			case snap, ok := <-snapshots:
				if !ok {
					return
				}
				if snap.Err != nil {
					h.Log.Warn("live query failed", zap.String("owner", owner), zap.Error(snap.Err))
					ev = errorEvent(snap.Err)
				} else {
					ev = StreamEvent{Type: EventResponses, Data: snap.Items}
				}
			case <-notices.C:
				ev = StreamEvent{Type: EventNotice, Data: h.currentNotice(owner)}
			case <-ctx.Done():
				return
			}

			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func (h *StreamHandler) currentNotice(owner string) *notice.Notice {
	if n, ok := h.Board.Current(owner); ok {
		return &n
	}
	return nil
}

func errorEvent(err error) StreamEvent {
	appErr := apperr.From(err)
	return StreamEvent{Type: EventError, Data: utils.ResponseData{
		Status:    appErr.Status(),
		Message:   "An error occurred",
		Error:     appErr.Message,
		Kind:      appErr.Kind,
		Fields:    appErr.Fields,
		Retryable: appErr.Retryable,
	}}
}

// ServeSSE streams events as server-sent events until the client goes away.
func (h *StreamHandler) ServeSSE(c *gin.Context) {
	owner, ok := currentOwner(c)
	if !ok {
		return
	}
	opts, err := listOptions(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	ctx := c.Request.Context()
	events := h.events(ctx, owner, opts)

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	if n := h.currentNotice(owner); n != nil {
		c.SSEvent(EventNotice, n)
	}
	c.Stream(func(w io.Writer) bool {
		ev, ok := <-events
		if !ok {
			return false
		}
		c.SSEvent(ev.Type, ev.Data)
		return true
	})
}

// ServeWS carries the same events over a WebSocket. Client messages are
// ignored; closing the socket ends the stream.
func (h *StreamHandler) ServeWS(c *gin.Context) {
	owner, ok := currentOwner(c)
	if !ok {
		return
	}
	opts, err := listOptions(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	go h.readPump(conn, cancel)

	events := h.events(ctx, owner, opts)
	if n := h.currentNotice(owner); n != nil {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(StreamEvent{Type: EventNotice, Data: n}); err != nil {
			return
		}
	}
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump drains the connection so control frames are handled, and
// cancels the stream when the peer goes away.
func (h *StreamHandler) readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
