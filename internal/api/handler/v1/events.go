package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/loca-app/loca-api/internal/api/handler/v1/response"
	"github.com/loca-app/loca-api/internal/domain"
)

type EventType string

const (
	EventPhotoSubmitted   EventType = "photo_submitted"
	EventWinnerSelected   EventType = "winner_selected"
	EventContestCancelled EventType = "contest_cancelled"
	EventContestDeleted   EventType = "contest_deleted"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	sendBufferSize = 32
)

type ContestEvent struct {
	Type      EventType            `json:"type"`
	ContestID uint                 `json:"contest_id"`
	Contest   *domain.Contest      `json:"contest,omitempty"`
	Photo     *domain.ContestPhoto `json:"photo,omitempty"`
	WinnerID  uint                 `json:"winner_id,omitempty"`
	At        time.Time            `json:"at"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type subscriber struct {
	conn      *websocket.Conn
	send      chan []byte
	contestID uint
}

// EventHub owns the set of live subscribers. Only Run touches the set.
type EventHub struct {
	subscribers map[*subscriber]struct{}
	broadcast   chan ContestEvent
	register    chan *subscriber
	unregister  chan *subscriber
	done        chan struct{}
}

func NewEventHub() *EventHub {
	return &EventHub{
		subscribers: make(map[*subscriber]struct{}),
		broadcast:   make(chan ContestEvent, 64),
		register:    make(chan *subscriber),
		unregister:  make(chan *subscriber),
		done:        make(chan struct{}),
	}
}

func (h *EventHub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for sub := range h.subscribers {
				h.drop(sub)
			}
			return
		case sub := <-h.register:
			h.subscribers[sub] = struct{}{}
		case sub := <-h.unregister:
			h.drop(sub)
		case event := <-h.broadcast:
			message, err := json.Marshal(event)
			if err != nil {
				zap.L().Error("failed to encode contest event", zap.Error(err))
				continue
			}

			for sub := range h.subscribers {
				if sub.contestID != event.ContestID {
					continue
				}

				select {
				case sub.send <- message:
				default:
					h.drop(sub)
				}
			}
		}
	}
}

// Publish never blocks the request that produced the event; when the hub is
// saturated the event is dropped.
func (h *EventHub) Publish(event ContestEvent) {
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}

	select {
	case h.broadcast <- event:
	default:
		zap.L().Warn("contest event dropped", zap.String("type", string(event.Type)), zap.Uint("contestID", event.ContestID))
	}
}

func (h *EventHub) drop(sub *subscriber) {
	if _, ok := h.subscribers[sub]; ok {
		delete(h.subscribers, sub)
		close(sub.send)
	}
}

type ContestFinder interface {
	GetContest(ctx context.Context, id uint) (domain.Contest, error)
}

type EventHandler struct {
	hub      *EventHub
	contests ContestFinder
}

func NewEventHandler(hub *EventHub, contests ContestFinder) *EventHandler {
	return &EventHandler{
		hub:      hub,
		contests: contests,
	}
}

// HandleContestEvents godoc
// @Summary      Stream live events of a contest
// @Description  Upgrades to a WebSocket and pushes submission, selection, cancellation and deletion events as JSON.
// @Tags         contests
// @Produce      json
// @Param        contestID  path      int  true  "contest id"
// @Success      101        {string}  string  "Switching Protocols to WebSocket"
// @Failure      400        {object}  response.Err
// @Failure      404        {object}  response.Err
// @Failure      500        {object}  response.Err
// @Router       /contests/{contestID}/events [get]
func (h *EventHandler) HandleContestEvents(ctx *gin.Context) {
	contestID, respErr := parseID(ctx, "contestID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if _, err := h.contests.GetContest(ctx.Request.Context(), contestID); err != nil {
		response.RenderErr(ctx, serviceErr("HandleContestEvents -> h.contests.GetContest", err))
		return
	}

	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		zap.L().Warn("websocket upgrade failed", zap.String("requestID", requestid.Get(ctx)), zap.Error(err))
		return
	}

	sub := &subscriber{
		conn:      conn,
		send:      make(chan []byte, sendBufferSize),
		contestID: contestID,
	}
	select {
	case h.hub.register <- sub:
	case <-h.hub.done:
		conn.Close()
		return
	}

	go sub.writePump()
	go sub.readPump(h.hub)
}

func (s *subscriber) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case message, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump only drains control frames; subscribers never send data.
func (s *subscriber) readPump(hub *EventHub) {
	defer func() {
		select {
		case hub.unregister <- s:
		case <-hub.done:
		}
		s.conn.Close()
	}()

	s.conn.SetReadLimit(512)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				zap.L().Debug("contest event stream closed", zap.Uint("contestID", s.contestID), zap.Error(err))
			}
			return
		}
	}
}
