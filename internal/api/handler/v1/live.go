package v1

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/propexpo/stall-booking-api/internal/api/handler/v1/response"
	"github.com/propexpo/stall-booking-api/internal/domain"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var errLiveFeedBusy = errors.New("live feed is busy, event dropped")

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origins are enforced by the CORS middleware and the bearer token.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type EventFinder interface {
	FindByID(ctx context.Context, id uint) (domain.Event, error)
}

type liveClient struct {
	conn    *websocket.Conn
	send    chan []byte
	eventID uint
}

// LiveHandler streams inventory events to websocket subscribers of each event,
// so builder screens can drop stalls that were just taken. It is also a
// service.Notifier.
type LiveHandler struct {
	events EventFinder

	clients      map[uint]map[*liveClient]struct{}
	clientsMutex sync.RWMutex
	broadcast    chan domain.InventoryEvent
	register     chan *liveClient
	unregister   chan *liveClient
	done         chan struct{}
}

func NewLiveHandler(events EventFinder) *LiveHandler {
	return &LiveHandler{
		events:     events,
		clients:    make(map[uint]map[*liveClient]struct{}),
		broadcast:  make(chan domain.InventoryEvent, 64),
		register:   make(chan *liveClient),
		unregister: make(chan *liveClient),
		done:       make(chan struct{}),
	}
}

// Run dispatches until ctx is done, then disconnects every subscriber.
func (h *LiveHandler) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.clientsMutex.Lock()
			for eventID, subs := range h.clients {
				for client := range subs {
					close(client.send)
				}
				delete(h.clients, eventID)
			}
			h.clientsMutex.Unlock()
			return
		case client := <-h.register:
			h.clientsMutex.Lock()
			if h.clients[client.eventID] == nil {
				h.clients[client.eventID] = make(map[*liveClient]struct{})
			}
			h.clients[client.eventID][client] = struct{}{}
			h.clientsMutex.Unlock()
		case client := <-h.unregister:
			h.clientsMutex.Lock()
			h.remove(client)
			h.clientsMutex.Unlock()
		case event := <-h.broadcast:
			message, err := json.Marshal(event)
			if err != nil {
				zap.L().Error("failed to encode inventory event", zap.Error(err))
				continue
			}

			h.clientsMutex.Lock()
			for client := range h.clients[event.EventID] {
				select {
				case client.send <- message:
				default:
					// Too slow to keep up.
					h.remove(client)
				}
			}
			h.clientsMutex.Unlock()
		}
	}
}

// Publish queues event for the subscribers of its event. It never blocks the
// caller; a full queue drops the event.
func (h *LiveHandler) Publish(_ context.Context, event domain.InventoryEvent) error {
	select {
	case h.broadcast <- event:
		return nil
	default:
		return errLiveFeedBusy
	}
}

// HandleLive godoc
// @Summary      Stream inventory changes of an event
// @Description  Upgrades to a websocket that receives a JSON inventory event for every booking or stall type change of the event. Pass the bearer token as the token query parameter from browsers.
// @Tags         events
// @Produce      json
// @Param        eventID  path      int     true   "Event ID"
// @Param        token    query     string  false  "Bearer token"
// @Success      101      {object}  domain.InventoryEvent
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Router       /events/{eventID}/live [get]
// @Security     BearerAuth
func (h *LiveHandler) HandleLive(ctx *gin.Context) {
	eventID, respErr := parseIDParam(ctx, "eventID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if _, err := h.events.FindByID(ctx.Request.Context(), eventID); err != nil {
		renderServiceErr(ctx, "HandleLive -> h.events.FindByID", err)
		return
	}

	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		zap.L().Warn("websocket upgrade failed", zap.Uint("event_id", eventID), zap.Error(err))
		return
	}

	client := &liveClient{
		conn:    conn,
		send:    make(chan []byte, 16),
		eventID: eventID,
	}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump(h)
}

func (h *LiveHandler) subscribers(eventID uint) int {
	h.clientsMutex.RLock()
	defer h.clientsMutex.RUnlock()

	return len(h.clients[eventID])
}

// remove must be called with clientsMutex held.
func (h *LiveHandler) remove(client *liveClient) {
	subs, ok := h.clients[client.eventID]
	if !ok {
		return
	}
	if _, ok := subs[client]; !ok {
		return
	}

	delete(subs, client)
	close(client.send)
	if len(subs) == 0 {
		delete(h.clients, client.eventID)
	}
}

func (c *liveClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump only watches for the connection going away; subscribers do not
// send anything.
func (c *liveClient) readPump(h *LiveHandler) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				zap.L().Debug("live subscriber disconnected", zap.Uint("event_id", c.eventID), zap.Error(err))
			}
			return
		}
	}
}
