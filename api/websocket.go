package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/smartb3/smartb3/internal/dashboard"
	"github.com/smartb3/smartb3/internal/viewmodel"
	"github.com/smartb3/smartb3/pkg/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // the dashboard binds to localhost by default
	},
}

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 1024
)

// Message types exchanged over the WebSocket.
const (
	MsgView   = "view"
	MsgError  = "error"
	MsgPing   = "ping"
	MsgPong   = "pong"
	MsgSearch = "search" // data: "text"
	MsgSelect = "select" // data: {"ticker": "PETR4", "from_sidebar": false}
	MsgSector = "sector" // data: "Petróleo"
	MsgClear  = "clear"
	MsgRetry  = "retry" // data: "comparison"
)

// inboundMessage is a command sent by the page.
type inboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// handleWebSocket upgrades HTTP connections to WebSocket. The client is
// registered before the current view is queued, so no committed change
// falls between the two; views may arrive out of order and carry a
// version for the page to compare.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := &WSClient{
		hub:    s.wsHub,
		send:   make(chan WSMessage, 256),
		direct: make(chan WSMessage, 16),
	}
	s.wsHub.Register(client)
	client.direct <- WSMessage{Type: MsgView, Data: viewmodel.Build(s.orch.Snapshot())}

	go wsWritePump(conn, client)
	go s.wsReadPump(conn, client)
}

// wsReadPump applies commands from the WebSocket connection.
func (s *Server) wsReadPump(conn *websocket.Conn, client *WSClient) {
	defer func() {
		client.hub.Unregister(client)
		conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn("websocket read failed", "error", err)
			}
			break
		}

		var msg inboundMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}
		if reply, ok := s.applyCommand(msg); ok {
			select {
			case client.direct <- reply:
			default:
			}
		}
	}
}

// applyCommand runs a page command against the orchestrator. State changes
// reach the page through the hub; only pongs and errors are replied to
// directly.
func (s *Server) applyCommand(msg inboundMessage) (WSMessage, bool) {
	fail := func(text string) (WSMessage, bool) {
		return WSMessage{Type: MsgError, Data: text}, true
	}

	switch msg.Type {
	case MsgPing:
		return WSMessage{Type: MsgPong}, true

	case MsgSearch:
		var text string
		if err := json.Unmarshal(msg.Data, &text); err != nil {
			return fail("search: data must be a string")
		}
		s.orch.SetSearchText(text)

	case MsgSelect:
		var req SelectRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			return fail("select: invalid data")
		}
		ticker := utils.NormalizeTicker(req.Ticker)
		if !utils.IsValidTicker(ticker) {
			return fail("invalid ticker " + ticker)
		}
		if _, err := s.orch.SelectTicker(ticker, req.FromSidebar); err != nil {
			return fail(err.Error())
		}

	case MsgSector:
		var sector string
		if err := json.Unmarshal(msg.Data, &sector); err != nil || sector == "" {
			return fail("sector: data must be a sector name")
		}
		s.orch.SelectSector(sector)

	case MsgClear:
		s.orch.ClearSelection()

	case MsgRetry:
		var name string
		if err := json.Unmarshal(msg.Data, &name); err != nil {
			return fail("retry: data must be a field name")
		}
		field, err := dashboard.ParseField(name)
		if err != nil {
			return fail(err.Error())
		}
		if err := s.orch.Retry(field); err != nil {
			return fail(err.Error())
		}

	default:
		return fail("unknown message type " + msg.Type)
	}
	return WSMessage{}, false
}

// wsWritePump pumps messages from the hub to the WebSocket connection.
func wsWritePump(conn *websocket.Conn, client *WSClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case msg, ok := <-client.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := conn.WriteJSON(msg); err != nil {
				return
			}

		case msg := <-client.direct:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
