package httpin

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	usecase "launchpad/internal/application/usecase"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

// EventsHandler streams session events (attempt transitions, view updates)
// over a websocket so the presentation layer can render progress live.
type EventsHandler struct {
	uc       *usecase.SessionUsecase
	upgrader websocket.Upgrader
}

func NewEventsHandler(uc *usecase.SessionUsecase) *EventsHandler {
	return &EventsHandler{
		uc: uc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(_ *http.Request) bool {
				return true // the presentation layer is served from another origin
			},
		},
	}
}

// Serve upgrades the connection and pumps events until the client leaves or
// the session closes the subscription.
func (h *EventsHandler) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[events_ws] upgrade failed: %v", err)
		return
	}

	ch := h.uc.Subscribe()
	defer h.uc.Unsubscribe(ch)
	defer conn.Close()

	// discard client messages, but notice disconnects
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.uc.Unsubscribe(ch)
				return
			}
		}
	}()

	// initial state so the client renders without waiting for a change
	v := h.uc.View()
	if err := h.writeJSON(conn, usecase.Event{Kind: usecase.EventView, View: &v}); err != nil {
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
				return
			}
			if err := h.writeJSON(conn, ev); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (h *EventsHandler) writeJSON(conn *websocket.Conn, ev usecase.Event) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(ev); err != nil {
		log.Printf("[events_ws] write failed: %v", err)
		return err
	}
	return nil
}
