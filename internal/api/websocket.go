package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/AaronLay10/WishEngine/internal/events"
)

const (
	// Number of recent events to send on connection
	recentEventsCount = 50

	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = 54 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The route sits behind basic auth.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// wsEventsHandler streams the recent events, then every new one, as JSON
// text frames.
func wsEventsHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}

	sub := events.Subscribe()
	closeConn := func() {
		events.Unsubscribe(sub)
		conn.Close()
	}

	for _, e := range events.RecentEvents(recentEventsCount) {
		if err := writeEvent(conn, e); err != nil {
			log.Debug().Err(err).Msg("ws write recent event failed")
			closeConn()
			return
		}
	}

	// Reader goroutine handles pongs and close frames.
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			closeConn()
			return

		case e, ok := <-sub:
			if !ok {
				// Hub closed the subscriber, e.g. on shutdown.
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
					time.Now().Add(writeWait))
				conn.Close()
				return
			}
			if err := writeEvent(conn, e); err != nil {
				log.Debug().Err(err).Msg("ws write event failed")
				closeConn()
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				closeConn()
				return
			}
		}
	}
}

func writeEvent(conn *websocket.Conn, e events.Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		// Skip events whose fields cannot be encoded.
		return nil
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, data)
}
