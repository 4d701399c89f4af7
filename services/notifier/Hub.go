// Copyright 2024-2025 NetCracker Technology Corporation
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package notifier
// websocket fan-out of manager updates to dashboard pages
package notifier

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/Netcracker/qubership-apihub-capture-manager/view"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const (
	sendQueueSize = 32
	writeWait     = 10 * time.Second
	pongWait      = 60 * time.Second
	pingPeriod    = pongWait * 9 / 10
	maxReadSize   = 4096
)

// Hub
// keeps connected dashboard pages and their visibility
type Hub interface {
	ServeWS(w http.ResponseWriter, r *http.Request)
	// Broadcast sends a typed message to every page, slow pages lose messages
	Broadcast(msgType string, payload interface{})
	// SetVisibilityListener is called whenever the aggregated visibility changes
	SetVisibilityListener(listener func(visible bool))
	// IsVisible is true when at least one connected page is visible
	IsVisible() bool
	// SetVisible applies a visibility reported outside the websocket to every page
	SetVisible(visible bool)
	ClientCount() int
	Close()
}

type client struct {
	conn    *websocket.Conn
	send    chan []byte
	visible bool
}

type hubImpl struct {
	upgrader websocket.Upgrader
	lock     sync.Mutex
	clients  map[*client]bool
	visible  bool
	closed   bool
	listener func(visible bool)
}

// NewHub
// allowedOrigin "*" or empty accepts any origin
func NewHub(allowedOrigin string) Hub {
	h := &hubImpl{clients: make(map[*client]bool), visible: true}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if allowedOrigin == view.EmptyString || allowedOrigin == "*" {
				return true
			}
			return r.Header.Get("Origin") == allowedOrigin
		},
	}
	return h
}

func (h *hubImpl) SetVisibilityListener(listener func(visible bool)) {
	h.lock.Lock()
	h.listener = listener
	h.lock.Unlock()
}

func (h *hubImpl) IsVisible() bool {
	h.lock.Lock()
	defer h.lock.Unlock()
	return h.visible
}

func (h *hubImpl) ClientCount() int {
	h.lock.Lock()
	defer h.lock.Unlock()
	return len(h.clients)
}

func (h *hubImpl) ServeWS(w http.ResponseWriter, r *http.Request) {
	h.lock.Lock()
	closed := h.closed
	h.lock.Unlock()
	if closed {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("WebSocket upgrade failed: %v", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendQueueSize), visible: true}
	h.register(c)
	log.Debugf("dashboard connected from %s", r.RemoteAddr)

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.readPump(c)
	}()
	h.writePump(c, done)
	h.unregister(c)
	_ = conn.Close()
	log.Debugf("dashboard from %s disconnected", r.RemoteAddr)
}

func (h *hubImpl) Broadcast(msgType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Errorf("unable to encode %s message: %v", msgType, err)
		return
	}
	frame, err := json.Marshal(view.WsMessage{Type: msgType, Payload: data})
	if err != nil {
		log.Errorf("unable to encode %s message: %v", msgType, err)
		return
	}
	h.lock.Lock()
	defer h.lock.Unlock()
	for c := range h.clients {
		select {
		case c.send <- frame:
		default:
			log.Tracef("dashboard queue full, %s message dropped", msgType)
		}
	}
}

func (h *hubImpl) Close() {
	h.lock.Lock()
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.lock.Unlock()
	for _, c := range clients {
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutdown"), time.Now().Add(writeWait))
		_ = c.conn.Close()
	}
}

func (h *hubImpl) SetVisible(visible bool) {
	h.lock.Lock()
	for c := range h.clients {
		c.visible = visible
	}
	h.lock.Unlock()
	h.recompute(visible)
}

func (h *hubImpl) register(c *client) {
	h.lock.Lock()
	h.clients[c] = true
	h.lock.Unlock()
	h.recompute(false)
}

func (h *hubImpl) unregister(c *client) {
	h.lock.Lock()
	delete(h.clients, c)
	h.lock.Unlock()
	h.recompute(false)
}

// recompute
// aggregates page visibility, fallback is used when no page is connected
func (h *hubImpl) recompute(fallback bool) {
	h.lock.Lock()
	visible := fallback
	if len(h.clients) > 0 {
		visible = false
		for c := range h.clients {
			if c.visible {
				visible = true
				break
			}
		}
	}
	changed := visible != h.visible
	h.visible = visible
	listener := h.listener
	h.lock.Unlock()
	if changed && listener != nil {
		listener(visible)
	}
}

func (h *hubImpl) readPump(c *client) {
	c.conn.SetReadLimit(maxReadSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		var msg view.WsMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debugf("WebSocket read error: %v", err)
			}
			return
		}
		switch msg.Type {
		case view.MessageVisibility:
			var payload view.VisibilityPayload
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				log.Debugf("malformed visibility message: %v", err)
				continue
			}
			h.lock.Lock()
			c.visible = payload.Visible
			h.lock.Unlock()
			h.recompute(false)
		default:
			log.Tracef("unsupported dashboard message type %q", msg.Type)
		}
	}
}

func (h *hubImpl) writePump(c *client, done chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case frame := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
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
