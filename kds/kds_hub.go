// Package kds pushes order board changes to connected dashboards over
// websockets, one subscriber set per restaurant.
package kds

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/yeremiapane/restaurant-dashboard/models"
	"github.com/yeremiapane/restaurant-dashboard/utils"
)

// Event types
const (
	EventOrderCreated = "order_created"
	EventOrderUpdate  = "order_update"
	EventMenuUpdate   = "menu_update"
	EventMenuDelete   = "menu_delete"
)

const writeWait = 5 * time.Second

type Message struct {
	Event        string      `json:"event"`
	RestaurantID string      `json:"restaurantId"`
	Data         interface{} `json:"data"`
}

// client wraps one connection; gorilla allows a single concurrent writer.
type client struct {
	conn      *websocket.Conn
	sessionID string
	writeMu   sync.Mutex
}

func (c *client) write(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub menampung semua dashboard yang sedang membuka board sebuah restoran.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*websocket.Conn]*client
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]map[*websocket.Conn]*client)}
}

// Register subscribes conn to the restaurant's board on behalf of a login
// session.
func (h *Hub) Register(restaurantID, sessionID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[restaurantID]
	if !ok {
		set = make(map[*websocket.Conn]*client)
		h.clients[restaurantID] = set
	}
	set[conn] = &client{conn: conn, sessionID: sessionID}
	utils.InfoLogger.WithFields(logrus.Fields{
		"restaurant_id": restaurantID,
		"session_id":    sessionID,
		"subscribers":   len(set),
	}).Info("board subscriber connected")
}

// Unregister melepaskan connection dan menutupnya.
func (h *Hub) Unregister(restaurantID string, conn *websocket.Conn) {
	h.mu.Lock()
	if set, ok := h.clients[restaurantID]; ok {
		delete(set, conn)
		if len(set) == 0 {
			delete(h.clients, restaurantID)
		}
	}
	h.mu.Unlock()
	conn.Close()
}

// CloseSession drops every board connection opened with sessionID, e.g.
// after logout. It returns how many were closed.
func (h *Hub) CloseSession(sessionID string) int {
	type sub struct {
		restaurantID string
		conn         *websocket.Conn
	}
	var subs []sub
	h.mu.RLock()
	for restaurantID, set := range h.clients {
		for conn, c := range set {
			if c.sessionID == sessionID {
				subs = append(subs, sub{restaurantID, conn})
			}
		}
	}
	h.mu.RUnlock()

	for _, s := range subs {
		h.Unregister(s.restaurantID, s.conn)
	}
	return len(subs)
}

// Subscribers returns how many connections watch restaurantID.
func (h *Hub) Subscribers(restaurantID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[restaurantID])
}

func (h *Hub) BroadcastOrderCreated(order models.Order) {
	h.Broadcast(Message{Event: EventOrderCreated, RestaurantID: order.RestaurantID, Data: order})
}

func (h *Hub) BroadcastOrderUpdate(order models.Order) {
	h.Broadcast(Message{Event: EventOrderUpdate, RestaurantID: order.RestaurantID, Data: order})
}

func (h *Hub) BroadcastMenuUpdate(item models.MenuItem) {
	h.Broadcast(Message{Event: EventMenuUpdate, RestaurantID: item.RestaurantID, Data: item})
}

// BroadcastMenuDelete tells boards to drop the item; Data is {"id": itemID}.
func (h *Hub) BroadcastMenuDelete(restaurantID, itemID string) {
	h.Broadcast(Message{Event: EventMenuDelete, RestaurantID: restaurantID, Data: map[string]string{"id": itemID}})
}

// Broadcast sends msg to every subscriber of msg.RestaurantID. Connections
// that fail to take the write are dropped.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Errorf("Error marshaling %s message: %v", msg.Event, err)
		return
	}

	h.mu.RLock()
	targets := make([]*client, 0, len(h.clients[msg.RestaurantID]))
	for _, c := range h.clients[msg.RestaurantID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	var failed []*websocket.Conn
	for _, c := range targets {
		if err := c.write(data); err != nil {
			utils.ErrorLogger.WithField("restaurant_id", msg.RestaurantID).
				Errorf("Error sending %s to subscriber: %v", msg.Event, err)
			failed = append(failed, c.conn)
		}
	}
	for _, conn := range failed {
		h.Unregister(msg.RestaurantID, conn)
	}
	utils.InfoLogger.Debugf("broadcast %s to %d subscribers of %s", msg.Event, len(targets)-len(failed), msg.RestaurantID)
}
