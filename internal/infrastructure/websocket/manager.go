package websocket

import (
	"context"
	"sync"

	"github.com/gorilla/websocket"

	"campusmarket/internal/infrastructure/presence"
	"campusmarket/pkg/logger"
)

// Client represents one connected websocket peer.
type Client struct {
	UserID       string
	Conn         *websocket.Conn
	Send         chan []byte
	ActiveThread string
}

// Manager owns all active websocket connections and the mapping of thread
// rooms to connected participants. Connect and disconnect events feed the
// presence tracker.
type Manager struct {
	clients       map[string]*Client
	threadClients map[string]map[string]bool
	Register      chan *Client
	Unregister    chan *Client
	presence      *presence.Tracker
	mutex         sync.RWMutex

	// OnMessage is invoked for every inbound frame. Set once before Start.
	OnMessage func(client *Client, data []byte)
}

func NewManager(tracker *presence.Tracker) *Manager {
	return &Manager{
		clients:       make(map[string]*Client),
		threadClients: make(map[string]map[string]bool),
		Register:      make(chan *Client),
		Unregister:    make(chan *Client),
		presence:      tracker,
	}
}

// Start runs the manager's main loop in a goroutine.
func (m *Manager) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case client := <-m.Register:
				m.mutex.Lock()
				m.clients[client.UserID] = client
				m.mutex.Unlock()
				m.presence.SetOnline(client.UserID)
				logger.Info("Client registered: %s", client.UserID)

			case client := <-m.Unregister:
				m.mutex.Lock()
				if _, ok := m.clients[client.UserID]; ok {
					delete(m.clients, client.UserID)
					close(client.Send)
				}
				for _, members := range m.threadClients {
					delete(members, client.UserID)
				}
				m.mutex.Unlock()
				m.presence.SetOffline(client.UserID)
				logger.Info("Client unregistered: %s", client.UserID)

			case <-ctx.Done():
				return
			}
		}
	}()
}

// SendToUser delivers a payload to one user if they are connected.
func (m *Manager) SendToUser(userID string, payload []byte) {
	if payload == nil {
		return
	}

	m.mutex.RLock()
	client, ok := m.clients[userID]
	m.mutex.RUnlock()

	if !ok {
		return
	}

	select {
	case client.Send <- payload:
	default:
		logger.Warn("Send channel full for client %s, dropping connection", userID)
		m.RemoveClient(userID)
	}
}

// BroadcastToThread delivers a payload to every connected member of a thread
// room except exceptUserID (pass "" to include everyone).
func (m *Manager) BroadcastToThread(threadID string, payload []byte, exceptUserID string) {
	m.mutex.RLock()
	var targets []string
	for userID := range m.threadClients[threadID] {
		if userID != exceptUserID {
			targets = append(targets, userID)
		}
	}
	m.mutex.RUnlock()

	for _, userID := range targets {
		m.SendToUser(userID, payload)
	}
}

// JoinThread subscribes a connected user to a thread room.
func (m *Manager) JoinThread(threadID, userID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	members, ok := m.threadClients[threadID]
	if !ok {
		members = make(map[string]bool)
		m.threadClients[threadID] = members
	}
	members[userID] = true
}

// LeaveThread unsubscribes a user from a thread room.
func (m *Manager) LeaveThread(threadID, userID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	delete(m.threadClients[threadID], userID)
	if len(m.threadClients[threadID]) == 0 {
		delete(m.threadClients, threadID)
	}
}

// HasOnlineMember reports whether anyone other than exceptUserID currently
// has the thread room open.
func (m *Manager) HasOnlineMember(threadID, exceptUserID string) bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for userID := range m.threadClients[threadID] {
		if userID != exceptUserID {
			return true
		}
	}
	return false
}

func (m *Manager) RemoveClient(userID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if client, ok := m.clients[userID]; ok {
		delete(m.clients, userID)
		close(client.Send)
	}
	for _, members := range m.threadClients {
		delete(members, userID)
	}
}

// ReadPump reads frames from the connection and hands them to OnMessage.
func (c *Client) ReadPump(m *Manager) {
	defer func() {
		m.Unregister <- c
		c.Conn.Close()
	}()

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Error("Websocket read error for %s: %v", c.UserID, err)
			}
			break
		}

		if m.OnMessage != nil {
			m.OnMessage(c, data)
		}
	}
}

// WritePump drains the send channel onto the connection.
func (c *Client) WritePump() {
	defer c.Conn.Close()

	for {
		payload, ok := <-c.Send
		if !ok {
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}

		if err := c.Conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			logger.Error("Websocket write error for %s: %v", c.UserID, err)
			return
		}
	}
}
