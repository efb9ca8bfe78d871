package web

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// WSMessage WebSocket消息结构
type WSMessage struct {
	Type      string      `json:"type"` // connected / score_update / scanner_match
	FixtureID int         `json:"fixture_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

// Client WebSocket客户端
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	types      map[string]bool // 消息类型过滤器
	fixtureIDs map[int]bool    // 比赛ID过滤器
}

// Hub WebSocket Hub
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan *WSMessage
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// NewHub 创建新的Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan *WSMessage, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run 运行Hub
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			log.Printf("Client registered. Total clients: %d", len(h.clients))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			log.Printf("Client unregistered. Total clients: %d", len(h.clients))

		case message := <-h.broadcast:
			// 读锁阶段只投递,发送缓冲已满的客户端先记下,
			// 持写锁统一摘除,不在遍历中改动 clients
			var dead []*Client
			h.mu.RLock()
			for client := range h.clients {
				if !client.shouldReceive(message) {
					continue
				}

				select {
				case client.send <- h.marshalMessage(message):
				default:
					dead = append(dead, client)
				}
			}
			h.mu.RUnlock()

			if len(dead) > 0 {
				h.mu.Lock()
				for _, client := range dead {
					if _, ok := h.clients[client]; ok {
						delete(h.clients, client)
						close(client.send)
					}
				}
				h.mu.Unlock()
			}
		}
	}
}

// Broadcast 广播消息 (实现轮询协调器的 Broadcaster 接口)
func (h *Hub) Broadcast(message interface{}) {
	// 如果是WSMessage类型,直接使用
	if wsMsg, ok := message.(*WSMessage); ok {
		h.broadcast <- wsMsg
		return
	}

	// 如果是map类型,转换为WSMessage
	if msgMap, ok := message.(map[string]interface{}); ok {
		wsMsg := &WSMessage{}

		if v, ok := msgMap["type"].(string); ok {
			wsMsg.Type = v
		}
		if v, ok := msgMap["fixture_id"].(int); ok {
			wsMsg.FixtureID = v
		}
		if v, ok := msgMap["data"]; ok {
			wsMsg.Data = v
		}

		h.broadcast <- wsMsg
	}
}

// marshalMessage 序列化消息
func (h *Hub) marshalMessage(message *WSMessage) []byte {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Failed to marshal message: %v", err)
		return []byte("{}")
	}
	return data
}

// shouldReceive 检查客户端是否应该接收消息
func (c *Client) shouldReceive(message *WSMessage) bool {
	// 如果没有设置过滤器,接收所有消息
	if len(c.types) == 0 && len(c.fixtureIDs) == 0 {
		return true
	}

	// 检查消息类型过滤器
	if len(c.types) > 0 {
		if _, ok := c.types[message.Type]; !ok {
			return false
		}
	}

	// 检查比赛ID过滤器
	if len(c.fixtureIDs) > 0 {
		if message.FixtureID == 0 {
			return false
		}
		if _, ok := c.fixtureIDs[message.FixtureID]; !ok {
			return false
		}
	}

	return true
}

// readPump 读取客户端消息
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		// 处理客户端消息(设置过滤器等)
		c.handleMessage(message)
	}
}

// writePump 向客户端写入消息
func (c *Client) writePump() {
	defer func() {
		c.conn.Close()
	}()

	for {
		message, ok := <-c.send
		if !ok {
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}

		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}

// handleMessage 处理客户端发送的消息
func (c *Client) handleMessage(message []byte) {
	var msg map[string]interface{}
	if err := json.Unmarshal(message, &msg); err != nil {
		log.Printf("Failed to unmarshal client message: %v", err)
		return
	}

	msgType, ok := msg["type"].(string)
	if !ok {
		return
	}

	switch msgType {
	case "subscribe":
		// 订阅特定消息类型
		if types, ok := msg["message_types"].([]interface{}); ok {
			c.types = make(map[string]bool)
			for _, t := range types {
				if messageType, ok := t.(string); ok {
					c.types[messageType] = true
				}
			}
		}

		// 订阅特定比赛
		if fixtureIDs, ok := msg["fixture_ids"].([]interface{}); ok {
			c.fixtureIDs = make(map[int]bool)
			for _, f := range fixtureIDs {
				// JSON 数字解码为 float64
				if fixtureID, ok := f.(float64); ok {
					c.fixtureIDs[int(fixtureID)] = true
				}
			}
		}

		log.Printf("Client subscribed with types: %v, fixtures: %v", c.types, c.fixtureIDs)

	case "unsubscribe":
		// 取消订阅
		c.types = make(map[string]bool)
		c.fixtureIDs = make(map[int]bool)
		log.Println("Client unsubscribed")
	}
}
