// Package realtime 通过 WebSocket 向前端推送任务进度等事件
package realtime

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/BerniceZTT/salesiq/metrics"
	"github.com/BerniceZTT/salesiq/utils"
)

const (
	// 写超时
	writeWait = 10 * time.Second
	// 等待 pong 的时间
	pongWait = 60 * time.Second
	// ping 周期，必须小于 pongWait
	pingPeriod = (pongWait * 9) / 10
	// 客户端消息大小上限，只接收控制消息
	maxMessageSize = 4 * 1024
	// 每个客户端的发送缓冲
	sendBuffer = 64
)

// Event 推送给前端的消息
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
	Time time.Time   `json:"time"`
}

// Client 一个WebSocket连接
type Client struct {
	ID     string
	hub    *Hub
	socket *websocket.Conn
	send   chan []byte
}

// Hub 维护连接并广播事件
type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
	stopOnce   sync.Once
	clients    map[string]*Client
	upgrader   websocket.Upgrader
}

// NewHub 创建 Hub，allowedOrigins 为空时允许任意来源
func NewHub(allowedOrigins []string) *Hub {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
		clients:    make(map[string]*Client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || len(origins) == 0 || origins[origin]
			},
		},
	}
}

// Run 处理注册、注销和广播，直到 Stop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client.ID] = client
			metrics.WebsocketClients.Inc()
			utils.Logger.Debug().Str("client", client.ID).Msg("WebSocket客户端已连接")

		case client := <-h.unregister:
			h.remove(client)

		case message := <-h.broadcast:
			for _, client := range h.clients {
				select {
				case client.send <- message:
				default:
					// 发送缓冲已满，断开慢客户端
					h.remove(client)
				}
			}

		case <-h.done:
			for _, client := range h.clients {
				h.remove(client)
			}
			return
		}
	}
}

func (h *Hub) remove(client *Client) {
	if _, ok := h.clients[client.ID]; !ok {
		return
	}
	delete(h.clients, client.ID)
	close(client.send)
	metrics.WebsocketClients.Dec()
	utils.Logger.Debug().Str("client", client.ID).Msg("WebSocket客户端已断开")
}

// Stop 关闭所有连接并停止 Run
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// Publish 广播事件，Hub 已停止或缓冲已满时丢弃
func (h *Hub) Publish(event string, payload interface{}) {
	message, err := json.Marshal(Event{Type: event, Data: payload, Time: time.Now()})
	if err != nil {
		utils.Logger.Error().Err(err).Str("event", event).Msg("序列化推送事件失败")
		return
	}
	select {
	case <-h.done:
	case h.broadcast <- message:
	default:
		utils.Logger.Warn().Str("event", event).Msg("推送队列已满，丢弃事件")
	}
}

// ServeWS 升级HTTP连接并启动读写循环
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) error {
	socket, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	client := &Client{
		ID:     uuid.NewString(),
		hub:    h,
		socket: socket,
		send:   make(chan []byte, sendBuffer),
	}

	select {
	case h.register <- client:
	case <-h.done:
		_ = socket.Close()
		return nil
	}

	go client.writePump()
	go client.readPump()
	return nil
}

// readPump 只处理控制帧，客户端断开时注销
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.socket.Close()
	}()

	c.socket.SetReadLimit(maxMessageSize)
	_ = c.socket.SetReadDeadline(time.Now().Add(pongWait))
	c.socket.SetPongHandler(func(string) error {
		return c.socket.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.socket.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				utils.Logger.Warn().Err(err).Str("client", c.ID).Msg("WebSocket读取失败")
			}
			return
		}
	}
}

// writePump 发送事件和心跳
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.socket.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.socket.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.socket.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
