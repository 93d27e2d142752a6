package services

import (
	"sync"
	"time"

	"bakery-backend/config"
	"bakery-backend/models"
	"bakery-backend/utils"

	"github.com/gofiber/websocket/v2"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Типы событий, которые хаб рассылает клиентам
const (
	EventStockUpdated      = "stock.updated"
	EventStockLow          = "stock.low"
	EventDailyStockUpdated = "daily_stock.updated"
	EventPong              = "pong"
)

// StockNotifier получает уведомления о зафиксированных изменениях остатков.
// Реализация не должна блокировать вызывающего.
type StockNotifier interface {
	StockChanged(event StockEvent)
	DailyStockChanged(date string)
}

// StockEvent - состояние остатка ингредиента после изменения
type StockEvent struct {
	IngredientID uint               `json:"ingredient_id"`
	Name         string             `json:"name"`
	Unit         string             `json:"unit"`
	Quantity     decimal.Decimal    `json:"quantity"`
	MinQuantity  decimal.Decimal    `json:"min_quantity"`
	Status       models.StockStatus `json:"status"`
}

// WSMessage представляет сообщение WebSocket
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Client представляет подключенную панель администратора
type Client struct {
	Email    string
	Conn     *websocket.Conn
	Send     chan WSMessage
	Hub      *Hub
	LastPing time.Time
}

// Hub управляет всеми подключениями и рассылает события склада
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan WSMessage
	mutex      sync.RWMutex
	logger     *logrus.Logger
}

// NewHub создает новый хаб
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan WSMessage, 256),
		logger:     config.GetLogger(),
	}
}

// Run запускает хаб
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mutex.Unlock()

			h.logger.WithFields(logrus.Fields{"email": client.Email, "clients": total}).Info("websocket client connected")

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			total := len(h.clients)
			h.mutex.Unlock()

			h.logger.WithFields(logrus.Fields{"email": client.Email, "clients": total}).Info("websocket client disconnected")

		case message := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					close(client.Send)
					delete(h.clients, client)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// ClientCount возвращает число подключенных клиентов
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// StockChanged рассылает новое состояние остатка и, при необходимости, предупреждение
func (h *Hub) StockChanged(event StockEvent) {
	h.enqueue(WSMessage{Type: EventStockUpdated, Payload: event})
	if event.Status != models.StockStatusOK {
		h.enqueue(WSMessage{Type: EventStockLow, Payload: event})
	}
}

// DailyStockChanged сообщает, что дневные остатки за дату изменились
func (h *Hub) DailyStockChanged(date string) {
	h.enqueue(WSMessage{
		Type:    EventDailyStockUpdated,
		Payload: map[string]interface{}{"date": date},
	})
}

// enqueue кладет сообщение в очередь рассылки; при переполнении событие отбрасывается
func (h *Hub) enqueue(message WSMessage) {
	select {
	case h.broadcast <- message:
	default:
		h.logger.WithField("type", message.Type).Warn("websocket broadcast queue is full, event dropped")
	}
}

// HandleWebSocket обрабатывает WebSocket соединение
func (h *Hub) HandleWebSocket(c *websocket.Conn) {
	// Получаем JWT токен из query параметров
	tokenString := c.Query("token")
	if tokenString == "" {
		c.Close()
		return
	}

	claims, err := utils.ValidateJWT(tokenString)
	if err != nil {
		c.Close()
		return
	}

	client := &Client{
		Email:    claims.Email,
		Conn:     c,
		Send:     make(chan WSMessage, 256),
		Hub:      h,
		LastPing: time.Now(),
	}

	h.register <- client

	// fiber закрывает соединение после выхода из обработчика, поэтому чтение идет здесь
	go client.writePump()
	client.readPump()
}

// readPump читает сообщения из WebSocket
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(512)
	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		c.LastPing = time.Now()
		return nil
	})

	for {
		var message WSMessage
		if err := c.Conn.ReadJSON(&message); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				config.LogError(c.Hub.logger, "ws_service", "readPump", "read message", c.Email, err)
			}
			break
		}

		if message.Type == "ping" {
			c.sendDirect(WSMessage{
				Type:    EventPong,
				Payload: map[string]interface{}{"timestamp": time.Now().Unix()},
			})
		}
	}
}

// writePump записывает сообщения в WebSocket
func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteJSON(message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// sendDirect отправляет сообщение одному клиенту, не блокируясь
func (c *Client) sendDirect(message WSMessage) {
	c.Hub.mutex.RLock()
	defer c.Hub.mutex.RUnlock()
	if _, ok := c.Hub.clients[c]; !ok {
		return
	}
	select {
	case c.Send <- message:
	default:
	}
}
