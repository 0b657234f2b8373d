// websocket/read_pump.go
package websocket

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
)

// readPump читает запросы клиента и отвечает на них по одному
func (c *Client) readPump() {
	defer func() {
		c.manager.unregister(c)
		c.Socket.Close()
		c.manager.logger.Debug("Завершение readPump для клиента %s", c.ID)
	}()

	// Устанавливаем параметры подключения
	c.Socket.SetReadLimit(maxMessageSize)
	c.Socket.SetReadDeadline(time.Now().Add(pongWait))
	c.Socket.SetPongHandler(func(string) error {
		c.Socket.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.Socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.manager.logger.Warn("Клиент %s: %v", c.ID, err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.manager.logger.Debug("Ошибка декодирования сообщения клиента %s: %v", c.ID, err)
			c.send(Message{Type: TypeError, Error: "Mensaje inválido"})
			continue
		}

		c.handle(msg)
	}
}
