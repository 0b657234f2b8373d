// websocket/client.go
package websocket

import (
	"encoding/json"

	"github.com/LilVoxy/coursework_mortality/dashboard"
)

// send ставит сообщение в очередь клиента. Возвращает false, если клиент закрыт
// или не успевает читать.
func (c *Client) send(msg Message) bool {
	data, err := json.Marshal(msg)
	if err != nil {
		c.manager.logger.Error("Ошибка кодирования сообщения для клиента %s: %v", c.ID, err)
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- data:
		return true
	default:
		c.manager.logger.Warn("Очередь клиента %s переполнена, сообщение %s отброшено", c.ID, msg.Type)
		return false
	}
}

// close закрывает очередь клиента; writePump после этого закрывает соединение
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}

// handle отвечает на одно сообщение клиента. Каждый запрос пересчитывается заново.
func (c *Client) handle(msg Message) {
	switch msg.Type {
	case TypePing:
		c.send(Message{Type: TypePong})

	case TypeQuery:
		view, ok := dashboard.ParseView(msg.View)
		if !ok {
			c.send(Message{Type: TypeError, Error: "Vista desconocida: " + msg.View})
			return
		}
		result := c.manager.service.Query(view, msg.Filter())
		c.send(Message{Type: TypeView, Result: &result})

	case TypeKPIs:
		kpis := c.manager.service.KPIs(msg.Filter())
		c.send(Message{Type: TypeKPIs, KPIs: &kpis})

	default:
		c.send(Message{Type: TypeError, Error: "Tipo de mensaje desconocido: " + msg.Type})
	}
}
