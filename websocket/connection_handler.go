// websocket/connection_handler.go
package websocket

import (
	"net/http"

	"github.com/google/uuid"
)

// HandleConnections открывает сессию дашборда.
// Новый клиент сразу получает доступность представлений.
func (manager *Manager) HandleConnections(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		manager.logger.Error("Ошибка при установке WebSocket-соединения: %v", err)
		return
	}

	client := &Client{
		ID:      uuid.NewString(),
		Socket:  conn,
		Send:    make(chan []byte, sendBufferSize),
		manager: manager,
	}

	if !manager.register(client) {
		manager.logger.Warn("Сервер останавливается, соединение с %s отклонено", r.RemoteAddr)
		conn.Close()
		return
	}
	manager.logger.Debug("Сессия %s открыта с адреса %s", client.ID, r.RemoteAddr)

	client.send(Message{Type: TypeCapabilities, Capabilities: manager.service.Capabilities()})

	// Запускаем горутины для чтения и отправки сообщений
	go client.writePump()
	go client.readPump()
}
