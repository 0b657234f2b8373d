// websocket/manager.go
package websocket

import (
	"context"

	"github.com/LilVoxy/coursework_mortality/ETL/utils"
	"github.com/LilVoxy/coursework_mortality/dashboard"
)

// Создание нового менеджера WebSocket-сессий
func NewManager(service *dashboard.Service, logger *utils.ETLLogger) *Manager {
	return &Manager{
		Clients:    make(map[string]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		service:    service,
		logger:     logger,
		done:       make(chan struct{}),
	}
}

// Run обслуживает регистрацию клиентов до отмены ctx, затем закрывает все сессии
func (manager *Manager) Run(ctx context.Context) {
	defer close(manager.done)

	for {
		select {
		case client := <-manager.Register:
			manager.Clients[client.ID] = client
			manager.active.Add(1)
			manager.logger.Info("Клиент %s подключился", client.ID)

		case client := <-manager.Unregister:
			if _, ok := manager.Clients[client.ID]; ok {
				delete(manager.Clients, client.ID)
				client.close()
				manager.active.Add(-1)
				manager.logger.Info("Клиент %s отключился", client.ID)
			}

		case <-ctx.Done():
			for id, client := range manager.Clients {
				client.close()
				delete(manager.Clients, id)
			}
			manager.active.Store(0)
			manager.logger.Info("Менеджер WebSocket остановлен")
			return
		}
	}
}

// Done закрывается после остановки Run
func (manager *Manager) Done() <-chan struct{} {
	return manager.done
}

// ActiveClients возвращает число открытых сессий
func (manager *Manager) ActiveClients() int {
	return int(manager.active.Load())
}

func (manager *Manager) register(client *Client) bool {
	select {
	case manager.Register <- client:
		return true
	case <-manager.done:
		return false
	}
}

func (manager *Manager) unregister(client *Client) {
	select {
	case manager.Unregister <- client:
	case <-manager.done:
	}
}
