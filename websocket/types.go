// websocket/types.go
package websocket

import (
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/LilVoxy/coursework_mortality/ETL/utils"
	"github.com/LilVoxy/coursework_mortality/dashboard"
	"github.com/gorilla/websocket"
)

// Message - сообщение сессии дашборда в обе стороны.
// Клиент присылает query/kpis/ping, сервер отвечает view/kpis/pong/error.
type Message struct {
	Type         string                 `json:"type"`
	View         string                 `json:"view,omitempty"`
	Department   string                 `json:"departamento,omitempty"`
	Chapter      string                 `json:"causa,omitempty"`
	Result       *dashboard.ViewResult  `json:"result,omitempty"`
	KPIs         *dashboard.KPIs        `json:"kpis,omitempty"`
	Capabilities dashboard.Capabilities `json:"capabilities,omitempty"`
	Error        string                 `json:"error,omitempty"`
}

// Filter возвращает фильтр дашборда из полей сообщения
func (m Message) Filter() dashboard.Filter {
	return dashboard.Filter{Department: m.Department, Chapter: m.Chapter}
}

// Клиент WebSocket
type Client struct {
	ID     string
	Socket *websocket.Conn
	Send   chan []byte

	manager *Manager
	mu      sync.Mutex
	closed  bool
}

// Менеджер WebSocket-сессий дашборда
type Manager struct {
	Clients    map[string]*Client
	Register   chan *Client
	Unregister chan *Client

	service *dashboard.Service
	logger  *utils.ETLLogger
	active  atomic.Int64
	done    chan struct{}
}

// Конфигурация WebSocket-соединения
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // дашборд доступен с любого источника, как и HTTP API
	},
}
