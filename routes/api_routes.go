// routes/api_routes.go
package routes

import (
	"github.com/LilVoxy/coursework_mortality/dashboard"
	"github.com/LilVoxy/coursework_mortality/middleware"
	"github.com/LilVoxy/coursework_mortality/websocket"
	"github.com/gorilla/mux"
)

// SetupRoutes настраивает все маршруты API и WebSocket
func SetupRoutes(router *mux.Router, service *dashboard.Service, wsManager *websocket.Manager) {
	// Применяем CORS middleware
	router.Use(middleware.CORSMiddleware)

	// WebSocket-сессии дашборда
	router.HandleFunc("/ws", wsManager.HandleConnections)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", HealthHandler(service, wsManager)).Methods("GET", "OPTIONS")
	api.HandleFunc("/views/{view}", GetViewHandler(service)).Methods("GET", "OPTIONS")
	api.HandleFunc("/kpis", GetKPIsHandler(service)).Methods("GET", "OPTIONS")
	api.HandleFunc("/options", GetOptionsHandler(service)).Methods("GET", "OPTIONS")
	api.HandleFunc("/capabilities", GetCapabilitiesHandler(service)).Methods("GET", "OPTIONS")
}
