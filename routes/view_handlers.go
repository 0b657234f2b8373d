// routes/view_handlers.go
package routes

import (
	"encoding/json"
	"net/http"

	"github.com/LilVoxy/coursework_mortality/dashboard"
	"github.com/LilVoxy/coursework_mortality/websocket"
	"github.com/gorilla/mux"
)

// ErrorResponse - тело ответа с ошибкой
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse - состояние сервера дашборда
type HealthResponse struct {
	Status   string `json:"status"`
	Records  int    `json:"registros"`
	Sessions int    `json:"sesiones"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// filterFromQuery читает фильтр из параметров departamento и causa
func filterFromQuery(r *http.Request) dashboard.Filter {
	query := r.URL.Query()
	return dashboard.Filter{
		Department: query.Get("departamento"),
		Chapter:    query.Get("causa"),
	}
}

// GetViewHandler строит представление /api/views/{view}?departamento=&causa=
func GetViewHandler(service *dashboard.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := mux.Vars(r)["view"]
		view, ok := dashboard.ParseView(name)
		if !ok {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "Vista desconocida: " + name})
			return
		}
		writeJSON(w, http.StatusOK, service.Query(view, filterFromQuery(r)))
	}
}

// GetKPIsHandler возвращает сводные показатели для фильтра
func GetKPIsHandler(service *dashboard.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, service.KPIs(filterFromQuery(r)))
	}
}

// GetOptionsHandler возвращает значения выпадающих списков
func GetOptionsHandler(service *dashboard.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, service.Options())
	}
}

// GetCapabilitiesHandler возвращает доступность представлений
func GetCapabilitiesHandler(service *dashboard.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, service.Capabilities())
	}
}

// HealthHandler сообщает размер снимка и число открытых сессий
func HealthHandler(service *dashboard.Service, wsManager *websocket.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, HealthResponse{
			Status:   "ok",
			Records:  service.Snapshot().Len(),
			Sessions: wsManager.ActiveClients(),
		})
	}
}
