package websocket

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/LilVoxy/coursework_mortality/ETL/config"
	"github.com/LilVoxy/coursework_mortality/ETL/models"
	"github.com/LilVoxy/coursework_mortality/ETL/utils"
	"github.com/LilVoxy/coursework_mortality/dashboard"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func newService(t *testing.T) *dashboard.Service {
	t.Helper()
	snapshot := models.NewTable("AÑO", "MES", "Nombre_capitulo", "DEPARTAMENTO")
	for _, raw := range [][]string{
		{"2019", "1", "Tumores", "ANTIOQUIA"},
		{"2019", "2", "Tumores", "CALDAS"},
		{"2019", "2", "Agresiones", "ANTIOQUIA"},
	} {
		row := make([]sql.NullString, len(raw))
		for i, v := range raw {
			row[i] = models.Cell(v)
		}
		snapshot.AppendRow(row)
	}

	svc, err := dashboard.NewService(context.Background(), dashboard.NewStoreFromTable(snapshot), config.DefaultDashboardConfig, utils.NewNopLogger())
	require.NoError(t, err)
	return svc
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	require.NoError(t, err)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	return conn
}

func TestSession_QueryKPIsAndPing(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx, cancel := context.WithCancel(context.Background())
	manager := NewManager(newService(t), utils.NewNopLogger())
	go manager.Run(ctx)
	server := httptest.NewServer(http.HandlerFunc(manager.HandleConnections))

	conn := dial(t, server)

	var hello Message
	require.NoError(t, conn.ReadJSON(&hello))
	assert.Equal(t, TypeCapabilities, hello.Type)
	assert.True(t, hello.Capabilities[dashboard.ViewCauses].Renderable)
	assert.False(t, hello.Capabilities[dashboard.ViewAge].Renderable)
	assert.Equal(t, 1, manager.ActiveClients())

	require.NoError(t, conn.WriteJSON(Message{Type: TypeQuery, View: "causas", Department: "ANTIOQUIA"}))
	var reply Message
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, TypeView, reply.Type)
	require.NotNil(t, reply.Result)
	assert.Equal(t, dashboard.StatusOK, reply.Result.Status)
	assert.Equal(t, [][]any{{"Tumores", float64(1)}, {"Agresiones", float64(1)}}, reply.Result.Rows)

	// каждый запрос пересчитывается заново
	require.NoError(t, conn.WriteJSON(Message{Type: TypeQuery, View: "causes"}))
	reply = Message{}
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, [][]any{{"Tumores", float64(2)}, {"Agresiones", float64(1)}}, reply.Result.Rows)

	require.NoError(t, conn.WriteJSON(Message{Type: TypeKPIs, Chapter: "Tumores"}))
	reply = Message{}
	require.NoError(t, conn.ReadJSON(&reply))
	require.NotNil(t, reply.KPIs)
	assert.Equal(t, 2, reply.KPIs.TotalRecords)

	require.NoError(t, conn.WriteJSON(Message{Type: TypePing}))
	reply = Message{}
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, TypePong, reply.Type)

	require.NoError(t, conn.WriteJSON(Message{Type: TypeQuery, View: "torta"}))
	reply = Message{}
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, TypeError, reply.Type)
	assert.Contains(t, reply.Error, "torta")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{")))
	reply = Message{}
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, TypeError, reply.Type)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return manager.ActiveClients() == 0 }, 5*time.Second, 10*time.Millisecond)

	server.Close()
	cancel()
	<-manager.Done()
}

func TestManager_ShutdownClosesSessions(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx, cancel := context.WithCancel(context.Background())
	manager := NewManager(newService(t), utils.NewNopLogger())
	go manager.Run(ctx)
	server := httptest.NewServer(http.HandlerFunc(manager.HandleConnections))
	defer server.Close()

	conn := dial(t, server)
	defer conn.Close()

	var hello Message
	require.NoError(t, conn.ReadJSON(&hello))

	cancel()
	<-manager.Done()

	// сервер закрывает сессию кадром Close
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNoStatusReceived), "ожидался кадр Close, получено %v", err)
	assert.Equal(t, 0, manager.ActiveClients())
}
