// main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LilVoxy/coursework_mortality/ETL/config"
	"github.com/LilVoxy/coursework_mortality/ETL/extractors"
	"github.com/LilVoxy/coursework_mortality/ETL/utils"
	"github.com/LilVoxy/coursework_mortality/dashboard"
	"github.com/LilVoxy/coursework_mortality/routes"
	"github.com/LilVoxy/coursework_mortality/websocket"
	"github.com/gorilla/mux"
)

func main() {
	configPtr := flag.String("config", "", "Путь к YAML-файлу конфигурации")
	snapshotPtr := flag.String("snapshot", "", "Снимок: путь к файлу или sqlite://..., mysql://... (по умолчанию из конфигурации)")
	portPtr := flag.Int("port", 0, "Порт HTTP-сервера (по умолчанию из конфигурации)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPtr)
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}
	if *snapshotPtr != "" {
		cfg.Dashboard.Snapshot = *snapshotPtr
	}
	if *portPtr != 0 {
		cfg.Dashboard.Port = *portPtr
	}

	logger := utils.NewETLLogger(cfg.EnableDetailedLogging, cfg.LogDir)
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Снимок пишет ETL с теми же настройками вывода
	store := dashboard.NewStore(cfg.Dashboard.Snapshot, extractors.ReadOptions{
		Delimiter: config.DelimiterRune(cfg.Output.Delimiter),
		Encoding:  cfg.Output.Encoding,
	}, logger.Named("store"))

	service, err := dashboard.NewService(ctx, store, cfg.Dashboard, logger.Named("dashboard"))
	if err != nil {
		logger.Close()
		log.Fatalf("Не удалось запустить дашборд: %v", err)
	}

	wsManager := websocket.NewManager(service, logger.Named("ws"))
	go wsManager.Run(ctx)

	router := mux.NewRouter()
	routes.SetupRoutes(router, service, wsManager)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Dashboard.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Запускаем сервер в отдельной горутине
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Сервер дашборда запущен на http://localhost%s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			logger.Error("Ошибка запуска сервера: %v", err)
			logger.Close()
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("Получен сигнал завершения, закрываем соединения...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ошибка остановки сервера: %v", err)
	}
	<-wsManager.Done()

	logger.Info("Сервер остановлен")
}
