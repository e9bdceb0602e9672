// internal/infrastructure/metrics/server.go
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"crypto-market-pulse-bot/pkg/logger"
)

// HealthFunc возвращает ошибку, если бот нездоров
type HealthFunc func() error

// Server — HTTP сервер /metrics и /health
type Server struct {
	srv *http.Server
}

// NewServer собирает маршруты
func NewServer(port int, m *Metrics, health HealthFunc) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if health != nil {
			if err := health(); err != nil {
				http.Error(w, err.Error(), http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return &Server{srv: &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}}
}

// Handler для httptest
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Start запускает сервер в фоне
func (s *Server) Start() {
	go func() {
		logger.Info("📈 HTTP метрики слушают %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("❌ HTTP сервер метрик: %v", err)
		}
	}()
}

// Stop останавливает сервер
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
