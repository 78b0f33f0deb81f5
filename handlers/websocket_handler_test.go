package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/pedrowallacee/palpitarena-v2/events"
)

func newWebSocketServer(t *testing.T, allowed []string) string {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := events.NewHub(logger)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	router := chi.NewRouter()
	router.Get("/ws/championships/{championshipID}", NewWebSocketHandler(hub, allowed, logger).ServeWs)
	srv := httptest.NewServer(router)
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/championships/1"
}

func TestServeWs_OriginCheck(t *testing.T) {
	tests := []struct {
		name       string
		allowed    []string
		origin     string
		wantStatus int
	}{
		{name: "listed origin", allowed: []string{"https://palpitarena.app"}, origin: "https://palpitarena.app", wantStatus: http.StatusSwitchingProtocols},
		{name: "foreign origin", allowed: []string{"https://palpitarena.app"}, origin: "https://evil.example", wantStatus: http.StatusForbidden},
		{name: "no origin header", allowed: []string{"https://palpitarena.app"}, wantStatus: http.StatusSwitchingProtocols},
		{name: "wildcard", allowed: []string{"*"}, origin: "https://evil.example", wantStatus: http.StatusSwitchingProtocols},
		{name: "nothing configured", origin: "https://evil.example", wantStatus: http.StatusSwitchingProtocols},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url := newWebSocketServer(t, tt.allowed)
			header := http.Header{}
			if tt.origin != "" {
				header.Set("Origin", tt.origin)
			}

			conn, resp, err := websocket.DefaultDialer.Dial(url, header)
			if conn != nil {
				conn.Close()
			}
			if resp == nil {
				t.Fatalf("Dial() error = %v, no response", err)
			}
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d (err %v)", resp.StatusCode, tt.wantStatus, err)
			}
		})
	}
}
