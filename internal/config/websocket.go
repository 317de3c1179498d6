package config

import (
	"net/http"
	"os"
	"strings"

	"github.com/gorilla/websocket"
)

type WebSocket struct {
	Upgrader websocket.Upgrader
}

// NewWebSocket accepts every origin unless WS_ALLOWED_ORIGINS lists the
// permitted hosts, comma separated.
func NewWebSocket() (*WebSocket, error) {
	allowed := map[string]bool{}
	if s, ok := os.LookupEnv("WS_ALLOWED_ORIGINS"); ok {
		for _, origin := range strings.Split(s, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				allowed[origin] = true
			}
		}
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if len(allowed) == 0 {
				return true
			}
			return allowed[r.Header.Get("Origin")]
		},
	}

	return &WebSocket{Upgrader: upgrader}, nil
}
