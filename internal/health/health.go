package health

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/nats-io/nats.go"
)

// Status 健康状态
type Status struct {
	NATS string `json:"nats"`
}

// Checker 健康检查器
type Checker struct {
	nc *nats.Conn
}

// NewChecker 创建健康检查器
func NewChecker(nc *nats.Conn) *Checker {
	return &Checker{nc: nc}
}

// Check 执行健康检查
func (h *Checker) Check(ctx context.Context) *Status {
	status := &Status{NATS: "disconnected"}
	if h.nc.IsConnected() {
		status.NATS = "connected"
	}
	return status
}

// IsHealthy 整体是否健康
func (h *Checker) IsHealthy(ctx context.Context) bool {
	return h.nc.IsConnected()
}

// ServeHTTP 实现 http.Handler
func (h *Checker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status := h.Check(r.Context())

	w.Header().Set("Content-Type", "application/json")
	if status.NATS != "connected" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := json.NewEncoder(w).Encode(status); err != nil {
		http.Error(w, "encode failed", http.StatusInternalServerError)
	}
}
