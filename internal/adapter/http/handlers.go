package http

import (
	"context"
	"net/http"

	"github.com/calehr/taskbridge/internal/domain/syncrun"
	"github.com/calehr/taskbridge/internal/port/messagequeue"
	"github.com/calehr/taskbridge/internal/service"
)

// SyncRunner runs one sync pass. Implemented by service.Engine.
type SyncRunner interface {
	PerformSync(ctx context.Context, sc syncrun.Context) (*syncrun.Result, error)
}

// Pinger reports database liveness. Implemented by pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers holds the HTTP handler dependencies.
type Handlers struct {
	Mappings *service.MappingService
	Agent    *service.AgentService
	Tokens   *service.TokenService
	Sync     SyncRunner
	DB       Pinger
	Queue    messagequeue.Queue
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	NATS     string `json:"nats"`
}

// Health reports liveness of the service and its backing systems. A
// degraded dependency flips the status but keeps the endpoint at 200 so
// load balancers do not evict the instance over a transient NATS outage.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Database: "ok", NATS: "ok"}

	if h.DB != nil {
		if err := h.DB.Ping(r.Context()); err != nil {
			resp.Status = "degraded"
			resp.Database = "unreachable"
		}
	}
	if h.Queue != nil && !h.Queue.IsConnected() {
		resp.Status = "degraded"
		resp.NATS = "disconnected"
	}

	writeJSON(w, http.StatusOK, resp)
}
