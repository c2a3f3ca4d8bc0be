package http

import (
	"context"
	"net/http"
	"time"

	"github.com/tuanvumaihuynh/planner-shop/internal/apperr"
)

// HealthChecker reports whether a dependency is reachable.
type HealthChecker interface {
	IsHealthy(ctx context.Context) (bool, error)
}

type healthResponse struct {
	Status string `json:"status"`
}

type healthHandler struct {
	responder
	checker HealthChecker
}

func (h *healthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if ok, err := h.checker.IsHealthy(ctx); !ok || err != nil {
		h.writeError(w, r, apperr.ServiceUnhealthyErr.WrapParent(err))
		return
	}

	h.writeJSON(w, r, http.StatusOK, healthResponse{Status: "ok"})
}
