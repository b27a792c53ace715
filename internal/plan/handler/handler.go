package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-availability-service/internal/auth"
	"github.com/fekuna/omnipos-availability-service/internal/httpx"
	"github.com/fekuna/omnipos-availability-service/internal/plan"
	"github.com/fekuna/omnipos-availability-service/pkg/logger"
)

type PlanHandler struct {
	uc     plan.UseCase
	logger logger.ZapLogger
}

func NewPlanHandler(uc plan.UseCase, log logger.ZapLogger) *PlanHandler {
	return &PlanHandler{
		uc:     uc,
		logger: log,
	}
}

// Usage reports this month's order count against the shop plan.
func (h *PlanHandler) Usage(w http.ResponseWriter, r *http.Request) {
	s := auth.GetShop(r.Context())

	usage, err := h.uc.Usage(r.Context(), s.ID)
	if err != nil {
		httpx.WriteError(w, h.logger, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, usage)
}
