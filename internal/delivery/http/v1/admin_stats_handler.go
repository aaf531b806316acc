package v1

import (
	"net/http"

	"orderdesk-backend/internal/usecase"
	"orderdesk-backend/pkg/utils"
)

type AdminStatsHandler struct {
	statsUC *usecase.StatsUsecase
}

func NewAdminStatsHandler(statsUC *usecase.StatsUsecase) *AdminStatsHandler {
	return &AdminStatsHandler{statsUC: statsUC}
}

// GetOrderStatusCounts serves the dashboard's per-status counters.
func (h *AdminStatsHandler) GetOrderStatusCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.statsUC.GetOrderStatusCounts(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, counts)
}
