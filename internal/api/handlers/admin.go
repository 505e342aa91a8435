package handlers

import (
	"log/slog"
	"net/http"

	"github.com/zenjaura/marketplace/internal/api/middleware"
	service "github.com/zenjaura/marketplace/internal/services"
	"github.com/zenjaura/marketplace/internal/utils/response"
)

type AdminHandler struct {
	adminService service.AdminService
}

func NewAdminHandler(adminService service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// GetStats godoc
//
//	@Summary	Dashboard figures
//	@Tags		Admin
//	@Produce	json
//	@Success	200	{object}	models.DashboardStats
//	@Failure	403	{object}	response.ErrorResponse	"Admins only"
//	@Security	BearerAuth
//	@Router		/admin/stats [get]
func (h *AdminHandler) GetStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		stats, err := h.adminService.GetDashboardStats(r.Context())
		if err != nil {
			middleware.LoggerFromContext(r.Context()).Error("Failed to load dashboard stats", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, stats)
	}
}
