package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-ledger-api/internal/middleware"
	"github.com/noah-isme/campus-ledger-api/internal/models"
	"github.com/noah-isme/campus-ledger-api/pkg/response"
)

type dashboardService interface {
	ForPrincipal(ctx context.Context, principal models.Principal) (interface{}, bool, error)
}

// DashboardHandler exposes the role dashboards.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs a new handler instance.
func NewDashboardHandler(svc dashboardService) *DashboardHandler {
	return &DashboardHandler{service: svc}
}

// Get godoc
// @Summary Dashboard of the current principal
// @Description Admin counters, teacher workload or student overview depending on role
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /dashboard [get]
func (h *DashboardHandler) Get(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	resp, hit, err := h.service.ForPrincipal(c.Request.Context(), p)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, resp, nil, middleware.ExtractMeta(c))
}
