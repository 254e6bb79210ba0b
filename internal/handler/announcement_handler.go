package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-ledger-api/internal/models"
	"github.com/noah-isme/campus-ledger-api/pkg/response"
)

type announcementBoard interface {
	VisibleAnnouncements(ctx context.Context, principal models.Principal, page, pageSize int) ([]models.Announcement, *models.Pagination, error)
	Create(ctx context.Context, principal models.Principal, req models.AnnouncementRequest) (*models.Announcement, error)
	Deactivate(ctx context.Context, principal models.Principal, id string) error
}

// AnnouncementHandler exposes announcement endpoints.
type AnnouncementHandler struct {
	board announcementBoard
}

// NewAnnouncementHandler constructs an announcement handler.
func NewAnnouncementHandler(board announcementBoard) *AnnouncementHandler {
	return &AnnouncementHandler{board: board}
}

// List godoc
// @Summary Visible announcements
// @Description Live announcements for the caller, newest first then by priority
// @Tags Announcements
// @Produce json
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /announcements [get]
func (h *AnnouncementHandler) List(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	page, size := pageParams(c)
	items, pagination, err := h.board.VisibleAnnouncements(c.Request.Context(), p, page, size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Create godoc
// @Summary Publish announcement
// @Tags Announcements
// @Accept json
// @Produce json
// @Param payload body models.AnnouncementRequest true "Announcement payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /announcements [post]
func (h *AnnouncementHandler) Create(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req models.AnnouncementRequest
	if !bindJSON(c, &req, "invalid announcement payload") {
		return
	}
	ann, err := h.board.Create(c.Request.Context(), p, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, ann)
}

// Deactivate godoc
// @Summary Withdraw announcement
// @Tags Announcements
// @Param id path string true "Announcement ID"
// @Success 204 {object} response.Envelope
// @Security BearerAuth
// @Router /announcements/{id} [delete]
func (h *AnnouncementHandler) Deactivate(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	if err := h.board.Deactivate(c.Request.Context(), p, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
