package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-ledger-api/internal/models"
	"github.com/noah-isme/campus-ledger-api/pkg/response"
)

type userManager interface {
	Register(ctx context.Context, actor models.Principal, req models.RegisterRequest, meta models.ClientMeta) (*models.Registration, error)
	List(ctx context.Context, filter models.UserFilter) ([]models.User, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.User, error)
	SetActive(ctx context.Context, actor models.Principal, id string, active bool) error
}

// UserHandler handles person registration and account administration.
type UserHandler struct {
	users userManager
}

// NewUserHandler creates a new user handler.
func NewUserHandler(users userManager) *UserHandler {
	return &UserHandler{users: users}
}

// Register godoc
// @Summary Register a person
// @Description Creates a person and the profile matching their role in one transaction
// @Tags Users
// @Accept json
// @Produce json
// @Param payload body models.RegisterRequest true "Registration payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /users [post]
func (h *UserHandler) Register(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	var req models.RegisterRequest
	if !bindJSON(c, &req, "invalid registration payload") {
		return
	}
	reg, err := h.users.Register(c.Request.Context(), actor, req, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, reg)
}

// List godoc
// @Summary List users
// @Tags Users
// @Produce json
// @Param role query string false "Role filter"
// @Param active query bool false "Active filter"
// @Param search query string false "Name or email search"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /users [get]
func (h *UserHandler) List(c *gin.Context) {
	filter := models.UserFilter{Search: c.Query("search"), Active: boolQuery(c, "active")}
	if role := models.UserRole(strings.ToUpper(c.Query("role"))); role.Valid() {
		filter.Role = &role
	}
	filter.Page, filter.PageSize = pageParams(c)

	users, pagination, err := h.users.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, users, pagination)
}

// Get godoc
// @Summary Get user
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /users/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user, nil)
}

// SetStatus godoc
// @Summary Enable or disable an account
// @Tags Users
// @Accept json
// @Param id path string true "User ID"
// @Param payload body map[string]bool true "Status payload"
// @Success 204 {object} response.Envelope
// @Security BearerAuth
// @Router /users/{id}/status [patch]
func (h *UserHandler) SetStatus(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	var payload struct {
		Active *bool `json:"active" binding:"required"`
	}
	if !bindJSON(c, &payload, "active is required") {
		return
	}
	if err := h.users.SetActive(c.Request.Context(), actor, c.Param("id"), *payload.Active); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
