package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/worktime-api/internal/dto"
	"github.com/noah-isme/worktime-api/internal/models"
	appErrors "github.com/noah-isme/worktime-api/pkg/errors"
	"github.com/noah-isme/worktime-api/pkg/response"
)

type accountService interface {
	Get(ctx context.Context, role models.AccountRole, id string) models.Account
	SetStatus(ctx context.Context, role models.AccountRole, id string, status models.AccountStatus) (models.Account, error)
	Toggle(ctx context.Context, role models.AccountRole, id string) (models.Account, error)
}

// AccountHandler manages account activation flags.
type AccountHandler struct {
	service   accountService
	validator *validator.Validate
}

// NewAccountHandler builds the account handler.
func NewAccountHandler(svc accountService, validate *validator.Validate) *AccountHandler {
	if validate == nil {
		validate = validator.New()
	}
	return &AccountHandler{service: svc, validator: validate}
}

// Get godoc
// @Summary Account activation status
// @Tags Accounts
// @Produce json
// @Param role path string true "user or admin"
// @Param id path string true "Account ID"
// @Success 200 {object} response.Envelope
// @Router /admin/accounts/{role}/{id} [get]
func (h *AccountHandler) Get(c *gin.Context) {
	role, id, ok := accountTarget(c)
	if !ok {
		return
	}
	response.OK(c, h.service.Get(c.Request.Context(), role, id))
}

// Set godoc
// @Summary Set account activation status
// @Tags Accounts
// @Accept json
// @Produce json
// @Param role path string true "user or admin"
// @Param id path string true "Account ID"
// @Param payload body dto.AccountStatusRequest true "Status"
// @Success 200 {object} response.Envelope
// @Router /admin/accounts/{role}/{id} [put]
func (h *AccountHandler) Set(c *gin.Context) {
	role, id, ok := accountTarget(c)
	if !ok {
		return
	}
	var req dto.AccountStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid status payload"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		response.Error(c, validationError(err))
		return
	}
	account, err := h.service.SetStatus(c.Request.Context(), role, id, models.AccountStatus(req.Status))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, account)
}

// Toggle godoc
// @Summary Flip account activation status
// @Tags Accounts
// @Produce json
// @Param role path string true "user or admin"
// @Param id path string true "Account ID"
// @Success 200 {object} response.Envelope
// @Router /admin/accounts/{role}/{id}/toggle [post]
func (h *AccountHandler) Toggle(c *gin.Context) {
	role, id, ok := accountTarget(c)
	if !ok {
		return
	}
	account, err := h.service.Toggle(c.Request.Context(), role, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, account)
}

func accountTarget(c *gin.Context) (models.AccountRole, string, bool) {
	role, ok := models.ParseAccountRole(c.Param("role"))
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "role must be user or admin"))
		return "", "", false
	}
	return role, c.Param("id"), true
}
