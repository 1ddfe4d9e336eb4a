// Partner profile HTTP handlers.
//
// This file exposes the authenticated endpoints for the partner's own
// account:
//   - GET   /partner/profile  (read)
//   - PATCH /partner/profile  (partial update)
//   - PATCH /partner/status   (online/offline toggle)
//
// The partner identity always comes from the bearer token bound by the auth
// middleware; a partner can never address another partner's profile.
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/swiftroute/partner-backend/internal/http/middleware"
	"github.com/swiftroute/partner-backend/internal/services"
)

// UpdateProfileRequest is the JSON payload for a partial profile update.
// Absent fields are left untouched.
type UpdateProfileRequest struct {
	Name  *string `json:"name"  binding:"omitempty,min=1,max=120" example:"Ravi Kumar"`
	Phone *string `json:"phone" binding:"omitempty,min=7,max=20"  example:"+919876543210"`
}

// StatusRequest toggles the partner's availability. The field is a pointer
// so an explicit false survives JSON binding.
type StatusRequest struct {
	IsOnline *bool `json:"is_online" binding:"required"`
}

// GetProfile godoc
// @ID          getProfile
// @Summary     Get own profile
// @Tags        Partner
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {object}  domain.DeliveryPartner
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     404  {object}  handlers.ErrorResponse  "Partner not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /partner/profile [get]
func (h *Handlers) GetProfile(c *gin.Context) {
	p, err := h.partnerSvc.Profile(c.Request.Context(), middleware.PartnerIDFrom(c))
	if err != nil {
		if errors.Is(err, services.ErrPartnerNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "partner not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, p)
}

// UpdateProfile godoc
// @ID          updateProfile
// @Summary     Update own profile
// @Description Applies a partial update; omitted fields keep their value.
// @Tags        Partner
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       body  body  handlers.UpdateProfileRequest  true  "Fields to change"
//
// @Success     200  {object}  domain.DeliveryPartner
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     404  {object}  handlers.ErrorResponse  "Partner not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /partner/profile [patch]
func (h *Handlers) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		req.Name = &trimmed
	}
	if req.Phone != nil {
		trimmed := strings.TrimSpace(*req.Phone)
		req.Phone = &trimmed
	}

	p, err := h.partnerSvc.UpdateProfile(c.Request.Context(), middleware.PartnerIDFrom(c), services.ProfileUpdate{
		Name:  req.Name,
		Phone: req.Phone,
	})
	if err != nil {
		if errors.Is(err, services.ErrPartnerNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "partner not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, p)
}

// SetStatus godoc
// @ID          setStatus
// @Summary     Toggle online availability
// @Tags        Partner
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       body  body  handlers.StatusRequest  true  "Desired availability"
//
// @Success     200  {object}  domain.DeliveryPartner
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     404  {object}  handlers.ErrorResponse  "Partner not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /partner/status [patch]
func (h *Handlers) SetStatus(c *gin.Context) {
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IsOnline == nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "is_online required")
		return
	}

	p, err := h.partnerSvc.SetOnline(c.Request.Context(), middleware.PartnerIDFrom(c), *req.IsOnline)
	if err != nil {
		if errors.Is(err, services.ErrPartnerNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "partner not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, p)
}
