// Authentication HTTP handlers.
//
// This file exposes the public (unauthenticated) endpoints for partner
// sign-up and login:
//   - POST /auth/register      (create account, returns bearer token)
//   - POST /auth/login         (email + password)
//   - POST /auth/otp/request   (send one-time code over SMS)
//   - POST /auth/otp/verify    (exchange code for bearer token)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/swiftroute/partner-backend/internal/domain"
	"github.com/swiftroute/partner-backend/internal/hub"
	"github.com/swiftroute/partner-backend/internal/services"
)

//
// Service contracts (context-aware)
//

// PartnerAPI defines account and profile operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type PartnerAPI interface {
	// Register creates an account and returns it with a session token.
	Register(ctx context.Context, in services.RegisterInput) (*domain.DeliveryPartner, string, error)
	// Login authenticates by email and password.
	Login(ctx context.Context, email, password string) (*domain.DeliveryPartner, string, error)
	// RequestOTP sends a one-time login code to a registered phone.
	RequestOTP(ctx context.Context, phone string) error
	// VerifyOTP exchanges a one-time code for a session token.
	VerifyOTP(ctx context.Context, phone, code string) (*domain.DeliveryPartner, string, error)
	// Profile returns the partner record.
	Profile(ctx context.Context, partnerID string) (*domain.DeliveryPartner, error)
	// UpdateProfile applies a partial profile update.
	UpdateProfile(ctx context.Context, partnerID string, upd services.ProfileUpdate) (*domain.DeliveryPartner, error)
	// SetOnline toggles the partner's availability flag.
	SetOnline(ctx context.Context, partnerID string, online bool) (*domain.DeliveryPartner, error)
}

// OrderAPI defines the order lifecycle operations consumed by HTTP handlers.
type OrderAPI interface {
	// Available lists unassigned orders ready for pickup, oldest first.
	Available(ctx context.Context) ([]domain.Order, error)
	// Active returns the partner's current order, or (nil, nil) when idle.
	Active(ctx context.Context, partnerID string) (*domain.Order, error)
	// History lists the partner's past orders, newest first.
	History(ctx context.Context, partnerID string) ([]domain.Order, error)
	// Accept claims an unassigned order for the partner.
	Accept(ctx context.Context, orderID, partnerID string) (*domain.Order, error)
	// Transition moves an order the partner owns to the target status.
	Transition(ctx context.Context, orderID string, target domain.OrderStatus, partnerID string) (*domain.Order, error)
}

// LocationAPI defines position ingest and readback operations.
type LocationAPI interface {
	// Ingest records one position sample and broadcasts the update.
	Ingest(ctx context.Context, partnerID string, lat, lng float64) (*domain.PartnerLocation, error)
	// Recent returns the partner's latest samples, newest first.
	Recent(ctx context.Context, partnerID string, limit int) ([]domain.PartnerLocation, error)
}

// EarningsAPI defines read access to the delivery credit ledger.
type EarningsAPI interface {
	// Today summarizes earnings since local midnight.
	Today(ctx context.Context, partnerID string) (*services.TodaySummary, error)
	// History returns the full ledger, newest first.
	History(ctx context.Context, partnerID string) ([]services.EarningEntry, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for accounts, orders, locations, earnings,
// and the realtime channel. It depends on abstract service interfaces to keep
// transport concerns separate from business logic.
type Handlers struct {
	partnerSvc  PartnerAPI
	orderSvc    OrderAPI
	locationSvc LocationAPI
	earningsSvc EarningsAPI
	hub         *hub.Hub
	channelOpts hub.Options
}

// New constructs and returns a Handlers instance bound to the given services.
func New(partnerSvc PartnerAPI, orderSvc OrderAPI, locationSvc LocationAPI, earningsSvc EarningsAPI, h *hub.Hub, channelOpts hub.Options) *Handlers {
	return &Handlers{
		partnerSvc:  partnerSvc,
		orderSvc:    orderSvc,
		locationSvc: locationSvc,
		earningsSvc: earningsSvc,
		hub:         h,
		channelOpts: channelOpts,
	}
}

//
// DTOs
//

// RegisterRequest is the JSON payload for creating a partner account.
type RegisterRequest struct {
	Name     string `json:"name"     binding:"required,min=1,max=120" example:"Ravi Kumar"`
	Email    string `json:"email"    binding:"required,email"         example:"ravi@example.com"`
	Phone    string `json:"phone"    binding:"required,min=7,max=20"  example:"+919876543210"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// LoginRequest is the JSON payload for password login.
type LoginRequest struct {
	Email    string `json:"email"    binding:"required,email" example:"ravi@example.com"`
	Password string `json:"password" binding:"required"`
}

// OTPRequest asks for a one-time code to be sent to a registered phone.
type OTPRequest struct {
	Phone string `json:"phone" binding:"required,min=7,max=20" example:"+919876543210"`
}

// OTPVerifyRequest exchanges a received code for a session token.
type OTPVerifyRequest struct {
	Phone string `json:"phone" binding:"required,min=7,max=20" example:"+919876543210"`
	Code  string `json:"code"  binding:"required,len=6"        example:"482913"`
}

// AuthResponse carries the session token alongside the partner record.
type AuthResponse struct {
	Token   string                  `json:"token"`
	Partner *domain.DeliveryPartner `json:"partner"`
}

//
// Handlers
//

// Register godoc
// @ID          registerPartner
// @Summary     Register a delivery partner
// @Description Creates a partner account and returns a bearer token for it.
// @Tags        Auth
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.RegisterRequest  true  "Registration payload"
//
// @Success     201  {object}  handlers.AuthResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     409  {object}  handlers.ErrorResponse  "Email already registered"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /auth/register [post]
func (h *Handlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	p, token, err := h.partnerSvc.Register(c.Request.Context(), services.RegisterInput{
		Name:     strings.TrimSpace(req.Name),
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:    strings.TrimSpace(req.Phone),
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			fail(c, http.StatusConflict, ErrCodeEmailTaken, "email already registered")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusCreated, AuthResponse{Token: token, Partner: p})
}

// Login godoc
// @ID          loginPartner
// @Summary     Log in with email and password
// @Tags        Auth
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.LoginRequest  true  "Login payload"
//
// @Success     200  {object}  handlers.AuthResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Invalid credentials"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /auth/login [post]
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	p, token, err := h.partnerSvc.Login(c.Request.Context(), strings.ToLower(strings.TrimSpace(req.Email)), req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			fail(c, http.StatusUnauthorized, ErrCodeInvalidCredentials, "invalid email or password")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, AuthResponse{Token: token, Partner: p})
}

// RequestOTP godoc
// @ID          requestOTP
// @Summary     Request a one-time login code
// @Description Sends a 6-digit code over SMS to a registered phone number.
// @Tags        Auth
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.OTPRequest  true  "Phone number"
//
// @Success     204  {string}  string  "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Phone not registered"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /auth/otp/request [post]
func (h *Handlers) RequestOTP(c *gin.Context) {
	var req OTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	if err := h.partnerSvc.RequestOTP(c.Request.Context(), strings.TrimSpace(req.Phone)); err != nil {
		if errors.Is(err, services.ErrPartnerNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "phone not registered")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	noContent(c)
}

// VerifyOTP godoc
// @ID          verifyOTP
// @Summary     Exchange a one-time code for a session token
// @Tags        Auth
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.OTPVerifyRequest  true  "Phone and code"
//
// @Success     200  {object}  handlers.AuthResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Invalid or expired code"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /auth/otp/verify [post]
func (h *Handlers) VerifyOTP(c *gin.Context) {
	var req OTPVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	p, token, err := h.partnerSvc.VerifyOTP(c.Request.Context(), strings.TrimSpace(req.Phone), req.Code)
	switch {
	case err == nil:
		ok(c, http.StatusOK, AuthResponse{Token: token, Partner: p})
	case errors.Is(err, services.ErrOTPExpired):
		fail(c, http.StatusUnauthorized, ErrCodeOTPExpired, "one-time code expired")
	case errors.Is(err, services.ErrOTPInvalid), errors.Is(err, services.ErrPartnerNotFound):
		fail(c, http.StatusUnauthorized, ErrCodeInvalidOTP, "invalid one-time code")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}
