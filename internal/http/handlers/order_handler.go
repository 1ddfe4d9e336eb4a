// Order HTTP handlers.
//
// This file exposes the authenticated endpoints for the order lifecycle:
//   - GET   /orders/available    (unassigned orders ready for pickup)
//   - GET   /orders/active       (the partner's current order, if any)
//   - GET   /orders/history      (past orders, newest first)
//   - PATCH /orders/{id}/accept  (claim an unassigned order)
//   - PATCH /orders/{id}/status  (advance or cancel an owned order)
//
// Two partners racing to accept the same order resolve to exactly one
// winner; the loser receives 409 already_assigned.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/swiftroute/partner-backend/internal/domain"
	"github.com/swiftroute/partner-backend/internal/http/middleware"
	"github.com/swiftroute/partner-backend/internal/services"
)

// OrderStatusRequest is the JSON payload for a status transition.
type OrderStatusRequest struct {
	Status string `json:"status" binding:"required" example:"picked_up"`
}

// OrdersResponse wraps a list of orders.
type OrdersResponse struct {
	Orders []domain.Order `json:"orders"`
}

// ActiveOrderResponse wraps the partner's current order; Order is null when
// the partner has no active work.
type ActiveOrderResponse struct {
	Order *domain.Order `json:"order"`
}

// AvailableOrders godoc
// @ID          availableOrders
// @Summary     List orders available for pickup
// @Tags        Orders
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {object}  handlers.OrdersResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /orders/available [get]
func (h *Handlers) AvailableOrders(c *gin.Context) {
	orders, err := h.orderSvc.Available(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, OrdersResponse{Orders: orders})
}

// ActiveOrder godoc
// @ID          activeOrder
// @Summary     Get the current active order
// @Description Returns the partner's in-flight order, or a null order when idle.
// @Tags        Orders
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {object}  handlers.ActiveOrderResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /orders/active [get]
func (h *Handlers) ActiveOrder(c *gin.Context) {
	o, err := h.orderSvc.Active(c.Request.Context(), middleware.PartnerIDFrom(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, ActiveOrderResponse{Order: o})
}

// OrderHistory godoc
// @ID          orderHistory
// @Summary     List past orders
// @Tags        Orders
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {object}  handlers.OrdersResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /orders/history [get]
func (h *Handlers) OrderHistory(c *gin.Context) {
	orders, err := h.orderSvc.History(c.Request.Context(), middleware.PartnerIDFrom(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, OrdersResponse{Orders: orders})
}

// AcceptOrder godoc
// @ID          acceptOrder
// @Summary     Accept an available order
// @Description Claims the order for the authenticated partner. Exactly one of several racing partners wins.
// @Tags        Orders
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  string  true  "Order ID (UUID)"  format(uuid)
//
// @Success     200  {object}  domain.Order
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     404  {object}  handlers.ErrorResponse  "Order not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Already assigned or not acceptable"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /orders/{id}/accept [patch]
func (h *Handlers) AcceptOrder(c *gin.Context) {
	orderID := c.Param("id")
	if _, err := uuid.Parse(orderID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "order id must be a UUID")
		return
	}

	o, err := h.orderSvc.Accept(c.Request.Context(), orderID, middleware.PartnerIDFrom(c))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "order not found")
		case errors.Is(err, services.ErrAlreadyAssigned):
			fail(c, http.StatusConflict, ErrCodeAlreadyAssigned, "order already assigned")
		case errors.Is(err, services.ErrInvalidOrderState):
			fail(c, http.StatusConflict, ErrCodeConflict, "order not available for acceptance")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, o)
}

// UpdateOrderStatus godoc
// @ID          updateOrderStatus
// @Summary     Advance or cancel an order
// @Description Moves an owned order one step along its lifecycle, or cancels it. Skipping stages is rejected.
// @Tags        Orders
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       id    path  string                       true  "Order ID (UUID)"  format(uuid)
// @Param       body  body  handlers.OrderStatusRequest  true  "Target status"
//
// @Success     200  {object}  domain.Order
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     403  {object}  handlers.ErrorResponse  "Order belongs to another partner"
// @Failure     404  {object}  handlers.ErrorResponse  "Order not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Transition not allowed"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /orders/{id}/status [patch]
func (h *Handlers) UpdateOrderStatus(c *gin.Context) {
	orderID := c.Param("id")
	if _, err := uuid.Parse(orderID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "order id must be a UUID")
		return
	}

	var req OrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	o, err := h.orderSvc.Transition(c.Request.Context(), orderID, domain.OrderStatus(req.Status), middleware.PartnerIDFrom(c))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "order not found")
		case errors.Is(err, services.ErrNotOrderOwner):
			fail(c, http.StatusForbidden, ErrCodeForbidden, "order belongs to another partner")
		case errors.Is(err, services.ErrInvalidTransition):
			fail(c, http.StatusConflict, ErrCodeInvalidTransition, "transition not allowed")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, o)
}
