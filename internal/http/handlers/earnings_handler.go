// Earnings HTTP handlers.
//
// This file exposes read access to the delivery credit ledger:
//   - GET /earnings/today    (running total since local midnight)
//   - GET /earnings/history  (full ledger, newest first)
//
// Amounts carry a pre-formatted Indian-locale display string alongside the
// raw value so clients never re-implement currency formatting.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/swiftroute/partner-backend/internal/http/middleware"
	"github.com/swiftroute/partner-backend/internal/services"
)

// EarningsHistoryResponse wraps the partner's ledger entries.
type EarningsHistoryResponse struct {
	Earnings []services.EarningEntry `json:"earnings"`
}

// TodayEarnings godoc
// @ID          todayEarnings
// @Summary     Summarize today's earnings
// @Tags        Earnings
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {object}  services.TodaySummary
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /earnings/today [get]
func (h *Handlers) TodayEarnings(c *gin.Context) {
	sum, err := h.earningsSvc.Today(c.Request.Context(), middleware.PartnerIDFrom(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, sum)
}

// EarningsHistory godoc
// @ID          earningsHistory
// @Summary     List all earnings
// @Tags        Earnings
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {object}  handlers.EarningsHistoryResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /earnings/history [get]
func (h *Handlers) EarningsHistory(c *gin.Context) {
	entries, err := h.earningsSvc.History(c.Request.Context(), middleware.PartnerIDFrom(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, EarningsHistoryResponse{Earnings: entries})
}
