// Location HTTP handlers.
//
// This file exposes the authenticated endpoints for position reporting:
//   - POST /partner/location         (ingest one sample)
//   - GET  /partner/location/recent  (latest samples, newest first)
//
// Ingest shares the persistence-and-broadcast path with the realtime
// channel, so a sample arriving here is indistinguishable downstream from
// one arriving over the socket.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/swiftroute/partner-backend/internal/domain"
	"github.com/swiftroute/partner-backend/internal/http/middleware"
	"github.com/swiftroute/partner-backend/internal/services"
	"github.com/swiftroute/partner-backend/internal/utils"
)

// IngestLocationRequest is the JSON payload for one position sample.
// Coordinates are pointers so a legitimate 0.0 survives binding.
type IngestLocationRequest struct {
	Latitude  *float64 `json:"latitude"  binding:"required" example:"12.9716"`
	Longitude *float64 `json:"longitude" binding:"required" example:"77.5946"`
}

// RecentLocationsResponse wraps the partner's latest samples.
type RecentLocationsResponse struct {
	Locations []domain.PartnerLocation `json:"locations"`
}

// IngestLocation godoc
// @ID          ingestLocation
// @Summary     Report current position
// @Description Persists one sample, updates the partner's current position, and broadcasts the movement.
// @Tags        Location
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       body  body  handlers.IngestLocationRequest  true  "Coordinates"
//
// @Success     201  {object}  domain.PartnerLocation
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request or coordinates out of range"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     404  {object}  handlers.ErrorResponse  "Partner not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /partner/location [post]
func (h *Handlers) IngestLocation(c *gin.Context) {
	var req IngestLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Latitude == nil || req.Longitude == nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "latitude and longitude required")
		return
	}

	loc, err := h.locationSvc.Ingest(c.Request.Context(), middleware.PartnerIDFrom(c), *req.Latitude, *req.Longitude)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCoordinates):
			fail(c, http.StatusBadRequest, ErrCodeInvalidCoordinates, "coordinates out of range")
		case errors.Is(err, services.ErrPartnerNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "partner not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusCreated, loc)
}

// RecentLocations godoc
// @ID          recentLocations
// @Summary     List recent position samples
// @Tags        Location
// @Produce     json
// @Security    BearerAuth
//
// @Param       limit  query  int  false  "Max samples to return"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object}  handlers.RecentLocationsResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /partner/location/recent [get]
func (h *Handlers) RecentLocations(c *gin.Context) {
	const (
		defaultLimit = 20
		maxLimit     = 100
	)
	limit := utils.AtoiDefault(c.Query("limit"), defaultLimit)
	if limit < 1 {
		limit = 1
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	locs, err := h.locationSvc.Recent(c.Request.Context(), middleware.PartnerIDFrom(c), limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, RecentLocationsResponse{Locations: locs})
}
