package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/swiftroute/partner-backend/internal/domain"
	"github.com/swiftroute/partner-backend/internal/hub"
	"github.com/swiftroute/partner-backend/internal/repo"
)

// Publisher fans an event out to connected channel sessions. Satisfied by
// *hub.Hub; tests substitute a recorder.
type Publisher interface {
	Publish(e hub.Event)
}

// LocationService ingests partner position samples: validate, persist the
// append-only sample, overwrite the partner's current position, and announce
// the movement to subscribers.
type LocationService struct {
	DB  *gorm.DB
	Pub Publisher
	Log zerolog.Logger
}

// Ingest records one position sample for the partner.
//
// The sample row and the denormalized position update commit in one
// transaction; the broadcast happens only after the commit, so subscribers
// never see a position the database does not hold. Position overwrite is
// last-write-wins by arrival order.
func (s *LocationService) Ingest(ctx context.Context, partnerID string, lat, lng float64) (*domain.PartnerLocation, error) {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, ErrInvalidCoordinates
	}

	var loc *domain.PartnerLocation
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.UpdatePartnerPosition(ctx, tx, partnerID, lat, lng); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrPartnerNotFound
			}
			return err
		}
		var err error
		loc, err = repo.CreateLocation(ctx, tx, partnerID, lat, lng, time.Time{})
		return err
	})
	if err != nil {
		if errors.Is(err, ErrPartnerNotFound) {
			return nil, ErrPartnerNotFound
		}
		return nil, fmt.Errorf("ingest location: %w", err)
	}

	// Correlate the movement with the partner's active order when one
	// exists; a lookup failure only degrades the event, never the ingest.
	var orderID *string
	if active, err := repo.GetActiveOrderByPartner(ctx, s.DB, partnerID); err == nil {
		orderID = &active.ID
	} else if !errors.Is(err, repo.ErrNotFound) {
		s.Log.Warn().Err(err).Str("partner_id", partnerID).Msg("active order lookup failed during ingest")
	}

	s.Pub.Publish(hub.NewLocationUpdated(partnerID, lat, lng, orderID))
	return loc, nil
}

// Recent returns the partner's latest samples, newest first.
func (s *LocationService) Recent(ctx context.Context, partnerID string, limit int) ([]domain.PartnerLocation, error) {
	out, err := repo.ListRecentLocations(ctx, s.DB, partnerID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent locations: %w", err)
	}
	return out, nil
}
