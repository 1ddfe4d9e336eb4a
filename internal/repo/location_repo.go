// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// PartnerLocation model. Location rows are append-only: there are create
// and read functions here, deliberately no update or delete.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/swiftroute/partner-backend/internal/domain"
)

// CreateLocation appends one observed position sample for the partner.
// CapturedAt defaults to the current UTC time when unset.
func CreateLocation(ctx context.Context, db *gorm.DB, partnerID string, lat, lng float64, capturedAt time.Time) (*domain.PartnerLocation, error) {
	if capturedAt.IsZero() {
		capturedAt = time.Now().UTC()
	}
	l := &domain.PartnerLocation{
		ID:         uuid.NewString(),
		PartnerID:  partnerID,
		Latitude:   lat,
		Longitude:  lng,
		CapturedAt: capturedAt,
	}
	if err := db.WithContext(ctx).Create(l).Error; err != nil {
		return nil, err
	}
	return l, nil
}

// ListRecentLocations returns the partner's latest samples, newest first,
// capped at limit.
func ListRecentLocations(ctx context.Context, db *gorm.DB, partnerID string, limit int) ([]domain.PartnerLocation, error) {
	if limit <= 0 {
		limit = 10
	}
	var out []domain.PartnerLocation
	err := db.WithContext(ctx).
		Where("partner_id = ?", partnerID).
		Order("captured_at desc").
		Limit(limit).
		Find(&out).Error
	return out, err
}
