// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Earning
// model.
//
// The repository follows a "thin" approach: it performs persistence and
// simple query composition, leaving business rules to the services package.
//
// Error semantics:
//   - A duplicate earning for the same (partner_id, order_id) pair relies
//     on the database unique constraint and is returned as a raw DB error.
//     The service layer translates that into a domain error.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/swiftroute/partner-backend/internal/domain"
)

// CreateEarning inserts the credit row for a delivered order.
//
// The combination (partner_id, order_id) must be unique, enforced by the
// database schema. A duplicate insert returns the raw constraint error,
// which the service layer treats as an already-credited delivery.
func CreateEarning(ctx context.Context, db *gorm.DB, partnerID, orderID string, amount float64) (*domain.Earning, error) {
	e := &domain.Earning{
		ID:        uuid.NewString(),
		PartnerID: partnerID,
		OrderID:   orderID,
		Amount:    amount,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(e).Error; err != nil {
		return nil, err
	}
	return e, nil
}

// ListEarningsByPartner returns all of the partner's earnings, most recent
// first.
func ListEarningsByPartner(ctx context.Context, db *gorm.DB, partnerID string) ([]domain.Earning, error) {
	var out []domain.Earning
	err := db.WithContext(ctx).
		Where("partner_id = ?", partnerID).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// SumEarningsSince returns the total amount credited to the partner at or
// after the given instant.
func SumEarningsSince(ctx context.Context, db *gorm.DB, partnerID string, since time.Time) (float64, error) {
	var total float64
	err := db.WithContext(ctx).
		Model(&domain.Earning{}).
		Where("partner_id = ? AND created_at >= ?", partnerID, since).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}

// CountEarningsByOrder reports how many earning rows exist for the given
// (partner, order) pair. Used by tests to assert the double-credit guard.
func CountEarningsByOrder(ctx context.Context, db *gorm.DB, partnerID, orderID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Earning{}).
		Where("partner_id = ? AND order_id = ?", partnerID, orderID).
		Count(&total).Error
	return total, err
}
