// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// DeliveryPartner model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a partner is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/swiftroute/partner-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreatePartner inserts a new DeliveryPartner row with a generated UUID and
// UTC creation timestamp. The email uniqueness constraint is enforced by
// the database; a duplicate insert returns the raw constraint error for the
// service layer to translate.
func CreatePartner(ctx context.Context, db *gorm.DB, p *domain.DeliveryPartner) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = time.Now().UTC()
	return db.WithContext(ctx).Create(p).Error
}

// GetPartner fetches a partner by id, or ErrNotFound if missing.
func GetPartner(ctx context.Context, db *gorm.DB, id string) (*domain.DeliveryPartner, error) {
	var p domain.DeliveryPartner
	if err := db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// GetPartnerByEmail fetches a partner by unique email, or ErrNotFound.
func GetPartnerByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.DeliveryPartner, error) {
	var p domain.DeliveryPartner
	if err := db.WithContext(ctx).Where("email = ?", email).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// GetPartnerByPhone fetches a partner by phone number, or ErrNotFound.
func GetPartnerByPhone(ctx context.Context, db *gorm.DB, phone string) (*domain.DeliveryPartner, error) {
	var p domain.DeliveryPartner
	if err := db.WithContext(ctx).Where("phone = ?", phone).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdatePartnerProfile applies a whitelisted set of column updates to a
// partner row. Callers are responsible for filtering out immutable columns
// (id, password_hash, aggregate counters) before calling.
func UpdatePartnerProfile(ctx context.Context, db *gorm.DB, id string, updates map[string]any) error {
	res := db.WithContext(ctx).
		Model(&domain.DeliveryPartner{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetPartnerOnline toggles the partner's presence flag.
func SetPartnerOnline(ctx context.Context, db *gorm.DB, id string, online bool) error {
	res := db.WithContext(ctx).
		Model(&domain.DeliveryPartner{}).
		Where("id = ?", id).
		Update("is_online", online)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdatePartnerPosition overwrites the partner's denormalized current
// position. Last write wins by arrival order; there is no sequence or
// timestamp guard, so a delayed sample may regress the position until the
// next cycle overwrites it again.
func UpdatePartnerPosition(ctx context.Context, db *gorm.DB, id string, lat, lng float64) error {
	res := db.WithContext(ctx).
		Model(&domain.DeliveryPartner{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"current_latitude":  lat,
			"current_longitude": lng,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CreditPartnerDelivery increments the partner's delivery and earnings
// aggregates in one UPDATE. It is meant to run inside the same transaction
// that inserts the corresponding Earning row so that both succeed or both
// roll back.
func CreditPartnerDelivery(ctx context.Context, db *gorm.DB, id string, amount float64) error {
	res := db.WithContext(ctx).
		Model(&domain.DeliveryPartner{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"total_deliveries": gorm.Expr("total_deliveries + 1"),
			"total_earnings":   gorm.Expr("total_earnings + ?", amount),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
