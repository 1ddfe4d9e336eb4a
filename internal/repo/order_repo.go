// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Order
// model, including the compare-and-swap updates that serialize concurrent
// status transitions.
//
// Concurrency:
//   - AcceptOrder and TransitionOrder are guarded UPDATEs conditioned on the
//     expected current status (and, for accept, an unset partner). Of two
//     concurrent calls at most one observes RowsAffected == 1; the loser
//     gets ErrStaleOrder and the service decides how to report it. The
//     guarantee therefore holds across processes sharing the database, not
//     just within one hub process.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lucsky/cuid"
	"gorm.io/gorm"

	"github.com/swiftroute/partner-backend/internal/domain"
)

// ErrStaleOrder is returned by guarded order updates when the row no longer
// matches the expected state (lost race or illegal retry).
var ErrStaleOrder = errors.New("order state changed concurrently")

// CreateOrder inserts a new order in state prepared with a generated UUID
// and a cuid-based human-facing order number.
func CreateOrder(ctx context.Context, db *gorm.DB, o *domain.Order) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.OrderNumber == "" {
		o.OrderNumber = "ORD-" + cuid.Slug()
	}
	if o.Status == "" {
		o.Status = domain.StatusPrepared
	}
	o.CreatedAt = time.Now().UTC()
	return db.WithContext(ctx).Create(o).Error
}

// GetOrder fetches an order by id, or ErrNotFound if missing.
func GetOrder(ctx context.Context, db *gorm.DB, id string) (*domain.Order, error) {
	var o domain.Order
	if err := db.WithContext(ctx).Where("id = ?", id).First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

// ListAvailableOrders returns orders in state prepared with no partner
// assigned, oldest first, ready to be offered to the fleet.
func ListAvailableOrders(ctx context.Context, db *gorm.DB) ([]domain.Order, error) {
	var out []domain.Order
	err := db.WithContext(ctx).
		Where("status = ? AND partner_id IS NULL", domain.StatusPrepared).
		Order("created_at asc").
		Find(&out).Error
	return out, err
}

// GetActiveOrderByPartner returns the partner's single non-terminal order,
// or ErrNotFound when the partner has no active work.
func GetActiveOrderByPartner(ctx context.Context, db *gorm.DB, partnerID string) (*domain.Order, error) {
	var o domain.Order
	err := db.WithContext(ctx).
		Where("partner_id = ? AND status NOT IN ?", partnerID,
			[]domain.OrderStatus{domain.StatusDelivered, domain.StatusCancelled}).
		First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// ListCompletedOrdersByPartner returns the partner's delivered and
// cancelled orders, most recent first.
func ListCompletedOrdersByPartner(ctx context.Context, db *gorm.DB, partnerID string) ([]domain.Order, error) {
	var out []domain.Order
	err := db.WithContext(ctx).
		Where("partner_id = ? AND status IN ?", partnerID,
			[]domain.OrderStatus{domain.StatusDelivered, domain.StatusCancelled}).
		Order("updated_at desc").
		Find(&out).Error
	return out, err
}

// CountDeliveredSince counts the partner's orders delivered at or after the
// given instant.
func CountDeliveredSince(ctx context.Context, db *gorm.DB, partnerID string, since time.Time) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("partner_id = ? AND status = ? AND actual_delivery_time >= ?",
			partnerID, domain.StatusDelivered, since).
		Count(&total).Error
	return total, err
}

// AcceptOrder assigns the order to partnerID and moves it to assigned, but
// only if it is still prepared and unassigned. Returns ErrStaleOrder when
// the guard fails (already accepted, cancelled, or missing); callers
// distinguish those cases by re-reading the row.
func AcceptOrder(ctx context.Context, db *gorm.DB, orderID, partnerID string) error {
	res := db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("id = ? AND status = ? AND partner_id IS NULL", orderID, domain.StatusPrepared).
		Updates(map[string]any{
			"partner_id": partnerID,
			"status":     domain.StatusAssigned,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleOrder
	}
	return nil
}

// TransitionOrder moves the order from expected current status to target,
// setting actual_delivery_time when the target is delivered. The UPDATE is
// conditioned on the current status, so a concurrent transition (or a
// retried terminal one) fails with ErrStaleOrder instead of applying twice.
func TransitionOrder(ctx context.Context, db *gorm.DB, orderID string, from, to domain.OrderStatus) error {
	updates := map[string]any{
		"status":     to,
		"updated_at": time.Now().UTC(),
	}
	if to == domain.StatusDelivered {
		updates["actual_delivery_time"] = time.Now().UTC()
	}
	res := db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleOrder
	}
	return nil
}
