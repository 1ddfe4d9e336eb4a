package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/swiftroute/partner-backend/internal/domain"
	"github.com/swiftroute/partner-backend/internal/hub"
	"github.com/swiftroute/partner-backend/internal/repo"
)

// OrderService owns the order lifecycle: acceptance, status transitions, and
// the earnings side effects of a completed delivery.
//
// Both Accept and Transition serialize through guarded UPDATEs in the repo
// layer, so two racing requests resolve to exactly one winner even across
// processes sharing the database. The delivered transition runs its status
// change, earning insert, and partner counter credit in one transaction.
type OrderService struct {
	DB  *gorm.DB
	Pub Publisher
	Log zerolog.Logger
}

// Available returns unassigned prepared orders, oldest first.
func (s *OrderService) Available(ctx context.Context) ([]domain.Order, error) {
	out, err := repo.ListAvailableOrders(ctx, s.DB)
	if err != nil {
		return nil, fmt.Errorf("available orders: %w", err)
	}
	return out, nil
}

// Active returns the partner's current non-terminal order, or (nil, nil)
// when the partner has no active work.
func (s *OrderService) Active(ctx context.Context, partnerID string) (*domain.Order, error) {
	o, err := repo.GetActiveOrderByPartner(ctx, s.DB, partnerID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("active order: %w", err)
	}
	return o, nil
}

// History returns the partner's completed (delivered or cancelled) orders,
// most recent first.
func (s *OrderService) History(ctx context.Context, partnerID string) ([]domain.Order, error) {
	out, err := repo.ListCompletedOrdersByPartner(ctx, s.DB, partnerID)
	if err != nil {
		return nil, fmt.Errorf("order history: %w", err)
	}
	return out, nil
}

// Accept claims the order for partnerID. Exactly one of N concurrent
// accepts succeeds; the rest see ErrAlreadyAssigned (taken by someone
// else), ErrInvalidOrderState (no longer prepared), or ErrOrderNotFound.
func (s *OrderService) Accept(ctx context.Context, orderID, partnerID string) (*domain.Order, error) {
	if err := repo.AcceptOrder(ctx, s.DB, orderID, partnerID); err != nil {
		if !errors.Is(err, repo.ErrStaleOrder) {
			return nil, fmt.Errorf("accept order: %w", err)
		}
		// Guard failed: re-read to tell the caller why.
		o, rerr := repo.GetOrder(ctx, s.DB, orderID)
		if rerr != nil {
			if errors.Is(rerr, repo.ErrNotFound) {
				return nil, ErrOrderNotFound
			}
			return nil, fmt.Errorf("accept order: %w", rerr)
		}
		if o.PartnerID != nil {
			return nil, ErrAlreadyAssigned
		}
		return nil, ErrInvalidOrderState
	}

	o, err := repo.GetOrder(ctx, s.DB, orderID)
	if err != nil {
		return nil, fmt.Errorf("accept order: re-read: %w", err)
	}

	s.Log.Info().Str("order_id", orderID).Str("partner_id", partnerID).Msg("order accepted")
	s.Pub.Publish(hub.NewOrderStatusChanged(o.ID, o.Status, o.PartnerID))
	return o, nil
}

// Transition moves the order to target on behalf of partnerID.
//
// The target must be the immediate successor of the current status, or
// cancelled from any non-terminal status. On the transition to delivered the
// status flip, the earning row, and the partner's counters commit together;
// a retried delivered loses the status guard before it can double-credit,
// and the unique (partner, order) earning index backstops the guard.
func (s *OrderService) Transition(ctx context.Context, orderID string, target domain.OrderStatus, partnerID string) (*domain.Order, error) {
	if !target.Valid() {
		return nil, ErrInvalidTransition
	}

	o, err := repo.GetOrder(ctx, s.DB, orderID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("transition order: %w", err)
	}
	if o.PartnerID == nil || *o.PartnerID != partnerID {
		return nil, ErrNotOrderOwner
	}
	if !o.Status.CanTransitionTo(target) {
		return nil, ErrInvalidTransition
	}

	from := o.Status
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.TransitionOrder(ctx, tx, orderID, from, target); err != nil {
			return err
		}
		if target == domain.StatusDelivered {
			if _, err := repo.CreateEarning(ctx, tx, partnerID, orderID, o.DeliveryFee); err != nil {
				return err
			}
			if err := repo.CreditPartnerDelivery(ctx, tx, partnerID, o.DeliveryFee); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repo.ErrStaleOrder) {
			// Lost the race: the row moved under us between read and update.
			return nil, ErrInvalidTransition
		}
		return nil, fmt.Errorf("transition order: %w", err)
	}

	updated, err := repo.GetOrder(ctx, s.DB, orderID)
	if err != nil {
		return nil, fmt.Errorf("transition order: re-read: %w", err)
	}

	s.Log.Info().
		Str("order_id", orderID).
		Str("partner_id", partnerID).
		Str("from", string(from)).
		Str("to", string(target)).
		Msg("order status changed")
	s.Pub.Publish(hub.NewOrderStatusChanged(updated.ID, updated.Status, updated.PartnerID))
	return updated, nil
}
