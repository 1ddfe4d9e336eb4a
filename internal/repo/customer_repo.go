// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Customer
// model, which this service mostly reads to enrich order payloads.
package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/swiftroute/partner-backend/internal/domain"
)

// CreateCustomer inserts a customer row (used by seeding and tests).
func CreateCustomer(ctx context.Context, db *gorm.DB, c *domain.Customer) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return db.WithContext(ctx).Create(c).Error
}

// GetCustomer fetches a customer by id, or ErrNotFound if missing.
func GetCustomer(ctx context.Context, db *gorm.DB, id string) (*domain.Customer, error) {
	var c domain.Customer
	if err := db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}
