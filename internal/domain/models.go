// Package domain defines the persistence models for delivery partners,
// customers, orders, earnings, and location samples. These types are mapped
// with GORM and form the core data layer of the partner backend.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// DeliveryPartner represents a registered courier. Besides the stable
// identity fields it carries mutable presence state: the online flag and a
// denormalized copy of the most recently ingested position.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Email: unique login identifier.
//   - PasswordHash: argon2id encoded hash; never serialized.
//   - IsOnline: presence flag toggled by the partner.
//   - CurrentLatitude / CurrentLongitude: last accepted location sample,
//     overwritten on every ingest (nil until the first sample arrives).
//   - Rating / TotalDeliveries / TotalEarnings: aggregate performance
//     counters; the delivery counters are only mutated together with an
//     Earning row inside one transaction.
type DeliveryPartner struct {
	ID               string         `json:"id"                  gorm:"type:char(36);primaryKey"`
	Name             string         `json:"name"                gorm:"type:varchar(120);not null"`
	Email            string         `json:"email"               gorm:"type:varchar(255);not null;uniqueIndex"`
	Phone            string         `json:"phone"               gorm:"type:varchar(20);not null;index"`
	PasswordHash     string         `json:"-"                   gorm:"type:varchar(255);not null"`
	IsOnline         bool           `json:"is_online"           gorm:"not null;default:false"`
	CurrentLatitude  *float64       `json:"current_latitude"`
	CurrentLongitude *float64       `json:"current_longitude"`
	Rating           float64        `json:"rating"              gorm:"not null;default:0"`
	TotalDeliveries  int            `json:"total_deliveries"    gorm:"not null;default:0"`
	TotalEarnings    float64        `json:"total_earnings"      gorm:"not null;default:0"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `json:"-"                   gorm:"index"`
}

// TableName returns the database table name for DeliveryPartner.
func (DeliveryPartner) TableName() string { return "delivery_partners" }

// Customer is the recipient of an order. Customers are owned by the wider
// platform; this service only reads them to enrich order payloads.
type Customer struct {
	ID        string   `json:"id"        gorm:"type:char(36);primaryKey"`
	Name      string   `json:"name"      gorm:"type:varchar(120);not null"`
	Phone     string   `json:"phone"     gorm:"type:varchar(20);not null"`
	Address   string   `json:"address"   gorm:"type:text;not null"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// TableName returns the database table name for Customer.
func (Customer) TableName() string { return "customers" }

// Order is a unit of delivery work with a finite status lifecycle. Status
// only moves through the transition table on OrderStatus; callers never
// write the column directly.
//
// Fields:
//   - OrderNumber: human-facing identifier (cuid-based), unique.
//   - PartnerID: nil until a partner accepts the order; set exactly once.
//   - Status: see OrderStatus for the closed transition table.
//   - EstimatedDeliveryTime: minutes, quoted at creation.
//   - ActualDeliveryTime: set only on the transition to delivered.
type Order struct {
	ID                    string         `json:"id"                      gorm:"type:char(36);primaryKey"`
	OrderNumber           string         `json:"order_number"            gorm:"type:varchar(40);not null;uniqueIndex"`
	CustomerID            string         `json:"customer_id"             gorm:"type:char(36);not null;index"`
	PartnerID             *string        `json:"partner_id"              gorm:"type:char(36);index"`
	Status                OrderStatus    `json:"status"                  gorm:"type:varchar(20);not null;default:'prepared';index"`
	Amount                float64        `json:"amount"                  gorm:"not null"`
	DeliveryFee           float64        `json:"delivery_fee"            gorm:"not null"`
	PaymentMethod         string         `json:"payment_method"          gorm:"type:varchar(20);not null"`
	DeliveryAddress       string         `json:"delivery_address"        gorm:"type:text;not null"`
	DeliveryLatitude      *float64       `json:"delivery_latitude"`
	DeliveryLongitude     *float64       `json:"delivery_longitude"`
	EstimatedDeliveryTime int            `json:"estimated_delivery_time"`
	ActualDeliveryTime    *time.Time     `json:"actual_delivery_time"`
	CreatedAt             time.Time      `json:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at"`
	DeletedAt             gorm.DeletedAt `json:"-"                       gorm:"index"`

	Customer Customer `json:"-" gorm:"foreignKey:CustomerID;references:ID"`
}

// TableName returns the database table name for Order.
func (Order) TableName() string { return "orders" }

// Earning is the immutable credit created when an order reaches delivered.
// The unique (partner_id, order_id) index is the database-level guard
// against double-crediting a retried terminal transition.
type Earning struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	PartnerID string    `json:"partner_id" gorm:"type:char(36);not null;index;uniqueIndex:ux_earning_partner_order"`
	OrderID   string    `json:"order_id"   gorm:"type:char(36);not null;uniqueIndex:ux_earning_partner_order"`
	Amount    float64   `json:"amount"     gorm:"not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

// TableName returns the database table name for Earning.
func (Earning) TableName() string { return "earnings" }

// PartnerLocation is one observed position sample. Rows are append-only:
// they are never updated or deleted in normal operation, and ordering is by
// CapturedAt. The partner's denormalized current position is maintained
// separately on DeliveryPartner.
type PartnerLocation struct {
	ID         string    `json:"id"          gorm:"type:char(36);primaryKey"`
	PartnerID  string    `json:"partner_id"  gorm:"type:char(36);not null;index:idx_partner_locations,priority:1"`
	Latitude   float64   `json:"latitude"    gorm:"not null"`
	Longitude  float64   `json:"longitude"   gorm:"not null"`
	CapturedAt time.Time `json:"captured_at" gorm:"index:idx_partner_locations,priority:2"`
}

// TableName returns the database table name for PartnerLocation.
func (PartnerLocation) TableName() string { return "partner_locations" }
