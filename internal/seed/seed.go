// Package seed populates a fresh database with demo partners, customers,
// and prepared orders so the API and the field simulator have something to
// work with out of the box. Seeding is opt-in (SEED_DEMO_DATA) and
// idempotent: a database that already holds partners is left untouched.
package seed

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/google/uuid"
	"github.com/jaswdr/faker"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/swiftroute/partner-backend/internal/domain"
	"github.com/swiftroute/partner-backend/internal/geo"
	"github.com/swiftroute/partner-backend/internal/repo"
	"github.com/swiftroute/partner-backend/internal/services"
)

// Demo city center (Bengaluru); all seeded coordinates jitter around it.
const (
	cityLat  = 12.9716
	cityLng  = 77.5946
	radiusKm = 8.0
)

// DemoPassword is the password every seeded partner account accepts.
const DemoPassword = "password123"

// Options bounds how much demo data Run creates. Zero values fall back to
// the defaults below.
type Options struct {
	Partners  int // default 3
	Customers int // default 8
	Orders    int // default 12
}

func (o Options) withDefaults() Options {
	if o.Partners <= 0 {
		o.Partners = 3
	}
	if o.Customers <= 0 {
		o.Customers = 8
	}
	if o.Orders <= 0 {
		o.Orders = 12
	}
	return o
}

var paymentMethods = []string{"cod", "upi", "card"}

// Run seeds demo data unless the database already holds partners.
func Run(ctx context.Context, db *gorm.DB, opts Options, log zerolog.Logger) error {
	opts = opts.withDefaults()

	var partners int64
	if err := db.WithContext(ctx).Model(&domain.DeliveryPartner{}).Count(&partners).Error; err != nil {
		return fmt.Errorf("seed: count partners: %w", err)
	}
	if partners > 0 {
		log.Info().Int64("partners", partners).Msg("database already populated, skipping seed")
		return nil
	}

	fake := faker.New()

	hash, err := services.HashPassword(DemoPassword)
	if err != nil {
		return fmt.Errorf("seed: hash demo password: %w", err)
	}

	for i := 0; i < opts.Partners; i++ {
		lat, lng := jitter()
		p := &domain.DeliveryPartner{
			ID:               uuid.NewString(),
			Name:             fake.Person().Name(),
			Email:            fmt.Sprintf("partner%d@swiftroute.demo", i+1),
			Phone:            fake.Phone().E164Number(),
			PasswordHash:     hash,
			CurrentLatitude:  &lat,
			CurrentLongitude: &lng,
			Rating:           fake.Float64(1, 35, 50) / 10, // 3.5 .. 5.0
		}
		if err := repo.CreatePartner(ctx, db, p); err != nil {
			return fmt.Errorf("seed: partner %d: %w", i+1, err)
		}
	}

	customers := make([]*domain.Customer, 0, opts.Customers)
	for i := 0; i < opts.Customers; i++ {
		lat, lng := jitter()
		c := &domain.Customer{
			ID:        uuid.NewString(),
			Name:      fake.Person().Name(),
			Phone:     fake.Phone().E164Number(),
			Address:   fake.Address().Address(),
			Latitude:  &lat,
			Longitude: &lng,
		}
		if err := repo.CreateCustomer(ctx, db, c); err != nil {
			return fmt.Errorf("seed: customer %d: %w", i+1, err)
		}
		customers = append(customers, c)
	}

	for i := 0; i < opts.Orders; i++ {
		cust := customers[rand.Intn(len(customers))]
		distance := geo.Haversine(cityLat, cityLng, *cust.Latitude, *cust.Longitude)
		o := &domain.Order{
			CustomerID:            cust.ID,
			Status:                domain.StatusPrepared,
			Amount:                fake.Float64(2, 120, 900),
			DeliveryFee:           fake.Float64(2, 20, 80),
			PaymentMethod:         paymentMethods[rand.Intn(len(paymentMethods))],
			DeliveryAddress:       cust.Address,
			DeliveryLatitude:      cust.Latitude,
			DeliveryLongitude:     cust.Longitude,
			EstimatedDeliveryTime: geo.EstimateMinutes(distance, 0),
		}
		if err := repo.CreateOrder(ctx, db, o); err != nil {
			return fmt.Errorf("seed: order %d: %w", i+1, err)
		}
	}

	log.Info().
		Int("partners", opts.Partners).
		Int("customers", opts.Customers).
		Int("orders", opts.Orders).
		Msg("demo data seeded")
	return nil
}

// jitter returns coordinates uniformly offset from the city center within
// radiusKm.
func jitter() (lat, lng float64) {
	latRange := radiusKm / 111.0
	lngRange := latRange / math.Cos(cityLat*math.Pi/180)
	lat = cityLat + (rand.Float64()*2-1)*latRange
	lng = cityLng + (rand.Float64()*2-1)*lngRange
	return lat, lng
}
