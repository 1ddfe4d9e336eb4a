package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/swiftroute/partner-backend/internal/domain"
	"github.com/swiftroute/partner-backend/internal/hub"
	"github.com/swiftroute/partner-backend/internal/repo"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:services_%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.Exec("PRAGMA foreign_keys=ON;")
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// recordPublisher captures published events for assertions.
type recordPublisher struct {
	mu     sync.Mutex
	events []hub.Event
}

func (p *recordPublisher) Publish(e hub.Event) {
	p.mu.Lock()
	p.events = append(p.events, e)
	p.mu.Unlock()
}

func (p *recordPublisher) all() []hub.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]hub.Event, len(p.events))
	copy(out, p.events)
	return out
}

// recordSMS captures outbound text messages.
type recordSMS struct {
	mu       sync.Mutex
	messages map[string]string
}

func (s *recordSMS) Send(_ context.Context, phone, message string) error {
	s.mu.Lock()
	if s.messages == nil {
		s.messages = make(map[string]string)
	}
	s.messages[phone] = message
	s.mu.Unlock()
	return nil
}

func seedPartner(t *testing.T, db *gorm.DB) *domain.DeliveryPartner {
	t.Helper()
	p := &domain.DeliveryPartner{
		Name:         "Ravi Kumar",
		Email:        fmt.Sprintf("%s@example.com", uuid.NewString()),
		Phone:        "+91" + uuid.NewString()[:10],
		PasswordHash: "x",
	}
	if err := repo.CreatePartner(context.Background(), db, p); err != nil {
		t.Fatalf("seed partner: %v", err)
	}
	return p
}

func seedOrderInStatus(t *testing.T, db *gorm.DB, partnerID *string, status domain.OrderStatus) *domain.Order {
	t.Helper()
	ctx := context.Background()
	c := &domain.Customer{ID: uuid.NewString(), Name: "Anita", Phone: "+911234500000", Address: "12 MG Road"}
	if err := repo.CreateCustomer(ctx, db, c); err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	o := &domain.Order{
		CustomerID:            c.ID,
		Amount:                349,
		DeliveryFee:           42.5,
		PaymentMethod:         "upi",
		DeliveryAddress:       "44 Residency Road",
		EstimatedDeliveryTime: 25,
	}
	if err := repo.CreateOrder(ctx, db, o); err != nil {
		t.Fatalf("seed order: %v", err)
	}
	if status != domain.StatusPrepared || partnerID != nil {
		updates := map[string]any{"status": status, "updated_at": time.Now().UTC()}
		if partnerID != nil {
			updates["partner_id"] = *partnerID
		}
		if err := db.Model(&domain.Order{}).Where("id = ?", o.ID).Updates(updates).Error; err != nil {
			t.Fatalf("force order state: %v", err)
		}
		o.Status = status
		o.PartnerID = partnerID
	}
	return o
}

func testLogger() zerolog.Logger { return zerolog.Nop() }
