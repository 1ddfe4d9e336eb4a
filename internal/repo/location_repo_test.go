package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/swiftroute/partner-backend/internal/domain"
)

func TestCreateLocation_DefaultsCapturedAt(t *testing.T) {
	db := newTestDB(t)

	l, err := CreateLocation(context.Background(), db, "p1", 28.61, 77.20, time.Time{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if l.CapturedAt.IsZero() {
		t.Fatalf("expected captured_at to default to now")
	}
	if l.Latitude != 28.61 || l.Longitude != 77.20 {
		t.Fatalf("coords = (%v,%v)", l.Latitude, l.Longitude)
	}
}

func TestListRecentLocations_NewestFirstCapped(t *testing.T) {
	db := newTestDB(t)
	base := time.Now().UTC().Add(-time.Hour)

	for i := 0; i < 5; i++ {
		_, err := CreateLocation(context.Background(), db, "p1", 28.0+float64(i)/100, 77.0, base.Add(time.Duration(i)*time.Minute))
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	out, err := ListRecentLocations(context.Background(), db, "p1", 3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("len = %d, want 3", len(out))
	}
	for i := 1; i < len(out); i++ {
		if out[i].CapturedAt.After(out[i-1].CapturedAt) {
			t.Fatalf("expected newest-first ordering")
		}
	}
}

func TestPartnerPositionOverwrite_LastWriteWins(t *testing.T) {
	db := newTestDB(t)
	p := &domain.DeliveryPartner{Name: "Ravi", Email: "ravi@example.com", Phone: "+919800000002", PasswordHash: "x"}
	if err := CreatePartner(context.Background(), db, p); err != nil {
		t.Fatalf("seed partner: %v", err)
	}

	if err := UpdatePartnerPosition(context.Background(), db, p.ID, 28.61, 77.20); err != nil {
		t.Fatalf("first update: %v", err)
	}
	if err := UpdatePartnerPosition(context.Background(), db, p.ID, 12.97, 77.59); err != nil {
		t.Fatalf("second update: %v", err)
	}

	got, err := GetPartner(context.Background(), db, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.CurrentLatitude == nil || *got.CurrentLatitude != 12.97 {
		t.Fatalf("latitude = %v, want 12.97", got.CurrentLatitude)
	}
}

func TestUpdatePartnerPosition_MissingPartner(t *testing.T) {
	db := newTestDB(t)
	err := UpdatePartnerPosition(context.Background(), db, "ghost", 1, 1)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}
