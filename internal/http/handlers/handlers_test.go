package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/swiftroute/partner-backend/internal/domain"
	"github.com/swiftroute/partner-backend/internal/hub"
	"github.com/swiftroute/partner-backend/internal/services"
)

func noplog() zerolog.Logger { return zerolog.Nop() }

func newBody(s string) *bytes.Buffer { return bytes.NewBufferString(s) }

// ---------- flexible service stubs ----------

type stubPartnerSvc struct {
	register      func(context.Context, services.RegisterInput) (*domain.DeliveryPartner, string, error)
	login         func(context.Context, string, string) (*domain.DeliveryPartner, string, error)
	requestOTP    func(context.Context, string) error
	verifyOTP     func(context.Context, string, string) (*domain.DeliveryPartner, string, error)
	profile       func(context.Context, string) (*domain.DeliveryPartner, error)
	updateProfile func(context.Context, string, services.ProfileUpdate) (*domain.DeliveryPartner, error)
	setOnline     func(context.Context, string, bool) (*domain.DeliveryPartner, error)
}

func (s stubPartnerSvc) Register(ctx context.Context, in services.RegisterInput) (*domain.DeliveryPartner, string, error) {
	if s.register != nil {
		return s.register(ctx, in)
	}
	return &domain.DeliveryPartner{ID: "p1", Name: in.Name, Email: in.Email, Phone: in.Phone}, "tok", nil
}

func (s stubPartnerSvc) Login(ctx context.Context, email, password string) (*domain.DeliveryPartner, string, error) {
	if s.login != nil {
		return s.login(ctx, email, password)
	}
	return &domain.DeliveryPartner{ID: "p1", Email: email}, "tok", nil
}

func (s stubPartnerSvc) RequestOTP(ctx context.Context, phone string) error {
	if s.requestOTP != nil {
		return s.requestOTP(ctx, phone)
	}
	return nil
}

func (s stubPartnerSvc) VerifyOTP(ctx context.Context, phone, code string) (*domain.DeliveryPartner, string, error) {
	if s.verifyOTP != nil {
		return s.verifyOTP(ctx, phone, code)
	}
	return &domain.DeliveryPartner{ID: "p1", Phone: phone}, "tok", nil
}

func (s stubPartnerSvc) Profile(ctx context.Context, partnerID string) (*domain.DeliveryPartner, error) {
	if s.profile != nil {
		return s.profile(ctx, partnerID)
	}
	return &domain.DeliveryPartner{ID: partnerID}, nil
}

func (s stubPartnerSvc) UpdateProfile(ctx context.Context, partnerID string, upd services.ProfileUpdate) (*domain.DeliveryPartner, error) {
	if s.updateProfile != nil {
		return s.updateProfile(ctx, partnerID, upd)
	}
	return &domain.DeliveryPartner{ID: partnerID}, nil
}

func (s stubPartnerSvc) SetOnline(ctx context.Context, partnerID string, online bool) (*domain.DeliveryPartner, error) {
	if s.setOnline != nil {
		return s.setOnline(ctx, partnerID, online)
	}
	return &domain.DeliveryPartner{ID: partnerID, IsOnline: online}, nil
}

type stubOrderSvc struct {
	available  func(context.Context) ([]domain.Order, error)
	active     func(context.Context, string) (*domain.Order, error)
	history    func(context.Context, string) ([]domain.Order, error)
	accept     func(context.Context, string, string) (*domain.Order, error)
	transition func(context.Context, string, domain.OrderStatus, string) (*domain.Order, error)
}

func (s stubOrderSvc) Available(ctx context.Context) ([]domain.Order, error) {
	if s.available != nil {
		return s.available(ctx)
	}
	return nil, nil
}

func (s stubOrderSvc) Active(ctx context.Context, partnerID string) (*domain.Order, error) {
	if s.active != nil {
		return s.active(ctx, partnerID)
	}
	return nil, nil
}

func (s stubOrderSvc) History(ctx context.Context, partnerID string) ([]domain.Order, error) {
	if s.history != nil {
		return s.history(ctx, partnerID)
	}
	return nil, nil
}

func (s stubOrderSvc) Accept(ctx context.Context, orderID, partnerID string) (*domain.Order, error) {
	if s.accept != nil {
		return s.accept(ctx, orderID, partnerID)
	}
	pid := partnerID
	return &domain.Order{ID: orderID, PartnerID: &pid, Status: domain.StatusAssigned}, nil
}

func (s stubOrderSvc) Transition(ctx context.Context, orderID string, target domain.OrderStatus, partnerID string) (*domain.Order, error) {
	if s.transition != nil {
		return s.transition(ctx, orderID, target, partnerID)
	}
	pid := partnerID
	return &domain.Order{ID: orderID, PartnerID: &pid, Status: target}, nil
}

type stubLocationSvc struct {
	ingest func(context.Context, string, float64, float64) (*domain.PartnerLocation, error)
	recent func(context.Context, string, int) ([]domain.PartnerLocation, error)
}

func (s stubLocationSvc) Ingest(ctx context.Context, partnerID string, lat, lng float64) (*domain.PartnerLocation, error) {
	if s.ingest != nil {
		return s.ingest(ctx, partnerID, lat, lng)
	}
	return &domain.PartnerLocation{ID: "l1", PartnerID: partnerID, Latitude: lat, Longitude: lng}, nil
}

func (s stubLocationSvc) Recent(ctx context.Context, partnerID string, limit int) ([]domain.PartnerLocation, error) {
	if s.recent != nil {
		return s.recent(ctx, partnerID, limit)
	}
	return nil, nil
}

type stubEarningsSvc struct {
	today   func(context.Context, string) (*services.TodaySummary, error)
	history func(context.Context, string) ([]services.EarningEntry, error)
}

func (s stubEarningsSvc) Today(ctx context.Context, partnerID string) (*services.TodaySummary, error) {
	if s.today != nil {
		return s.today(ctx, partnerID)
	}
	return &services.TodaySummary{}, nil
}

func (s stubEarningsSvc) History(ctx context.Context, partnerID string) ([]services.EarningEntry, error) {
	if s.history != nil {
		return s.history(ctx, partnerID)
	}
	return nil, nil
}

// ---------- router scaffolding ----------

// newHandlers wires a Handlers with stubbed services and a fresh hub.
func newHandlers(p PartnerAPI, o OrderAPI, l LocationAPI, e EarningsAPI) *Handlers {
	return New(p, o, l, e, hub.New(noplog()), hub.Options{})
}

// authedRouter returns a Gin engine that binds partnerID before the given
// route is invoked, mimicking the auth middleware.
func authedRouter(partnerID string, register func(r *gin.Engine)) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("partnerID", partnerID)
		c.Next()
	})
	register(r)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, newBody(body))
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)
	return w
}
