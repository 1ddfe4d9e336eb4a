package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gorm.io/gorm"

	"github.com/swiftroute/partner-backend/internal/domain"
	"github.com/swiftroute/partner-backend/internal/repo"
)

// inr renders amounts the way the app shows them to partners.
var inr = message.NewPrinter(language.MustParse("en-IN"))

// FormatINR renders an amount as an Indian-formatted rupee string, e.g.
// "₹1,23,456.50".
func FormatINR(amount float64) string {
	return inr.Sprintf("%v", currency.Symbol(currency.INR.Amount(amount)))
}

// EarningsService reads the credit ledger produced by delivered orders.
type EarningsService struct {
	DB *gorm.DB
}

// TodaySummary is the partner's running total for the current day.
type TodaySummary struct {
	Amount          float64 `json:"amount"`
	AmountFormatted string  `json:"amount_formatted"`
	Deliveries      int64   `json:"deliveries"`
	Since           string  `json:"since"`
}

// Today sums the partner's earnings and delivered orders since local
// midnight.
func (s *EarningsService) Today(ctx context.Context, partnerID string) (*TodaySummary, error) {
	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	amount, err := repo.SumEarningsSince(ctx, s.DB, partnerID, midnight)
	if err != nil {
		return nil, fmt.Errorf("earnings today: sum: %w", err)
	}
	deliveries, err := repo.CountDeliveredSince(ctx, s.DB, partnerID, midnight)
	if err != nil {
		return nil, fmt.Errorf("earnings today: count: %w", err)
	}

	return &TodaySummary{
		Amount:          amount,
		AmountFormatted: FormatINR(amount),
		Deliveries:      deliveries,
		Since:           midnight.Format(time.RFC3339),
	}, nil
}

// EarningEntry is one ledger row enriched with its display amount.
type EarningEntry struct {
	domain.Earning
	AmountFormatted string `json:"amount_formatted"`
}

// History returns the partner's full ledger, most recent first.
func (s *EarningsService) History(ctx context.Context, partnerID string) ([]EarningEntry, error) {
	rows, err := repo.ListEarningsByPartner(ctx, s.DB, partnerID)
	if err != nil {
		return nil, fmt.Errorf("earnings history: %w", err)
	}
	out := make([]EarningEntry, 0, len(rows))
	for _, e := range rows {
		out = append(out, EarningEntry{Earning: e, AmountFormatted: FormatINR(e.Amount)})
	}
	return out, nil
}
