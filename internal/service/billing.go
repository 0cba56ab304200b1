package service

import (
	"math"
	"time"

	"github.com/yourorg/fleetrent/internal/domain"
)

// billingDay is the billing unit. Billed days are the whole elapsed days of
// the rental interval, truncated (a rental of one day and three hours bills
// one day), with a one-day minimum: there are no fractional-day discounts.
const billingDay = 24 * time.Hour

func daysCharged(startedAt, endedAt time.Time) int {
	days := int(endedAt.UTC().Sub(startedAt.UTC()) / billingDay)
	if days < 1 {
		return 1
	}
	return days
}

// roundCharge rounds to 2 decimal places, half away from zero.
func roundCharge(v float64) float64 {
	return math.Round(v*100) / 100
}

// billAt builds the BillFunc for a daily rate, evaluated by the rental
// repository inside the closing transaction.
func billAt(dailyRate float64) domain.BillFunc {
	return func(startedAt, endedAt time.Time) (int, float64) {
		days := daysCharged(startedAt, endedAt)
		return days, roundCharge(float64(days) * dailyRate)
	}
}
