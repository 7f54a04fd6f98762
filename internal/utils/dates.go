package utils

import (
	"time"

	"github.com/jwaldner/breakingbad/internal/pricing"
)

// DaysPerYear is the ACT/365.25 day count used to turn an expiration date
// into a time to expiration.
const DaysPerYear = 365.25

const dateLayout = "2006-01-02"

// YearsToExpiration converts a YYYY-MM-DD expiration into years from now.
// Both ends are taken at UTC midnight, so an expiry today is zero years and
// is rejected.
func YearsToExpiration(date string, now time.Time) (float64, error) {
	expiry, err := time.Parse(dateLayout, date)
	if err != nil {
		return 0, pricing.InvalidInput("validate", "expirationDate", "%q is not a YYYY-MM-DD date", date)
	}
	n := now.UTC()
	today := time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)

	days := expiry.Sub(today).Hours() / 24
	if days <= 0 {
		return 0, pricing.InvalidInput("validate", "expirationDate", "%s is not in the future", date)
	}
	return days / DaysPerYear, nil
}

// NextMonthlyExpiration returns the next standard monthly expiration (third
// Friday) as YYYY-MM-DD:
// - third Friday of the current month if we haven't reached its week yet
// - third Friday of next month if we're in or past the expiration week
func NextMonthlyExpiration(now time.Time) string {
	thirdFriday := thirdFridayOf(now.Year(), now.Month(), now.Location())
	weekStart := thirdFriday.AddDate(0, 0, -7)

	if !now.Before(weekStart) {
		next := time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, now.Location())
		return thirdFridayOf(next.Year(), next.Month(), now.Location()).Format(dateLayout)
	}
	return thirdFriday.Format(dateLayout)
}

func thirdFridayOf(year int, month time.Month, loc *time.Location) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	for first.Weekday() != time.Friday {
		first = first.AddDate(0, 0, 1)
	}
	return first.AddDate(0, 0, 14)
}
