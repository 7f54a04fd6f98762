package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jwaldner/breakingbad/internal/pricing"
)

func TestYearsToExpiration(t *testing.T) {
	now := time.Date(2024, 3, 15, 17, 30, 0, 0, time.UTC)

	years, err := YearsToExpiration("2025-03-15", now)
	require.NoError(t, err)
	require.InDelta(t, 365/DaysPerYear, years, 1e-12)

	years, err = YearsToExpiration("2024-03-16", now)
	require.NoError(t, err)
	require.InDelta(t, 1/DaysPerYear, years, 1e-12)
}

func TestYearsToExpirationRejects(t *testing.T) {
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	for _, date := range []string{"2024-03-15", "2023-12-01", "15/03/2025", ""} {
		_, err := YearsToExpiration(date, now)
		require.True(t, errors.Is(err, pricing.ErrInvalidInput), "date %q", date)

		var perr *pricing.Error
		require.True(t, errors.As(err, &perr))
		require.Equal(t, "expirationDate", perr.Field)
	}
}

func TestNextMonthlyExpiration(t *testing.T) {
	testCases := []struct {
		now  time.Time
		want string
	}{
		// March 2024 third Friday is the 15th
		{time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "2024-03-15"},
		{time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC), "2024-03-15"},
		{time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC), "2024-04-19"},
		{time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC), "2024-04-19"},
		{time.Date(2024, 12, 28, 0, 0, 0, 0, time.UTC), "2025-01-17"},
	}
	for _, tc := range testCases {
		require.Equal(t, tc.want, NextMonthlyExpiration(tc.now), tc.now.String())
	}
}
