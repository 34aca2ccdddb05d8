package hijri

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmed11551/SmartTasbihGoals/internal/core/domain"
)

func TestArithmeticConverter_ToHijri(t *testing.T) {
	ctx := context.Background()
	c := NewArithmeticConverter()

	t.Run("Epoch maps to 1 Muharram 1 AH", func(t *testing.T) {
		h, err := c.ToHijri(ctx, time.Date(622, time.July, 16, 0, 0, 0, 0, time.UTC), domain.VariantUmmAlQura)
		require.NoError(t, err)
		assert.Equal(t, domain.HijriDate{Year: 1, Month: 1, Day: 1}, h)
	})

	t.Run("Pre-epoch dates clamp to the epoch", func(t *testing.T) {
		h, err := c.ToHijri(ctx, time.Date(600, time.January, 1, 0, 0, 0, 0, time.UTC), domain.VariantUmmAlQura)
		require.NoError(t, err)
		assert.Equal(t, domain.HijriDate{Year: 1, Month: 1, Day: 1}, h)
	})

	t.Run("Modern date lands in a plausible Hijri year", func(t *testing.T) {
		h, err := c.ToHijri(ctx, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), domain.VariantUmmAlQura)
		require.NoError(t, err)

		// Sha'ban 1445 by the Umm al-Qura calendar; the approximation may
		// drift by a few days but never by a month-sized amount.
		assert.Equal(t, 1445, h.Year)
		assert.NoError(t, h.Validate())
	})

	t.Run("Fractional year tail maps to the last day, not 12/1", func(t *testing.T) {
		// 354 days after the epoch: past every month in the 354-day table
		// but still inside the first 354.367-day mean year.
		h, err := c.ToHijri(ctx, time.Date(623, time.July, 5, 0, 0, 0, 0, time.UTC), domain.VariantUmmAlQura)
		require.NoError(t, err)
		assert.Equal(t, domain.HijriDate{Year: 1, Month: 12, Day: 29}, h)

		back, err := c.ToGregorian(ctx, h)
		require.NoError(t, err)
		drift := back.Sub(time.Date(623, time.July, 5, 0, 0, 0, 0, time.UTC)).Hours() / 24
		assert.LessOrEqual(t, drift, 2.0)
		assert.GreaterOrEqual(t, drift, -2.0)
	})

	t.Run("Time of day does not change the result", func(t *testing.T) {
		morning, err := c.ToHijri(ctx, time.Date(2024, time.March, 1, 1, 0, 0, 0, time.UTC), domain.VariantUmmAlQura)
		require.NoError(t, err)
		evening, err := c.ToHijri(ctx, time.Date(2024, time.March, 1, 23, 0, 0, 0, time.UTC), domain.VariantUmmAlQura)
		require.NoError(t, err)
		assert.Equal(t, morning, evening)
	})
}

func TestArithmeticConverter_ToGregorian(t *testing.T) {
	ctx := context.Background()
	c := NewArithmeticConverter()

	t.Run("1 Muharram 1 AH maps to the epoch", func(t *testing.T) {
		g, err := c.ToGregorian(ctx, domain.HijriDate{Year: 1, Month: 1, Day: 1})
		require.NoError(t, err)
		assert.Equal(t, time.Date(622, time.July, 16, 0, 0, 0, 0, time.UTC), g)
	})

	t.Run("Error: invalid hijri date", func(t *testing.T) {
		_, err := c.ToGregorian(ctx, domain.HijriDate{Year: 1445, Month: 2, Day: 30})
		assert.ErrorIs(t, err, domain.ErrInvalidHijriDay)
	})
}

func TestArithmeticConverter_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewArithmeticConverter()

	dates := []time.Time{
		time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2004, time.May, 21, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC),
	}

	for _, d := range dates {
		h, err := c.ToHijri(ctx, d, domain.VariantUmmAlQura)
		require.NoError(t, err)

		back, err := c.ToGregorian(ctx, h)
		require.NoError(t, err)

		// Mean-year arithmetic loses at most a couple of days per trip.
		drift := back.Sub(d).Hours() / 24
		assert.LessOrEqual(t, drift, 2.0, "round trip drifted too far for %s", d)
		assert.GreaterOrEqual(t, drift, -2.0, "round trip drifted too far for %s", d)
	}
}
