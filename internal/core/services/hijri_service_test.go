package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmed11551/SmartTasbihGoals/internal/adapters/hijri"
	"github.com/ahmed11551/SmartTasbihGoals/internal/core/services"
)

func TestHijriService_ResolveBulughDate(t *testing.T) {
	ctx := context.Background()
	svc := services.NewHijriService(hijri.NewFailover(nil, hijri.NewArithmeticConverter()))

	t.Run("Lunar years land earlier than solar years", func(t *testing.T) {
		birth := time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC)

		bulugh, err := svc.ResolveBulughDate(ctx, birth, 15)
		require.NoError(t, err)

		naive := birth.AddDate(15, 0, 0)
		assert.True(t, bulugh.Before(naive),
			"15 hijri years (%s) must come before 15 gregorian years (%s)", bulugh, naive)

		// 15 lunar years are roughly 5316 solar days; allow slack for the
		// arithmetic approximation.
		days := bulugh.Sub(birth).Hours() / 24
		assert.InDelta(t, 5316, days, 40)
	})

	t.Run("Day clamps when the shifted month is shorter", func(t *testing.T) {
		// A birth date on a 30th hijri day still resolves without error.
		birth := time.Date(1990, time.June, 23, 0, 0, 0, 0, time.UTC)
		_, err := svc.ResolveBulughDate(ctx, birth, 15)
		assert.NoError(t, err)
	})
}
