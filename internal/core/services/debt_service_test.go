package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmed11551/SmartTasbihGoals/internal/adapters/hijri"
	"github.com/ahmed11551/SmartTasbihGoals/internal/adapters/repository"
	"github.com/ahmed11551/SmartTasbihGoals/internal/core/domain"
	"github.com/ahmed11551/SmartTasbihGoals/internal/core/services"
	"github.com/ahmed11551/SmartTasbihGoals/internal/core/workers"
)

var fixedNow = time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)

func newDebtService(t *testing.T) (*services.DebtService, *repository.InMemoryDebtRepository) {
	t.Helper()

	repo := repository.NewInMemoryDebtRepository()
	calendarRepo := repository.NewInMemoryCalendarRepository()
	worker := workers.NewMaterializeWorker(calendarRepo)

	hijriSvc := services.NewHijriService(hijri.NewFailover(nil, hijri.NewArithmeticConverter()))
	svc := services.NewDebtService(repo, hijriSvc, worker, services.NewUserLocks()).
		WithClock(func() time.Time { return fixedNow })

	return svc, repo
}

func intPtr(v int) *int { return &v }

func TestDebtService_Calculate_ManualPeriod(t *testing.T) {
	ctx := context.Background()
	svc, _ := newDebtService(t)

	// Five years of debt for a woman with default monthly menstruation:
	// 1825 synthetic days, floor(1825/30.44*7) = 419 excluded, 1406 left.
	debt, warnings, err := svc.Calculate(ctx, services.CalculateInput{
		UserID:       "u1",
		Gender:       domain.GenderFemale,
		Madhab:       domain.MadhabShafii,
		ManualPeriod: &services.ManualPeriod{Years: 5},
	})
	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.Equal(t, 1825, debt.TotalDays)
	assert.Equal(t, 419, debt.ExcludedDays)
	assert.Equal(t, 1406, debt.EffectiveDays)

	assert.Equal(t, 1406, debt.FajrDebt)
	assert.Equal(t, 1406, debt.IshaDebt)
	assert.Equal(t, 0, debt.WitrDebt, "shafii does not count witr")
	assert.Equal(t, domain.StatusActive, debt.Status)
}

func TestDebtService_Calculate_BulughOnset(t *testing.T) {
	ctx := context.Background()
	svc, _ := newDebtService(t)

	birth := time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC)

	debt, _, err := svc.Calculate(ctx, services.CalculateInput{
		UserID:    "u1",
		Gender:    domain.GenderMale,
		Madhab:    domain.MadhabHanafi,
		BirthDate: &birth,
	})
	require.NoError(t, err)

	require.NotNil(t, debt.BulughDate)
	naive := birth.AddDate(15, 0, 0)
	assert.True(t, debt.BulughDate.Before(naive),
		"lunar onset %s must precede the solar-year estimate %s", debt.BulughDate, naive)

	// The period runs from onset to the fixed clock; lunar onset being
	// earlier means strictly more debt days than the solar estimate.
	solarDays := domain.WholeDaysBetween(naive, fixedNow)
	assert.Greater(t, debt.TotalDays, solarDays)
	assert.Less(t, debt.TotalDays, domain.WholeDaysBetween(birth, fixedNow))

	assert.Equal(t, debt.EffectiveDays, debt.FajrDebt)
	assert.Equal(t, debt.EffectiveDays, debt.WitrDebt, "hanafi counts witr")
}

func TestDebtService_Calculate_EndBounds(t *testing.T) {
	ctx := context.Background()

	t.Run("Prayer start year caps the period", func(t *testing.T) {
		svc, _ := newDebtService(t)

		debt, _, err := svc.Calculate(ctx, services.CalculateInput{
			UserID:          "u1",
			Gender:          domain.GenderMale,
			BirthYear:       intPtr(1990),
			PrayerStartYear: intPtr(2010),
		})
		require.NoError(t, err)

		require.NotNil(t, debt.PeriodEnd)
		assert.Equal(t, time.Date(2010, time.January, 1, 0, 0, 0, 0, time.UTC), debt.PeriodEnd.UTC())
	})

	t.Run("Today as start overrides explicit references", func(t *testing.T) {
		svc, _ := newDebtService(t)

		debt, _, err := svc.Calculate(ctx, services.CalculateInput{
			UserID:          "u1",
			Gender:          domain.GenderMale,
			BirthYear:       intPtr(1990),
			PrayerStartYear: intPtr(2010),
			TodayAsStart:    true,
		})
		require.NoError(t, err)

		require.NotNil(t, debt.PeriodEnd)
		assert.Equal(t, fixedNow, debt.PeriodEnd.UTC())
	})
}

func TestDebtService_Calculate_Validation(t *testing.T) {
	ctx := context.Background()

	t.Run("Error: no period start reference", func(t *testing.T) {
		svc, _ := newDebtService(t)
		_, _, err := svc.Calculate(ctx, services.CalculateInput{
			UserID: "u1",
			Gender: domain.GenderMale,
		})
		assert.ErrorIs(t, err, domain.ErrMissingPeriodStart)
	})

	t.Run("Error: invalid gender", func(t *testing.T) {
		svc, _ := newDebtService(t)
		_, _, err := svc.Calculate(ctx, services.CalculateInput{
			UserID:       "u1",
			Gender:       domain.Gender("other"),
			ManualPeriod: &services.ManualPeriod{Years: 1},
		})
		assert.ErrorIs(t, err, domain.ErrInvalidGender)
	})

	t.Run("Error: bulugh age out of range", func(t *testing.T) {
		svc, _ := newDebtService(t)
		_, _, err := svc.Calculate(ctx, services.CalculateInput{
			UserID:    "u1",
			Gender:    domain.GenderMale,
			BirthYear: intPtr(1990),
			BulughAge: intPtr(25),
		})
		assert.ErrorIs(t, err, domain.ErrInvalidBulughAge)
	})

	t.Run("Error: negative manual period", func(t *testing.T) {
		svc, _ := newDebtService(t)
		_, _, err := svc.Calculate(ctx, services.CalculateInput{
			UserID:       "u1",
			Gender:       domain.GenderMale,
			ManualPeriod: &services.ManualPeriod{Years: -1},
		})
		assert.ErrorIs(t, err, domain.ErrNegativeManualPeriod)
	})

	t.Run("Error: overlapping periods reject atomically", func(t *testing.T) {
		svc, repo := newDebtService(t)

		_, _, err := svc.Calculate(ctx, services.CalculateInput{
			UserID:       "u1",
			Gender:       domain.GenderMale,
			ManualPeriod: &services.ManualPeriod{Years: 1},
			TravelPeriods: []domain.ExclusionPeriod{
				{Start: day(2023, 1, 1), End: day(2023, 1, 10)},
				{Start: day(2023, 1, 5), End: day(2023, 1, 15)},
			},
		})

		var vErr *domain.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Len(t, vErr.Violations, 1)
		assert.Contains(t, vErr.Violations[0], "travel")

		_, getErr := repo.GetByUserID(ctx, "u1")
		assert.ErrorIs(t, getErr, domain.ErrDebtNotFound, "nothing may be stored on rejection")
	})

	t.Run("Error: violations from both sets are collected", func(t *testing.T) {
		svc, _ := newDebtService(t)

		_, _, err := svc.Calculate(ctx, services.CalculateInput{
			UserID:       "u1",
			Gender:       domain.GenderFemale,
			ManualPeriod: &services.ManualPeriod{Years: 1},
			HaidDaysPerMonth: intPtr(0),
			HaydNifasPeriods: []domain.ExclusionPeriod{
				{Start: day(2023, 2, 10), End: day(2023, 2, 1)},
			},
			TravelPeriods: []domain.ExclusionPeriod{
				{Start: day(2023, 3, 10), End: day(2023, 3, 1)},
			},
		})

		var vErr *domain.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Len(t, vErr.Violations, 2)
		assert.Contains(t, vErr.Violations[0], "hayd/nifas")
		assert.Contains(t, vErr.Violations[1], "travel")
	})
}

func TestDebtService_Calculate_Warnings(t *testing.T) {
	ctx := context.Background()
	svc, _ := newDebtService(t)

	debt, warnings, err := svc.Calculate(ctx, services.CalculateInput{
		UserID:       "u1",
		Gender:       domain.GenderFemale,
		ManualPeriod: &services.ManualPeriod{Years: 1},
		HaydNifasPeriods: []domain.ExclusionPeriod{
			{Start: day(2023, 2, 1), End: day(2023, 2, 7), Kind: domain.PeriodHayd},
		},
		TravelDays: 10,
		TravelPeriods: []domain.ExclusionPeriod{
			{Start: day(2023, 5, 1), End: day(2023, 5, 5), Kind: domain.PeriodTravel},
		},
	})
	require.NoError(t, err)
	require.Len(t, warnings, 2, "both double-count risks must be surfaced")

	// 365 days: floor(365/30.44*7)=83 estimated haid, 6 explicit hayd,
	// 10 aggregate travel, 4 explicit travel.
	assert.Equal(t, 365, debt.TotalDays)
	assert.Equal(t, 83+6+10+4, debt.ExcludedDays)
	assert.Equal(t, 14, debt.DhuhrSafar, "travel counters take both sources")
}

func TestDebtService_Calculate_MonotonicExclusions(t *testing.T) {
	ctx := context.Background()

	t.Run("More monthly haid days never shrink the exclusion", func(t *testing.T) {
		svc, _ := newDebtService(t)

		prevExcluded := -1
		prevEffective := int(^uint(0) >> 1)

		for haid := 0; haid <= 15; haid++ {
			debt, _, err := svc.Calculate(ctx, services.CalculateInput{
				UserID:           "u1",
				Gender:           domain.GenderFemale,
				Madhab:           domain.MadhabShafii,
				ManualPeriod:     &services.ManualPeriod{Years: 5},
				HaidDaysPerMonth: intPtr(haid),
			})
			require.NoError(t, err)

			assert.GreaterOrEqual(t, debt.ExcludedDays, prevExcluded,
				"excluded days regressed at haid=%d", haid)
			assert.LessOrEqual(t, debt.EffectiveDays, prevEffective,
				"effective days grew at haid=%d", haid)
			assert.Equal(t, debt.EffectiveDays, debt.FajrDebt)

			prevExcluded = debt.ExcludedDays
			prevEffective = debt.EffectiveDays
		}
	})

	t.Run("More travel days never shrink the exclusion", func(t *testing.T) {
		svc, _ := newDebtService(t)

		prevExcluded := -1
		prevEffective := int(^uint(0) >> 1)

		for travel := 0; travel <= 2000; travel += 250 {
			debt, _, err := svc.Calculate(ctx, services.CalculateInput{
				UserID:       "u1",
				Gender:       domain.GenderMale,
				ManualPeriod: &services.ManualPeriod{Years: 5},
				TravelDays:   travel,
			})
			require.NoError(t, err)

			assert.GreaterOrEqual(t, debt.ExcludedDays, prevExcluded,
				"excluded days regressed at travel=%d", travel)
			assert.LessOrEqual(t, debt.EffectiveDays, prevEffective,
				"effective days grew at travel=%d", travel)
			assert.GreaterOrEqual(t, debt.EffectiveDays, 0,
				"effective days must clamp at zero, not go negative")

			prevExcluded = debt.ExcludedDays
			prevEffective = debt.EffectiveDays
		}
	})
}

func TestDebtService_Calculate_Idempotent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newDebtService(t)

	input := services.CalculateInput{
		UserID:    "u1",
		Gender:    domain.GenderMale,
		BirthDate: timePtr(time.Date(1995, time.June, 15, 0, 0, 0, 0, time.UTC)),
	}

	first, _, err := svc.Calculate(ctx, input)
	require.NoError(t, err)

	second, _, err := svc.Calculate(ctx, input)
	require.NoError(t, err)

	assert.Equal(t, first.TotalDays, second.TotalDays)
	assert.Equal(t, first.FajrDebt, second.FajrDebt)
	assert.Equal(t, first.PeriodStart.UTC(), second.PeriodStart.UTC())
}

func TestDebtService_Recalculate_PreservesProgress(t *testing.T) {
	ctx := context.Background()
	svc, repo := newDebtService(t)

	_, _, err := svc.Calculate(ctx, services.CalculateInput{
		UserID:       "u1",
		Gender:       domain.GenderMale,
		ManualPeriod: &services.ManualPeriod{Years: 2},
	})
	require.NoError(t, err)

	stored, err := repo.GetByUserID(ctx, "u1")
	require.NoError(t, err)
	require.NoError(t, stored.SetProgress(domain.PrayerFajr, 100, fixedNow))
	require.NoError(t, repo.Upsert(ctx, stored))

	recalced, _, err := svc.Calculate(ctx, services.CalculateInput{
		UserID:       "u1",
		Gender:       domain.GenderMale,
		ManualPeriod: &services.ManualPeriod{Years: 1},
	})
	require.NoError(t, err)

	assert.Equal(t, 365, recalced.FajrDebt, "debt fields are replaced")
	assert.Equal(t, 100, recalced.FajrProgress, "progress survives recalculation")
}

func timePtr(t time.Time) *time.Time { return &t }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
