package hijri

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ahmed11551/SmartTasbihGoals/internal/core/domain"
)

// hijriEpoch anchors 1 Muharram 1 AH to 16 July 622 CE (proleptic
// Gregorian).
var hijriEpoch = time.Date(622, time.July, 16, 0, 0, 0, 0, time.UTC)

// meanYearDays is the mean Hijri year length in days. Decimal arithmetic
// keeps the conversion bit-identical across runs and platforms.
var meanYearDays = decimal.RequireFromString("354.367")

// ArithmeticConverter is the deterministic local approximation used when
// the calendar authority is unavailable. It is a degraded mode: round
// trips are consistent, absolute dates can drift a few days from the
// observed Umm al-Qura calendar. It must never be treated as
// authoritative.
type ArithmeticConverter struct{}

func NewArithmeticConverter() *ArithmeticConverter {
	return &ArithmeticConverter{}
}

func (c *ArithmeticConverter) ToHijri(_ context.Context, date time.Time, _ domain.CalendarVariant) (domain.HijriDate, error) {
	days := daysSinceEpoch(date)
	if days < 0 {
		// Pre-epoch dates cannot be represented; clamp to the epoch.
		return domain.HijriDate{Year: 1, Month: 1, Day: 1}, nil
	}

	d := decimal.NewFromInt(days)
	years := d.Div(meanYearDays).Floor()
	remaining := d.Sub(years.Mul(meanYearDays))

	month := 0
	for i, length := range domain.HijriMonthLengths {
		l := decimal.NewFromInt(int64(length))
		if remaining.LessThan(l) {
			month = i + 1
			break
		}
		remaining = remaining.Sub(l)
	}

	day := int(remaining.Floor().IntPart()) + 1
	if month == 0 {
		// The month table sums to 354 but the mean year is 354.367 days,
		// so an offset in the fractional tail falls past every month.
		// It belongs to the end of the year, not to 12/1.
		month = 12
		day = domain.HijriMonthLengths[11]
	}

	return domain.HijriDate{
		Year:  int(years.IntPart()) + 1,
		Month: month,
		Day:   day,
	}, nil
}

func (c *ArithmeticConverter) ToGregorian(_ context.Context, date domain.HijriDate) (time.Time, error) {
	if err := date.Validate(); err != nil {
		return time.Time{}, err
	}

	total := meanYearDays.Mul(decimal.NewFromInt(int64(date.Year - 1)))
	for _, length := range domain.HijriMonthLengths[:date.Month-1] {
		total = total.Add(decimal.NewFromInt(int64(length)))
	}
	total = total.Add(decimal.NewFromInt(int64(date.Day - 1)))

	days := total.Floor().IntPart()
	return hijriEpoch.AddDate(0, 0, int(days)), nil
}

func daysSinceEpoch(t time.Time) int64 {
	t = t.UTC()
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return int64(midnight.Sub(hijriEpoch).Hours() / 24)
}
