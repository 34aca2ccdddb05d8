package domain

import (
	"context"
	"time"
)

type CalendarVariant string

const (
	VariantUmmAlQura CalendarVariant = "ummalqura"
	VariantIslamic   CalendarVariant = "islamic"
)

// DateConverter converts between Gregorian and Hijri dates.
//
// Implementations are interchangeable at call time: the engine pairs a
// remote authority with a deterministic arithmetic approximation and
// callers never learn which one answered.
type DateConverter interface {
	// ToHijri converts a Gregorian date to its Hijri equivalent.
	ToHijri(ctx context.Context, date time.Time, variant CalendarVariant) (HijriDate, error)

	// ToGregorian converts a Hijri date back to a Gregorian one.
	ToGregorian(ctx context.Context, date HijriDate) (time.Time, error)
}
