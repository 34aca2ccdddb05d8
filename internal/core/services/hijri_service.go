package services

import (
	"context"
	"time"

	"github.com/ahmed11551/SmartTasbihGoals/internal/core/domain"
)

// HijriService resolves lunar-calendar-adjusted dates on top of a
// DateConverter.
type HijriService struct {
	converter domain.DateConverter
}

func NewHijriService(converter domain.DateConverter) *HijriService {
	return &HijriService{converter: converter}
}

// ResolveBulughDate computes the Gregorian date at which prayer becomes
// obligatory: the birth date converted to Hijri, the bulugh age added to
// the Hijri year component only, then converted back.
//
// Adding solar years to the Gregorian birth date instead would undercount
// by roughly 3% per decade, shifting the period start by months once the
// debt spans decades. This only needs round-trip consistency, so it stays
// correct when the converter runs in arithmetic fallback mode.
func (s *HijriService) ResolveBulughDate(ctx context.Context, birthDate time.Time, bulughAge int) (time.Time, error) {
	return s.AddHijriYears(ctx, birthDate, bulughAge)
}

// AddHijriYears shifts a Gregorian date forward by whole Hijri years.
func (s *HijriService) AddHijriYears(ctx context.Context, date time.Time, years int) (time.Time, error) {
	h, err := s.converter.ToHijri(ctx, date, domain.VariantUmmAlQura)
	if err != nil {
		return time.Time{}, err
	}

	h.Year += years

	// A day-30 birth date can land in a 29-day month after the year
	// shift; clamp instead of rejecting.
	if max := domain.HijriMonthLengths[h.Month-1]; h.Day > max {
		h.Day = max
	}

	return s.converter.ToGregorian(ctx, h)
}
