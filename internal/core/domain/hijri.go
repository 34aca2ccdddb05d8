package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidHijriYear  = errors.New("hijri year must be positive")
	ErrInvalidHijriMonth = errors.New("hijri month must be between 1 and 12")
	ErrInvalidHijriDay   = errors.New("hijri day exceeds the length of the month")
)

// HijriMonthLengths is the alternating 30/29 day table used by the
// arithmetic conversion mode. It is a deliberate approximation: real
// Umm al-Qura month lengths vary by observation.
var HijriMonthLengths = [12]int{30, 29, 30, 29, 30, 29, 30, 29, 30, 29, 30, 29}

// HijriDate is a date in the Islamic (lunar) calendar.
type HijriDate struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

func (h HijriDate) Validate() error {
	if h.Year < 1 {
		return ErrInvalidHijriYear
	}
	if h.Month < 1 || h.Month > 12 {
		return ErrInvalidHijriMonth
	}
	if h.Day < 1 || h.Day > HijriMonthLengths[h.Month-1] {
		return ErrInvalidHijriDay
	}
	return nil
}

func (h HijriDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d AH", h.Year, h.Month, h.Day)
}
