package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the canonical local-date key format for calendar entries.
const DateLayout = "2006-01-02"

var ErrInvalidDateLocal = errors.New("date must be formatted as YYYY-MM-DD")

// CalendarEntry is one user's tracking record for one local calendar day.
// Entries are unique per (user, date); they are created by the
// materializer or by a direct mark and are only ever updated, never
// destroyed.
type CalendarEntry struct {
	ID        string `json:"id" db:"id"`
	UserID    string `json:"user_id" db:"user_id"`
	DateLocal string `json:"date_local" db:"date_local"`

	// IsDebtDay marks dates falling inside the computed debt period.
	IsDebtDay bool `json:"is_debt_day" db:"is_debt_day"`

	Fajr    bool `json:"fajr" db:"fajr"`
	Dhuhr   bool `json:"dhuhr" db:"dhuhr"`
	Asr     bool `json:"asr" db:"asr"`
	Maghrib bool `json:"maghrib" db:"maghrib"`
	Isha    bool `json:"isha" db:"isha"`
	Witr    bool `json:"witr" db:"witr"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func NewCalendarEntry(userID, dateLocal string, now time.Time) (*CalendarEntry, error) {
	if userID == "" {
		return nil, errors.New("user id is required")
	}
	if _, err := time.Parse(DateLayout, dateLocal); err != nil {
		return nil, ErrInvalidDateLocal
	}

	now = now.UTC()
	return &CalendarEntry{
		ID:        uuid.NewString(),
		UserID:    userID,
		DateLocal: dateLocal,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Apply performs a partial update: only the prayers present in marks
// change, everything else keeps its current value.
func (e *CalendarEntry) Apply(marks map[Prayer]bool, now time.Time) error {
	for p := range marks {
		if !p.Valid() {
			return ErrInvalidPrayer
		}
	}

	for p, done := range marks {
		switch p {
		case PrayerFajr:
			e.Fajr = done
		case PrayerDhuhr:
			e.Dhuhr = done
		case PrayerAsr:
			e.Asr = done
		case PrayerMaghrib:
			e.Maghrib = done
		case PrayerIsha:
			e.Isha = done
		case PrayerWitr:
			e.Witr = done
		}
	}

	e.UpdatedAt = now.UTC()
	return nil
}

// Completed reports whether the given prayer is marked done on this date.
func (e *CalendarEntry) Completed(p Prayer) bool {
	switch p {
	case PrayerFajr:
		return e.Fajr
	case PrayerDhuhr:
		return e.Dhuhr
	case PrayerAsr:
		return e.Asr
	case PrayerMaghrib:
		return e.Maghrib
	case PrayerIsha:
		return e.Isha
	case PrayerWitr:
		return e.Witr
	}
	return false
}
