package domain

import (
	"errors"
	"time"
)

var (
	ErrInvalidGender        = errors.New("gender must be male or female")
	ErrInvalidMadhab        = errors.New("madhab must be hanafi, shafii, maliki or hanbali")
	ErrInvalidBulughAge     = errors.New("bulugh age must be between 10 and 20")
	ErrInvalidPrayer        = errors.New("unknown prayer")
	ErrNegativeProgress     = errors.New("progress count cannot be negative")
	ErrMissingPeriodStart   = errors.New("a birth date, birth year or manual period is required")
	ErrNegativeManualPeriod = errors.New("manual period years and months cannot be negative")
)

type Prayer string

const (
	PrayerFajr    Prayer = "fajr"
	PrayerDhuhr   Prayer = "dhuhr"
	PrayerAsr     Prayer = "asr"
	PrayerMaghrib Prayer = "maghrib"
	PrayerIsha    Prayer = "isha"
	PrayerWitr    Prayer = "witr"
)

// DailyPrayers are the five daily obligations. Witr is handled separately
// because its obligatory status depends on the madhab.
var DailyPrayers = []Prayer{PrayerFajr, PrayerDhuhr, PrayerAsr, PrayerMaghrib, PrayerIsha}

// AllPrayers covers every tracked obligation including witr.
var AllPrayers = []Prayer{PrayerFajr, PrayerDhuhr, PrayerAsr, PrayerMaghrib, PrayerIsha, PrayerWitr}

func (p Prayer) Valid() bool {
	switch p {
	case PrayerFajr, PrayerDhuhr, PrayerAsr, PrayerMaghrib, PrayerIsha, PrayerWitr:
		return true
	}
	return false
}

type Madhab string

const (
	MadhabHanafi  Madhab = "hanafi"
	MadhabShafii  Madhab = "shafii"
	MadhabMaliki  Madhab = "maliki"
	MadhabHanbali Madhab = "hanbali"
)

func (m Madhab) Valid() bool {
	switch m {
	case MadhabHanafi, MadhabShafii, MadhabMaliki, MadhabHanbali:
		return true
	}
	return false
}

// CountsWitr reports whether the school treats witr as a mandatory prayer
// that accumulates debt. Only the Hanafi school does.
func (m Madhab) CountsWitr() bool {
	return m == MadhabHanafi
}

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

type DebtStatus string

const (
	StatusUncalculated DebtStatus = "uncalculated"
	StatusActive       DebtStatus = "active"
	StatusCompleted    DebtStatus = "completed"
)

const (
	DefaultBulughAge              = 15
	MinBulughAge                  = 10
	MaxBulughAge                  = 20
	DefaultHaidDaysPerMonth       = 7
	DefaultNifasDaysPerChildbirth = 40
)

// QazaDebt is the per-user missed-prayer debt record. Debt fields and
// period bounds are fully replaced on every calculation; progress fields
// are mutated independently by completion events.
type QazaDebt struct {
	UserID string `json:"user_id" db:"user_id"`

	Gender          Gender     `json:"gender" db:"gender"`
	BirthDate       *time.Time `json:"birth_date,omitempty" db:"birth_date"`
	BirthYear       *int       `json:"birth_year,omitempty" db:"birth_year"`
	BulughAge       int        `json:"bulugh_age" db:"bulugh_age"`
	BulughDate      *time.Time `json:"bulugh_date,omitempty" db:"bulugh_date"`
	PrayerStartDate *time.Time `json:"prayer_start_date,omitempty" db:"prayer_start_date"`
	PrayerStartYear *int       `json:"prayer_start_year,omitempty" db:"prayer_start_year"`
	TodayAsStart    bool       `json:"today_as_start" db:"today_as_start"`
	Madhab          Madhab     `json:"madhab" db:"madhab"`

	HaidDaysPerMonth       int        `json:"haid_days_per_month" db:"haid_days_per_month"`
	ChildbirthCount        int        `json:"childbirth_count" db:"childbirth_count"`
	NifasDaysPerChildbirth int        `json:"nifas_days_per_childbirth" db:"nifas_days_per_childbirth"`
	HaydNifasPeriods       PeriodList `json:"hayd_nifas_periods" db:"hayd_nifas_periods"`
	TravelDays             int        `json:"travel_days" db:"travel_days"`
	TravelPeriods          PeriodList `json:"travel_periods" db:"travel_periods"`

	TotalDays     int `json:"total_days" db:"total_days"`
	ExcludedDays  int `json:"excluded_days" db:"excluded_days"`
	EffectiveDays int `json:"effective_days" db:"effective_days"`

	FajrDebt    int `json:"fajr_debt" db:"fajr_debt"`
	DhuhrDebt   int `json:"dhuhr_debt" db:"dhuhr_debt"`
	AsrDebt     int `json:"asr_debt" db:"asr_debt"`
	MaghribDebt int `json:"maghrib_debt" db:"maghrib_debt"`
	IshaDebt    int `json:"isha_debt" db:"isha_debt"`
	WitrDebt    int `json:"witr_debt" db:"witr_debt"`

	// Travel-shortened counters, reported separately; they never reduce
	// the primary debt counts.
	DhuhrSafar int `json:"dhuhr_safar" db:"dhuhr_safar"`
	AsrSafar   int `json:"asr_safar" db:"asr_safar"`
	IshaSafar  int `json:"isha_safar" db:"isha_safar"`

	FajrProgress    int `json:"fajr_progress" db:"fajr_progress"`
	DhuhrProgress   int `json:"dhuhr_progress" db:"dhuhr_progress"`
	AsrProgress     int `json:"asr_progress" db:"asr_progress"`
	MaghribProgress int `json:"maghrib_progress" db:"maghrib_progress"`
	IshaProgress    int `json:"isha_progress" db:"isha_progress"`
	WitrProgress    int `json:"witr_progress" db:"witr_progress"`

	PeriodStart  *time.Time `json:"period_start,omitempty" db:"period_start"`
	PeriodEnd    *time.Time `json:"period_end,omitempty" db:"period_end"`
	Status       DebtStatus `json:"status" db:"status"`
	CalculatedAt *time.Time `json:"calculated_at,omitempty" db:"calculated_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func NewQazaDebt(userID string, now time.Time) *QazaDebt {
	now = now.UTC()
	return &QazaDebt{
		UserID:                 userID,
		BulughAge:              DefaultBulughAge,
		Madhab:                 MadhabHanafi,
		HaidDaysPerMonth:       DefaultHaidDaysPerMonth,
		NifasDaysPerChildbirth: DefaultNifasDaysPerChildbirth,
		HaydNifasPeriods:       PeriodList{},
		TravelPeriods:          PeriodList{},
		Status:                 StatusUncalculated,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
}

// Calculation is one debt breakdown produced by the calculator.
type Calculation struct {
	Fajr    int
	Dhuhr   int
	Asr     int
	Maghrib int
	Isha    int
	Witr    int

	DhuhrSafar int
	AsrSafar   int
	IshaSafar  int

	TotalDays     int
	ExcludedDays  int
	EffectiveDays int

	BulughDate  *time.Time
	PeriodStart time.Time
	PeriodEnd   time.Time

	// Warnings surface double-count risks (aggregate and explicit inputs
	// covering the same phenomenon) without rejecting the calculation.
	Warnings []string
}

// ApplyCalculation replaces the debt fields and period bounds with a fresh
// breakdown. Progress counters are preserved: they record real completed
// worship regardless of how the debt total was derived.
func (d *QazaDebt) ApplyCalculation(calc Calculation, now time.Time) {
	now = now.UTC()

	d.FajrDebt = calc.Fajr
	d.DhuhrDebt = calc.Dhuhr
	d.AsrDebt = calc.Asr
	d.MaghribDebt = calc.Maghrib
	d.IshaDebt = calc.Isha
	d.WitrDebt = calc.Witr

	d.DhuhrSafar = calc.DhuhrSafar
	d.AsrSafar = calc.AsrSafar
	d.IshaSafar = calc.IshaSafar

	d.TotalDays = calc.TotalDays
	d.ExcludedDays = calc.ExcludedDays
	d.EffectiveDays = calc.EffectiveDays

	d.BulughDate = calc.BulughDate
	start := calc.PeriodStart.UTC()
	end := calc.PeriodEnd.UTC()
	d.PeriodStart = &start
	d.PeriodEnd = &end

	d.CalculatedAt = &now
	d.UpdatedAt = now
	d.RefreshStatus()
}

// DebtFor returns the debt count for a prayer.
func (d *QazaDebt) DebtFor(p Prayer) int {
	switch p {
	case PrayerFajr:
		return d.FajrDebt
	case PrayerDhuhr:
		return d.DhuhrDebt
	case PrayerAsr:
		return d.AsrDebt
	case PrayerMaghrib:
		return d.MaghribDebt
	case PrayerIsha:
		return d.IshaDebt
	case PrayerWitr:
		return d.WitrDebt
	}
	return 0
}

// ProgressFor returns the progress count for a prayer.
func (d *QazaDebt) ProgressFor(p Prayer) int {
	switch p {
	case PrayerFajr:
		return d.FajrProgress
	case PrayerDhuhr:
		return d.DhuhrProgress
	case PrayerAsr:
		return d.AsrProgress
	case PrayerMaghrib:
		return d.MaghribProgress
	case PrayerIsha:
		return d.IshaProgress
	case PrayerWitr:
		return d.WitrProgress
	}
	return 0
}

// SetProgress sets the absolute progress count for a prayer. Counts above
// the debt are accepted; Remaining clamps at zero so over-completion never
// shows up as negative remaining debt.
func (d *QazaDebt) SetProgress(p Prayer, count int, now time.Time) error {
	if !p.Valid() {
		return ErrInvalidPrayer
	}
	if count < 0 {
		return ErrNegativeProgress
	}

	switch p {
	case PrayerFajr:
		d.FajrProgress = count
	case PrayerDhuhr:
		d.DhuhrProgress = count
	case PrayerAsr:
		d.AsrProgress = count
	case PrayerMaghrib:
		d.MaghribProgress = count
	case PrayerIsha:
		d.IshaProgress = count
	case PrayerWitr:
		d.WitrProgress = count
	}

	d.UpdatedAt = now.UTC()
	return nil
}

// Remaining is the outstanding debt for a prayer, clamped at zero.
func (d *QazaDebt) Remaining(p Prayer) int {
	r := d.DebtFor(p) - d.ProgressFor(p)
	if r < 0 {
		return 0
	}
	return r
}

// Settled reports whether every obligation's progress has reached its debt.
func (d *QazaDebt) Settled() bool {
	for _, p := range AllPrayers {
		if d.ProgressFor(p) < d.DebtFor(p) {
			return false
		}
	}
	return true
}

// RefreshStatus recomputes the lifecycle state from the record's fields.
func (d *QazaDebt) RefreshStatus() {
	if d.CalculatedAt == nil {
		d.Status = StatusUncalculated
		return
	}
	if d.Settled() {
		d.Status = StatusCompleted
		return
	}
	d.Status = StatusActive
}
