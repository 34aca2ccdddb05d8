package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ahmed11551/SmartTasbihGoals/internal/core/domain"
)

// ProgressService applies completion events to the debt record. The two
// mutation paths (direct counter set and calendar-entry toggle) are
// reconciled by always recounting from calendar entries on the toggle
// path, so they can never disagree.
type ProgressService struct {
	debts    domain.QazaDebtRepository
	entries  domain.CalendarEntryRepository
	notifier domain.CompletionNotifier
	locks    *UserLocks
	now      func() time.Time
}

func NewProgressService(debts domain.QazaDebtRepository, entries domain.CalendarEntryRepository, notifier domain.CompletionNotifier, locks *UserLocks) *ProgressService {
	return &ProgressService{
		debts:    debts,
		entries:  entries,
		notifier: notifier,
		locks:    locks,
		now:      time.Now,
	}
}

// WithClock fixes the service's notion of "now" for tests.
func (s *ProgressService) WithClock(now func() time.Time) *ProgressService {
	s.now = now
	return s
}

// SetProgress is the absolute-set mutation path: {prayer, count}, not a
// delta. Requires a prior calculation.
func (s *ProgressService) SetProgress(ctx context.Context, userID string, prayer domain.Prayer, count int) (*domain.QazaDebt, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	debt, err := s.debts.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	wasSettled := debt.Status == domain.StatusCompleted

	if err := debt.SetProgress(prayer, count, s.now()); err != nil {
		return nil, err
	}
	debt.RefreshStatus()

	if err := s.debts.Upsert(ctx, debt); err != nil {
		return nil, err
	}

	s.signalIfSettled(ctx, debt, wasSettled)
	return debt, nil
}

// MarkCalendarDay is the calendar toggle path: a partial update of one
// (date, obligations) entry followed by a full recount of every prayer's
// progress from the calendar. Never incremental, by contract.
func (s *ProgressService) MarkCalendarDay(ctx context.Context, userID, dateLocal string, marks map[domain.Prayer]bool) (*domain.CalendarEntry, *domain.QazaDebt, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	debt, err := s.debts.GetByUserID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	now := s.now()

	entry, err := s.entries.GetByUserAndDate(ctx, userID, dateLocal)
	if err != nil {
		if !errors.Is(err, domain.ErrEntryNotFound) {
			return nil, nil, err
		}
		entry, err = domain.NewCalendarEntry(userID, dateLocal, now)
		if err != nil {
			return nil, nil, err
		}
	}

	if err := entry.Apply(marks, now); err != nil {
		return nil, nil, err
	}

	if err := s.entries.Upsert(ctx, entry); err != nil {
		return nil, nil, err
	}

	counts, err := s.entries.CountCompleted(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	wasSettled := debt.Status == domain.StatusCompleted

	for _, p := range domain.AllPrayers {
		if err := debt.SetProgress(p, counts[p], now); err != nil {
			return nil, nil, err
		}
	}
	debt.RefreshStatus()

	if err := s.debts.Upsert(ctx, debt); err != nil {
		return nil, nil, err
	}

	s.signalIfSettled(ctx, debt, wasSettled)
	return entry, debt, nil
}

// ListCalendar returns the user's entries in [from, to]; empty bounds
// list the whole calendar.
func (s *ProgressService) ListCalendar(ctx context.Context, userID, from, to string) ([]*domain.CalendarEntry, error) {
	for _, bound := range []string{from, to} {
		if bound == "" {
			continue
		}
		if _, err := time.Parse(domain.DateLayout, bound); err != nil {
			return nil, domain.ErrInvalidDateLocal
		}
	}
	return s.entries.ListByUserID(ctx, userID, from, to)
}

// signalIfSettled publishes the payoff event exactly once per transition
// into the fully-paid state. Notifier failures are logged, never
// propagated: the progress write already committed.
func (s *ProgressService) signalIfSettled(ctx context.Context, debt *domain.QazaDebt, wasSettled bool) {
	if wasSettled || debt.Status != domain.StatusCompleted {
		return
	}

	totalDebt := 0
	for _, p := range domain.AllPrayers {
		totalDebt += debt.DebtFor(p)
	}

	event := domain.SettlementEvent{
		UserID:    debt.UserID,
		SettledAt: s.now().UTC(),
		TotalDebt: totalDebt,
	}
	if err := s.notifier.DebtSettled(ctx, event); err != nil {
		log.Error().Err(err).Str("user_id", debt.UserID).Msg("failed to publish settlement event")
	}
}
