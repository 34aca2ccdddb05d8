package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ahmed11551/SmartTasbihGoals/internal/core/domain"
)

type InMemoryDebtRepository struct {
	store map[string]*domain.QazaDebt

	mu sync.RWMutex
}

func NewInMemoryDebtRepository() *InMemoryDebtRepository {
	return &InMemoryDebtRepository{
		store: make(map[string]*domain.QazaDebt),
	}
}

func (r *InMemoryDebtRepository) GetByUserID(ctx context.Context, userID string) (*domain.QazaDebt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	debt, ok := r.store[userID]
	if !ok {
		return nil, domain.ErrDebtNotFound
	}

	copied := *debt
	return &copied, nil
}

func (r *InMemoryDebtRepository) Upsert(ctx context.Context, debt *domain.QazaDebt) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *debt
	r.store[debt.UserID] = &copied
	return nil
}

type InMemoryCalendarRepository struct {
	// keyed by userID, then date_local
	store map[string]map[string]*domain.CalendarEntry

	mu sync.RWMutex
}

func NewInMemoryCalendarRepository() *InMemoryCalendarRepository {
	return &InMemoryCalendarRepository{
		store: make(map[string]map[string]*domain.CalendarEntry),
	}
}

func (r *InMemoryCalendarRepository) GetByUserAndDate(ctx context.Context, userID, dateLocal string) (*domain.CalendarEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.store[userID][dateLocal]
	if !ok {
		return nil, domain.ErrEntryNotFound
	}

	copied := *entry
	return &copied, nil
}

func (r *InMemoryCalendarRepository) Upsert(ctx context.Context, entry *domain.CalendarEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	if r.store[entry.UserID] == nil {
		r.store[entry.UserID] = make(map[string]*domain.CalendarEntry)
	}

	if existing, ok := r.store[entry.UserID][entry.DateLocal]; ok {
		entry.ID = existing.ID
	}

	copied := *entry
	r.store[entry.UserID][entry.DateLocal] = &copied
	return nil
}

func (r *InMemoryCalendarRepository) ListByUserID(ctx context.Context, userID, from, to string) ([]*domain.CalendarEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := []*domain.CalendarEntry{}
	for date, entry := range r.store[userID] {
		if from != "" && date < from {
			continue
		}
		if to != "" && date > to {
			continue
		}
		copied := *entry
		entries = append(entries, &copied)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].DateLocal < entries[j].DateLocal
	})

	return entries, nil
}

func (r *InMemoryCalendarRepository) MarkDebtDays(ctx context.Context, userID string, dates []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.store[userID] == nil {
		r.store[userID] = make(map[string]*domain.CalendarEntry)
	}

	now := time.Now().UTC()
	for _, date := range dates {
		if existing, ok := r.store[userID][date]; ok {
			existing.IsDebtDay = true
			existing.UpdatedAt = now
			continue
		}
		r.store[userID][date] = &domain.CalendarEntry{
			ID:        uuid.NewString(),
			UserID:    userID,
			DateLocal: date,
			IsDebtDay: true,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}
	return nil
}

func (r *InMemoryCalendarRepository) CountCompleted(ctx context.Context, userID string) (map[domain.Prayer]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[domain.Prayer]int, len(domain.AllPrayers))
	for _, entry := range r.store[userID] {
		for _, p := range domain.AllPrayers {
			if entry.Completed(p) {
				counts[p]++
			}
		}
	}
	return counts, nil
}
