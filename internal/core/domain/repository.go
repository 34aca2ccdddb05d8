package domain

import (
	"context"
	"errors"
)

var (
	ErrDebtNotFound  = errors.New("qaza debt not found")
	ErrEntryNotFound = errors.New("calendar entry not found")
)

type QazaDebtRepository interface {
	// GetByUserID retrieves the single debt record owned by a user.
	GetByUserID(ctx context.Context, userID string) (*QazaDebt, error)

	// Upsert creates the record on first calculation and replaces it on
	// every subsequent write.
	Upsert(ctx context.Context, debt *QazaDebt) error
}

type CalendarEntryRepository interface {
	// GetByUserAndDate retrieves the entry for one (user, local date) key.
	GetByUserAndDate(ctx context.Context, userID, dateLocal string) (*CalendarEntry, error)

	// Upsert writes a full entry, keyed on (user, local date).
	Upsert(ctx context.Context, entry *CalendarEntry) error

	// ListByUserID retrieves entries in [from, to] ordered by date.
	// Empty bounds list everything.
	ListByUserID(ctx context.Context, userID, from, to string) ([]*CalendarEntry, error)

	// MarkDebtDays batch-upserts one chunk of debt-period dates: absent
	// entries are created with the debt flag set, existing entries only
	// get the debt flag raised. Completion flags are never touched, which
	// keeps repeated materialization runs idempotent.
	MarkDebtDays(ctx context.Context, userID string, dates []string) error

	// CountCompleted recounts, per prayer, how many of the user's entries
	// have that prayer marked done. Progress reconciliation always goes
	// through this full recount rather than incremental updates.
	CountCompleted(ctx context.Context, userID string) (map[Prayer]int, error)
}
