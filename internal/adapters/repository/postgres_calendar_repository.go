package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/ahmed11551/SmartTasbihGoals/internal/core/domain"
)

type PostgresCalendarRepository struct {
	db *sqlx.DB
}

func NewPostgresCalendarRepository(db *sqlx.DB) *PostgresCalendarRepository {
	return &PostgresCalendarRepository{db: db}
}

func (r *PostgresCalendarRepository) GetByUserAndDate(ctx context.Context, userID, dateLocal string) (*domain.CalendarEntry, error) {
	var entry domain.CalendarEntry
	query := `SELECT * FROM qaza_calendar_entries WHERE user_id = $1 AND date_local = $2`

	err := r.db.GetContext(ctx, &entry, query, userID, dateLocal)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEntryNotFound
		}
		return nil, err
	}
	return &entry, nil
}

func (r *PostgresCalendarRepository) Upsert(ctx context.Context, entry *domain.CalendarEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	query := `
		INSERT INTO qaza_calendar_entries (
			id, user_id, date_local, is_debt_day,
			fajr, dhuhr, asr, maghrib, isha, witr,
			created_at, updated_at
		) VALUES (
			:id, :user_id, :date_local, :is_debt_day,
			:fajr, :dhuhr, :asr, :maghrib, :isha, :witr,
			:created_at, :updated_at
		)
		ON CONFLICT (user_id, date_local) DO UPDATE SET
			is_debt_day = EXCLUDED.is_debt_day,
			fajr = EXCLUDED.fajr,
			dhuhr = EXCLUDED.dhuhr,
			asr = EXCLUDED.asr,
			maghrib = EXCLUDED.maghrib,
			isha = EXCLUDED.isha,
			witr = EXCLUDED.witr,
			updated_at = EXCLUDED.updated_at`

	_, err := r.db.NamedExecContext(ctx, query, entry)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return errors.New("referenced user does not exist")
		}
		return err
	}
	return nil
}

func (r *PostgresCalendarRepository) ListByUserID(ctx context.Context, userID, from, to string) ([]*domain.CalendarEntry, error) {
	entries := []*domain.CalendarEntry{}

	if from != "" && to != "" {
		query := `
			SELECT * FROM qaza_calendar_entries
			WHERE user_id = $1 AND date_local >= $2 AND date_local <= $3
			ORDER BY date_local ASC`
		if err := r.db.SelectContext(ctx, &entries, query, userID, from, to); err != nil {
			return nil, err
		}
		return entries, nil
	}

	query := `SELECT * FROM qaza_calendar_entries WHERE user_id = $1 ORDER BY date_local ASC`
	if err := r.db.SelectContext(ctx, &entries, query, userID); err != nil {
		return nil, err
	}
	return entries, nil
}

// MarkDebtDays writes one chunk of debt-period dates in a single
// statement. On conflict only the debt flag is raised; completion flags
// already recorded on those dates are left untouched so re-running a
// materialization (or a superset of it) never erases progress.
func (r *PostgresCalendarRepository) MarkDebtDays(ctx context.Context, userID string, dates []string) error {
	if len(dates) == 0 {
		return nil
	}

	now := time.Now().UTC()

	var sb strings.Builder
	args := make([]interface{}, 0, len(dates)*2+2)
	args = append(args, userID, now)

	for i, date := range dates {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(fmt.Sprintf("($%d, $1, $%d, TRUE, $2, $2)", len(args)+1, len(args)+2))
		args = append(args, uuid.NewString(), date)
	}

	query := fmt.Sprintf(`
		INSERT INTO qaza_calendar_entries (id, user_id, date_local, is_debt_day, created_at, updated_at)
		VALUES %s
		ON CONFLICT (user_id, date_local) DO UPDATE SET
			is_debt_day = TRUE,
			updated_at = EXCLUDED.updated_at`, sb.String())

	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

func (r *PostgresCalendarRepository) CountCompleted(ctx context.Context, userID string) (map[domain.Prayer]int, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT
			count(*) FILTER (WHERE fajr),
			count(*) FILTER (WHERE dhuhr),
			count(*) FILTER (WHERE asr),
			count(*) FILTER (WHERE maghrib),
			count(*) FILTER (WHERE isha),
			count(*) FILTER (WHERE witr)
		FROM qaza_calendar_entries
		WHERE user_id = $1`, userID)

	var fajr, dhuhr, asr, maghrib, isha, witr int
	if err := row.Scan(&fajr, &dhuhr, &asr, &maghrib, &isha, &witr); err != nil {
		return nil, err
	}

	return map[domain.Prayer]int{
		domain.PrayerFajr:    fajr,
		domain.PrayerDhuhr:   dhuhr,
		domain.PrayerAsr:     asr,
		domain.PrayerMaghrib: maghrib,
		domain.PrayerIsha:    isha,
		domain.PrayerWitr:    witr,
	}, nil
}
