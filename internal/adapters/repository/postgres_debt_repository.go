package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/ahmed11551/SmartTasbihGoals/internal/core/domain"
)

type PostgresDebtRepository struct {
	db *sqlx.DB
}

func NewPostgresDebtRepository(db *sqlx.DB) *PostgresDebtRepository {
	return &PostgresDebtRepository{db: db}
}

func (r *PostgresDebtRepository) GetByUserID(ctx context.Context, userID string) (*domain.QazaDebt, error) {
	var debt domain.QazaDebt
	query := `SELECT * FROM qaza_debts WHERE user_id = $1`

	err := r.db.GetContext(ctx, &debt, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrDebtNotFound
		}
		return nil, err
	}
	return &debt, nil
}

func (r *PostgresDebtRepository) Upsert(ctx context.Context, debt *domain.QazaDebt) error {
	query := `
		INSERT INTO qaza_debts (
			user_id, gender, birth_date, birth_year, bulugh_age, bulugh_date,
			prayer_start_date, prayer_start_year, today_as_start, madhab,
			haid_days_per_month, childbirth_count, nifas_days_per_childbirth,
			hayd_nifas_periods, travel_days, travel_periods,
			total_days, excluded_days, effective_days,
			fajr_debt, dhuhr_debt, asr_debt, maghrib_debt, isha_debt, witr_debt,
			dhuhr_safar, asr_safar, isha_safar,
			fajr_progress, dhuhr_progress, asr_progress,
			maghrib_progress, isha_progress, witr_progress,
			period_start, period_end, status, calculated_at,
			created_at, updated_at
		) VALUES (
			:user_id, :gender, :birth_date, :birth_year, :bulugh_age, :bulugh_date,
			:prayer_start_date, :prayer_start_year, :today_as_start, :madhab,
			:haid_days_per_month, :childbirth_count, :nifas_days_per_childbirth,
			:hayd_nifas_periods, :travel_days, :travel_periods,
			:total_days, :excluded_days, :effective_days,
			:fajr_debt, :dhuhr_debt, :asr_debt, :maghrib_debt, :isha_debt, :witr_debt,
			:dhuhr_safar, :asr_safar, :isha_safar,
			:fajr_progress, :dhuhr_progress, :asr_progress,
			:maghrib_progress, :isha_progress, :witr_progress,
			:period_start, :period_end, :status, :calculated_at,
			:created_at, :updated_at
		)
		ON CONFLICT (user_id) DO UPDATE SET
			gender = EXCLUDED.gender,
			birth_date = EXCLUDED.birth_date,
			birth_year = EXCLUDED.birth_year,
			bulugh_age = EXCLUDED.bulugh_age,
			bulugh_date = EXCLUDED.bulugh_date,
			prayer_start_date = EXCLUDED.prayer_start_date,
			prayer_start_year = EXCLUDED.prayer_start_year,
			today_as_start = EXCLUDED.today_as_start,
			madhab = EXCLUDED.madhab,
			haid_days_per_month = EXCLUDED.haid_days_per_month,
			childbirth_count = EXCLUDED.childbirth_count,
			nifas_days_per_childbirth = EXCLUDED.nifas_days_per_childbirth,
			hayd_nifas_periods = EXCLUDED.hayd_nifas_periods,
			travel_days = EXCLUDED.travel_days,
			travel_periods = EXCLUDED.travel_periods,
			total_days = EXCLUDED.total_days,
			excluded_days = EXCLUDED.excluded_days,
			effective_days = EXCLUDED.effective_days,
			fajr_debt = EXCLUDED.fajr_debt,
			dhuhr_debt = EXCLUDED.dhuhr_debt,
			asr_debt = EXCLUDED.asr_debt,
			maghrib_debt = EXCLUDED.maghrib_debt,
			isha_debt = EXCLUDED.isha_debt,
			witr_debt = EXCLUDED.witr_debt,
			dhuhr_safar = EXCLUDED.dhuhr_safar,
			asr_safar = EXCLUDED.asr_safar,
			isha_safar = EXCLUDED.isha_safar,
			fajr_progress = EXCLUDED.fajr_progress,
			dhuhr_progress = EXCLUDED.dhuhr_progress,
			asr_progress = EXCLUDED.asr_progress,
			maghrib_progress = EXCLUDED.maghrib_progress,
			isha_progress = EXCLUDED.isha_progress,
			witr_progress = EXCLUDED.witr_progress,
			period_start = EXCLUDED.period_start,
			period_end = EXCLUDED.period_end,
			status = EXCLUDED.status,
			calculated_at = EXCLUDED.calculated_at,
			updated_at = EXCLUDED.updated_at`

	_, err := r.db.NamedExecContext(ctx, query, debt)
	return err
}
