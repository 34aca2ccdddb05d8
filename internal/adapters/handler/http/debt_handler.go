package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/ahmed11551/SmartTasbihGoals/internal/core/domain"
	"github.com/ahmed11551/SmartTasbihGoals/internal/core/services"
)

type DebtHandler struct {
	debts    *services.DebtService
	progress *services.ProgressService
}

func NewDebtHandler(debts *services.DebtService, progress *services.ProgressService) *DebtHandler {
	return &DebtHandler{
		debts:    debts,
		progress: progress,
	}
}

type periodRequest struct {
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
	Kind      string `json:"kind"`
}

type manualPeriodRequest struct {
	Years  int `json:"years"`
	Months int `json:"months"`
}

type calculateRequest struct {
	Gender    string `json:"gender" binding:"required"`
	BirthDate string `json:"birth_date"`
	BirthYear *int   `json:"birth_year"`
	BulughAge *int   `json:"bulugh_age"`

	PrayerStartDate string `json:"prayer_start_date"`
	PrayerStartYear *int   `json:"prayer_start_year"`
	TodayAsStart    bool   `json:"today_as_start"`

	Madhab string `json:"madhab"`

	HaidDaysPerMonth       *int            `json:"haid_days_per_month"`
	ChildbirthCount        int             `json:"childbirth_count"`
	NifasDaysPerChildbirth *int            `json:"nifas_days_per_childbirth"`
	HaydNifasPeriods       []periodRequest `json:"hayd_nifas_periods"`

	TravelDays    int             `json:"travel_days"`
	TravelPeriods []periodRequest `json:"travel_periods"`

	ManualPeriod *manualPeriodRequest `json:"manual_period"`
}

type setProgressRequest struct {
	Prayer string `json:"prayer" binding:"required"`
	Count  *int   `json:"count" binding:"required"`
}

func (h *DebtHandler) RegisterRoutes(router *gin.RouterGroup) {
	qaza := router.Group("/qaza")
	{
		qaza.POST("/calculate", h.Calculate)
		qaza.GET("", h.Get)
		qaza.PATCH("/progress", h.SetProgress)
	}
}

func (h *DebtHandler) Calculate(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing user id header"})
		return
	}

	var req calculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	input, err := req.toInput(userID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	debt, warnings, err := h.debts.Calculate(c.Request.Context(), input)
	if err != nil {
		handleError(c, err)
		return
	}

	resp := gin.H{"debt": debt}
	if len(warnings) > 0 {
		resp["warnings"] = warnings
	}
	c.JSON(http.StatusOK, resp)
}

func (h *DebtHandler) Get(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing user id header"})
		return
	}

	debt, err := h.debts.Get(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, debt)
}

func (h *DebtHandler) SetProgress(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing user id header"})
		return
	}

	var req setProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	debt, err := h.progress.SetProgress(c.Request.Context(), userID, domain.Prayer(req.Prayer), *req.Count)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, debt)
}

func (r calculateRequest) toInput(userID string) (services.CalculateInput, error) {
	input := services.CalculateInput{
		UserID:                 userID,
		Gender:                 domain.Gender(r.Gender),
		BirthYear:              r.BirthYear,
		BulughAge:              r.BulughAge,
		PrayerStartYear:        r.PrayerStartYear,
		TodayAsStart:           r.TodayAsStart,
		Madhab:                 domain.Madhab(r.Madhab),
		HaidDaysPerMonth:       r.HaidDaysPerMonth,
		ChildbirthCount:        r.ChildbirthCount,
		NifasDaysPerChildbirth: r.NifasDaysPerChildbirth,
		TravelDays:             r.TravelDays,
	}

	if r.BirthDate != "" {
		t, err := time.Parse(domain.DateLayout, r.BirthDate)
		if err != nil {
			return input, errors.New("birth_date must be formatted as YYYY-MM-DD")
		}
		input.BirthDate = &t
	}
	if r.PrayerStartDate != "" {
		t, err := time.Parse(domain.DateLayout, r.PrayerStartDate)
		if err != nil {
			return input, errors.New("prayer_start_date must be formatted as YYYY-MM-DD")
		}
		input.PrayerStartDate = &t
	}

	var err error
	input.HaydNifasPeriods, err = parsePeriods(r.HaydNifasPeriods, domain.PeriodHayd)
	if err != nil {
		return input, err
	}
	input.TravelPeriods, err = parsePeriods(r.TravelPeriods, domain.PeriodTravel)
	if err != nil {
		return input, err
	}

	if r.ManualPeriod != nil {
		input.ManualPeriod = &services.ManualPeriod{
			Years:  r.ManualPeriod.Years,
			Months: r.ManualPeriod.Months,
		}
	}

	return input, nil
}

func parsePeriods(reqs []periodRequest, defaultKind domain.PeriodKind) ([]domain.ExclusionPeriod, error) {
	if len(reqs) == 0 {
		return nil, nil
	}

	periods := make([]domain.ExclusionPeriod, 0, len(reqs))
	for _, pr := range reqs {
		start, err := time.Parse(domain.DateLayout, pr.StartDate)
		if err != nil {
			return nil, errors.New("period start_date must be formatted as YYYY-MM-DD")
		}
		end, err := time.Parse(domain.DateLayout, pr.EndDate)
		if err != nil {
			return nil, errors.New("period end_date must be formatted as YYYY-MM-DD")
		}

		kind := defaultKind
		if pr.Kind != "" {
			kind = domain.PeriodKind(pr.Kind)
		}

		periods = append(periods, domain.ExclusionPeriod{
			Start: start,
			End:   end,
			Kind:  kind,
		})
	}
	return periods, nil
}

func handleError(c *gin.Context, err error) {
	var validationErr *domain.ValidationError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":      "invalid exclusion periods",
			"violations": validationErr.Violations,
		})

	case errors.Is(err, domain.ErrDebtNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "debt not calculated yet"})

	case errors.Is(err, domain.ErrInvalidGender),
		errors.Is(err, domain.ErrInvalidMadhab),
		errors.Is(err, domain.ErrInvalidBulughAge),
		errors.Is(err, domain.ErrInvalidPrayer),
		errors.Is(err, domain.ErrNegativeProgress),
		errors.Is(err, domain.ErrMissingPeriodStart),
		errors.Is(err, domain.ErrNegativeManualPeriod),
		errors.Is(err, domain.ErrInvalidDateLocal):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	default:
		log.Error().Err(err).Str("method", c.Request.Method).Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
