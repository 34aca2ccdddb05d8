package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ahmed11551/SmartTasbihGoals/internal/core/domain"
	"github.com/ahmed11551/SmartTasbihGoals/internal/core/services"
)

type CalendarHandler struct {
	progress *services.ProgressService
}

func NewCalendarHandler(progress *services.ProgressService) *CalendarHandler {
	return &CalendarHandler{progress: progress}
}

type markDayRequest struct {
	Date    string `json:"date" binding:"required"`
	Fajr    *bool  `json:"fajr"`
	Dhuhr   *bool  `json:"dhuhr"`
	Asr     *bool  `json:"asr"`
	Maghrib *bool  `json:"maghrib"`
	Isha    *bool  `json:"isha"`
	Witr    *bool  `json:"witr"`
}

// marks returns only the obligations the client actually sent; absent
// fields must leave the stored flags untouched.
func (r markDayRequest) marks() map[domain.Prayer]bool {
	m := make(map[domain.Prayer]bool)
	set := func(p domain.Prayer, v *bool) {
		if v != nil {
			m[p] = *v
		}
	}
	set(domain.PrayerFajr, r.Fajr)
	set(domain.PrayerDhuhr, r.Dhuhr)
	set(domain.PrayerAsr, r.Asr)
	set(domain.PrayerMaghrib, r.Maghrib)
	set(domain.PrayerIsha, r.Isha)
	set(domain.PrayerWitr, r.Witr)
	return m
}

func (h *CalendarHandler) RegisterRoutes(router *gin.RouterGroup) {
	calendar := router.Group("/qaza/calendar")
	{
		calendar.POST("/mark", h.Mark)
		calendar.GET("", h.List)
	}
}

func (h *CalendarHandler) Mark(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing user id header"})
		return
	}

	var req markDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	entry, debt, err := h.progress.MarkCalendarDay(c.Request.Context(), userID, req.Date, req.marks())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entry": entry,
		"debt":  debt,
	})
}

func (h *CalendarHandler) List(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing user id header"})
		return
	}

	entries, err := h.progress.ListCalendar(c.Request.Context(), userID, c.Query("from"), c.Query("to"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
