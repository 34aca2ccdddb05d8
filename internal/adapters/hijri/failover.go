package hijri

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ahmed11551/SmartTasbihGoals/internal/core/domain"
)

var _ domain.DateConverter = (*Failover)(nil)

// Failover selects between the remote authority and the arithmetic
// approximation at call time. Authority failures are absorbed here and
// logged at diagnostic level; callers always get a best-effort answer and
// never see an external-service error.
type Failover struct {
	primary  domain.DateConverter
	fallback domain.DateConverter
}

// NewFailover builds a converter that tries primary first and answers
// from fallback on any primary failure. A nil primary means
// arithmetic-only mode.
func NewFailover(primary, fallback domain.DateConverter) *Failover {
	return &Failover{primary: primary, fallback: fallback}
}

func (f *Failover) ToHijri(ctx context.Context, date time.Time, variant domain.CalendarVariant) (domain.HijriDate, error) {
	if f.primary != nil {
		h, err := f.primary.ToHijri(ctx, date, variant)
		if err == nil {
			return h, nil
		}
		log.Warn().Err(err).
			Str("date", date.UTC().Format(domain.DateLayout)).
			Msg("calendar authority unavailable, using arithmetic conversion")
	}
	return f.fallback.ToHijri(ctx, date, variant)
}

func (f *Failover) ToGregorian(ctx context.Context, date domain.HijriDate) (time.Time, error) {
	if f.primary != nil {
		t, err := f.primary.ToGregorian(ctx, date)
		if err == nil {
			return t, nil
		}
		log.Warn().Err(err).
			Str("hijri", date.String()).
			Msg("calendar authority unavailable, using arithmetic conversion")
	}
	return f.fallback.ToGregorian(ctx, date)
}
