package notify

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/ahmed11551/SmartTasbihGoals/internal/core/domain"
)

var _ domain.CompletionNotifier = (*LogNotifier)(nil)

// LogNotifier is the fallback when no redis is configured: settlement
// events are only logged.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier { return &LogNotifier{} }

func (n *LogNotifier) DebtSettled(ctx context.Context, event domain.SettlementEvent) error {
	log.Info().
		Str("user_id", event.UserID).
		Int("total_debt", event.TotalDebt).
		Time("settled_at", event.SettledAt).
		Msg("qaza debt fully settled")
	return nil
}
