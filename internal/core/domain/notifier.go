package domain

import (
	"context"
	"time"
)

// SettlementEvent is emitted exactly once each time a user's record
// transitions into the fully-paid state.
type SettlementEvent struct {
	UserID    string    `json:"user_id"`
	SettledAt time.Time `json:"settled_at"`
	TotalDebt int       `json:"total_debt"`
}

// CompletionNotifier hands the payoff signal to an external
// achievement/notification collaborator.
type CompletionNotifier interface {
	DebtSettled(ctx context.Context, event SettlementEvent) error
}
