// Package groups notifies the group-management service about membership
// changes that need an admin handoff.
package groups

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
)

// AdminLeaving says a group's admin is changing out of that group, so the
// admin slot must be reassigned. Choosing the replacement is the receiver's job.
type AdminLeaving struct {
	UserID        int64     `json:"user_id"`
	Username      string    `json:"username"`
	GroupCode     string    `json:"group_code"`
	NextGroupCode *string   `json:"next_group_code"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Notifier delivers reassignment requests. Delivery is one-way; no reply is awaited.
type Notifier interface {
	AdminLeaving(ctx context.Context, event AdminLeaving) error
	Close() error
}

func encodeEvent(event AdminLeaving) ([]byte, error) {
	return json.Marshal(event)
}

// LogNotifier only records the request in the log. Useful in development
// when no group-management service is running.
type LogNotifier struct {
	logger zerolog.Logger
}

var _ Notifier = (*LogNotifier)(nil)

func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With().Str("component", "group-notifier").Logger()}
}

func (n *LogNotifier) AdminLeaving(_ context.Context, event AdminLeaving) error {
	n.logger.Info().
		Int64("user_id", event.UserID).
		Str("username", event.Username).
		Str("group_code", event.GroupCode).
		Msg("group admin reassignment requested")
	return nil
}

func (n *LogNotifier) Close() error { return nil }
