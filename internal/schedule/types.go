package schedule

import "time"

// Channel selects the delivery path for one notification.
type Channel string

const (
	// ChannelLocal is the on-device OS notification scheduler.
	ChannelLocal Channel = "local"
	// ChannelCloud is the push-relay intent queue for other users.
	ChannelCloud Channel = "cloud"
)

// Notification is one concrete, derived delivery record. It is rebuilt
// fresh on every schedule cycle and never mutated in place; cancellation
// invalidates the whole set.
//
// Identifier is deterministic for a given reminder + timing + occurrence
// (+ target for cloud copies), so re-running the builder produces
// colliding, safely overwritable identifiers instead of duplicates.
type Notification struct {
	Identifier string
	FiresAt    time.Time

	Title string
	Body  string

	Channel          Channel
	TargetUserID     string
	SourceReminderID string
}
