// Package app implements the primary ports as application services wired
// against the secondary ports.
package app

import (
	"fmt"
	"time"

	"github.com/example/nudge/internal/core/schedule"
	"github.com/example/nudge/internal/core/target"
)

// Settings carries the deployment-wide values the services share.
type Settings struct {
	// Location is the fixed organization zone.
	Location *time.Location

	// ChannelID is where announcements and reminders are posted.
	ChannelID string

	// CompletionEmoji is the acknowledgment reaction name.
	CompletionEmoji string

	// Directory maps display names to recipient IDs.
	Directory target.Directory

	// Schedule holds the plan builder knobs.
	Schedule schedule.Config

	// ExpiryDays is how long past the due time a record is retained.
	ExpiryDays int
}

// dueTimeFormat renders due instants for humans, in the organization zone.
const dueTimeFormat = "Mon, 02 Jan 2006 15:04 MST"

func (s Settings) formatDue(t time.Time) string {
	return t.In(s.Location).Format(dueTimeFormat)
}

func (s Settings) completionMarker() string {
	return ":" + s.CompletionEmoji + ":"
}

// formatMention renders a target as a platform mention. Pseudo-targets keep
// their reserved prefix inside the brackets; individuals get the @ form.
func formatMention(t string) string {
	if target.IsPseudo(t) {
		return "<" + t + ">"
	}
	return "<@" + t + ">"
}

func formatMentions(targets []string) string {
	out := ""
	for i, t := range targets {
		if i > 0 {
			out += " "
		}
		out += formatMention(t)
	}
	return out
}

// triggerName builds the durable registration name for a planned trigger.
func triggerName(taskID, label string) string {
	return fmt.Sprintf("task-%s-%s", taskID, label)
}
