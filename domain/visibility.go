package domain

import "github.com/samber/lo"

// Visible reports whether viewer is allowed to read message.
// Private messages are restricted to their sender and recipient; everything else is public.
func Visible(viewer string, message Message) bool {
	if message.Type != MessageTypePrivate {
		return true
	}
	return viewer == message.To || viewer == message.From
}

// VisibleMessages filters messages down to what viewer may read, keeping chronological order.
// A positive limit keeps only the last limit visible messages.
func VisibleMessages(viewer string, messages []Message, limit int) []Message {
	visible := lo.Filter(messages, func(m Message, _ int) bool {
		return Visible(viewer, m)
	})
	if limit > 0 && len(visible) > limit {
		return visible[len(visible)-limit:]
	}
	return visible
}
