package content

import (
	"context"

	"github.com/thebooleanin/techstory-weaver/internal/event"
	"github.com/thebooleanin/techstory-weaver/pkg/plugin"
)

// Change actions carried by content.changed events.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// ChangeEvent is the payload of content.changed.
type ChangeEvent struct {
	Kind   string `json:"kind"`
	ID     string `json:"id"`
	Slug   string `json:"slug,omitempty"`
	Action string `json:"action"`
}

// publishChange announces a write. Handlers run after the request ends,
// so they get a context that is never canceled.
func (m *Module) publishChange(ctx context.Context, id, slug, action string) {
	if m.bus == nil {
		return
	}
	m.bus.PublishAsync(context.WithoutCancel(ctx), plugin.Event{
		Topic:     event.TopicContentChanged,
		Source:    string(m.kind),
		Timestamp: m.now().UTC(),
		Payload:   ChangeEvent{Kind: string(m.kind), ID: id, Slug: slug, Action: action},
	})
}
