package theme

import (
	"context"

	"github.com/thebooleanin/techstory-weaver/internal/event"
	"github.com/thebooleanin/techstory-weaver/pkg/plugin"
	"go.uber.org/zap"
)

// Update is the event payload for theme.preview and theme.saved.
type Update struct {
	Theme Config `json:"theme"`
	CSS   string `json:"css"`
	Mode  string `json:"mode"`
}

// NewUpdate renders cfg into an Update.
func NewUpdate(cfg Config) Update {
	return Update{Theme: cfg, CSS: RenderCSS(cfg), Mode: cfg.Mode()}
}

// Broadcaster publishes theme changes on the event bus; the WebSocket hub
// and the webhook notifier consume them.
type Broadcaster struct {
	bus    plugin.Publisher
	logger *zap.Logger
}

var _ Applier = (*Broadcaster)(nil)

// NewBroadcaster returns a Broadcaster publishing on bus.
func NewBroadcaster(bus plugin.Publisher, logger *zap.Logger) *Broadcaster {
	return &Broadcaster{bus: bus, logger: logger}
}

// Apply publishes previews on theme.preview and saves on theme.saved. The
// theme read at startup is not announced.
func (b *Broadcaster) Apply(ctx context.Context, stage Stage, cfg Config) {
	switch stage {
	case StagePreview:
		b.publish(ctx, event.TopicThemePreview, cfg)
	case StageSaved:
		b.publish(ctx, event.TopicThemeSaved, cfg)
	}
}

func (b *Broadcaster) publish(ctx context.Context, topic string, cfg Config) {
	err := b.bus.Publish(ctx, plugin.Event{
		Topic:   topic,
		Source:  "theme",
		Payload: NewUpdate(cfg),
	})
	if err != nil {
		b.logger.Warn("theme event publish failed", zap.String("topic", topic), zap.Error(err))
	}
}
