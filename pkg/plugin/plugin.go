// Package plugin provides the module SDK for TheBoolean site service.
// Content panels, form intake and notifiers all implement these interfaces
// and are composed at compile time in cmd/theboolean.
package plugin

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// APIVersion is the SDK revision modules are built against. The registry
// refuses modules declaring any other value.
const APIVersion = 1

// Plugin defines the interface that all site modules must implement.
type Plugin interface {
	// Info returns the plugin's metadata.
	Info() PluginInfo

	// Init initializes the plugin with its dependencies.
	Init(ctx context.Context, deps Dependencies) error

	// Start begins the plugin's background operations.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the plugin.
	Stop(ctx context.Context) error
}

// PluginInfo contains plugin metadata.
type PluginInfo struct {
	Name        string   // Unique identifier and route prefix: "articles", "forms"
	Version     string   // Semantic version string
	Description string   // Human-readable summary
	Roles       []string // Roles this plugin fills: "content", "notification"
	APIVersion  int
}

// Dependencies provides controlled access to shared services.
// Injected by the registry during Init.
type Dependencies struct {
	Config  Config      // Scoped to this plugin's config section
	Logger  *zap.Logger // Named logger for this plugin
	Store   Store       // Shared database; nil in contract tests
	Bus     EventBus    // Event publish/subscribe
	Plugins PluginResolver

	// ClientIP resolves the caller's address honoring the configured
	// trusted proxies. Nil means use the TCP peer.
	ClientIP func(r *http.Request) string
}

// Route represents an HTTP route exposed by a plugin. Path is relative to
// /api/v1/{plugin name}.
type Route struct {
	Method  string
	Path    string
	Handler http.HandlerFunc
}

// HTTPProvider is implemented by plugins that expose REST routes.
type HTTPProvider interface {
	Routes() []Route
}

// EventSubscriber is implemented by plugins that react to bus events.
// The registry wires the subscriptions after Init.
type EventSubscriber interface {
	Subscriptions() []Subscription
}

// Config abstracts configuration access. Wraps Viper today.
type Config interface {
	Unmarshal(target any) error
	Get(key string) any
	GetString(key string) string
	GetInt(key string) int
	GetBool(key string) bool
	GetDuration(key string) time.Duration
	IsSet(key string) bool
	Sub(key string) Config
}

// Migration is one forward-only schema step owned by a plugin.
type Migration struct {
	Version     int
	Description string
	Up          func(tx *sql.Tx) error
}

// Store is the shared database handle.
type Store interface {
	DB() *sql.DB
	Tx(ctx context.Context, fn func(tx *sql.Tx) error) error
	Migrate(ctx context.Context, pluginName string, migrations []Migration) error
}

// Publisher sends events to the bus.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Subscriber receives events from the bus.
type Subscriber interface {
	Subscribe(topic string, handler EventHandler) (unsubscribe func())
}

// EventBus composes Publisher and Subscriber with async and wildcard extensions.
type EventBus interface {
	Publisher
	Subscriber
	PublishAsync(ctx context.Context, event Event)
	SubscribeAll(handler EventHandler) (unsubscribe func())
}

// Event represents a typed message on the event bus.
type Event struct {
	Topic     string
	Source    string
	Timestamp time.Time
	Payload   any // Type depends on topic
}

// EventHandler processes events from the bus.
type EventHandler func(ctx context.Context, event Event)

// Subscription declares a topic subscription for EventSubscriber plugins.
type Subscription struct {
	Topic   string
	Handler EventHandler
}

// PluginResolver allows plugins to locate other plugins by name or role.
type PluginResolver interface {
	Resolve(name string) (Plugin, bool)
	ResolveByRole(role string) []Plugin
}
