// Package roles defines typed contracts for plugin roles.
// Plugins that fill a role (declared via PluginInfo.Roles) implement the
// corresponding interface so callers can use PluginResolver.ResolveByRole
// followed by a type assertion.
package roles

import "github.com/thebooleanin/techstory-weaver/pkg/models"

// Role name constants match the strings used in PluginInfo.Roles.
const (
	RoleContent      = "content"
	RoleForms        = "forms"
	RoleNotification = "notification"
)

// ContentSource is implemented by plugins serving one content collection.
type ContentSource interface {
	// Kind returns the collection the plugin serves.
	Kind() models.ContentKind
}
