package ws

import (
	"time"
)

// MessageType discriminates WebSocket messages.
type MessageType string

const (
	MessageThemeCurrent MessageType = "theme.current"
	MessageThemePreview MessageType = "theme.preview"
	MessageThemeSaved   MessageType = "theme.saved"
	MessageSiteSaved    MessageType = "site.saved"
)

// Message is the envelope for all WebSocket messages. Data is a
// theme.Update for theme messages and a siteconfig.SiteConfig for
// site.saved.
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      any         `json:"data"`
}
