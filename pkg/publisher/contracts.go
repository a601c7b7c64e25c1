package publisher

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/ChristianDVillar/Stream-Schedule-sub001/pkg/content"
)

// Integration is an owner's live connection to a platform, typically an
// OAuth grant held by an external accounts service.
type Integration struct {
	ID       string
	OwnerID  uuid.UUID
	Platform content.Platform
	// AccessToken is the credential publishers use against the platform
	// API. Opaque to this package.
	AccessToken string
}

// IntegrationProvider resolves the owner's active integration for a
// platform. A nil integration with a nil error means the owner never
// connected the platform; the dispatcher treats that as fatal for the
// platform rather than retrying.
type IntegrationProvider interface {
	ActiveIntegration(ctx context.Context, ownerID uuid.UUID, platform content.Platform) (*Integration, error)
}

// Config answers whether a platform is currently enabled for publishing.
// Disabled platforms are skipped without consuming a retry or a rate slot.
type Config interface {
	IsEnabled(platform content.Platform) bool
}

// StaticConfig is a fixed enable/disable table, the common case when
// platform toggles come from environment configuration.
type StaticConfig map[content.Platform]bool

// IsEnabled implements Config. Platforms absent from the table count as
// enabled, so an empty StaticConfig disables nothing.
func (c StaticConfig) IsEnabled(platform content.Platform) bool {
	enabled, ok := c[platform]
	if !ok {
		return true
	}
	return enabled
}

// Formatter renders an item into the text a platform receives. Pure: no
// I/O, same input gives same output.
type Formatter interface {
	Format(item *content.Item, platform content.Platform) string
}

// PlainText is the default formatter: title, body, then hashtags, joined
// with blank lines. Platform-specific formatters replace it per publisher.
type PlainText struct{}

// Format implements Formatter.
func (PlainText) Format(item *content.Item, platform content.Platform) string {
	parts := make([]string, 0, 3)
	if item.Title != "" {
		parts = append(parts, item.Title)
	}
	if item.Body != "" {
		parts = append(parts, item.Body)
	}
	if tags := strings.Fields(item.Hashtags); len(tags) > 0 {
		for i, tag := range tags {
			if !strings.HasPrefix(tag, "#") {
				tags[i] = "#" + tag
			}
		}
		parts = append(parts, strings.Join(tags, " "))
	}
	return strings.Join(parts, "\n\n")
}
