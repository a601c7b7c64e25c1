package publisher

import (
	"context"

	"github.com/ChristianDVillar/Stream-Schedule-sub001/pkg/content"
)

// Publisher delivers an item to one external platform. Implementations wrap
// a platform SDK or HTTP API; the dispatcher never talks to platforms
// directly.
//
// Errors classify the failure: ErrPlatformDisabled and ErrAuthRequired (or
// anything wrapping them) are fatal and must not be retried, everything else
// is treated as transient.
type Publisher interface {
	Publish(ctx context.Context, item *content.Item, platform content.Platform) (*Receipt, error)
}

// Receipt is the platform's acknowledgement of a successful publish.
type Receipt struct {
	// ExternalID is the platform-side identifier of the created post.
	ExternalID string

	// Metadata carries platform-specific extras (permalink, thread id).
	Metadata map[string]string
}

// Func adapts a plain function to the Publisher interface.
type Func func(ctx context.Context, item *content.Item, platform content.Platform) (*Receipt, error)

// Publish implements Publisher.
func (f Func) Publish(ctx context.Context, item *content.Item, platform content.Platform) (*Receipt, error) {
	return f(ctx, item, platform)
}
