package publisher

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ChristianDVillar/Stream-Schedule-sub001/pkg/content"
	"github.com/ChristianDVillar/Stream-Schedule-sub001/pkg/logger"
)

// DryRunPublisher logs what would have been posted instead of calling the
// platform. Used in development and as the default wiring until real
// platform publishers are configured.
type DryRunPublisher struct {
	formatter Formatter
	logger    *slog.Logger
}

// DryRunOption configures a DryRunPublisher.
type DryRunOption func(*DryRunPublisher)

// WithFormatter overrides the default PlainText formatter.
func WithFormatter(f Formatter) DryRunOption {
	return func(p *DryRunPublisher) {
		if f != nil {
			p.formatter = f
		}
	}
}

// WithLogger sets the publisher's logger.
func WithLogger(log *slog.Logger) DryRunOption {
	return func(p *DryRunPublisher) {
		if log != nil {
			p.logger = log
		}
	}
}

// NewDryRun creates a publisher that only logs.
func NewDryRun(opts ...DryRunOption) *DryRunPublisher {
	p := &DryRunPublisher{
		formatter: PlainText{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish implements Publisher.
func (p *DryRunPublisher) Publish(ctx context.Context, item *content.Item, platform content.Platform) (*Receipt, error) {
	if item == nil {
		return nil, content.ErrItemNil
	}

	rendered := p.formatter.Format(item, platform)
	p.logger.LogAttrs(ctx, slog.LevelInfo, "dry-run publish",
		logger.ItemID(item.ID),
		logger.OwnerID(item.OwnerID),
		logger.Platform(string(platform)),
		slog.Int("rendered_length", len(rendered)),
	)

	return &Receipt{
		ExternalID: "dryrun-" + uuid.NewString(),
		Metadata:   map[string]string{"mode": "dry-run"},
	}, nil
}
