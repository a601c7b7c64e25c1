package publisher

import (
	"fmt"

	"github.com/ChristianDVillar/Stream-Schedule-sub001/pkg/content"
)

// Registry maps platforms to their publishers. It is populated once at
// startup and read-only afterwards, so lookups need no locking.
type Registry struct {
	publishers map[content.Platform]Publisher
}

// NewRegistry builds a registry from the given platform/publisher pairs.
// Every platform must be one the content package knows about; registering
// an unknown platform or a nil publisher fails fast so a misconfigured
// deployment dies at startup rather than at dispatch time.
func NewRegistry(publishers map[content.Platform]Publisher) (*Registry, error) {
	reg := &Registry{
		publishers: make(map[content.Platform]Publisher, len(publishers)),
	}
	for platform, pub := range publishers {
		if !platform.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPlatform, platform)
		}
		if pub == nil {
			return nil, fmt.Errorf("%w: platform %q", ErrPublisherNil, platform)
		}
		reg.publishers[platform] = pub
	}
	return reg, nil
}

// Lookup returns the publisher for a platform, or ErrUnknownPlatform.
func (r *Registry) Lookup(platform content.Platform) (Publisher, error) {
	pub, ok := r.publishers[platform]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlatform, platform)
	}
	return pub, nil
}

// Platforms lists the platforms the registry can publish to.
func (r *Registry) Platforms() []content.Platform {
	out := make([]content.Platform, 0, len(r.publishers))
	for platform := range r.publishers {
		out = append(out, platform)
	}
	return out
}
