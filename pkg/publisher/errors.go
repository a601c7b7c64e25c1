package publisher

import "errors"

var (
	// ErrPlatformDisabled indicates the owner has disabled publishing to
	// the platform. Fatal: retrying cannot succeed until the owner acts.
	ErrPlatformDisabled = errors.New("platform is disabled")

	// ErrAuthRequired indicates the owner's platform credentials are
	// missing, expired, or revoked. Fatal for the same reason.
	ErrAuthRequired = errors.New("platform authentication required")

	// ErrNoIntegration indicates no active integration exists for the
	// owner/platform pair. Fatal.
	ErrNoIntegration = errors.New("no active platform integration")

	// ErrUnknownPlatform is returned by the registry for a platform it has
	// no publisher for.
	ErrUnknownPlatform = errors.New("unknown platform")

	// ErrPublisherNil is returned when registering a nil publisher.
	ErrPublisherNil = errors.New("publisher is nil")
)

// IsFatal reports whether a publish error is permanent. Fatal errors must
// not consume a retry: the item fails on that platform immediately.
func IsFatal(err error) bool {
	return errors.Is(err, ErrPlatformDisabled) ||
		errors.Is(err, ErrAuthRequired) ||
		errors.Is(err, ErrNoIntegration)
}
