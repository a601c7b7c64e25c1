// Package publisher defines how items reach external platforms.
//
// A Publisher wraps one platform's delivery API; the Registry maps each
// known platform to its publisher and is validated at startup. The error
// taxonomy splits failures into fatal (disabled platform, missing or
// revoked credentials) and transient (everything else); IsFatal is the
// single classification point the dispatcher relies on for its retry
// decision.
//
// The package also carries the dispatcher's collaborator contracts:
// IntegrationProvider resolves owner credentials, Config gates platforms
// on and off, and Formatter renders item content per platform.
package publisher
