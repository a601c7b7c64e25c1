package idempotency

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Key computes the deterministic attempt fingerprint for one publish of an
// item to a platform at a given scheduled time. Identical inputs always
// yield the identical key; changing any input changes the key, which is what
// makes a manual reschedule eligible for re-delivery.
func Key(itemID uuid.UUID, platform string, scheduledFor time.Time) string {
	payload := fmt.Sprintf("%s:%s:%d", itemID, platform, scheduledFor.UTC().UnixNano())
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}
