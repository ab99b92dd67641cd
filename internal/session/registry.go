// Package session is the server-side revocation record for issued tokens.
// A token authenticates only while its registry record is alive; closing the
// record revokes a still-cryptographically-valid token before its natural
// expiry.
package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Registry is the persistence contract for session records, keyed by
// (subject, token). Open and Close are single-record operations; no
// multi-record transactions are required.
type Registry interface {
	// Open inserts an active record that lapses after ttl.
	Open(ctx context.Context, userID int64, token string, ttl time.Duration) error

	// Close revokes the matching record. Closing an absent or already-closed
	// record is not an error.
	Close(ctx context.Context, userID int64, token string) error

	// IsActive reports whether a live record exists for (userID, token).
	IsActive(ctx context.Context, userID int64, token string) (bool, error)
}

// tokenDigest keys records by a hash so raw credentials never reach the
// store and key length stays bounded.
func tokenDigest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
