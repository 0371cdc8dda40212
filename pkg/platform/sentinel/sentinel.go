package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and the transport layer
// return these (optionally wrapped) so the session layer can translate them
// into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: no persisted session entries exist
// - ErrPartialState: some but not all session entries were present; the set
//   was purged wholesale before returning
// - ErrExpired: credential past its exp claim
// - ErrUnavailable: backing store temporarily unreachable
//
// For security decisions (stale credential, insufficient role), use
// pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrPartialState = errors.New("partial state")
	ErrExpired      = errors.New("expired")
	ErrUnavailable  = errors.New("unavailable")
)
