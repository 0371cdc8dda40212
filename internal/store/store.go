// Package store persists the client session: bearer token, role, and the
// serialized user profile. Persisted entries are either all present (a valid
// session) or all absent (logged out); anything in between is corrupt and is
// purged wholesale on the next read.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"unimart/internal/identity"
	"unimart/pkg/platform/sentinel"
)

// Keys this subsystem owns in the backing key-value store. The scratch
// prefix namespaces session-scoped cache that Clear wipes as a safety net.
const (
	keyToken      = "token"
	keyRole       = "role"
	keyUserData   = "userData"
	scratchPrefix = "scratch:"
)

// Entry is the persisted session record.
type Entry struct {
	Token   string
	Role    string
	Profile identity.Profile
}

// Store is the persistence contract for client sessions.
//
// Error contract:
// - Load returns sentinel.ErrNotFound when no entries exist, and
//   sentinel.ErrPartialState after purging a partially-present set.
// - SetOptimistic persists before any validation happens (failed client-side
//   validation must never block a login the backend accepted). Persistence
//   failures propagate raw to the caller.
// - Clear is idempotent and succeeds when nothing is stored.
type Store interface {
	Load(ctx context.Context) (Entry, error)
	SetOptimistic(ctx context.Context, entry Entry) error
	Clear(ctx context.Context) error

	// SetScratch and GetScratch hold session-scoped cache (flash notices,
	// draft listings). Scratch never counts toward session presence and is
	// wiped by Clear.
	SetScratch(ctx context.Context, key, value string) error
	GetScratch(ctx context.Context, key string) (string, error)
}

// encodeEntry flattens an Entry to the three persisted key-value pairs.
func encodeEntry(entry Entry) (map[string]string, error) {
	userData, err := json.Marshal(entry.Profile)
	if err != nil {
		return nil, fmt.Errorf("marshal profile: %w", err)
	}
	return map[string]string{
		keyToken:    entry.Token,
		keyRole:     entry.Role,
		keyUserData: string(userData),
	}, nil
}

// decodeEntry rebuilds an Entry from persisted pairs. complete is false when
// the set is partially present.
func decodeEntry(kv map[string]string) (entry Entry, present, complete bool, err error) {
	token, hasToken := kv[keyToken]
	role, hasRole := kv[keyRole]
	userData, hasUserData := kv[keyUserData]

	present = hasToken || hasRole || hasUserData
	complete = hasToken && hasRole && hasUserData
	if !complete {
		return Entry{}, present, complete, nil
	}

	var profile identity.Profile
	if err := json.Unmarshal([]byte(userData), &profile); err != nil {
		// Undecodable userData is the same corruption class as a missing key.
		return Entry{}, present, false, nil
	}
	return Entry{Token: token, Role: role, Profile: profile}, present, true, nil
}

// loadResult translates decode outcomes into the Load error contract shared
// by every backend. purge runs before ErrPartialState is returned.
func loadResult(ctx context.Context, kv map[string]string, purge func(context.Context) error) (Entry, error) {
	entry, present, complete, err := decodeEntry(kv)
	if err != nil {
		return Entry{}, err
	}
	if !present {
		return Entry{}, sentinel.ErrNotFound
	}
	if !complete {
		if err := purge(ctx); err != nil {
			return Entry{}, fmt.Errorf("purge corrupt session: %w", err)
		}
		return Entry{}, fmt.Errorf("session entries partially present: %w", sentinel.ErrPartialState)
	}
	return entry, nil
}
