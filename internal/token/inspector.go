// Package token decodes bearer credentials without verifying them. Nothing
// in this package establishes identity: the backend validates signatures and
// is the sole authority, so every result here is a TrustHint used only to
// decide whether a request is worth sending at all.
package token

import (
	"math"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"unimart/internal/identity"
)

// TreatMissingExpAsNonExpiring locks in the historical behavior: a credential
// without an exp claim never expires under the structural check. Flip with
// care, several deployed backends mint such tokens.
const TreatMissingExpAsNonExpiring = true

// DefaultNearExpiryThreshold is the window within which a credential counts
// as near expiry for proactive re-auth prompts.
const DefaultNearExpiryThreshold = 15 * time.Minute

// maxAge is the age reported when the issued-at claim cannot be read; it
// fails toward treating the credential as too old for sensitive operations.
const maxAge = time.Duration(math.MaxInt64)

// TrustHint is what the client can read out of an UNVERIFIED credential.
// It is deliberately not called an identity; only the backend can produce
// one of those.
type TrustHint struct {
	Subject   string
	Email     string
	Role      identity.Role
	RawRole   string
	IssuedAt  time.Time
	ExpiresAt time.Time // zero when the claim is absent
}

// parser skips claim validation entirely; expiry is checked by hand so the
// missing-exp policy stays explicit.
var parser = jwt.NewParser(jwt.WithoutClaimsValidation())

// Inspect decodes the payload segment of a three-segment bearer credential.
// Any structural defect (wrong segment count, undecodable payload) fails
// closed with an error; no signature verification is attempted.
func Inspect(raw string) (TrustHint, error) {
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return TrustHint{}, err
	}

	hint := TrustHint{}
	if sub, err := claims.GetSubject(); err == nil {
		hint.Subject = sub
	}
	if email, ok := claims["email"].(string); ok {
		hint.Email = email
	}
	if rawRole, ok := claims["role"].(string); ok {
		hint.RawRole = rawRole
		if role, ok := identity.ParseRole(rawRole); ok {
			hint.Role = role
		}
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		hint.IssuedAt = iat.Time
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		hint.ExpiresAt = exp.Time
	}
	return hint, nil
}

// Valid is the structural check consulted on every credential read. In order:
// non-empty, exactly three segments with a decodable payload, exp absent or
// in the future, role present, sub or email present. It fails closed and
// never panics or returns an error; the backend re-checks everything anyway.
func Valid(raw string) bool {
	if raw == "" {
		return false
	}
	hint, err := Inspect(raw)
	if err != nil {
		return false
	}
	if !hint.ExpiresAt.IsZero() && !hint.ExpiresAt.After(time.Now()) {
		return false
	}
	if hint.RawRole == "" {
		return false
	}
	if hint.Subject == "" && hint.Email == "" {
		return false
	}
	return true
}

// TimeUntilExpiry returns how long the credential remains usable. A parse
// failure returns zero, which forces re-auth downstream. A missing exp claim
// reports the maximum duration per TreatMissingExpAsNonExpiring.
func TimeUntilExpiry(raw string) time.Duration {
	hint, err := Inspect(raw)
	if err != nil {
		return 0
	}
	if hint.ExpiresAt.IsZero() {
		return maxAge
	}
	return time.Until(hint.ExpiresAt)
}

// NearExpiry reports whether the credential expires within threshold.
// It answers true when the credential cannot be parsed (fails toward
// re-auth) and false when there is no exp claim at all.
func NearExpiry(raw string, threshold time.Duration) bool {
	hint, err := Inspect(raw)
	if err != nil {
		return true
	}
	if hint.ExpiresAt.IsZero() {
		return false
	}
	return time.Until(hint.ExpiresAt) < threshold
}

// RoleOf extracts the normalized role claim. ok is false on parse failure or
// when the claim is absent or outside the closed enumeration.
func RoleOf(raw string) (identity.Role, bool) {
	hint, err := Inspect(raw)
	if err != nil || !hint.Role.Known() {
		return "", false
	}
	return hint.Role, true
}

// Age returns the time elapsed since the issued-at claim. When iat cannot be
// read the maximum duration is returned, failing toward "too old" for
// sensitive operations.
func Age(raw string) time.Duration {
	hint, err := Inspect(raw)
	if err != nil || hint.IssuedAt.IsZero() {
		return maxAge
	}
	return time.Since(hint.IssuedAt)
}
