// Package tokens inspects JWT claims client-side without verifying the
// signature. The results are advisory: they drive session bootstrap and
// silent re-login decisions, never authorization. Verification is the
// server's job.
//
// All inspection is fail-open on malformed input: a token the client cannot
// decode is treated as not expired, so a cosmetically broken but
// server-issued token never logs a resident out by itself.
package tokens

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// unitClaimKeys are the accepted names for the apartment-scoped identity
// claim, checked in order. Different backend versions emitted different keys.
var unitClaimKeys = []string{"userap_id", "UserapId", "user_apartment_id", "apartment_id"}

// Decode parses the claims of a three-segment token without verifying the
// signature. Returns ok=false on any malformation and never panics.
func Decode(token string) (jwt.MapClaims, bool) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return nil, false
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, false
	}
	return claims, true
}

// IsExpired reports whether the token's exp claim lies in the past.
// Absent or unparsable expiry means not expired (fail-open).
func IsExpired(token string) bool {
	claims, ok := Decode(token)
	if !ok {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return time.Now().After(exp.Time)
}

// MinutesRemaining returns the floor of whole minutes until expiry.
// ok=false when the expiry claim is absent or unreadable; 0 when the token
// is already expired.
func MinutesRemaining(token string) (int, bool) {
	claims, ok := Decode(token)
	if !ok {
		return 0, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return 0, false
	}
	remaining := time.Until(exp.Time)
	if remaining <= 0 {
		return 0, true
	}
	return int(remaining.Minutes()), true
}

// UnitID extracts the apartment-scoped identity from the token claims,
// trying each accepted claim key in order. Returns 0 when no key is present
// or none holds a usable number.
func UnitID(token string) int64 {
	claims, ok := Decode(token)
	if !ok {
		return 0
	}
	for _, key := range unitClaimKeys {
		if v, present := claims[key]; present {
			if id := toInt64(v); id != 0 {
				return id
			}
		}
	}
	return 0
}

func toInt64(v any) int64 {
	switch value := v.(type) {
	case float64:
		return int64(value)
	case string:
		id, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return 0
		}
		return id
	default:
		return 0
	}
}
