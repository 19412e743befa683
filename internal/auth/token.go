package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

// TokenInfo is what the client can read out of its bearer token. The
// signature is not verified (the client has no key), so this is only
// good for surfacing a stale token before a session starts, never for
// trusting the claims.
type TokenInfo struct {
	UserID    string
	ExpiresAt time.Time
}

// Inspect decodes the configured bearer token without verification
func Inspect(token string) (*TokenInfo, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	info := &TokenInfo{}
	if userID, ok := claims["user_id"].(string); ok {
		info.UserID = userID
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
	}

	return info, nil
}

// WarnIfExpired logs when the configured token has already expired, so
// the user learns before the first failing request.
func WarnIfExpired(token string) {
	if token == "" {
		return
	}
	info, err := Inspect(token)
	if err != nil {
		log.Warn().Err(err).Msg("Configured token is not a valid JWT")
		return
	}
	if !info.ExpiresAt.IsZero() && time.Now().After(info.ExpiresAt) {
		log.Warn().
			Time("expired_at", info.ExpiresAt).
			Msg("Configured token has expired")
	}
}
