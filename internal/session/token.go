package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpired reports whether an access token's exp claim lies in the past.
// The signature is not checked: the backend does that.  Tokens that are not
// JWTs, or carry no exp, are never reported as expired.
func TokenExpired(raw string) bool {
	return tokenExpiredAt(raw, time.Now())
}

func tokenExpiredAt(raw string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return now.After(exp.Time)
}
