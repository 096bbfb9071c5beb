package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultCookieName is the demo session cookie. It carries the numeric
// user id in the clear; it is an identity hint only, never a role claim.
const DefaultCookieName = "token_uid"

// ResolveUserID extracts the caller's user id from the session cookie,
// falling back to the `sub` claim of a bearer token. Returns false for a
// missing or non-numeric identity; it never fails any other way.
func ResolveUserID(r *http.Request, cookieName string) (int64, bool) {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}

	if c, err := r.Cookie(cookieName); err == nil {
		if uid, err := strconv.ParseInt(c.Value, 10, 64); err == nil && uid > 0 {
			return uid, true
		}
		return 0, false
	}

	token, err := extractBearerToken(r)
	if err != nil {
		return 0, false
	}
	uid, err := userIDFromJWT(token)
	if err != nil {
		return 0, false
	}
	return uid, true
}

func extractBearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("authorization header is missing")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("authorization header format must be 'Bearer {token}'")
	}
	return parts[1], nil
}

// userIDFromJWT pulls the numeric subject out of a JWT. The signature is
// not verified: like the cookie, the token only hints at an identity, and
// every privileged decision re-reads the role from storage.
func userIDFromJWT(tokenString string) (int64, error) {
	if tokenString == "" {
		return 0, errors.New("empty token")
	}

	token, _, err := new(jwt.Parser).ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return 0, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errors.New("invalid token claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return 0, errors.New("subject claim not found in token")
	}

	uid, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("subject claim is not a user id: %w", err)
	}
	return uid, nil
}
