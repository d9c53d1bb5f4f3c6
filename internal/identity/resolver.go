// Package identity maps the authenticated principal to the stable
// subject id that anchors a user profile. Identity issuance itself is
// delegated to an external provider; this package only verifies the
// token it minted and extracts the subject.
package identity

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"lift-social/internal/apperr"
)

// Resolver resolves an Authorization header to a subject id.
type Resolver interface {
	Resolve(authHeader string) (string, error)
}

// JWTResolver verifies HMAC-signed tokens from the identity provider
// and extracts the sub claim.
type JWTResolver struct {
	secret []byte
	issuer string
}

// NewJWTResolver creates a resolver for tokens signed with the given
// shared secret. If issuer is non-empty, the iss claim must match.
func NewJWTResolver(secret []byte, issuer string) *JWTResolver {
	return &JWTResolver{secret: secret, issuer: issuer}
}

// Resolve extracts the subject id from a bearer token.
func (r *JWTResolver) Resolve(authHeader string) (string, error) {
	tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if tokenString == "" {
		return "", apperr.New(apperr.KindNotAuthenticated, "missing bearer token")
	}

	options := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"})}
	if r.issuer != "" {
		options = append(options, jwt.WithIssuer(r.issuer))
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return r.secret, nil
	}, options...)

	if err != nil {
		return "", apperr.Wrap(apperr.KindNotAuthenticated, "invalid token", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", apperr.New(apperr.KindNotAuthenticated, "invalid token claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", apperr.New(apperr.KindNotAuthenticated, "no sub claim in token")
	}

	return sub, nil
}

// StaticResolver resolves every non-empty header to a fixed subject id.
// For development and testing only.
type StaticResolver struct {
	SubjectID string
}

// NewStaticResolver creates a static resolver.
func NewStaticResolver(subjectID string) *StaticResolver {
	return &StaticResolver{SubjectID: subjectID}
}

// Resolve returns the configured subject id for any non-empty header.
func (r *StaticResolver) Resolve(authHeader string) (string, error) {
	if strings.TrimSpace(authHeader) == "" {
		return "", apperr.New(apperr.KindNotAuthenticated, "missing bearer token")
	}
	return r.SubjectID, nil
}
