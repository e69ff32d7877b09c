// Package auth verifies bearer tokens and attaches the caller's identity to
// the request.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the authenticated caller.
type Identity struct {
	Subject string   `json:"id"`
	Roles   []string `json:"roles"`
}

// Claims are the token claims understood by the service.
type Claims struct {
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

var (
	errMissingSubject = errors.New("missing sub claim")
	validMethods      = []string{
		jwt.SigningMethodHS256.Alg(),
		jwt.SigningMethodHS384.Alg(),
		jwt.SigningMethodHS512.Alg(),
	}
)

// Verifier checks and issues HMAC signed tokens with a shared secret.
type Verifier struct {
	secret []byte
	now    func() time.Time
}

// NewVerifier creates a Verifier for secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret), now: time.Now}
}

// Verify checks the signature and expiry of tokenString and returns the
// identity it carries.
func (v *Verifier) Verify(tokenString string) (Identity, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Method.Alg())
		}
		return v.secret, nil
	}, jwt.WithValidMethods(validMethods), jwt.WithTimeFunc(v.now))
	if err != nil {
		return Identity{}, err
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return Identity{}, err
	}
	roles := claims.Roles
	if roles == nil {
		roles = []string{}
	}
	return Identity{Subject: sub, Roles: roles}, nil
}

// Issue signs a token for subject with the given roles, valid for ttl.
func (v *Verifier) Issue(subject string, roles []string, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", errMissingSubject
	}
	now := v.now()
	claims := Claims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// bearerToken returns the token of an "Authorization: Bearer <token>" header
// value, or "" when the header does not carry one.
func bearerToken(header string) string {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return token
}
