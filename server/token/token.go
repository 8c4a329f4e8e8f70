// Package token generates and validates the bearer tokens lensd's mutating
// endpoints require. Unlike a per-user scheme, lensd has a single shared
// secret: a valid token proves only that its holder knew the secret active
// at the time it was issued, not who they are.
package token

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const issuer = "lensd"

// HashSecret bcrypt-hashes secret so it can be compared against later
// without keeping the plaintext around for that purpose.
func HashSecret(secret []byte) ([]byte, error) {
	return bcrypt.GenerateFromPassword(secret, bcrypt.DefaultCost)
}

// CompareSecret reports whether candidate matches the secret hash produced
// by HashSecret.
func CompareSecret(hash []byte, candidate string) error {
	err := bcrypt.CompareHashAndPassword(hash, []byte(candidate))
	if err == bcrypt.ErrMismatchedHashAndPassword {
		return fmt.Errorf("incorrect secret")
	}
	return err
}

// Generate signs a new bearer token against secret, valid for validFor.
func Generate(secret []byte, validFor time.Duration) (string, error) {
	claims := &jwt.MapClaims{
		"iss":        issuer,
		"exp":        time.Now().Add(validFor).Unix(),
		"authorized": true,
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)

	tokStr, err := tok.SignedString(secret)
	if err != nil {
		return "", err
	}
	return tokStr, nil
}

// Validate parses tok and verifies it was signed with secret, is not
// expired, and carries the expected issuer.
func Validate(tok string, secret []byte) error {
	parsed, err := jwt.Parse(tok, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}), jwt.WithIssuer(issuer), jwt.WithLeeway(time.Minute))
	if err != nil {
		return err
	}
	if !parsed.Valid {
		return fmt.Errorf("token is not valid")
	}
	return nil
}

// Get extracts the bearer token from an Authorization header.
func Get(req *http.Request) (string, error) {
	authHeader := strings.TrimSpace(req.Header.Get("Authorization"))
	if authHeader == "" {
		return "", fmt.Errorf("no authorization header present")
	}

	authParts := strings.SplitN(authHeader, " ", 2)
	if len(authParts) != 2 {
		return "", fmt.Errorf("authorization header not in Bearer format")
	}

	scheme := strings.TrimSpace(strings.ToLower(authParts[0]))
	tok := strings.TrimSpace(authParts[1])

	if scheme != "bearer" {
		return "", fmt.Errorf("authorization header not in Bearer format")
	}

	return tok, nil
}
