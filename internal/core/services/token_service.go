package services

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNoVerificationKey = errors.New("token service: no verification key configured")

// TokenService verifies session tokens issued by the external identity
// provider. It never issues tokens itself.
type TokenService struct {
	hmacSecret []byte
	publicKey  *rsa.PublicKey
	issuer     string
	leeway     time.Duration
}

// NewTokenService takes an HS256 secret, an RS256 PEM public key, or both.
// An empty issuer disables the issuer check.
func NewTokenService(secret, publicKeyPEM, issuer string) (*TokenService, error) {
	s := &TokenService{
		issuer: issuer,
		leeway: 30 * time.Second,
	}

	if secret != "" {
		s.hmacSecret = []byte(secret)
	}
	if publicKeyPEM != "" {
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(publicKeyPEM))
		if err != nil {
			return nil, fmt.Errorf("token service: invalid public key: %w", err)
		}
		s.publicKey = key
	}

	if s.hmacSecret == nil && s.publicKey == nil {
		return nil, ErrNoVerificationKey
	}
	return s, nil
}

func (s *TokenService) keyFunc(token *jwt.Token) (interface{}, error) {
	switch token.Method.(type) {
	case *jwt.SigningMethodHMAC:
		if s.hmacSecret != nil {
			return s.hmacSecret, nil
		}
	case *jwt.SigningMethodRSA:
		if s.publicKey != nil {
			return s.publicKey, nil
		}
	}
	return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
}

// ValidateToken returns the subject of a valid token.
func (s *TokenService) ValidateToken(tokenString string) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithLeeway(s.leeway),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, s.keyFunc, opts...)
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return "", fmt.Errorf("invalid token claims")
	}

	if claims.Subject == "" {
		return "", fmt.Errorf("invalid token subject")
	}
	return claims.Subject, nil
}
