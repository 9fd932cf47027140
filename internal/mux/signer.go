package mux

import (
	"crypto/rsa"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const defaultTokenTTL = time.Hour

// Signer mints the RS256 tokens Mux requires on signed-policy playback URLs.
// The key pair is created in the Mux dashboard; the platform validates tokens
// against the public half, keyed by the "kid" header.
type Signer struct {
	keyID      string
	privateKey *rsa.PrivateKey
	ttl        time.Duration
	now        func() time.Time
}

// NewSigner parses the base64-encoded PEM private key Mux hands out alongside
// a signing key ID. TTL bounds token validity; zero selects the default hour.
func NewSigner(keyID, base64Key string, ttl time.Duration) (*Signer, error) {
	keyID = strings.TrimSpace(keyID)
	base64Key = strings.TrimSpace(base64Key)
	if keyID == "" || base64Key == "" {
		return nil, fmt.Errorf("signing key id and private key are required")
	}
	pemKey, err := base64.StdEncoding.DecodeString(base64Key)
	if err != nil {
		return nil, fmt.Errorf("decode signing key: %w", err)
	}
	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(pemKey)
	if err != nil {
		return nil, fmt.Errorf("parse signing key: %w", err)
	}
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &Signer{
		keyID:      keyID,
		privateKey: privateKey,
		ttl:        ttl,
		now:        time.Now,
	}, nil
}

// SignPlayback returns a token bound to the playback ID. The "v" audience
// marks it as a video playback token.
func (s *Signer) SignPlayback(playbackID string) (string, error) {
	playbackID = strings.TrimSpace(playbackID)
	if playbackID == "" {
		return "", fmt.Errorf("playback id is required")
	}
	issued := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.RegisteredClaims{
		Subject:   playbackID,
		Audience:  jwt.ClaimStrings{"v"},
		ExpiresAt: jwt.NewNumericDate(issued.Add(s.ttl)),
	})
	token.Header["kid"] = s.keyID
	signed, err := token.SignedString(s.privateKey)
	if err != nil {
		return "", fmt.Errorf("sign playback token: %w", err)
	}
	return signed, nil
}
