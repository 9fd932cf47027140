package api

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const adminTokenHeader = "X-Admin-Token"

var (
	errAdminNotConfigured = errors.New("admin token not configured")
	errUnauthorized       = errors.New("unauthorized")
)

// authorizeAdmin enforces the shared-secret gate on the delete endpoints. The
// configured value is either the plaintext secret or a pbkdf2$sha256$...
// encoding of it, so deployments can avoid keeping the plaintext in their
// environment. Returns the HTTP status to respond with on failure.
func (h *Handler) authorizeAdmin(r *http.Request, bodyToken string) (int, error) {
	configured := strings.TrimSpace(h.AdminToken)
	if configured == "" {
		return http.StatusInternalServerError, errAdminNotConfigured
	}
	supplied := strings.TrimSpace(r.Header.Get(adminTokenHeader))
	if supplied == "" {
		supplied = strings.TrimSpace(bodyToken)
	}
	if supplied == "" {
		return http.StatusUnauthorized, errUnauthorized
	}
	if strings.HasPrefix(configured, "pbkdf2$") {
		if err := verifyDerivedToken(configured, supplied); err != nil {
			return http.StatusUnauthorized, errUnauthorized
		}
		return 0, nil
	}
	if subtle.ConstantTimeCompare([]byte(configured), []byte(supplied)) != 1 {
		return http.StatusUnauthorized, errUnauthorized
	}
	return 0, nil
}

func verifyDerivedToken(encodedHash, candidate string) error {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 5 {
		return fmt.Errorf("verify token: invalid hash format")
	}
	if parts[0] != "pbkdf2" || parts[1] != "sha256" {
		return fmt.Errorf("verify token: unsupported hash identifier")
	}
	iterations, err := strconv.Atoi(parts[2])
	if err != nil || iterations <= 0 {
		return fmt.Errorf("verify token: invalid iteration count")
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[3])
	if err != nil {
		return fmt.Errorf("verify token: decode salt: %w", err)
	}
	storedKey, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return fmt.Errorf("verify token: decode hash: %w", err)
	}
	derived := pbkdf2.Key([]byte(candidate), salt, iterations, len(storedKey), sha256.New)
	if len(derived) != len(storedKey) || subtle.ConstantTimeCompare(derived, storedKey) != 1 {
		return errUnauthorized
	}
	return nil
}
