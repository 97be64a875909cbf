// AngelaMos | 2026
// signature.go

// Package webhook verifies and applies signed payment events exactly
// once. Verification always runs over the raw request bytes; the body
// is only parsed after the signature checks out.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/angelamos/questledger/internal/core"
)

const signaturePrefix = "sha256="

// Sign computes the hex HMAC-SHA256 of body under secret. Exposed for
// senders in tests and tooling.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks the signature header against the raw body.
// The comparison is constant-time; a missing header and a bad
// signature are distinct failures.
func VerifySignature(body []byte, signatureHeader, secret string) error {
	if signatureHeader == "" {
		return fmt.Errorf("verify signature: %w", core.ErrSignatureRequired)
	}

	provided := strings.TrimPrefix(signatureHeader, signaturePrefix)

	providedMAC, err := hex.DecodeString(provided)
	if err != nil {
		return fmt.Errorf("verify signature: %w", core.ErrInvalidSignature)
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := mac.Sum(nil)

	if !hmac.Equal(providedMAC, expected) {
		return fmt.Errorf("verify signature: %w", core.ErrInvalidSignature)
	}

	return nil
}
