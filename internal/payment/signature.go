package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// VerifySignature checks the X-CC-Webhook-Signature header value against
// HMAC-SHA256(secret, payload) in constant time. It must run over the raw,
// unparsed request body.
func VerifySignature(payload []byte, signature, secret string) error {
	if signature == "" {
		return ErrMissingSignature
	}
	if secret == "" {
		return ErrMissingSecret
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrInvalidSignature
	}
	return nil
}
