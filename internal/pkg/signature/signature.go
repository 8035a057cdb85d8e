package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Verifier checks the authenticity of payment-gateway callbacks. The gateway
// signs `<gatewayOrderID>|<gatewayPaymentID>` with the shared webhook secret
// (hex-encoded HMAC-SHA256). Verification must be constant time: a timing
// oracle here would let an attacker forge payment confirmations byte by byte.
type Verifier struct {
	secret []byte
}

func NewVerifier(webhookSecret string) *Verifier {
	return &Verifier{secret: []byte(webhookSecret)}
}

func (v *Verifier) Verify(gatewayOrderID, gatewayPaymentID, signature string) bool {
	expected := v.Sign(gatewayOrderID, gatewayPaymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Sign computes the signature the gateway is expected to send. Exposed so
// tests and local gateway stubs can produce valid callbacks.
func (v *Verifier) Sign(gatewayOrderID, gatewayPaymentID string) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(gatewayOrderID + "|" + gatewayPaymentID))
	return hex.EncodeToString(mac.Sum(nil))
}
