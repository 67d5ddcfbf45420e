package hashchain

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Fingerprint returns the SHA-256 hex digest of content concatenated with salt.
// The salt is typically an RFC3339 timestamp, which makes the fingerprint
// time-bound: the same text submitted at two different instants hashes
// differently.
func Fingerprint(content, salt string) string {
	sum := sha256.Sum256([]byte(content + salt))
	return hex.EncodeToString(sum[:])
}

// CanonicalJSON serializes a payload with sorted keys and no whitespace so
// the same logical payload always hashes to the same digest regardless of
// field insertion order. encoding/json sorts map keys and uses compact
// separators, which is exactly the canonical form we need.
func CanonicalJSON(payload map[string]any) (string, error) {
	if payload == nil {
		payload = map[string]any{}
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// SignatureAlgHMACSHA256 tags signatures produced by Sign.
const SignatureAlgHMACSHA256 = "hmac-sha256"

// Sign computes an HMAC-SHA256 over an event hash with an actor-supplied key.
// Signatures are additive metadata; their absence is not an integrity failure.
func Sign(hash string, key []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(hash))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a signature produced by Sign in constant time.
func VerifySignature(hash, signature string, key []byte) bool {
	expected := Sign(hash, key)
	return hmac.Equal([]byte(expected), []byte(signature))
}
