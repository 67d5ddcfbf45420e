package hashchain

import "testing"

func TestFingerprint_Deterministic(t *testing.T) {
	a := Fingerprint("no water in sector 5", "2024-01-01T00:00:00Z")
	b := Fingerprint("no water in sector 5", "2024-01-01T00:00:00Z")
	if a != b {
		t.Fatalf("same input must produce same fingerprint")
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}
}

func TestFingerprint_TimeBound(t *testing.T) {
	a := Fingerprint("no water in sector 5", "2024-01-01T00:00:00Z")
	b := Fingerprint("no water in sector 5", "2024-01-01T00:00:01Z")
	if a == b {
		t.Fatalf("different salts must produce different fingerprints")
	}
}

func TestCanonicalJSON_SortedKeysNoWhitespace(t *testing.T) {
	got, err := CanonicalJSON(map[string]any{"b": 1, "a": "x"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got != `{"a":"x","b":1}` {
		t.Fatalf("unexpected canonical form: %s", got)
	}
}

func TestCanonicalJSON_NilPayload(t *testing.T) {
	got, err := CanonicalJSON(nil)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got != "{}" {
		t.Fatalf("expected empty object, got %s", got)
	}
}

func TestSignAndVerify(t *testing.T) {
	key := []byte("officer-key")
	h := Fingerprint("payload", "salt")
	sig := Sign(h, key)
	if !VerifySignature(h, sig, key) {
		t.Fatalf("signature must verify with the signing key")
	}
	if VerifySignature(h, sig, []byte("other")) {
		t.Fatalf("signature must not verify with a different key")
	}
}
