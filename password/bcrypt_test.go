package password

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func newTestHasher(t *testing.T) *Hasher {
	t.Helper()

	h, err := NewHasher(Config{Cost: bcrypt.MinCost})
	if err != nil {
		t.Fatalf("NewHasher failed: %v", err)
	}
	return h
}

func TestHashRoundTrip(t *testing.T) {
	h := newTestHasher(t)

	digest, err := h.Hash("Abcdef1")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if digest == "Abcdef1" {
		t.Fatal("digest must not equal the plaintext")
	}

	ok, err := h.Verify("Abcdef1", digest)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !ok {
		t.Fatal("Verify must succeed for the original password")
	}
}

func TestHashSaltsPerCall(t *testing.T) {
	h := newTestHasher(t)

	first, err := h.Hash("Abcdef1")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	second, err := h.Hash("Abcdef1")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	if first == second {
		t.Fatal("two hashes of the same password must differ (per-hash salt)")
	}
}

func TestVerifyMismatchIsNotAnError(t *testing.T) {
	h := newTestHasher(t)

	digest, err := h.Hash("Abcdef1")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	ok, err := h.Verify("wrong-password", digest)
	if err != nil {
		t.Fatalf("mismatch must not surface an error, got: %v", err)
	}
	if ok {
		t.Fatal("Verify must fail for a wrong password")
	}
}

func TestVerifyCorruptHashIsAnError(t *testing.T) {
	h := newTestHasher(t)

	ok, err := h.Verify("Abcdef1", "not-a-bcrypt-hash")
	if err == nil {
		t.Fatal("corrupt hash must surface a process-level error")
	}
	if ok {
		t.Fatal("Verify must fail closed on corrupt hashes")
	}
}

func TestNeedsUpgrade(t *testing.T) {
	low, err := NewHasher(Config{Cost: bcrypt.MinCost})
	if err != nil {
		t.Fatalf("NewHasher failed: %v", err)
	}
	digest, err := low.Hash("Abcdef1")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	high, err := NewHasher(Config{Cost: bcrypt.MinCost + 2})
	if err != nil {
		t.Fatalf("NewHasher failed: %v", err)
	}

	needs, err := high.NeedsUpgrade(digest)
	if err != nil {
		t.Fatalf("NeedsUpgrade failed: %v", err)
	}
	if !needs {
		t.Fatal("hash at a lower cost must report NeedsUpgrade")
	}

	same, err := low.NeedsUpgrade(digest)
	if err != nil {
		t.Fatalf("NeedsUpgrade failed: %v", err)
	}
	if same {
		t.Fatal("hash at the configured cost must not report NeedsUpgrade")
	}
}

func TestNewHasherRejectsInvalidCost(t *testing.T) {
	if _, err := NewHasher(Config{Cost: 99}); err == nil {
		t.Fatal("cost above bcrypt maximum must be rejected")
	}
}

func TestValidatePolicy(t *testing.T) {
	cases := []struct {
		name     string
		password string
		want     error
	}{
		{"valid", "Abcdef1", nil},
		{"too short", "Ab1", ErrTooShort},
		{"no lowercase", "ABCDEF1", ErrMissingLower},
		{"no uppercase", "abcdef1", ErrMissingUpper},
		{"no number", "Abcdefg", ErrMissingNumber},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ValidatePolicy(tc.password); got != tc.want {
				t.Fatalf("ValidatePolicy(%q) = %v, want %v", tc.password, got, tc.want)
			}
		})
	}
}
