package payment

import (
	"strings"
	"testing"
	"time"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	secret := []byte("whsec_test")
	payload := []byte(`{"id":"evt_1"}`)
	now := time.Now()

	header := Sign(secret, payload, now)
	if err := VerifySignature(secret, payload, header, now, 5*time.Minute); err != nil {
		t.Fatalf("valid signature rejected: %v", err)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	payload := []byte(`{"id":"evt_1"}`)
	now := time.Now()
	header := Sign([]byte("whsec_a"), payload, now)
	if err := VerifySignature([]byte("whsec_b"), payload, header, now, 5*time.Minute); err == nil {
		t.Fatal("signature with wrong secret accepted")
	}
}

func TestVerifyRejectsTamperedPayload(t *testing.T) {
	secret := []byte("whsec_test")
	now := time.Now()
	header := Sign(secret, []byte(`{"amount":100}`), now)
	if err := VerifySignature(secret, []byte(`{"amount":999}`), header, now, 5*time.Minute); err == nil {
		t.Fatal("tampered payload accepted")
	}
}

func TestVerifyRejectsStaleTimestamp(t *testing.T) {
	secret := []byte("whsec_test")
	payload := []byte(`{}`)
	signedAt := time.Now().Add(-10 * time.Minute)
	header := Sign(secret, payload, signedAt)
	if err := VerifySignature(secret, payload, header, time.Now(), 5*time.Minute); err == nil {
		t.Fatal("stale signature accepted")
	}
	// Future timestamps outside tolerance are rejected too.
	header = Sign(secret, payload, time.Now().Add(10*time.Minute))
	if err := VerifySignature(secret, payload, header, time.Now(), 5*time.Minute); err == nil {
		t.Fatal("future signature accepted")
	}
}

func TestVerifyRejectsMalformedHeader(t *testing.T) {
	secret := []byte("whsec_test")
	payload := []byte(`{}`)
	for _, header := range []string{
		"",
		"t=123",
		"v1=deadbeef",
		"t=notanumber,v1=deadbeef",
		"t=123,v1=nothex!",
	} {
		if err := VerifySignature(secret, payload, header, time.Now(), 5*time.Minute); err == nil {
			t.Fatalf("malformed header %q accepted", header)
		}
	}
}

func TestSignHeaderShape(t *testing.T) {
	header := Sign([]byte("s"), []byte("p"), time.Unix(1700000000, 0))
	if !strings.HasPrefix(header, "t=1700000000,v1=") {
		t.Fatalf("unexpected header shape: %s", header)
	}
}
