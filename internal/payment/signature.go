package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SignatureHeader is the HTTP header carrying the webhook signature, in the
// form "t=<unix-ts>,v1=<hex hmac>".
const SignatureHeader = "X-Admitlink-Signature"

var ErrInvalidSignature = errors.New("invalid webhook signature")

// Sign computes the signature header value for a payload at a timestamp:
// HMAC-SHA256(secret, "<ts>.<body>"). Used by tests and the demo gateway.
func Sign(secret, payload []byte, ts time.Time) string {
	mac := hmac.New(sha256.New, secret)
	fmt.Fprintf(mac, "%d.", ts.Unix())
	mac.Write(payload)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

// VerifySignature checks the signature header against the raw payload. The
// signed timestamp bounds replay: anything outside tolerance is rejected.
func VerifySignature(secret, payload []byte, header string, now time.Time, tolerance time.Duration) error {
	var tsPart, sigPart string
	for _, part := range strings.Split(header, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			tsPart = v
		case "v1":
			sigPart = v
		}
	}
	if tsPart == "" || sigPart == "" {
		return ErrInvalidSignature
	}

	tsUnix, err := strconv.ParseInt(tsPart, 10, 64)
	if err != nil {
		return ErrInvalidSignature
	}
	ts := time.Unix(tsUnix, 0)
	if d := now.Sub(ts); d > tolerance || d < -tolerance {
		return ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, secret)
	fmt.Fprintf(mac, "%d.", tsUnix)
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	given, err := hex.DecodeString(sigPart)
	if err != nil {
		return ErrInvalidSignature
	}
	want, _ := hex.DecodeString(expected)
	if !hmac.Equal(given, want) {
		return ErrInvalidSignature
	}
	return nil
}
