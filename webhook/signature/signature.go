package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strconv"
	"time"
)

const (
	// SignatureHeader carries the hex-encoded HMAC of the request body
	SignatureHeader = "X-Alloy-Signature"

	// TimestampHeader carries the delivery time as Unix epoch seconds
	TimestampHeader = "X-Alloy-Timestamp"

	// ReplayWindow is the maximum allowed skew between the signed
	// timestamp and verification time, in either direction
	ReplayWindow = 300 * time.Second
)

/* Alloy signs webhook deliveries with HMAC-SHA256 over the raw body,
 * optionally prefixed by a timestamp: "{timestamp}.{payload}".
 * The signature travels as a 64-character lowercase hex digest.
 */

// Generate computes the hex-encoded HMAC-SHA256 signature for a payload.
// When timestamp is non-empty the signed content is "timestamp.payload",
// otherwise the payload alone.
func Generate(payload []byte, secret, timestamp string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	if timestamp != "" {
		mac.Write([]byte(timestamp))
		mac.Write([]byte("."))
	}
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks a candidate signature against the expected one.
// It fails closed: any missing input, malformed candidate, or timestamp
// outside the replay window yields false. It never panics.
func Verify(payload []byte, candidate, secret, timestamp string) bool {
	return verifyAt(payload, candidate, secret, timestamp, time.Now())
}

// verifyAt is Verify with an injectable clock for the replay window.
func verifyAt(payload []byte, candidate, secret, timestamp string, now time.Time) bool {
	if len(payload) == 0 || candidate == "" || secret == "" {
		return false
	}

	if timestamp != "" {
		ts, err := strconv.ParseInt(timestamp, 10, 64)
		if err != nil {
			return false
		}
		skew := now.Sub(time.Unix(ts, 0))
		if skew < 0 {
			skew = -skew
		}
		if skew > ReplayWindow {
			return false
		}
	}

	candidateRaw, err := hex.DecodeString(candidate)
	if err != nil {
		return false
	}

	expected, err := hex.DecodeString(Generate(payload, secret, timestamp))
	if err != nil {
		return false
	}

	// hmac.Equal is constant-time over the digest contents
	return hmac.Equal(candidateRaw, expected)
}

// Extract performs a case-insensitive lookup of the signature and
// timestamp headers. Multi-valued headers yield their first entry;
// absent headers yield the empty string.
func Extract(headers http.Header) (sig string, timestamp string) {
	return headers.Get(SignatureHeader), headers.Get(TimestampHeader)
}
