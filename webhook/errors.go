package webhook

import (
	"errors"
	"fmt"

	"github.com/marcelsud/alloy-bridge/webhook/signature"
)

/* Sentinel errors for the request boundary
 * The HTTP layer maps these onto deterministic 400 responses;
 * anything else is an internal failure
 */
var (
	ErrMissingSignature = fmt.Errorf("missing %s header", signature.SignatureHeader)
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrInvalidPayload   = errors.New("invalid webhook payload")
)

// IsRejection reports whether an error should surface as a client
// error rather than an internal failure
func IsRejection(err error) bool {
	return errors.Is(err, ErrMissingSignature) ||
		errors.Is(err, ErrInvalidSignature) ||
		errors.Is(err, ErrInvalidPayload)
}
