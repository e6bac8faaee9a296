package fetch

import (
	"fmt"

	"github.com/su1ph3r/effodio/pkg/types"
)

// PolicyError describes a fetch refused by the network-safety policy. It
// unwraps to types.ErrPolicyViolation.
type PolicyError struct {
	Reason string
	URL    string
}

func (e *PolicyError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("%s: %s", types.ErrPolicyViolation, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", types.ErrPolicyViolation, e.URL, e.Reason)
}

func (e *PolicyError) Unwrap() error {
	return types.ErrPolicyViolation
}

func policyError(rawURL, format string, args ...interface{}) *PolicyError {
	return &PolicyError{Reason: fmt.Sprintf(format, args...), URL: rawURL}
}
