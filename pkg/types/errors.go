package types

import "errors"

// Error taxonomy shared by the archive and web-app entry points
var (
	// ErrInvalidInput marks input that cannot be analyzed at all (bad zip, malformed URL)
	ErrInvalidInput = errors.New("invalid input")

	// ErrPolicyViolation marks a fetch refused by the network-safety policy
	ErrPolicyViolation = errors.New("policy violation")

	// ErrDecode marks a member that could not be read as text; never fatal
	ErrDecode = errors.New("member not decodable as text")

	// ErrAnalysisFailed wraps any unexpected failure during a pass
	ErrAnalysisFailed = errors.New("analysis failed")
)
