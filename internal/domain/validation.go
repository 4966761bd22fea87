package domain

// ValidationResult is the outcome of a token safety validation. A rejection
// is a normal terminal outcome, not an error: callers branch on IsSafe.
type ValidationResult struct {
	IsSafe bool
	// RejectionReason names the failed rule with the offending and
	// threshold values. Empty when IsSafe.
	RejectionReason string
	// Rule is the machine-readable name of the failed rule (for metrics
	// and signal history). Empty when IsSafe.
	Rule string
}
