package engine

// ValidationError marks a submission that failed pre-match validation
// (§4.3.4): bad quantity, missing/non-positive price, or an unrecognized
// type/side. No trades are produced and the book is untouched.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "invalid order: " + e.Reason }

// RejectedError marks a submission rejected for reasons beyond basic field
// validation — currently only FOK liquidity insufficiency (§4.3.3/§7).
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string { return "order rejected: " + e.Reason }

// ErrInvariantViolation marks a fatal internal-consistency failure (§7).
// It should never occur under a correct implementation. The engine checks
// for one case only, a crossed book after a matching step has completed
// (see MatchingEngine.checkInvariants), and then only logs it: the step's
// mutations are already committed, nothing is rolled back, and the book
// stays open to further submissions.
type ErrInvariantViolation struct {
	Symbol string
	Detail string
}

func (e *ErrInvariantViolation) Error() string {
	return "invariant violation on " + e.Symbol + ": " + e.Detail
}
