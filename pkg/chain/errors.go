package chain

// ValidationError occurs when a header or block fails chainstate's checks.
// Score is the ban-score the sync core should forward to the peer manager
// verbatim, per the chainstate/sync error-propagation contract.
type ValidationError struct {
	msg   string
	score int
}

// NewValidationError builds a ValidationError carrying the given ban-score.
func NewValidationError(msg string, score int) *ValidationError {
	return &ValidationError{msg: msg, score: score}
}

func (v *ValidationError) Error() string {
	return v.msg
}

// Score reports the ban-score the sync core forwards to the peer manager
// verbatim, per spec §4.1(4) and §7's ChainstateError handling.
func (v *ValidationError) Score() int {
	return v.score
}

// DatabaseError occurs when the chain store fails to persist an object.
type DatabaseError struct {
	msg string
	err error
}

// NewDatabaseError wraps the underlying storage error with context.
func NewDatabaseError(msg string, err error) *DatabaseError {
	return &DatabaseError{msg: msg, err: err}
}

func (d *DatabaseError) Error() string {
	return d.msg + ": " + d.err.Error()
}

func (d *DatabaseError) Unwrap() error {
	return d.err
}
