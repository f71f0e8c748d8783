package engagement

import (
	"errors"
	"fmt"
)

// ValidationError reports a malformed inbound request. It is returned before
// any session state is touched.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("engagement: invalid %s: %s", e.Field, e.Reason)
}

// ErrInternal is returned for unexpected faults. Its message is safe to show
// to callers.
var ErrInternal = errors.New("engagement: internal error")

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
