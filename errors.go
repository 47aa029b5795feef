package sqlq

import (
	"errors"
	"fmt"
	"strings"
)

/*
Machine-readable category of an `Err`. Matching is normally done against the
sentinel variables below; the code is exposed for callers that need to switch
on it, for example when mapping failures to HTTP statuses.
*/
type ErrCode string

const (
	ErrCodeUnknown            ErrCode = ""
	ErrCodeInvalidInput       ErrCode = "InvalidInput"
	ErrCodeEmptyDelta         ErrCode = "EmptyDelta"
	ErrCodeEmptyWhere         ErrCode = "EmptyWhere"
	ErrCodeConflictRedefined  ErrCode = "ConflictRedefined"
	ErrCodeConflictIncomplete ErrCode = "ConflictIncomplete"
	ErrCodeConflictTarget     ErrCode = "ConflictTarget"
	ErrCodePlaceholder        ErrCode = "Placeholder"
)

/*
Sentinels for `errors.Is`. Errors returned from compilation carry the stage in
`.While` and the concrete reason in `.Cause`, so they never equal a sentinel
under `==`. Matching checks the cause chain first, then the code:

	_, err := sqlq.Update(`users`, delta).Compile()
	if errors.Is(err, sqlq.ErrEmptyWhere) {
		// Missing conditions; nothing was compiled.
	}
*/
var (
	ErrInvalidInput       Err = Err{Code: ErrCodeInvalidInput, Cause: errors.New(`invalid input`)}
	ErrEmptyDelta         Err = Err{Code: ErrCodeEmptyDelta, Cause: errors.New(`empty assignment list`)}
	ErrEmptyWhere         Err = Err{Code: ErrCodeEmptyWhere, Cause: errors.New(`empty condition list`)}
	ErrConflictRedefined  Err = Err{Code: ErrCodeConflictRedefined, Cause: errors.New(`conflict clause already defined`)}
	ErrConflictIncomplete Err = Err{Code: ErrCodeConflictIncomplete, Cause: errors.New(`conflict clause has no action`)}
	ErrConflictTarget     Err = Err{Code: ErrCodeConflictTarget, Cause: errors.New(`conflict clause has no target`)}
	ErrPlaceholder        Err = Err{Code: ErrCodePlaceholder, Cause: errors.New(`placeholder mismatch`)}
)

// Error produced by compilation, validation or descriptor decoding.
type Err struct {
	Code  ErrCode
	While string
	Cause error
}

// Implement `error`.
func (self Err) Error() string {
	if self == (Err{}) {
		return ""
	}
	var buf strings.Builder
	buf.WriteString(`[sqlq]`)
	if self.Code != ErrCodeUnknown {
		buf.WriteString(` `)
		buf.WriteString(string(self.Code))
	}
	if self.While != "" {
		buf.WriteString(` while `)
		buf.WriteString(self.While)
	}
	if self.Cause != nil {
		buf.WriteString(`: `)
		buf.WriteString(self.Cause.Error())
	}
	return buf.String()
}

// Implement a hidden interface in "errors".
func (self Err) Is(other error) bool {
	if self.Cause != nil && errors.Is(self.Cause, other) {
		return true
	}
	err, ok := other.(Err)
	return ok && err.Code == self.Code
}

// Implement a hidden interface in "errors".
func (self Err) Unwrap() error {
	return self.Cause
}

func (self Err) while(while string) Err {
	self.While = while
	return self
}

func (self Err) because(cause error) Err {
	self.Cause = cause
	return self
}

func (self Err) becausef(pattern string, args ...any) Err {
	return self.because(fmt.Errorf(pattern, args...))
}
