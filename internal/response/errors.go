package response

import (
	"errors"
	"fmt"
	"strings"
)

// ErrParse is matched by every ParseError via errors.Is.
var ErrParse = errors.New("response: invalid JSON")

// ParseError reports that no valid JSON could be recovered from a completion,
// even after every repair transform.
type ParseError struct {
	Strategy Strategy
	Applied  []string
	Err      error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("response: impossible to extract valid JSON (strategy %s", e.Strategy)
	if len(e.Applied) > 0 {
		msg += ", repairs " + strings.Join(e.Applied, ",")
	}
	msg += ")"
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// QualityError reports a parseable configuration that does not meet the
// minimum content requirements. Failures are meant to be shown verbatim.
type QualityError struct {
	Failures []string
}

func (e *QualityError) Error() string {
	return "response: configuration failed quality checks: " + strings.Join(e.Failures, "; ")
}

// Level is the severity of a Diagnostic.
type Level string

const (
	LevelInfo Level = "info"
	LevelWarn Level = "warn"
)

// Diagnostic records a decision taken while validating a completion.
type Diagnostic struct {
	Level   Level  `json:"level"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("[%s] %s: %s", d.Level, d.Code, d.Message)
}

type diagnostics []Diagnostic

func (d *diagnostics) info(code, format string, args ...any) {
	*d = append(*d, Diagnostic{Level: LevelInfo, Code: code, Message: fmt.Sprintf(format, args...)})
}

func (d *diagnostics) warn(code, format string, args ...any) {
	*d = append(*d, Diagnostic{Level: LevelWarn, Code: code, Message: fmt.Sprintf(format, args...)})
}
