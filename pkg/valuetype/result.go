package valuetype

import "fmt"

// Code identifies the pipeline stage that rejected a value.
type Code string

const (
	// CodeCheckFailure marks values rejected by the checker (or a checker that
	// failed while running).
	CodeCheckFailure Code = "CHECK_FAILURE"
	// CodeParseFailure marks values the parser could not handle.
	CodeParseFailure Code = "PARSE_FAILURE"
	// CodeFormatFailure marks values whose formatter failed after a passing check.
	CodeFormatFailure Code = "FORMAT_FAILURE"
	// CodeUnknownFailure marks anything escaping the stage boundaries.
	CodeUnknownFailure Code = "UNKNOWN_FAILURE"
)

const (
	MessageSuccess = "success"
	MessageFailure = "failure"
)

// CheckResult reports the outcome of a check. Code is empty on success and
// also when the checker itself failed while running; only the Value pipeline
// guarantees a code on every failure.
type CheckResult struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
	Code    Code   `json:"code,omitempty"`
}

// ValueResult extends CheckResult with the value produced by the pipeline. On
// failure Value holds the best-known value at the failing stage: the original
// input for parse failures, the parsed input otherwise.
type ValueResult struct {
	CheckResult
	Value any `json:"value"`
}

// Err converts a failed result into an error. Successful results return nil.
func (r ValueResult) Err() error {
	if r.OK {
		return nil
	}
	return &ResultError{Code: r.Code, Message: r.Message}
}

// ResultError carries a failed result through error-returning call chains.
type ResultError struct {
	Code    Code
	Message string
}

func (e *ResultError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func success(value any) ValueResult {
	return ValueResult{
		CheckResult: CheckResult{OK: true, Message: MessageSuccess},
		Value:       value,
	}
}

func failure(code Code, message string, value any) ValueResult {
	return ValueResult{
		CheckResult: CheckResult{OK: false, Message: message, Code: code},
		Value:       value,
	}
}
