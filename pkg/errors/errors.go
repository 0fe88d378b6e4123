// Package errors defines the engine's distinct, inspectable error kinds.
// Every kind named in the engine's error surface is a constructor here;
// callers distinguish them with errors.As against *AppError and a Code
// comparison, never by matching on Error() text.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode identifies one of the engine's distinct error kinds.
type ErrorCode string

const (
	// Construction errors (fatal to the value being built; never recoverable by retry).
	ErrCodeInvalidCurrency      ErrorCode = "INVALID_CURRENCY"
	ErrCodeInvalidPercentage    ErrorCode = "INVALID_PERCENTAGE"
	ErrCodePercentageOutOfRange ErrorCode = "PERCENTAGE_OUT_OF_RANGE"
	ErrCodeInvalidDiscount      ErrorCode = "INVALID_DISCOUNT"
	ErrCodeInvalidPromotion     ErrorCode = "INVALID_PROMOTION"

	// Graph validation errors (fatal to the stack; raised at build/validateGraph).
	ErrCodeInvalidStack ErrorCode = "INVALID_STACK"

	// Solve-time anomalies. Infeasibility is not an error (see domain package);
	// only a hard backend failure is.
	ErrCodeSolver ErrorCode = "SOLVER_ERROR"

	// Fixture/config loading.
	ErrCodeInvalidFixture ErrorCode = "INVALID_FIXTURE"
)

// AppError is the engine's error type: a stable code, a human-readable
// message, optional structured details, and an optional wrapped cause.
type AppError struct {
	Code     ErrorCode
	Message  string
	Details  map[string]interface{}
	Internal error
}

func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the wrapped cause to errors.Is/errors.As.
func (e *AppError) Unwrap() error {
	return e.Internal
}

// WithDetail attaches a structured detail field and returns the receiver.
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithInternal attaches a wrapped cause and returns the receiver.
func (e *AppError) WithInternal(err error) *AppError {
	e.Internal = err
	return e
}

// New creates an AppError of the given code.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap wraps an existing error into an AppError of the given code.
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message, Internal: err}
}

// Is delegates to errors.Is.
func Is(err error, target error) bool {
	return stderrors.Is(err, target)
}

// As delegates to errors.As.
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// CodeOf returns the ErrorCode carried by err, if any.
func CodeOf(err error) (ErrorCode, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code, true
	}
	return "", false
}

// InvalidCurrency reports an arithmetic or construction operation performed
// across Money values of different currencies.
func InvalidCurrency(message string) *AppError {
	return New(ErrCodeInvalidCurrency, message)
}

// InvalidPercentage reports a Percentage that could not be parsed at all
// (non-numeric string, non-finite float).
func InvalidPercentage(message string) *AppError {
	return New(ErrCodeInvalidPercentage, message)
}

// PercentageOutOfRange reports a Percentage parsed successfully but outside [0.0, 1.0].
func PercentageOutOfRange(value float64) *AppError {
	return New(ErrCodePercentageOutOfRange, fmt.Sprintf("percentage %.6f outside [0.0, 1.0]", value)).
		WithDetail("value", value)
}

// InvalidDiscount reports a SimpleDiscount/BundleDiscount misused at construction
// (e.g. a bundle discount given an empty member list).
func InvalidDiscount(message string) *AppError {
	return New(ErrCodeInvalidDiscount, message)
}

// InvalidPromotion reports a Promotion variant misconfigured at construction
// (e.g. a Positional promotion whose positions aren't a subset of [0, size)).
func InvalidPromotion(message string) *AppError {
	return New(ErrCodeInvalidPromotion, message)
}

// InvalidStack reports a StackBuilder.build()/validateGraph failure.
// StackBuilder.Build always passes the reason "stack failed validation"
// and records each violated rule as its own Details entry ("problem_0",
// "problem_1", …); the reason itself does not name the rule.
func InvalidStack(reason string) *AppError {
	return New(ErrCodeInvalidStack, reason)
}

// SolverError reports a hard ILP backend failure. Infeasibility is not an
// error — engine.Solve (through its branch-and-bound) resolves an
// infeasible layer to an empty assignment instead of returning this.
func SolverError(message string, cause error) *AppError {
	return Wrap(cause, ErrCodeSolver, message)
}

// InvalidFixture reports a malformed YAML stack/promotion fixture.
func InvalidFixture(message string) *AppError {
	return New(ErrCodeInvalidFixture, message)
}
