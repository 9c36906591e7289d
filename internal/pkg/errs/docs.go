// Package errs provides standardized error types for the batch plant application.
// It implements a consistent pattern for error creation, formatting, and unwrapping
// that is used throughout the application.
//
// The package includes several error types for common error scenarios:
//   - ValueIsRequiredError: For when a required value is missing
//   - ValueIsInvalidError: For when a value is invalid
//   - ObjectNotFoundError: For when an object cannot be found
//   - ConflictError: For when a mutation lost a race against the current state
//   - IllegalTransitionError: For when a state machine forbids an action
//   - InvalidStateError and PreconditionFailedError for broken invariants and
//     unmet operation preconditions
//
// Each error type follows a consistent pattern:
//   - A sentinel error variable (e.g., ErrValueIsRequired)
//   - A struct type with fields for error details
//   - Constructor functions with and without cause
//   - Error() method for formatting the error message
//   - Unwrap() method for error wrapping/unwrapping support
//
// Errors that carry a cause unwrap to both the sentinel and the cause, so callers can
// match either the error kind (errs.ErrConflict) or a domain sentinel with errors.Is.
package errs
