package questload

import (
	"errors"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	report, err := importer.Import(ctx, cfg)
//	if errors.Is(err, questload.ErrSchemaFailed) {
//	    // The destination table could not be recreated
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrSourceNotFound indicates a source CSV file does not exist.
	ErrSourceNotFound = errors.New("source file not found")

	// ErrMalformedRow indicates a CSV data row could not be turned into a record.
	ErrMalformedRow = errors.New("malformed row")

	// ErrSchemaFailed indicates the destination table could not be dropped or created.
	ErrSchemaFailed = errors.New("schema initialization failed")

	// ErrApprovalDenied indicates the user denied approval for the table drop.
	ErrApprovalDenied = errors.New("approval denied")

	// ErrExecutionFailed indicates an insert or update statement failed.
	ErrExecutionFailed = errors.New("execution failed")

	// ErrUnsupportedAuthMethod indicates the requested authentication method is not supported.
	ErrUnsupportedAuthMethod = errors.New("unsupported authentication method")

	// ErrConnectionFailed indicates database connection failed.
	ErrConnectionFailed = errors.New("connection failed")
)

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, ErrUnsupportedAuthMethod):
		return ExitConfigError
	case errors.Is(err, ErrSourceNotFound):
		return ExitSourceMissing
	case errors.Is(err, ErrMalformedRow):
		return ExitMalformedSource
	case errors.Is(err, ErrSchemaFailed):
		return ExitSchemaFailed
	case errors.Is(err, ErrApprovalDenied):
		return ExitApprovalDenied
	case errors.Is(err, ErrExecutionFailed):
		return ExitExecutionFailed
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	}

	errStr := err.Error()
	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	// cobra reports argument and flag misuse as plain errors
	if strings.Contains(errStr, "unknown flag") ||
		strings.Contains(errStr, "unknown shorthand flag") ||
		strings.Contains(errStr, "unknown command") ||
		strings.Contains(errStr, "required flag") ||
		strings.Contains(errStr, "invalid argument") ||
		strings.Contains(errStr, "accepts ") ||
		strings.Contains(errStr, "requires at least") ||
		strings.Contains(errStr, "if any flags in the group") {
		return ExitUsageError
	}

	return ExitGeneralError
}
