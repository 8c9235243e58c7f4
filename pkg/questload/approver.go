package questload

import "context"

// Approver handles confirmation of the destructive table recreation that
// starts every import.
//
// Implementations:
//   - AutoApprover: Logs a warning and approves immediately
//   - InteractiveApprover: Prompts user to type the table name for confirmation
type Approver interface {
	// RequestApproval asks whether tableName may be dropped and recreated.
	// Returns false without error when the user declines.
	RequestApproval(ctx context.Context, tableName string) (bool, error)
}
