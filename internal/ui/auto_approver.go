package ui

import (
	"context"

	"github.com/vvka-141/questload/pkg/questload"
)

// AutoApprover approves every table drop without asking. It is the default:
// an import always replaces the quest table.
type AutoApprover struct {
	logger questload.Logger
}

// NewAutoApprover creates an AutoApprover that logs each drop it approves.
func NewAutoApprover(logger questload.Logger) questload.Approver {
	return &AutoApprover{logger: logger}
}

// RequestApproval logs the pending drop and approves it.
func (a *AutoApprover) RequestApproval(ctx context.Context, tableName string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if a.logger != nil {
		a.logger.Info("Dropping and recreating table %s", tableName)
	}
	return true, nil
}

var _ questload.Approver = (*AutoApprover)(nil)
