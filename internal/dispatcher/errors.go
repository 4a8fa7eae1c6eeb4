package dispatcher

import (
	"errors"
	"fmt"

	"github.com/fyrsmithlabs/modegate/internal/rpc"
	"github.com/fyrsmithlabs/modegate/internal/session"
	"github.com/fyrsmithlabs/modegate/internal/task"
)

// mapDomainError converts an internal/task or internal/session sentinel
// error into a JSON-RPC error object. Errors that don't match any known
// sentinel are reported as internal errors with a redacted message,
// matching the propagation policy: the server never terminates on a
// handler error, and uncaught defects are logged and returned as
// -32603 rather than leaking implementation detail.
func mapDomainError(err error) *rpc.ErrorObj {
	switch {
	case errors.Is(err, task.ErrModeNotFound):
		return &rpc.ErrorObj{Code: rpc.CodeModeNotFound, Message: err.Error()}
	case errors.Is(err, task.ErrTaskNotFound):
		return &rpc.ErrorObj{Code: rpc.CodeTaskNotFound, Message: err.Error()}
	case errors.Is(err, task.ErrConflict):
		return &rpc.ErrorObj{Code: rpc.CodeInternalError, Message: err.Error()}
	case errors.Is(err, session.ErrSessionNotFound):
		return &rpc.ErrorObj{Code: rpc.CodeTaskNotFound, Message: "session not found or expired"}
	default:
		return &rpc.ErrorObj{Code: rpc.CodeInternalError, Message: "internal error"}
	}
}

func requiredFieldError(field string) *rpc.ErrorObj {
	return &rpc.ErrorObj{Code: rpc.CodeInvalidParams, Message: fmt.Sprintf("%s is required", field)}
}
