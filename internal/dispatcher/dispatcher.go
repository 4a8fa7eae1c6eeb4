// Package dispatcher implements C5: it routes JSON-RPC methods to the
// mode registry, task orchestrator, and session manager, validates
// input against each tool's JSON Schema, and formats responses.
package dispatcher

import (
	"context"
	"fmt"

	"github.com/fyrsmithlabs/modegate/internal/logging"
	"github.com/fyrsmithlabs/modegate/internal/metrics"
	"github.com/fyrsmithlabs/modegate/internal/modes"
	"github.com/fyrsmithlabs/modegate/internal/rpc"
	"github.com/fyrsmithlabs/modegate/internal/session"
	"github.com/fyrsmithlabs/modegate/internal/task"
	"go.uber.org/zap"
)

// Dispatcher owns the method routing table and the dependencies every
// handler needs.
type Dispatcher struct {
	modes        *modes.Registry
	orchestrator *task.Orchestrator
	sessions     *session.Manager
	logger       *logging.Logger
	metrics      *metrics.Recorder
	schemas      *schemaSet
	initialized  bool
}

// New builds a Dispatcher over the given collaborators.
func New(registry *modes.Registry, orchestrator *task.Orchestrator, sessions *session.Manager, logger *logging.Logger, rec *metrics.Recorder) *Dispatcher {
	return &Dispatcher{
		modes:        registry,
		orchestrator: orchestrator,
		sessions:     sessions,
		logger:       logger,
		metrics:      rec,
		schemas:      mustCompileSchemas(),
	}
}

// Dispatch routes one decoded request to its method handler. It never
// panics out to the caller: a handler panic is recovered and reported
// as an internal error, matching the teacher's discipline of never
// letting one bad request take down the read loop.
func (d *Dispatcher) Dispatch(ctx context.Context, req *rpc.Request) (result any, errObj *rpc.ErrorObj) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error(ctx, "recovered panic in dispatch", zap.String("method", req.Method), zap.Any("panic", r))
			errObj = &rpc.ErrorObj{Code: rpc.CodeInternalError, Message: "internal error"}
		}
	}()

	switch req.Method {
	case "initialize":
		return d.handleInitialize(ctx, req.Params)
	case "notifications/initialized":
		d.initialized = true
		return nil, nil
	case "resources/list":
		return d.handleResourcesList(ctx)
	case "resources/read":
		return d.handleResourcesRead(ctx, req.Params)
	case "tools/list":
		return d.handleToolsList(ctx)
	case "tools/call":
		return d.handleToolsCall(ctx, req.Params)
	default:
		return nil, &rpc.ErrorObj{
			Code:    rpc.CodeMethodNotFound,
			Message: fmt.Sprintf("unknown method %q", req.Method),
		}
	}
}
