package dispatcher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fyrsmithlabs/modegate/internal/rpc"
)

// ContentBlock is one element of a tool result's content array.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ToolResult is the response envelope for every successful tools/call:
// human-readable text plus an optional machine-parseable metadata
// object, per the per-tool fields named in the tool catalog.
type ToolResult struct {
	Content  []ContentBlock `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func textResult(text string, metadata map[string]any) *ToolResult {
	return &ToolResult{
		Content:  []ContentBlock{{Type: "text", Text: text}},
		Metadata: metadata,
	}
}

// toolDescriptor describes one MCP tool for tools/list and holds the
// handler tools/call routes to.
type toolDescriptor struct {
	name        string
	description string
	handle      func(d *Dispatcher, ctx context.Context, args json.RawMessage) (*ToolResult, *rpc.ErrorObj)
}

var toolTable = []toolDescriptor{
	{"list_modes", "List modes from a given source (builtin, global, project, or all).", (*Dispatcher).toolListModes},
	{"get_mode_info", "Describe a mode's groups, restrictions, and instructions.", (*Dispatcher).toolGetModeInfo},
	{"create_task", "Create a new task under a mode and a session bound to it.", (*Dispatcher).toolCreateTask},
	{"switch_mode", "Switch an active task's mode.", (*Dispatcher).toolSwitchMode},
	{"get_task_info", "Report a task's state, age, and optionally its history and hierarchy.", (*Dispatcher).toolGetTaskInfo},
	{"validate_tool_use", "Check whether a tool invocation is permitted under a task's mode.", (*Dispatcher).toolValidateToolUse},
	{"complete_task", "Terminate a task with a final status.", (*Dispatcher).toolCompleteTask},
}

func findTool(name string) (toolDescriptor, bool) {
	for _, t := range toolTable {
		if t.name == name {
			return t, true
		}
	}
	return toolDescriptor{}, false
}

func (d *Dispatcher) handleToolsList(ctx context.Context) (any, *rpc.ErrorObj) {
	type toolEntry struct {
		Name        string         `json:"name"`
		Description string         `json:"description"`
		InputSchema map[string]any `json:"inputSchema"`
	}
	entries := make([]toolEntry, 0, len(toolTable))
	for _, t := range toolTable {
		entries = append(entries, toolEntry{
			Name:        t.name,
			Description: t.description,
			InputSchema: toolSchemas[t.name],
		})
	}
	return map[string]any{"tools": entries}, nil
}

type toolCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

func (d *Dispatcher) handleToolsCall(ctx context.Context, params json.RawMessage) (result any, errObj *rpc.ErrorObj) {
	var call toolCallParams
	if err := json.Unmarshal(params, &call); err != nil {
		return nil, &rpc.ErrorObj{Code: rpc.CodeInvalidParams, Message: "params must be a tools/call object"}
	}

	tool, ok := findTool(call.Name)
	if !ok {
		return nil, &rpc.ErrorObj{Code: rpc.CodeMethodNotFound, Message: fmt.Sprintf("unknown tool %q", call.Name)}
	}

	if err := d.schemas.validate(tool.name, call.Arguments); err != nil {
		return nil, &rpc.ErrorObj{
			Code:    schemaErrorCode(err),
			Message: "invalid arguments: " + err.Error(),
			Data:    map[string]any{"tool": tool.name},
		}
	}

	start := time.Now()
	toolResult, toolErr := tool.handle(d, ctx, call.Arguments)
	var recordErr error
	if toolErr != nil {
		recordErr = fmt.Errorf("%s", toolErr.Message)
	}
	if d.metrics != nil {
		d.metrics.RecordInvocation(tool.name, time.Since(start), recordErr)
	}
	if toolErr != nil {
		return nil, toolErr
	}
	return toolResult, nil
}
