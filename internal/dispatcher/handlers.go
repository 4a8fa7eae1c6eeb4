package dispatcher

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fyrsmithlabs/modegate/internal/logging"
	"github.com/fyrsmithlabs/modegate/internal/modes"
	"github.com/fyrsmithlabs/modegate/internal/rpc"
	"github.com/fyrsmithlabs/modegate/internal/session"
	"github.com/fyrsmithlabs/modegate/internal/task"
	"go.uber.org/zap"
)

// resolveSession looks up a session id and converts a miss into the
// JSON-RPC error the caller should return. On a hit, it returns ctx
// enriched with the resolved (already-validated) session id so later
// logging in the same request carries it — never call WithSessionID
// with a raw, unresolved client-supplied id, since it panics on
// anything outside its id pattern.
func (d *Dispatcher) resolveSession(ctx context.Context, sessionID string) (context.Context, *session.Session, *rpc.ErrorObj) {
	s, err := d.sessions.GetSession(sessionID)
	if err != nil {
		return ctx, nil, mapDomainError(err)
	}
	return logging.WithSessionID(ctx, s.SessionID), s, nil
}

// modeDisplayName returns a mode's display name, falling back to the
// raw slug if the mode is no longer loaded (e.g. a project mode file
// was reloaded out from under a long-lived task).
func (d *Dispatcher) modeDisplayName(slug string) string {
	if m, ok := d.modes.Get(slug); ok {
		return m.Name
	}
	return slug
}

type listModesArgs struct {
	Source string `json:"source"`
}

func (d *Dispatcher) toolListModes(ctx context.Context, args json.RawMessage) (*ToolResult, *rpc.ErrorObj) {
	var a listModesArgs
	_ = json.Unmarshal(args, &a)
	if a.Source == "" {
		a.Source = "all"
	}

	list := d.modes.List(modes.ListFilter(a.Source))

	var b strings.Builder
	entries := make([]map[string]any, 0, len(list))
	for _, m := range list {
		fmt.Fprintf(&b, "%s (%s) [%s]\n", m.Name, m.Slug, m.Source)
		entries = append(entries, map[string]any{"slug": m.Slug, "name": m.Name, "source": string(m.Source)})
	}
	if len(list) == 0 {
		b.WriteString("no modes found\n")
	}

	return textResult(b.String(), map[string]any{"modes": entries}), nil
}

type getModeInfoArgs struct {
	ModeSlug            string `json:"mode_slug"`
	IncludeSystemPrompt bool   `json:"include_system_prompt"`
}

func (d *Dispatcher) toolGetModeInfo(ctx context.Context, args json.RawMessage) (*ToolResult, *rpc.ErrorObj) {
	var a getModeInfoArgs
	_ = json.Unmarshal(args, &a)
	if a.ModeSlug == "" {
		return nil, requiredFieldError("mode_slug")
	}

	m, ok := d.modes.Get(a.ModeSlug)
	if !ok {
		return nil, &rpc.ErrorObj{
			Code:    rpc.CodeModeNotFound,
			Message: fmt.Sprintf("mode %q not found", a.ModeSlug),
			Data:    map[string]any{"mode_slug": a.ModeSlug},
		}
	}

	groupNames := make([]string, 0, len(m.Groups))
	var restrictions []string
	for _, g := range m.Groups {
		groupNames = append(groupNames, string(g.Group))
		if g.FileRegex != "" {
			restrictions = append(restrictions, fmt.Sprintf("%s restricted to files matching %s", g.Group, g.FileRegex))
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)\nSource: %s\nGroups: %s\n", m.Name, m.Slug, m.Source, strings.Join(groupNames, ", "))
	if len(restrictions) > 0 {
		fmt.Fprintf(&b, "Restrictions: %s\n", strings.Join(restrictions, "; "))
	}
	if m.WhenToUse != "" {
		fmt.Fprintf(&b, "When to use: %s\n", m.WhenToUse)
	}
	if a.IncludeSystemPrompt {
		fmt.Fprintf(&b, "\n%s\n", renderSystemPrompt(m))
	}

	return textResult(b.String(), map[string]any{
		"slug":   m.Slug,
		"source": string(m.Source),
		"groups": groupNames,
	}), nil
}

type createTaskArgs struct {
	ModeSlug        string `json:"mode_slug"`
	InitialMessage  string `json:"initial_message"`
	ParentSessionID string `json:"parent_session_id"`
}

func (d *Dispatcher) toolCreateTask(ctx context.Context, args json.RawMessage) (*ToolResult, *rpc.ErrorObj) {
	var a createTaskArgs
	_ = json.Unmarshal(args, &a)
	if a.ModeSlug == "" {
		return nil, requiredFieldError("mode_slug")
	}

	var parentTaskID string
	if a.ParentSessionID != "" {
		var parentSession *session.Session
		var errObj *rpc.ErrorObj
		ctx, parentSession, errObj = d.resolveSession(ctx, a.ParentSessionID)
		if errObj != nil {
			return nil, errObj
		}
		parentTaskID = parentSession.Task.TaskID
	}

	t, err := d.orchestrator.CreateTask(a.ModeSlug, a.InitialMessage, parentTaskID)
	if err != nil {
		return nil, mapDomainError(err)
	}

	s := d.sessions.CreateSession(t)
	ctx = logging.WithSessionID(ctx, s.SessionID)
	d.logger.Debug(ctx, "created task", zap.String("mode_slug", t.ModeSlug),
		logging.RedactedString("initial_message", a.InitialMessage))

	text := fmt.Sprintf("Created task %s in mode %s (session %s)", t.TaskID, t.ModeSlug, s.SessionID)
	return textResult(text, map[string]any{
		"session_id": s.SessionID,
		"task_id":    t.TaskID,
		"mode_slug":  t.ModeSlug,
	}), nil
}

type switchModeArgs struct {
	SessionID   string `json:"session_id"`
	NewModeSlug string `json:"new_mode_slug"`
	Reason      string `json:"reason"`
}

func (d *Dispatcher) toolSwitchMode(ctx context.Context, args json.RawMessage) (*ToolResult, *rpc.ErrorObj) {
	var a switchModeArgs
	_ = json.Unmarshal(args, &a)
	if a.SessionID == "" {
		return nil, requiredFieldError("session_id")
	}
	if a.NewModeSlug == "" {
		return nil, requiredFieldError("new_mode_slug")
	}

	ctx, s, errObj := d.resolveSession(ctx, a.SessionID)
	if errObj != nil {
		return nil, errObj
	}

	oldSlug := s.Task.ModeSlug
	if err := d.orchestrator.SwitchMode(s.Task, a.NewModeSlug, a.Reason); err != nil {
		return nil, mapDomainError(err)
	}
	d.logger.Info(ctx, "switched mode", zap.String("old_mode_slug", oldSlug), zap.String("new_mode_slug", a.NewModeSlug))

	text := fmt.Sprintf("Switched task %s from %s to %s", s.Task.TaskID, oldSlug, a.NewModeSlug)
	return textResult(text, map[string]any{
		"old_mode_slug": oldSlug,
		"new_mode_slug": a.NewModeSlug,
	}), nil
}

type getTaskInfoArgs struct {
	SessionID        string `json:"session_id"`
	IncludeMessages  bool   `json:"include_messages"`
	IncludeHierarchy bool   `json:"include_hierarchy"`
}

func (d *Dispatcher) toolGetTaskInfo(ctx context.Context, args json.RawMessage) (*ToolResult, *rpc.ErrorObj) {
	var a getTaskInfoArgs
	_ = json.Unmarshal(args, &a)
	if a.SessionID == "" {
		return nil, requiredFieldError("session_id")
	}

	ctx, s, errObj := d.resolveSession(ctx, a.SessionID)
	if errObj != nil {
		return nil, errObj
	}
	t := s.Task
	d.logger.Debug(ctx, "task info requested", zap.Bool("include_messages", a.IncludeMessages), zap.Bool("include_hierarchy", a.IncludeHierarchy))

	var b strings.Builder
	fmt.Fprintf(&b, "Mode: %s (%s)\n", d.modeDisplayName(t.ModeSlug), t.ModeSlug)
	fmt.Fprintf(&b, "State: %s\n", t.State)
	fmt.Fprintf(&b, "Created: %s\n", t.CreatedAt.Format(time.RFC3339))
	if !t.CompletedAt.IsZero() {
		fmt.Fprintf(&b, "Completed: %s\n", t.CompletedAt.Format(time.RFC3339))
	}

	metadata := map[string]any{
		"task_id":   t.TaskID,
		"mode_slug": t.ModeSlug,
		"state":     string(t.State),
	}

	if a.IncludeMessages {
		b.WriteString("Messages:\n")
		for _, m := range t.Messages {
			fmt.Fprintf(&b, "  [%s] %s\n", m.Role, m.Content)
		}
		metadata["messages"] = t.Messages
	}

	if a.IncludeHierarchy {
		if t.ParentTaskID != "" {
			fmt.Fprintf(&b, "Parent: %s\n", t.ParentTaskID)
		}
		if len(t.ChildTaskIDs) > 0 {
			fmt.Fprintf(&b, "Children: %s\n", strings.Join(t.ChildTaskIDs, ", "))
		}
		metadata["parent_task_id"] = t.ParentTaskID
		metadata["child_task_ids"] = t.ChildTaskIDs
	}

	return textResult(b.String(), metadata), nil
}

type validateToolUseArgs struct {
	SessionID string `json:"session_id"`
	ToolName  string `json:"tool_name"`
	FilePath  string `json:"file_path"`
}

func (d *Dispatcher) toolValidateToolUse(ctx context.Context, args json.RawMessage) (*ToolResult, *rpc.ErrorObj) {
	var a validateToolUseArgs
	_ = json.Unmarshal(args, &a)
	if a.SessionID == "" {
		return nil, requiredFieldError("session_id")
	}
	if a.ToolName == "" {
		return nil, requiredFieldError("tool_name")
	}

	ctx, s, errObj := d.resolveSession(ctx, a.SessionID)
	if errObj != nil {
		return nil, errObj
	}

	allowed, reason := d.orchestrator.ValidateToolUse(s.Task, a.ToolName, a.FilePath)
	d.logger.Debug(ctx, "validated tool use", zap.String("tool_name", a.ToolName), zap.Bool("allowed", allowed))

	text := fmt.Sprintf("allowed=%t", allowed)
	if reason != "" {
		text += ": " + reason
	}

	metadata := map[string]any{"allowed": allowed}
	if reason != "" {
		metadata["reason"] = reason
	}
	return textResult(text, metadata), nil
}

type completeTaskArgs struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
	Result    any    `json:"result"`
}

func (d *Dispatcher) toolCompleteTask(ctx context.Context, args json.RawMessage) (*ToolResult, *rpc.ErrorObj) {
	var a completeTaskArgs
	_ = json.Unmarshal(args, &a)
	if a.SessionID == "" {
		return nil, requiredFieldError("session_id")
	}
	if a.Status == "" {
		return nil, requiredFieldError("status")
	}

	ctx, s, errObj := d.resolveSession(ctx, a.SessionID)
	if errObj != nil {
		return nil, errObj
	}

	if err := d.orchestrator.CompleteTask(s.Task, task.State(a.Status), a.Result); err != nil {
		return nil, mapDomainError(err)
	}
	d.logger.Info(ctx, "completed task", zap.String("status", a.Status))

	// Grace-on-complete: remove the session now, inside this same
	// request and before the response is written, rather than waiting
	// for the sweeper.
	d.sessions.RemoveSession(s.SessionID)

	text := fmt.Sprintf("Task %s completed with status %s", s.Task.TaskID, a.Status)
	return textResult(text, map[string]any{
		"task_id": s.Task.TaskID,
		"state":   a.Status,
	}), nil
}
