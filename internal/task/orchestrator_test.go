package task

import (
	"errors"
	"testing"

	"github.com/fyrsmithlabs/modegate/internal/modes"
)

func newTestOrchestrator() *Orchestrator {
	return NewOrchestrator(modes.NewRegistry(), DefaultCatalog())
}

func TestCreateTask_Basic(t *testing.T) {
	o := newTestOrchestrator()

	task, err := o.CreateTask("code", "", "")
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if task.State != StateActive {
		t.Errorf("expected new task to be active, got %s", task.State)
	}
	if task.ModeSlug != "code" {
		t.Errorf("expected mode_slug code, got %s", task.ModeSlug)
	}
}

func TestCreateTask_UnknownMode(t *testing.T) {
	o := newTestOrchestrator()

	_, err := o.CreateTask("nonexistent", "", "")
	if !errors.Is(err, ErrModeNotFound) {
		t.Errorf("expected ErrModeNotFound, got %v", err)
	}
}

func TestCreateTask_InitialMessage(t *testing.T) {
	o := newTestOrchestrator()

	task, err := o.CreateTask("code", "hello", "")
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if len(task.Messages) != 1 || task.Messages[0].Content != "hello" || task.Messages[0].Role != RoleUser {
		t.Errorf("expected one user message 'hello', got %+v", task.Messages)
	}
}

func TestCreateTask_ParentLinksChild(t *testing.T) {
	o := newTestOrchestrator()

	parent, err := o.CreateTask("orchestrator", "", "")
	if err != nil {
		t.Fatalf("create parent: %v", err)
	}

	child, err := o.CreateTask("code", "", parent.TaskID)
	if err != nil {
		t.Fatalf("create child: %v", err)
	}

	if child.ParentTaskID != parent.TaskID {
		t.Errorf("expected child's parent_task_id to be %s, got %s", parent.TaskID, child.ParentTaskID)
	}

	got, _ := o.Get(parent.TaskID)
	if len(got.ChildTaskIDs) != 1 || got.ChildTaskIDs[0] != child.TaskID {
		t.Errorf("expected parent's child_task_ids to contain %s, got %v", child.TaskID, got.ChildTaskIDs)
	}
}

func TestCreateTask_ParentNotActiveRejected(t *testing.T) {
	o := newTestOrchestrator()

	parent, _ := o.CreateTask("orchestrator", "", "")
	if err := o.CompleteTask(parent, StateCompleted, nil); err != nil {
		t.Fatalf("complete parent: %v", err)
	}

	_, err := o.CreateTask("code", "", parent.TaskID)
	if !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict for non-active parent, got %v", err)
	}
}

func TestCreateTask_UnknownParentRejected(t *testing.T) {
	o := newTestOrchestrator()

	_, err := o.CreateTask("code", "", "does-not-exist")
	if !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestSwitchMode_Success(t *testing.T) {
	o := newTestOrchestrator()
	task, _ := o.CreateTask("architect", "", "")

	if err := o.SwitchMode(task, "code", "needs edit access"); err != nil {
		t.Fatalf("SwitchMode: %v", err)
	}
	if task.ModeSlug != "code" {
		t.Errorf("expected mode_slug code, got %s", task.ModeSlug)
	}
	if task.State != StateActive {
		t.Errorf("expected task to remain active, got %s", task.State)
	}

	history, ok := task.Metadata["mode_switches"].([]map[string]any)
	if !ok || len(history) != 1 {
		t.Fatalf("expected one mode_switches entry, got %+v", task.Metadata)
	}
	record := history[0]
	if record["from"] != "architect" || record["to"] != "code" || record["reason"] != "needs edit access" {
		t.Errorf("unexpected mode_switches record: %+v", record)
	}
}

func TestSwitchMode_HistoryAppends(t *testing.T) {
	o := newTestOrchestrator()
	task, _ := o.CreateTask("architect", "", "")

	if err := o.SwitchMode(task, "code", "first switch"); err != nil {
		t.Fatalf("SwitchMode: %v", err)
	}
	if err := o.SwitchMode(task, "architect", "second switch"); err != nil {
		t.Fatalf("SwitchMode: %v", err)
	}

	history, ok := task.Metadata["mode_switches"].([]map[string]any)
	if !ok || len(history) != 2 {
		t.Fatalf("expected two mode_switches entries, got %+v", task.Metadata)
	}
	if history[0]["reason"] != "first switch" || history[1]["reason"] != "second switch" {
		t.Errorf("unexpected mode_switches order: %+v", history)
	}
}

func TestSwitchMode_UnknownMode(t *testing.T) {
	o := newTestOrchestrator()
	task, _ := o.CreateTask("code", "", "")

	err := o.SwitchMode(task, "nonexistent", "")
	if !errors.Is(err, ErrModeNotFound) {
		t.Errorf("expected ErrModeNotFound, got %v", err)
	}
}

func TestSwitchMode_NotActiveConflict(t *testing.T) {
	o := newTestOrchestrator()
	task, _ := o.CreateTask("code", "", "")
	_ = o.CompleteTask(task, StateCompleted, nil)

	err := o.SwitchMode(task, "architect", "")
	if !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestValidateToolUse_AlwaysAvailable(t *testing.T) {
	o := newTestOrchestrator()
	task, _ := o.CreateTask("orchestrator", "", "")

	allowed, _ := o.ValidateToolUse(task, "attempt_completion", "")
	if !allowed {
		t.Error("expected always-available tool to be allowed")
	}
}

func TestValidateToolUse_NotActive(t *testing.T) {
	o := newTestOrchestrator()
	task, _ := o.CreateTask("code", "", "")
	_ = o.CompleteTask(task, StateCompleted, nil)

	allowed, reason := o.ValidateToolUse(task, "read_file", "")
	if allowed {
		t.Error("expected disallowed for non-active task")
	}
	if reason != "task is not active" {
		t.Errorf("unexpected reason: %q", reason)
	}
}

func TestValidateToolUse_GroupNotEnabled(t *testing.T) {
	o := newTestOrchestrator()
	task, _ := o.CreateTask("ask", "", "")

	allowed, reason := o.ValidateToolUse(task, "execute_command", "")
	if allowed {
		t.Error("expected ask mode to disallow execute_command")
	}
	if reason == "" {
		t.Error("expected a reason")
	}
}

func TestValidateToolUse_EditRegexRestriction(t *testing.T) {
	o := newTestOrchestrator()
	task, _ := o.CreateTask("architect", "", "")

	allowed, reason := o.ValidateToolUse(task, "write_to_file", "main.py")
	if allowed {
		t.Error("expected architect mode to reject main.py")
	}
	if reason == "" {
		t.Error("expected a reason naming the regex")
	}

	allowed, _ = o.ValidateToolUse(task, "write_to_file", "README.md")
	if !allowed {
		t.Error("expected architect mode to allow README.md")
	}
}

func TestValidateToolUse_MissingFilePath(t *testing.T) {
	o := newTestOrchestrator()
	task, _ := o.CreateTask("architect", "", "")

	allowed, reason := o.ValidateToolUse(task, "write_to_file", "")
	if allowed {
		t.Error("expected missing file_path to be rejected")
	}
	if reason != "file_path required" {
		t.Errorf("unexpected reason: %q", reason)
	}
}

func TestValidateToolUse_ModeSwitchChangesCapability(t *testing.T) {
	o := newTestOrchestrator()
	task, _ := o.CreateTask("architect", "", "")

	allowed, _ := o.ValidateToolUse(task, "write_to_file", "main.py")
	if allowed {
		t.Fatal("expected rejection before switch")
	}

	if err := o.SwitchMode(task, "code", ""); err != nil {
		t.Fatalf("SwitchMode: %v", err)
	}

	allowed, _ = o.ValidateToolUse(task, "write_to_file", "main.py")
	if !allowed {
		t.Error("expected code mode to allow main.py after switch")
	}
}

func TestCompleteTask_Success(t *testing.T) {
	o := newTestOrchestrator()
	task, _ := o.CreateTask("code", "", "")

	if err := o.CompleteTask(task, StateCompleted, "done"); err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}
	if task.State != StateCompleted {
		t.Errorf("expected state completed, got %s", task.State)
	}
	if task.CompletedAt.IsZero() {
		t.Error("expected completed_at to be set")
	}
	if task.Metadata["result"] != "done" {
		t.Errorf("expected result metadata 'done', got %v", task.Metadata["result"])
	}
}

func TestCompleteTask_AlreadyTerminalConflict(t *testing.T) {
	o := newTestOrchestrator()
	task, _ := o.CreateTask("code", "", "")
	_ = o.CompleteTask(task, StateCompleted, nil)

	err := o.CompleteTask(task, StateFailed, nil)
	if !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict on double-complete, got %v", err)
	}
}

func TestCompleteTask_InvalidStatus(t *testing.T) {
	o := newTestOrchestrator()
	task, _ := o.CreateTask("code", "", "")

	err := o.CompleteTask(task, StateActive, nil)
	if err == nil {
		t.Error("expected error for non-terminal status")
	}
}

func TestState_IsTerminal(t *testing.T) {
	cases := map[State]bool{
		StateActive:    false,
		StateCompleted: true,
		StateFailed:    true,
		StateCancelled: true,
	}
	for state, want := range cases {
		if got := state.IsTerminal(); got != want {
			t.Errorf("State(%s).IsTerminal() = %v, want %v", state, got, want)
		}
	}
}
