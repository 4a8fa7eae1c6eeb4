// internal/task/orchestrator.go
package task

import (
	"fmt"
	"sync"
	"time"

	"github.com/fyrsmithlabs/modegate/internal/modes"
	"github.com/google/uuid"
)

// Orchestrator is C3: it creates, switches, and completes tasks, enforces
// tool-group and file-path restrictions, and tracks parent/child links.
// One mutex covers both the task table and every individual task's
// mutable fields, since create_task's child-bookkeeping must see a
// consistent view of the parent across concurrent callers.
type Orchestrator struct {
	mu      sync.Mutex
	tasks   map[string]*Task
	modes   *modes.Registry
	catalog Catalog
	now     func() time.Time
}

// NewOrchestrator builds an Orchestrator backed by the given mode
// registry and tool catalog.
func NewOrchestrator(registry *modes.Registry, catalog Catalog) *Orchestrator {
	return &Orchestrator{
		tasks:   make(map[string]*Task),
		modes:   registry,
		catalog: catalog,
		now:     time.Now,
	}
}

// CreateTask creates a new active task under modeSlug. If parentTaskID
// is non-empty, the parent must exist and be active; the new task is
// linked as its child.
func (o *Orchestrator) CreateTask(modeSlug, initialMessage, parentTaskID string) (*Task, error) {
	if _, ok := o.modes.Get(modeSlug); !ok {
		return nil, fmt.Errorf("%w: %q", ErrModeNotFound, modeSlug)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	var parent *Task
	if parentTaskID != "" {
		p, ok := o.tasks[parentTaskID]
		if !ok {
			return nil, fmt.Errorf("%w: parent %q", ErrTaskNotFound, parentTaskID)
		}
		if p.State != StateActive {
			return nil, fmt.Errorf("%w: parent task %q is not active", ErrConflict, parentTaskID)
		}
		parent = p
	}

	now := o.now()
	t := newTask(uuid.NewString(), modeSlug, parentTaskID, now)
	if initialMessage != "" {
		t.appendMessage(RoleUser, initialMessage, now)
	}

	o.tasks[t.TaskID] = t
	if parent != nil {
		parent.ChildTaskIDs = append(parent.ChildTaskIDs, t.TaskID)
	}

	return t, nil
}

// SwitchMode changes an active task's mode. The operation is a pure
// state change; no tool is invoked.
func (o *Orchestrator) SwitchMode(t *Task, newSlug, reason string) error {
	if _, ok := o.modes.Get(newSlug); !ok {
		return fmt.Errorf("%w: %q", ErrModeNotFound, newSlug)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if t.State != StateActive {
		return fmt.Errorf("%w: task %q is not active", ErrConflict, t.TaskID)
	}

	record := map[string]any{
		"from": t.ModeSlug,
		"to":   newSlug,
		"at":   o.now(),
	}
	if reason != "" {
		record["reason"] = reason
	}
	t.ModeSlug = newSlug

	history, _ := t.Metadata["mode_switches"].([]map[string]any)
	t.Metadata["mode_switches"] = append(history, record)

	return nil
}

// ValidateToolUse implements the 5-step ordered check from the spec:
// active task, always-available bypass, group membership, edit-class
// file regex, then allow.
func (o *Orchestrator) ValidateToolUse(t *Task, toolName, filePath string) (allowed bool, reason string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if t.State != StateActive {
		return false, "task is not active"
	}

	info, known := o.catalog.Lookup(toolName)
	if !known {
		return false, fmt.Sprintf("tool %q is not recognized", toolName)
	}
	if info.AlwaysAvailable {
		return true, ""
	}

	mode, ok := o.modes.Get(t.ModeSlug)
	if !ok {
		return false, fmt.Sprintf("mode %q is no longer loaded", t.ModeSlug)
	}

	if !o.modes.IsGroupEnabled(mode, info.Group) {
		return false, fmt.Sprintf("tool group %s is not enabled for mode %s", info.Group, mode.Slug)
	}

	if info.EditClass {
		if re, hasRegex := o.modes.GroupFileRegex(mode, info.Group); hasRegex {
			if filePath == "" {
				return false, "file_path required"
			}
			if !re.MatchString(filePath) {
				return false, fmt.Sprintf("file %s does not match mode %s's pattern %s", filePath, mode.Slug, re.String())
			}
		}
	}

	return true, ""
}

// CompleteTask terminates a task with the given status.
func (o *Orchestrator) CompleteTask(t *Task, status State, result any) error {
	if status != StateCompleted && status != StateFailed && status != StateCancelled {
		return fmt.Errorf("invalid terminal status %q", status)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if t.State.IsTerminal() {
		return fmt.Errorf("%w: task %q is already %s", ErrConflict, t.TaskID, t.State)
	}

	t.State = status
	t.CompletedAt = o.now()
	if result != nil {
		t.Metadata["result"] = result
	}
	return nil
}

// Get returns a task by id, for lookups that need a raw id rather than
// a session-resolved pointer (e.g. debugging, child enumeration).
func (o *Orchestrator) Get(taskID string) (*Task, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	t, ok := o.tasks[taskID]
	return t, ok
}
