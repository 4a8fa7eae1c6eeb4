package dispatcher

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/modegate/internal/rpc"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

// toolSchemas declares each tool's input schema as a Go literal rather
// than a hand-maintained .json file, since this spec's seven tools are
// fixed and small — a compiled-from-struct schema keeps the source of
// truth in one Go file instead of a file pair per tool.
var toolSchemas = map[string]map[string]any{
	"list_modes": {
		"type": "object",
		"properties": map[string]any{
			"source": map[string]any{"type": "string", "enum": []string{"builtin", "global", "project", "all"}},
		},
	},
	"get_mode_info": {
		"type": "object",
		"properties": map[string]any{
			"mode_slug":             map[string]any{"type": "string"},
			"include_system_prompt": map[string]any{"type": "boolean"},
		},
		"required": []string{"mode_slug"},
	},
	"create_task": {
		"type": "object",
		"properties": map[string]any{
			"mode_slug":         map[string]any{"type": "string"},
			"initial_message":   map[string]any{"type": "string"},
			"parent_session_id": map[string]any{"type": "string"},
		},
		"required": []string{"mode_slug"},
	},
	"switch_mode": {
		"type": "object",
		"properties": map[string]any{
			"session_id":    map[string]any{"type": "string"},
			"new_mode_slug": map[string]any{"type": "string"},
			"reason":        map[string]any{"type": "string"},
		},
		"required": []string{"session_id", "new_mode_slug"},
	},
	"get_task_info": {
		"type": "object",
		"properties": map[string]any{
			"session_id":        map[string]any{"type": "string"},
			"include_messages":  map[string]any{"type": "boolean"},
			"include_hierarchy": map[string]any{"type": "boolean"},
		},
		"required": []string{"session_id"},
	},
	"validate_tool_use": {
		"type": "object",
		"properties": map[string]any{
			"session_id": map[string]any{"type": "string"},
			"tool_name":  map[string]any{"type": "string"},
			"file_path":  map[string]any{"type": "string"},
		},
		"required": []string{"session_id", "tool_name"},
	},
	"complete_task": {
		"type": "object",
		"properties": map[string]any{
			"session_id": map[string]any{"type": "string"},
			"status":     map[string]any{"type": "string", "enum": []string{"completed", "failed", "cancelled"}},
			"result":     map[string]any{},
		},
		"required": []string{"session_id", "status"},
	},
}

// schemaSet holds every tool's compiled schema, built once at startup.
type schemaSet struct {
	compiled map[string]*jsonschema.Schema
}

// mustCompileSchemas compiles every entry in toolSchemas. It panics on
// failure since a malformed schema literal is a programmer error, not a
// runtime condition — the same posture NewRegistry takes toward an
// invalid built-in mode.
func mustCompileSchemas() *schemaSet {
	compiler := jsonschema.NewCompiler()
	for name, schema := range toolSchemas {
		data, err := json.Marshal(schema)
		if err != nil {
			panic(fmt.Sprintf("dispatcher: marshal schema %q: %v", name, err))
		}
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
		if err != nil {
			panic(fmt.Sprintf("dispatcher: decode schema %q: %v", name, err))
		}
		url := schemaURL(name)
		if err := compiler.AddResource(url, doc); err != nil {
			panic(fmt.Sprintf("dispatcher: register schema %q: %v", name, err))
		}
	}

	set := &schemaSet{compiled: make(map[string]*jsonschema.Schema, len(toolSchemas))}
	for name := range toolSchemas {
		s, err := compiler.Compile(schemaURL(name))
		if err != nil {
			panic(fmt.Sprintf("dispatcher: compile schema %q: %v", name, err))
		}
		set.compiled[name] = s
	}
	return set
}

func schemaURL(name string) string {
	return fmt.Sprintf("mem://modegate/tools/%s.schema.json", name)
}

// validate checks raw arguments against tool's compiled schema.
func (s *schemaSet) validate(tool string, arguments json.RawMessage) error {
	schema, ok := s.compiled[tool]
	if !ok {
		return fmt.Errorf("no schema registered for tool %q", tool)
	}
	if len(arguments) == 0 {
		arguments = []byte("{}")
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(arguments))
	if err != nil {
		return fmt.Errorf("arguments are not valid JSON: %w", err)
	}
	return schema.Validate(inst)
}

// schemaErrorCode distinguishes a missing/mistyped parameter
// (-32602 INVALID_PARAMS) from an enum/format failure on a
// well-typed, present value (-32004 VALIDATION_ERROR), per the error
// taxonomy. The split is done on the error text rather than by walking
// the error's internal cause tree. The v6 validator's default text does
// not name the enum keyword: it reports an enum or const failure as
// "value must be ...", and a pattern failure as "... does not match
// pattern ...", so those phrases select -32004.
func schemaErrorCode(err error) int {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "value must be"), strings.Contains(msg, "enum"), strings.Contains(msg, "pattern"), strings.Contains(msg, "format"):
		return rpc.CodeValidationError
	default:
		return rpc.CodeInvalidParams
	}
}
