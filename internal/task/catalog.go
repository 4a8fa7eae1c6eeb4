// internal/task/catalog.go
package task

import "github.com/fyrsmithlabs/modegate/internal/modes"

// ToolInfo describes how validate_tool_use should treat one internal
// tool: which group it belongs to, whether it consumes a file_path that
// must satisfy the mode's edit regex, and whether mode restrictions are
// bypassed for it entirely.
type ToolInfo struct {
	Group           modes.Group
	EditClass       bool
	AlwaysAvailable bool
}

// Catalog is the fixed tool-name → group table consulted by
// validate_tool_use. It is a static table at startup, supplied by the
// external tool-catalog collaborator in a full build; this implementation
// bundles the conventional roo-style tool names directly.
type Catalog map[string]ToolInfo

// DefaultCatalog returns the built-in tool catalog.
func DefaultCatalog() Catalog {
	return Catalog{
		"read_file":             {Group: modes.GroupRead},
		"list_files":            {Group: modes.GroupRead},
		"search_files":          {Group: modes.GroupRead},
		"list_code_definitions": {Group: modes.GroupRead},
		"write_to_file":         {Group: modes.GroupEdit, EditClass: true},
		"apply_diff":            {Group: modes.GroupEdit, EditClass: true},
		"insert_content":        {Group: modes.GroupEdit, EditClass: true},
		"search_and_replace":    {Group: modes.GroupEdit, EditClass: true},
		"browser_action":        {Group: modes.GroupBrowser},
		"execute_command":       {Group: modes.GroupCommand},
		"use_mcp_tool":          {Group: modes.GroupMCP},
		"access_mcp_resource":   {Group: modes.GroupMCP},
		"switch_mode":           {Group: modes.GroupModes},
		"new_task":              {Group: modes.GroupModes},
		"ask_followup_question": {AlwaysAvailable: true},
		"attempt_completion":    {AlwaysAvailable: true},
	}
}

// Lookup returns the ToolInfo for name, or false if the tool is unknown
// to the catalog.
func (c Catalog) Lookup(name string) (ToolInfo, bool) {
	info, ok := c[name]
	return info, ok
}
