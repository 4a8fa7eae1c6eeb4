package modes

// Builtins returns the minimum built-in mode set from the spec, each
// display name emoji-prefixed to match the literal text production
// clients expect to see (e.g. get_task_info's "Mode: 💻 Code (code)").
func Builtins() []Mode {
	return []Mode{
		{
			Slug:   "code",
			Name:   "💻 Code",
			Source: SourceBuiltin,
			Groups: []GroupEntry{
				{Group: GroupRead}, {Group: GroupEdit}, {Group: GroupBrowser},
				{Group: GroupCommand}, {Group: GroupMCP}, {Group: GroupModes},
			},
		},
		{
			Slug:   "architect",
			Name:   "🏗️ Architect",
			Source: SourceBuiltin,
			Groups: []GroupEntry{
				{Group: GroupRead}, {Group: GroupBrowser}, {Group: GroupMCP}, {Group: GroupModes},
				{Group: GroupEdit, FileRegex: `\.md$`, Description: "Markdown files only"},
			},
		},
		{
			Slug:   "ask",
			Name:   "❓ Ask",
			Source: SourceBuiltin,
			Groups: []GroupEntry{
				{Group: GroupRead}, {Group: GroupBrowser}, {Group: GroupMCP}, {Group: GroupModes},
			},
		},
		{
			Slug:   "debug",
			Name:   "🪲 Debug",
			Source: SourceBuiltin,
			Groups: []GroupEntry{
				{Group: GroupRead}, {Group: GroupEdit}, {Group: GroupBrowser},
				{Group: GroupCommand}, {Group: GroupMCP}, {Group: GroupModes},
			},
		},
		{
			Slug:   "orchestrator",
			Name:   "🪃 Orchestrator",
			Source: SourceBuiltin,
			Groups: []GroupEntry{
				{Group: GroupModes},
			},
		},
	}
}
