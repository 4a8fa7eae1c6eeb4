package dispatcher

import (
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/modegate/internal/modes"
)

// renderSystemPrompt is the system-prompt renderer named as an external
// collaborator in the spec's interface contracts: given a mode, it
// returns the text for mode://{slug}/system_prompt. Treated as a pure
// function of the mode's fields.
func renderSystemPrompt(m modes.Mode) string {
	var b strings.Builder

	if m.RoleDefinition != "" {
		b.WriteString(m.RoleDefinition)
		b.WriteString("\n\n")
	}

	fmt.Fprintf(&b, "You are operating in %s mode.\n", m.Name)

	groupNames := make([]string, 0, len(m.Groups))
	for _, g := range m.Groups {
		groupNames = append(groupNames, string(g.Group))
	}
	if len(groupNames) > 0 {
		fmt.Fprintf(&b, "Enabled tool groups: %s.\n", strings.Join(groupNames, ", "))
	}

	if m.WhenToUse != "" {
		fmt.Fprintf(&b, "\nWhen to use this mode: %s\n", m.WhenToUse)
	}
	if m.CustomInstructions != "" {
		fmt.Fprintf(&b, "\n%s\n", m.CustomInstructions)
	}

	return b.String()
}
