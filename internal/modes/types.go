// Package modes implements the mode registry: loading named operational
// profiles from built-in, global, and project sources and answering
// queries about what a mode permits.
package modes

import (
	"fmt"
	"regexp"
)

// Source identifies where a Mode definition came from.
type Source string

const (
	SourceBuiltin Source = "builtin"
	SourceGlobal  Source = "global"
	SourceProject Source = "project"
)

// Group names a category of tools a mode may or may not enable.
type Group string

const (
	GroupRead    Group = "read"
	GroupEdit    Group = "edit"
	GroupBrowser Group = "browser"
	GroupCommand Group = "command"
	GroupMCP     Group = "mcp"
	GroupModes   Group = "modes"
)

var validGroups = map[Group]bool{
	GroupRead: true, GroupEdit: true, GroupBrowser: true,
	GroupCommand: true, GroupMCP: true, GroupModes: true,
}

var slugPattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

// GroupEntry is one element of a Mode's groups list. A bare group has
// only Group set; an edit-class group may carry a file path regex.
type GroupEntry struct {
	Group       Group  `yaml:"group" json:"group" koanf:"group"`
	FileRegex   string `yaml:"file_regex,omitempty" json:"file_regex,omitempty" koanf:"file_regex"`
	Description string `yaml:"description,omitempty" json:"description,omitempty" koanf:"description"`
}

// Mode is an immutable-after-load operational profile.
type Mode struct {
	Slug               string       `yaml:"slug" json:"slug" koanf:"slug"`
	Name               string       `yaml:"name" json:"name" koanf:"name"`
	Source             Source       `yaml:"-" json:"source"`
	Description        string       `yaml:"description,omitempty" json:"description,omitempty" koanf:"description"`
	WhenToUse          string       `yaml:"when_to_use,omitempty" json:"when_to_use,omitempty" koanf:"when_to_use"`
	RoleDefinition     string       `yaml:"role_definition,omitempty" json:"role_definition,omitempty" koanf:"role_definition"`
	CustomInstructions string       `yaml:"custom_instructions,omitempty" json:"custom_instructions,omitempty" koanf:"custom_instructions"`
	Groups             []GroupEntry `yaml:"groups" json:"groups" koanf:"groups"`

	regexCache map[Group]*regexp.Regexp
}

// Validate checks the mode's own invariants independent of the registry
// it will be loaded into.
func (m *Mode) Validate() error {
	if m.Slug == "" {
		return fmt.Errorf("mode: slug cannot be empty")
	}
	if !slugPattern.MatchString(m.Slug) {
		return fmt.Errorf("mode %q: slug must match [a-z0-9_-]+", m.Slug)
	}
	if m.Name == "" {
		return fmt.Errorf("mode %q: name cannot be empty", m.Slug)
	}
	if len(m.Groups) == 0 {
		return fmt.Errorf("mode %q: must enable at least one group", m.Slug)
	}

	seen := make(map[Group]bool, len(m.Groups))
	for _, g := range m.Groups {
		if !validGroups[g.Group] {
			return fmt.Errorf("mode %q: unknown group %q", m.Slug, g.Group)
		}
		if seen[g.Group] {
			return fmt.Errorf("mode %q: group %q listed twice", m.Slug, g.Group)
		}
		seen[g.Group] = true
		if g.FileRegex != "" {
			if _, err := regexp.Compile(g.FileRegex); err != nil {
				return fmt.Errorf("mode %q: invalid file_regex for group %q: %w", m.Slug, g.Group, err)
			}
		}
	}
	return nil
}

// compileRegexes compiles and caches each group's file regex. The
// registry calls it on its own copy of a mode before publishing that
// mode into a layer, so no separate synchronization is needed here.
func (m *Mode) compileRegexes() error {
	m.regexCache = make(map[Group]*regexp.Regexp, len(m.Groups))
	for _, g := range m.Groups {
		if g.FileRegex == "" {
			continue
		}
		re, err := regexp.Compile(g.FileRegex)
		if err != nil {
			return fmt.Errorf("mode %q: invalid file_regex for group %q: %w", m.Slug, g.Group, err)
		}
		m.regexCache[g.Group] = re
	}
	return nil
}

// HasGroup reports whether the mode enables the given group at all.
func (m *Mode) HasGroup(g Group) bool {
	for _, entry := range m.Groups {
		if entry.Group == g {
			return true
		}
	}
	return false
}

// FileRegex returns the compiled file regex for a group, if any.
func (m *Mode) FileRegex(g Group) (*regexp.Regexp, bool) {
	re, ok := m.regexCache[g]
	return re, ok
}
