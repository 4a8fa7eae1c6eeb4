package dispatcher

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/modegate/internal/modes"
	"github.com/fyrsmithlabs/modegate/internal/rpc"
)

// resourceDescriptor is one entry in resources/list's result.
type resourceDescriptor struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MimeType    string `json:"mimeType"`
}

// resourceContent is one entry in resources/read's result.
type resourceContent struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType"`
	Text     string `json:"text"`
}

func (d *Dispatcher) handleResourcesList(ctx context.Context) (any, *rpc.ErrorObj) {
	var out []resourceDescriptor
	for _, m := range d.modes.List(modes.FilterAll) {
		out = append(out,
			resourceDescriptor{
				URI:         "mode://" + m.Slug,
				Name:        m.Name,
				Description: m.Description,
				MimeType:    "text/plain",
			},
			resourceDescriptor{
				URI:      "mode://" + m.Slug + "/config",
				Name:     m.Name + " config",
				MimeType: "application/json",
			},
			resourceDescriptor{
				URI:      "mode://" + m.Slug + "/system_prompt",
				Name:     m.Name + " system prompt",
				MimeType: "text/plain",
			},
		)
	}
	return map[string]any{"resources": out}, nil
}

type resourcesReadParams struct {
	URI string `json:"uri"`
}

func (d *Dispatcher) handleResourcesRead(ctx context.Context, params json.RawMessage) (any, *rpc.ErrorObj) {
	var p resourcesReadParams
	if err := json.Unmarshal(params, &p); err != nil || p.URI == "" {
		return nil, &rpc.ErrorObj{Code: rpc.CodeInvalidParams, Message: "uri is required"}
	}

	slug, subresource, err := parseModeURI(p.URI)
	if err != nil {
		return nil, &rpc.ErrorObj{Code: rpc.CodeValidationError, Message: err.Error()}
	}

	mode, ok := d.modes.Get(slug)
	if !ok {
		return nil, &rpc.ErrorObj{
			Code:    rpc.CodeModeNotFound,
			Message: fmt.Sprintf("mode %q not found", slug),
			Data:    map[string]any{"mode_slug": slug},
		}
	}

	var content resourceContent
	switch subresource {
	case "":
		content = resourceContent{
			URI:      p.URI,
			MimeType: "text/plain",
			Text:     fmt.Sprintf("%s (%s) — source: %s", mode.Name, mode.Slug, mode.Source),
		}
	case "config":
		data, err := json.Marshal(modeConfigJSON(mode))
		if err != nil {
			return nil, &rpc.ErrorObj{Code: rpc.CodeInternalError, Message: "failed to encode mode config"}
		}
		content = resourceContent{URI: p.URI, MimeType: "application/json", Text: string(data)}
	case "system_prompt":
		content = resourceContent{URI: p.URI, MimeType: "text/plain", Text: renderSystemPrompt(mode)}
	default:
		return nil, &rpc.ErrorObj{Code: rpc.CodeValidationError, Message: fmt.Sprintf("unknown subresource %q", subresource)}
	}

	return map[string]any{"contents": []resourceContent{content}}, nil
}

// parseModeURI validates the mode://{slug}[/config|/system_prompt]
// grammar and splits it into a slug and an optional subresource.
func parseModeURI(uri string) (slug, subresource string, err error) {
	const scheme = "mode://"
	if !strings.HasPrefix(uri, scheme) {
		return "", "", fmt.Errorf("unsupported URI scheme: %q", uri)
	}
	rest := strings.TrimPrefix(uri, scheme)
	if rest == "" {
		return "", "", fmt.Errorf("missing mode slug in URI: %q", uri)
	}

	parts := strings.SplitN(rest, "/", 2)
	slug = parts[0]
	if len(parts) == 1 {
		return slug, "", nil
	}

	switch parts[1] {
	case "config", "system_prompt":
		return slug, parts[1], nil
	default:
		return "", "", fmt.Errorf("unknown subresource %q", parts[1])
	}
}

// modeConfigJSON is the structured JSON representation served at
// mode://{slug}/config, mirroring the Mode schema in full.
func modeConfigJSON(m modes.Mode) map[string]any {
	groups := make([]any, 0, len(m.Groups))
	for _, g := range m.Groups {
		if g.FileRegex == "" && g.Description == "" {
			groups = append(groups, string(g.Group))
			continue
		}
		entry := map[string]any{"group": string(g.Group)}
		if g.FileRegex != "" {
			entry["file_regex"] = g.FileRegex
		}
		if g.Description != "" {
			entry["description"] = g.Description
		}
		groups = append(groups, entry)
	}

	return map[string]any{
		"slug":                m.Slug,
		"name":                m.Name,
		"source":              string(m.Source),
		"description":         m.Description,
		"when_to_use":         m.WhenToUse,
		"role_definition":     m.RoleDefinition,
		"custom_instructions": m.CustomInstructions,
		"groups":              groups,
	}
}
