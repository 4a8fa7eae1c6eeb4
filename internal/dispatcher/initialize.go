package dispatcher

import (
	"context"
	"encoding/json"

	"github.com/fyrsmithlabs/modegate/internal/rpc"
)

type initializeParams struct {
	ProtocolVersion string         `json:"protocolVersion"`
	ClientInfo      map[string]any `json:"clientInfo"`
}

// initializeResult matches the MCP initialize response shape: protocol
// version, advertised capabilities, and server identity.
type initializeResult struct {
	ProtocolVersion string         `json:"protocolVersion"`
	Capabilities    map[string]any `json:"capabilities"`
	ServerInfo      map[string]any `json:"serverInfo"`
}

func (d *Dispatcher) handleInitialize(ctx context.Context, params json.RawMessage) (any, *rpc.ErrorObj) {
	var p initializeParams
	_ = json.Unmarshal(params, &p)

	return &initializeResult{
		ProtocolVersion: rpc.ProtocolVersion,
		Capabilities: map[string]any{
			"resources": map[string]any{"listChanged": false},
			"tools":     map[string]any{"listChanged": false},
		},
		ServerInfo: map[string]any{
			"name":    "modegate",
			"version": "0.1.0",
		},
	}, nil
}
