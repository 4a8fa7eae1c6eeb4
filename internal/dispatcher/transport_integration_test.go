package dispatcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/fyrsmithlabs/modegate/internal/logging"
	"github.com/fyrsmithlabs/modegate/internal/metrics"
	"github.com/fyrsmithlabs/modegate/internal/modes"
	"github.com/fyrsmithlabs/modegate/internal/rpc"
	"github.com/fyrsmithlabs/modegate/internal/session"
	"github.com/fyrsmithlabs/modegate/internal/task"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// driveOverTransport pipes each request through the real C1 framed
// transport (encode -> rpc.Decode -> Dispatch -> rpc.Writer), rather
// than calling dispatcher methods directly, so the scenario exercises
// the same line-oriented codec a real MCP client would see.
func driveOverTransport(t *testing.T, d *Dispatcher, method string, id int, params any) map[string]any {
	t.Helper()

	paramBytes, err := json.Marshal(params)
	require.NoError(t, err)

	line, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  method,
		"params":  json.RawMessage(paramBytes),
	})
	require.NoError(t, err)

	decoded := rpc.Decode(line)
	require.Nil(t, decoded.Err)

	result, errObj := d.Dispatch(context.Background(), decoded.Request)

	var out bytes.Buffer
	writer := rpc.NewWriter(&out)
	if errObj != nil {
		require.NoError(t, writer.WriteResponse(rpc.NewError(decoded.Request.ID, errObj.Code, errObj.Message, errObj.Data)))
	} else {
		require.NoError(t, writer.WriteResponse(rpc.NewResponse(decoded.Request.ID, result)))
	}

	var resp map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	return resp
}

func callToolOverTransport(t *testing.T, d *Dispatcher, id int, name string, args any) map[string]any {
	t.Helper()
	return driveOverTransport(t, d, "tools/call", id, map[string]any{"name": name, "arguments": args})
}

func TestEndToEnd_S1ThroughS4OverFramedTransport(t *testing.T) {
	registry := modes.NewRegistry()
	orchestrator := task.NewOrchestrator(registry, task.DefaultCatalog())
	sessions := session.NewManager(time.Hour)
	d := New(registry, orchestrator, sessions, logging.NewTestLogger().Logger, metrics.New(zap.NewNop()))

	// S1: list resources, then read a mode's config.
	listResp := driveOverTransport(t, d, "resources/list", 1, map[string]any{})
	require.Contains(t, fmt.Sprint(listResp["result"]), "mode://code")

	readResp := driveOverTransport(t, d, "resources/read", 2, map[string]any{"uri": "mode://code/config"})
	result := readResp["result"].(map[string]any)
	contents := result["contents"].([]any)
	require.Len(t, contents, 1)
	entry := contents[0].(map[string]any)
	var cfg map[string]any
	require.NoError(t, json.Unmarshal([]byte(entry["text"].(string)), &cfg))
	require.Equal(t, "code", cfg["slug"])

	// S2: create a task, then inspect it.
	createResp := callToolOverTransport(t, d, 3, "create_task", map[string]any{"mode_slug": "code"})
	createMeta := createResp["result"].(map[string]any)["metadata"].(map[string]any)
	sessionID := createMeta["session_id"].(string)
	require.NotEmpty(t, sessionID)

	infoResp := callToolOverTransport(t, d, 4, "get_task_info", map[string]any{"session_id": sessionID})
	infoContent := infoResp["result"].(map[string]any)["content"].([]any)[0].(map[string]any)
	require.Contains(t, infoContent["text"], "State: active")

	// S3 + S4: switch into architect, confirm a restriction, switch back,
	// confirm the restriction lifts.
	_ = callToolOverTransport(t, d, 5, "switch_mode", map[string]any{"session_id": sessionID, "new_mode_slug": "architect"})

	deniedResp := callToolOverTransport(t, d, 6, "validate_tool_use", map[string]any{
		"session_id": sessionID, "tool_name": "write_to_file", "file_path": "main.py",
	})
	deniedMeta := deniedResp["result"].(map[string]any)["metadata"].(map[string]any)
	require.Equal(t, false, deniedMeta["allowed"])

	_ = callToolOverTransport(t, d, 7, "switch_mode", map[string]any{"session_id": sessionID, "new_mode_slug": "code"})

	allowedResp := callToolOverTransport(t, d, 8, "validate_tool_use", map[string]any{
		"session_id": sessionID, "tool_name": "write_to_file", "file_path": "main.py",
	})
	allowedMeta := allowedResp["result"].(map[string]any)["metadata"].(map[string]any)
	require.Equal(t, true, allowedMeta["allowed"])
}

func TestEndToEnd_MalformedLineOverFramedTransport(t *testing.T) {
	decoded := rpc.Decode([]byte("not json"))
	require.NotNil(t, decoded.Err)

	var parseErr *rpc.ParseError
	require.ErrorAs(t, decoded.Err, &parseErr)
}
