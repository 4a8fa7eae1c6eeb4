package rpc

import (
	"errors"
	"testing"
)

func TestDecode_ValidRequest(t *testing.T) {
	result := Decode([]byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list","params":{}}`))
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if result.Request.Method != "tools/list" {
		t.Errorf("expected method tools/list, got %s", result.Request.Method)
	}
	if result.Request.IsNotification() {
		t.Error("expected request with id to not be a notification")
	}
}

func TestDecode_Notification(t *testing.T) {
	result := Decode([]byte(`{"jsonrpc":"2.0","method":"notifications/initialized"}`))
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if !result.Request.IsNotification() {
		t.Error("expected request without id to be a notification")
	}
}

func TestDecode_MalformedJSON(t *testing.T) {
	result := Decode([]byte(`{"jsonrpc": "2.0", "method":`))
	if result.Err == nil {
		t.Fatal("expected parse error")
	}
	var parseErr *ParseError
	if !errors.As(result.Err, &parseErr) {
		t.Errorf("expected *ParseError, got %T", result.Err)
	}
}

func TestDecode_MissingJSONRPC(t *testing.T) {
	result := Decode([]byte(`{"method":"tools/list","id":1}`))
	var shapeErr *ShapeError
	if !errors.As(result.Err, &shapeErr) {
		t.Fatalf("expected *ShapeError, got %v (%T)", result.Err, result.Err)
	}
}

func TestDecode_WrongJSONRPCVersion(t *testing.T) {
	result := Decode([]byte(`{"jsonrpc":"1.0","method":"tools/list","id":1}`))
	var shapeErr *ShapeError
	if !errors.As(result.Err, &shapeErr) {
		t.Fatalf("expected *ShapeError, got %v (%T)", result.Err, result.Err)
	}
}

func TestDecode_MissingMethod(t *testing.T) {
	result := Decode([]byte(`{"jsonrpc":"2.0","id":1}`))
	var shapeErr *ShapeError
	if !errors.As(result.Err, &shapeErr) {
		t.Fatalf("expected *ShapeError, got %v (%T)", result.Err, result.Err)
	}
}

func TestDecode_EmptyMethod(t *testing.T) {
	result := Decode([]byte(`{"jsonrpc":"2.0","id":1,"method":""}`))
	var shapeErr *ShapeError
	if !errors.As(result.Err, &shapeErr) {
		t.Fatalf("expected *ShapeError, got %v (%T)", result.Err, result.Err)
	}
}

func TestDecode_InvalidIDType(t *testing.T) {
	result := Decode([]byte(`{"jsonrpc":"2.0","id":{"nested":true},"method":"tools/list"}`))
	var shapeErr *ShapeError
	if !errors.As(result.Err, &shapeErr) {
		t.Fatalf("expected *ShapeError, got %v (%T)", result.Err, result.Err)
	}
}

func TestDecode_StringID(t *testing.T) {
	result := Decode([]byte(`{"jsonrpc":"2.0","id":"req-1","method":"tools/list"}`))
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if result.Request.ID != "req-1" {
		t.Errorf("expected id req-1, got %v", result.Request.ID)
	}
}

func TestDecode_RoundTrip(t *testing.T) {
	original := []byte(`{"jsonrpc":"2.0","id":42,"method":"tools/call","params":{"name":"create_task"}}`)
	result := Decode(original)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	resp := NewResponse(result.Request.ID, map[string]string{"ok": "true"})
	if resp.ID != result.Request.ID {
		t.Errorf("expected response id to echo request id %v, got %v", result.Request.ID, resp.ID)
	}
}
