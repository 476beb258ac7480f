package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lvillar/reportcanvas"
)

func newTestServer() (*Server, *reportcanvas.Session) {
	session := reportcanvas.New(
		reportcanvas.WithFrameInterval(time.Millisecond),
		reportcanvas.WithCaptureScale(0.5),
	)
	s := NewServerWithIO(nil, nil, nil)
	RegisterSessionTools(s, session)
	RegisterSessionResources(s, session)
	return s, session
}

func sendRequest(t *testing.T, s *Server, method string, id int, params any) jsonrpcResponse {
	t.Helper()

	req := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  method,
	}
	if params != nil {
		req["params"] = params
	}

	reqBytes, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshaling request: %v", err)
	}
	reqBytes = append(reqBytes, '\n')

	var output bytes.Buffer
	s.input = bytes.NewReader(reqBytes)
	s.output = &output

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var resp jsonrpcResponse
	if err := json.Unmarshal(output.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshaling response %q: %v", output.String(), err)
	}
	return resp
}

// callTool invokes a tool and returns the text of its first content block.
func callTool(t *testing.T, s *Server, name string, args map[string]any) (string, bool) {
	t.Helper()
	resp := sendRequest(t, s, "tools/call", 1, map[string]any{
		"name":      name,
		"arguments": args,
	})
	if resp.Error != nil {
		t.Fatalf("%s: unexpected error: %v", name, resp.Error.Message)
	}
	b, _ := json.Marshal(resp.Result)
	var res ToolResult
	if err := json.Unmarshal(b, &res); err != nil {
		t.Fatalf("%s: decoding result: %v", name, err)
	}
	if len(res.Content) == 0 {
		t.Fatalf("%s: empty result", name)
	}
	return res.Content[0].Text, res.IsError
}

func addObject(t *testing.T, s *Server, name string, args map[string]any) string {
	t.Helper()
	out, isErr := callTool(t, s, name, args)
	if isErr {
		t.Fatalf("%s: %s", name, out)
	}
	var v struct{ ID string }
	if err := json.Unmarshal([]byte(out), &v); err != nil || v.ID == "" {
		t.Fatalf("%s: no id in %q", name, out)
	}
	return v.ID
}

func loadScores(t *testing.T, s *Server) {
	t.Helper()
	out, isErr := callTool(t, s, "load_dataset", map[string]any{
		"columns": []string{"Name", "Score", "Avg"},
		"rows":    []any{[]any{"Alice", 8, 5}, []any{"Bob", 3, 6}},
	})
	if isErr {
		t.Fatalf("load_dataset: %s", out)
	}
	if !strings.Contains(out, `"records": 2`) {
		t.Fatalf("unexpected summary: %s", out)
	}
}

func TestServerInitialize(t *testing.T) {
	s, _ := newTestServer()

	resp := sendRequest(t, s, "initialize", 1, map[string]any{
		"protocolVersion": "2024-11-05",
		"capabilities":    map[string]any{},
		"clientInfo":      map[string]any{"name": "test", "version": "1.0"},
	})

	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error.Message)
	}

	result, ok := resp.Result.(map[string]any)
	if !ok {
		t.Fatal("result is not a map")
	}
	if result["protocolVersion"] != "2024-11-05" {
		t.Fatalf("unexpected protocol version: %v", result["protocolVersion"])
	}
	serverInfo, ok := result["serverInfo"].(map[string]any)
	if !ok {
		t.Fatal("missing serverInfo")
	}
	if serverInfo["name"] != ServerName {
		t.Fatalf("unexpected server name: %v", serverInfo["name"])
	}
}

func TestServerToolsList(t *testing.T) {
	s, _ := newTestServer()

	resp := sendRequest(t, s, "tools/list", 2, nil)
	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error.Message)
	}

	result, ok := resp.Result.(map[string]any)
	if !ok {
		t.Fatal("result is not a map")
	}
	tools, ok := result["tools"].([]any)
	if !ok {
		t.Fatal("tools is not an array")
	}

	var names []string
	for _, tool := range tools {
		if tm, ok := tool.(map[string]any); ok {
			names = append(names, tm["name"].(string))
		}
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Fatalf("tools not sorted: %v", names)
		}
	}

	have := make(map[string]bool)
	for _, n := range names {
		have[n] = true
	}
	expected := []string{
		"load_spreadsheet", "load_dataset", "set_paper", "set_evaluation_items",
		"add_text", "add_mapped_text", "add_shape", "add_chart", "add_image", "add_barcode",
		"update_object", "remove_object", "select_object", "show_record", "get_scene", "export_pdf",
	}
	for _, name := range expected {
		if !have[name] {
			t.Errorf("expected tool %q not found", name)
		}
	}
}

func TestServerResourcesList(t *testing.T) {
	s, _ := newTestServer()

	resp := sendRequest(t, s, "resources/list", 3, nil)
	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error.Message)
	}

	result := resp.Result.(map[string]any)
	resources, ok := result["resources"].([]any)
	if !ok {
		t.Fatal("resources is not an array")
	}
	if len(resources) != 3 {
		t.Fatalf("expected 3 resources, got %d", len(resources))
	}
}

func TestServerPing(t *testing.T) {
	s := NewServerWithIO(nil, nil, nil)

	resp := sendRequest(t, s, "ping", 4, nil)
	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error.Message)
	}
}

func TestServerUnknownMethod(t *testing.T) {
	s := NewServerWithIO(nil, nil, nil)

	resp := sendRequest(t, s, "nonexistent/method", 5, nil)
	if resp.Error == nil {
		t.Fatal("expected error for unknown method")
	}
	if resp.Error.Code != codeMethodNotFound {
		t.Fatalf("expected error code %d, got %d", codeMethodNotFound, resp.Error.Code)
	}
}

func TestServerUnknownTool(t *testing.T) {
	s, _ := newTestServer()

	resp := sendRequest(t, s, "tools/call", 6, map[string]any{
		"name":      "nonexistent_tool",
		"arguments": map[string]any{},
	})
	if resp.Error == nil {
		t.Fatal("expected error for unknown tool")
	}
}

func TestServerSceneFollowsRecord(t *testing.T) {
	s, _ := newTestServer()
	loadScores(t, s)
	addObject(t, s, "add_mapped_text", map[string]any{"column": "Name"})

	scene, _ := callTool(t, s, "get_scene", nil)
	if !strings.Contains(scene, `"Alice"`) {
		t.Fatalf("record 0 scene: %s", scene)
	}

	out, _ := callTool(t, s, "show_record", map[string]any{"step": "next"})
	if !strings.Contains(out, `"record": 1`) {
		t.Fatalf("show_record: %s", out)
	}
	scene, _ = callTool(t, s, "get_scene", nil)
	if !strings.Contains(scene, `"Bob"`) {
		t.Fatalf("record 1 scene: %s", scene)
	}

	resp := sendRequest(t, s, "resources/read", 7, map[string]any{"uri": "canvas://scene"})
	if resp.Error != nil {
		t.Fatalf("resources/read: %v", resp.Error.Message)
	}
	b, _ := json.Marshal(resp.Result)
	if !strings.Contains(string(b), "Bob") {
		t.Fatalf("scene resource: %s", b)
	}
}

func TestServerUpdateObject(t *testing.T) {
	s, session := newTestServer()
	id := addObject(t, s, "add_text", map[string]any{"text": "Title"})

	if out, isErr := callTool(t, s, "update_object", map[string]any{"id": id, "field": "fontSize", "value": 24}); isErr {
		t.Fatalf("update_object: %s", out)
	}
	for _, tool := range []string{"update_object", "remove_object"} {
		out, isErr := callTool(t, s, tool, map[string]any{"id": "missing", "field": "x", "value": 1})
		if isErr || !strings.Contains(out, "nothing changed") {
			t.Fatalf("%s on unknown id: %q, isError=%v", tool, out, isErr)
		}
	}
	if out, isErr := callTool(t, s, "update_object", map[string]any{"id": id, "field": "width", "value": 10}); !isErr {
		t.Fatalf("inapplicable field accepted: %s", out)
	}

	objs := session.Objects()
	if len(objs) != 1 {
		t.Fatalf("objects = %d", len(objs))
	}
	if _, isErr := callTool(t, s, "remove_object", map[string]any{"id": id}); isErr {
		t.Fatal("remove_object failed")
	}
	if len(session.Objects()) != 0 {
		t.Fatal("object not removed")
	}
}

func TestServerRadarNeedsThreeItems(t *testing.T) {
	s, _ := newTestServer()
	loadScores(t, s)
	if out, isErr := callTool(t, s, "set_evaluation_items", map[string]any{
		"items": []any{map[string]any{"label": "Score", "scoreCol": "Score", "avgCol": "Avg"}},
	}); isErr {
		t.Fatalf("set_evaluation_items: %s", out)
	}
	if _, isErr := callTool(t, s, "add_chart", map[string]any{"kind": "radar"}); !isErr {
		t.Fatal("radar chart with one item accepted")
	}
	addObject(t, s, "add_chart", map[string]any{"kind": "bar"})
}

func TestServerExportPDF(t *testing.T) {
	s, _ := newTestServer()

	if out, isErr := callTool(t, s, "export_pdf", nil); !isErr {
		t.Fatalf("export without records succeeded: %s", out)
	}

	loadScores(t, s)
	addObject(t, s, "add_mapped_text", map[string]any{"column": "Name"})

	path := filepath.Join(t.TempDir(), "out.pdf")
	out, isErr := callTool(t, s, "export_pdf", map[string]any{"outputPath": path})
	if isErr {
		t.Fatalf("export_pdf: %s", out)
	}
	if !strings.Contains(out, "2 pages") {
		t.Fatalf("unexpected result: %s", out)
	}
}

func TestServerMultipleRequests(t *testing.T) {
	requests := []string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"1.0"}}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`,
		`{"jsonrpc":"2.0","id":3,"method":"resources/list"}`,
		`{"jsonrpc":"2.0","id":4,"method":"ping"}`,
	}

	input := strings.Join(requests, "\n") + "\n"
	var output bytes.Buffer

	s := NewServerWithIO(strings.NewReader(input), &output, nil)
	RegisterSessionTools(s, reportcanvas.New())
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(output.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 responses, got %d: %s", len(lines), output.String())
	}
	for i, line := range lines {
		var resp jsonrpcResponse
		if err := json.Unmarshal([]byte(line), &resp); err != nil {
			t.Fatalf("response %d: unmarshal error: %v\nline: %s", i, err, line)
		}
		if resp.Error != nil {
			t.Errorf("response %d: unexpected error: %s", i, resp.Error.Message)
		}
	}
}

func TestToolAddTool(t *testing.T) {
	s := NewServerWithIO(nil, nil, nil)

	s.AddTool(Tool{
		Name:        "custom_tool",
		Description: "A custom test tool",
		InputSchema: schema(props{}),
		Handler: func(_ context.Context, args map[string]any) (ToolResult, error) {
			return text("custom result"), nil
		},
	})

	out, isErr := callTool(t, s, "custom_tool", map[string]any{})
	if isErr || out != "custom result" {
		t.Fatalf("unexpected result: %q", out)
	}
}
