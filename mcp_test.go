package docload

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/pagekit/docload/raster"
)

var testMCPImpl = &mcp.Implementation{Name: "docload-test", Version: "0.1.0"}

func mcpSession(t *testing.T) *mcp.ClientSession {
	t.Helper()
	loader := New(Config{})
	renderer := raster.New(raster.Config{})
	srv := mcp.NewServer(testMCPImpl, nil)
	RegisterMCP(srv, loader, renderer)

	serverT, clientT := mcp.NewInMemoryTransports()
	ctx := context.Background()
	go func() { _ = srv.Run(ctx, serverT) }()

	client := mcp.NewClient(testMCPImpl, nil)
	session, err := client.Connect(ctx, clientT, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { session.Close() })
	return session
}

func mcpCallTool(t *testing.T, session *mcp.ClientSession, name string, args any) string {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	if err := result.GetError(); err != nil {
		t.Fatalf("CallTool(%s) tool error: %v", name, err)
	}
	tc, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("CallTool(%s): expected TextContent", name)
	}
	return tc.Text
}

func TestMCP_ToolSchemas(t *testing.T) {
	// WHAT: argument schemas carry clean descriptions and mark path required.
	// WHY: the jsonschema struct tag is a bare description; appending
	// flags like ",required" ends up verbatim in the advertised schema.
	session := mcpSession(t)

	tools, err := session.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	byName := map[string]*mcp.Tool{}
	for _, tool := range tools.Tools {
		byName[tool.Name] = tool
	}
	for _, name := range []string{"docload_text", "docload_page_image", "docload_images", "docload_detect"} {
		tool, ok := byName[name]
		if !ok {
			t.Errorf("tool %s not registered", name)
			continue
		}
		raw, err := json.Marshal(tool.InputSchema)
		if err != nil {
			t.Fatalf("%s: marshal schema: %v", name, err)
		}
		var schema struct {
			Properties map[string]struct {
				Description string `json:"description"`
			} `json:"properties"`
			Required []string `json:"required"`
		}
		if err := json.Unmarshal(raw, &schema); err != nil {
			t.Fatalf("%s: unmarshal schema: %v", name, err)
		}
		for field, prop := range schema.Properties {
			if strings.Contains(prop.Description, ",required") {
				t.Errorf("%s: %s description leaks tag syntax: %q", name, field, prop.Description)
			}
		}
		found := false
		for _, req := range schema.Required {
			if req == "path" {
				found = true
			}
		}
		if !found {
			t.Errorf("%s: path not listed as required: %v", name, schema.Required)
		}
	}
}

func TestMCP_Formats(t *testing.T) {
	session := mcpSession(t)

	text := mcpCallTool(t, session, "docload_formats", map[string]any{})

	var resp struct {
		Extensions []string          `json:"extensions"`
		MIMETypes  map[string]string `json:"mime_types"`
	}
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Extensions) == 0 {
		t.Error("expected non-empty extensions")
	}
	if resp.MIMETypes["pdf"] == "" {
		t.Error("expected a MIME type for pdf")
	}
}

func TestMCP_DetectAndText(t *testing.T) {
	session := mcpSession(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	os.WriteFile(path, []byte("Hello World\n\nSecond paragraph"), 0644)

	text := mcpCallTool(t, session, "docload_detect", map[string]any{"path": path})
	var det struct {
		Format string `json:"format"`
	}
	json.Unmarshal([]byte(text), &det)
	if det.Format != string(FormatTXT) {
		t.Errorf("Format = %q, want %q", det.Format, FormatTXT)
	}

	text = mcpCallTool(t, session, "docload_text", map[string]any{"path": path})
	var res struct {
		Pages PageTextMap `json:"pages"`
	}
	if err := json.Unmarshal([]byte(text), &res); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(res.Pages) != 1 {
		t.Errorf("got %d pages, want 1: %v", len(res.Pages), res.Pages)
	}
}
