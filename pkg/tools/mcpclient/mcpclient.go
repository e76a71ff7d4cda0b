// Package mcpclient connects to MCP servers and exposes their tools as
// toolbox.Tools. The chat agent's firecrawl tools arrive this way, served by
// the firecrawl-mcp server spawned over stdio.
package mcpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/avelez/sleuth/pkg/tools/toolbox"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Client holds a live session with one MCP server.
type Client struct {
	client  *mcp.Client
	session *mcp.ClientSession
}

// New spawns command as an MCP server process and connects to it over stdio.
// env entries ("KEY=VALUE") are appended to the current process environment,
// so secrets like FIRECRAWL_API_KEY reach the server.
func New(ctx context.Context, command string, args, env []string) (*Client, error) {
	cmd := exec.Command(command, args...) //nolint:gosec // command comes from user config by design
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}

	return newFromTransport(ctx, &mcp.CommandTransport{Command: cmd})
}

// newFromTransport connects over the given transport. Split out so tests can
// use mcp.NewInMemoryTransports.
func newFromTransport(ctx context.Context, transport mcp.Transport) (*Client, error) {
	client := mcp.NewClient(&mcp.Implementation{
		Name:    "sleuth",
		Version: "0.1.0",
	}, nil)

	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return nil, fmt.Errorf("mcpclient: connect: %w", err)
	}

	return &Client{client: client, session: session}, nil
}

// ListTools fetches the server's tools as toolbox.Tools. Each handler
// closure calls back through CallTool on this client.
func (c *Client) ListTools(ctx context.Context) ([]toolbox.Tool, error) {
	result, err := c.session.ListTools(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("mcpclient: list tools: %w", err)
	}

	tools := make([]toolbox.Tool, 0, len(result.Tools))
	for _, st := range result.Tools {
		t, err := fromSDKTool(st, c)
		if err != nil {
			return nil, fmt.Errorf("mcpclient: convert tool %q: %w", st.Name, err)
		}
		tools = append(tools, t)
	}

	return tools, nil
}

// CallTool invokes a named tool on the server with raw JSON arguments.
func (c *Client) CallTool(ctx context.Context, name string, arguments json.RawMessage) (string, error) {
	var args map[string]any
	if len(arguments) > 0 {
		if err := json.Unmarshal(arguments, &args); err != nil {
			return "", fmt.Errorf("mcpclient: unmarshal arguments: %w", err)
		}
	}

	result, err := c.session.CallTool(ctx, &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		return "", fmt.Errorf("mcpclient: call tool: %w", err)
	}

	text := extractText(result)

	if result.IsError {
		return "", fmt.Errorf("mcpclient: tool error: %s", text)
	}

	return text, nil
}

// Close terminates the session. The SDK shuts down the server subprocess,
// escalating through SIGTERM/SIGKILL if it does not exit.
func (c *Client) Close() error {
	return c.session.Close()
}

func fromSDKTool(st *mcp.Tool, c *Client) (toolbox.Tool, error) {
	schemaBytes, err := json.Marshal(st.InputSchema)
	if err != nil {
		return toolbox.Tool{}, fmt.Errorf("marshal input schema: %w", err)
	}

	name := st.Name

	return toolbox.Tool{
		Name:        st.Name,
		Description: st.Description,
		InputSchema: json.RawMessage(schemaBytes),
		Handler: func(ctx context.Context, input json.RawMessage) (string, error) {
			return c.CallTool(ctx, name, input)
		},
	}, nil
}

// extractText joins all TextContent items of a result with newlines.
func extractText(result *mcp.CallToolResult) string {
	var texts []string
	for _, item := range result.Content {
		if tc, ok := item.(*mcp.TextContent); ok {
			texts = append(texts, tc.Text)
		}
	}
	return strings.Join(texts, "\n")
}
