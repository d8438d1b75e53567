// Package tools builds the Agent Executor's tool catalogue: one
// executor.AgentTool per connected tool sub-node kind (spec §4.5). Each
// builder here is grounded on the equivalent main-flow executor's request-
// building idiom, adapted to the narrower tool-call argument shape an LLM
// supplies.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/smilemakc/workflow-engine/internal/executor"
)

const httpResponseTruncateLimit = 5000

// HTTPRequest builds the HTTP_REQUEST tool: {url, method, body?}. Grounded
// on backend/pkg/executor/builtin/http.go's request-building idiom, reused
// from internal/executor.HTTPExecutor's own doRequest shape but trimmed to
// a tool-call return value (a truncated text summary, not a structured
// context write).
func HTTPRequest(client *http.Client) executor.AgentTool {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return executor.AgentTool{
		Def: executor.ToolDef{
			Name:        "http_request",
			Description: "Makes an HTTP request to an external URL and returns the response body.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"url":    map[string]any{"type": "string", "description": "Absolute URL to request."},
					"method": map[string]any{"type": "string", "enum": []string{"GET", "POST", "PUT", "PATCH", "DELETE"}},
					"body":   map[string]any{"type": "string", "description": "Optional request body, sent as-is."},
				},
				"required": []string{"url", "method"},
			},
		},
		Execute: func(ctx context.Context, argumentsJSON string) (string, error) {
			var args struct {
				URL    string `json:"url"`
				Method string `json:"method"`
				Body   string `json:"body"`
			}
			if err := json.Unmarshal([]byte(argumentsJSON), &args); err != nil {
				return "Error: invalid tool arguments", nil
			}
			method := strings.ToUpper(strings.TrimSpace(args.Method))
			if method == "" {
				method = http.MethodGet
			}
			if !validMethod(method) {
				return fmt.Sprintf("Error: unsupported method %q", args.Method), nil
			}
			if args.URL == "" {
				return "Error: url is required", nil
			}

			var body io.Reader
			if args.Body != "" {
				body = strings.NewReader(args.Body)
			}
			req, err := http.NewRequestWithContext(ctx, method, args.URL, body)
			if err != nil {
				return fmt.Sprintf("Error: %v", err), nil
			}
			if args.Body != "" {
				req.Header.Set("Content-Type", "application/json")
			}

			resp, err := client.Do(req)
			if err != nil {
				return fmt.Sprintf("Error: request failed: %v", err), nil
			}
			defer resp.Body.Close()

			raw, err := io.ReadAll(io.LimitReader(resp.Body, httpResponseTruncateLimit*4))
			if err != nil {
				return fmt.Sprintf("Error: reading response: %v", err), nil
			}
			text := truncate(string(raw), httpResponseTruncateLimit)
			return fmt.Sprintf("HTTP %d: %s", resp.StatusCode, text), nil
		},
	}
}

func validMethod(m string) bool {
	switch m {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
