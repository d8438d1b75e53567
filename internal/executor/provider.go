package executor

import "context"

// Message is one turn in a chat-completion request.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCallID string     `json:"toolCallId,omitempty"`
	ToolCalls  []ToolCall `json:"toolCalls,omitempty"`
}

// ToolDef describes one tool the model may call.
type ToolDef struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ToolCall is one invocation the model asked for.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// ModelRequest is provider-agnostic input to a single chat-completion call.
type ModelRequest struct {
	Model    string
	System   string
	Messages []Message
	Tools    []ToolDef
}

// ModelResponse is a provider-agnostic chat-completion result.
type ModelResponse struct {
	Text         string
	ToolCalls    []ToolCall
	FinishReason string
}

// AgentTool is a named tool the Agent Executor exposes to a generation
// loop: its Def is advertised to the model, and Execute runs the tool's
// side effect given the model's chosen arguments (raw JSON object text).
// Grounded on backend/pkg/executor/builtin/tool_calling_registry.go's
// ExecuteFunction dispatch, collapsed from the teacher's four function
// types (builtin/sub-workflow/custom-code/OpenAPI) down to the spec's
// fixed tool-sub-node catalogue (§4.5).
type AgentTool struct {
	Def     ToolDef
	Execute func(ctx context.Context, argumentsJSON string) (string, error)
}

// ModelProvider is the minimal surface the LLM and Agent executors need
// from a chat-model backend. Grounded on
// backend/pkg/executor/builtin/llm.go's LLMProvider interface, generalized
// across single-shot and tool-calling use.
type ModelProvider interface {
	Generate(ctx context.Context, req ModelRequest) (ModelResponse, error)
}

// DefaultModel returns the fixed default model for a recognised provider
// name, falling back to gemini's default for anything unrecognised (spec
// §4.5 model resolution, Glossary "Default model per provider").
func DefaultModel(provider string) string {
	switch provider {
	case "openai":
		return "gpt-4o"
	case "anthropic":
		return "claude-sonnet-4-5"
	default:
		return "gemini-2.0-flash"
	}
}

// NormalizeProvider maps an arbitrary provider string onto the closed set
// {gemini, openai, anthropic}, falling back to gemini for anything else.
func NormalizeProvider(provider string) string {
	switch provider {
	case "openai", "anthropic", "gemini":
		return provider
	default:
		return "gemini"
	}
}
