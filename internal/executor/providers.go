package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// NewProvider builds a ModelProvider for the given normalized provider name
// and API key. Grounded on backend/pkg/executor/builtin/llm.go's
// getOrCreateProvider: the pack carries no official Gemini or Anthropic Go
// SDK, so those two talk raw HTTP JSON the way the teacher's own
// Gemini/Anthropic provider files do; OpenAI uses the pack's
// github.com/sashabaranov/go-openai client directly.
func NewProvider(provider, apiKey string) ModelProvider {
	switch provider {
	case "openai":
		return &openAIProvider{client: openai.NewClient(apiKey)}
	case "anthropic":
		return &anthropicProvider{apiKey: apiKey, httpClient: &http.Client{Timeout: 60 * time.Second}}
	default:
		return &geminiProvider{apiKey: apiKey, httpClient: &http.Client{Timeout: 60 * time.Second}}
	}
}

// --- OpenAI ---

type openAIProvider struct {
	client *openai.Client
}

func (p *openAIProvider) Generate(ctx context.Context, req ModelRequest) (ModelResponse, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	for _, m := range req.Messages {
		messages = append(messages, toOpenAIMessage(m))
	}

	tools := make([]openai.Tool, 0, len(req.Tools))
	for _, t := range req.Tools {
		tools = append(tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    req.Model,
		Messages: messages,
		Tools:    tools,
	})
	if err != nil {
		return ModelResponse{}, fmt.Errorf("openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		return ModelResponse{}, fmt.Errorf("openai: empty response")
	}
	choice := resp.Choices[0]

	calls := make([]ToolCall, 0, len(choice.Message.ToolCalls))
	for _, tc := range choice.Message.ToolCalls {
		calls = append(calls, ToolCall{ID: tc.ID, Name: tc.Function.Name, Arguments: tc.Function.Arguments})
	}

	return ModelResponse{
		Text:         choice.Message.Content,
		ToolCalls:    calls,
		FinishReason: string(choice.FinishReason),
	}, nil
}

func toOpenAIMessage(m Message) openai.ChatCompletionMessage {
	role := m.Role
	if role == "tool" {
		return openai.ChatCompletionMessage{Role: openai.ChatMessageRoleTool, Content: m.Content, ToolCallID: m.ToolCallID}
	}
	msg := openai.ChatCompletionMessage{Role: role, Content: m.Content}
	for _, tc := range m.ToolCalls {
		msg.ToolCalls = append(msg.ToolCalls, openai.ToolCall{
			ID:   tc.ID,
			Type: openai.ToolTypeFunction,
			Function: openai.FunctionCall{
				Name:      tc.Name,
				Arguments: tc.Arguments,
			},
		})
	}
	return msg
}

// --- Gemini ---

type geminiProvider struct {
	apiKey     string
	httpClient *http.Client
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	Tools            []geminiTool    `json:"tools,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text             string              `json:"text,omitempty"`
	FunctionCall     *geminiFunctionCall `json:"functionCall,omitempty"`
	FunctionResponse *geminiFunctionResp `json:"functionResponse,omitempty"`
}

type geminiFunctionCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

type geminiFunctionResp struct {
	Name     string         `json:"name"`
	Response map[string]any `json:"response"`
}

type geminiTool struct {
	FunctionDeclarations []geminiFunctionDecl `json:"functionDeclarations"`
}

type geminiFunctionDecl struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
}

func (p *geminiProvider) Generate(ctx context.Context, req ModelRequest) (ModelResponse, error) {
	body := geminiRequest{}
	if req.System != "" {
		body.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.System}}}
	}
	for _, m := range req.Messages {
		body.Contents = append(body.Contents, geminiContent{Role: geminiRole(m.Role), Parts: []geminiPart{{Text: m.Content}}})
	}
	if len(req.Tools) > 0 {
		decls := make([]geminiFunctionDecl, 0, len(req.Tools))
		for _, t := range req.Tools {
			decls = append(decls, geminiFunctionDecl{Name: t.Name, Description: t.Description, Parameters: t.Parameters})
		}
		body.Tools = []geminiTool{{FunctionDeclarations: decls}}
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return ModelResponse{}, err
	}

	url := fmt.Sprintf("https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent?key=%s", req.Model, p.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return ModelResponse{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return ModelResponse{}, fmt.Errorf("gemini: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return ModelResponse{}, err
	}
	if resp.StatusCode >= 300 {
		return ModelResponse{}, fmt.Errorf("gemini: status %d: %s", resp.StatusCode, string(raw))
	}

	var decoded geminiResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return ModelResponse{}, fmt.Errorf("gemini: decode response: %w", err)
	}
	if len(decoded.Candidates) == 0 {
		return ModelResponse{}, fmt.Errorf("gemini: empty response")
	}

	result := ModelResponse{FinishReason: decoded.Candidates[0].FinishReason}
	for i, part := range decoded.Candidates[0].Content.Parts {
		if part.Text != "" {
			result.Text += part.Text
		}
		if part.FunctionCall != nil {
			args, _ := json.Marshal(part.FunctionCall.Args)
			result.ToolCalls = append(result.ToolCalls, ToolCall{
				ID:        fmt.Sprintf("%s-%d", part.FunctionCall.Name, i),
				Name:      part.FunctionCall.Name,
				Arguments: string(args),
			})
		}
	}
	return result, nil
}

func geminiRole(role string) string {
	if role == "assistant" {
		return "model"
	}
	if role == "tool" {
		return "function"
	}
	return "user"
}

// --- Anthropic ---

type anthropicProvider struct {
	apiKey     string
	httpClient *http.Client
}

type anthropicRequest struct {
	Model     string              `json:"model"`
	System    string              `json:"system,omitempty"`
	Messages  []anthropicMessage  `json:"messages"`
	Tools     []anthropicTool     `json:"tools,omitempty"`
	MaxTokens int                 `json:"max_tokens"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicTool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

type anthropicResponse struct {
	StopReason string `json:"stop_reason"`
	Content    []struct {
		Type  string         `json:"type"`
		Text  string         `json:"text"`
		ID    string         `json:"id"`
		Name  string         `json:"name"`
		Input map[string]any `json:"input"`
	} `json:"content"`
}

func (p *anthropicProvider) Generate(ctx context.Context, req ModelRequest) (ModelResponse, error) {
	body := anthropicRequest{Model: req.Model, System: req.System, MaxTokens: 4096}
	for _, m := range req.Messages {
		role := m.Role
		if role == "tool" {
			role = "user"
		}
		body.Messages = append(body.Messages, anthropicMessage{Role: role, Content: m.Content})
	}
	for _, t := range req.Tools {
		body.Tools = append(body.Tools, anthropicTool{Name: t.Name, Description: t.Description, InputSchema: t.Parameters})
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return ModelResponse{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://api.anthropic.com/v1/messages", bytes.NewReader(encoded))
	if err != nil {
		return ModelResponse{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return ModelResponse{}, fmt.Errorf("anthropic: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return ModelResponse{}, err
	}
	if resp.StatusCode >= 300 {
		return ModelResponse{}, fmt.Errorf("anthropic: status %d: %s", resp.StatusCode, string(raw))
	}

	var decoded anthropicResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return ModelResponse{}, fmt.Errorf("anthropic: decode response: %w", err)
	}

	result := ModelResponse{FinishReason: decoded.StopReason}
	for _, block := range decoded.Content {
		switch block.Type {
		case "text":
			result.Text += block.Text
		case "tool_use":
			args, _ := json.Marshal(block.Input)
			result.ToolCalls = append(result.ToolCalls, ToolCall{ID: block.ID, Name: block.Name, Arguments: string(args)})
		}
	}
	return result, nil
}
