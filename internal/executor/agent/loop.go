package agent

import (
	"context"
	"fmt"

	"github.com/smilemakc/workflow-engine/internal/domain"
	"github.com/smilemakc/workflow-engine/internal/executor"
	"github.com/smilemakc/workflow-engine/internal/executor/tools"
)

// assembleTools builds one executor.AgentTool per connected tool sub-node
// (spec §4.5 Tool assembly), keyed by name so a later duplicate name
// overwrites an earlier one rather than producing an ambiguous tool list.
func assembleTools(nodes []*domain.Node, deps tools.Deps) []executor.AgentTool {
	byName := make(map[string]executor.AgentTool)
	order := make([]string, 0, len(nodes))
	for _, n := range nodes {
		for _, t := range tools.Build(n.Kind, n.Data, deps) {
			if _, exists := byName[t.Def.Name]; !exists {
				order = append(order, t.Def.Name)
			}
			byName[t.Def.Name] = t
		}
	}
	out := make([]executor.AgentTool, 0, len(order))
	for _, name := range order {
		out = append(out, byName[name])
	}
	return out
}

// generationResult is what one bounded tool-calling run produces.
type generationResult struct {
	finalText     string
	toolCallCount int
}

// runLoop drives the bounded tool-calling generation loop (spec §4.5
// Generation loop). Grounded on backend/pkg/executor/builtin/llm.go's
// executeWithToolCalling: iterate until the model emits a terminal text
// response (FinishReason == "stop" or no tool calls) or maxIterations is
// reached, dispatching every requested tool call and feeding its result
// back as a tool-role message before the next call.
func runLoop(ctx context.Context, provider executor.ModelProvider, model, system, prompt string, history []domain.ConversationTurn, toolSet []executor.AgentTool, maxIterations int) (generationResult, error) {
	defs := make([]executor.ToolDef, 0, len(toolSet))
	byName := make(map[string]executor.AgentTool, len(toolSet))
	for _, t := range toolSet {
		defs = append(defs, t.Def)
		byName[t.Def.Name] = t
	}

	messages := make([]executor.Message, 0, len(history)+1)
	for _, turn := range history {
		messages = append(messages, executor.Message{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, executor.Message{Role: "user", Content: prompt})

	toolCallCount := 0
	for iteration := 0; iteration < maxIterations; iteration++ {
		resp, err := provider.Generate(ctx, executor.ModelRequest{
			Model:    model,
			System:   system,
			Messages: messages,
			Tools:    defs,
		})
		if err != nil {
			return generationResult{}, err
		}

		messages = append(messages, executor.Message{Role: "assistant", Content: resp.Text, ToolCalls: resp.ToolCalls})

		if resp.FinishReason == "stop" || len(resp.ToolCalls) == 0 {
			return generationResult{finalText: resp.Text, toolCallCount: toolCallCount}, nil
		}

		for _, call := range resp.ToolCalls {
			toolCallCount++
			tool, ok := byName[call.Name]
			var result string
			if !ok {
				result = fmt.Sprintf("Error: unknown tool %q", call.Name)
			} else {
				result, err = tool.Execute(ctx, call.Arguments)
				if err != nil {
					result = fmt.Sprintf("Error: %v", err)
				}
			}
			messages = append(messages, executor.Message{Role: "tool", Content: result, ToolCallID: call.ID})
		}
	}

	return generationResult{finalText: lastAssistantText(messages), toolCallCount: toolCallCount}, nil
}

// lastAssistantText returns the content of the most recent assistant
// message, used when maxIterations is exhausted without a terminal stop.
func lastAssistantText(messages []executor.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "assistant" {
			return messages[i].Content
		}
	}
	return ""
}
