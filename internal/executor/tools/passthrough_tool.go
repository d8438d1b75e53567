package tools

import (
	"context"

	"github.com/smilemakc/workflow-engine/internal/executor"
)

// Passthrough builds a fallback tool for any sub-node kind spec §4.5 leaves
// unspecified: it simply echoes its arguments back as the tool result, so an
// agent wired to an unrecognised sub-node still gets a well-formed tool
// response instead of a missing-tool error.
func Passthrough(name, description string) executor.AgentTool {
	if description == "" {
		description = "Echoes its input back unchanged."
	}
	return executor.AgentTool{
		Def: executor.ToolDef{
			Name:        name,
			Description: description,
			Parameters: map[string]any{
				"type":       "object",
				"properties": map[string]any{"input": map[string]any{"type": "string"}},
			},
		},
		Execute: func(_ context.Context, argumentsJSON string) (string, error) {
			if argumentsJSON == "" {
				return "{}", nil
			}
			return argumentsJSON, nil
		},
	}
}
