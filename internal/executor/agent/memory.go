package agent

import "github.com/smilemakc/workflow-engine/internal/domain"

const (
	defaultWindowSize = 10
	defaultMemoryKey  = "chatHistory"
)

// memoryConfig is the resolved {windowSize, memoryKey} pair a memory
// sub-node supplies (spec §4.5 Memory resolution), defaulted when no
// memory sub-node is attached so the agent can still run history-free.
type memoryConfig struct {
	windowSize int
	memoryKey  string
}

func resolveMemoryConfig(node *domain.Node) memoryConfig {
	if node == nil {
		return memoryConfig{windowSize: defaultWindowSize, memoryKey: defaultMemoryKey}
	}
	windowSize := defaultWindowSize
	if v, ok := node.Data["windowSize"].(float64); ok && v > 0 {
		windowSize = int(v)
	}
	memoryKey := defaultMemoryKey
	if v, ok := node.Data["memoryKey"].(string); ok && v != "" {
		memoryKey = v
	}
	return memoryConfig{windowSize: windowSize, memoryKey: memoryKey}
}

// priorTurns returns the last windowSize turns stored under memoryKey in
// runCtx, oldest first.
func priorTurns(runCtx domain.RunContext, cfg memoryConfig) []domain.ConversationTurn {
	turns := domain.TurnsFromAny(runCtx[cfg.memoryKey])
	if len(turns) <= cfg.windowSize {
		return turns
	}
	return turns[len(turns)-cfg.windowSize:]
}

// appendAndTrim appends the new user/assistant turn to prior and truncates
// to 2*windowSize turns (spec §4.5: "append ... then truncate to 2 ×
// windowSize turns").
func appendAndTrim(prior []domain.ConversationTurn, userPrompt, assistantResponse string, cfg memoryConfig) []domain.ConversationTurn {
	turns := make([]domain.ConversationTurn, 0, len(prior)+2)
	turns = append(turns, prior...)
	turns = append(turns,
		domain.ConversationTurn{Role: "user", Content: userPrompt},
		domain.ConversationTurn{Role: "assistant", Content: assistantResponse},
	)
	limit := 2 * cfg.windowSize
	if len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	return turns
}
