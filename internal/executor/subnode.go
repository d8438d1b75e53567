package executor

import (
	"context"

	"github.com/smilemakc/workflow-engine/internal/domain"
	"github.com/smilemakc/workflow-engine/internal/status"
)

// noOpExecutor handles CHAT_MODEL and MEMORY if a graph ever wires one
// directly into the main flow instead of attaching it as a sub-node (spec
// §4.5: these kinds only carry configuration for the Agent Executor's
// discovery step; they have no independent behaviour of their own).
// Grounded on internal/application/executor/engine.go's NoOpExecutor.
type noOpExecutor struct{}

// NewChatModelNoOp builds the fallback executor for a misrouted CHAT_MODEL
// node.
func NewChatModelNoOp() Executor { return noOpExecutor{} }

// NewMemoryNoOp builds the fallback executor for a misrouted MEMORY node.
func NewMemoryNoOp() Executor { return noOpExecutor{} }

func (noOpExecutor) Execute(_ context.Context, ec Context) (domain.RunContext, error) {
	ec.Publish.Publish(ec.NodeID, status.StatusLoading)
	ec.Publish.Publish(ec.NodeID, status.StatusSuccess)
	return ec.RunContext, nil
}
