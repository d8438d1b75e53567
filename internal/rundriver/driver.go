// Package rundriver implements the Run Driver (spec §4.2): it walks a
// planned node list strictly sequentially, maintains the evolving run
// context, dispatches to the registered executor per node kind, and wraps
// each executor call in a named durable step so a replayed run skips
// already-succeeded nodes. The driver publishes no status events itself;
// each executor publishes its own node's loading and terminal status
// through the publisher the driver hands it.
package rundriver

import (
	"context"
	"fmt"
	"time"

	"github.com/expr-lang/expr"

	"github.com/smilemakc/workflow-engine/internal/domain"
	"github.com/smilemakc/workflow-engine/internal/durablestep"
	"github.com/smilemakc/workflow-engine/internal/executor"
	"github.com/smilemakc/workflow-engine/internal/planner"
	"github.com/smilemakc/workflow-engine/internal/status"
)

// Driver executes a planned workflow: single-threaded per run, independent
// and safely parallel across runs (spec §5). Grounded on
// internal/application/executor/engine.go's executeSequential/executeNode
// and backend/pkg/engine/dag_executor.go's executeNode, adapted from the
// teacher's default wave-parallel model to the spec's strictly sequential
// one (REDESIGN per spec §5).
type Driver struct {
	registry *executor.Registry
	runtime  durablestep.Runtime
}

// New builds a Driver dispatching through registry and checkpointing
// through runtime.
func New(registry *executor.Registry, runtime durablestep.Runtime) *Driver {
	return &Driver{registry: registry, runtime: runtime}
}

// Run plans w and executes it to completion, returning the final run
// context. runID identifies this specific execution for durable-step
// memoisation and status-channel addressing; it MUST be stable across
// retries of the same run and distinct across independent runs.
func (d *Driver) Run(ctx context.Context, w *domain.Workflow, initial domain.RunContext, runID string, publish status.Publisher) (domain.RunContext, error) {
	plan, err := planner.Plan(w)
	if err != nil {
		return nil, err
	}

	runCtx := initial
	if runCtx == nil {
		runCtx = domain.RunContext{}
	} else {
		runCtx = runCtx.Clone()
	}

	if plan.Len() == 0 {
		return runCtx, nil
	}

	guards := incomingGuards(plan)
	step := durablestep.NewStep(d.runtime, runID)

	for _, node := range plan.Nodes {
		ok, err := shouldExecute(runCtx, w, guards[node.ID])
		if err != nil {
			return nil, domain.NewConfigurationError(node.ID, fmt.Sprintf("condition evaluation failed: %v", err))
		}
		if !ok {
			continue
		}

		ex, err := d.registry.Get(node.Kind)
		if err != nil {
			return nil, &domain.UnknownNodeKindError{NodeID: node.ID, Kind: node.Kind}
		}

		nodeCtx := ctx
		if timeoutMs := nodeTimeoutMs(node); timeoutMs > 0 {
			var cancel context.CancelFunc
			nodeCtx, cancel = context.WithTimeout(ctx, time.Duration(timeoutMs)*time.Millisecond)
			defer cancel()
		}

		input := runCtx
		result, err := step.Run(nodeCtx, "node:"+node.ID, func(stepCtx context.Context) (any, error) {
			return ex.Execute(stepCtx, executor.Context{
				NodeConfig: nodeConfig(w, node),
				NodeID:     node.ID,
				RunContext: input,
				Step:       durablestep.NewStep(d.runtime, runID),
				Publish:    publish,
			})
		})
		if err != nil {
			return nil, err
		}

		switch v := result.(type) {
		case domain.RunContext:
			runCtx = v
		case map[string]any:
			// A runtime that persists step results as JSON (RedisRuntime)
			// hands a replayed node's context back as a plain map.
			runCtx = domain.RunContext(v)
		}
	}

	return runCtx, nil
}

// nodeConfig clones a node's data map and annotates it with the synthetic
// "__organizationId", "__credentialId" and "__workflowId" keys that
// executors needing organization-scoped credential lookup or sub-node
// graph discovery (the Agent Executor) read by convention. The clone
// means a shared in-memory *domain.Workflow is never mutated by a run.
func nodeConfig(w *domain.Workflow, node *domain.Node) map[string]any {
	out := make(map[string]any, len(node.Data)+3)
	for k, v := range node.Data {
		out[k] = v
	}
	out["__organizationId"] = w.OrganizationID
	out["__workflowId"] = w.ID
	out["__credentialId"] = node.CredentialID
	return out
}

// nodeTimeoutMs reads the supplemented per-node timeout override
// (data["timeout_ms"]), grounded on backend/pkg/engine/dag_executor.go's
// GetNodeTimeout. It is advisory: the Durable Step Runtime's own host
// policy remains authoritative over retries (spec §7); this only bounds
// how long the driver waits before abandoning the call.
func nodeTimeoutMs(node *domain.Node) int {
	switch v := node.Data["timeout_ms"].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

// incomingGuards maps each planned node id whose incoming main-flow edges
// (within the induced plan sub-graph only) are all conditional to those
// edges' Condition strings. A node with at least one unconditional incoming
// edge gets no guards, so it always executes.
func incomingGuards(plan *planner.Plan) map[string][]guardEdge {
	out := make(map[string][]guardEdge)
	unconditional := make(map[string]bool)
	for _, e := range plan.Edges() {
		if e.Condition == "" {
			unconditional[e.ToNodeID] = true
			continue
		}
		out[e.ToNodeID] = append(out[e.ToNodeID], guardEdge{fromNodeID: e.FromNodeID, condition: e.Condition})
	}
	for id := range unconditional {
		delete(out, id)
	}
	return out
}

type guardEdge struct {
	fromNodeID string
	condition  string
}

// shouldExecute evaluates a supplemented conditional-edge feature (SPEC_FULL
// §6: "Conditional edges on non-agent nodes"), grounded on
// internal/application/executor/engine.go's shouldExecuteNode: a node with
// no conditional incoming edges always executes; a node whose incoming
// edges are all conditional executes if at least one condition is true.
func shouldExecute(runCtx domain.RunContext, w *domain.Workflow, guards []guardEdge) (bool, error) {
	if len(guards) == 0 {
		return true, nil
	}
	for _, g := range guards {
		fromNode := w.NodeByID(g.fromNodeID)
		var output any
		if fromNode != nil {
			if varName := fromNode.VariableName(); varName != "" {
				output = runCtx[varName]
			}
		}
		env := map[string]any{"output": output, "context": map[string]any(runCtx)}
		program, err := expr.Compile(g.condition, expr.Env(env), expr.AsBool())
		if err != nil {
			return false, fmt.Errorf("compile condition %q: %w", g.condition, err)
		}
		result, err := expr.Run(program, env)
		if err != nil {
			return false, fmt.Errorf("evaluate condition %q: %w", g.condition, err)
		}
		if truthy, ok := result.(bool); ok && truthy {
			return true, nil
		}
	}
	return false, nil
}
