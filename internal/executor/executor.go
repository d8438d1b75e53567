// Package executor implements the Node Executor Contract (spec §4.3): a
// fixed-signature function per node kind that reads the run context, does
// its work inside durable steps, emits status, and returns a new context.
package executor

import (
	"context"
	"fmt"

	"github.com/smilemakc/workflow-engine/internal/domain"
	"github.com/smilemakc/workflow-engine/internal/durablestep"
	"github.com/smilemakc/workflow-engine/internal/status"
)

// Context is the argument bundle passed to every executor (spec §4.3):
// {nodeConfig, nodeId, context, step, publish}.
type Context struct {
	NodeConfig map[string]any
	NodeID     string
	RunContext domain.RunContext
	Step       *durablestep.Step
	Publish    status.Publisher
}

// Executor is the Node Executor Contract: execute({...}) -> newContext.
// Implementations MUST NOT mutate ctx.RunContext; they return a new
// mapping that is a superset of the input.
type Executor interface {
	Execute(ctx context.Context, ec Context) (domain.RunContext, error)
}

// Func adapts a plain function to the Executor interface, mirroring the
// teacher's executor.ExecutorFunc adapter (backend/pkg/executor/executor.go).
type Func func(ctx context.Context, ec Context) (domain.RunContext, error)

func (f Func) Execute(ctx context.Context, ec Context) (domain.RunContext, error) {
	return f(ctx, ec)
}

// Base offers config-reading helpers shared by every built-in executor,
// grounded on backend/pkg/executor/executor.go's BaseExecutor.
type Base struct {
	Kind domain.NodeKind
}

// RequireString returns config[key] as a non-empty string or a
// non-retriable domain.ConfigurationError naming the node kind and field.
func (b Base) RequireString(nodeID string, config map[string]any, key string) (string, error) {
	v, ok := config[key]
	if !ok {
		return "", domain.NewConfigurationError(nodeID, fmt.Sprintf("%s: missing required field %q", b.Kind, key))
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", domain.NewConfigurationError(nodeID, fmt.Sprintf("%s: field %q must be a non-empty string", b.Kind, key))
	}
	return s, nil
}

// OptString returns config[key] as a string, or def if absent/wrong type.
func (b Base) OptString(config map[string]any, key, def string) string {
	if v, ok := config[key].(string); ok && v != "" {
		return v
	}
	return def
}

// OptInt returns config[key] as an int, tolerating the float64 that a JSON
// round-trip produces, or def if absent/wrong type.
func (b Base) OptInt(config map[string]any, key string, def int) int {
	switch v := config[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return def
	}
}

// OptBool returns config[key] as a bool, or def if absent/wrong type.
func (b Base) OptBool(config map[string]any, key string, def bool) bool {
	if v, ok := config[key].(bool); ok {
		return v
	}
	return def
}

// OptMap returns config[key] as a map, or an empty map if absent/wrong type.
func (b Base) OptMap(config map[string]any, key string) map[string]any {
	if v, ok := config[key].(map[string]any); ok {
		return v
	}
	return map[string]any{}
}
