package executor

import (
	"context"

	"github.com/smilemakc/workflow-engine/internal/credentials"
	"github.com/smilemakc/workflow-engine/internal/domain"
	"github.com/smilemakc/workflow-engine/internal/status"
	"github.com/smilemakc/workflow-engine/internal/template"
)

// LLMExecutor implements the single-shot GEMINI/ANTHROPIC/OPENAI node
// kinds: one prompt in, {aiResponse: string} out. Grounded on
// backend/pkg/executor/builtin/llm.go's Execute/parseConfig (the
// non-tool-calling branch; the tool-calling branch is generalized
// separately for AI_AGENT in internal/executor/agent).
type LLMExecutor struct {
	Base
	provider    string
	credentials *credentials.Store

	// newProvider builds the ModelProvider for a resolved api key. Defaulted
	// to NewProvider; tests substitute a fake so the single-shot generation
	// can be exercised deterministically without a live credential.
	newProvider func(provider, apiKey string) ModelProvider
}

// NewLLM builds an executor for one of GEMINI, ANTHROPIC, OPENAI, keyed to
// the given normalized provider name.
func NewLLM(kind domain.NodeKind, provider string, store *credentials.Store) Executor {
	return &LLMExecutor{Base: Base{Kind: kind}, provider: provider, credentials: store, newProvider: NewProvider}
}

func (e *LLMExecutor) Execute(ctx context.Context, ec Context) (domain.RunContext, error) {
	ec.Publish.Publish(ec.NodeID, status.StatusLoading)

	varName := e.OptString(ec.NodeConfig, "variableName", "")
	if varName == "" || !domain.ValidVariableName(varName) {
		ec.Publish.Publish(ec.NodeID, status.StatusError)
		return nil, domain.NewConfigurationError(ec.NodeID, string(e.Kind)+": variableName must match [A-Za-z_$][A-Za-z0-9_$]*")
	}

	resolved := template.ResolveConfig(ec.RunContext, ec.NodeConfig)
	prompt, err := e.RequireString(ec.NodeID, resolved, "prompt")
	if err != nil {
		ec.Publish.Publish(ec.NodeID, status.StatusError)
		return nil, err
	}
	model := e.OptString(resolved, "model", DefaultModel(e.provider))
	system := e.OptString(resolved, "system", "")

	orgID, _ := ec.NodeConfig["__organizationId"].(string)
	credentialID, _ := ec.NodeConfig["__credentialId"].(string)
	apiKey, err := e.credentials.GetDecrypted(ctx, orgID, credentialID)
	if err != nil {
		ec.Publish.Publish(ec.NodeID, status.StatusError)
		return nil, err
	}

	result, err := ec.Step.Run(ctx, "llm-generate:"+ec.NodeID, func(ctx context.Context) (any, error) {
		provider := e.newProvider(e.provider, apiKey)
		return provider.Generate(ctx, ModelRequest{
			Model:    model,
			System:   system,
			Messages: []Message{{Role: "user", Content: prompt}},
		})
	})
	if err != nil {
		ec.Publish.Publish(ec.NodeID, status.StatusError)
		return nil, domain.NewExternalIOError(string(e.Kind), err, false)
	}

	response := result.(ModelResponse)
	out := ec.RunContext.With(varName, map[string]any{"aiResponse": response.Text})
	ec.Publish.Publish(ec.NodeID, status.StatusSuccess)
	return out, nil
}
