// Package agent implements the AI_AGENT node (spec §4.5): at run time it
// discovers its locally connected chat-model, memory and tool sub-nodes,
// resolves a model and credential, assembles a tool set, and runs a
// bounded tool-calling generation loop, merging the result and any
// trimmed conversation history back into the run context.
package agent

import (
	"context"
	"net/http"

	"github.com/smilemakc/workflow-engine/internal/credentials"
	"github.com/smilemakc/workflow-engine/internal/domain"
	"github.com/smilemakc/workflow-engine/internal/executor"
	"github.com/smilemakc/workflow-engine/internal/executor/tools"
	"github.com/smilemakc/workflow-engine/internal/status"
	"github.com/smilemakc/workflow-engine/internal/template"
)

const (
	defaultMaxIterations = 10
	minMaxIterations     = 1
	maxMaxIterations     = 25
)

// WorkflowRepository is the read surface the agent needs to inspect its
// own graph. A subset of repository.WorkflowRepository, named locally to
// keep this package free of an import cycle back onto the repository
// package's broader surface.
type WorkflowRepository interface {
	GetWorkflow(ctx context.Context, orgID, workflowID string) (*domain.Workflow, error)
}

// Executor implements the AI_AGENT node kind. Grounded on
// backend/pkg/executor/builtin/llm.go's Execute, generalized from a single
// configured model/tool set to one discovered from the graph at run time.
type Executor struct {
	executor.Base
	workflows   WorkflowRepository
	credentials *credentials.Store
	httpClient  *http.Client
	products    tools.ProductRepository
	orders      tools.OrderRepository

	// newProvider builds the ModelProvider for a resolved {provider, apiKey}
	// pair. Defaulted to executor.NewProvider; tests substitute a fake so
	// the generation loop can be exercised deterministically without a
	// live LLM credential, mirroring how backend/pkg/executor/builtin/
	// llm_test.go injects a stub LLMProvider in the teacher.
	newProvider func(provider, apiKey string) executor.ModelProvider
}

// New builds an AI_AGENT Executor. products/orders may be nil if the
// deployment has no inventory/order tooling wired; tool sub-nodes of those
// kinds then contribute no tools.
func New(workflows WorkflowRepository, store *credentials.Store, httpClient *http.Client, products tools.ProductRepository, orders tools.OrderRepository) *Executor {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Executor{
		Base:        executor.Base{Kind: domain.KindAIAgent},
		workflows:   workflows,
		credentials: store,
		httpClient:  httpClient,
		products:    products,
		orders:      orders,
		newProvider: executor.NewProvider,
	}
}

func (e *Executor) Execute(ctx context.Context, ec executor.Context) (domain.RunContext, error) {
	varName := e.OptString(ec.NodeConfig, "variableName", "")
	if varName == "" || !domain.ValidVariableName(varName) {
		ec.Publish.Publish(ec.NodeID, status.StatusLoading)
		ec.Publish.Publish(ec.NodeID, status.StatusError)
		return nil, domain.NewConfigurationError(ec.NodeID, "AI_AGENT: variableName must match [A-Za-z_$][A-Za-z0-9_$]*")
	}

	orgID, _ := ec.NodeConfig["__organizationId"].(string)
	workflowID, _ := ec.NodeConfig["__workflowId"].(string)

	w, err := e.workflows.GetWorkflow(ctx, orgID, workflowID)
	if err != nil {
		ec.Publish.Publish(ec.NodeID, status.StatusLoading)
		ec.Publish.Publish(ec.NodeID, status.StatusError)
		return nil, domain.NewConfigurationError(ec.NodeID, "AI_AGENT: could not load owning workflow: "+err.Error())
	}
	sub := discover(w, ec.NodeID)

	publishAll := func(s status.Status) {
		ec.Publish.Publish(ec.NodeID, s)
		for _, id := range sub.ids() {
			ec.Publish.Publish(id, s)
		}
	}
	publishAll(status.StatusLoading)

	if sub.chatModel == nil {
		publishAll(status.StatusError)
		return nil, &domain.AgentMissingModelError{NodeID: ec.NodeID, Reason: "no chat-model sub-node connected"}
	}
	provider, _ := sub.chatModel.Data["provider"].(string)
	provider = executor.NormalizeProvider(provider)
	model, _ := sub.chatModel.Data["model"].(string)
	if model == "" {
		model = executor.DefaultModel(provider)
	}
	if sub.chatModel.CredentialID == "" {
		publishAll(status.StatusError)
		return nil, &domain.AgentMissingModelError{NodeID: ec.NodeID, Reason: "chat-model sub-node has no credentialId"}
	}

	apiKey, err := e.credentials.GetDecrypted(ctx, orgID, sub.chatModel.CredentialID)
	if err != nil {
		publishAll(status.StatusError)
		return nil, &domain.AgentMissingKeyError{NodeID: ec.NodeID, Cause: err}
	}

	resolved := template.ResolveConfig(ec.RunContext, ec.NodeConfig)
	prompt, err := e.RequireString(ec.NodeID, resolved, "userPrompt")
	if err != nil {
		publishAll(status.StatusError)
		return nil, err
	}
	system := e.OptString(resolved, "system", "")

	maxIterations := e.OptInt(ec.NodeConfig, "maxIterations", defaultMaxIterations)
	if maxIterations < minMaxIterations {
		maxIterations = minMaxIterations
	}
	if maxIterations > maxMaxIterations {
		maxIterations = maxMaxIterations
	}

	memCfg := resolveMemoryConfig(sub.memory)
	history := priorTurns(ec.RunContext, memCfg)

	toolSet := assembleTools(sub.tools, tools.Deps{
		HTTPClient: e.httpClient,
		Products:   e.products,
		Orders:     e.orders,
		OrgID:      orgID,
	})

	result, err := ec.Step.Run(ctx, "agent-generate:"+ec.NodeID, func(ctx context.Context) (any, error) {
		modelProvider := e.newProvider(provider, apiKey)
		return runLoop(ctx, modelProvider, model, system, prompt, history, toolSet, maxIterations)
	})
	if err != nil {
		publishAll(status.StatusError)
		return nil, domain.NewExternalIOError("AI_AGENT", err, false)
	}

	gen := result.(generationResult)
	out := ec.RunContext.With(varName, map[string]any{
		"agentResponse": gen.finalText,
		"toolCallCount": gen.toolCallCount,
	})
	if sub.memory != nil {
		trimmed := appendAndTrim(history, prompt, gen.finalText, memCfg)
		out = out.With(memCfg.memoryKey, domain.TurnsToAny(trimmed))
	}

	publishAll(status.StatusSuccess)
	return out, nil
}
