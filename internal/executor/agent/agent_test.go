package agent

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smilemakc/workflow-engine/internal/credentials"
	"github.com/smilemakc/workflow-engine/internal/crypto"
	"github.com/smilemakc/workflow-engine/internal/domain"
	"github.com/smilemakc/workflow-engine/internal/durablestep"
	"github.com/smilemakc/workflow-engine/internal/executor"
	"github.com/smilemakc/workflow-engine/internal/executor/tools"
	"github.com/smilemakc/workflow-engine/internal/repository"
	"github.com/smilemakc/workflow-engine/internal/status"
)

// testEncryptionKey is shared by every test in this file so a credential
// sealed with it can always be opened by a Store built on the same key.
var testEncryptionKey = mustStaticKey()

func mustStaticKey() string {
	key, err := crypto.GenerateKeyHex()
	if err != nil {
		panic(err)
	}
	return key
}

func encryptString(t *testing.T, plaintext string) string {
	t.Helper()
	enc, err := crypto.NewEncryptionService(testEncryptionKey, nil)
	require.NoError(t, err)
	out, err := enc.EncryptString(plaintext)
	require.NoError(t, err)
	return out
}

// recordingPublisher captures every status event, for sub-node fan-out
// assertions (spec §4.5 "Sub-node status fan-out").
type recordingPublisher struct {
	events []status.Event
}

func (p *recordingPublisher) Publish(nodeID string, s status.Status) {
	p.events = append(p.events, status.Event{NodeID: nodeID, Status: s})
}

func (p *recordingPublisher) statusesFor(nodeID string) []string {
	out := []string{}
	for _, e := range p.events {
		if e.NodeID == nodeID {
			out = append(out, string(e.Status))
		}
	}
	return out
}

// fakeProvider answers a calculator tool call exactly once, then returns a
// terminal text response folding the tool's result in, mirroring a real
// tool-calling model without any network I/O.
type fakeProvider struct {
	calls int
}

func (p *fakeProvider) Generate(_ context.Context, req executor.ModelRequest) (executor.ModelResponse, error) {
	p.calls++
	if p.calls == 1 {
		for _, tl := range req.Tools {
			if tl.Name == "calculator" {
				return executor.ModelResponse{
					ToolCalls: []executor.ToolCall{{ID: "call1", Name: "calculator", Arguments: `{"expression":"sqrt(144) + 3"}`}},
				}, nil
			}
		}
	}
	lastTool := ""
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == "tool" {
			lastTool = req.Messages[i].Content
			break
		}
	}
	text := "ok"
	if lastTool != "" {
		text = "the answer is " + lastTool
	}
	return executor.ModelResponse{Text: text, FinishReason: "stop"}, nil
}

// countingProvider always returns a terminal text response with no tool
// calls, used to assert exactly-one-call semantics.
type countingProvider struct {
	calls int
}

func (p *countingProvider) Generate(_ context.Context, _ executor.ModelRequest) (executor.ModelResponse, error) {
	p.calls++
	return executor.ModelResponse{Text: "done", FinishReason: "stop"}, nil
}

// echoProvider always answers with a fixed terminal text, no tool calls.
type echoProvider struct{ answer string }

func (p *echoProvider) Generate(_ context.Context, _ executor.ModelRequest) (executor.ModelResponse, error) {
	return executor.ModelResponse{Text: p.answer, FinishReason: "stop"}, nil
}

// orderUpdateProvider issues exactly one update_order_status tool call
// against order 42, then reports back whatever the tool said.
type orderUpdateProvider struct {
	calls int
}

func (p *orderUpdateProvider) Generate(_ context.Context, req executor.ModelRequest) (executor.ModelResponse, error) {
	p.calls++
	if p.calls == 1 {
		return executor.ModelResponse{
			ToolCalls: []executor.ToolCall{{ID: "c1", Name: "update_order_status", Arguments: `{"orderId":"42","newStatus":"shipped"}`}},
		}, nil
	}
	last := ""
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == "tool" {
			last = req.Messages[i].Content
			break
		}
	}
	return executor.ModelResponse{Text: last, FinishReason: "stop"}, nil
}

func newTestExecutor(t *testing.T, repo *repository.Memory, fake executor.ModelProvider) *Executor {
	t.Helper()
	enc, err := crypto.NewEncryptionService(testEncryptionKey, nil)
	require.NoError(t, err)
	store := credentials.New(repo, enc)
	ex := New(repo, store, &http.Client{}, nil, nil)
	ex.newProvider = func(string, string) executor.ModelProvider { return fake }
	return ex
}

// agentWorkflow builds a minimal single-agent workflow with an optional
// chat-model/memory/tool sub-node graph, wired via sub-node edge labels.
func agentWorkflow(agentData map[string]any, chatModel, memory *domain.Node, toolNodes []*domain.Node) *domain.Workflow {
	nodes := []*domain.Node{domain.NewNode("agent1", "w1", domain.KindAIAgent, agentData)}
	conns := []*domain.Connection{}
	if chatModel != nil {
		nodes = append(nodes, chatModel)
		conns = append(conns, &domain.Connection{ID: "c1", FromNodeID: chatModel.ID, ToNodeID: "agent1", ToInput: "chat-model-target"})
	}
	if memory != nil {
		nodes = append(nodes, memory)
		conns = append(conns, &domain.Connection{ID: "c2", FromNodeID: memory.ID, ToNodeID: "agent1", ToInput: "memory-target"})
	}
	for i, tn := range toolNodes {
		nodes = append(nodes, tn)
		conns = append(conns, &domain.Connection{ID: fmt.Sprintf("ct%d", i), FromNodeID: tn.ID, ToNodeID: "agent1", ToInput: "tool-target"})
	}
	return &domain.Workflow{ID: "w1", OrganizationID: "org1", Nodes: nodes, Connections: conns}
}

func nodeConfigFor(w *domain.Workflow, nodeID string) map[string]any {
	n := w.NodeByID(nodeID)
	out := make(map[string]any, len(n.Data)+2)
	for k, v := range n.Data {
		out[k] = v
	}
	out["__organizationId"] = w.OrganizationID
	out["__workflowId"] = w.ID
	return out
}

func execCtx(w *domain.Workflow, nodeID string, runCtx domain.RunContext, runID string, runtime durablestep.Runtime, pub status.Publisher) executor.Context {
	return executor.Context{
		NodeConfig: nodeConfigFor(w, nodeID),
		NodeID:     nodeID,
		RunContext: runCtx,
		Step:       durablestep.NewStep(runtime, runID),
		Publish:    pub,
	}
}

// Seed scenario 4: an agent with a calculator tool resolves "what is
// sqrt(144) + 3?" through one tool call and a terminal answer containing
// "15".
func TestAgent_CalculatorToolLoop(t *testing.T) {
	repo := repository.NewMemory()
	repo.PutCredential(&domain.Credential{ID: "cred1", OrganizationID: "org1", Kind: domain.CredentialKindGemini, EncryptedValue: encryptString(t, "secret-key")})

	chatModel := domain.NewNode("model1", "w1", domain.KindChatModel, map[string]any{"provider": "gemini", "model": "gemini-2.0-flash"})
	chatModel.CredentialID = "cred1"
	calc := domain.NewNode("calc1", "w1", domain.KindCalculator, map[string]any{})

	w := agentWorkflow(map[string]any{
		"variableName":  "agent",
		"userPrompt":    "what is sqrt(144) + 3?",
		"maxIterations": float64(3),
	}, chatModel, nil, []*domain.Node{calc})
	repo.PutWorkflow(w)

	ex := newTestExecutor(t, repo, &fakeProvider{})
	runtime := durablestep.NewMemoryRuntime(durablestep.DefaultRetryPolicy())
	pub := &recordingPublisher{}

	out, err := ex.Execute(context.Background(), execCtx(w, "agent1", domain.RunContext{}, "run1", runtime, pub))
	require.NoError(t, err)

	result := out["agent"].(map[string]any)
	assert.Contains(t, result["agentResponse"].(string), "15")
	assert.GreaterOrEqual(t, result["toolCallCount"].(int), 1)

	assert.Equal(t, []string{"loading", "success"}, pub.statusesFor("agent1"))
	assert.Equal(t, []string{"loading", "success"}, pub.statusesFor("model1"))
	assert.Equal(t, []string{"loading", "success"}, pub.statusesFor("calc1"))
}

// Boundary: maxIterations=1 and no tools produces exactly one LLM call and
// toolCallCount=0.
func TestAgent_SingleIterationNoTools(t *testing.T) {
	repo := repository.NewMemory()
	repo.PutCredential(&domain.Credential{ID: "cred1", OrganizationID: "org1", Kind: domain.CredentialKindGemini, EncryptedValue: encryptString(t, "secret-key")})

	chatModel := domain.NewNode("model1", "w1", domain.KindChatModel, map[string]any{"provider": "gemini"})
	chatModel.CredentialID = "cred1"
	w := agentWorkflow(map[string]any{
		"variableName":  "agent",
		"userPrompt":    "hello",
		"maxIterations": float64(1),
	}, chatModel, nil, nil)
	repo.PutWorkflow(w)

	fake := &countingProvider{}
	ex := newTestExecutor(t, repo, fake)
	runtime := durablestep.NewMemoryRuntime(durablestep.DefaultRetryPolicy())

	out, err := ex.Execute(context.Background(), execCtx(w, "agent1", domain.RunContext{}, "run1", runtime, &recordingPublisher{}))
	require.NoError(t, err)

	result := out["agent"].(map[string]any)
	assert.Equal(t, 0, result["toolCallCount"].(int))
	assert.Equal(t, 1, fake.calls)
}

// Missing chat-model sub-node fails non-retriably before any LLM call.
func TestAgent_MissingChatModel(t *testing.T) {
	repo := repository.NewMemory()
	w := agentWorkflow(map[string]any{"variableName": "agent", "userPrompt": "hi"}, nil, nil, nil)
	repo.PutWorkflow(w)

	ex := newTestExecutor(t, repo, &countingProvider{})
	runtime := durablestep.NewMemoryRuntime(durablestep.DefaultRetryPolicy())
	pub := &recordingPublisher{}

	_, err := ex.Execute(context.Background(), execCtx(w, "agent1", domain.RunContext{}, "run1", runtime, pub))
	require.Error(t, err)
	var modelErr *domain.AgentMissingModelError
	require.ErrorAs(t, err, &modelErr)
	assert.Equal(t, []string{"loading", "error"}, pub.statusesFor("agent1"))
}

// Seed scenario 5: a cross-tenant order-status write must be rejected by
// the tool itself, reporting "not found" rather than leaking the order's
// existence, and no write occurs.
func TestAgent_CrossTenantOrderWriteRejected(t *testing.T) {
	repo := repository.NewMemory()
	repo.PutCredential(&domain.Credential{ID: "cred1", OrganizationID: "org1", Kind: domain.CredentialKindGemini, EncryptedValue: encryptString(t, "secret-key")})

	chatModel := domain.NewNode("model1", "w1", domain.KindChatModel, map[string]any{"provider": "gemini"})
	chatModel.CredentialID = "cred1"
	orderMgr := domain.NewNode("order1", "w1", domain.KindOrderManager, map[string]any{})

	w := agentWorkflow(map[string]any{
		"variableName":  "agent",
		"userPrompt":    "please mark order 42 as shipped",
		"maxIterations": float64(3),
	}, chatModel, nil, []*domain.Node{orderMgr})
	w.OrganizationID = "org1"
	repo.PutWorkflow(w)

	catalog := tools.NewMemoryCatalog()
	catalog.PutOrder(tools.Order{ID: "42", OrganizationID: "org2", CustomerName: "foreign customer", Status: "pending", Total: 10})

	fake := &orderUpdateProvider{}
	ex := newTestExecutor(t, repo, fake)
	ex.orders = catalog
	runtime := durablestep.NewMemoryRuntime(durablestep.DefaultRetryPolicy())

	out, err := ex.Execute(context.Background(), execCtx(w, "agent1", domain.RunContext{}, "run1", runtime, &recordingPublisher{}))
	require.NoError(t, err)

	result := out["agent"].(map[string]any)
	assert.Contains(t, result["agentResponse"].(string), "Error: Order #42 not found")

	stored, err := catalog.GetOrder(context.Background(), "org2", "42")
	require.NoError(t, err)
	assert.Equal(t, "pending", stored.Status, "the foreign order must not have been written")
}

// Seed scenario 6: three sequential runs with a windowSize=2 memory
// sub-node leave a final history of exactly 4 turns, containing only the
// turns derived from the second and third prompts.
func TestAgent_MemoryTrimmingAcrossRuns(t *testing.T) {
	repo := repository.NewMemory()
	repo.PutCredential(&domain.Credential{ID: "cred1", OrganizationID: "org1", Kind: domain.CredentialKindGemini, EncryptedValue: encryptString(t, "secret-key")})

	chatModel := domain.NewNode("model1", "w1", domain.KindChatModel, map[string]any{"provider": "gemini"})
	chatModel.CredentialID = "cred1"
	memory := domain.NewNode("mem1", "w1", domain.KindMemory, map[string]any{"windowSize": float64(2), "memoryKey": "chatHistory"})

	w := agentWorkflow(map[string]any{
		"variableName":  "agent",
		"maxIterations": float64(1),
	}, chatModel, memory, nil)
	repo.PutWorkflow(w)

	runtime := durablestep.NewMemoryRuntime(durablestep.DefaultRetryPolicy())

	runCtx := domain.RunContext{}
	prompts := []string{"p1", "p2", "p3"}
	for i, p := range prompts {
		fake := &echoProvider{answer: "a" + p}
		ex := newTestExecutor(t, repo, fake)
		cfg := nodeConfigFor(w, "agent1")
		cfg["userPrompt"] = p
		out, err := ex.Execute(context.Background(), executor.Context{
			NodeConfig: cfg,
			NodeID:     "agent1",
			RunContext: runCtx,
			Step:       durablestep.NewStep(runtime, fmt.Sprintf("run-%d", i)),
			Publish:    &recordingPublisher{},
		})
		require.NoError(t, err)
		runCtx = out
	}

	history := runCtx["chatHistory"].([]any)
	require.Len(t, history, 4)
	turn0 := history[0].(map[string]any)
	turn2 := history[2].(map[string]any)
	assert.Equal(t, "p2", turn0["content"])
	assert.Equal(t, "p3", turn2["content"])
}
