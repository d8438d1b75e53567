// Package domain holds the graph data model: nodes, connections, workflows,
// credentials and the run context that threads through one execution.
package domain

// NodeKind is the closed set of executable node types a workflow may use.
type NodeKind string

const (
	KindInitial           NodeKind = "INITIAL"
	KindManualTrigger     NodeKind = "MANUAL_TRIGGER"
	KindHTTPRequest       NodeKind = "HTTP_REQUEST"
	KindGoogleFormTrigger NodeKind = "GOOGLE_FORM_TRIGGER"
	KindStripeTrigger     NodeKind = "STRIPE_TRIGGER"
	KindGemini            NodeKind = "GEMINI"
	KindAnthropic         NodeKind = "ANTHROPIC"
	KindOpenAI            NodeKind = "OPENAI"
	KindDiscord           NodeKind = "DISCORD"
	KindSlack             NodeKind = "SLACK"
	KindAIAgent           NodeKind = "AI_AGENT"
	KindChatModel         NodeKind = "CHAT_MODEL"
	KindMemory            NodeKind = "MEMORY"
	KindSendEmail         NodeKind = "SEND_EMAIL"
	KindWebScraper        NodeKind = "WEB_SCRAPER"
	KindCalculator        NodeKind = "CALCULATOR"
	KindInventoryLookup   NodeKind = "INVENTORY_LOOKUP"
	KindOrderManager      NodeKind = "ORDER_MANAGER"
)

// triggerKinds are the node kinds the planner treats as entry points.
var triggerKinds = map[NodeKind]bool{
	KindInitial:           true,
	KindManualTrigger:     true,
	KindGoogleFormTrigger: true,
	KindStripeTrigger:     true,
}

// IsTrigger reports whether kind is one of the closed set of trigger kinds.
func (k NodeKind) IsTrigger() bool {
	return triggerKinds[k]
}

// Position is a 2-D editor coordinate, opaque to the engine.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is a vertex in a workflow graph.
type Node struct {
	ID           string         `json:"id"`
	WorkflowID   string         `json:"workflowId"`
	Kind         NodeKind       `json:"kind"`
	Position     Position       `json:"position"`
	Data         map[string]any `json:"data"`
	CredentialID string         `json:"credentialId,omitempty"`
}

// NewNode constructs a Node with a non-nil Data map.
func NewNode(id, workflowID string, kind NodeKind, data map[string]any) *Node {
	if data == nil {
		data = map[string]any{}
	}
	return &Node{ID: id, WorkflowID: workflowID, Kind: kind, Data: data}
}

// VariableName returns the node's configured output binding, if any.
func (n *Node) VariableName() string {
	if v, ok := n.Data["variableName"].(string); ok {
		return v
	}
	return ""
}
