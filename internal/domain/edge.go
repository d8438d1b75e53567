package domain

// EdgeLabel is the closed set of handle labels a connection's toInput may
// carry. main edges participate in scheduling; the rest are sub-node edges
// consumed only by the Agent Executor at run time. Several legacy aliases
// are accepted for backwards compatibility with stored graphs (spec note:
// an implementation SHOULD model edges with a closed enum of labels plus
// aliases for older persisted data).
type EdgeLabel string

const (
	LabelMain      EdgeLabel = "main"
	LabelChatModel EdgeLabel = "chat_model"
	LabelMemory    EdgeLabel = "memory"
	LabelTool      EdgeLabel = "tool"
)

// mainFlowInputs is the set of toInput values that denote main-flow edges.
var mainFlowInputs = map[string]bool{
	"":         true,
	"main":     true,
	"target-1": true,
}

// subNodeAliases maps legacy stored labels onto the closed label set.
var subNodeAliases = map[string]EdgeLabel{
	"chat-model-target": LabelChatModel,
	"chat_model":         LabelChatModel,
	"memory-target":      LabelMemory,
	"memory":             LabelMemory,
	"tool-target":        LabelTool,
	"tool":                LabelTool,
}

// Connection is an edge between two nodes of the same workflow.
//
// Condition is a supplemented feature beyond the distilled spec (see
// SPEC_FULL.md §6, "Conditional edges on non-agent nodes"): an optional
// expr-lang boolean expression guarding a main-flow edge, evaluated
// against the source node's output. An empty Condition always executes.
type Connection struct {
	ID         string `json:"id"`
	WorkflowID string `json:"workflowId"`
	FromNodeID string `json:"fromNodeId"`
	ToNodeID   string `json:"toNodeId"`
	FromOutput string `json:"fromOutput"`
	ToInput    string `json:"toInput"`
	Condition  string `json:"condition,omitempty"`
}

// IsMainFlow reports whether the connection participates in scheduling.
func (c *Connection) IsMainFlow() bool {
	return mainFlowInputs[c.ToInput]
}

// SubNodeLabel resolves the connection's toInput to a canonical sub-node
// label, or ("", false) if the connection is a main-flow edge or uses an
// unrecognised label.
func (c *Connection) SubNodeLabel() (EdgeLabel, bool) {
	if c.IsMainFlow() {
		return "", false
	}
	if label, ok := subNodeAliases[c.ToInput]; ok {
		return label, true
	}
	return "", false
}
