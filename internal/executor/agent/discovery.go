package agent

import "github.com/smilemakc/workflow-engine/internal/domain"

// subNodes is the partitioned result of sub-node discovery (spec §4.5
// Discovery): the agent's connections are split by their toInput label
// into a chat-model sub-node (at most one), a memory sub-node (at most
// one), and zero or more tool sub-nodes.
type subNodes struct {
	chatModel *domain.Node
	memory    *domain.Node
	tools     []*domain.Node
}

// discover partitions w's connections incoming to nodeID by SubNodeLabel,
// resolving each to its source node. Connections whose source node cannot
// be found are skipped; a malformed graph should not crash discovery.
func discover(w *domain.Workflow, nodeID string) subNodes {
	var out subNodes
	for _, c := range w.Connections {
		if c.ToNodeID != nodeID {
			continue
		}
		label, ok := c.SubNodeLabel()
		if !ok {
			continue
		}
		src := w.NodeByID(c.FromNodeID)
		if src == nil {
			continue
		}
		switch label {
		case domain.LabelChatModel:
			if out.chatModel == nil {
				out.chatModel = src
			}
		case domain.LabelMemory:
			if out.memory == nil {
				out.memory = src
			}
		case domain.LabelTool:
			out.tools = append(out.tools, src)
		}
	}
	return out
}

// ids returns every sub-node id discovered, for status fan-out (spec
// §4.5 "Sub-node status fan-out").
func (s subNodes) ids() []string {
	out := make([]string, 0, len(s.tools)+2)
	if s.chatModel != nil {
		out = append(out, s.chatModel.ID)
	}
	if s.memory != nil {
		out = append(out, s.memory.ID)
	}
	for _, t := range s.tools {
		out = append(out, t.ID)
	}
	return out
}
