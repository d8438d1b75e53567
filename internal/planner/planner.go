// Package planner turns a stored workflow graph into an ordered list of
// nodes to execute (spec §4.1). It partitions main-flow edges from
// sub-node edges, finds the reachable set from the trigger nodes, and
// topologically sorts that sub-graph with a deterministic id tie-break.
package planner

import (
	"sort"

	"github.com/smilemakc/workflow-engine/internal/domain"
)

// Plan is the ordered list of nodes a Run Driver will execute.
type Plan struct {
	WorkflowID string
	Nodes      []*domain.Node
	// edges holds the main-flow connections induced on the planned nodes,
	// kept for the Run Driver's conditional-edge guards (see Edges) and tests.
	edges []*domain.Connection
}

// Len returns the number of nodes in the plan.
func (p *Plan) Len() int { return len(p.Nodes) }

// Edges returns the main-flow connections induced on the planned nodes, for
// callers that need edge-level detail (e.g. the Run Driver's conditional-
// edge guard evaluation).
func (p *Plan) Edges() []*domain.Connection { return p.edges }

// Summary reports a short diagnostic description of the plan, grounded on
// the teacher's GetPlanSummary/GetCriticalPath reporting (planner.go in
// internal/application/executor); this is a read-only convenience, not
// part of the scheduling contract.
func (p *Plan) Summary() string {
	return "plan(" + p.WorkflowID + "): " + nodeIDs(p.Nodes)
}

func nodeIDs(nodes []*domain.Node) string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	out := ""
	for i, id := range ids {
		if i > 0 {
			out += ","
		}
		out += id
	}
	return out
}

// Plan builds an executable plan for w. It returns (*Plan)(nil planner
// semantics aside) an empty plan when no trigger node exists, and a
// *domain.PlanCycleError if the main-flow edges contain a cycle.
func Plan(w *domain.Workflow) (*Plan, error) {
	mainEdges := partitionMainFlow(w.Connections)
	adjacency := make(map[string][]string, len(w.Nodes))
	for _, e := range mainEdges {
		adjacency[e.FromNodeID] = append(adjacency[e.FromNodeID], e.ToNodeID)
	}

	triggers := triggerNodeIDs(w.Nodes)
	if len(triggers) == 0 {
		return &Plan{WorkflowID: w.ID}, nil
	}

	reachable := bfsReachable(triggers, adjacency)
	inducedNodes := induceSubgraph(w.Nodes, reachable)
	inducedEdges := induceEdges(mainEdges, reachable)

	ordered, err := topoSort(w.ID, inducedNodes, inducedEdges)
	if err != nil {
		return nil, err
	}

	return &Plan{WorkflowID: w.ID, Nodes: ordered, edges: inducedEdges}, nil
}

func partitionMainFlow(conns []*domain.Connection) []*domain.Connection {
	out := make([]*domain.Connection, 0, len(conns))
	for _, c := range conns {
		if c.IsMainFlow() {
			out = append(out, c)
		}
	}
	return out
}

func triggerNodeIDs(nodes []*domain.Node) []string {
	out := make([]string, 0)
	// Sorted for determinism even though BFS visits all of them regardless
	// of order; keeps behaviour reproducible if a caller inspects this.
	sorted := append([]*domain.Node(nil), nodes...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	for _, n := range sorted {
		if n.Kind.IsTrigger() {
			out = append(out, n.ID)
		}
	}
	return out
}

func bfsReachable(starts []string, adjacency map[string][]string) map[string]bool {
	visited := make(map[string]bool, len(starts))
	queue := append([]string(nil), starts...)
	for _, s := range starts {
		visited[s] = true
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		neighbors := append([]string(nil), adjacency[cur]...)
		sort.Strings(neighbors)
		for _, next := range neighbors {
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	return visited
}

func induceSubgraph(nodes []*domain.Node, reachable map[string]bool) []*domain.Node {
	out := make([]*domain.Node, 0, len(reachable))
	for _, n := range nodes {
		if reachable[n.ID] {
			out = append(out, n)
		}
	}
	return out
}

func induceEdges(edges []*domain.Connection, reachable map[string]bool) []*domain.Connection {
	out := make([]*domain.Connection, 0, len(edges))
	for _, e := range edges {
		if reachable[e.FromNodeID] && reachable[e.ToNodeID] {
			out = append(out, e)
		}
	}
	return out
}

// topoSort performs Kahn's algorithm, breaking ties by node id so that
// identical inputs always yield the identical order (spec §4.1 step 5).
func topoSort(workflowID string, nodes []*domain.Node, edges []*domain.Connection) ([]*domain.Node, error) {
	byID := make(map[string]*domain.Node, len(nodes))
	indegree := make(map[string]int, len(nodes))
	adjacency := make(map[string][]string, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
		indegree[n.ID] = 0
	}
	for _, e := range edges {
		adjacency[e.FromNodeID] = append(adjacency[e.FromNodeID], e.ToNodeID)
		indegree[e.ToNodeID]++
	}
	for _, neighbors := range adjacency {
		sort.Strings(neighbors)
	}

	ready := make([]string, 0)
	for id, d := range indegree {
		if d == 0 {
			ready = append(ready, id)
		}
	}
	sort.Strings(ready)

	ordered := make([]*domain.Node, 0, len(nodes))
	for len(ready) > 0 {
		sort.Strings(ready)
		id := ready[0]
		ready = ready[1:]
		ordered = append(ordered, byID[id])

		for _, next := range adjacency[id] {
			indegree[next]--
			if indegree[next] == 0 {
				ready = append(ready, next)
			}
		}
	}

	if len(ordered) != len(nodes) {
		remaining := make([]string, 0)
		for id, d := range indegree {
			if d > 0 {
				remaining = append(remaining, id)
			}
		}
		sort.Strings(remaining)
		return nil, &domain.PlanCycleError{WorkflowID: workflowID, Nodes: remaining}
	}

	return ordered, nil
}
