// Package dag models the upstream/downstream structure between projects and
// provides the topological ordering the dependency-constrained aggregation
// propagates along.
package dag

import (
	"fmt"
	"sync"
)

// Graph is a collection of project nodes and their dependency edges.
// All operations on the graph are concurrency-safe.
type Graph struct {
	mutex sync.RWMutex
	// nodes stores all nodes in the graph, keyed by project ID.
	nodes map[int]*node
	// order remembers insertion order so traversals stay deterministic.
	order []int
}

// node is un-exported to enforce interaction with the graph via project IDs,
// not by direct struct manipulation.
type node struct {
	id int
	// deps holds the set of nodes this node depends on (predecessors).
	deps map[int]*node
	// dependents holds the set of nodes that depend on this node (successors).
	dependents map[int]*node
}

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{nodes: make(map[int]*node)}
}

// AddNode adds a new node with the given project ID. If the node already
// exists the call does nothing.
func (g *Graph) AddNode(id int) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if _, ok := g.nodes[id]; ok {
		return
	}

	g.nodes[id] = &node{
		id:         id,
		deps:       make(map[int]*node),
		dependents: make(map[int]*node),
	}
	g.order = append(g.order, id)
}

// AddEdge creates a directed edge meaning `toID` depends on `fromID`. An
// error is returned if either node does not exist or the edge would be a
// self-reference.
func (g *Graph) AddEdge(fromID, toID int) error {
	if fromID == toID {
		return fmt.Errorf("self-referential edge not allowed: %d -> %d", fromID, fromID)
	}

	g.mutex.Lock()
	defer g.mutex.Unlock()

	fromNode, ok := g.nodes[fromID]
	if !ok {
		return fmt.Errorf("source node not found: %d", fromID)
	}

	toNode, ok := g.nodes[toID]
	if !ok {
		return fmt.Errorf("destination node not found: %d", toID)
	}

	toNode.deps[fromID] = fromNode
	fromNode.dependents[toID] = toNode

	return nil
}

// Dependencies returns the project IDs the given node depends on.
func (g *Graph) Dependencies(id int) ([]int, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %d", id)
	}

	deps := make([]int, 0, len(n.deps))
	for depID := range n.deps {
		deps = append(deps, depID)
	}
	return deps, nil
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return len(g.nodes)
}

// TopoSort returns every node in dependency order: a project always appears
// after everything it depends on. Among simultaneously-ready nodes, insertion
// order wins, so the caller's declared project order is the tiebreak. A cycle
// yields an error naming how far the sort got.
func (g *Graph) TopoSort() ([]int, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	inDegree := make(map[int]int, len(g.nodes))
	for id, n := range g.nodes {
		inDegree[id] = len(n.deps)
	}

	// Kahn's algorithm. The ready queue is kept in insertion order for
	// deterministic output.
	var queue []int
	for _, id := range g.order {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	sorted := make([]int, 0, len(g.nodes))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		sorted = append(sorted, id)

		var newReady []int
		for _, dependent := range g.order {
			if _, ok := g.nodes[id].dependents[dependent]; !ok {
				continue
			}
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				newReady = append(newReady, dependent)
			}
		}
		queue = append(queue, newReady...)
	}

	if len(sorted) != len(g.nodes) {
		return nil, fmt.Errorf("dependency graph has a cycle (%d of %d projects sorted)", len(sorted), len(g.nodes))
	}

	return sorted, nil
}

// DetectCycles checks the graph for any cycles. It returns a non-nil error if
// a cycle is found, naming the first node involved in the detected cycle.
func (g *Graph) DetectCycles() error {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	// Classic depth-first search with three sets of nodes:
	// permanent: fully visited, known cycle-free.
	// temporary: currently on the recursion stack.
	// unvisited: everything else.
	permanent := make(map[int]bool)
	temporary := make(map[int]bool)

	var visit func(n *node) error
	visit = func(n *node) error {
		if permanent[n.id] {
			return nil
		}
		if temporary[n.id] {
			return fmt.Errorf("cycle detected involving project %d", n.id)
		}

		temporary[n.id] = true

		for _, dependent := range n.dependents {
			if err := visit(dependent); err != nil {
				return err
			}
		}

		delete(temporary, n.id)
		permanent[n.id] = true

		return nil
	}

	for _, n := range g.nodes {
		if !permanent[n.id] {
			if err := visit(n); err != nil {
				return err
			}
		}
	}

	return nil
}
