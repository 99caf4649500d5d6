package dialogue

import (
	"fmt"
	"slices"
)

// Engine walks a Graph for a single conversation session.
// It is not safe for concurrent use; give each session its own Engine.
type Engine struct {
	graph      *Graph
	current    NodeID
	selections int // accepted selections since construction or the last Reset
}

// NewEngine returns an engine positioned at the graph root.
func NewEngine(g *Graph) *Engine {
	return &Engine{
		graph:   g,
		current: g.Root(),
	}
}

// Graph returns the script the engine walks.
func (e *Engine) Graph() *Graph {
	return e.graph
}

// CurrentID returns the id of the active node.
func (e *Engine) CurrentID() NodeID {
	return e.current
}

// CurrentNode returns the active node.
func (e *Engine) CurrentNode() (*Node, error) {
	node, ok := e.graph.nodes[e.current]
	if !ok {
		return nil, &GraphIntegrityError{NodeID: e.current, Reason: "current node is missing"}
	}
	return node.clone(), nil
}

// Select moves along opt, which must be one of the options of the active
// node, and returns the node it leads to.
func (e *Engine) Select(opt Option) (*Node, error) {
	node, err := e.CurrentNode()
	if err != nil {
		return nil, err
	}
	if !slices.Contains(node.Options, opt) {
		return nil, &InvalidTransitionError{NodeID: e.current, Option: opt}
	}
	return e.advance(opt)
}

// SelectIndex picks the option at position i of the active node.
func (e *Engine) SelectIndex(i int) (*Node, error) {
	node, err := e.CurrentNode()
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= len(node.Options) {
		return nil, &InvalidTransitionError{
			NodeID: e.current,
			Reason: fmt.Sprintf("option index %d out of range [0,%d)", i, len(node.Options)),
		}
	}
	return e.advance(node.Options[i])
}

func (e *Engine) advance(opt Option) (*Node, error) {
	next, ok := e.graph.nodes[opt.Next]
	if !ok {
		return nil, &GraphIntegrityError{NodeID: e.current, Ref: opt.Next, Reason: "option points to a missing node"}
	}
	e.current = opt.Next
	e.selections++
	return next.clone(), nil
}

// Reset moves back to the root and returns it. It always succeeds.
func (e *Engine) Reset() *Node {
	e.current = e.graph.root
	e.selections = 0
	return e.graph.nodes[e.graph.root].clone()
}

// IsSessionEmpty reports whether no option has been picked since the engine
// was created or last reset.
func (e *Engine) IsSessionEmpty() bool {
	return e.selections == 0
}
