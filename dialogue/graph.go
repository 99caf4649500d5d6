// Package dialogue implements the scripted Daily Talk conversation: a static
// graph of authored nodes and an engine that walks it one choice at a time.
//
// The graph is validated when it is built and never changes afterwards.
// An Engine owns the only mutable value, the current node id, so every
// session needs its own Engine while the Graph can be shared freely.
package dialogue

import (
	"fmt"
	"strings"
)

// NodeID identifies a node in the graph. Ids are chosen by content authors.
type NodeID string

// DefaultRoot is the entry node used when a script does not name one.
const DefaultRoot NodeID = "start"

// Option is a reply the learner can pick at a node.
type Option struct {
	Text        string `yaml:"text"`        // Target-language phrase shown on the button
	Translation string `yaml:"translation"` // Gloss revealed on demand
	Next        NodeID `yaml:"next"`        // Node to move to when picked
}

// Node is a single line spoken by the bot together with the replies offered
// after it. Option order is the on-screen order.
type Node struct {
	ID          NodeID   `yaml:"id"`
	Text        string   `yaml:"text"`
	Translation string   `yaml:"translation"`
	Options     []Option `yaml:"options"`
}

func (n *Node) clone() *Node {
	c := *n
	c.Options = append([]Option(nil), n.Options...)
	return &c
}

// Graph is the immutable conversation script.
type Graph struct {
	root  NodeID
	nodes map[NodeID]*Node
	order []NodeID // authoring order
}

// NewGraph indexes the nodes and checks that the script is closed: the root
// exists, ids are unique and every option points at a node of the graph.
// Surrounding whitespace is trimmed from all texts. The nodes are copied, so
// later changes to the argument do not leak into the graph.
func NewGraph(root NodeID, nodes []*Node) (*Graph, error) {
	if root == "" {
		root = DefaultRoot
	}

	g := &Graph{
		root:  root,
		nodes: make(map[NodeID]*Node, len(nodes)),
		order: make([]NodeID, 0, len(nodes)),
	}

	for i, node := range nodes {
		if node == nil {
			return nil, &GraphIntegrityError{Reason: fmt.Sprintf("node #%d is nil", i)}
		}
		if node.ID == "" {
			return nil, &GraphIntegrityError{Reason: fmt.Sprintf("node #%d has an empty id", i)}
		}
		if _, exists := g.nodes[node.ID]; exists {
			return nil, &GraphIntegrityError{NodeID: node.ID, Reason: "duplicate node id"}
		}

		c := node.clone()
		c.Text = strings.TrimSpace(c.Text)
		c.Translation = strings.TrimSpace(c.Translation)
		for j := range c.Options {
			c.Options[j].Text = strings.TrimSpace(c.Options[j].Text)
			c.Options[j].Translation = strings.TrimSpace(c.Options[j].Translation)
		}

		g.nodes[c.ID] = c
		g.order = append(g.order, c.ID)
	}

	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// Validate re-runs the closure check over the whole graph.
func (g *Graph) Validate() error {
	if _, ok := g.nodes[g.root]; !ok {
		return &GraphIntegrityError{NodeID: g.root, Reason: "root node is missing"}
	}

	for _, id := range g.order {
		node := g.nodes[id]
		// A node without replies would trap the session; only Reset could leave it.
		if len(node.Options) == 0 {
			return &GraphIntegrityError{NodeID: id, Reason: "node has no options"}
		}
		for i, opt := range node.Options {
			if _, ok := g.nodes[opt.Next]; !ok {
				return &GraphIntegrityError{
					NodeID: id,
					Ref:    opt.Next,
					Reason: fmt.Sprintf("option %d points to a missing node", i),
				}
			}
		}
	}
	return nil
}

// Root returns the entry node id.
func (g *Graph) Root() NodeID {
	return g.root
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// IDs returns the node ids in authoring order.
func (g *Graph) IDs() []NodeID {
	return append([]NodeID(nil), g.order...)
}

// Node returns a copy of the node with the given id.
func (g *Graph) Node(id NodeID) (*Node, bool) {
	node, ok := g.nodes[id]
	if !ok {
		return nil, false
	}
	return node.clone(), true
}

// Terminal reports whether every option of the node leads back to the root,
// which is how a branch ends in the script.
func (g *Graph) Terminal(id NodeID) bool {
	node, ok := g.nodes[id]
	if !ok || len(node.Options) == 0 {
		return false
	}
	for _, opt := range node.Options {
		if opt.Next != g.root {
			return false
		}
	}
	return true
}
