package aggregates

import (
	"fmt"
	"time"

	"supplynet-backend/domain/core/entities"
	apperrors "supplynet-backend/pkg/errors"
)

// Network is an immutable snapshot of the distributor hierarchy.
//
// A snapshot is constructed fully off to the side, validated, and then
// published by an atomic reference swap; readers never observe a partially
// built graph. Edges and the adjacency index are derived purely from the
// node list at build time, so the node set is the single source of truth.
type Network struct {
	nodes    map[string]*entities.Distributor
	edges    map[string]*entities.SupplyEdge
	children map[string][]string
	version  int64
	builtAt  time.Time
}

// NewNetwork assembles and validates a snapshot from a node list.
//
// Validation is strict: duplicate ids, dangling parent references, and
// cycles in the parent relation all fail the build with an itemized issue
// list. Nothing is silently repaired.
func NewNetwork(nodes []*entities.Distributor, version int64) (*Network, error) {
	n := &Network{
		nodes:    make(map[string]*entities.Distributor, len(nodes)),
		edges:    make(map[string]*entities.SupplyEdge),
		children: make(map[string][]string),
		version:  version,
		builtAt:  time.Now(),
	}

	var issues []string

	for _, node := range nodes {
		if err := node.Validate(); err != nil {
			issues = append(issues, err.Error())
			continue
		}
		if _, exists := n.nodes[node.ID]; exists {
			issues = append(issues, fmt.Sprintf("duplicate node id %q", node.ID))
			continue
		}
		n.nodes[node.ID] = node
	}

	// Derive edges and the children index strictly from ParentID
	for _, node := range n.nodes {
		if node.ParentID == "" {
			continue
		}
		parent, ok := n.nodes[node.ParentID]
		if !ok {
			issues = append(issues, fmt.Sprintf("node %q references missing parent %q", node.ID, node.ParentID))
			continue
		}
		edge := &entities.SupplyEdge{SupplierID: parent.ID, BuyerID: node.ID}
		n.edges[edge.Key()] = edge
		n.children[parent.ID] = append(n.children[parent.ID], node.ID)
	}

	issues = append(issues, n.findCycles()...)

	if len(issues) > 0 {
		return nil, apperrors.NewInconsistentDataError(issues)
	}

	return n, nil
}

// findCycles walks the parent relation depth-first with a recursion stack.
// Any back-reference is reported; the parent relation must form a forest.
func (n *Network) findCycles() []string {
	const (
		unvisited = iota
		inProgress
		done
	)

	state := make(map[string]int, len(n.nodes))
	var issues []string

	for id := range n.nodes {
		if state[id] != unvisited {
			continue
		}
		// Follow the parent chain from id; the chain either terminates at a
		// root, reaches a node already proven acyclic, or closes a cycle.
		current := id
		for current != "" && state[current] == unvisited {
			node, ok := n.nodes[current]
			if !ok {
				break // dangling parent, reported separately
			}
			state[current] = inProgress
			current = node.ParentID
		}
		if current != "" && state[current] == inProgress {
			issues = append(issues, fmt.Sprintf("circular parent reference through node %q", current))
		}
		// Mark the walked chain as settled
		current = id
		for current != "" && state[current] == inProgress {
			state[current] = done
			if node, ok := n.nodes[current]; ok {
				current = node.ParentID
			} else {
				break
			}
		}
	}

	return issues
}

// Version returns the snapshot's monotonic version
func (n *Network) Version() int64 {
	return n.version
}

// BuiltAt returns when the snapshot was assembled
func (n *Network) BuiltAt() time.Time {
	return n.builtAt
}

// Age returns how long ago the snapshot was assembled
func (n *Network) Age() time.Duration {
	return time.Since(n.builtAt)
}

// Size returns the node and edge counts
func (n *Network) Size() (nodeCount, edgeCount int) {
	return len(n.nodes), len(n.edges)
}

// GetNode returns a node by id
func (n *Network) GetNode(id string) (*entities.Distributor, bool) {
	node, ok := n.nodes[id]
	return node, ok
}

// GetParent returns the direct supplier of a node, if any
func (n *Network) GetParent(id string) (*entities.Distributor, bool) {
	node, ok := n.nodes[id]
	if !ok || node.ParentID == "" {
		return nil, false
	}
	parent, ok := n.nodes[node.ParentID]
	return parent, ok
}

// GetChildren returns the direct downline of a node
func (n *Network) GetChildren(id string) []*entities.Distributor {
	ids := n.children[id]
	out := make([]*entities.Distributor, 0, len(ids))
	for _, childID := range ids {
		if child, ok := n.nodes[childID]; ok {
			out = append(out, child)
		}
	}
	return out
}

// AreConnected reports whether a direct supply edge supplier->buyer exists
func (n *Network) AreConnected(supplierID, buyerID string) bool {
	_, ok := n.edges[supplierID+"->"+buyerID]
	return ok
}

// GetEdge returns the direct supply edge supplier->buyer, if any
func (n *Network) GetEdge(supplierID, buyerID string) (*entities.SupplyEdge, bool) {
	edge, ok := n.edges[supplierID+"->"+buyerID]
	return edge, ok
}

// AncestorChain returns the chain of ancestors of startID, nearest first,
// bounded by maxDepth. The start node itself is not included.
func (n *Network) AncestorChain(startID string, maxDepth int) []*entities.Distributor {
	var chain []*entities.Distributor
	current, ok := n.nodes[startID]
	if !ok {
		return chain
	}
	for depth := 0; depth < maxDepth && current.ParentID != ""; depth++ {
		parent, ok := n.nodes[current.ParentID]
		if !ok {
			break
		}
		chain = append(chain, parent)
		current = parent
	}
	return chain
}

// Nodes returns a copy of the node map to maintain encapsulation
func (n *Network) Nodes() map[string]*entities.Distributor {
	nodes := make(map[string]*entities.Distributor, len(n.nodes))
	for k, v := range n.nodes {
		nodes[k] = v
	}
	return nodes
}

// Edges returns a copy of the edge map to maintain encapsulation
func (n *Network) Edges() map[string]*entities.SupplyEdge {
	edges := make(map[string]*entities.SupplyEdge, len(n.edges))
	for k, v := range n.edges {
		edges[k] = v
	}
	return edges
}

// WithPatchedNodes derives a new snapshot with the given nodes replaced or
// inserted (removed when the replacement is nil). The patched node set is
// re-validated in full; any inconsistency fails the derivation so the
// caller can fall back to a forced rebuild.
func (n *Network) WithPatchedNodes(patches map[string]*entities.Distributor, version int64) (*Network, error) {
	merged := make([]*entities.Distributor, 0, len(n.nodes)+len(patches))
	for id, node := range n.nodes {
		if replacement, ok := patches[id]; ok {
			if replacement != nil {
				merged = append(merged, replacement)
			}
			continue
		}
		merged = append(merged, node)
	}
	for id, node := range patches {
		if _, existed := n.nodes[id]; !existed && node != nil {
			merged = append(merged, node)
		}
	}
	return NewNetwork(merged, version)
}
