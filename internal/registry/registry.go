// Package registry implements a hierarchical name registry. Names are unique
// across the whole tree, so lookups never need the parent chain.
package registry

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already registered")
)

// Policy decides what Add does with a name that is already registered.
type Policy int

const (
	// KeepFirst ignores later registrations; the first payload wins.
	KeepFirst Policy = iota
	// RejectDuplicates returns ErrDuplicate on a collision.
	RejectDuplicates
)

type Node struct {
	Name     string
	Parent   string
	Payload  map[string]any
	children []string
}

// Children returns the names of the direct children in insertion order.
func (n *Node) Children() []string {
	out := make([]string, len(n.children))
	copy(out, n.children)
	return out
}

type Option func(*Tree)

func WithPolicy(p Policy) Option {
	return func(t *Tree) { t.policy = p }
}

type Tree struct {
	mu     sync.RWMutex
	root   string
	policy Policy
	nodes  map[string]*Node
	order  []string
}

func New(root string, opts ...Option) *Tree {
	t := &Tree{
		root:  root,
		nodes: map[string]*Node{root: {Name: root}},
		order: []string{root},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tree) Root() string { return t.root }

// Add registers name beneath parent (the root when parent is empty).
func (t *Tree) Add(name, parent string, payload map[string]any) error {
	if name == "" {
		return errors.New("registry: empty name")
	}
	if parent == "" {
		parent = t.root
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.nodes[name]; exists {
		if t.policy == RejectDuplicates {
			return fmt.Errorf("registry %s: %q: %w", t.root, name, ErrDuplicate)
		}
		return nil
	}
	p, ok := t.nodes[parent]
	if !ok {
		return fmt.Errorf("registry %s: parent %q: %w", t.root, parent, ErrNotFound)
	}

	t.nodes[name] = &Node{Name: name, Parent: parent, Payload: payload}
	p.children = append(p.children, name)
	t.order = append(t.order, name)
	return nil
}

func (t *Tree) Find(name string) (*Node, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n, ok := t.nodes[name]
	if !ok {
		return nil, fmt.Errorf("registry %s: %q: %w", t.root, name, ErrNotFound)
	}
	return n, nil
}

// Payload returns the value stored under key on the named node.
func (t *Tree) Payload(name, key string) (any, error) {
	n, err := t.Find(name)
	if err != nil {
		return nil, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := n.Payload[key]
	if !ok {
		return nil, fmt.Errorf("registry %s: %q has no %q: %w", t.root, name, key, ErrNotFound)
	}
	return v, nil
}

// Names returns every registered name, root included, in registration order.
func (t *Tree) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Leaves returns the names of nodes without children, in registration order.
// A lone root is not a leaf.
func (t *Tree) Leaves() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []string
	for _, name := range t.order {
		if name == t.root {
			continue
		}
		if len(t.nodes[name].children) == 0 {
			out = append(out, name)
		}
	}
	return out
}

// Path returns the ancestor chain from the root down to name.
func (t *Tree) Path(name string) ([]string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n, ok := t.nodes[name]
	if !ok {
		return nil, fmt.Errorf("registry %s: %q: %w", t.root, name, ErrNotFound)
	}
	var path []string
	for {
		path = append([]string{n.Name}, path...)
		if n.Parent == "" {
			return path, nil
		}
		n = t.nodes[n.Parent]
	}
}

// Walk visits the tree depth first, parents before children.
func (t *Tree) Walk(fn func(n *Node, depth int)) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	t.walk(t.root, 0, fn)
}

func (t *Tree) walk(name string, depth int, fn func(n *Node, depth int)) {
	n := t.nodes[name]
	fn(n, depth)
	for _, c := range n.children {
		t.walk(c, depth+1, fn)
	}
}
