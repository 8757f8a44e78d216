package apicaller

import (
	"fmt"
	"strings"
)

// Resource is any instance in a client tree: *Node, *Record or *Collection.
type Resource interface {
	URL() string
	Name() string
	Endpoint() *Endpoint
	Caller() *Caller
	Child(name string) (Resource, bool)
	Children() []Resource
	base() *Node
}

// Node is an instantiated endpoint bound to an absolute URL. It owns one
// caller and one instance per declared child, built when the node is.
type Node struct {
	endpoint *Endpoint
	url      string
	caller   *Caller
	session  *session
	children []Resource
}

// node lets Record and Collection embed a Node without a field named Node,
// which would shadow the Node accessor.
type node = Node

// NewRoot instantiates a client tree. config.BaseURL, when set, replaces the
// declared path of the root.
func NewRoot(endpoint *Endpoint, config *Config) (*Node, error) {
	if endpoint == nil {
		return nil, &ConfigurationError{Endpoint: "root", Err: ErrWrongKind}
	}

	if endpoint.Kind() != KindNode {
		return nil, &ConfigurationError{
			Endpoint: endpoint.Name(),
			Err:      fmt.Errorf("%w: root must be a node, got %s", ErrWrongKind, endpoint.Kind()),
		}
	}

	url := endpoint.Path()
	if config != nil && config.BaseURL != "" {
		url = config.BaseURL
	}

	return newNode(endpoint, url, newSession(config))
}

func newNode(endpoint *Endpoint, url string, s *session) (*Node, error) {
	n := &Node{
		endpoint: endpoint,
		url:      url,
		caller:   newCaller(url, s),
		session:  s,
	}

	for _, child := range endpoint.children {
		res, err := buildResource(child, url, s)
		if err != nil {
			return nil, err
		}

		n.children = append(n.children, res)
	}

	return n, nil
}

// buildResource instantiates a child endpoint under parentURL.
func buildResource(endpoint *Endpoint, parentURL string, s *session) (Resource, error) {
	switch endpoint.Kind() {
	case KindRecord:
		return newRecord(endpoint, parentURL, nil, s)
	case KindCollection:
		return newCollection(endpoint, parentURL, s)
	case KindNode:
		return newNode(endpoint, parentURL+endpoint.Path(), s)
	default:
		return nil, &ConfigurationError{
			Endpoint: endpoint.Name(),
			Err:      fmt.Errorf("%w: %s", ErrUnknownKind, endpoint.Kind()),
		}
	}
}

// URL returns the absolute URL of the node.
func (n *Node) URL() string { return n.url }

// Name returns the endpoint name.
func (n *Node) Name() string { return n.endpoint.Name() }

// Endpoint returns the descriptor the node was built from.
func (n *Node) Endpoint() *Endpoint { return n.endpoint }

// Caller returns the caller bound to the node URL.
func (n *Node) Caller() *Caller { return n.caller }

func (n *Node) base() *Node { return n }

// Children returns the child instances in declaration order.
func (n *Node) Children() []Resource {
	out := make([]Resource, len(n.children))
	copy(out, n.children)

	return out
}

// Child returns the child instance with the given name.
func (n *Node) Child(name string) (Resource, bool) {
	for _, child := range n.children {
		if child.Name() == name {
			return child, true
		}
	}

	return nil, false
}

// Walk resolves a chain of child names, e.g. Walk("v1", "users").
func (n *Node) Walk(path ...string) (Resource, error) {
	var current Resource = n

	for i, name := range path {
		child, ok := current.Child(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, strings.Join(path[:i+1], "."))
		}

		current = child
	}

	return current, nil
}

// Node returns the child node with the given name.
func (n *Node) Node(name string) (*Node, error) {
	res, err := n.lookupChild(name, KindNode)
	if err != nil {
		return nil, err
	}

	return res.base(), nil
}

// Record returns the child record with the given name.
func (n *Node) Record(name string) (*Record, error) {
	res, err := n.lookupChild(name, KindRecord)
	if err != nil {
		return nil, err
	}

	record, _ := res.(*Record)

	return record, nil
}

// Collection returns the child collection with the given name.
func (n *Node) Collection(name string) (*Collection, error) {
	res, err := n.lookupChild(name, KindCollection)
	if err != nil {
		return nil, err
	}

	collection, _ := res.(*Collection)

	return collection, nil
}

func (n *Node) lookupChild(name string, kind Kind) (Resource, error) {
	res, ok := n.Child(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no child %q", ErrNodeNotFound, n.Name(), name)
	}

	if res.Endpoint().Kind() != kind {
		return nil, fmt.Errorf("%w: %s is a %s, not a %s", ErrWrongKind, name, res.Endpoint().Kind(), kind)
	}

	return res, nil
}
