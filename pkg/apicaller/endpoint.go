package apicaller

import (
	"fmt"
	"slices"
	"strings"

	"github.com/fivetwenty-io/apicaller/internal/constants"
)

// Kind is the role of an endpoint in a tree.
type Kind int

const (
	// KindNode groups children under a URL.
	KindNode Kind = iota
	// KindRecord is one addressable resource with lazily fetched fields.
	KindRecord
	// KindCollection is a paginated list.
	KindCollection
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNode:
		return "node"
	case KindRecord:
		return "record"
	case KindCollection:
		return "collection"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind parses a kind name as returned by Kind.String.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "node":
		return KindNode, nil
	case "record", "object":
		return KindRecord, nil
	case "collection", "list":
		return KindCollection, nil
	default:
		return KindNode, fmt.Errorf("%w: %q", ErrUnknownKind, name)
	}
}

// Endpoint is a resolved, immutable endpoint descriptor. Build one with
// Declare; configuration inherited through Extends is merged at that point.
type Endpoint struct {
	name     string
	kind     Kind
	path     string
	children []*Endpoint
	fields   []string
	lookup   string
	item     *Endpoint
	detail   bool

	resultsKey string
	countKey   string
	nextKey    string

	set settings
}

// settings records which inheritable values were set explicitly, so a
// derived declaration only overrides what it declares.
type settings struct {
	kind   bool
	path   bool
	lookup bool
	item   bool
	detail bool
	keys   bool
}

type declaration struct {
	own   Endpoint
	bases []*Endpoint
}

// Option configures a declaration.
type Option func(*declaration)

// WithPath sets the URL suffix appended to the parent URL.
func WithPath(path string) Option {
	return func(d *declaration) {
		d.own.path = path
		d.own.set.path = true
	}
}

// WithKind sets the kind.
func WithKind(kind Kind) Option {
	return func(d *declaration) {
		d.own.kind = kind
		d.own.set.kind = true
	}
}

// WithChildren appends child endpoints. A child with the same name as an
// inherited one replaces it.
func WithChildren(children ...*Endpoint) Option {
	return func(d *declaration) {
		for _, child := range children {
			if child != nil {
				d.own.children = upsertChild(d.own.children, child)
			}
		}
	}
}

// WithFields adds recognized record fields.
func WithFields(fields ...string) Option {
	return func(d *declaration) {
		d.own.fields = appendUnique(d.own.fields, fields...)
	}
}

// WithLookup sets the attribute a record is addressed by (default "id").
func WithLookup(key string) Option {
	return func(d *declaration) {
		d.own.lookup = key
		d.own.set.lookup = true
	}
}

// WithItem sets the record endpoint collection items are wrapped in.
func WithItem(item *Endpoint) Option {
	return func(d *declaration) {
		d.own.item = item
		d.own.set.item = true
	}
}

// WithDetail makes a collection a detail collection: it requires an item
// endpoint and supports Get and Add.
func WithDetail() Option {
	return WithDetailMode(true)
}

// WithDetailMode sets the detail flag explicitly. WithDetailMode(false)
// turns off a detail flag inherited through Extends.
func WithDetailMode(detail bool) Option {
	return func(d *declaration) {
		d.own.detail = detail
		d.own.set.detail = true
	}
}

// WithPaginationKeys overrides the page keys. Empty arguments keep the
// defaults "results", "count" and "next".
func WithPaginationKeys(results, count, next string) Option {
	return func(d *declaration) {
		d.own.resultsKey = results
		d.own.countKey = count
		d.own.nextKey = next
		d.own.set.keys = true
	}
}

// Extends merges base into the declaration. Children and fields are unioned
// with the base entries first; other values are inherited unless the
// declaration sets them. When several bases set the same value the first
// one wins.
func Extends(base *Endpoint) Option {
	return func(d *declaration) {
		if base != nil {
			d.bases = append(d.bases, base)
		}
	}
}

// Declare builds an endpoint descriptor. An empty name is derived from the
// path, or from the kind when the path has no usable characters.
func Declare(name string, opts ...Option) *Endpoint {
	d := &declaration{}
	for _, opt := range opts {
		opt(d)
	}

	ep := &Endpoint{name: name}
	for _, base := range d.bases {
		ep.inherit(base)
	}

	ep.override(&d.own)

	if ep.name == "" {
		ep.name = deriveName(ep.path, ep.kind)
	}

	return ep
}

// DeclareRecord declares a record endpoint.
func DeclareRecord(name string, opts ...Option) *Endpoint {
	return Declare(name, append([]Option{WithKind(KindRecord)}, opts...)...)
}

// DeclareCollection declares a collection endpoint.
func DeclareCollection(name string, opts ...Option) *Endpoint {
	return Declare(name, append([]Option{WithKind(KindCollection)}, opts...)...)
}

// inherit takes base values the endpoint has not set yet.
func (e *Endpoint) inherit(base *Endpoint) {
	for _, child := range base.children {
		if indexOfChild(e.children, child.name) < 0 {
			e.children = append(e.children, child)
		}
	}

	e.fields = appendUnique(e.fields, base.fields...)

	if base.set.kind && !e.set.kind {
		e.kind = base.kind
		e.set.kind = true
	}

	if base.set.path && !e.set.path {
		e.path = base.path
		e.set.path = true
	}

	if base.set.lookup && !e.set.lookup {
		e.lookup = base.lookup
		e.set.lookup = true
	}

	if base.set.item && !e.set.item {
		e.item = base.item
		e.set.item = true
	}

	if base.set.detail && !e.set.detail {
		e.detail = base.detail
		e.set.detail = true
	}

	if base.set.keys && !e.set.keys {
		e.resultsKey, e.countKey, e.nextKey = base.resultsKey, base.countKey, base.nextKey
		e.set.keys = true
	}
}

// override applies the values the declaration set itself.
func (e *Endpoint) override(own *Endpoint) {
	for _, child := range own.children {
		e.children = upsertChild(e.children, child)
	}

	e.fields = appendUnique(e.fields, own.fields...)

	if own.set.kind {
		e.kind = own.kind
	}

	if own.set.path {
		e.path = own.path
	}

	if own.set.lookup {
		e.lookup = own.lookup
	}

	if own.set.item {
		e.item = own.item
	}

	if own.set.detail {
		e.detail = own.detail
	}

	if own.set.keys {
		e.resultsKey, e.countKey, e.nextKey = own.resultsKey, own.countKey, own.nextKey
	}

	e.set.kind = e.set.kind || own.set.kind
	e.set.path = e.set.path || own.set.path
	e.set.lookup = e.set.lookup || own.set.lookup
	e.set.item = e.set.item || own.set.item
	e.set.detail = e.set.detail || own.set.detail
	e.set.keys = e.set.keys || own.set.keys
}

// Name returns the attribute name the endpoint is reachable by from its parent.
func (e *Endpoint) Name() string { return e.name }

// Kind returns the endpoint kind.
func (e *Endpoint) Kind() Kind { return e.kind }

// Path returns the URL suffix.
func (e *Endpoint) Path() string { return e.path }

// Children returns the child endpoints in declaration order.
func (e *Endpoint) Children() []*Endpoint { return slices.Clone(e.children) }

// Fields returns the recognized record fields.
func (e *Endpoint) Fields() []string { return slices.Clone(e.fields) }

// HasField reports whether name is a recognized field.
func (e *Endpoint) HasField(name string) bool { return slices.Contains(e.fields, name) }

// LookupKey returns the attribute a record is addressed by.
func (e *Endpoint) LookupKey() string {
	if e.lookup == "" {
		return constants.DefaultLookupKey
	}

	return e.lookup
}

// Item returns the record endpoint of collection items, or nil.
func (e *Endpoint) Item() *Endpoint { return e.item }

// Detail reports whether the endpoint is a detail collection.
func (e *Endpoint) Detail() bool { return e.detail }

// ResultsKey returns the page key holding the items.
func (e *Endpoint) ResultsKey() string {
	return valueOr(e.resultsKey, constants.DefaultResultsKey)
}

// CountKey returns the page key holding the total count.
func (e *Endpoint) CountKey() string {
	return valueOr(e.countKey, constants.DefaultCountKey)
}

// NextKey returns the page key holding the next page URL.
func (e *Endpoint) NextKey() string {
	return valueOr(e.nextKey, constants.DefaultNextKey)
}

func upsertChild(children []*Endpoint, child *Endpoint) []*Endpoint {
	idx := indexOfChild(children, child.name)
	if idx < 0 {
		return append(children, child)
	}

	children = slices.Clone(children)
	children[idx] = child

	return children
}

func indexOfChild(children []*Endpoint, name string) int {
	return slices.IndexFunc(children, func(c *Endpoint) bool {
		return c.name == name
	})
}

func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		if v != "" && !slices.Contains(dst, v) {
			dst = append(dst, v)
		}
	}

	return dst
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}

	return value
}

func deriveName(path string, kind Kind) string {
	var b strings.Builder

	for _, r := range strings.ToLower(strings.Trim(path, "/")) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	name := strings.Trim(b.String(), "_")
	if name == "" {
		return kind.String()
	}

	return name
}
