package apicaller

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// declarationDoc is the YAML form of a client tree:
//
//	templates:
//	  paged:
//	    kind: collection
//	    pagination: {results: items, count: total, next: next_page}
//	root:
//	  path: https://api.example.com/
//	  children:
//	    - name: users
//	      extends: [paged]
//	      path: users/
//	      item: {kind: record, fields: [id, name]}
type declarationDoc struct {
	Templates map[string]*endpointDoc `yaml:"templates"`
	Root      *endpointDoc            `yaml:"root"`
}

type endpointDoc struct {
	Name       string         `yaml:"name"`
	Kind       string         `yaml:"kind"`
	Path       *string        `yaml:"path"`
	Extends    []string       `yaml:"extends"`
	Lookup     string         `yaml:"lookup"`
	Fields     []string       `yaml:"fields"`
	Item       *endpointDoc   `yaml:"item"`
	Detail     *bool          `yaml:"detail"`
	Pagination *paginationDoc `yaml:"pagination"`
	Children   []*endpointDoc `yaml:"children"`
}

type paginationDoc struct {
	Results string `yaml:"results"`
	Count   string `yaml:"count"`
	Next    string `yaml:"next"`
}

// LoadDeclarationFile reads a YAML declaration from path.
func LoadDeclarationFile(path string) (*Endpoint, error) {
	file, err := os.Open(path) // #nosec G304 -- path is supplied by the user
	if err != nil {
		return nil, fmt.Errorf("opening declaration: %w", err)
	}

	defer func() {
		_ = file.Close()
	}()

	return LoadDeclaration(file)
}

// LoadDeclaration reads a YAML declaration and returns the root endpoint.
// Unknown keys, kinds and templates are configuration errors.
func LoadDeclaration(r io.Reader) (*Endpoint, error) {
	var doc declarationDoc

	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	err := decoder.Decode(&doc)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, &ConfigurationError{Endpoint: "declaration", Err: fmt.Errorf("decoding YAML: %w", err)}
	}

	if doc.Root == nil {
		return nil, &ConfigurationError{Endpoint: "declaration", Err: ErrNoRoot}
	}

	res := &templateResolver{
		docs:     doc.Templates,
		resolved: make(map[string]*Endpoint, len(doc.Templates)),
		visiting: make(map[string]bool),
	}

	return res.build(doc.Root, "root")
}

type templateResolver struct {
	docs     map[string]*endpointDoc
	resolved map[string]*Endpoint
	visiting map[string]bool
}

func (t *templateResolver) template(name string) (*Endpoint, error) {
	if ep, ok := t.resolved[name]; ok {
		return ep, nil
	}

	doc, ok := t.docs[name]
	if !ok || doc == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
	}

	if t.visiting[name] {
		return nil, fmt.Errorf("%w: %q", ErrTemplateCycle, name)
	}

	t.visiting[name] = true
	defer delete(t.visiting, name)

	ep, err := t.build(doc, name)
	if err != nil {
		return nil, err
	}

	t.resolved[name] = ep

	return ep, nil
}

func (t *templateResolver) build(doc *endpointDoc, where string) (*Endpoint, error) {
	opts, err := t.options(doc, where)
	if err != nil {
		var cfgErr *ConfigurationError
		if errors.As(err, &cfgErr) {
			return nil, err
		}

		return nil, &ConfigurationError{Endpoint: where, Err: err}
	}

	return Declare(doc.Name, opts...), nil
}

//nolint:cyclop // one branch per declaration key
func (t *templateResolver) options(doc *endpointDoc, where string) ([]Option, error) {
	var opts []Option

	for _, name := range doc.Extends {
		base, err := t.template(name)
		if err != nil {
			return nil, err
		}

		opts = append(opts, Extends(base))
	}

	if doc.Kind != "" {
		kind, err := ParseKind(doc.Kind)
		if err != nil {
			return nil, err
		}

		opts = append(opts, WithKind(kind))
	}

	if doc.Path != nil {
		opts = append(opts, WithPath(*doc.Path))
	}

	if doc.Lookup != "" {
		opts = append(opts, WithLookup(doc.Lookup))
	}

	if len(doc.Fields) > 0 {
		opts = append(opts, WithFields(doc.Fields...))
	}

	if doc.Item != nil {
		item, err := t.build(doc.Item, where+".item")
		if err != nil {
			return nil, err
		}

		opts = append(opts, WithItem(item))
	}

	if doc.Detail != nil {
		opts = append(opts, WithDetailMode(*doc.Detail))
	}

	if doc.Pagination != nil {
		opts = append(opts, WithPaginationKeys(doc.Pagination.Results, doc.Pagination.Count, doc.Pagination.Next))
	}

	for i, childDoc := range doc.Children {
		if childDoc == nil {
			continue
		}

		child, err := t.build(childDoc, fmt.Sprintf("%s.children[%d]", where, i))
		if err != nil {
			return nil, err
		}

		opts = append(opts, WithChildren(child))
	}

	return opts, nil
}
