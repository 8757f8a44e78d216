package apicaller

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/url"
)

// Collection is a paginated list. It keeps a cursor over the pages: pending
// items of the current page, the next page URL and the total count reported
// by the API. A Collection is not safe for concurrent use.
type Collection struct {
	*node

	pending    []any
	nextURL    string
	count      int
	countKnown bool
	// fresh is set while pending holds the untouched first page, so a pass
	// started right after Len does not fetch it again.
	fresh bool
}

// NewCollection builds a collection under parentURL.
func NewCollection(endpoint *Endpoint, parentURL string, config *Config) (*Collection, error) {
	if endpoint == nil || endpoint.Kind() != KindCollection {
		return nil, &ConfigurationError{Endpoint: endpointName(endpoint), Err: fmt.Errorf("%w: not a collection", ErrWrongKind)}
	}

	return newCollection(endpoint, parentURL, newSession(config))
}

func newCollection(endpoint *Endpoint, parentURL string, s *session) (*Collection, error) {
	item := endpoint.Item()

	if endpoint.Detail() && item == nil {
		return nil, &ConfigurationError{Endpoint: endpoint.Name(), Err: ErrMissingItem}
	}

	if item != nil && item.Kind() != KindRecord {
		return nil, &ConfigurationError{
			Endpoint: endpoint.Name(),
			Err:      fmt.Errorf("%w: item %s is a %s, not a record", ErrWrongKind, item.Name(), item.Kind()),
		}
	}

	n, err := newNode(endpoint, parentURL+endpoint.Path(), s)
	if err != nil {
		return nil, err
	}

	return &Collection{node: n, nextURL: n.url}, nil
}

// Reset restarts the pass at the collection URL and forgets the count. A
// first page fetched by Len and not consumed yet is kept.
func (c *Collection) Reset() {
	if c.fresh {
		return
	}

	c.pending = nil
	c.nextURL = c.url
	c.count = 0
	c.countKnown = false
}

// Next returns the next item: the raw decoded value, or a *Record when an
// item endpoint is declared. It returns ErrDone at the end of the pass.
func (c *Collection) Next(ctx context.Context) (any, error) {
	for len(c.pending) == 0 {
		if c.nextURL == "" {
			c.fresh = false

			return nil, ErrDone
		}

		err := c.fetch(ctx)
		if err != nil {
			return nil, err
		}
	}

	raw := c.pending[0]
	c.pending = c.pending[1:]
	c.fresh = false

	return c.wrap(raw)
}

// Len returns the total count reported by the API, fetching the first page
// if no page was fetched since the last Reset. A page fetched at the start
// of a pass stays buffered for the pass.
func (c *Collection) Len(ctx context.Context) (int, error) {
	if c.countKnown {
		return c.count, nil
	}

	if c.nextURL == c.url && len(c.pending) == 0 {
		err := c.fetch(ctx)
		if err != nil {
			return 0, err
		}
	} else {
		p, err := c.fetchPage(ctx, c.url)
		if err != nil {
			return 0, err
		}

		c.count, c.countKnown = p.count, p.countKnown
	}

	if !c.countKnown {
		return 0, &PageError{URL: c.url, Key: c.endpoint.CountKey(), Reason: "missing"}
	}

	return c.count, nil
}

// All restarts the pass and collects every item.
func (c *Collection) All(ctx context.Context) ([]any, error) {
	var items []any

	err := c.ForEach(ctx, func(item any) error {
		items = append(items, item)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return items, nil
}

// ForEach restarts the pass and calls fn for every item, stopping at the
// first error.
func (c *Collection) ForEach(ctx context.Context, fn func(item any) error) error {
	for item, err := range c.Items(ctx) {
		if err != nil {
			return err
		}

		err = fn(item)
		if err != nil {
			return err
		}
	}

	return nil
}

// Items restarts the pass and yields every item. Iteration stops after the
// first error, which is yielded with a nil item.
func (c *Collection) Items(ctx context.Context) iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		c.Reset()

		for {
			item, err := c.Next(ctx)
			if errors.Is(err, ErrDone) {
				return
			}

			if err != nil {
				yield(nil, err)

				return
			}

			if !yield(item, nil) {
				return
			}
		}
	}
}

// Records restarts the pass and returns every item as a record. It requires
// an item endpoint.
func (c *Collection) Records(ctx context.Context) ([]*Record, error) {
	if c.endpoint.Item() == nil {
		return nil, &ConfigurationError{Endpoint: c.Name(), Err: ErrMissingItem}
	}

	var records []*Record

	err := c.ForEach(ctx, func(item any) error {
		record, _ := item.(*Record)
		records = append(records, record)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return records, nil
}

// Get wraps attrs in a record of the item endpoint without any call.
func (c *Collection) Get(attrs map[string]any) (*Record, error) {
	item := c.endpoint.Item()
	if item == nil {
		return nil, &ConfigurationError{Endpoint: c.Name(), Err: ErrMissingItem}
	}

	record, err := newRecord(item, c.url, attrs, c.session)
	if err != nil {
		return nil, err
	}

	return record, nil
}

// Add wraps attrs in a record of the item endpoint and creates it.
func (c *Collection) Add(ctx context.Context, attrs map[string]any) (*Record, error) {
	record, err := c.Get(attrs)
	if err != nil {
		return nil, err
	}

	err = record.Create(ctx)
	if err != nil {
		return nil, err
	}

	return record, nil
}

type page struct {
	items      []any
	next       string
	count      int
	countKnown bool
}

// fetch advances the cursor to the page at nextURL.
func (c *Collection) fetch(ctx context.Context) error {
	pageURL := c.nextURL
	c.fresh = false

	p, err := c.fetchPage(ctx, pageURL)
	if err != nil {
		return err
	}

	c.pending = p.items
	c.nextURL = p.next
	c.fresh = pageURL == c.url

	if p.countKnown {
		c.count, c.countKnown = p.count, true
	}

	return nil
}

// fetchPage loads one page with a caller bound to pageURL.
func (c *Collection) fetchPage(ctx context.Context, pageURL string) (*page, error) {
	c.session.logger.Debug("Fetching page", map[string]interface{}{
		"endpoint": c.Name(),
		"url":      pageURL,
	})

	_, body, err := newCaller(pageURL, c.session).Get(ctx)
	if err != nil {
		return nil, err
	}

	payload, ok := body.(map[string]any)
	if !ok {
		return nil, &PageError{URL: pageURL, Reason: fmt.Sprintf("got %T, want an object", body)}
	}

	p := &page{}

	p.items, err = c.pageItems(pageURL, payload)
	if err != nil {
		return nil, err
	}

	p.next, err = c.pageNext(pageURL, payload)
	if err != nil {
		return nil, err
	}

	p.count, p.countKnown, err = c.pageCount(pageURL, payload)
	if err != nil {
		return nil, err
	}

	return p, nil
}

func (c *Collection) pageItems(pageURL string, payload map[string]any) ([]any, error) {
	key := c.endpoint.ResultsKey()

	raw, ok := payload[key]
	if !ok {
		return nil, &PageError{URL: pageURL, Key: key, Reason: "missing"}
	}

	if raw == nil {
		return nil, nil
	}

	items, ok := raw.([]any)
	if !ok {
		return nil, &PageError{URL: pageURL, Key: key, Reason: fmt.Sprintf("got %T, want an array", raw)}
	}

	return items, nil
}

// pageNext returns the absolute next page URL, or "" at the last page.
// Relative links are resolved against the page URL.
func (c *Collection) pageNext(pageURL string, payload map[string]any) (string, error) {
	key := c.endpoint.NextKey()

	raw := payload[key]
	if raw == nil {
		return "", nil
	}

	next, ok := raw.(string)
	if !ok {
		return "", &PageError{URL: pageURL, Key: key, Reason: fmt.Sprintf("got %T, want a string", raw)}
	}

	if next == "" {
		return "", nil
	}

	ref, err := url.Parse(next)
	if err != nil {
		return "", &PageError{URL: pageURL, Key: key, Reason: err.Error()}
	}

	if ref.IsAbs() {
		return next, nil
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return next, nil //nolint:nilerr // an unparsable page URL leaves the link as sent
	}

	return base.ResolveReference(ref).String(), nil
}

func (c *Collection) pageCount(pageURL string, payload map[string]any) (int, bool, error) {
	key := c.endpoint.CountKey()

	raw, ok := payload[key]
	if !ok || raw == nil {
		return 0, false, nil
	}

	count, ok := raw.(float64)
	if !ok || count < 0 || count != float64(int(count)) {
		return 0, false, &PageError{URL: pageURL, Key: key, Reason: fmt.Sprintf("got %v, want a count", raw)}
	}

	return int(count), true, nil
}

func (c *Collection) wrap(raw any) (any, error) {
	item := c.endpoint.Item()
	if item == nil {
		return raw, nil
	}

	attrs, ok := raw.(map[string]any)
	if !ok {
		return nil, &PageError{URL: c.url, Key: c.endpoint.ResultsKey(), Reason: fmt.Sprintf("item is %T, want an object", raw)}
	}

	record, err := newRecord(item, c.url, attrs, c.session)
	if err != nil {
		return nil, err
	}

	return record, nil
}
