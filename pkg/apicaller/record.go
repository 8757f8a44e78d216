package apicaller

import (
	"context"
	"fmt"
	"strconv"
)

// FieldState tells whether a recognized record field holds a fetched value.
type FieldState int

const (
	// Unfetched fields trigger a retrieve when read.
	Unfetched FieldState = iota
	// Fetched fields are served from the record without a call.
	Fetched
)

// String returns the state name.
func (s FieldState) String() string {
	if s == Fetched {
		return "fetched"
	}

	return "unfetched"
}

type field struct {
	state FieldState
	value any
}

// Record is one addressable resource. Its URL is the parent URL followed by
// the lookup value and a slash. Recognized fields are fetched on first read.
// A Record is not safe for concurrent use.
type Record struct {
	*node

	lookup string
	fields map[string]field
}

// NewRecord builds a record under parentURL from attrs. The lookup value is
// read from attrs; when missing the URL ends in a bare slash.
func NewRecord(endpoint *Endpoint, parentURL string, attrs map[string]any, config *Config) (*Record, error) {
	if endpoint == nil || endpoint.Kind() != KindRecord {
		return nil, &ConfigurationError{Endpoint: endpointName(endpoint), Err: fmt.Errorf("%w: not a record", ErrWrongKind)}
	}

	return newRecord(endpoint, parentURL, attrs, newSession(config))
}

func newRecord(endpoint *Endpoint, parentURL string, attrs map[string]any, s *session) (*Record, error) {
	lookup := lookupString(attrs[endpoint.LookupKey()])

	n, err := newNode(endpoint, parentURL+lookup+"/", s)
	if err != nil {
		return nil, err
	}

	r := &Record{
		node:   n,
		lookup: lookup,
		fields: make(map[string]field, len(endpoint.fields)),
	}

	for _, name := range endpoint.fields {
		r.fields[name] = field{state: Unfetched}
	}

	r.fill(attrs)

	return r, nil
}

// Lookup returns the lookup value the record is addressed by.
// lookupString renders a lookup value as a URL segment. Decoded JSON numbers
// arrive as float64 and are written without an exponent.
func lookupString(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	default:
		return fmt.Sprint(v)
	}
}

func (r *Record) Lookup() string { return r.lookup }

// LookupKey returns the attribute name of the lookup value.
func (r *Record) LookupKey() string { return r.endpoint.LookupKey() }

// State returns the state of a recognized field. ok is false for
// unrecognized names.
func (r *Record) State(name string) (FieldState, bool) {
	f, ok := r.fields[name]

	return f.state, ok
}

// Fields returns a copy of the fetched field values.
func (r *Record) Fields() map[string]any {
	out := make(map[string]any, len(r.fields))

	for name, f := range r.fields {
		if f.state == Fetched {
			out[name] = f.value
		}
	}

	return out
}

// Get returns a field value. An unrecognized name fails with an
// *AttributeError without any call. An unfetched field triggers one
// Retrieve; if the response still lacks it, ErrFieldNotReturned is returned.
func (r *Record) Get(ctx context.Context, name string) (any, error) {
	f, ok := r.fields[name]
	if !ok {
		return nil, &AttributeError{Endpoint: r.Name(), Field: name}
	}

	if f.state == Fetched {
		return f.value, nil
	}

	err := r.Retrieve(ctx)
	if err != nil {
		return nil, err
	}

	f = r.fields[name]
	if f.state != Fetched {
		return nil, fmt.Errorf("%w: %s at %s", ErrFieldNotReturned, name, r.url)
	}

	return f.value, nil
}

// Retrieve fetches the record and stores every recognized field of the
// response. On error no field changes.
func (r *Record) Retrieve(ctx context.Context) error {
	r.session.logger.Debug("Retrieving record", map[string]interface{}{
		"endpoint": r.Name(),
		"url":      r.url,
	})

	_, body, err := r.caller.Get(ctx)
	if err != nil {
		return err
	}

	attrs, ok := body.(map[string]any)
	if !ok {
		return fmt.Errorf("%w: %s returned %T, want an object", ErrUnexpectedPayload, r.url, body)
	}

	r.fill(attrs)

	return nil
}

// Create issues a POST to the record URL.
func (r *Record) Create(ctx context.Context) error {
	_, _, err := r.caller.Post(ctx, nil)

	return err
}

// Update issues a PATCH to the record URL.
func (r *Record) Update(ctx context.Context) error {
	_, _, err := r.caller.Patch(ctx, nil)

	return err
}

// Delete issues a DELETE to the record URL.
func (r *Record) Delete(ctx context.Context) error {
	_, _, err := r.caller.Delete(ctx)

	return err
}

func (r *Record) fill(attrs map[string]any) {
	for key, value := range attrs {
		if _, ok := r.fields[key]; ok {
			r.fields[key] = field{state: Fetched, value: value}
		}
	}
}

func endpointName(endpoint *Endpoint) string {
	if endpoint == nil {
		return "<nil>"
	}

	return endpoint.Name()
}
