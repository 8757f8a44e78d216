package apicaller_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/apicaller/pkg/apicaller"
)

const sampleDeclaration = `
templates:
  paged:
    kind: collection
    pagination:
      results: items
      count: total
      next: next_page
  timestamped:
    kind: record
    fields: [created_at]
  user:
    extends: [timestamped]
    fields: [id, name]
root:
  name: api
  path: https://declared.example.com/
  children:
    - name: v1
      path: v1/
      children:
        - name: users
          extends: [paged]
          path: users/
          detail: true
          item:
            extends: [user]
        - name: me
          kind: record
          fields: [name]
`

func TestLoadDeclaration(t *testing.T) {
	t.Parallel()

	ep, err := apicaller.LoadDeclaration(strings.NewReader(sampleDeclaration))
	require.NoError(t, err)

	assert.Equal(t, "api", ep.Name())
	assert.Equal(t, apicaller.KindNode, ep.Kind())
	assert.Equal(t, "https://declared.example.com/", ep.Path())

	root, err := apicaller.NewRoot(ep, &apicaller.Config{BaseURL: "http://h/"})
	require.NoError(t, err)

	res, err := root.Walk("v1", "users")
	require.NoError(t, err)

	users, ok := res.(*apicaller.Collection)
	require.True(t, ok)
	assert.Equal(t, "http://h/v1/users/", users.URL())

	usersEp := users.Endpoint()
	assert.True(t, usersEp.Detail())
	assert.Equal(t, "items", usersEp.ResultsKey())
	assert.Equal(t, "total", usersEp.CountKey())
	assert.Equal(t, "next_page", usersEp.NextKey())
	require.NotNil(t, usersEp.Item())
	assert.Equal(t, apicaller.KindRecord, usersEp.Item().Kind())
	assert.Equal(t, []string{"created_at", "id", "name"}, usersEp.Item().Fields())

	me, err := root.Walk("v1", "me")
	require.NoError(t, err)
	assert.IsType(t, &apicaller.Record{}, me)
}

func TestLoadDeclaration_DetailFalseOverridesTemplate(t *testing.T) {
	t.Parallel()

	const doc = `
templates:
  detailed:
    kind: collection
    detail: true
    item:
      kind: record
      fields: [id]
root:
  children:
    - name: users
      path: users/
      extends: [detailed]
      detail: false
`

	ep, err := apicaller.LoadDeclaration(strings.NewReader(doc))
	require.NoError(t, err)

	children := ep.Children()
	require.Len(t, children, 1)
	assert.False(t, children[0].Detail())
	require.NotNil(t, children[0].Item())
}

func TestLoadDeclaration_Paginates(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t, map[string]fakeRoute{
		"GET /v1/users/": {body: `{"total": 1, "items": [{"id": 4, "name": "Grace"}]}`},
	})

	ep, err := apicaller.LoadDeclaration(strings.NewReader(sampleDeclaration))
	require.NoError(t, err)

	root, err := apicaller.NewRoot(ep, testConfig(api.URL()+"/"))
	require.NoError(t, err)

	res, err := root.Walk("v1", "users")
	require.NoError(t, err)

	records, err := res.(*apicaller.Collection).Records(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)

	name, err := records[0].Get(context.Background(), "name")
	require.NoError(t, err)
	assert.Equal(t, "Grace", name)
}

func TestLoadDeclaration_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		doc      string
		expected error
	}{
		{name: "empty document", doc: "", expected: apicaller.ErrNoRoot},
		{name: "unknown key", doc: "root:\n  colour: red\n", expected: apicaller.ErrConfiguration},
		{name: "unknown kind", doc: "root:\n  kind: table\n", expected: apicaller.ErrUnknownKind},
		{name: "unknown template", doc: "root:\n  extends: [nope]\n", expected: apicaller.ErrUnknownTemplate},
		{
			name:     "template cycle",
			doc:      "templates:\n  a: {extends: [b]}\n  b: {extends: [a]}\nroot:\n  extends: [a]\n",
			expected: apicaller.ErrTemplateCycle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := apicaller.LoadDeclaration(strings.NewReader(tt.doc))
			require.ErrorIs(t, err, tt.expected)
			require.ErrorIs(t, err, apicaller.ErrConfiguration)
		})
	}
}

func TestLoadDeclarationFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "api.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleDeclaration), 0o600))

	ep, err := apicaller.LoadDeclarationFile(path)
	require.NoError(t, err)
	assert.Equal(t, "api", ep.Name())

	_, err = apicaller.LoadDeclarationFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
