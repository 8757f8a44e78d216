package apicaller_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/apicaller/pkg/apicaller"
)

func sampleAPI() *apicaller.Endpoint {
	user := apicaller.DeclareRecord("user", apicaller.WithFields("id", "name"))
	users := apicaller.DeclareCollection("users", apicaller.WithPath("users/"), apicaller.WithItem(user))
	me := apicaller.DeclareRecord("me", apicaller.WithFields("name"))

	return apicaller.Declare("api",
		apicaller.WithPath("https://declared.example.com/"),
		apicaller.WithChildren(
			apicaller.Declare("v1", apicaller.WithPath("v1/"), apicaller.WithChildren(
				apicaller.Declare("admin", apicaller.WithPath(""), apicaller.WithChildren(
					apicaller.Declare("reports", apicaller.WithPath("reports/")),
				)),
				users,
				me,
			)),
		),
	)
}

func TestNewRoot_URLComposition(t *testing.T) {
	t.Parallel()

	root, err := apicaller.NewRoot(sampleAPI(), &apicaller.Config{BaseURL: "https://api.example.com/"})
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com/", root.URL())
	assert.Equal(t, "https://api.example.com/", root.Caller().URL())

	reports, err := root.Walk("v1", "admin", "reports")
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/v1/reports/", reports.URL())
	assert.Equal(t, reports.URL(), reports.Caller().URL())

	users, err := root.Walk("v1", "users")
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/v1/users/", users.URL())
}

func TestNewRoot_DeclaredPath(t *testing.T) {
	t.Parallel()

	root, err := apicaller.NewRoot(sampleAPI(), nil)
	require.NoError(t, err)

	assert.Equal(t, "https://declared.example.com/", root.URL())

	v1, err := root.Node("v1")
	require.NoError(t, err)
	assert.Equal(t, "https://declared.example.com/v1/", v1.URL())
}

func TestNewRoot_RejectsNonNodeRoot(t *testing.T) {
	t.Parallel()

	_, err := apicaller.NewRoot(apicaller.DeclareCollection("items"), nil)
	require.ErrorIs(t, err, apicaller.ErrConfiguration)
	require.ErrorIs(t, err, apicaller.ErrWrongKind)

	_, err = apicaller.NewRoot(nil, nil)
	require.ErrorIs(t, err, apicaller.ErrConfiguration)
}

func TestNewRoot_PropagatesChildErrors(t *testing.T) {
	t.Parallel()

	broken := apicaller.DeclareCollection("broken", apicaller.WithDetail())
	api := apicaller.Declare("api", apicaller.WithChildren(broken))

	_, err := apicaller.NewRoot(api, nil)
	require.ErrorIs(t, err, apicaller.ErrMissingItem)

	var cfgErr *apicaller.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "broken", cfgErr.Endpoint)
}

func TestNode_Children(t *testing.T) {
	t.Parallel()

	root, err := apicaller.NewRoot(sampleAPI(), &apicaller.Config{BaseURL: "http://h/"})
	require.NoError(t, err)

	v1, err := root.Node("v1")
	require.NoError(t, err)

	var names []string
	for _, child := range v1.Children() {
		names = append(names, child.Name())
	}

	assert.Equal(t, []string{"admin", "users", "me"}, names)

	child, ok := v1.Child("users")
	require.True(t, ok)
	assert.IsType(t, &apicaller.Collection{}, child)

	_, ok = v1.Child("nope")
	assert.False(t, ok)
}

func TestNode_TypedAccessors(t *testing.T) {
	t.Parallel()

	root, err := apicaller.NewRoot(sampleAPI(), &apicaller.Config{BaseURL: "http://h/"})
	require.NoError(t, err)

	v1, err := root.Node("v1")
	require.NoError(t, err)

	users, err := v1.Collection("users")
	require.NoError(t, err)
	assert.Equal(t, "http://h/v1/users/", users.URL())

	me, err := v1.Record("me")
	require.NoError(t, err)
	assert.Equal(t, "http://h/v1//", me.URL())
	assert.Empty(t, me.Lookup())

	_, err = v1.Record("users")
	require.ErrorIs(t, err, apicaller.ErrWrongKind)

	_, err = v1.Collection("missing")
	require.ErrorIs(t, err, apicaller.ErrNodeNotFound)

	_, err = root.Walk("v1", "missing", "deeper")
	require.ErrorIs(t, err, apicaller.ErrNodeNotFound)
	assert.Contains(t, err.Error(), "v1.missing")

	self, err := root.Walk()
	require.NoError(t, err)
	assert.Same(t, root, self)
}
