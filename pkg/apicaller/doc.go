// Package apicaller declares navigable REST API clients from composable
// endpoint descriptors instead of hand-written calls.
//
// # Overview
//
// An Endpoint describes one level of an API: its URL suffix, its children and
// its kind. Nodes group children, records are single resources addressed by
// a lookup value, and collections are paginated lists. NewRoot instantiates a
// tree of descriptors into a tree of Node, Record and Collection values, each
// bound to an absolute URL composed from its parent's.
//
//	user := apicaller.DeclareRecord("user", apicaller.WithFields("id", "name", "email"))
//	users := apicaller.DeclareCollection("users",
//	  apicaller.WithPath("users/"),
//	  apicaller.WithItem(user),
//	)
//	api := apicaller.Declare("api", apicaller.WithChildren(
//	  apicaller.Declare("v1", apicaller.WithPath("v1/"), apicaller.WithChildren(users)),
//	))
//
//	root, err := apicaller.NewRoot(api, &apicaller.Config{
//	  BaseURL: "https://api.example.com/",
//	  Token:   os.Getenv("API_TOKEN"),
//	})
//	if err != nil { log.Fatal(err) }
//
//	res, _ := root.Walk("v1", "users")
//	for item, err := range res.(*apicaller.Collection).Items(ctx) {
//	  if err != nil { log.Fatal(err) }
//	  name, _ := item.(*apicaller.Record).Get(ctx, "name")
//	  fmt.Println(name)
//	}
//
// # Inheritance
//
// Extends merges a base descriptor into a declaration when it is declared.
// Children and fields are unioned; other settings are inherited unless the
// declaration sets its own. Declarations can also be loaded from YAML with
// LoadDeclaration, where templates play the role of bases.
//
// # Records
//
// Reading a recognized field that has not been fetched yet retrieves the
// record once; fetched fields are served without a call. Unrecognized names
// fail with an *AttributeError and never reach the network.
//
// # Rate limiting
//
// Every call waits until a minimum interval (50ms by default) has passed
// since the previous call completed. The limiter is process-wide unless
// Config.Limiter provides another one. Wait, call and bookkeeping run under
// one lock, so concurrent callers are serialized.
//
// # Errors
//
// Non-2xx responses return a *CallError carrying the status and raw body.
// Use errors.Is with the package sentinels (ErrCallFailed, ErrUnknownField,
// ErrConfiguration, ErrMalformedPage, ErrDone) or errors.As with the typed
// errors.
package apicaller
