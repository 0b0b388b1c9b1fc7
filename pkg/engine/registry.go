package engine

import (
	"fmt"
	"sort"
	"sync"

	"github.com/samber/lo"
)

// Category classifies what a route does with its resource
type Category int

const (
	// CategoryTable is the generic single-table builder
	CategoryTable Category = iota
	// CategoryJoinedView reads a resource joined with related tables
	CategoryJoinedView
	// CategoryLookup reads a whole reference table in label order
	CategoryLookup
	// CategoryFiltered reads a subset selected by a required field
	CategoryFiltered
	// CategoryComposite writes across several tables
	CategoryComposite
)

func (c Category) String() string {
	switch c {
	case CategoryTable:
		return "table"
	case CategoryJoinedView:
		return "joined-view"
	case CategoryLookup:
		return "lookup"
	case CategoryFiltered:
		return "filtered"
	case CategoryComposite:
		return "composite"
	default:
		return "unknown"
	}
}

// Route binds a (verb, resource) pair to its handler
type Route struct {
	Verb        Verb
	Resource    string
	Category    Category
	Handler     Handler
	Description string
}

type routeKey struct {
	verb     Verb
	resource string
}

// Registry holds the special routes. Lookups are exact and case-sensitive;
// a miss resolves to the generic handler of the verb.
type Registry struct {
	mu     sync.RWMutex
	routes map[routeKey]Route
}

func NewRegistry() *Registry {
	return &Registry{routes: make(map[routeKey]Route)}
}

// Register adds a special route. A (verb, resource) pair can only be registered once.
func (r *Registry) Register(route Route) error {
	if !route.Verb.Valid() {
		return fmt.Errorf("register %q: %w", route.Resource, ErrUnroutableVerb)
	}
	if route.Resource == "" {
		return fmt.Errorf("register: empty resource name")
	}
	if route.Handler == nil {
		return fmt.Errorf("register %s %s: nil handler", route.Verb.Method(), route.Resource)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := routeKey{verb: route.Verb, resource: route.Resource}
	if _, exists := r.routes[key]; exists {
		return fmt.Errorf("register %s %s: route already registered", route.Verb.Method(), route.Resource)
	}
	r.routes[key] = route
	return nil
}

// MustRegister is Register that panics, for package-level route tables
func (r *Registry) MustRegister(route Route) {
	if err := r.Register(route); err != nil {
		panic(err)
	}
}

// Lookup returns the special route of (verb, resource), if any
func (r *Registry) Lookup(verb Verb, resource string) (Route, bool) {
	if r == nil {
		return Route{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	route, ok := r.routes[routeKey{verb: verb, resource: resource}]
	return route, ok
}

// Resolve returns the special route of (verb, resource), or the generic
// route of the verb with resource as the table name
func (r *Registry) Resolve(verb Verb, resource string) Route {
	if route, ok := r.Lookup(verb, resource); ok {
		return route
	}
	return Route{
		Verb:        verb,
		Resource:    resource,
		Category:    CategoryTable,
		Handler:     GenericHandler(verb),
		Description: "generic " + verb.String(),
	}
}

// Routes lists the special routes ordered by verb then resource
func (r *Registry) Routes() []Route {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	routes := lo.Values(r.routes)
	r.mu.RUnlock()

	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Verb != routes[j].Verb {
			return routes[i].Verb < routes[j].Verb
		}
		return routes[i].Resource < routes[j].Resource
	})
	return routes
}

// Resources lists the resource names with a special route for verb
func (r *Registry) Resources(verb Verb) []string {
	return lo.FilterMap(r.Routes(), func(route Route, _ int) (string, bool) {
		return route.Resource, route.Verb == verb
	})
}
