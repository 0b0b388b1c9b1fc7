// Package catalog registers the library catalog's special routes on an engine registry:
// the joined item reads, the lookup tables, the filtered reads and the
// two-table document order operations.
package catalog

import (
	"github.com/google/uuid"

	"github.com/mediatek86/catalog/pkg/engine"
)

// Resource names with a special route
const (
	ResourceLivre                = "livre"
	ResourceDvd                  = "dvd"
	ResourceRevue                = "revue"
	ResourceGenre                = "genre"
	ResourcePublic               = "public"
	ResourceRayon                = "rayon"
	ResourceEtat                 = "etat"
	ResourceExemplaire           = "exemplaire"
	ResourceInfoCommandeDocument = "infocommandedocument"
	ResourceAllSuivi             = "allsuivi"
	ResourceCommandeDocAjout     = "commandeDocAjout"
	ResourceCommandeDocModifier  = "commandeDocModifier"
	ResourceCommandeDocSupprimer = "commandeDocSupprimer"
)

// OrderIDs generates the identifier of a new order header.
// Without one, the header id comes from the store.
type OrderIDs func() string

// UUIDOrderIDs generates random order identifiers
func UUIDOrderIDs() string {
	return uuid.NewString()
}

// Option configures the registered routes
type Option func(*options)

type options struct {
	orderIDs OrderIDs
}

// WithOrderIDs makes order creation pick the header id itself
func WithOrderIDs(gen OrderIDs) Option {
	return func(o *options) {
		o.orderIDs = gen
	}
}

// Register adds every catalog route to r
func Register(r *engine.Registry, opts ...Option) error {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	for _, route := range routes(o) {
		if err := r.Register(route); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry returns a registry holding the catalog routes
func NewRegistry(opts ...Option) *engine.Registry {
	r := engine.NewRegistry()
	if err := Register(r, opts...); err != nil {
		panic(err)
	}
	return r
}

func routes(o *options) []engine.Route {
	var out []engine.Route

	for _, item := range []string{ResourceLivre, ResourceDvd, ResourceRevue} {
		out = append(out, engine.Route{
			Verb:        engine.VerbRead,
			Resource:    item,
			Category:    engine.CategoryJoinedView,
			Handler:     selectAll(itemQueries[item]),
			Description: item + " joined with document, genre, public and rayon",
		})
	}

	for _, table := range []string{ResourceGenre, ResourcePublic, ResourceRayon, ResourceEtat} {
		out = append(out, engine.Route{
			Verb:        engine.VerbRead,
			Resource:    table,
			Category:    engine.CategoryLookup,
			Handler:     selectAll("select * from " + table + " order by libelle"),
			Description: "all " + table + " rows by libelle",
		})
	}

	out = append(out,
		engine.Route{
			Verb:        engine.VerbRead,
			Resource:    ResourceExemplaire,
			Category:    engine.CategoryFiltered,
			Handler:     selectFiltered(ResourceExemplaire, "id", selectExemplaires),
			Description: "copies of a periodical, newest first",
		},
		engine.Route{
			Verb:        engine.VerbRead,
			Resource:    ResourceInfoCommandeDocument,
			Category:    engine.CategoryFiltered,
			Handler:     selectFiltered(ResourceInfoCommandeDocument, "idLivreDvd", selectInfoCommande),
			Description: "orders of a book or dvd with their follow-up state",
		},
		engine.Route{
			Verb:        engine.VerbRead,
			Resource:    ResourceAllSuivi,
			Category:    engine.CategoryLookup,
			Handler:     selectAll(selectAllSuivi),
			Description: "every follow-up state",
		},
		engine.Route{
			Verb:        engine.VerbCreate,
			Resource:    ResourceCommandeDocAjout,
			Category:    engine.CategoryComposite,
			Handler:     createOrder(o.orderIDs),
			Description: "insert commande then commandedocument",
		},
		engine.Route{
			Verb:        engine.VerbUpdate,
			Resource:    ResourceCommandeDocModifier,
			Category:    engine.CategoryComposite,
			Handler:     modifyOrder,
			Description: "update commande and commandedocument",
		},
		engine.Route{
			Verb:        engine.VerbUpdate,
			Resource:    ResourceCommandeDocSupprimer,
			Category:    engine.CategoryComposite,
			Handler:     removeOrder,
			Description: "delete commandedocument then commande",
		},
	)
	return out
}
