package catalog

import (
	"context"

	"github.com/mediatek86/catalog/pkg/engine"
)

// ============================================================
// QUERIES
// ============================================================

const (
	selectLivres = "Select l.id, l.ISBN, l.auteur, d.titre, d.image, l.collection, " +
		"d.idrayon, d.idpublic, d.idgenre, g.libelle as genre, p.libelle as lePublic, r.libelle as rayon " +
		"from livre l join document d on l.id=d.id " +
		"join genre g on g.id=d.idGenre " +
		"join public p on p.id=d.idPublic " +
		"join rayon r on r.id=d.idRayon " +
		"order by titre"

	selectDvds = "Select l.id, l.duree, l.realisateur, d.titre, d.image, l.synopsis, " +
		"d.idrayon, d.idpublic, d.idgenre, g.libelle as genre, p.libelle as lePublic, r.libelle as rayon " +
		"from dvd l join document d on l.id=d.id " +
		"join genre g on g.id=d.idGenre " +
		"join public p on p.id=d.idPublic " +
		"join rayon r on r.id=d.idRayon " +
		"order by titre"

	selectRevues = "Select l.id, l.periodicite, d.titre, d.image, l.delaiMiseADispo, " +
		"d.idrayon, d.idpublic, d.idgenre, g.libelle as genre, p.libelle as lePublic, r.libelle as rayon " +
		"from revue l join document d on l.id=d.id " +
		"join genre g on g.id=d.idGenre " +
		"join public p on p.id=d.idPublic " +
		"join rayon r on r.id=d.idRayon " +
		"order by titre"

	selectExemplaires = "Select e.id, e.numero, e.dateAchat, e.photo, e.idEtat " +
		"from exemplaire e join document d on e.id=d.id " +
		"where e.id = :id " +
		"order by e.dateAchat DESC"

	selectInfoCommande = "SELECT c.id, c.dateCommande, c.montant, cd.nbExemplaire, s.id AS idSuivi, s.etat, cd.idLivreDvd " +
		"FROM commande c " +
		"JOIN commandedocument cd ON c.id = cd.id " +
		"JOIN suivi s ON cd.idSuivi = s.id " +
		"WHERE cd.idLivreDvd = :idLivreDvd " +
		"ORDER BY c.dateCommande DESC"

	selectAllSuivi = "SELECT id, etat FROM suivi"
)

var itemQueries = map[string]string{
	ResourceLivre: selectLivres,
	ResourceDvd:   selectDvds,
	ResourceRevue: selectRevues,
}

// ============================================================
// HANDLERS
// ============================================================

// selectAll runs a fixed query; request fields are ignored
func selectAll(sql string) engine.Handler {
	return func(ctx context.Context, ex *engine.Executor, req engine.Request) (engine.Result, error) {
		rows, err := ex.Query(ctx, engine.NewStatement(sql, nil))
		if err != nil {
			return engine.Absent(), err
		}
		return engine.RowsResult(rows), nil
	}
}

// selectFiltered runs sql with only the key field bound.
// The key must be present in the request; its value may be NULL.
func selectFiltered(resource, key, sql string) engine.Handler {
	return func(ctx context.Context, ex *engine.Executor, req engine.Request) (engine.Result, error) {
		if _, ok := req.Fields.Get(key); !ok {
			return engine.Absent(), &engine.MissingFieldError{Resource: resource, Field: key}
		}

		rows, err := ex.Query(ctx, engine.NewStatement(sql, req.Fields.Pick(key)))
		if err != nil {
			return engine.Absent(), err
		}
		return engine.RowsResult(rows), nil
	}
}
