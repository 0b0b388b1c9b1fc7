package catalog

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/mediatek86/catalog/pkg/engine"
)

// Order request fields
const (
	FieldID           = "Id"
	FieldDateCommande = "DateCommande"
	FieldMontant      = "Montant"
	FieldNbExemplaire = "NbExemplaire"
	FieldIdLivreDvd   = "IdLivreDvd"
	FieldIdSuivi      = "IdSuivi"
	FieldEtat         = "Etat"
)

// Etat is required on creation but no column stores it
var createFields = []string{
	FieldDateCommande,
	FieldMontant,
	FieldNbExemplaire,
	FieldIdLivreDvd,
	FieldIdSuivi,
	FieldEtat,
}

const (
	tableCommande         = "commande"
	tableCommandeDocument = "commandedocument"
)

const (
	insertCommande          = "INSERT INTO commande (dateCommande, montant) VALUES (:dateCommande, :montant)"
	insertCommandeWithID    = "INSERT INTO commande (id, dateCommande, montant) VALUES (:id, :dateCommande, :montant)"
	insertCommandeDoc       = "INSERT INTO commandedocument (nbExemplaire, idLivreDvd, idSuivi) VALUES (:nbExemplaire, :idLivreDvd, :idSuivi)"
	insertCommandeDocWithID = "INSERT INTO commandedocument (id, nbExemplaire, idLivreDvd, idSuivi) VALUES (:id, :nbExemplaire, :idLivreDvd, :idSuivi)"
	updateCommande          = "UPDATE commande SET dateCommande = :dateCommande, montant = :montant WHERE id = :id"
	updateCommandeDoc       = "UPDATE commandedocument SET nbExemplaire = :nbExemplaire, idLivreDvd = :idLivreDvd, idSuivi = :idSuivi WHERE id = :id"
	deleteCommandeDoc       = "DELETE FROM commandedocument WHERE id = :id"
	deleteCommande          = "DELETE FROM commande WHERE id = :id"
	selectCommandeByRowID   = "SELECT id FROM commande WHERE rowid = :rowid"
)

// ============================================================
// CREATE
// ============================================================

// createOrder inserts the header then the detail row.
// Both statements are always issued; the first one is never rolled back.
func createOrder(orderIDs OrderIDs) engine.Handler {
	return func(ctx context.Context, ex *engine.Executor, req engine.Request) (engine.Result, error) {
		for _, name := range createFields {
			if !req.Fields.Has(name) {
				return engine.FlagResult(false), &engine.MissingFieldError{Resource: ResourceCommandeDocAjout, Field: name}
			}
		}

		id, known := headerID(req.Fields, orderIDs)

		header := engine.NewFieldMap().
			Set("dateCommande", field(req.Fields, FieldDateCommande)).
			Set("montant", amount(field(req.Fields, FieldMontant)))
		headerSQL := insertCommande
		if known {
			header.Set("id", id)
			headerSQL = insertCommandeWithID
		}

		first, res := runStep(ctx, ex, tableCommande, engine.NewStatement(headerSQL, header))
		if !known && first.Err == nil {
			id, known = insertedKey(ctx, ex, res)
		}

		detail := engine.NewFieldMap().
			Set("nbExemplaire", field(req.Fields, FieldNbExemplaire)).
			Set("idLivreDvd", field(req.Fields, FieldIdLivreDvd)).
			Set("idSuivi", field(req.Fields, FieldIdSuivi))
		detailSQL := insertCommandeDoc
		if known {
			detail.Set("id", id)
			detailSQL = insertCommandeDocWithID
		} else {
			ex.Tracef("commande id unknown, commandedocument relies on the store to link it")
		}

		second, _ := runStep(ctx, ex, tableCommandeDocument, engine.NewStatement(detailSQL, detail))

		return foldFlag(ResourceCommandeDocAjout, first, second)
	}
}

// headerID returns the order id when the caller supplied one or a generator is set
func headerID(fields *engine.FieldMap, orderIDs OrderIDs) (engine.Value, bool) {
	if v, ok := fields.Get(FieldID); ok && !v.IsNull() {
		return v, true
	}
	if orderIDs != nil {
		return engine.Text(orderIDs()), true
	}
	return engine.Null(), false
}

// insertedKey returns the id of the commande row the header insert created.
// The last insert id is the key only for a MySQL AUTO_INCREMENT column; on
// SQLite it is the rowid, so the key is read back from it.
func insertedKey(ctx context.Context, ex *engine.Executor, res engine.ExecResult) (engine.Value, bool) {
	if res.LastInsertID <= 0 {
		return engine.Null(), false
	}

	switch ex.Driver() {
	case engine.DriverMySQL:
		return engine.Int(res.LastInsertID), true
	case engine.DriverSQLite:
		params := engine.NewFieldMap().Set("rowid", engine.Int(res.LastInsertID))
		rows, err := ex.Query(ctx, engine.NewStatement(selectCommandeByRowID, params))
		if err != nil || len(rows) == 0 {
			return engine.Null(), false
		}
		id, err := engine.ValueOf(rows[0]["id"])
		if err != nil || id.IsNull() {
			return engine.Null(), false
		}
		return id, true
	default:
		return engine.Null(), false
	}
}

// ============================================================
// MODIFY
// ============================================================

// modifyOrder updates both rows keyed by Id. Absent columns are written as NULL.
func modifyOrder(ctx context.Context, ex *engine.Executor, req engine.Request) (engine.Result, error) {
	if !req.Fields.Has(FieldID) {
		return engine.FlagResult(false), &engine.MissingFieldError{Resource: ResourceCommandeDocModifier, Field: FieldID}
	}
	id := field(req.Fields, FieldID)

	header := engine.NewFieldMap().
		Set("dateCommande", field(req.Fields, FieldDateCommande)).
		Set("montant", amount(field(req.Fields, FieldMontant))).
		Set("id", id)
	first, _ := runStep(ctx, ex, tableCommande, engine.NewStatement(updateCommande, header))

	detail := engine.NewFieldMap().
		Set("nbExemplaire", field(req.Fields, FieldNbExemplaire)).
		Set("idLivreDvd", field(req.Fields, FieldIdLivreDvd)).
		Set("idSuivi", field(req.Fields, FieldIdSuivi)).
		Set("id", id)
	second, _ := runStep(ctx, ex, tableCommandeDocument, engine.NewStatement(updateCommandeDoc, detail))

	return foldFlag(ResourceCommandeDocModifier, first, second)
}

// ============================================================
// REMOVE
// ============================================================

// removeOrder deletes the detail row then the header and returns the sum of
// both counts. A failed step counts as zero.
func removeOrder(ctx context.Context, ex *engine.Executor, req engine.Request) (engine.Result, error) {
	if !req.Fields.Has(FieldID) {
		return engine.Absent(), &engine.MissingFieldError{Resource: ResourceCommandeDocSupprimer, Field: FieldID}
	}
	params := engine.NewFieldMap().Set("id", field(req.Fields, FieldID))

	first, _ := runStep(ctx, ex, tableCommandeDocument, engine.NewStatement(deleteCommandeDoc, params))
	second, _ := runStep(ctx, ex, tableCommande, engine.NewStatement(deleteCommande, params))

	total := engine.CountResult(first.Affected + second.Affected)
	if first.Err != nil || second.Err != nil {
		return total, &engine.PartialWriteError{
			Operation: ResourceCommandeDocSupprimer,
			Steps:     []engine.StepOutcome{first, second},
		}
	}
	return total, nil
}

// ============================================================
// HELPERS
// ============================================================

func runStep(ctx context.Context, ex *engine.Executor, table string, stmt engine.Statement) (engine.StepOutcome, engine.ExecResult) {
	res, err := ex.Execute(ctx, stmt)
	step := engine.StepOutcome{Table: table, Affected: res.RowsAffected, Err: err}
	ex.Tracef("step %s: affected=%d ok=%t", table, step.Affected, step.Succeeded())
	return step, res
}

// foldFlag succeeds only when both steps affected at least one row
func foldFlag(operation string, first, second engine.StepOutcome) (engine.Result, error) {
	if first.Succeeded() && second.Succeeded() {
		return engine.FlagResult(true), nil
	}
	return engine.FlagResult(false), &engine.PartialWriteError{
		Operation: operation,
		Steps:     []engine.StepOutcome{first, second},
	}
}

// field returns the named value, NULL when absent
func field(fields *engine.FieldMap, name string) engine.Value {
	v, _ := fields.Get(name)
	return v
}

// amount binds a money value as a decimal when it parses as one
func amount(v engine.Value) engine.Value {
	switch v.Kind() {
	case engine.KindText:
		if d, err := decimal.NewFromString(v.Any().(string)); err == nil {
			return engine.Decimal(d)
		}
	case engine.KindFloat:
		return engine.Decimal(decimal.NewFromFloat(v.Any().(float64)))
	case engine.KindInt:
		return engine.Decimal(decimal.NewFromInt(v.Any().(int64)))
	}
	return v
}
