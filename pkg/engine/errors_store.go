package engine

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	mssql "github.com/microsoft/go-mssqldb"
)

// mapStoreError wraps a driver failure into a *StoreError.
// Returns nil when err is nil.
func mapStoreError(err error, operation string, stmt Statement) error {
	if err == nil {
		return nil
	}
	var already *StoreError
	if errors.As(err, &already) {
		return err
	}

	kind, detail := classifyStoreError(err)
	return &StoreError{
		Operation: operation,
		Statement: stmt.SQL,
		Kind:      kind,
		Detail:    detail,
		Err:       err,
	}
}

func classifyStoreError(err error) (StoreErrorKind, string) {
	// See: https://www.postgresql.org/docs/current/errcodes-appendix.html
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return StoreUniqueViolation, extractFieldFromDetail(pgErr.Detail)
		case "23503":
			return StoreForeignKey, extractFieldFromDetail(pgErr.Detail)
		case "23502":
			field := pgErr.ColumnName
			if field == "" {
				field = extractQuoted(pgErr.Message)
			}
			return StoreNotNull, field
		case "23514":
			return StoreCheck, pgErr.ConstraintName
		case "42P01":
			return StoreUndefinedTable, extractQuoted(pgErr.Message)
		case "42703":
			return StoreUndefinedColumn, extractQuoted(pgErr.Message)
		}
		if strings.HasPrefix(pgErr.Code, "08") {
			return StoreConnection, ""
		}
		return StoreUnknown, ""
	}

	// See: https://dev.mysql.com/doc/mysql-errors/8.0/en/server-error-reference.html
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1062:
			return StoreUniqueViolation, extractQuoted(myErr.Message)
		case 1451, 1452:
			return StoreForeignKey, ""
		case 1048, 1364:
			return StoreNotNull, extractQuoted(myErr.Message)
		case 3819:
			return StoreCheck, extractQuoted(myErr.Message)
		case 1146:
			return StoreUndefinedTable, extractQuoted(myErr.Message)
		case 1054:
			return StoreUndefinedColumn, extractQuoted(myErr.Message)
		}
		return StoreUnknown, ""
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		msg := liteErr.Error()
		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return StoreUniqueViolation, afterColon(msg)
		case sqlite3.ErrConstraintForeignKey:
			return StoreForeignKey, ""
		case sqlite3.ErrConstraintNotNull:
			return StoreNotNull, afterColon(msg)
		case sqlite3.ErrConstraintCheck:
			return StoreCheck, afterColon(msg)
		}
		switch {
		case strings.HasPrefix(msg, "no such table"):
			return StoreUndefinedTable, afterColon(msg)
		case strings.HasPrefix(msg, "no such column"), strings.Contains(msg, "has no column named"):
			return StoreUndefinedColumn, lastWord(msg)
		}
		return StoreUnknown, ""
	}

	// See: https://learn.microsoft.com/sql/relational-databases/errors-events/database-engine-events-and-errors
	var msErr mssql.Error
	if errors.As(err, &msErr) {
		switch msErr.Number {
		case 2601, 2627:
			return StoreUniqueViolation, ""
		case 547:
			return StoreForeignKey, ""
		case 515:
			return StoreNotNull, extractQuoted(msErr.Message)
		case 208:
			return StoreUndefinedTable, extractQuoted(msErr.Message)
		case 207:
			return StoreUndefinedColumn, extractQuoted(msErr.Message)
		}
		return StoreUnknown, ""
	}

	var netErr net.Error
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) || errors.As(err, &netErr) {
		return StoreConnection, ""
	}

	return StoreUnknown, ""
}

// ============================================================
// HELPER FUNCTIONS - Extract info from driver messages
// ============================================================

// extractFieldFromDetail extracts field name from error detail
// Input: "Key (email)=(test@mail.com) already exists."
// Output: "email"
func extractFieldFromDetail(detail string) string {
	start := strings.Index(detail, "(")
	end := strings.Index(detail, ")")
	if start >= 0 && end > start {
		return detail[start+1 : end]
	}
	return ""
}

// extractQuoted returns the first quoted token of a message
// Input: 'column "unknown_field" of relation "users" does not exist'
// Output: "unknown_field"
func extractQuoted(message string) string {
	for _, q := range []string{`"`, "'", "`"} {
		start := strings.Index(message, q)
		if start < 0 {
			continue
		}
		end := strings.Index(message[start+1:], q)
		if end >= 0 {
			return message[start+1 : start+1+end]
		}
	}
	return ""
}

// afterColon returns the text after the first ": ", trimmed
// Input: "NOT NULL constraint failed: commande.montant"
// Output: "commande.montant"
func afterColon(message string) string {
	if i := strings.Index(message, ": "); i >= 0 {
		return strings.TrimSpace(message[i+2:])
	}
	return ""
}

func lastWord(message string) string {
	fields := strings.Fields(message)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}
