package introspect

import "github.com/mediatek86/catalog/pkg/engine"

// Every query aliases its columns to name, type, nullable, pk and dflt.
type dialect struct {
	listTables string
	columns    string
	nullable   func(interface{}) bool
}

var dialects = map[engine.Driver]dialect{
	engine.DriverMySQL: {
		listTables: `
			SELECT table_name AS name
			FROM information_schema.tables
			WHERE table_schema = DATABASE()
			AND table_type = 'BASE TABLE'`,
		columns: `
			SELECT
				column_name AS name,
				data_type AS type,
				is_nullable AS nullable,
				column_key AS pk,
				column_default AS dflt
			FROM information_schema.columns
			WHERE table_schema = DATABASE()
				AND table_name = :table
			ORDER BY ordinal_position`,
		nullable: truthy,
	},
	engine.DriverPostgres: {
		listTables: `
			SELECT table_name AS name
			FROM information_schema.tables
			WHERE table_schema = 'public'
			AND table_type = 'BASE TABLE'`,
		columns:  informationSchemaColumns("c.table_schema = 'public'"),
		nullable: truthy,
	},
	engine.DriverSQLServer: {
		listTables: `
			SELECT table_name AS name
			FROM information_schema.tables
			WHERE table_type = 'BASE TABLE'`,
		columns:  informationSchemaColumns("1 = 1"),
		nullable: truthy,
	},
	engine.DriverSQLite: {
		listTables: `
			SELECT name
			FROM sqlite_master
			WHERE type = 'table'
			AND name NOT LIKE 'sqlite_%'`,
		columns: `
			SELECT
				name,
				type,
				"notnull" AS nullable,
				pk,
				dflt_value AS dflt
			FROM pragma_table_info(:table)
			ORDER BY cid`,
		// sqlite reports "notnull"
		nullable: func(v interface{}) bool { return !truthy(v) },
	},
}

// informationSchemaColumns is the standard catalog query; the primary key
// flag is derived from the table constraints.
func informationSchemaColumns(schemaFilter string) string {
	return `
		SELECT
			c.column_name AS name,
			c.data_type AS type,
			c.is_nullable AS nullable,
			CASE WHEN EXISTS (
				SELECT 1
				FROM information_schema.table_constraints tc
				JOIN information_schema.key_column_usage kcu
					ON tc.constraint_name = kcu.constraint_name
					AND tc.table_schema = kcu.table_schema
				WHERE tc.table_schema = c.table_schema
					AND tc.table_name = c.table_name
					AND tc.constraint_type = 'PRIMARY KEY'
					AND kcu.column_name = c.column_name
			) THEN 1 ELSE 0 END AS pk,
			c.column_default AS dflt
		FROM information_schema.columns c
		WHERE ` + schemaFilter + `
			AND c.table_name = :table
		ORDER BY c.ordinal_position`
}
