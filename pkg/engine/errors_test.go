package engine

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestSentinelErrors(t *testing.T) {
	if ErrNoConnection.Code() != "NO_CONNECTION" {
		t.Errorf("Expected code NO_CONNECTION, got %s", ErrNoConnection.Code())
	}
	if ErrUnroutableVerb.Code() != "UNROUTABLE_VERB" {
		t.Errorf("Expected code UNROUTABLE_VERB, got %s", ErrUnroutableVerb.Code())
	}

	wrapped := fmt.Errorf("dispatch: %w", ErrNoConnection)
	if !errors.Is(wrapped, ErrNoConnection) {
		t.Error("Expected wrapped error to match ErrNoConnection")
	}
	if ErrorCode(wrapped) != "NO_CONNECTION" {
		t.Errorf("Expected code through wrapping, got %s", ErrorCode(wrapped))
	}
}

func TestMissingFieldError(t *testing.T) {
	err := &MissingFieldError{Resource: "commandeDocAjout", Field: "IdSuivi"}

	errMsg := err.Error()
	if !strings.Contains(errMsg, "IdSuivi") {
		t.Errorf("Error message should contain field name")
	}
	if !strings.Contains(errMsg, "commandeDocAjout") {
		t.Errorf("Error message should contain resource")
	}
	if err.Code() != "MISSING_FIELD" {
		t.Errorf("Expected code MISSING_FIELD, got %s", err.Code())
	}

	var _ EngineError = err
}

func TestPreconditionErrorCodes(t *testing.T) {
	tests := []struct {
		err  EngineError
		code string
		want string
	}{
		{&EmptyFieldsError{Table: "genre", Operation: "insert"}, "EMPTY_FIELDS", "genre"},
		{&MissingIdentifierError{Table: "genre"}, "MISSING_IDENTIFIER", "genre"},
		{&InvalidIdentifierError{Identifier: "a b", Role: "column"}, "INVALID_IDENTIFIER", "a b"},
	}

	for _, tt := range tests {
		if tt.err.Code() != tt.code {
			t.Errorf("Expected code %s, got %s", tt.code, tt.err.Code())
		}
		if !strings.Contains(tt.err.Error(), tt.want) {
			t.Errorf("Expected %q in %q", tt.want, tt.err.Error())
		}
	}
}

func TestStoreError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := mapStoreError(cause, "execute", NewStatement("delete from livre where id=:id", nil))

	var store *StoreError
	if !errors.As(err, &store) {
		t.Fatalf("Expected *StoreError, got %T", err)
	}
	if !errors.Is(err, cause) {
		t.Error("Expected the driver error to stay reachable")
	}
	assert.Equal(t, StoreUnknown, store.Kind)
	assert.Equal(t, "delete from livre where id=:id", store.Statement)
	assert.Equal(t, "STORE_ERROR", store.Code())
}

func TestMapStoreError_Nil(t *testing.T) {
	if mapStoreError(nil, "query", Statement{}) != nil {
		t.Error("Expected nil for nil error")
	}
}

func TestMapStoreError_DoesNotDoubleWrap(t *testing.T) {
	inner := &StoreError{Operation: "query", Kind: StoreConnection}
	if got := mapStoreError(inner, "execute", Statement{}); got != inner {
		t.Errorf("Expected the same StoreError back, got %v", got)
	}
}

func TestClassifyPostgres(t *testing.T) {
	tests := []struct {
		name   string
		pgErr  *pgconn.PgError
		kind   StoreErrorKind
		detail string
	}{
		{"unique", &pgconn.PgError{Code: "23505", Detail: "Key (id)=(00017) already exists."}, StoreUniqueViolation, "id"},
		{"foreign key", &pgconn.PgError{Code: "23503", Detail: "Key (idsuivi)=(9) is not present in table \"suivi\"."}, StoreForeignKey, "idsuivi"},
		{"not null", &pgconn.PgError{Code: "23502", ColumnName: "montant"}, StoreNotNull, "montant"},
		{"undefined table", &pgconn.PgError{Code: "42P01", Message: `relation "livres" does not exist`}, StoreUndefinedTable, "livres"},
		{"undefined column", &pgconn.PgError{Code: "42703", Message: `column "titr" does not exist`}, StoreUndefinedColumn, "titr"},
		{"connection", &pgconn.PgError{Code: "08006"}, StoreConnection, ""},
		{"other", &pgconn.PgError{Code: "XX000"}, StoreUnknown, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, detail := classifyStoreError(fmt.Errorf("wrapped: %w", tt.pgErr))
			assert.Equal(t, tt.kind, kind)
			assert.Equal(t, tt.detail, detail)
		})
	}
}

func TestClassifyMySQL(t *testing.T) {
	tests := []struct {
		number uint16
		msg    string
		kind   StoreErrorKind
		detail string
	}{
		{1062, "Duplicate entry '00017' for key 'PRIMARY'", StoreUniqueViolation, "00017"},
		{1452, "Cannot add or update a child row", StoreForeignKey, ""},
		{1048, "Column 'montant' cannot be null", StoreNotNull, "montant"},
		{1146, "Table 'mediatek86.livres' doesn't exist", StoreUndefinedTable, "mediatek86.livres"},
		{1054, "Unknown column 'titr' in 'field list'", StoreUndefinedColumn, "titr"},
		{1205, "Lock wait timeout exceeded", StoreUnknown, ""},
	}

	for _, tt := range tests {
		kind, detail := classifyStoreError(&mysql.MySQLError{Number: tt.number, Message: tt.msg})
		if kind != tt.kind || detail != tt.detail {
			t.Errorf("MySQL %d: got (%s, %q), want (%s, %q)", tt.number, kind, detail, tt.kind, tt.detail)
		}
	}
}

func TestPartialWriteError(t *testing.T) {
	stepErr := &StoreError{Operation: "execute", Kind: StoreForeignKey}
	err := &PartialWriteError{
		Operation: "commandeDocAjout",
		Steps: []StepOutcome{
			{Table: "commande", Affected: 1},
			{Table: "commandedocument", Err: stepErr},
		},
	}

	assertContains(t, err.Error(), "commande ok (1)")
	assertContains(t, err.Error(), "commandedocument failed")
	assert.Equal(t, "PARTIAL_WRITE", err.Code())

	var store *StoreError
	if !errors.As(err, &store) {
		t.Error("Expected step error to be reachable through errors.As")
	}
	assert.True(t, err.Steps[0].Succeeded())
	assert.False(t, err.Steps[1].Succeeded())
}

func TestFormatError(t *testing.T) {
	if FormatError(nil) != "" {
		t.Error("Expected empty output for nil")
	}

	out := FormatError(&MissingFieldError{Resource: "commandeDocModifier", Field: "Id"})
	assertContains(t, out, "Error: ")
	assertContains(t, out, "MISSING_FIELD")
	assertContains(t, out, "Provide a value for Id")

	out = FormatError(ErrUnroutableVerb)
	assertContains(t, out, "GET, POST, PUT or DELETE")
}
