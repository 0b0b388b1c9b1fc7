package engine_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediatek86/catalog/pkg/engine"
	"github.com/mediatek86/catalog/pkg/engine/enginetest"
)

type memoryJournal struct {
	entries []engine.JournalEntry
}

func (m *memoryJournal) Record(entry engine.JournalEntry) error {
	m.entries = append(m.entries, entry)
	return nil
}

func strPtr(s string) *string { return &s }

func TestDemande_NoConnection(t *testing.T) {
	rec := enginetest.Disconnected()
	eng := engine.New(rec, nil)

	for _, method := range []string{"GET", "POST", "PUT", "DELETE", "PATCH"} {
		res, err := eng.Demande(context.Background(), method, "livre", nil, engine.MustFields("id", "1"))
		assert.True(t, res.IsAbsent(), method)
		assert.ErrorIs(t, err, engine.ErrNoConnection, method)
	}
	assert.Empty(t, rec.Calls(), "no SQL may be attempted without a connection")
}

func TestDemande_NilPrimitive(t *testing.T) {
	eng := engine.New(nil, nil)

	res, err := eng.Demande(context.Background(), "GET", "genre", nil, nil)
	assert.True(t, res.IsAbsent())
	assert.ErrorIs(t, err, engine.ErrNoConnection)
	assert.False(t, eng.IsConnected())
}

func TestDemande_UnroutableVerb(t *testing.T) {
	rec := enginetest.NewRecorder()
	eng := engine.New(rec, nil)

	res, err := eng.Demande(context.Background(), "PATCH", "livre", nil, nil)
	assert.True(t, res.IsAbsent())
	assert.ErrorIs(t, err, engine.ErrUnroutableVerb)
	assert.Equal(t, "UNROUTABLE_VERB", engine.ErrorCode(err))
	assert.Empty(t, rec.Calls())

	res, err = eng.Demande(context.Background(), "get", "livre", nil, nil)
	assert.True(t, res.IsAbsent())
	assert.ErrorIs(t, err, engine.ErrUnroutableVerb)
}

func TestDispatch_InvalidVerb(t *testing.T) {
	eng := engine.New(enginetest.NewRecorder(), nil)

	res, err := eng.Dispatch(context.Background(), engine.Request{Verb: engine.Verb(12), Resource: "livre"})
	assert.True(t, res.IsAbsent())
	assert.ErrorIs(t, err, engine.ErrUnroutableVerb)
}

func TestDemande_UnknownResourceFallsThrough(t *testing.T) {
	rec := enginetest.NewRecorder().OnQuery([]engine.Row{{"id": "1"}}, nil)
	eng := engine.New(rec, engine.NewRegistry())

	res, err := eng.Demande(context.Background(), "GET", "fournisseur", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, engine.ResultRows, res.Kind)
	assert.Len(t, res.Rows, 1)
	assert.Equal(t, []string{"select * from fournisseur"}, rec.SQL())
}

func TestDemande_EmptyReadIsNotAbsent(t *testing.T) {
	eng := engine.New(enginetest.NewRecorder(), nil)

	res, err := eng.Demande(context.Background(), "GET", "livre", nil, engine.MustFields("id", "nope"))
	require.NoError(t, err)
	assert.False(t, res.IsAbsent())
	assert.Empty(t, res.Rows)
}

func TestDemande_DeleteLivre(t *testing.T) {
	rec := enginetest.NewRecorder().OnExecute(1, nil)
	eng := engine.New(rec, nil)

	res, err := eng.Demande(context.Background(), "DELETE", "livre", nil, engine.MustFields("id", "7"))
	require.NoError(t, err)
	assert.Equal(t, engine.CountResult(1), res)

	calls := rec.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "delete from livre where id=:id", calls[0].Statement.SQL)
	id, ok := calls[0].Param("id")
	require.True(t, ok)
	assert.Equal(t, "7", id.Any())
}

func TestDemande_EmptyWritesTouchNothing(t *testing.T) {
	rec := enginetest.NewRecorder()
	eng := engine.New(rec, nil)

	for _, method := range []string{"POST", "DELETE"} {
		res, err := eng.Demande(context.Background(), method, "genre", nil, nil)
		assert.True(t, res.IsAbsent(), method)
		var empty *engine.EmptyFieldsError
		assert.ErrorAs(t, err, &empty, method)
	}
	assert.Empty(t, rec.Calls())
}

func TestDemande_UpdateWithoutIdentifier(t *testing.T) {
	rec := enginetest.NewRecorder()
	eng := engine.New(rec, nil)

	res, err := eng.Demande(context.Background(), "PUT", "genre", nil, engine.MustFields("libelle", "Policier"))
	assert.True(t, res.IsAbsent())
	var missing *engine.MissingIdentifierError
	assert.ErrorAs(t, err, &missing)
	assert.Empty(t, rec.Calls())
}

func TestDemande_UpdateWithIdentifier(t *testing.T) {
	rec := enginetest.NewRecorder().OnExecute(1, nil)
	eng := engine.New(rec, nil)

	res, err := eng.Demande(context.Background(), "PUT", "genre", strPtr("10000"), engine.MustFields("libelle", "Policier"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Count)
	assert.Equal(t, []string{"update genre set libelle=:libelle where id=:id"}, rec.SQL())
}

func TestDemande_StoreFailureIsAbsent(t *testing.T) {
	rec := enginetest.NewRecorder().OnQuery(nil, errors.New("driver exploded"))
	eng := engine.New(rec, nil)

	res, err := eng.Demande(context.Background(), "GET", "livre", nil, nil)
	assert.True(t, res.IsAbsent())

	var store *engine.StoreError
	require.ErrorAs(t, err, &store)
	assert.Equal(t, "query", store.Operation)
}

func TestDispatch_SpecialRoute(t *testing.T) {
	called := false
	reg := engine.NewRegistry()
	reg.MustRegister(engine.Route{
		Verb:     engine.VerbRead,
		Resource: "genre",
		Category: engine.CategoryLookup,
		Handler: func(ctx context.Context, ex *engine.Executor, req engine.Request) (engine.Result, error) {
			called = true
			return engine.RowsResult(nil), nil
		},
	})
	rec := enginetest.NewRecorder()
	eng := engine.New(rec, reg)

	_, err := eng.Demande(context.Background(), "GET", "genre", nil, nil)
	require.NoError(t, err)
	assert.True(t, called)
	assert.Empty(t, rec.Calls())
}

func TestDispatch_JournalRecordsWritesOnly(t *testing.T) {
	j := &memoryJournal{}
	eng := engine.New(enginetest.NewRecorder(), nil, engine.WithJournal(j))
	ctx := context.Background()

	_, _ = eng.Demande(ctx, "GET", "genre", nil, nil)
	_, _ = eng.Demande(ctx, "POST", "genre", nil, engine.MustFields("id", "1", "libelle", "x"))
	_, _ = eng.Demande(ctx, "DELETE", "genre", nil, nil)

	require.Len(t, j.entries, 2)
	assert.Equal(t, engine.VerbCreate, j.entries[0].Verb)
	assert.Equal(t, "ok", j.entries[0].Outcome())
	assert.NotEmpty(t, j.entries[0].RequestID)
	assert.Equal(t, "error: EMPTY_FIELDS", j.entries[1].Outcome())
	assert.NotEqual(t, j.entries[0].RequestID, j.entries[1].RequestID)
}

func TestDebugContext_PrintsStatements(t *testing.T) {
	var buf bytes.Buffer
	debug := &engine.DebugContext{Level: engine.DebugTrace, Writer: &buf}
	eng := engine.New(enginetest.NewRecorder(), nil, engine.WithDebugContext(debug))

	_, err := eng.Demande(context.Background(), "GET", "livre", nil, engine.MustFields("id", "7"))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "[SQL] select * from livre where id=:id")
	assert.Contains(t, out, `[PARAMS] {id: "7"}`)
	assert.Contains(t, out, "[TRACE]")
}

func TestDebugContext_OffPrintsNothing(t *testing.T) {
	var buf bytes.Buffer
	debug := &engine.DebugContext{Level: engine.DebugOff, Writer: &buf}
	eng := engine.New(enginetest.NewRecorder(), nil, engine.WithDebugContext(debug))

	_, _ = eng.Demande(context.Background(), "GET", "livre", nil, nil)
	assert.Empty(t, buf.String())
}

func TestParseDebugLevel(t *testing.T) {
	assert.Equal(t, engine.DebugSQL, engine.ParseDebugLevel("sql"))
	assert.Equal(t, engine.DebugTrace, engine.ParseDebugLevel("trace"))
	assert.Equal(t, engine.DebugOff, engine.ParseDebugLevel("verbose"))
}
