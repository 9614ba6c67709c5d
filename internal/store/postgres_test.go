package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadgen-cli/internal/model"
)

func newMockStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresFromPool(mock), mock
}

func leadDoc(t *testing.T, lead *model.Lead) string {
	t.Helper()
	doc, err := json.Marshal(lead)
	require.NoError(t, err)
	return string(doc)
}

func TestPostgresMigrate(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS leads").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, st.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSaveLead(t *testing.T) {
	st, mock := newMockStore(t)
	lead := testLead("l1", "plumbers in austin", 50)

	mock.ExpectExec("INSERT INTO leads").
		WithArgs(lead.ID, lead.SearchKey, leadDoc(t, lead), lead.CreatedAt.UTC()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, st.SaveLead(context.Background(), lead))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetLead(t *testing.T) {
	st, mock := newMockStore(t)
	lead := testLead("l1", "k", 7)

	mock.ExpectQuery("SELECT doc FROM leads WHERE id").
		WithArgs("l1").
		WillReturnRows(pgxmock.NewRows([]string{"doc"}).AddRow(leadDoc(t, lead)))

	got, err := st.GetLead(context.Background(), "l1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, lead.Business, got.Business)
	assert.Equal(t, 7, got.Score.General)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetLeadMissing(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery("SELECT doc FROM leads WHERE id").
		WithArgs("nope").
		WillReturnRows(pgxmock.NewRows([]string{"doc"}))

	got, err := st.GetLead(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetLeads(t *testing.T) {
	st, mock := newMockStore(t)
	a := testLead("a", "k", 1)
	b := testLead("b", "k", 2)

	mock.ExpectQuery("SELECT doc FROM leads WHERE id = ANY").
		WithArgs([]string{"a", "b"}).
		WillReturnRows(pgxmock.NewRows([]string{"doc"}).
			AddRow(leadDoc(t, a)).
			AddRow(leadDoc(t, b)))

	leads, err := st.GetLeads(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, leads, 2)
	assert.NoError(t, mock.ExpectationsWereMet())

	// Empty input never reaches the database.
	leads, err = st.GetLeads(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, leads)
}

func TestPostgresSearchRecord(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery("SELECT doc FROM searches WHERE key").
		WithArgs("unknown").
		WillReturnRows(pgxmock.NewRows([]string{"doc"}))

	got, err := st.GetSearch(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Nil(t, got)

	rec := &model.SearchRecord{Key: "k", LeadIDs: []string{"a"}, SearchCount: 3, ResultCount: 1}
	mock.ExpectExec("INSERT INTO searches").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, st.SaveSearch(context.Background(), rec))
	assert.False(t, rec.UpdatedAt.IsZero())

	doc, err := json.Marshal(rec)
	require.NoError(t, err)
	mock.ExpectQuery("SELECT doc FROM searches WHERE key").
		WithArgs("k").
		WillReturnRows(pgxmock.NewRows([]string{"doc"}).AddRow(string(doc)))

	got, err = st.GetSearch(context.Background(), "k")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 3, got.SearchCount)
	assert.Equal(t, []string{"a"}, got.LeadIDs)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListSearches(t *testing.T) {
	st, mock := newMockStore(t)

	docA, _ := json.Marshal(model.SearchRecord{Key: "a"})
	docB, _ := json.Marshal(model.SearchRecord{Key: "b"})
	mock.ExpectQuery("SELECT doc FROM searches ORDER BY updated_at").
		WillReturnRows(pgxmock.NewRows([]string{"doc"}).
			AddRow(string(docA)).
			AddRow(string(docB)))

	recs, err := st.ListSearches(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "a", recs[0].Key)
	assert.NoError(t, mock.ExpectationsWereMet())
}
