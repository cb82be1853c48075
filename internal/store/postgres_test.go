package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/GrayGhostDev/lead-generator/internal/model"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func newMockStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return &PostgresStore{pool: mock}, mock
}

func TestPostgres_Migrate(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS runs").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_CreateRun(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO runs").
		WithArgs(pgxmock.AnyArg(), string(model.RunStatusRunning), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	run, err := s.CreateRun(context.Background(), []string{"manual.csv"})
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusRunning, run.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_CompleteRunFailure(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("UPDATE runs SET status").
		WithArgs(string(model.RunStatusFailed), pgxmock.AnyArg(), assert.AnError.Error(), pgxmock.AnyArg(), "run-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, s.CompleteRun(context.Background(), "run-1", nil, assert.AnError))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetRun(t *testing.T) {
	s, mock := newMockStore(t)

	now := time.Now().UTC()
	summary, err := json.Marshal(model.RunSummary{LeadsTotal: 2, LeadsQualified: 1})
	require.NoError(t, err)

	mock.ExpectQuery("SELECT id, status, inputs, summary, error, created_at, updated_at FROM runs").
		WithArgs("run-1").
		WillReturnRows(pgxmock.NewRows(
			[]string{"id", "status", "inputs", "summary", "error", "created_at", "updated_at"},
		).AddRow("run-1", model.RunStatusComplete, []byte(`["manual.csv"]`), summary, (*string)(nil), now, now))

	run, err := s.GetRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, run.Status)
	assert.Equal(t, []string{"manual.csv"}, run.Inputs)
	require.NotNil(t, run.Summary)
	assert.Equal(t, 2, run.Summary.LeadsTotal)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetRunNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("SELECT id, status, inputs, summary, error, created_at, updated_at FROM runs").
		WithArgs("absent").
		WillReturnRows(pgxmock.NewRows([]string{"id", "status", "inputs", "summary", "error", "created_at", "updated_at"}))

	_, err := s.GetRun(context.Background(), "absent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestPostgres_ListRunsWithStatusAndLimit(t *testing.T) {
	s, mock := newMockStore(t)

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT id, status, inputs, summary, error, created_at, updated_at FROM runs WHERE status").
		WithArgs(string(model.RunStatusComplete), 5).
		WillReturnRows(pgxmock.NewRows(
			[]string{"id", "status", "inputs", "summary", "error", "created_at", "updated_at"},
		).AddRow("run-1", model.RunStatusComplete, []byte(nil), []byte(nil), (*string)(nil), now, now))

	runs, err := s.ListRuns(context.Background(), RunFilter{Status: model.RunStatusComplete, Limit: 5})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "run-1", runs[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_SaveContact(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO contacts").
		WithArgs(pgxmock.AnyArg(), "jane@acme.com", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.SaveContact(context.Background(), model.Contact{
		FullName: "Jane Doe", Email: "jane@acme.com", Source: model.SourceEnrichment,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ListContacts(t *testing.T) {
	s, mock := newMockStore(t)

	data, err := json.Marshal(model.Contact{FullName: "Jane Doe", Email: "jane@acme.com"})
	require.NoError(t, err)

	mock.ExpectQuery("SELECT data FROM contacts").
		WillReturnRows(pgxmock.NewRows([]string{"data"}).AddRow(data))

	contacts, err := s.ListContacts(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, "Jane Doe", contacts[0].FullName)
}

func TestPostgres_SaveLeadsCopy(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectCopyFrom(
		pgx.Identifier{"output_leads"},
		[]string{"id", "run_id", "identity_key", "email", "score", "qualified", "data", "created_at"},
	).WillReturnResult(2)

	leads := []model.MergedLead{
		{Contact: model.Contact{FullName: "Jane Doe"}, IdentityKey: "jane doe|acme.com", QualificationScore: 0.97, Qualified: true},
		{Contact: model.Contact{FullName: "Sam Rivera"}, IdentityKey: "sam rivera|example llc", QualificationScore: 0.21},
	}
	require.NoError(t, s.SaveLeads(context.Background(), "run-1", leads))
	assert.NoError(t, mock.ExpectationsWereMet())
}
