package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
)

func newMockedPostgres(t *testing.T, ttl time.Duration) (*Postgres, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS document_cache").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	store, err := newPostgres(context.Background(), mock, ttl, nil)
	require.NoError(t, err)
	return store, mock
}

func TestPostgresPutUpsertsRow(t *testing.T) {
	t.Parallel()

	store, mock := newMockedPostgres(t, 0)

	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	doc := testDocument(now)
	payload, err := json.Marshal(doc)
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO document_cache").
		WithArgs(Fingerprint("black hole", "wikipedia"), "black hole", "wikipedia", payload, now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, store.Put(context.Background(), "black hole", "wikipedia", doc))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetReturnsStoredDocument(t *testing.T) {
	t.Parallel()

	store, mock := newMockedPostgres(t, 0)

	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	doc := testDocument(now)
	payload, err := json.Marshal(doc)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT document, fetched_at FROM document_cache").
		WithArgs(Fingerprint("black hole", "wikipedia")).
		WillReturnRows(pgxmock.NewRows([]string{"document", "fetched_at"}).AddRow(payload, now))

	got, err := store.Get(context.Background(), "black hole", "wikipedia")
	require.NoError(t, err)
	require.Equal(t, doc, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetMissesOnNoRows(t *testing.T) {
	t.Parallel()

	store, mock := newMockedPostgres(t, 0)

	mock.ExpectQuery("SELECT document, fetched_at FROM document_cache").
		WithArgs(Fingerprint("nebula", "esa")).
		WillReturnError(pgx.ErrNoRows)

	_, err := store.Get(context.Background(), "nebula", "esa")
	require.ErrorIs(t, err, ErrMiss)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetMissesOnCorruptRow(t *testing.T) {
	t.Parallel()

	store, mock := newMockedPostgres(t, 0)

	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT document, fetched_at FROM document_cache").
		WithArgs(Fingerprint("nebula", "esa")).
		WillReturnRows(pgxmock.NewRows([]string{"document", "fetched_at"}).AddRow([]byte("{broken"), now))

	_, err := store.Get(context.Background(), "nebula", "esa")
	require.ErrorIs(t, err, ErrMiss)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetMissesOnExpiredRow(t *testing.T) {
	t.Parallel()

	store, mock := newMockedPostgres(t, time.Hour)

	written := time.Now().UTC().Add(-2 * time.Hour)
	payload, err := json.Marshal(testDocument(written))
	require.NoError(t, err)

	mock.ExpectQuery("SELECT document, fetched_at FROM document_cache").
		WithArgs(Fingerprint("quasar", "nasa")).
		WillReturnRows(pgxmock.NewRows([]string{"document", "fetched_at"}).AddRow(payload, written))

	_, err = store.Get(context.Background(), "quasar", "nasa")
	require.ErrorIs(t, err, ErrMiss)
	require.NoError(t, mock.ExpectationsWereMet())
}
