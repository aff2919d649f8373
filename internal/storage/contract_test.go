package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trustregistry/internal/domain"
)

func boolPtr(v bool) *bool { return &v }

func testRecord(t *testing.T, entity string) domain.TrustRecord {
	t.Helper()
	rec, err := domain.NewTrustRecord(
		domain.EntityID(entity),
		"did:example:authority",
		"issue",
		"credential",
		boolPtr(true),
		boolPtr(true),
		domain.EmptyContext(),
	)
	require.NoError(t, err)
	return rec
}

// runAdminRepositoryContract exercises the behavior every read-write backend
// must share: key uniqueness, full-replacement updates, the read/find miss
// split, and the create/read/update/list/delete lifecycle.
func runAdminRepositoryContract(t *testing.T, newRepo func(t *testing.T) AdminRepository) {
	ctx := context.Background()

	t.Run("create then read round trip", func(t *testing.T) {
		repo := newRepo(t)
		rec := testRecord(t, "did:example:e1")
		require.NoError(t, repo.Create(ctx, rec))

		got, err := repo.Read(ctx, rec.Query())
		require.NoError(t, err)
		assert.Equal(t, rec.Query(), got.Query())
		assert.True(t, got.IsRecognized())
		assert.True(t, got.IsAuthorized())
	})

	t.Run("create duplicate key fails", func(t *testing.T) {
		repo := newRepo(t)
		rec := testRecord(t, "did:example:e1")
		require.NoError(t, repo.Create(ctx, rec))
		assert.ErrorIs(t, repo.Create(ctx, rec), ErrRecordAlreadyExists)
	})

	t.Run("update replaces wholesale", func(t *testing.T) {
		repo := newRepo(t)
		rec := testRecord(t, "did:example:e1")
		require.NoError(t, repo.Create(ctx, rec))

		updated := rec
		updated.Recognized = boolPtr(false)
		updated.Authorized = nil
		require.NoError(t, repo.Update(ctx, updated))

		got, err := repo.Read(ctx, rec.Query())
		require.NoError(t, err)
		require.NotNil(t, got.Recognized)
		assert.False(t, *got.Recognized)
		assert.Nil(t, got.Authorized, "absent field must be dropped, not preserved")
	})

	t.Run("update missing key fails", func(t *testing.T) {
		repo := newRepo(t)
		assert.ErrorIs(t, repo.Update(ctx, testRecord(t, "did:example:ghost")), ErrRecordNotFound)
	})

	t.Run("delete missing key fails", func(t *testing.T) {
		repo := newRepo(t)
		assert.ErrorIs(t, repo.Delete(ctx, testRecord(t, "did:example:ghost").Query()), ErrRecordNotFound)
	})

	t.Run("read missing key fails", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Read(ctx, testRecord(t, "did:example:ghost").Query())
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})

	t.Run("find by query miss is nil not error", func(t *testing.T) {
		repo := newRepo(t)
		got, err := repo.FindByQuery(ctx, testRecord(t, "did:example:ghost").Query())
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("full lifecycle", func(t *testing.T) {
		repo := newRepo(t)
		rec, err := domain.NewTrustRecord("E1", "A1", "act1", "res1", boolPtr(true), boolPtr(true), domain.EmptyContext())
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, rec))

		got, err := repo.Read(ctx, rec.Query())
		require.NoError(t, err)
		assert.True(t, got.IsRecognized())
		assert.True(t, got.IsAuthorized())

		updated := got
		updated.Recognized = boolPtr(false)
		require.NoError(t, repo.Update(ctx, updated))

		got, err = repo.Read(ctx, rec.Query())
		require.NoError(t, err)
		require.NotNil(t, got.Recognized)
		assert.False(t, *got.Recognized)

		records, err := repo.List(ctx)
		require.NoError(t, err)
		matches := 0
		for _, r := range records {
			if r.Query() == rec.Query() {
				matches++
			}
		}
		assert.Equal(t, 1, matches)

		require.NoError(t, repo.Delete(ctx, rec.Query()))
		_, err = repo.Read(ctx, rec.Query())
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})
}
