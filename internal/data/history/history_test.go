package history

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"), 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_SaveAndListRuns(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 2, 13, 10, 0, 0, 0, time.UTC)

	firstID, err := store.SaveRun(ctx, Run{
		Project:   "linux",
		Timestamp: base,
		OldPath:   "v6.1",
		NewPath:   "v6.2",
		Added:     1,
		Symbols: []Symbol{
			{Name: "foo", Change: ChangeAdded},
		},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, firstID)

	secondID, err := store.SaveRun(ctx, Run{
		Project:   "linux",
		Timestamp: base.Add(time.Hour),
		OldPath:   "v6.2",
		NewPath:   "v6.3",
		Removed:   1,
		Changed:   1,
		Symbols: []Symbol{
			{Name: "foo", Change: ChangeRemoved},
			{Name: "bar", Change: ChangeChanged, Path: "bar -> s#S.a"},
		},
	})
	require.NoError(t, err)

	runs, err := store.ListRuns(ctx, "linux", 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, secondID, runs[0].ID)
	assert.Equal(t, firstID, runs[1].ID)
	assert.Equal(t, base.Add(time.Hour), runs[0].Timestamp)
	assert.Equal(t, "v6.3", runs[0].NewPath)
	assert.Equal(t, 2, runs[0].Total())
	assert.Empty(t, runs[0].Symbols)

	limited, err := store.ListRuns(ctx, "linux", 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, secondID, limited[0].ID)

	symbols, err := store.Symbols(ctx, secondID)
	require.NoError(t, err)
	assert.Equal(t, []Symbol{
		{Name: "bar", Change: ChangeChanged, Path: "bar -> s#S.a"},
		{Name: "foo", Change: ChangeRemoved},
	}, symbols)
}

func TestStore_SaveRunUpsertsByID(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	id, err := store.SaveRun(ctx, Run{OldPath: "a", NewPath: "b", Symbols: []Symbol{{Name: "x", Change: ChangeAdded}}})
	require.NoError(t, err)

	_, err = store.SaveRun(ctx, Run{ID: id, OldPath: "a", NewPath: "c", Changed: 1, Symbols: []Symbol{{Name: "y", Change: ChangeChanged}}})
	require.NoError(t, err)

	runs, err := store.ListRuns(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "default", runs[0].Project)
	assert.Equal(t, "c", runs[0].NewPath)

	symbols, err := store.Symbols(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []Symbol{{Name: "y", Change: ChangeChanged}}, symbols)
}

func TestStore_ProjectIsolation(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_, err := store.SaveRun(ctx, Run{Project: "project-a", OldPath: "a", NewPath: "b", Added: 1})
	require.NoError(t, err)
	_, err = store.SaveRun(ctx, Run{Project: "project-b", OldPath: "a", NewPath: "b", Added: 2})
	require.NoError(t, err)

	aRuns, err := store.ListRuns(ctx, "project-a", 0)
	require.NoError(t, err)
	require.Len(t, aRuns, 1)
	assert.Equal(t, 1, aRuns[0].Added)

	bRuns, err := store.ListRuns(ctx, "project-b", 0)
	require.NoError(t, err)
	require.Len(t, bRuns, 1)
	assert.Equal(t, 2, bRuns[0].Added)
}

func TestStore_OpenRejectsDirectoryPath(t *testing.T) {
	_, err := Open(t.TempDir(), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is a directory")
}

func TestStore_OpenRejectsEmptyPath(t *testing.T) {
	_, err := Open("  ", 0)
	require.Error(t, err)
}

func TestStore_OpenCorruptDBPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	require.NoError(t, os.WriteFile(path, []byte("this is not sqlite, just some bytes padding the header"), 0o644))

	_, err := Open(path, 0)
	require.Error(t, err)
}

func TestEnsureSchema_DetectsNewerVersionDrift(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(path, 0)
	require.NoError(t, err)
	defer store.Close()

	_, err = store.db.Exec(`INSERT OR REPLACE INTO schema_migrations(version) VALUES (?)`, SchemaVersion+1)
	require.NoError(t, err)

	db, err := sql.Open(driverName, "file:"+path)
	require.NoError(t, err)
	defer db.Close()

	err = EnsureSchema(db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "newer than supported")
}

func TestIsCorruptError(t *testing.T) {
	assert.True(t, IsCorruptError(errors.New("database disk image is malformed")))
	assert.False(t, IsCorruptError(nil))
}
