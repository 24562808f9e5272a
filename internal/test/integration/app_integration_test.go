package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"ksymtypes/internal/core/app"
	"ksymtypes/internal/core/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createKernelTree lays out a small build tree the way kbuild leaves symtypes
// files next to the objects.
func createKernelTree(t *testing.T, root string, listField string) {
	files := map[string]string{
		"lib/list.symtypes": "" +
			"s#list_head struct list_head { s#list_head * next , * prev ; }\n" +
			"list_add void list_add ( s#list_head * , s#list_head * )\n",
		"kernel/task.symtypes": "" +
			"s#list_head struct list_head { s#list_head * next , * prev ; }\n" +
			"s#task struct task { int pid ; s#list_head " + listField + " ; }\n" +
			"t#pid_t typedef int pid_t\n" +
			"task_pid t#pid_t task_pid ( const s#task * )\n",
		"drivers/net/dev.symtypes": "" +
			"s#net_device struct net_device { char name [ 16 ] ; }\n" +
			"register_netdev int register_netdev ( s#net_device * )\n",
	}
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func newApp(t *testing.T) *app.App {
	cfg := config.Default()
	cfg.History.Path = filepath.Join(t.TempDir(), "history.db")
	a, err := app.New(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func consolidateTo(t *testing.T, a *app.App, dir, out string) *app.ConsolidateResult {
	ctx := context.Background()
	res, err := a.Consolidate(ctx, []string{dir})
	require.NoError(t, err)
	require.NoError(t, a.WriteConsolidated(ctx, res, out, nil))
	return res
}

func TestFullPipelineIntegration(t *testing.T) {
	oldDir := t.TempDir()
	newDir := t.TempDir()
	createKernelTree(t, oldDir, "tasks")
	createKernelTree(t, newDir, "children")

	a := newApp(t)
	ctx := context.Background()
	outDir := t.TempDir()
	oldOut := filepath.Join(outDir, "old.symtypes")
	newOut := filepath.Join(outDir, "new.symtypes")

	res := consolidateTo(t, a, oldDir, oldOut)
	assert.Empty(t, res.Skipped)
	assert.Empty(t, res.Conflicts, "list_head is defined identically by both users")
	assert.NoError(t, a.ConsolidateOutcome(res))
	stats := res.Table.Stats()
	assert.Equal(t, 3, stats.Sources)
	assert.Equal(t, 3, stats.Exports)
	consolidateTo(t, a, newDir, newOut)

	// Consolidated files compare the same as the trees they came from.
	fromTrees, err := a.Compare(ctx, oldDir, newDir)
	require.NoError(t, err)
	fromFiles, err := a.Compare(ctx, oldOut, newOut)
	require.NoError(t, err)
	assert.Equal(t, fromTrees, fromFiles)

	require.Len(t, fromFiles.Changed, 1)
	assert.Equal(t, "task_pid", fromFiles.Changed[0].Name)
	assert.Equal(t, "task_pid -> s#task.children", fromFiles.Changed[0].Path.String())
	assert.Empty(t, fromFiles.Added)
	assert.Empty(t, fromFiles.Removed)

	id, err := a.RecordRun(ctx, oldOut, newOut, fromFiles)
	require.NoError(t, err)
	runs, err := a.History(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, id, runs[0].ID)
	assert.Equal(t, 1, runs[0].Changed)
}

func TestReconsolidationIsStable(t *testing.T) {
	root := t.TempDir()
	createKernelTree(t, filepath.Join(root, "a"), "tasks")
	createKernelTree(t, filepath.Join(root, "b"), "children")

	a := newApp(t)
	outDir := t.TempDir()
	first := filepath.Join(outDir, "first.symtypes")
	res := consolidateTo(t, a, root, first)
	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, "s#task", res.Conflicts[0].Key.String())
	assert.Equal(t, [][]string{{"a/kernel/task.symtypes"}, {"b/kernel/task.symtypes"}}, res.Table.Provenance(res.Conflicts[0].Key))
	assert.Empty(t, res.ExportConflicts())

	second := filepath.Join(outDir, "second.symtypes")
	consolidateTo(t, a, first, second)

	firstData, err := os.ReadFile(first)
	require.NoError(t, err)
	secondData, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, string(firstData), string(secondData))
}
