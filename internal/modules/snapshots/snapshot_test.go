package snapshots

import (
	"context"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/aristath/disposition/internal/domain"
	"github.com/aristath/disposition/internal/modules/reporting"
	"github.com/aristath/disposition/internal/modules/simulation"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runExperiment(t *testing.T, seed uint64) *simulation.Result {
	t.Helper()

	exp := simulation.DefaultExperiment()
	exp.ID = "snapshot_test"
	exp.NumInvestors = 3

	runner := simulation.NewRunner(rand.New(rand.NewPCG(seed, seed)), nil, zerolog.Nop())
	res, err := runner.Run(context.Background(), exp)
	require.NoError(t, err)
	return res
}

func TestStore_SaveLoad(t *testing.T) {
	res := runExperiment(t, 11)
	store := NewStore(filepath.Join(t.TempDir(), "snapshots"), zerolog.Nop())

	path, err := store.Save(New(res, 11))
	require.NoError(t, err)
	assert.Equal(t, "snapshot_test_"+res.RunID+Extension, filepath.Base(path))

	loaded, err := store.Load(path)
	require.NoError(t, err)

	assert.Equal(t, FormatVersion, loaded.Version)
	assert.Equal(t, res.RunID, loaded.RunID)
	assert.Equal(t, uint64(11), loaded.Seed)
	assert.True(t, res.FinishedAt.Equal(loaded.CreatedAt))
	assert.Equal(t, res.Experiment, loaded.Experiment)

	want := reporting.FromResult(res)
	assert.Equal(t, want.Investors, loaded.Report.Investors)
	assert.Equal(t, want.Stocks, loaded.Report.Stocks)
	assert.Equal(t, reporting.Summarize(want), loaded.Summary)
}

func TestStore_List(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, zerolog.Nop())

	paths, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, paths)

	first, err := store.Save(New(runExperiment(t, 1), 1))
	require.NoError(t, err)
	second, err := store.Save(New(runExperiment(t, 2), 2))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	paths, err = store.List()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{first, second}, paths)

	missing, err := NewStore(filepath.Join(dir, "nope"), zerolog.Nop()).List()
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestStore_Errors(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, zerolog.Nop())

	_, err := store.Save(Snapshot{})
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	_, err = store.Load(filepath.Join(dir, "missing.msgpack"))
	assert.ErrorIs(t, err, domain.ErrFixture)

	garbage := filepath.Join(dir, "garbage.msgpack")
	require.NoError(t, os.WriteFile(garbage, []byte{0xc1, 0x00}, 0644))
	_, err = store.Load(garbage)
	assert.ErrorIs(t, err, domain.ErrFixture)

	snap := New(runExperiment(t, 3), 3)
	snap.Version = FormatVersion + 1
	path, err := store.Save(snap)
	require.NoError(t, err)
	_, err = store.Load(path)
	assert.ErrorIs(t, err, domain.ErrFixture)
	assert.Contains(t, err.Error(), "unsupported version")
}
