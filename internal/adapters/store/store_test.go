package store_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	"go.trai.ch/cmdrule/internal/adapters/store"
	"go.trai.ch/cmdrule/internal/core/domain"
)

func fullRecord() *domain.CustomCommand {
	var snap domain.PolicySnapshot
	cc := domain.NewCustomCommand(snap.With(domain.PolicyParallelCommands, domain.PolicyOld))
	cc.SetOutputs([]string{"parser.c", "parser.h"})
	cc.SetByproducts([]string{"parser.log"})
	cc.SetDepends([]string{"grammar.y"})
	cc.SetMainDependency("")
	cc.AppendCommands(domain.CommandLines{
		domain.NewCommandLine("bison", "-d", "grammar.y"),
		domain.NewCommandLine("touch", "parser.log"),
	})
	cc.SetWorkingDirectory("gen")
	cc.SetComment("")
	cc.AppendImplicitDepends(domain.ImplicitDepends{{Path: "tokens.h", Language: "C"}})
	cc.SetBacktrace(domain.Backtrace{}.
		Push(domain.Frame{File: domain.NewInternedString("cmdrule.yaml"), Line: 5, Command: "subdirectory"}).
		Push(domain.Frame{File: domain.NewInternedString("gen/cmdrule.yaml"), Line: 2, Command: "rule"}))
	cc.SetTarget("parser")
	cc.SetRole("pre-build")
	cc.SetDepfile("parser.d")
	cc.SetJobPool("gen")
	cc.SetEscapeOldStyle(false)
	cc.SetUsesTerminal(true)
	cc.SetCodegen(true)
	return cc
}

func storeFile(t *testing.T, root string) string {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(root, domain.DefaultStorePath()))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	return filepath.Join(root, domain.DefaultStorePath(), entries[0].Name())
}

func TestStore_PutGet(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	s := store.NewStore()

	synth := domain.NewSynthesizedCommand()
	synth.SetOutput("stamp")

	records := []*domain.CustomCommand{fullRecord(), synth}
	require.NoError(t, s.Put(root, "parser", records))

	got, err := s.Get(root, "parser")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, records[0].Equal(got[0]), "full record round-trips")
	assert.True(t, records[1].Equal(got[1]), "synthesized record round-trips")
	assert.True(t, got[1].Synthesized())
	assert.False(t, got[1].HasComment())
	assert.Equal(t, domain.PolicyOld, got[0].PolicyStatus(domain.PolicyParallelCommands))
}

func TestStore_Overwrite(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	s := store.NewStore()

	require.NoError(t, s.Put(root, "gen", []*domain.CustomCommand{fullRecord()}))
	require.NoError(t, s.Put(root, "gen", nil))

	got, err := s.Get(root, "gen")
	require.NoError(t, err)
	assert.Empty(t, got)
	storeFile(t, root)
}

func TestStore_GetMissing(t *testing.T) {
	t.Parallel()

	got, err := store.NewStore().Get(t.TempDir(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_GetCorrupt(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	s := store.NewStore()
	require.NoError(t, s.Put(root, "gen", []*domain.CustomCommand{fullRecord()}))

	//nolint:gosec // 0600 is fine for test
	require.NoError(t, os.WriteFile(storeFile(t, root), []byte{0xc1, 0x00}, 0o600))

	_, err := s.Get(root, "gen")
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrStoreUnmarshalFailed.Error())
}

func TestStore_SchemaMismatch(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	s := store.NewStore()
	require.NoError(t, s.Put(root, "gen", nil))

	data, err := msgpack.Marshal(map[string]any{"schema": 99, "target": "gen"})
	require.NoError(t, err)
	//nolint:gosec // 0600 is fine for test
	require.NoError(t, os.WriteFile(storeFile(t, root), data, 0o600))

	_, err = s.Get(root, "gen")
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrStoreSchemaMismatch.Error())
}
