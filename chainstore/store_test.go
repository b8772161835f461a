// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainstore

import (
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"

	"github.com/btcspv/spvnode/chaincfg"
	"github.com/btcspv/spvnode/chaincfg/chainhash"
	"github.com/btcspv/spvnode/wire"
)

func testParams() *chaincfg.Params {
	p := chaincfg.TestNet3Params
	return &p
}

func header(prev chainhash.Hash, nonce uint32) wire.BlockHeader {
	return wire.BlockHeader{
		Version:    1,
		PrevBlock:  prev,
		MerkleRoot: chainhash.Hash{byte(nonce)},
		Timestamp:  uint32(time.Now().Unix()),
		Bits:       0x1d00ffff,
		Nonce:      nonce,
	}
}

func TestFreshStoreTipIsGenesis(t *testing.T) {
	params := testParams()
	store, err := New(t.TempDir(), params)
	require.NoError(t, err)
	defer store.Close()

	tip := store.Tip()
	require.Equal(t, int32(0), tip.Height)
	require.Equal(t, params.GenesisHash, tip.Hash)
}

func TestPutHeaderExtendsTip(t *testing.T) {
	params := testParams()
	store, err := New(t.TempDir(), params)
	require.NoError(t, err)
	defer store.Close()

	a := header(params.GenesisHash, 1)
	require.NoError(t, store.PutHeader(a))

	aHash := a.BlockHash()
	stored, err := store.Find(aHash)
	require.NoError(t, err)
	require.Equal(t, int32(1), stored.Height)
	require.Equal(t, aHash, store.Tip().Hash)
}

// TestOrphanAttachment matches the spec's scenario 4: insert B (child of
// A) before A; B sits as an orphan at height 0 and the tip is unchanged.
// Inserting A then attaches B at height 2 and advances the tip to B.
func TestOrphanAttachment(t *testing.T) {
	params := testParams()
	store, err := New(t.TempDir(), params)
	require.NoError(t, err)
	defer store.Close()

	a := header(params.GenesisHash, 1)
	aHash := a.BlockHash()
	b := header(aHash, 2)
	bHash := b.BlockHash()

	require.NoError(t, store.PutHeader(b))

	stored, err := store.Find(bHash)
	require.NoError(t, err)
	require.Equal(t, int32(0), stored.Height)
	require.True(t, store.HasBlock(bHash))
	require.Equal(t, params.GenesisHash, store.Tip().Hash)

	require.NoError(t, store.PutHeader(a))

	stored, err = store.Find(bHash)
	require.NoError(t, err)
	require.Equal(t, int32(2), stored.Height,
		"header after attachment: %s", spew.Sdump(stored))
	require.Equal(t, bHash, store.Tip().Hash)
	require.Equal(t, int32(2), store.Tip().Height)
}

// TestCheckpointEnforcement matches scenario 5: the wrong hash at a
// checkpointed height is rejected; once the checkpoint is removed, the
// same header is accepted.
func TestCheckpointEnforcement(t *testing.T) {
	params := testParams()
	params.Checkpoints = []chaincfg.Checkpoint{
		{Height: 1, Hash: chainhash.Hash{0xaa}},
	}
	store, err := New(t.TempDir(), params)
	require.NoError(t, err)
	defer store.Close()

	wrong := header(params.GenesisHash, 0xdead)
	err = store.PutHeader(wrong)
	var cpErr *CheckpointError
	require.ErrorAs(t, err, &cpErr)
	require.Equal(t, int32(1), cpErr.Height)

	// Find a nonce whose header hashes to the checkpointed value is
	// infeasible to brute-force in a test; instead verify the happy
	// path structurally: a header landing on a height with no
	// checkpoint configured is always accepted.
	params.Checkpoints = nil
	require.NoError(t, store.PutHeader(wrong))
}

func TestTipIsRecent(t *testing.T) {
	params := testParams()
	params.GenesisHeader.Timestamp = uint32(time.Now().Unix())
	params.GenesisHash = params.GenesisHeader.BlockHash()

	store, err := New(t.TempDir(), params)
	require.NoError(t, err)
	defer store.Close()

	require.True(t, store.TipIsRecent(time.Hour))
	require.False(t, store.TipIsRecent(0))
}

func TestReopenLoadsTip(t *testing.T) {
	params := testParams()
	dir := t.TempDir()

	store, err := New(dir, params)
	require.NoError(t, err)
	a := header(params.GenesisHash, 7)
	require.NoError(t, store.PutHeader(a))
	require.NoError(t, store.SaveTip())
	require.NoError(t, store.Close())

	reopened, err := New(dir, params)
	require.NoError(t, err)
	defer reopened.Close()
	require.Equal(t, a.BlockHash(), reopened.Tip().Hash)
	require.Equal(t, int32(1), reopened.Tip().Height)
}
