// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"github.com/btcspv/spvnode/chaincfg/chainhash"
	"github.com/btcspv/spvnode/wire"
)

// Checkpoint identifies a known-good point in the block chain. The chain
// store refuses to accept a header at a checkpointed height whose hash
// doesn't match.
type Checkpoint struct {
	Height int32
	Hash   chainhash.Hash
}

// Params defines a Bitcoin network by the parameters an SPV client needs to
// talk to it and validate the headers it receives: the wire magic, the
// default peer port, where to find peers, and the chain's starting point
// and checkpoints.
type Params struct {
	// Name is a human-readable identifier for the network.
	Name string

	// Net is the magic value exchanged in every message header.
	Net wire.BitcoinNet

	// DefaultPort is the default peer-to-peer TCP port.
	DefaultPort string

	// DNSSeeds lists hostnames that resolve to a set of active peer
	// addresses for this network.
	DNSSeeds []string

	// GenesisHeader is the header of block 0.
	GenesisHeader wire.BlockHeader

	// GenesisHash is the hash of GenesisHeader, precomputed since deriving
	// it requires double-SHA256ing 80 bytes on every startup otherwise.
	GenesisHash chainhash.Hash

	// Checkpoints are ordered from oldest to newest.
	Checkpoints []Checkpoint
}

// CheckpointByHeight returns the checkpoint at the given height and true if
// one is defined, or the zero value and false otherwise.
func (p *Params) CheckpointByHeight(height int32) (Checkpoint, bool) {
	for _, cp := range p.Checkpoints {
		if cp.Height == height {
			return cp, true
		}
	}
	return Checkpoint{}, false
}

// newHashFromStr converts the passed big-endian hex string into a
// chainhash.Hash. It panics on error since it is only ever called with
// hard-coded, and therefore known good, hashes at package init time.
func newHashFromStr(hexStr string) *chainhash.Hash {
	hash, err := chainhash.NewHashFromStr(hexStr)
	if err != nil {
		panic(err)
	}
	return hash
}

// TestNet3Params defines the network parameters for testnet3, the only
// network this client speaks.
var TestNet3Params = Params{
	Name:        "testnet3",
	Net:         wire.TestNet3,
	DefaultPort: "18333",
	DNSSeeds: []string{
		"testnet-seed.bitcoin.jonasschnelli.ch",
		"seed.tbtc.petertodd.org",
		"seed.testnet.bitcoin.sprovoost.nl",
		"testnet-seed.bluematt.me",
	},

	GenesisHeader: testNet3GenesisHeader,
	GenesisHash:   testNet3GenesisHash,

	// Checkpoint hashes below this height are illustrative placeholders:
	// testnet3 is routinely reorganized past these heights by miners
	// abandoning it, so a deployment targeting a specific testnet3
	// instance must supply the real hashes for its chain.
	Checkpoints: []Checkpoint{
		{
			Height: 500000,
			Hash: *newHashFromStr(
				"00000000000628e5871150b9d6c43e450d6d9fb7250fe3d17c4faaeee9051c6d",
			),
		},
		{
			Height: 1000000,
			Hash: *newHashFromStr(
				"0000000000000af881edd9c48a721541ea2e0667c4d58e228129a92d162ddb13",
			),
		},
	},
}
