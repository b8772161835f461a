// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"time"

	"github.com/btcspv/spvnode/chaincfg/chainhash"
	"github.com/btcspv/spvnode/wire"
)

// testNet3GenesisHash is the well-known hash of block 0 on testnet3, in
// display order.
var testNet3GenesisHash = *newHashFromStr(
	"000000000933ea01ad0ee984209779baaec3ced90fa3f408719526f8d77f4943",
)

// testNet3GenesisHeader is the header of block 0 on testnet3. Its merkle
// root is the hash of the single coinbase transaction, which this client
// never materializes since it only ever stores headers.
var testNet3GenesisHeader = wire.BlockHeader{
	Version: 1,
	PrevBlock: chainhash.Hash{},
	MerkleRoot: *newHashFromStr(
		"4a5e1e4baab89f3a32518a88c31bc87f618f76673e2cc77ab2127b7afdeda33b",
	),
	Timestamp: uint32(time.Date(2011, time.February, 2, 23, 16, 42, 0, time.UTC).Unix()),
	Bits:      0x1d00ffff,
	Nonce:     414098458,
}
