// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainstore

import (
	"errors"
	"fmt"

	"github.com/btcspv/spvnode/chaincfg/chainhash"
)

// ErrNotFound is returned by Find when the requested hash is present in
// neither the hash view nor the orphan view.
var ErrNotFound = errors.New("chainstore: header not found")

// CheckpointError reports a fatal integrity violation: a stored header at
// a checkpointed height doesn't match the hard-coded expected hash. The
// caller is expected to terminate the process on this error per the
// spec's integrity-violation error category.
type CheckpointError struct {
	Height int32
	Want   chainhash.Hash
	Got    chainhash.Hash
}

func (e *CheckpointError) Error() string {
	return fmt.Sprintf("chainstore: checkpoint mismatch at height %d: want %s, got %s",
		e.Height, e.Want, e.Got)
}
