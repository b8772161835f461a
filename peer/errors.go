// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package peer

import "fmt"

// ProtocolError reports a misbehaving peer: an out-of-sequence command,
// a bad checksum, an oversized list, a handshake timeout, or a pong with
// the wrong nonce. It is never fatal to the process; the Client tears
// down the offending Connection and moves on.
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string {
	return "peer: protocol violation: " + e.Reason
}

func protocolErrorf(format string, args ...interface{}) *ProtocolError {
	return &ProtocolError{Reason: fmt.Sprintf(format, args...)}
}
