// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package eventloop

import (
	"os"
	"os/signal"
	"syscall"
)

// NotifyShutdown arms SIGINT/SIGTERM handling: the first received signal
// posts onShutdown on the loop goroutine and stops intercepting further
// signals of the same kind (a second Ctrl-C falls through to the default
// OS behaviour instead of hanging if shutdown itself wedges).
func (l *Loop) NotifyShutdown(onShutdown func()) (cancel func()) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		select {
		case <-sigCh:
			signal.Stop(sigCh)
			l.Post(onShutdown)
		case <-done:
		}
	}()

	return func() {
		close(done)
		signal.Stop(sigCh)
	}
}
