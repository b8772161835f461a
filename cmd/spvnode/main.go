// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Command spvnode is a headers-only SPV client for testnet3. It maintains
// a pool of peer connections, resolves DNS seeds, synchronises the block
// header chain against a local store, and does nothing else: it neither
// relays nor validates transactions.
package main

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/btcspv/spvnode/chaincfg"
	"github.com/btcspv/spvnode/client"
	"github.com/btcspv/spvnode/eventloop"
)

// buildVersion is overridden at build time via -ldflags.
var buildVersion = "0.1.0-dev"

func version() string { return buildVersion }

func main() {
	os.Exit(run())
}

// run contains the entire program so deferred cleanup always executes,
// something os.Exit in main would otherwise skip.
func run() int {
	appDataDir, err := defaultAppDataDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "spvnode: %v\n", err)
		return 1
	}

	cfg, exitNow, err := loadConfig(appDataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "spvnode: %v\n", err)
		return 1
	}
	if exitNow {
		return 0
	}

	if err := initLogRotator(filepath.Dir(cfg.LockFile)); err != nil {
		fmt.Fprintf(os.Stderr, "spvnode: init log rotator: %v\n", err)
		return 1
	}
	useLoggers()
	if err := setLogLevels(cfg.Debug); err != nil {
		fmt.Fprintf(os.Stderr, "spvnode: %v\n", err)
		return 1
	}

	if cfg.DeleteData {
		if err := os.RemoveAll(cfg.DataDir); err != nil {
			log.Errorf("delete data dir: %v", err)
			return 1
		}
	}
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		log.Errorf("create data dir: %v", err)
		return 1
	}

	lock, err := eventloop.AcquireLock(cfg.LockFile)
	if err != nil {
		log.Errorf("another instance is already running: %v", err)
		return 1
	}
	defer lock.Release()

	params := chaincfg.TestNet3Params
	if cfg.ProtocolPort != "" {
		params.DefaultPort = cfg.ProtocolPort
	}

	loop := eventloop.New(256)
	loopDone := make(chan struct{})
	go func() {
		loop.Run()
		close(loopDone)
	}()

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	c, err := client.New(loop, client.Config{
		DataDir:         cfg.DataDir,
		Params:          &params,
		MaxConnections:  cfg.Connections,
		UserAgent:       cfg.UserAgent,
		ProtocolVersion: cfg.ProtocolVersion,
	}, rnd)
	if err != nil {
		log.Errorf("start client: %v", err)
		loop.Stop()
		<-loopDone
		return 1
	}

	shutdown := make(chan struct{})
	var cancelSignal func()
	loop.Post(func() {
		c.Start()
		cancelSignal = loop.NotifyShutdown(func() {
			c.Shutdown()
			close(shutdown)
		})
	})

	exitCode := 0
	select {
	case <-shutdown:
	case err := <-c.FatalErr():
		log.Criticalf("terminating on fatal error: %v", err)
		exitCode = 1
		loop.Post(c.Shutdown)
	}

	if cancelSignal != nil {
		cancelSignal()
	}
	loop.Stop()
	<-loopDone

	return exitCode
}

// defaultAppDataDir returns the per-user directory spvnode stores its
// data and lock file under, creating it if it doesn't already exist.
func defaultAppDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".spvnode")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}
