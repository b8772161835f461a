// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"

	"github.com/btcsuite/btclog"
	"github.com/jrick/logrotate/rotator"

	"github.com/btcspv/spvnode/chainstore"
	"github.com/btcspv/spvnode/client"
	"github.com/btcspv/spvnode/peer"
	"github.com/btcspv/spvnode/wire"
)

const (
	defaultLogFilename = "spvnode.log"
	maxLogRolls        = 8
)

var (
	logRotator *rotator.Rotator
	backendLog = btclog.NewBackend(logWriter{})

	log = backendLog.Logger("MAIN")
)

// logWriter forwards every write to both stdout and the rotator, mirroring
// the dual-sink pattern btcd-family daemons use so logs are visible
// interactively and durable on disk.
type logWriter struct{}

func (logWriter) Write(p []byte) (int, error) {
	os.Stdout.Write(p)
	if logRotator != nil {
		logRotator.Write(p)
	}
	return len(p), nil
}

// initLogRotator opens (creating if necessary) the rotating log file
// under logDir.
func initLogRotator(logDir string) error {
	if err := os.MkdirAll(logDir, 0o700); err != nil {
		return err
	}
	logFile := filepath.Join(logDir, defaultLogFilename)
	r, err := rotator.New(logFile, 10*1024, false, maxLogRolls)
	if err != nil {
		return err
	}
	logRotator = r
	return nil
}

// subsystemLoggers binds every package's log variable to a leveled logger
// sharing the process's backend.
var subsystemLoggers = map[string]btclog.Logger{
	"MAIN": log,
	"WIRE": backendLog.Logger("WIRE"),
	"CHST": backendLog.Logger("CHST"),
	"PEER": backendLog.Logger("PEER"),
	"CLNT": backendLog.Logger("CLNT"),
}

// useLoggers binds every package's log variable to a leveled logger
// sharing the process's backend. eventloop has no logger of its own: it
// never logs, only posts events, so there is nothing to wire there.
func useLoggers() {
	wire.UseLogger(subsystemLoggers["WIRE"])
	chainstore.UseLogger(subsystemLoggers["CHST"])
	peer.UseLogger(subsystemLoggers["PEER"])
	client.UseLogger(subsystemLoggers["CLNT"])
}

// setLogLevels parses a level name and applies it to every subsystem
// logger.
func setLogLevels(levelName string) error {
	level, ok := btclog.LevelFromString(levelName)
	if !ok {
		return errUnknownLogLevel(levelName)
	}
	for _, logger := range subsystemLoggers {
		logger.SetLevel(level)
	}
	return nil
}

type errUnknownLogLevel string

func (e errUnknownLogLevel) Error() string {
	return "unknown log level: " + string(e)
}
