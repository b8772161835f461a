// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	flags "github.com/jessevdk/go-flags"

	"github.com/btcspv/spvnode/wire"
)

const (
	defaultDataDirname = "data"
	defaultLockFile    = "spvnode.lock"
	defaultConnections = 8
	defaultUserAgent   = "/spvnode:0.1.0/"
)

// config holds every value the CLI accepts, parsed by go-flags from the
// command line. There is no config-file layer: every value has a default
// and can be overridden by flag.
type config struct {
	DataDir         string `long:"data-dir" description:"Directory to store headers and peer state"`
	LockFile        string `long:"lock-file" description:"Path to the process lock file"`
	Connections     int    `short:"c" long:"connections" description:"Target number of simultaneous peer connections"`
	Debug           string `long:"debug" description:"Logging level: trace, debug, info, warn, error, critical"`
	DeleteData      bool   `long:"delete-data" description:"Delete the data directory before starting"`
	ProtocolVersion uint32 `long:"protocol-version" description:"Protocol version to advertise"`
	ProtocolPort    string `long:"protocol-port" description:"Default peer port, overriding the network default"`
	UserAgent       string `long:"protocol-user-agent" description:"User agent string to advertise"`
	ShowVersion     bool   `short:"V" long:"version" description:"Display version information and exit"`
}

// defaultConfig returns a config with every field at its documented
// default, rooted under appDataDir.
func defaultConfig(appDataDir string) config {
	return config{
		DataDir:         filepath.Join(appDataDir, defaultDataDirname),
		LockFile:        filepath.Join(appDataDir, defaultLockFile),
		Connections:     defaultConnections,
		Debug:           "info",
		ProtocolVersion: wire.ProtocolVersion,
		UserAgent:       defaultUserAgent,
	}
}

// loadConfig parses the process's command-line arguments over top of the
// documented defaults. The returned bool is true if the process should
// exit immediately with status 0 (help or version was requested).
func loadConfig(appDataDir string) (*config, bool, error) {
	cfg := defaultConfig(appDataDir)

	parser := flags.NewParser(&cfg, flags.HelpFlag|flags.PassDoubleDash)
	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stdout, flagsErr.Message)
			return nil, true, nil
		}
		return nil, false, err
	}

	if cfg.ShowVersion {
		fmt.Fprintf(os.Stdout, "spvnode version %s\n", version())
		return nil, true, nil
	}

	if cfg.Connections < 1 {
		return nil, false, fmt.Errorf("connections must be at least 1, got %d", cfg.Connections)
	}

	return &cfg, false, nil
}
