// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package client implements the swarm-level peer manager: DNS seed
// resolution, peer selection with replacement, connection maintenance
// against a configured pool size, and the header chain synchronisation
// loop built on top of the chain store and the per-peer connection state
// machine.
package client

import (
	"errors"
	"fmt"
	"math/rand"
	"net"
	"strconv"
	"time"

	"github.com/btcspv/spvnode/addrmgr"
	"github.com/btcspv/spvnode/chaincfg"
	"github.com/btcspv/spvnode/chainstore"
	"github.com/btcspv/spvnode/eventloop"
	"github.com/btcspv/spvnode/peer"
	"github.com/btcspv/spvnode/wire"
)

// headerTimeoutMin and headerTimeoutMax bound the jittered retry timer
// for an outstanding getheaders request.
const (
	headerTimeoutMin = 15 * time.Second
	headerTimeoutMax = 19 * time.Second
)

// Config governs a Client's resource limits and wire-level identity.
type Config struct {
	DataDir         string
	Params          *chaincfg.Params
	MaxConnections  int
	UserAgent       string
	ProtocolVersion uint32
	Services        wire.ServiceFlag
	Proxy           *eventloop.ProxyConfig
}

// ErrNoCandidates is returned by selectPeer when neither the known-peer
// set nor the seed set has an address we aren't already connected to.
// maintainConnections does not treat it as fatal: it logs it and stops
// opening connections until the next replacement attempt.
var ErrNoCandidates = errors.New("client: no candidate peer to connect to")

// Client owns the chain store, the full set of peer connections, and the
// sync cycle that drives the chain store forward. It implements
// peer.Notifier; every Connection it creates reports back through that
// interface.
type Client struct {
	loop *eventloop.Loop
	cfg  Config
	rnd  *rand.Rand

	store   *chainstore.Store
	addrs   *addrmgr.AddrManager
	seeds   []wire.Address
	conns   map[string]*peer.Connection
	pending map[*eventloop.DNSRequest]struct{}

	nonce        uint64
	shuttingDown bool

	syncConn  *peer.Connection
	headerTmr *eventloop.Timer

	fatal chan error
}

// New opens the chain store under cfg.DataDir and returns a Client ready
// to Start. The returned Client owns the store; Close (via Shutdown)
// releases it.
func New(loop *eventloop.Loop, cfg Config, rnd *rand.Rand) (*Client, error) {
	store, err := chainstore.New(cfg.DataDir, cfg.Params)
	if err != nil {
		return nil, fmt.Errorf("client: open chain store: %w", err)
	}

	return &Client{
		loop:    loop,
		cfg:     cfg,
		rnd:     rnd,
		store:   store,
		addrs:   addrmgr.New(cfg.Services),
		conns:   make(map[string]*peer.Connection),
		pending: make(map[*eventloop.DNSRequest]struct{}),
		nonce:   rnd.Uint64(),
		fatal:   make(chan error, 1),
	}, nil
}

// FatalErr returns a channel that receives at most one error if the
// Client encounters a condition spec.md classifies as an integrity
// violation requiring the process to terminate, such as a header failing
// checkpoint verification. The caller is responsible for shutting the
// Client down and exiting after reading from it.
func (c *Client) FatalErr() <-chan error { return c.fatal }

func (c *Client) reportFatal(err error) {
	select {
	case c.fatal <- err:
	default:
	}
}

// Start issues a DNS lookup for every configured seed and begins opening
// connections as addresses arrive.
func (c *Client) Start() {
	for _, seed := range c.cfg.Params.DNSSeeds {
		c.resolveSeed(seed)
	}
}

func (c *Client) resolveSeed(hostname string) {
	var req *eventloop.DNSRequest
	req = c.loop.Resolve(hostname, eventloop.DNSCallbacks{
		OnResolved: func(ips []net.IP) {
			delete(c.pending, req)
			c.addSeedAddrs(ips)
			c.maintainConnections()
		},
		OnError: func(err error) {
			delete(c.pending, req)
			log.Warnf("dns seed %s: %v", hostname, err)
		},
	})
	c.pending[req] = struct{}{}
}

func (c *Client) addSeedAddrs(ips []net.IP) {
	port, err := strconv.ParseUint(c.cfg.Params.DefaultPort, 10, 16)
	if err != nil {
		log.Errorf("invalid default port %q: %v", c.cfg.Params.DefaultPort, err)
		return
	}
	for _, ip := range ips {
		c.seeds = append(c.seeds, wire.NewAddress(ip, uint16(port)))
	}
}

// Tip returns the chain store's current tip.
func (c *Client) Tip() chainstore.StoredHeader { return c.store.Tip() }

// selectPeer returns an address we are not already connected to,
// preferring the address manager's known-peer set over the seed set; the
// seed set, which never grows beyond a single DNS lookup's worth of
// addresses and carries no success/failure history, is chosen from
// uniformly at random.
func (c *Client) selectPeer() (wire.Address, error) {
	if addr, ok := c.selectKnownPeer(); ok {
		return addr, nil
	}

	candidates := make([]wire.Address, 0, len(c.seeds))
	for _, a := range c.seeds {
		if _, busy := c.conns[a.String()]; !busy {
			candidates = append(candidates, a)
		}
	}
	if len(candidates) > 0 {
		return candidates[c.rnd.Intn(len(candidates))], nil
	}

	return wire.Address{}, ErrNoCandidates
}

// selectKnownPeer asks the address manager for a candidate, retrying past
// addresses we're already connected to. The address manager's own
// chance-weighted new/tried bucketing governs which known peer is
// offered; a peer that has recently worked is preferred over one that has
// recently failed.
func (c *Client) selectKnownPeer() (wire.Address, bool) {
	attempts := c.addrs.NumAddresses()
	for i := 0; i < attempts; i++ {
		ka := c.addrs.GetAddress()
		if ka == nil {
			return wire.Address{}, false
		}
		addr := ka.NetAddress().Addr
		if _, busy := c.conns[addr.String()]; !busy {
			return addr, true
		}
	}
	return wire.Address{}, false
}

// maintainConnections opens new connections until the pool reaches
// MaxConnections, or returns early once candidates are exhausted.
func (c *Client) maintainConnections() {
	for !c.shuttingDown && len(c.conns) < c.cfg.MaxConnections {
		addr, err := c.selectPeer()
		if err != nil {
			log.Debugf("no candidate peer available: %v", err)
			return
		}
		c.connect(addr)
	}
}

func (c *Client) connect(addr wire.Address) {
	c.addrs.Attempt(&wire.NetAddress{Addr: addr})

	cfg := peer.Config{
		ProtocolVersion: c.cfg.ProtocolVersion,
		UserAgent:       c.cfg.UserAgent,
		Services:        c.cfg.Services,
		StartHeight:     c.store.Tip().Height,
		Net:             c.cfg.Params.Net,
		Nonce:           c.nonce,
		Proxy:           c.cfg.Proxy,
		Rand:            c.rnd,
	}
	conn := peer.Dial(c.loop, addr, cfg, c)
	c.conns[addr.String()] = conn
}

func (c *Client) removeConnection(conn *peer.Connection) {
	addr := conn.PeerInfo().Addr.String()
	delete(c.conns, addr)
	if conn == c.syncConn {
		c.endSyncCycle()
	}
}

// --- peer.Notifier ---

// NotifyAddr records newly learned addresses in the address manager's
// new-address table and reports whether any of them were new to the
// known-peer set.
func (c *Client) NotifyAddr(conn *peer.Connection, addrs []wire.NetAddress) bool {
	before := c.addrs.NumAddresses()

	src := &wire.NetAddress{Addr: conn.PeerInfo().Addr}
	for i := range addrs {
		na := addrs[i]
		c.addrs.AddAddress(&na, src)
	}

	return c.addrs.NumAddresses() > before
}

// NotifyReady records the successful handshake against the address
// manager, then starts the sync cycle on the first connection to
// complete its handshake; subsequent ready connections simply join the
// pool.
func (c *Client) NotifyReady(conn *peer.Connection) {
	c.addrs.Good(&wire.NetAddress{Addr: conn.PeerInfo().Addr})
	if c.syncConn == nil {
		c.startSyncCycle(conn)
	}
}

// NotifyNoAddr is advisory only: the connection that timed out waiting
// for addr stays open, but future peer selection favors other seeds
// since the known-peer set didn't grow from it.
func (c *Client) NotifyNoAddr(conn *peer.Connection) {
	log.Debugf("%s: no addr reply within timeout", conn.PeerInfo().Addr)
}

// NotifyHeaders feeds every header to the chain store, saves the new tip,
// and either issues the next getheaders or ends the sync cycle if the
// reply was empty.
func (c *Client) NotifyHeaders(conn *peer.Connection, headers []*wire.BlockHeader) {
	if conn != c.syncConn {
		return
	}

	if len(headers) == 0 {
		c.endSyncCycle()
		return
	}

	for _, hdr := range headers {
		if err := c.store.PutHeader(*hdr); err != nil {
			var cpErr *chainstore.CheckpointError
			if errors.As(err, &cpErr) {
				log.Criticalf("checkpoint violation, refusing header: %v", cpErr)
				c.reportFatal(cpErr)
				return
			}
			log.Errorf("put header: %v", err)
		}
	}
	if err := c.store.SaveTip(); err != nil {
		log.Errorf("save tip: %v", err)
	}

	c.issueGetHeaders(conn)
}

// NotifyError removes the failed connection and attempts replacement.
func (c *Client) NotifyError(conn *peer.Connection, err error) {
	log.Warnf("%s: %v", conn.PeerInfo().Addr, err)
	c.removeConnection(conn)
	c.maintainConnections()
}

// NotifyClosed removes the connection and attempts replacement, unless
// the Client is already shutting down.
func (c *Client) NotifyClosed(conn *peer.Connection) {
	c.removeConnection(conn)
	if !c.shuttingDown {
		c.maintainConnections()
	}
}

func (c *Client) startSyncCycle(conn *peer.Connection) {
	c.syncConn = conn
	c.issueGetHeaders(conn)
}

func (c *Client) endSyncCycle() {
	if c.headerTmr != nil {
		c.headerTmr.Stop()
		c.headerTmr = nil
	}
	c.syncConn = nil
}

func (c *Client) issueGetHeaders(conn *peer.Connection) {
	msg := wire.NewMsgGetHeaders()
	msg.AddBlockLocatorHash(c.store.Tip().Hash)
	conn.SendMessage(msg)

	if c.headerTmr != nil {
		c.headerTmr.Stop()
	}
	timeout := headerTimeoutMin + time.Duration(c.rnd.Int63n(int64(headerTimeoutMax-headerTimeoutMin)))
	c.headerTmr = c.loop.StartTimer(timeout, 0, func() { c.onHeaderTimeout(conn) })
}

// onHeaderTimeout re-issues the outstanding getheaders against a
// different connection if one is available.
func (c *Client) onHeaderTimeout(timedOutConn *peer.Connection) {
	if c.syncConn != timedOutConn {
		return
	}

	var alt *peer.Connection
	for _, conn := range c.conns {
		if conn != timedOutConn && conn.State() == peer.StateConnected {
			alt = conn
			break
		}
	}
	if alt == nil {
		alt = timedOutConn
	}
	c.syncConn = alt
	c.issueGetHeaders(alt)
}

// Shutdown is idempotent: it marks the Client as shutting down, tears
// down every connection, cancels the header timer, and closes the chain
// store.
func (c *Client) Shutdown() {
	if c.shuttingDown {
		return
	}
	c.shuttingDown = true

	if c.headerTmr != nil {
		c.headerTmr.Stop()
		c.headerTmr = nil
	}
	for req := range c.pending {
		req.Cancel()
	}
	for _, conn := range c.conns {
		conn.Shutdown()
	}
	if err := c.store.Close(); err != nil {
		log.Errorf("close chain store: %v", err)
	}
}
