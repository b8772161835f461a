// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package addrmgr maintains the swarm's known-peer set: addresses learned
// from DNS seeds and addr gossip, bucketed the way btcd's address
// manager buckets them, and scored so that Client's peer selection prefers
// addresses that have recently worked over ones that have recently failed.
package addrmgr

import (
	"crypto/rand"
	"encoding/binary"
	mathrand "math/rand"
	"sync"
	"time"

	"github.com/aead/siphash"
	"github.com/btcspv/spvnode/wire"
)

const (
	// newBucketCount is the number of buckets holding addresses that have
	// never had a successful connection.
	newBucketCount = 64

	// triedBucketCount is the number of buckets holding addresses that
	// have had at least one successful connection.
	triedBucketCount = 8

	// newBucketSize is the maximum number of addresses in each new bucket.
	newBucketSize = 64

	// triedBucketSize is the maximum number of addresses in each tried
	// bucket.
	triedBucketSize = 256

	// numMissingDays is the number of days after which an address is
	// considered stale if it hasn't been seen.
	numMissingDays = 30

	// numRetries is the number of tries without a success after which an
	// address not attempted in numMissingDays is considered bad.
	numRetries = 3

	// maxFailures is the number of consecutive failures after which an
	// address is considered bad regardless of how long ago it last
	// succeeded.
	maxFailures = 10

	// minBadDays is the minimum age, in days, of the last success before
	// repeated recent failures can mark an address bad.
	minBadDays = 7
)

// KnownAddress tracks information about a known network address that is
// used to determine how viable an address is as a peer candidate.
type KnownAddress struct {
	na          *wire.NetAddress
	srcAddr     *wire.NetAddress
	attempts    int
	lastattempt time.Time
	lastsuccess time.Time
	tried       bool
	refs        int // number of new buckets containing this address
}

// NetAddress returns the underlying network address.
func (ka *KnownAddress) NetAddress() *wire.NetAddress {
	return ka.na
}

// isBad returns true if the address is considered unusable: it has failed
// at least numRetries times without ever succeeding and hasn't been seen
// in numMissingDays, or it has failed maxFailures times in a row with no
// success in the last minBadDays.
func (ka *KnownAddress) isBad() bool {
	if ka.lastattempt.After(time.Now().Add(-1 * time.Minute)) {
		return false
	}

	// Over a month old and never succeeded.
	if ka.lastsuccess.IsZero() && ka.attempts >= numRetries &&
		ka.lastattempt.Before(time.Now().Add(-numMissingDays*24*time.Hour)) {
		return true
	}

	// Hasn't succeeded in too long and has failed too many times in a row.
	if ka.lastsuccess.Before(time.Now().Add(-minBadDays*24*time.Hour)) &&
		ka.attempts >= maxFailures {
		return true
	}

	return false
}

// chance returns the selection probability for this address, in [0, 1],
// decayed by repeated failed attempts and the time since the last attempt.
func (ka *KnownAddress) chance() float64 {
	now := time.Now()
	lastAttempt := ka.lastattempt
	if lastAttempt.IsZero() {
		lastAttempt = now.Add(-30 * 24 * time.Hour)
	}

	c := 1.0

	sinceLastTry := now.Sub(lastAttempt)
	if sinceLastTry < 10*time.Minute {
		c *= 0.01
	}

	for i := ka.attempts; i > 0; i-- {
		c /= 1.5
	}

	return c
}

// AddrManager maintains the new and tried address buckets described in the
// Client's peer-selection contract. It is not safe for concurrent use from
// multiple goroutines without external synchronization beyond its own
// mutex-protected operations, matching the single-threaded event loop this
// client runs under; the mutex exists to let the event-loop adapter's I/O
// completion callbacks and an operator-facing debug dump race safely.
type AddrManager struct {
	mu            sync.Mutex
	rand          *mathrand.Rand
	key           [16]byte
	addrIndex     map[string]*KnownAddress
	addrNew       [newBucketCount]map[string]*KnownAddress
	addrTried     [triedBucketCount][]*KnownAddress
	nTried        int
	nNew          int
	localServices wire.ServiceFlag
}

// New returns a freshly initialized, empty AddrManager. services is
// advertised in any future addr gossip this node relays about itself.
func New(services wire.ServiceFlag) *AddrManager {
	am := &AddrManager{
		rand:          mathrand.New(mathrand.NewSource(time.Now().UnixNano())),
		addrIndex:     make(map[string]*KnownAddress),
		localServices: services,
	}
	if _, err := rand.Read(am.key[:]); err != nil {
		// Fall back to the time-seeded rand source; bucket assignment
		// is still deterministic per-process, just not unpredictable
		// across processes.
		am.rand.Read(am.key[:])
	}
	for i := range am.addrNew {
		am.addrNew[i] = make(map[string]*KnownAddress)
	}
	return am
}

// AddAddress records an address learned from src (an already-connected
// peer, or nil for a DNS seed) into the new address table. An address
// already known is left where it is; src is not recorded for it.
func (a *AddrManager) AddAddress(addr, src *wire.NetAddress) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.addAddress(addr, src)
}

// AddAddresses is a convenience wrapper around AddAddress for a batch, as
// arrives in a single addr message.
func (a *AddrManager) AddAddresses(addrs []*wire.NetAddress, src *wire.NetAddress) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, addr := range addrs {
		a.addAddress(addr, src)
	}
}

func (a *AddrManager) addAddress(addr, src *wire.NetAddress) {
	key := addrKey(addr)
	if ka, ok := a.addrIndex[key]; ok {
		// Already known; promoting isn't needed here since staleness is
		// driven by lastattempt/lastsuccess, not by repeated gossip.
		if ka.refs == 0 && !ka.tried {
			a.addToNewBucket(ka)
		}
		return
	}

	ka := &KnownAddress{na: addr, srcAddr: src}
	a.addrIndex[key] = ka
	a.addToNewBucket(ka)
}

func (a *AddrManager) addToNewBucket(ka *KnownAddress) {
	bucket := a.newBucketIndex(ka.na, ka.srcAddr)
	key := addrKey(ka.na)
	if _, exists := a.addrNew[bucket][key]; exists {
		return
	}
	if len(a.addrNew[bucket]) >= newBucketSize {
		a.evictFromNewBucket(bucket)
	}
	a.addrNew[bucket][key] = ka
	ka.refs++
	a.nNew++
}

// evictFromNewBucket drops the address judged worst by chance() to make
// room for a new entry, matching the spec's "replacement" vocabulary for
// the swarm-level pool.
func (a *AddrManager) evictFromNewBucket(bucket int) {
	var worstKey string
	var worst *KnownAddress
	for k, ka := range a.addrNew[bucket] {
		if worst == nil || ka.chance() < worst.chance() {
			worst, worstKey = ka, k
		}
	}
	if worst == nil {
		return
	}
	delete(a.addrNew[bucket], worstKey)
	worst.refs--
	if worst.refs == 0 {
		delete(a.addrIndex, worstKey)
		a.nNew--
	}
}

// Good marks addr as having just completed a successful handshake, moving
// it from the new table into the tried table.
func (a *AddrManager) Good(addr *wire.NetAddress) {
	a.mu.Lock()
	defer a.mu.Unlock()

	key := addrKey(addr)
	ka, ok := a.addrIndex[key]
	if !ok {
		return
	}

	ka.lastsuccess = time.Now()
	ka.lastattempt = ka.lastsuccess
	ka.attempts = 0

	if ka.tried {
		return
	}

	for i := range a.addrNew {
		if _, ok := a.addrNew[i][key]; ok {
			delete(a.addrNew[i], key)
			ka.refs--
		}
	}
	a.nNew -= boolToInt(ka.refs <= 0)
	ka.refs = 0
	ka.tried = true

	bucket := a.triedBucketIndex(ka.na)
	if len(a.addrTried[bucket]) >= triedBucketSize {
		a.evictFromTriedBucket(bucket)
	}
	a.addrTried[bucket] = append(a.addrTried[bucket], ka)
	a.nTried++
}

func (a *AddrManager) evictFromTriedBucket(bucket int) {
	bucketAddrs := a.addrTried[bucket]
	worstIdx := 0
	for i, ka := range bucketAddrs {
		if ka.chance() < bucketAddrs[worstIdx].chance() {
			worstIdx = i
		}
	}
	evicted := bucketAddrs[worstIdx]
	a.addrTried[bucket] = append(bucketAddrs[:worstIdx], bucketAddrs[worstIdx+1:]...)
	a.nTried--
	evicted.tried = false
	a.addToNewBucket(evicted)
}

// Attempt records a connection attempt to addr, successful or not.
func (a *AddrManager) Attempt(addr *wire.NetAddress) {
	a.mu.Lock()
	defer a.mu.Unlock()

	ka, ok := a.addrIndex[addrKey(addr)]
	if !ok {
		return
	}
	ka.attempts++
	ka.lastattempt = time.Now()
}

// NumAddresses returns the total number of addresses known, tried or not.
func (a *AddrManager) NumAddresses() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.nNew + a.nTried
}

// GetAddress returns a address to try connecting to, preferring tried
// addresses roughly a third of the time once any exist, the way btcd's
// selection logic does, and skipping addresses isBad reports as unusable.
func (a *AddrManager) GetAddress() *KnownAddress {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.nTried > 0 && (a.nNew == 0 || a.rand.Intn(3) == 0) {
		if ka := a.pickTried(); ka != nil {
			return ka
		}
	}
	return a.pickNew()
}

func (a *AddrManager) pickTried() *KnownAddress {
	var candidates []*KnownAddress
	for _, bucket := range a.addrTried {
		for _, ka := range bucket {
			if !ka.isBad() {
				candidates = append(candidates, ka)
			}
		}
	}
	return pickByChance(candidates, a.rand)
}

func (a *AddrManager) pickNew() *KnownAddress {
	var candidates []*KnownAddress
	for _, bucket := range a.addrNew {
		for _, ka := range bucket {
			if !ka.isBad() {
				candidates = append(candidates, ka)
			}
		}
	}
	return pickByChance(candidates, a.rand)
}

// pickByChance runs a roulette-wheel selection over candidates weighted by
// chance(), falling back to a uniform pick if the candidates' chances sum
// to zero.
func pickByChance(candidates []*KnownAddress, rnd *mathrand.Rand) *KnownAddress {
	if len(candidates) == 0 {
		return nil
	}

	var total float64
	for _, ka := range candidates {
		total += ka.chance()
	}
	if total <= 0 {
		return candidates[rnd.Intn(len(candidates))]
	}

	target := rnd.Float64() * total
	for _, ka := range candidates {
		target -= ka.chance()
		if target <= 0 {
			return ka
		}
	}
	return candidates[len(candidates)-1]
}

// newBucketIndex determines the new-table bucket for addr as seen from
// src, siphashing both endpoint and source so the distribution is
// deterministic per-process but unpredictable to an adversary shaping
// addresses to pile into one bucket.
func (a *AddrManager) newBucketIndex(addr, src *wire.NetAddress) int {
	data1 := append([]byte{}, addr.Addr.IP[:]...)
	if src != nil {
		data1 = append(data1, src.Addr.IP[:]...)
	}
	hash1 := a.siphash(data1)
	hash2 := a.siphash(append([]byte(groupKey(addr)), byte(hash1%newBucketCount)))
	return int(hash2 % newBucketCount)
}

// triedBucketIndex determines the tried-table bucket for addr.
func (a *AddrManager) triedBucketIndex(addr *wire.NetAddress) int {
	hash1 := a.siphash(addr.Addr.IP[:])
	hash2 := a.siphash(append([]byte(groupKey(addr)), byte(hash1%triedBucketCount)))
	return int(hash2 % triedBucketCount)
}

func (a *AddrManager) siphash(data []byte) uint64 {
	return siphash.Sum64(data, &a.key)
}

// groupKey buckets addresses sharing the same /16 (v4) or /32 (v6) prefix
// together, so an attacker controlling a single subnet can't dominate a
// bucket by generating many distinct addresses within it.
func groupKey(addr *wire.NetAddress) string {
	ip := addr.Addr.IP
	if addr.Addr.Family == wire.AddrFamilyV4 {
		return string(ip[12:14])
	}
	return string(ip[:4])
}

func addrKey(addr *wire.NetAddress) string {
	var portBuf [2]byte
	binary.BigEndian.PutUint16(portBuf[:], addr.Addr.Port)
	return string(addr.Addr.IP[:]) + string(portBuf[:])
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
