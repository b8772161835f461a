// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package addrmgr

import (
	"net"
	"testing"
	"time"

	"github.com/btcspv/spvnode/wire"
	"github.com/stretchr/testify/require"
)

func testNetAddress(ip string, port uint16) *wire.NetAddress {
	return &wire.NetAddress{
		Services: wire.SFNodeNetwork,
		Addr:     wire.NewAddress(net.ParseIP(ip), port),
	}
}

func TestKnownAddressChanceDecaysWithAttempts(t *testing.T) {
	na := testNetAddress("8.8.8.8", 18333)
	ka := TstNewKnownAddress(na, 0, time.Time{}, time.Time{}, false, 0)
	base := TstKnownAddressChance(ka)

	ka2 := TstNewKnownAddress(na, 5, time.Now().Add(-time.Hour), time.Time{}, false, 0)
	require.Less(t, TstKnownAddressChance(ka2), base)
}

func TestKnownAddressIsBadNeverSucceededOldAndRetried(t *testing.T) {
	na := testNetAddress("1.2.3.4", 18333)

	fresh := TstNewKnownAddress(na, numRetries, time.Now(), time.Time{}, false, 0)
	require.False(t, TstKnownAddressIsBad(fresh))

	stale := TstNewKnownAddress(na, numRetries,
		time.Now().Add(-(numMissingDays+1)*24*time.Hour), time.Time{}, false, 0)
	require.True(t, TstKnownAddressIsBad(stale))
}

func TestKnownAddressIsBadManyRecentFailures(t *testing.T) {
	na := testNetAddress("1.2.3.4", 18333)
	ka := TstNewKnownAddress(na, maxFailures,
		time.Now().Add(-(minBadDays+1)*24*time.Hour),
		time.Now().Add(-(minBadDays+1)*24*time.Hour), true, 0)
	require.True(t, TstKnownAddressIsBad(ka))
}

func TestAddAddressThenGood(t *testing.T) {
	am := New(wire.SFNodeNetwork)
	addr := testNetAddress("203.0.113.1", 18333)

	am.AddAddress(addr, nil)
	require.Equal(t, 1, am.NumAddresses())

	am.Good(addr)
	ka := am.GetAddress()
	require.NotNil(t, ka)
	require.True(t, ka.na.Addr.Equals(addr.Addr))
}

func TestGetAddressEmptyManager(t *testing.T) {
	am := New(wire.SFNodeNetwork)
	require.Nil(t, am.GetAddress())
}
