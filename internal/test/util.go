package test

import (
	"math/rand"
	"sync/atomic"
	"testing"

	"github.com/ipfs/go-cid"
	"github.com/libp2p/go-libp2p/core/crypto"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/core/test"
	"github.com/multiformats/go-multihash"
	"github.com/stretchr/testify/require"
)

var globalSeed atomic.Int64

func RandomCids(t testing.TB, n int) []cid.Cid {
	rng := rand.New(rand.NewSource(globalSeed.Add(1)))

	prefix := cid.Prefix{
		Version:  1,
		Codec:    cid.Raw,
		MhType:   multihash.SHA2_256,
		MhLength: -1,
	}

	cids := make([]cid.Cid, n)
	for i := 0; i < n; i++ {
		b := make([]byte, 10*n)
		rng.Read(b)
		c, err := prefix.Sum(b)
		require.NoError(t, err)
		cids[i] = c
	}
	return cids
}

func RandomIdentity(t *testing.T) (peer.ID, crypto.PrivKey, crypto.PubKey) {
	privKey, pubKey, err := test.RandTestKeyPair(crypto.Ed25519, 256)
	require.NoError(t, err)

	providerID, err := peer.IDFromPublicKey(pubKey)
	require.NoError(t, err)
	return providerID, privKey, pubKey
}
