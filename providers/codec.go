package providers

import (
	"fmt"

	"github.com/ipfs/go-cid"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/multiformats/go-multibase"
	"github.com/multiformats/go-varint"
)

// cidText returns the canonical base-32 textual form of a content id, used
// as the middle segment of a backend key.
func cidText(c cid.Cid) (string, error) {
	s, err := c.StringOfBase(multibase.Base32)
	if err != nil {
		return "", fmt.Errorf("encoding cid: %w", err)
	}
	return s, nil
}

// cidFromText is the inverse of cidText.
func cidFromText(s string) (cid.Cid, error) {
	c, err := cid.Decode(s)
	if err != nil {
		return cid.Undef, fmt.Errorf("%w: %v", ErrMalformedKey, err)
	}
	return c, nil
}

// peerText returns the canonical textual form of a peer id, used as the
// final segment of a backend key.
func peerText(p peer.ID) string {
	return p.String()
}

// peerFromText is the inverse of peerText.
func peerFromText(s string) (peer.ID, error) {
	p, err := peer.Decode(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedKey, err)
	}
	return p, nil
}

// encodeTimestamp encodes ms, the number of milliseconds since the Unix
// epoch, as an unsigned LEB128 varint.
func encodeTimestamp(ms int64) []byte {
	return varint.ToUvarint(uint64(ms))
}

// decodeTimestamp is the inverse of encodeTimestamp. It fails with
// ErrMalformedRecord if b is truncated or does not hold a valid varint.
func decodeTimestamp(b []byte) (int64, error) {
	v, n, err := varint.FromUvarint(b)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	if n != len(b) {
		return 0, fmt.Errorf("%w: trailing bytes after varint", ErrMalformedRecord)
	}
	return int64(v), nil
}
