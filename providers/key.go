package providers

import (
	"fmt"
	"strings"

	"github.com/ipfs/go-cid"
	"github.com/ipfs/go-datastore"
	"github.com/libp2p/go-libp2p/core/peer"
)

// providersNamespace is the fixed root under which every provider record is
// stored. Bit-stable: do not change without a migration.
const providersNamespace = "providers"

// keyParts is the number of "/"-delimited segments a well-formed record key
// splits into: the leading empty segment produced by the root "/", the
// namespace, the cid text, and the peer text.
const keyParts = 4

// providerPrefix returns the datastore key under which every provider
// record lives, suitable for a prefix query.
func providerPrefix() datastore.Key {
	return datastore.NewKey(providersNamespace)
}

// cidPrefix returns the datastore key under which every provider of c is
// recorded.
func cidPrefix(c cid.Cid) (datastore.Key, error) {
	text, err := cidText(c)
	if err != nil {
		return datastore.Key{}, err
	}
	return providerPrefix().ChildString(text), nil
}

// recordKey returns the datastore key for the single record asserting that
// p provides c.
func recordKey(c cid.Cid, p peer.ID) (datastore.Key, error) {
	prefix, err := cidPrefix(c)
	if err != nil {
		return datastore.Key{}, err
	}
	return prefix.ChildString(peerText(p)), nil
}

// parseKey recovers the cid text and peer text encoded in a backend key. It
// returns ErrMalformedKey if key does not split into exactly keyParts
// segments, if it is not under the provider namespace, or if either text
// segment is empty. The text segments are not decoded.
func parseKey(key string) (cidTxt string, peerTxt string, err error) {
	parts := strings.Split(key, "/")
	if len(parts) != keyParts {
		return "", "", fmt.Errorf("%w: %q has %d segments, want %d", ErrMalformedKey, key, len(parts), keyParts)
	}
	if parts[0] != "" || parts[1] != providersNamespace {
		return "", "", fmt.Errorf("%w: %q not under /%s", ErrMalformedKey, key, providersNamespace)
	}
	cidTxt, peerTxt = parts[2], parts[3]
	if cidTxt == "" || peerTxt == "" {
		return "", "", fmt.Errorf("%w: %q has an empty segment", ErrMalformedKey, key)
	}
	return cidTxt, peerTxt, nil
}
