package providers

import (
	"context"

	"github.com/ipfs/go-cid"
	"github.com/ipfs/go-datastore"
	"github.com/ipfs/go-datastore/query"
	logging "github.com/ipfs/go-log/v2"
	"github.com/libp2p/go-libp2p/core/peer"
)

// backend is the capability-set the registry needs from the durable
// key-value store: put a single record, prefix-scan for records, and
// atomically delete a batch of records. datastore.Batching already
// satisfies this exactly.
type backend = datastore.Batching

// scanCid prefix-scans the backend for every record under c and returns the
// peer map it decodes to. Malformed entries are logged and skipped; they
// never abort the scan.
func scanCid(ctx context.Context, ds backend, logger *logging.ZapEventLogger, c cid.Cid) (peerMap, error) {
	prefix, err := cidPrefix(c)
	if err != nil {
		return nil, err
	}

	results, err := ds.Query(ctx, query.Query{Prefix: prefix.String()})
	if err != nil {
		return nil, backendErr("query", err)
	}
	entries, err := results.Rest()
	if err != nil {
		return nil, backendErr("query", err)
	}

	m := make(peerMap, len(entries))
	for _, e := range entries {
		_, peerTxt, err := parseKey(e.Key)
		if err != nil {
			logger.Warnw("Skipping malformed provider record key", "key", e.Key, "err", err)
			continue
		}
		ts, err := decodeTimestamp(e.Value)
		if err != nil {
			logger.Warnw("Skipping malformed provider record value", "key", e.Key, "err", err)
			continue
		}
		m[peerTxt] = ts
	}
	return m, nil
}

// scanAll prefix-scans the entire provider namespace, returning every raw
// entry found. The sweep uses this instead of scanCid because it has no
// single cid to scope the query to.
func scanAll(ctx context.Context, ds backend) ([]query.Entry, error) {
	results, err := ds.Query(ctx, query.Query{Prefix: providerPrefix().String()})
	if err != nil {
		return nil, backendErr("query", err)
	}
	entries, err := results.Rest()
	if err != nil {
		return nil, backendErr("query", err)
	}
	return entries, nil
}

// putRecord writes the single record asserting that p provides c at the
// given unix-millisecond timestamp.
func putRecord(ctx context.Context, ds backend, c cid.Cid, p peer.ID, ts int64) error {
	key, err := recordKey(c, p)
	if err != nil {
		return err
	}
	if err := ds.Put(ctx, key, encodeTimestamp(ts)); err != nil {
		return backendErr("put", err)
	}
	return nil
}
