// Package providers implements the provider registry: the local authority a
// content-routing node queries on every lookup to learn which peers have
// claimed to serve a given piece of content.
//
// A Registry fronts a durable key-value backend (a datastore.Batching) with
// a bounded in-memory LRU cache. Every operation that touches state -
// AddProvider, GetProviders, and the periodic expiry sweep - is admitted
// through a single-worker Serializer, so the backend scan, the cache update,
// and the backend write that make up a mutation happen as one atomic step
// from the perspective of any other caller.
//
// # Expiry
//
// Records older than the configured provide validity are removed by a timer
// driven sweep of the backend. The sweep deletes expired keys in one atomic
// batch and then reconciles whatever is left in the cache, so a record is
// never visible after the sweep that removed it has committed.
//
// # Cache
//
// The cache is purely an accelerator: losing an entry never loses data,
// since the backend remains authoritative. A cache miss costs one prefix
// scan of the backend to rebuild the entry.
package providers
