package providers

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/ipfs/go-cid"
	logging "github.com/ipfs/go-log/v2"
	"github.com/libp2p/go-libp2p/core/peer"
)

var log = logging.Logger("providers")

// Registry is the public façade over the two-tier provider store: a
// durable Datastore fronted by a bounded in-memory cache, with every
// state-touching operation admitted through a single Serializer so that
// concurrent callers observe a total order.
//
// A Registry must be constructed with New and started with Start before its
// Sweeper will reclaim expired records; AddProvider and GetProviders work
// correctly, just without automatic expiry, even before Start is called.
type Registry struct {
	ds    backend
	cache *cacheTier
	ser   *serializer

	clock           clock.Clock
	cleanupInterval time.Duration
	provideValidity time.Duration
	logger          *logging.ZapEventLogger

	running atomic.Bool
	timerMu sync.Mutex
	timer   *clock.Timer
}

// New constructs a Registry backed by ds. It does not start the sweeper;
// call Start for that.
func New(ds backend, opts ...Option) (*Registry, error) {
	cfg, err := getOpts(opts)
	if err != nil {
		return nil, err
	}

	cache, err := newCacheTier(cfg.cacheSize)
	if err != nil {
		return nil, err
	}

	return &Registry{
		ds:              ds,
		cache:           cache,
		ser:             newSerializer(),
		clock:           cfg.clock,
		cleanupInterval: cfg.cleanupInterval,
		provideValidity: cfg.provideValidity,
		logger:          cfg.logger,
	}, nil
}

// Start arms the periodic expiry sweep. It is idempotent: calling Start on
// an already-running Registry does nothing. No sweep runs before the first
// call to Start.
func (r *Registry) Start() {
	if !r.running.CompareAndSwap(false, true) {
		return
	}
	r.scheduleSweep()
}

// Stop cancels the sweeper's next tick. It is idempotent. Stop does not
// cancel a sweep that is already in flight - that sweep holds the
// Serializer and runs to completion. After Stop, AddProvider and
// GetProviders still work; only the periodic sweep is no longer scheduled.
func (r *Registry) Stop() {
	if !r.running.CompareAndSwap(true, false) {
		return
	}
	r.timerMu.Lock()
	if r.timer != nil {
		r.timer.Stop()
	}
	r.timerMu.Unlock()
}

// AddProvider records that p claims to provide c as of now. A repeat call
// for the same (c, p) pair simply refreshes the timestamp - this is how an
// honest provider keeps its record from expiring.
func (r *Registry) AddProvider(ctx context.Context, c cid.Cid, p peer.ID) error {
	return r.ser.submit(ctx, func() error {
		return r.addProvider(ctx, c, p)
	})
}

func (r *Registry) addProvider(ctx context.Context, c cid.Cid, p peer.ID) error {
	cidTxt, err := cidText(c)
	if err != nil {
		return err
	}

	m, ok := r.cache.get(cidTxt)
	if !ok {
		m, err = scanCid(ctx, r.ds, r.logger, c)
		if err != nil {
			return err
		}
	}

	m[peerText(p)] = r.clock.Now().UnixMilli()
	r.cache.put(cidTxt, m)

	return putRecord(ctx, r.ds, c, p, m[peerText(p)])
}

// GetProviders returns the peers currently known to provide c. An unknown
// cid yields an empty, non-nil slice rather than an error. The returned
// order is unspecified but stable within this one call.
func (r *Registry) GetProviders(ctx context.Context, c cid.Cid) ([]peer.ID, error) {
	var out []peer.ID
	err := r.ser.submit(ctx, func() error {
		cidTxt, err := cidText(c)
		if err != nil {
			return err
		}

		m, ok := r.cache.get(cidTxt)
		if !ok {
			m, err = scanCid(ctx, r.ds, r.logger, c)
			if err != nil {
				return err
			}
			r.cache.put(cidTxt, m)
		}

		out = make([]peer.ID, 0, len(m))
		for peerTxt := range m {
			p, err := peerFromText(peerTxt)
			if err != nil {
				r.logger.Warnw("Dropping undecodable cached peer text", "cid", c, "peer", peerTxt, "err", err)
				continue
			}
			out = append(out, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Len reports the number of cids currently resident in the cache. It is a
// best-effort instantaneous count, not admitted through the Serializer.
func (r *Registry) Len() int {
	return r.cache.len()
}

// Sweep forces an immediate expiry sweep, admitted through the Serializer
// like any other operation. Start arms this to run automatically on a
// timer; Sweep lets a caller (or a test driving a mock clock) trigger one
// on demand.
func (r *Registry) Sweep(ctx context.Context) error {
	return r.ser.submit(ctx, func() error {
		return r.sweep(ctx)
	})
}
