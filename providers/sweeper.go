package providers

import (
	"context"
	"time"

	"github.com/ipfs/go-datastore"
)

// scheduleSweep arms the next sweep tick, cleanupInterval from now. It is a
// no-op once the registry has been stopped, so a tick that fires just as
// Stop is called does not resurrect the timer.
func (r *Registry) scheduleSweep() {
	r.timerMu.Lock()
	defer r.timerMu.Unlock()

	if !r.running.Load() {
		return
	}
	r.timer = r.clock.AfterFunc(r.cleanupInterval, r.fireSweep)
}

// fireSweep runs when the sweep timer fires. It submits one sweep unit
// through the Serializer - queuing behind whatever is already admitted,
// never running concurrently with it - and always reschedules the next
// tick afterward, regardless of whether this sweep succeeded, so a
// transient backend failure does not stop future sweeps.
func (r *Registry) fireSweep() {
	defer r.scheduleSweep()

	err := r.ser.submit(context.Background(), func() error {
		return r.sweep(context.Background())
	})
	if err != nil {
		r.logger.Errorw("Sweep failed, will retry at next tick", "err", err)
	}
}

// sweep scans every provider record in the backend, deletes the ones older
// than provideValidity in a single atomic batch, and reconciles the cache
// to match. A scan or commit failure aborts the sweep with nothing
// committed; per-entry decode failures are logged and skipped, never
// aborting the sweep.
func (r *Registry) sweep(ctx context.Context) error {
	start := r.clock.Now()

	entries, err := scanAll(ctx, r.ds)
	if err != nil {
		return err
	}

	type cidDeletions struct {
		peers map[string]struct{}
	}
	deleted := make(map[string]*cidDeletions)
	var malformed, expired int

	var batch datastore.Batch
	for _, e := range entries {
		cidTxt, peerTxt, err := parseKey(e.Key)
		if err != nil {
			r.logger.Warnw("Skipping malformed provider record key during sweep", "key", e.Key, "err", err)
			malformed++
			continue
		}
		ts, err := decodeTimestamp(e.Value)
		if err != nil {
			r.logger.Warnw("Skipping malformed provider record value during sweep", "key", e.Key, "err", err)
			malformed++
			continue
		}

		if start.Sub(time.UnixMilli(ts)) <= r.provideValidity {
			continue
		}

		if batch == nil {
			batch, err = r.ds.Batch(ctx)
			if err != nil {
				return backendErr("batch", err)
			}
		}
		if err := batch.Delete(ctx, datastore.NewKey(e.Key)); err != nil {
			return backendErr("batch delete", err)
		}

		cd, ok := deleted[cidTxt]
		if !ok {
			cd = &cidDeletions{peers: make(map[string]struct{})}
			deleted[cidTxt] = cd
		}
		cd.peers[peerTxt] = struct{}{}
		expired++
	}

	if batch != nil {
		if err := batch.Commit(ctx); err != nil {
			return backendErr("batch commit", err)
		}
	}

	for cidTxt, cd := range deleted {
		m, ok := r.cache.get(cidTxt)
		if !ok {
			continue
		}
		for peerTxt := range cd.peers {
			delete(m, peerTxt)
		}
		if len(m) == 0 {
			r.cache.remove(cidTxt)
		} else {
			r.cache.put(cidTxt, m)
		}
	}

	r.logger.Infow("sweep complete",
		"scanned", len(entries),
		"expired", expired,
		"malformed", malformed,
		"elapsed", r.clock.Now().Sub(start),
	)
	return nil
}
