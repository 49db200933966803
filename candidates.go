package hmsearch

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/hmsearch/kvstore"
)

// candidate aggregates what lookup observed for one stored hash: how
// many partition probes returned it, and the match quality of the first
// two. Quality 0 is an exact partition hit, quality 1 a one-bit-flip
// hit. Observations past the second are counted but not tracked.
type candidate struct {
	matches     int
	firstMatch  int
	secondMatch int
}

// valid applies the HmSearch admission rule. By pigeonhole over the
// partitions, a stored hash within maxError of the query produces
// either one exact partition hit or at least two partition hits (even
// maxError), or at least two partition hits, not both flip hits when
// there are exactly two (odd maxError). Candidates that cannot satisfy this are spurious and skipped before
// the full distance computation.
func (c *candidate) valid(maxError int) bool {
	if maxError&1 == 1 {
		if c.matches < 3 {
			if c.matches == 1 || (c.firstMatch == 1 && c.secondMatch == 1) {
				return false
			}
		}
	} else {
		if c.matches < 2 && c.firstMatch == 1 {
			return false
		}
	}
	return true
}

// gatherCandidates runs the probe phase: for each partition, the exact
// partition key and every 1-bit variant of its window. Partitions fan
// out over an errgroup bounded by the configured probe concurrency;
// within one partition, probes run sequentially so the key buffer can be
// flipped in place.
func (db *DB) gatherCandidates(ctx context.Context, query []byte) (map[string]*candidate, error) {
	candidates := make(map[string]*candidate)
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(db.probeConcurrency)

	for i := 0; i < db.params.partitions; i++ {
		i := i
		g.Go(func() error {
			key, bits := db.params.partitionKey(query, i)

			// Exact match probe.
			if err := db.probe(ctx, key, 0, candidates, &mu); err != nil {
				return err
			}

			// 1-variant probes: flip each window bit in turn,
			// restoring it before the next. MSB-first within each
			// byte, matching the key codec.
			pbyte := (i * db.params.partitionBits) / 8
			for pbit := i * db.params.partitionBits; bits > 0; pbit, bits = pbit+1, bits-1 {
				flip := byte(1) << (7 - uint(pbit%8))
				slot := pbit/8 - pbyte + 2

				key[slot] ^= flip
				if err := db.probe(ctx, key, 1, candidates, &mu); err != nil {
					return err
				}
				key[slot] ^= flip
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return candidates, nil
}

// probe fetches one partition record and folds its member hashes into
// the candidate map with the given match quality. A missing record is
// not an error; any other store failure aborts the whole lookup.
func (db *DB) probe(ctx context.Context, key []byte, quality int, candidates map[string]*candidate, mu *sync.Mutex) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	value, err := db.store.Get(key)
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return nil
		}
		return err
	}

	hashBytes := db.params.hashBytes

	mu.Lock()
	defer mu.Unlock()
	for off := 0; off+hashBytes <= len(value); off += hashBytes {
		hash := string(value[off : off+hashBytes])
		c := candidates[hash]
		if c == nil {
			c = &candidate{}
			candidates[hash] = c
		}
		c.matches++
		switch c.matches {
		case 1:
			c.firstMatch = quality
		case 2:
			c.secondMatch = quality
		}
	}
	return nil
}
