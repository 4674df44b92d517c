package molecule

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/bits-and-blooms/bitset"
	"github.com/zeebo/xxh3"

	"github.com/turtacn/newdrug-response/internal/infrastructure/monitoring/logging"
)

// FingerprintStore is a byte-oriented key/value store for serialized
// fingerprints.  Missing keys are simply absent from the MGet result.
type FingerprintStore interface {
	MGet(ctx context.Context, keys []string) (map[string][]byte, error)
	MSet(ctx context.Context, items map[string][]byte) error
}

// CacheStats counts fingerprint lookups served from and missed by the store.
type CacheStats struct {
	Hits   uint64
	Misses uint64
}

// CachingEncoder decorates a TopologicalEncoder with a FingerprintStore.
// Store failures degrade to recomputation and are only logged, so the
// result is always identical to the undecorated encoder.
type CachingEncoder struct {
	inner  *TopologicalEncoder
	store  FingerprintStore
	logger logging.Logger

	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewCachingEncoder wraps inner with store.
func NewCachingEncoder(inner *TopologicalEncoder, store FingerprintStore, log logging.Logger) *CachingEncoder {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &CachingEncoder{inner: inner, store: store, logger: log}
}

// Width returns the fingerprint width in bits.
func (c *CachingEncoder) Width() int { return c.inner.Width() }

// Stats returns the cumulative hit and miss counts.
func (c *CachingEncoder) Stats() CacheStats {
	return CacheStats{Hits: c.hits.Load(), Misses: c.misses.Load()}
}

// Encode behaves like TopologicalEncoder.Encode.
func (c *CachingEncoder) Encode(ctx context.Context, smiles []string) (*FingerprintMatrix, error) {
	lookup := c.prefetch(ctx, smiles)
	m, err := encodeStrict(ctx, c.inner.Width(), smiles, lookup.encode)
	if err != nil {
		return nil, err
	}
	c.flush(ctx, lookup)
	return m, nil
}

// EncodeAll behaves like TopologicalEncoder.EncodeAll.
func (c *CachingEncoder) EncodeAll(ctx context.Context, smiles []string) (*EncodeResult, error) {
	lookup := c.prefetch(ctx, smiles)
	res, err := encodeLenient(ctx, c.inner.Width(), smiles, lookup.encode)
	if err != nil {
		return nil, err
	}
	c.flush(ctx, lookup)
	return res, nil
}

// fingerprintScheme versions the parser and hashing rules behind a cached
// fingerprint.  Bump it whenever the bits for an unchanged SMILES and
// unchanged options can differ, e.g. after a change to aromaticity
// perception or to atomInvariant.
const fingerprintScheme = "v2"

// FingerprintKey identifies the fingerprint of smiles under opts.  Changing
// any option or the scheme version yields a different key.
func FingerprintKey(opts FingerprintOptions, smiles string) string {
	sum := xxh3.HashString128(smiles).Bytes()
	return fmt.Sprintf("%s:%d.%d.%d.%d:%x", fingerprintScheme,
		opts.Size, opts.MinPath, opts.MaxPath, opts.BitsPerHash, sum)
}

// ─────────────────────────────────────────────────────────────────────────────
// Lookup
// ─────────────────────────────────────────────────────────────────────────────

type cacheLookup struct {
	owner  *CachingEncoder
	cached map[string]*bitset.BitSet
	fresh  map[string][]byte
}

func (c *CachingEncoder) prefetch(ctx context.Context, smiles []string) *cacheLookup {
	l := &cacheLookup{
		owner:  c,
		cached: make(map[string]*bitset.BitSet),
		fresh:  make(map[string][]byte),
	}

	seen := make(map[string]struct{}, len(smiles))
	keys := make([]string, 0, len(smiles))
	for _, s := range smiles {
		k := FingerprintKey(c.inner.opts, s)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return l
	}

	blobs, err := c.store.MGet(ctx, keys)
	if err != nil {
		c.logger.Warn("fingerprint cache read failed", logging.Err(err), logging.Int("keys", len(keys)))
		return l
	}
	for k, b := range blobs {
		fp := &bitset.BitSet{}
		if err := fp.UnmarshalBinary(b); err != nil || fp.Len() != uint(c.inner.Width()) {
			c.logger.Debug("discarding unreadable cached fingerprint", logging.String("key", k))
			continue
		}
		l.cached[k] = fp
	}
	return l
}

func (l *cacheLookup) encode(smiles string) (*bitset.BitSet, error) {
	c := l.owner
	k := FingerprintKey(c.inner.opts, smiles)
	if fp, ok := l.cached[k]; ok {
		c.hits.Add(1)
		return fp.Clone(), nil
	}
	c.misses.Add(1)

	fp, err := c.inner.EncodeOne(smiles)
	if err != nil {
		return nil, err
	}
	if _, ok := l.fresh[k]; !ok {
		if b, err := fp.MarshalBinary(); err == nil {
			l.fresh[k] = b
		}
	}
	l.cached[k] = fp
	return fp.Clone(), nil
}

func (c *CachingEncoder) flush(ctx context.Context, l *cacheLookup) {
	if len(l.fresh) == 0 {
		return
	}
	if err := c.store.MSet(ctx, l.fresh); err != nil {
		c.logger.Warn("fingerprint cache write failed", logging.Err(err), logging.Int("keys", len(l.fresh)))
		return
	}
	c.logger.Debug("fingerprints cached", logging.Int("keys", len(l.fresh)))
}

//Personal.AI order the ending
