package molecule

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/newdrug-response/pkg/errors"
)

type memStore struct {
	mu      sync.Mutex
	data    map[string][]byte
	getErr  error
	setErr  error
	setCall int
}

func newMemStore() *memStore { return &memStore{data: make(map[string][]byte)} }

func (m *memStore) MGet(_ context.Context, keys []string) (map[string][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	out := make(map[string][]byte)
	for _, k := range keys {
		if b, ok := m.data[k]; ok {
			out[k] = b
		}
	}
	return out, nil
}

func (m *memStore) MSet(_ context.Context, items map[string][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCall++
	if m.setErr != nil {
		return m.setErr
	}
	for k, v := range items {
		m.data[k] = v
	}
	return nil
}

func TestCachingEncoder_MatchesInnerAndFillsStore(t *testing.T) {
	inner := newTestEncoder(t)
	store := newMemStore()
	enc := NewCachingEncoder(inner, store, nil)
	smiles := []string{"CCO", "c1ccccc1", "CCO"}

	m, err := enc.Encode(context.Background(), smiles)
	require.NoError(t, err)
	want, err := inner.Encode(context.Background(), smiles)
	require.NoError(t, err)
	for i := range smiles {
		assert.True(t, want.Row(i).Equal(m.Row(i)), "row %d", i)
	}

	assert.Len(t, store.data, 2)
	assert.Equal(t, CacheStats{Hits: 1, Misses: 2}, enc.Stats())

	m2, err := enc.Encode(context.Background(), smiles)
	require.NoError(t, err)
	for i := range smiles {
		assert.True(t, want.Row(i).Equal(m2.Row(i)), "row %d", i)
	}
	assert.Equal(t, CacheStats{Hits: 4, Misses: 2}, enc.Stats())
	assert.Equal(t, 1, store.setCall)
}

func TestCachingEncoder_EncodeAllKeepsFailures(t *testing.T) {
	enc := NewCachingEncoder(newTestEncoder(t), newMemStore(), nil)

	res, err := enc.EncodeAll(context.Background(), []string{"CCO", "C1CC", "CCN"})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, res.Kept)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, 1, res.Failures[0].Index)
	assert.Equal(t, 2, res.Matrix.Len())
}

func TestCachingEncoder_EncodeFailsOnInvalid(t *testing.T) {
	store := newMemStore()
	enc := NewCachingEncoder(newTestEncoder(t), store, nil)

	_, err := enc.Encode(context.Background(), []string{"CCO", "C1CC"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeMoleculeInvalidSMILES))
	assert.Zero(t, store.setCall)
}

func TestCachingEncoder_StoreFailuresDegrade(t *testing.T) {
	store := newMemStore()
	store.getErr = fmt.Errorf("connection refused")
	store.setErr = fmt.Errorf("connection refused")
	enc := NewCachingEncoder(newTestEncoder(t), store, nil)

	m, err := enc.Encode(context.Background(), []string{"CCO", "CCN"})
	require.NoError(t, err)
	assert.Equal(t, 2, m.Len())
	assert.Equal(t, uint64(2), enc.Stats().Misses)
}

func TestCachingEncoder_IgnoresCorruptEntries(t *testing.T) {
	inner := newTestEncoder(t)
	store := newMemStore()
	store.data[FingerprintKey(inner.opts, "CCO")] = []byte("garbage")
	enc := NewCachingEncoder(inner, store, nil)

	m, err := enc.Encode(context.Background(), []string{"CCO"})
	require.NoError(t, err)
	want, err := inner.EncodeOne("CCO")
	require.NoError(t, err)
	assert.True(t, want.Equal(m.Row(0)))
	assert.Equal(t, uint64(1), enc.Stats().Misses)
}

func TestCachingEncoder_Cancelled(t *testing.T) {
	enc := NewCachingEncoder(newTestEncoder(t), newMemStore(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := enc.Encode(ctx, []string{"CCO"})
	assert.True(t, errors.IsCode(err, errors.CodeCancelled))
}

func TestFingerprintKey(t *testing.T) {
	opts := DefaultFingerprintOptions()
	k := FingerprintKey(opts, "CCO")
	assert.Equal(t, k, FingerprintKey(opts, "CCO"))
	assert.NotEqual(t, k, FingerprintKey(opts, "OCC"))

	opts.Size = 1024
	assert.NotEqual(t, k, FingerprintKey(opts, "CCO"))
	assert.Regexp(t, `^v2:1024\.1\.7\.2:[0-9a-f]{32}$`, FingerprintKey(opts, "CCO"))
	assert.True(t, strings.HasPrefix(k, fingerprintScheme+":"))
}

//Personal.AI order the ending
