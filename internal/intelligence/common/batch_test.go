package common

import (
	"context"
	stdliberrors "errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/newdrug-response/pkg/errors"
)

func TestItemStatus_String(t *testing.T) {
	assert.Equal(t, "PENDING", ItemStatusPending.String())
	assert.Equal(t, "SUCCESS", ItemStatusSuccess.String())
	assert.Equal(t, "FAILED", ItemStatusFailed.String())
	assert.Equal(t, "TIMEOUT", ItemStatusTimeout.String())
	assert.Equal(t, "CANCELLED", ItemStatusCancelled.String())
	assert.Equal(t, "UNKNOWN(42)", ItemStatus(42).String())
}

func TestProcess_AllSuccessInOrder(t *testing.T) {
	bp := NewBatchProcessor[int, int](WithMaxConcurrency(3))
	items := []int{5, 4, 3, 2, 1, 0}
	fn := func(ctx context.Context, idx int, item int) (int, error) {
		// later items finish first
		time.Sleep(time.Duration(item) * time.Millisecond)
		return idx * 10, nil
	}

	res, err := bp.Process(context.Background(), items, fn)
	require.NoError(t, err)
	assert.Equal(t, 6, res.TotalCount)
	assert.Equal(t, 6, res.SuccessCount)
	assert.Equal(t, []int{0, 10, 20, 30, 40, 50}, res.Values())
	for i, r := range res.Results {
		assert.Equal(t, i, r.Index)
		assert.Equal(t, ItemStatusSuccess, r.Status)
	}
}

func TestProcess_EmptyInput(t *testing.T) {
	bp := NewBatchProcessor[string, string]()
	res, err := bp.Process(context.Background(), nil, func(context.Context, int, string) (string, error) {
		return "", nil
	})
	require.NoError(t, err)
	assert.Equal(t, 0, res.TotalCount)
	assert.Empty(t, res.Values())
}

func TestProcess_NilFunc(t *testing.T) {
	bp := NewBatchProcessor[string, string]()
	_, err := bp.Process(context.Background(), []string{"a"}, nil)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
}

func TestProcess_ConcurrencyLimit(t *testing.T) {
	var current, peak int32
	bp := NewBatchProcessor[int, int](WithMaxConcurrency(2))

	fn := func(ctx context.Context, _ int, item int) (int, error) {
		c := atomic.AddInt32(&current, 1)
		defer atomic.AddInt32(&current, -1)
		for {
			p := atomic.LoadInt32(&peak)
			if c <= p || atomic.CompareAndSwapInt32(&peak, p, c) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		return item, nil
	}

	_, err := bp.Process(context.Background(), []int{1, 2, 3, 4, 5, 6, 7}, fn)
	require.NoError(t, err)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestProcess_FirstErrorAborts(t *testing.T) {
	boom := errors.New(errors.CodeModelFit, "boom")
	var started int32
	bp := NewBatchProcessor[int, int](WithMaxConcurrency(1))

	fn := func(ctx context.Context, idx int, _ int) (int, error) {
		atomic.AddInt32(&started, 1)
		if idx == 1 {
			return 0, boom
		}
		return idx, nil
	}

	res, err := bp.Process(context.Background(), []int{0, 1, 2, 3, 4}, fn)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeModelFit))
	assert.Equal(t, 1, res.SuccessCount)
	assert.Equal(t, 1, res.FailureCount)
	assert.Equal(t, 3, res.CancelledCount)
	assert.Equal(t, ItemStatusFailed, res.Results[1].Status)
	assert.Equal(t, ItemStatusCancelled, res.Results[4].Status)
	assert.Less(t, atomic.LoadInt32(&started), int32(5))
}

func TestProcess_ItemTimeout(t *testing.T) {
	bp := NewBatchProcessor[int, int](WithItemTimeout(10 * time.Millisecond))
	fn := func(ctx context.Context, _ int, _ int) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	}

	res, err := bp.Process(context.Background(), []int{1}, fn)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeCancelled))
	assert.Equal(t, ItemStatusTimeout, res.Results[0].Status)
	assert.True(t, stdliberrors.Is(res.Results[0].Error, context.DeadlineExceeded))
}

func TestProcess_ParentCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	bp := NewBatchProcessor[int, int]()
	res, err := bp.Process(ctx, []int{1, 2, 3}, func(context.Context, int, int) (int, error) {
		return 1, nil
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeCancelled))
	assert.Equal(t, 0, res.SuccessCount)
	assert.Equal(t, 3, res.CancelledCount)
}

func TestProcess_RecordsMetrics(t *testing.T) {
	m := NewInMemoryModelMetrics()
	bp := NewBatchProcessor[int, int](WithBatchMetrics(m), WithBatchName("fit"), WithMaxConcurrency(4))

	_, err := bp.Process(context.Background(), []int{1, 2, 3}, func(_ context.Context, _ int, v int) (int, error) {
		return v, nil
	})
	require.NoError(t, err)

	batches := m.Batches()
	require.Len(t, batches, 1)
	assert.Equal(t, "fit", batches[0].BatchName)
	assert.Equal(t, 3, batches[0].TotalItems)
	assert.Equal(t, 3, batches[0].SuccessItems)
	assert.Equal(t, 4, batches[0].MaxConcurrency)
	assert.Equal(t, int64(1), m.GetCurrentStats().Batches)
}

//Personal.AI order the ending
