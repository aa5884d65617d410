package worker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubmitPartitionRouting(t *testing.T) {
	pool := NewPool(4, nil)

	pool.Submit([]byte(`{}`), 0)
	pool.Submit([]byte(`{}`), 4) // wraps onto partition 0
	pool.Submit([]byte(`{}`), 2)

	assert.Equal(t, 2, len(pool.partitions[0]))
	assert.Equal(t, 0, len(pool.partitions[1]))
	assert.Equal(t, 1, len(pool.partitions[2]))
	assert.Equal(t, uint64(0), pool.Dropped())
}

func TestSubmitDropsWhenPartitionFull(t *testing.T) {
	pool := NewPool(1, nil)

	for i := 0; i < cap(pool.partitions[0])+3; i++ {
		pool.Submit([]byte(`{}`), 0)
	}

	assert.Equal(t, uint64(3), pool.Dropped())
	assert.Equal(t, cap(pool.partitions[0]), len(pool.partitions[0]))
}

func TestStopWithoutStart(t *testing.T) {
	pool := NewPool(2, nil)
	pool.Stop()
	assert.Equal(t, uint64(0), pool.Processed())
}

func TestSubmitAfterStopDropsInsteadOfPanicking(t *testing.T) {
	pool := NewPool(2, nil)
	pool.Start()
	pool.Stop()

	pool.Submit([]byte(`{}`), 0)
	pool.Submit([]byte(`{}`), 1)

	assert.Equal(t, uint64(2), pool.Dropped())

	// A second Stop is a no-op, not a double close.
	pool.Stop()
}
