package pool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// ByteBuffer Tests
// =============================================================================

func TestNewByteBuffer(t *testing.T) {
	bb := NewByteBuffer(1024)

	require.NotNil(t, bb)
	assert.Equal(t, 0, bb.Len(), "new buffer should have zero length")
	assert.Equal(t, 1024, bb.Cap(), "new buffer should have specified capacity")
}

func TestByteBuffer_Reset(t *testing.T) {
	bb := NewByteBuffer(ArenaBufferDefaultSize)
	bb.MustWrite([]byte("some data"))
	originalCap := bb.Cap()

	bb.Reset()

	assert.Equal(t, 0, bb.Len(), "Reset should clear the buffer length")
	assert.Equal(t, originalCap, bb.Cap(), "Reset should preserve capacity")
}

func TestByteBuffer_Write(t *testing.T) {
	bb := NewByteBuffer(16)

	n, err := bb.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	bb.MustWrite([]byte(" world"))
	assert.Equal(t, []byte("hello world"), bb.Bytes())
}

func TestByteBuffer_SetLength(t *testing.T) {
	bb := NewByteBuffer(32)
	bb.MustWrite([]byte("abcdef"))

	bb.SetLength(3)
	assert.Equal(t, []byte("abc"), bb.Bytes())

	assert.Panics(t, func() { bb.SetLength(33) })
	assert.Panics(t, func() { bb.SetLength(-1) })
}

func TestByteBuffer_Extend(t *testing.T) {
	bb := NewByteBuffer(8)

	assert.True(t, bb.Extend(8))
	assert.Equal(t, 8, bb.Len())
	assert.False(t, bb.Extend(1), "Extend must not grow")

	bb.ExtendOrGrow(4)
	assert.Equal(t, 12, bb.Len())
	assert.GreaterOrEqual(t, bb.Cap(), 12)
}

func TestByteBuffer_ExtendZeroed(t *testing.T) {
	bb := NewByteBuffer(8)
	bb.MustWrite([]byte{1, 2, 3, 4, 5, 6, 7, 8})
	bb.SetLength(2)

	region := bb.ExtendZeroed(6)

	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0}, region)
	assert.Equal(t, []byte{1, 2, 0, 0, 0, 0, 0, 0}, bb.Bytes())
}

// =============================================================================
// ByteBuffer Grow Tests
// =============================================================================

func TestByteBuffer_Grow(t *testing.T) {
	t.Run("Sufficient capacity", func(t *testing.T) {
		bb := NewByteBuffer(ArenaBufferDefaultSize)
		bb.Grow(100)
		assert.Equal(t, ArenaBufferDefaultSize, bb.Cap(), "should not reallocate when capacity is sufficient")
	})

	t.Run("Small buffer grows by default step", func(t *testing.T) {
		bb := NewByteBuffer(ArenaBufferDefaultSize)
		bb.ExtendOrGrow(ArenaBufferDefaultSize)

		bb.Grow(1)

		assert.Equal(t, 2*ArenaBufferDefaultSize, bb.Cap())
		assert.Equal(t, ArenaBufferDefaultSize, bb.Len(), "length should not change")
	})

	t.Run("Large buffer grows by a quarter", func(t *testing.T) {
		size := 8 * ArenaBufferDefaultSize
		bb := &ByteBuffer{B: make([]byte, size)}

		bb.Grow(1)

		assert.Equal(t, size+size/4, bb.Cap())
	})

	t.Run("Huge request", func(t *testing.T) {
		bb := NewByteBuffer(16)
		bb.Grow(ArenaBufferDefaultSize * 10)
		assert.GreaterOrEqual(t, bb.Cap(), ArenaBufferDefaultSize*10)
	})

	t.Run("Preserves data", func(t *testing.T) {
		bb := NewByteBuffer(8)
		data := []byte("important data that must be preserved")
		bb.MustWrite(data)

		bb.Grow(ArenaBufferDefaultSize * 2)

		assert.Equal(t, data, bb.Bytes())
	})
}

func TestByteBuffer_Reserve(t *testing.T) {
	bb := NewByteBuffer(64)
	bb.MustWrite([]byte("abc"))

	bb.Reserve(32)
	assert.Equal(t, 64, bb.Cap(), "Reserve never shrinks")

	bb.Reserve(100000)
	assert.GreaterOrEqual(t, bb.Cap(), 100000)
	assert.Equal(t, []byte("abc"), bb.Bytes())

	bb.Release()
	assert.Equal(t, 0, bb.Cap())
}

// =============================================================================
// Pool Tests
// =============================================================================

func TestChunkBufferPool(t *testing.T) {
	bb := GetChunkBuffer()
	require.NotNil(t, bb)
	assert.Equal(t, 0, bb.Len(), "pooled buffer should be empty")
	assert.GreaterOrEqual(t, bb.Cap(), ChunkBufferDefaultSize)

	bb.MustWrite([]byte("data"))
	PutChunkBuffer(bb)
	assert.Equal(t, 0, bb.Len(), "Put should reset the buffer")

	assert.NotPanics(t, func() { PutChunkBuffer(nil) })
}

func TestScratchBufferPool(t *testing.T) {
	bb := GetScratchBuffer()
	require.NotNil(t, bb)
	assert.GreaterOrEqual(t, bb.Cap(), ScratchBufferDefaultSize)
	PutScratchBuffer(bb)
}

func TestByteBufferPool_MaxThreshold(t *testing.T) {
	p := NewByteBufferPool(1024, 4096)

	bb := p.Get()
	bb.Grow(10000)
	require.Greater(t, bb.Cap(), 4096)
	bb.MustWrite([]byte("kept"))

	p.Put(bb)
	assert.Equal(t, 4, bb.Len(), "oversized buffers are discarded untouched")

	bb2 := p.Get()
	assert.LessOrEqual(t, bb2.Cap(), 4096, "should not reuse buffer larger than threshold")
}

func TestByteBufferPool_ConcurrentAccess(t *testing.T) {
	const numGoroutines = 32
	const numIterations = 500

	p := NewByteBufferPool(64, 0)

	var wg sync.WaitGroup
	wg.Add(numGoroutines)
	for range numGoroutines {
		go func() {
			defer wg.Done()
			for range numIterations {
				bb := p.Get()
				bb.MustWrite([]byte("data"))
				assert.Equal(t, 4, bb.Len())
				p.Put(bb)
			}
		}()
	}
	wg.Wait()
}
