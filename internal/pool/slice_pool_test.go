package pool

import (
	"testing"

	"github.com/arloliu/geoarena/osm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLocationSlice(t *testing.T) {
	ptr, cleanup := GetLocationSlice(8)
	require.NotNil(t, ptr)
	assert.Empty(t, *ptr)
	assert.GreaterOrEqual(t, cap(*ptr), 8)

	*ptr = append(*ptr, osm.NewLocation(1, 2), osm.NewLocation(3, 4))
	cleanup()

	ptr2, cleanup2 := GetLocationSlice(1)
	defer cleanup2()
	assert.Empty(t, *ptr2, "pooled slice must come back empty")
}

func TestGetLocationSlice_Grow(t *testing.T) {
	ptr, cleanup := GetLocationSlice(0)
	defer cleanup()

	for i := range 100 {
		*ptr = append(*ptr, osm.NewLocation(float64(i), 0))
	}
	assert.Len(t, *ptr, 100)
}
