package osm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocation_Undefined(t *testing.T) {
	undef := UndefinedLocation()
	require.False(t, undef.IsDefined())
	require.False(t, undef.IsValid())

	var zero Location
	require.True(t, zero.IsDefined(), "zero value is (0,0), a valid location")
	require.True(t, zero.IsValid())
	require.NotEqual(t, zero, undef)
}

func TestLocation_NewLocation(t *testing.T) {
	loc := NewLocation(3.2, 4.2)
	assert.Equal(t, int32(32_000_000), loc.X)
	assert.Equal(t, int32(42_000_000), loc.Y)
	assert.InDelta(t, 3.2, loc.Lon(), 1e-9)
	assert.InDelta(t, 4.2, loc.Lat(), 1e-9)
	assert.True(t, loc.IsValid())

	assert.False(t, NewLocation(180.5, 0).IsValid())
	assert.False(t, NewLocation(0, -90.5).IsValid())
}

func TestLocation_AppendText(t *testing.T) {
	tests := []struct {
		name string
		loc  Location
		sep  byte
		want string
	}{
		{"fraction", NewLocation(3.2, 4.2), ' ', "3.2 4.2"},
		{"integral", NewLocation(1, 8), ',', "1,8"},
		{"negative", NewLocation(-0.5, -12.25), ' ', "-0.5 -12.25"},
		{"small fraction", NewLocation(0.1, 9.1), ',', "0.1,9.1"},
		{"full precision", NewLocation(1.2345678, -7.0000001), ' ', "1.2345678 -7.0000001"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(tt.loc.AppendText(nil, tt.sep)))
		})
	}
}

func TestLocation_String(t *testing.T) {
	assert.Equal(t, "(3.5,4.7)", NewLocation(3.5, 4.7).String())
	assert.Equal(t, "(undefined,undefined)", UndefinedLocation().String())
}

func TestItemKind(t *testing.T) {
	for _, k := range []ItemKind{KindNode, KindWay, KindArea} {
		assert.True(t, k.IsEntity(), k.String())
		assert.False(t, k.IsSubcollection(), k.String())
		assert.Zero(t, k.ElementSize())
	}

	assert.Equal(t, NodeRefSize, KindLocationList.ElementSize())
	assert.Equal(t, RingMemberSize, KindRingList.ElementSize())
	assert.Equal(t, AttributeSize, KindAttributeList.ElementSize())

	assert.Equal(t, KindLocationList, KindWay.Geometry())
	assert.Equal(t, KindRingList, KindArea.Geometry())
	assert.Equal(t, KindUndefined, KindNode.Geometry())

	assert.Equal(t, "unknown", ItemKind(0x7f).String())
	assert.Equal(t, "way", KindWay.String())
	assert.Equal(t, "ring_list", KindRingList.String())
	assert.Equal(t, "outer", RoleOuter.String())
	assert.Equal(t, "inner", RoleInner.String())
}
