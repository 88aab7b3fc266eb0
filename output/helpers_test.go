package output

import (
	"testing"

	"github.com/arloliu/geoarena/arena"
	"github.com/arloliu/geoarena/format"
	"github.com/arloliu/geoarena/osm"
	"github.com/stretchr/testify/require"
)

func loc(lon, lat float64) osm.Location {
	return osm.NewLocation(lon, lat)
}

func attrs(kv ...string) []osm.Attribute {
	out := make([]osm.Attribute, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, osm.Attribute{Key: kv[i], Value: kv[i+1]})
	}

	return out
}

func addAttributes(t *testing.T, b *arena.Builder, list []osm.Attribute) {
	t.Helper()
	if len(list) == 0 {
		return
	}

	sub, err := b.BeginSubcollection(osm.KindAttributeList)
	require.NoError(t, err)
	for _, attr := range list {
		require.NoError(t, sub.AddAttribute(attr.Key, attr.Value))
	}
	require.NoError(t, sub.Close())
}

func addNode(t *testing.T, a *arena.Arena, id int64, l osm.Location, tags []osm.Attribute) {
	t.Helper()
	b, err := a.BeginRecord(osm.KindNode, id)
	require.NoError(t, err)
	defer b.Abort()

	require.NoError(t, b.SetLocation(l))
	addAttributes(t, b, tags)
	_, err = b.Commit()
	require.NoError(t, err)
}

func addWay(t *testing.T, a *arena.Arena, id int64, tags []osm.Attribute, refs ...osm.NodeRef) {
	t.Helper()
	b, err := a.BeginRecord(osm.KindWay, id)
	require.NoError(t, err)
	defer b.Abort()

	nodes, err := b.BeginSubcollection(osm.KindLocationList)
	require.NoError(t, err)
	for _, ref := range refs {
		require.NoError(t, nodes.AddNodeRef(ref))
	}
	require.NoError(t, nodes.Close())
	addAttributes(t, b, tags)

	_, err = b.Commit()
	require.NoError(t, err)
}

func addArea(t *testing.T, a *arena.Arena, id int64, tags []osm.Attribute, members ...osm.RingMember) {
	t.Helper()
	b, err := a.BeginRecord(osm.KindArea, id)
	require.NoError(t, err)
	defer b.Abort()

	rings, err := b.BeginSubcollection(osm.KindRingList)
	require.NoError(t, err)
	for _, m := range members {
		require.NoError(t, rings.AddRingMember(m))
	}
	require.NoError(t, rings.Close())
	addAttributes(t, b, tags)

	_, err = b.Commit()
	require.NoError(t, err)
}

func ring(index uint32, role osm.Role, refs []int64, locs ...osm.Location) []osm.RingMember {
	out := make([]osm.RingMember, len(refs))
	for i, ref := range refs {
		out[i] = osm.RingMember{Ref: ref, Location: locs[i], Ring: index, Role: role}
	}

	return out
}

// sampleArena holds two nodes, a way over them and an area with one hole.
func sampleArena(t *testing.T) *arena.Arena {
	t.Helper()
	a, err := arena.New(1024)
	require.NoError(t, err)

	addNode(t, a, 1, loc(3.2, 4.2), attrs("amenity", "cafe"))
	addNode(t, a, 2, loc(3.5, 4.7), nil)
	addWay(t, a, 10, attrs("highway", "primary"),
		osm.NodeRef{Ref: 1, Location: loc(3.2, 4.2)},
		osm.NodeRef{Ref: 2, Location: loc(3.5, 4.7)},
	)

	members := ring(0, osm.RoleOuter, []int64{1, 2, 3, 4, 1},
		loc(0, 0), loc(1, 0), loc(1, 1), loc(0, 1), loc(0, 0))
	members = append(members, ring(1, osm.RoleInner, []int64{5, 6, 7, 5},
		loc(0.2, 0.2), loc(0.2, 0.4), loc(0.4, 0.4), loc(0.2, 0.2))...)
	addArea(t, a, 20, attrs("building", "yes"), members...)

	return a
}

// brokenArena holds entities without a valid geometry around one valid node.
func brokenArena(t *testing.T) *arena.Arena {
	t.Helper()
	a, err := arena.New(512)
	require.NoError(t, err)

	addNode(t, a, 1, osm.UndefinedLocation(), nil)
	addWay(t, a, 10, nil, osm.NodeRef{Ref: 1, Location: osm.UndefinedLocation()}, osm.NodeRef{Ref: 2, Location: loc(1, 1)})
	addWay(t, a, 11, nil, osm.NodeRef{Ref: 2, Location: loc(1, 1)})
	addNode(t, a, 2, loc(1, 1), nil)

	return a
}

func encode(t *testing.T, enc Encoder, arenas ...*arena.Arena) []byte {
	t.Helper()
	out, err := enc.Header()
	require.NoError(t, err)
	for _, a := range arenas {
		chunk, err := enc.Encode(a)
		require.NoError(t, err)
		out = append(out, chunk...)
	}
	footer, err := enc.Footer()
	require.NoError(t, err)

	return append(out, footer...)
}

func create(t *testing.T, f format.FileFormat, opts ...Option) Encoder {
	t.Helper()
	enc, err := Create(f, opts...)
	require.NoError(t, err)
	require.Equal(t, f, enc.Format())

	return enc
}
