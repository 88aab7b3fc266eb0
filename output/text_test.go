package output

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/arloliu/geoarena/arena"
	"github.com/arloliu/geoarena/format"
	"github.com/arloliu/geoarena/geom"
	"github.com/arloliu/geoarena/osm"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==============================================================================
// Blackhole
// ==============================================================================

func TestBlackhole(t *testing.T) {
	enc := create(t, format.FormatBlackhole)
	assert.Empty(t, encode(t, enc, sampleArena(t)))
}

// ==============================================================================
// OPL
// ==============================================================================

func TestOPL_Encode(t *testing.T) {
	enc := create(t, format.FormatOPL)

	out := encode(t, enc, sampleArena(t))
	assert.Equal(t, ""+
		"n1 Tamenity=cafe x3.2 y4.2\n"+
		"n2 T x3.5 y4.7\n"+
		"w10 Thighway=primary N1x3.2y4.2,2x3.5y4.7\n"+
		"a20 Tbuilding=yes Ro:1,2,3,4,1;i:5,6,7,5\n",
		string(out))
}

func TestOPL_Unresolved(t *testing.T) {
	a, err := arena.New(256)
	require.NoError(t, err)
	addNode(t, a, 7, osm.UndefinedLocation(), nil)
	addWay(t, a, 8, nil, osm.NodeRef{Ref: 7, Location: osm.UndefinedLocation()}, osm.NodeRef{Ref: 9, Location: loc(-1.5, 2)})

	out := encode(t, create(t, format.FormatOPL), a)
	assert.Equal(t, "n7 T x y\nw8 T N7,9x-1.5y2\n", string(out))
}

func TestAppendOPLEscaped(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"a b", "a%20%b"},
		{"x,y=z", "x%2c%y%3d%z"},
		{"@home 100%", "%40%home%20%100%25%"},
		{"tab\there", "tab%9%here"},
		{"\x7f", "%7f%"},
		{"Straße", "Straße"},
		{"bad\xffbyte", "bad%ff%byte"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, string(appendOPLEscaped(nil, tt.in)))
		})
	}
}

// ==============================================================================
// Geometry formats
// ==============================================================================

func TestWKT_Encode(t *testing.T) {
	enc := create(t, format.FormatWKT)

	out := encode(t, enc, sampleArena(t))
	assert.Equal(t, ""+
		"n1\tPOINT(3.2 4.2)\n"+
		"n2\tPOINT(3.5 4.7)\n"+
		"w10\tLINESTRING(3.2 4.2,3.5 4.7)\n"+
		"a20\tMULTIPOLYGON(((0 0,1 0,1 1,0 1,0 0),(0.2 0.2,0.2 0.4,0.4 0.4,0.2 0.2)))\n",
		string(out))
	assert.Zero(t, enc.(SkipCounter).Skipped())
}

func TestWKT_GeometryOptions(t *testing.T) {
	enc := create(t, format.FormatWKT, WithGeometryOptions(geom.Options{Reverse: true}))

	out := encode(t, enc, sampleArena(t))
	assert.Contains(t, string(out), "w10\tLINESTRING(3.5 4.7,3.2 4.2)\n")
}

func TestWKT_SkipsInvalidGeometry(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	enc := create(t, format.FormatWKT, WithLogger(logger))

	out := encode(t, enc, brokenArena(t))
	assert.Equal(t, "n2\tPOINT(1 1)\n", string(out))
	assert.Equal(t, int64(3), enc.(SkipCounter).Skipped())
	assert.Equal(t, 3, strings.Count(logs.String(), "entity skipped"))

	// the counter accumulates across arenas
	encode(t, enc, brokenArena(t))
	assert.Equal(t, int64(6), enc.(SkipCounter).Skipped())
}

func TestWKB_Encode(t *testing.T) {
	enc := create(t, format.FormatWKB)

	out := encode(t, enc, sampleArena(t))
	lines := strings.Split(strings.TrimSuffix(string(out), "\n"), "\n")
	require.Len(t, lines, 4)

	want := []orb.Geometry{
		orb.Point{3.2, 4.2},
		orb.Point{3.5, 4.7},
		orb.LineString{{3.2, 4.2}, {3.5, 4.7}},
		nil,
	}
	for i, line := range lines {
		ref, hex, ok := strings.Cut(line, "\t")
		require.True(t, ok, line)
		assert.Equal(t, []string{"n1", "n2", "w10", "a20"}[i], ref)
		assert.Equal(t, strings.ToUpper(hex), hex)

		g, err := wkb.Unmarshal(decodeHex(t, hex))
		require.NoError(t, err)
		if want[i] != nil {
			assert.InDeltaSlice(t, flatten(want[i]), flatten(g), 1e-7)
		} else {
			mp, ok := g.(orb.MultiPolygon)
			require.True(t, ok)
			require.Len(t, mp, 1)
			assert.Len(t, mp[0], 2)
		}
	}
}

func TestGeoJSON_Encode(t *testing.T) {
	enc := create(t, format.FormatGeoJSON)

	out := encode(t, enc, sampleArena(t))
	lines := strings.Split(strings.TrimSuffix(string(out), "\n"), "\n")
	require.Len(t, lines, 4)

	features := make([]*geojson.Feature, len(lines))
	for i, line := range lines {
		f, err := geojson.UnmarshalFeature([]byte(line))
		require.NoError(t, err)
		features[i] = f
	}

	assert.Equal(t, "n1", features[0].ID)
	assert.Equal(t, "cafe", features[0].Properties.MustString("amenity"))
	assert.Equal(t, "Point", features[0].Geometry.GeoJSONType())

	assert.Equal(t, "w10", features[2].ID)
	assert.Equal(t, "LineString", features[2].Geometry.GeoJSONType())
	assert.Equal(t, "primary", features[2].Properties.MustString("highway"))

	assert.Equal(t, "a20", features[3].ID)
	mp, ok := features[3].Geometry.(orb.MultiPolygon)
	require.True(t, ok)
	require.Len(t, mp, 1)
	require.Len(t, mp[0], 2)
	assert.Len(t, mp[0][0], 5)
	assert.Len(t, mp[0][1], 4)
}

func TestGeoJSON_SkipsInvalidGeometry(t *testing.T) {
	enc := create(t, format.FormatGeoJSON, WithLogger(slog.New(slog.DiscardHandler)))

	out := encode(t, enc, brokenArena(t))
	assert.Equal(t, 1, bytes.Count(out, []byte("\n")))
	assert.Equal(t, int64(3), enc.(SkipCounter).Skipped())
}

func decodeHex(t *testing.T, s string) []byte {
	t.Helper()
	out := make([]byte, len(s)/2)
	for i := range out {
		hi := strings.IndexByte("0123456789ABCDEF", s[2*i])
		lo := strings.IndexByte("0123456789ABCDEF", s[2*i+1])
		require.True(t, hi >= 0 && lo >= 0, "bad hex %q", s)
		out[i] = byte(hi<<4 | lo)
	}

	return out
}

func flatten(g orb.Geometry) []float64 {
	var out []float64
	switch g := g.(type) {
	case orb.Point:
		out = append(out, g[0], g[1])
	case orb.LineString:
		for _, p := range g {
			out = append(out, p[0], p[1])
		}
	}

	return out
}
