package output

import (
	"encoding/xml"
	"fmt"

	"github.com/arloliu/geoarena/arena"
	"github.com/arloliu/geoarena/format"
	"github.com/arloliu/geoarena/internal/pool"
	gosm "github.com/arloliu/geoarena/osm"
	"github.com/paulmach/osm"
)

// xmlEncoder writes OSM XML. Nodes and ways map onto their OSM elements;
// areas become multipolygon relations whose node members carry the ring role.
type xmlEncoder struct {
	generator string
}

// NewXML creates an OSM XML encoder.
func NewXML(cfg Config) (Encoder, error) {
	return &xmlEncoder{generator: cfg.Generator}, nil
}

func (e *xmlEncoder) Format() format.FileFormat { return format.FormatXML }

func (e *xmlEncoder) Header() ([]byte, error) {
	generator, err := xmlAttr(e.generator)
	if err != nil {
		return nil, err
	}

	return fmt.Appendf(nil, "%s<osm version=\"0.6\" generator=\"%s\">\n", xml.Header, generator), nil
}

func (e *xmlEncoder) Footer() ([]byte, error) {
	return []byte("</osm>\n"), nil
}

func (e *xmlEncoder) Encode(a *arena.Arena) ([]byte, error) {
	return encodeWith(func(buf *pool.ByteBuffer) error {
		enc := xml.NewEncoder(buf)
		enc.Indent("  ", "  ")

		for rec := range a.All() {
			obj, err := toOSMObject(rec)
			if err != nil {
				return wrapRecord(rec, err)
			}

			if err := enc.Encode(obj); err != nil {
				return wrapRecord(rec, fmt.Errorf("xml: %w", err))
			}
			if err := enc.Flush(); err != nil {
				return err
			}
			buf.B = append(buf.B, '\n')
		}

		return nil
	})
}

func xmlAttr(s string) ([]byte, error) {
	var out xmlBuffer
	if err := xml.EscapeText(&out, []byte(s)); err != nil {
		return nil, err
	}

	return out, nil
}

type xmlBuffer []byte

func (b *xmlBuffer) Write(p []byte) (int, error) {
	*b = append(*b, p...)
	return len(p), nil
}

// toOSMObject converts a record into the matching paulmach/osm element.
func toOSMObject(rec arena.RecordView) (osm.Object, error) {
	attrs, err := rec.Attributes()
	if err != nil {
		return nil, err
	}

	tags := make(osm.Tags, 0, len(attrs))
	for _, attr := range attrs {
		tags = append(tags, osm.Tag{Key: attr.Key, Value: attr.Value})
	}

	switch rec.Kind() { //nolint: exhaustive
	case gosm.KindNode:
		loc, err := rec.Location()
		if err != nil {
			return nil, err
		}
		node := &osm.Node{ID: osm.NodeID(rec.ID()), Visible: true, Tags: tags}
		if loc.IsDefined() {
			node.Lat, node.Lon = loc.Lat(), loc.Lon()
		}

		return node, nil
	case gosm.KindWay:
		list, err := rec.NodeRefs()
		if err != nil {
			return nil, err
		}
		way := &osm.Way{ID: osm.WayID(rec.ID()), Visible: true, Tags: tags, Nodes: make(osm.WayNodes, 0, list.Len())}
		for _, e := range list.Elements() {
			wn := osm.WayNode{ID: osm.NodeID(e.Ref())}
			if loc := e.Location(); loc.IsDefined() {
				wn.Lat, wn.Lon = loc.Lat(), loc.Lon()
			}
			way.Nodes = append(way.Nodes, wn)
		}

		return way, nil
	default:
		list, err := rec.RingMembers()
		if err != nil {
			return nil, err
		}
		if tags.Find("type") == "" {
			tags = append(tags, osm.Tag{Key: "type", Value: "multipolygon"})
		}
		rel := &osm.Relation{ID: osm.RelationID(rec.ID()), Visible: true, Tags: tags, Members: make(osm.Members, 0, list.Len())}
		for _, e := range list.Elements() {
			rel.Members = append(rel.Members, osm.Member{Type: osm.TypeNode, Ref: e.Ref(), Role: e.Role().String()})
		}

		return rel, nil
	}
}
