// Package osm defines the entity model stored in geoarena arenas: item kinds,
// locations and the value types of sub-collection elements.
package osm

// ItemKind identifies the type of a record or embedded sub-collection.
type ItemKind uint16

const (
	KindUndefined ItemKind = 0x00 // KindUndefined is the zero value and never valid in an arena.

	KindNode ItemKind = 0x01 // KindNode is a point entity with a single location.
	KindWay  ItemKind = 0x02 // KindWay is a polyline entity referencing an ordered list of nodes.
	KindArea ItemKind = 0x03 // KindArea is a polygon entity made of outer and inner rings.

	KindLocationList  ItemKind = 0x10 // KindLocationList is an ordered list of node references.
	KindRingList      ItemKind = 0x11 // KindRingList is a list of ring members tagged inner or outer.
	KindAttributeList ItemKind = 0x12 // KindAttributeList is an opaque list of key/value pairs.
)

// Element sizes in bytes of the fixed-size sub-collection elements.
const (
	NodeRefSize    = 16 // ref(8) + location(8)
	RingMemberSize = 24 // ref(8) + location(8) + ring(4) + role(1) + padding(3)
	AttributeSize  = 1  // attribute lists are raw "key\0value\0" bytes
)

// IsEntity reports whether k is a top-level record kind.
func (k ItemKind) IsEntity() bool {
	return k == KindNode || k == KindWay || k == KindArea
}

// IsSubcollection reports whether k is an embedded sub-collection kind.
func (k ItemKind) IsSubcollection() bool {
	return k == KindLocationList || k == KindRingList || k == KindAttributeList
}

// ElementSize returns the element size of a sub-collection kind, or 0 for other kinds.
func (k ItemKind) ElementSize() int {
	switch k { //nolint: exhaustive
	case KindLocationList:
		return NodeRefSize
	case KindRingList:
		return RingMemberSize
	case KindAttributeList:
		return AttributeSize
	default:
		return 0
	}
}

// Geometry returns the sub-collection kind that carries the geometry of an entity kind.
// Nodes carry their location as a fixed field, so KindUndefined is returned for them.
func (k ItemKind) Geometry() ItemKind {
	switch k { //nolint: exhaustive
	case KindWay:
		return KindLocationList
	case KindArea:
		return KindRingList
	default:
		return KindUndefined
	}
}

// String returns the lowercase item name used in error messages.
func (k ItemKind) String() string {
	switch k {
	case KindNode:
		return "node"
	case KindWay:
		return "way"
	case KindArea:
		return "area"
	case KindLocationList:
		return "location_list"
	case KindRingList:
		return "ring_list"
	case KindAttributeList:
		return "attribute_list"
	case KindUndefined:
		return "undefined"
	default:
		return "unknown"
	}
}

// Role tags a ring member as part of an outer or inner ring.
type Role uint8

const (
	RoleOuter Role = 0x1 // RoleOuter marks an outer ring (polygon shell).
	RoleInner Role = 0x2 // RoleInner marks an inner ring (hole).
)

func (r Role) String() string {
	switch r {
	case RoleOuter:
		return "outer"
	case RoleInner:
		return "inner"
	default:
		return "unknown"
	}
}

// NodeRef is a reference to a node by id, with an optionally resolved location.
type NodeRef struct {
	Ref      int64
	Location Location
}

// RingMember is a node reference that belongs to a numbered ring of an area.
//
// Members of the same ring share the Ring index and Role; a change of Ring index
// between consecutive members starts a new ring.
type RingMember struct {
	Ref      int64
	Location Location
	Ring     uint32
	Role     Role
}

// Attribute is an opaque key/value pair carried along an entity.
type Attribute struct {
	Key   string
	Value string
}
