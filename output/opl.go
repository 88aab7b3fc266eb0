package output

import (
	"strconv"
	"unicode/utf8"

	"github.com/arloliu/geoarena/arena"
	"github.com/arloliu/geoarena/format"
	"github.com/arloliu/geoarena/internal/pool"
	"github.com/arloliu/geoarena/osm"
)

// oplEncoder writes one entity per line:
//
//	n1 Tamenity=cafe x3.2 y4.2
//	w10 Thighway=primary N1x3.2y4.2,2x3.5y4.7
//	a20 Tbuilding=yes Ro:1,2,3,1;i:5,6,7,5
//
// Unresolved way nodes are written without coordinates. Space, comma, equals,
// at and percent signs and control characters in attributes are escaped as
// %<hex code point>%.
type oplEncoder struct {
	noFraming
}

// NewOPL creates an OPL encoder.
func NewOPL(Config) (Encoder, error) {
	return oplEncoder{}, nil
}

func (oplEncoder) Format() format.FileFormat { return format.FormatOPL }

func (oplEncoder) Encode(a *arena.Arena) ([]byte, error) {
	return encodeWith(func(buf *pool.ByteBuffer) error {
		for rec := range a.All() {
			line, err := appendOPL(buf.B, rec)
			if err != nil {
				return wrapRecord(rec, err)
			}
			buf.B = line
		}

		return nil
	})
}

func appendOPL(dst []byte, rec arena.RecordView) ([]byte, error) {
	switch rec.Kind() { //nolint: exhaustive
	case osm.KindNode:
		dst = append(dst, 'n')
	case osm.KindWay:
		dst = append(dst, 'w')
	default:
		dst = append(dst, 'a')
	}
	dst = strconv.AppendInt(dst, rec.ID(), 10)

	attrs, err := rec.Attributes()
	if err != nil {
		return dst, err
	}
	dst = append(dst, " T"...)
	for i, attr := range attrs {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = appendOPLEscaped(dst, attr.Key)
		dst = append(dst, '=')
		dst = appendOPLEscaped(dst, attr.Value)
	}

	switch rec.Kind() { //nolint: exhaustive
	case osm.KindNode:
		loc, err := rec.Location()
		if err != nil {
			return dst, err
		}
		dst = append(dst, " x"...)
		if loc.IsDefined() {
			dst = osm.AppendCoordinate(dst, loc.X)
		}
		dst = append(dst, " y"...)
		if loc.IsDefined() {
			dst = osm.AppendCoordinate(dst, loc.Y)
		}
	case osm.KindWay:
		list, err := rec.NodeRefs()
		if err != nil {
			return dst, err
		}
		dst = append(dst, " N"...)
		for i, e := range list.Elements() {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = appendOPLNodeRef(dst, e.Ref(), e.Location())
		}
	case osm.KindArea:
		list, err := rec.RingMembers()
		if err != nil {
			return dst, err
		}
		dst = append(dst, " R"...)
		ring := uint32(0)
		for i, e := range list.Elements() {
			switch {
			case i == 0 || e.Ring() != ring:
				if i > 0 {
					dst = append(dst, ';')
				}
				ring = e.Ring()
				if e.Role() == osm.RoleInner {
					dst = append(dst, "i:"...)
				} else {
					dst = append(dst, "o:"...)
				}
			default:
				dst = append(dst, ',')
			}
			dst = strconv.AppendInt(dst, e.Ref(), 10)
		}
	}

	return append(dst, '\n'), nil
}

func appendOPLNodeRef(dst []byte, ref int64, loc osm.Location) []byte {
	dst = strconv.AppendInt(dst, ref, 10)
	if loc.IsDefined() {
		dst = append(dst, 'x')
		dst = osm.AppendCoordinate(dst, loc.X)
		dst = append(dst, 'y')
		dst = osm.AppendCoordinate(dst, loc.Y)
	}

	return dst
}

func appendOPLEscaped(dst []byte, s string) []byte {
	for i, w := 0, 0; i < len(s); i += w {
		r, width := utf8.DecodeRuneInString(s[i:])
		w = width

		switch {
		case r == utf8.RuneError && width == 1:
			dst = appendOPLCodePoint(dst, rune(s[i]))
		case r <= 0x20, r == 0x7f, r == ',', r == '=', r == '@', r == '%':
			dst = appendOPLCodePoint(dst, r)
		default:
			dst = append(dst, s[i:i+width]...)
		}
	}

	return dst
}

func appendOPLCodePoint(dst []byte, r rune) []byte {
	dst = append(dst, '%')
	dst = strconv.AppendInt(dst, int64(r), 16)

	return append(dst, '%')
}
