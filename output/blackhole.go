package output

import (
	"github.com/arloliu/geoarena/arena"
	"github.com/arloliu/geoarena/format"
)

type blackholeEncoder struct {
	noFraming
}

// NewBlackhole creates an encoder that discards every arena.
func NewBlackhole(Config) (Encoder, error) {
	return blackholeEncoder{}, nil
}

func (blackholeEncoder) Format() format.FileFormat { return format.FormatBlackhole }

func (blackholeEncoder) Encode(*arena.Arena) ([]byte, error) { return nil, nil }
