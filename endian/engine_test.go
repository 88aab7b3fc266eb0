package endian

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEngine(t *testing.T) {
	require.Equal(t, binary.LittleEndian, Engine(false))
	require.Equal(t, binary.BigEndian, Engine(true))

	little := make([]byte, 4)
	big := make([]byte, 4)
	Engine(false).PutUint32(little, 0x01020304)
	Engine(true).PutUint32(big, 0x01020304)

	require.Equal(t, []byte{0x04, 0x03, 0x02, 0x01}, little)
	require.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, big)
}

func TestSignedHelpers(t *testing.T) {
	for _, engine := range []EndianEngine{GetLittleEndianEngine(), GetBigEndianEngine()} {
		buf := make([]byte, 8)

		for _, v := range []int32{0, 1, -1, math.MaxInt32, math.MinInt32, -1234567} {
			PutInt32(engine, buf, v)
			require.Equal(t, v, Int32(engine, buf))
		}

		for _, v := range []int64{0, 1, -1, math.MaxInt64, math.MinInt64, -9876543210} {
			PutInt64(engine, buf, v)
			require.Equal(t, v, Int64(engine, buf))
		}
	}
}
