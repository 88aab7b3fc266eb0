package compress

import "testing"

func BenchmarkAllCodecs_Compress(b *testing.B) {
	data := arenaLikePayload(4000)

	for name, codec := range getAllCodecs() {
		b.Run(name, func(b *testing.B) {
			b.SetBytes(int64(len(data)))
			b.ReportAllocs()
			for b.Loop() {
				_, _ = codec.Compress(data)
			}
		})
	}
}

func BenchmarkAllCodecs_DecompressSized(b *testing.B) {
	data := arenaLikePayload(4000)

	for name, codec := range getAllCodecs() {
		compressed, err := codec.Compress(data)
		if err != nil {
			b.Fatal(err)
		}
		b.Run(name, func(b *testing.B) {
			b.SetBytes(int64(len(data)))
			b.ReportAllocs()
			for b.Loop() {
				_, _ = codec.DecompressSized(compressed, len(data))
			}
		})
	}
}
