// Package compress provides the block codecs applied to encoded output chunks.
//
// Encoders that produce binary chunks (the pbf and native formats) compress
// each chunk payload independently, so every chunk stays decodable on its own
// and the pipeline can compress in parallel workers.
//
// # Supported Algorithms
//
//   - None: payload stored as is
//   - Zstd: best ratio, moderate speed (klauspost/compress/zstd, or gozstd with cgo)
//   - S2: fast with a good ratio (klauspost/compress/s2)
//   - LZ4: fastest decompression (pierrec/lz4 block format)
//
// # Usage
//
//	codec, err := compress.GetCodec(format.CompressionZstd)
//	if err != nil {
//	    return err
//	}
//	payload, err := codec.Compress(arenaImage)
//	...
//	image, err := codec.DecompressSized(payload, rawSize)
//
// DecompressSized is preferred when the uncompressed size is recorded next to
// the payload: it lets LZ4 allocate once and rejects size mismatches for every
// algorithm.
//
// # Thread Safety
//
// All codecs are stateless values backed by sync.Pool'd encoders and are safe
// for concurrent use.
package compress
