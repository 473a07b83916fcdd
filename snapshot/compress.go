package snapshot

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec selects the payload compression algorithm.
type Codec uint8

const (
	// CodecNone stores the payload uncompressed.
	CodecNone Codec = 0
	// CodecLZ4 uses LZ4 block compression (fast, good for hot restores).
	CodecLZ4 Codec = 1
	// CodecZSTD uses ZSTD block compression (better ratio, good for cold storage).
	CodecZSTD Codec = 2
)

// ErrUnknownCodec is returned when an envelope names a codec this build
// does not understand.
var ErrUnknownCodec = errors.New("snapshot: unknown compression codec")

func (c Codec) String() string {
	switch c {
	case CodecNone:
		return "none"
	case CodecLZ4:
		return "lz4"
	case CodecZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("codec(%d)", uint8(c))
	}
}

// ZSTD encoder/decoder pools for efficiency.
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

// Compressed payloads are a sequence of blocks, each prefixed with
// [UncompressedSize uint32][CompressedSize uint32]. CompressedSize == 0
// marks a block stored raw (incompressible data).
const (
	blockHeaderSize  = 8
	defaultBlockSize = 256 * 1024
)

// encodePayload compresses data according to codec. CodecNone returns
// data unchanged.
func encodePayload(data []byte, codec Codec) ([]byte, error) {
	switch codec {
	case CodecNone:
		return data, nil
	case CodecLZ4, CodecZSTD:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCodec, codec)
	}

	out := make([]byte, 0, blockHeaderSize+len(data)/2)
	for off := 0; off < len(data); off += defaultBlockSize {
		end := off + defaultBlockSize
		if end > len(data) {
			end = len(data)
		}
		block, err := compressBlock(data[off:end], codec)
		if err != nil {
			return nil, err
		}
		out = append(out, block...)
	}
	return out, nil
}

// decodePayload reverses encodePayload.
func decodePayload(data []byte, codec Codec) ([]byte, error) {
	switch codec {
	case CodecNone:
		return data, nil
	case CodecLZ4, CodecZSTD:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCodec, codec)
	}

	var out []byte
	off := 0
	for off < len(data) {
		block, n, err := decompressBlock(data[off:], codec)
		if err != nil {
			return nil, err
		}
		out = append(out, block...)
		off += n
	}
	return out, nil
}

// compressBlock compresses one block, falling back to raw storage when
// compression does not pay (ratio > 0.9).
func compressBlock(data []byte, codec Codec) ([]byte, error) {
	var compressed []byte
	var err error

	switch codec {
	case CodecLZ4:
		compressed, err = compressBlockLZ4(data)
	case CodecZSTD:
		enc := getZstdEncoder()
		compressed = enc.EncodeAll(data, nil)
		zstdEncoderPool.Put(enc)
	}
	if err != nil {
		return nil, err
	}

	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9 {
		result := make([]byte, blockHeaderSize+len(data))
		binary.LittleEndian.PutUint32(result[0:], uint32(len(data)))
		binary.LittleEndian.PutUint32(result[4:], 0) // raw block
		copy(result[blockHeaderSize:], data)
		return result, nil
	}

	result := make([]byte, blockHeaderSize+len(compressed))
	binary.LittleEndian.PutUint32(result[0:], uint32(len(data)))
	binary.LittleEndian.PutUint32(result[4:], uint32(len(compressed)))
	copy(result[blockHeaderSize:], compressed)
	return result, nil
}

func compressBlockLZ4(data []byte) ([]byte, error) {
	compressed := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, compressed, nil)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil // incompressible
	}
	return compressed[:n], nil
}

// decompressBlock decompresses the block at the start of data and
// returns the plain bytes plus the encoded block length consumed.
func decompressBlock(data []byte, codec Codec) ([]byte, int, error) {
	if len(data) < blockHeaderSize {
		return nil, 0, io.ErrUnexpectedEOF
	}

	uncompressedSize := binary.LittleEndian.Uint32(data[0:])
	compressedSize := binary.LittleEndian.Uint32(data[4:])

	if compressedSize == 0 {
		end := blockHeaderSize + int(uncompressedSize)
		if len(data) < end {
			return nil, 0, io.ErrUnexpectedEOF
		}
		return data[blockHeaderSize:end], end, nil
	}

	end := blockHeaderSize + int(compressedSize)
	if len(data) < end {
		return nil, 0, io.ErrUnexpectedEOF
	}
	compressedData := data[blockHeaderSize:end]
	result := make([]byte, uncompressedSize)

	switch codec {
	case CodecLZ4:
		n, err := lz4.UncompressBlock(compressedData, result)
		if err != nil {
			return nil, 0, err
		}
		if uint32(n) != uncompressedSize {
			return nil, 0, errors.New("snapshot: decompressed size mismatch")
		}
		return result, end, nil

	case CodecZSTD:
		dec := getZstdDecoder()
		decoded, err := dec.DecodeAll(compressedData, result[:0])
		zstdDecoderPool.Put(dec)
		if err != nil {
			return nil, 0, err
		}
		if uint32(len(decoded)) != uncompressedSize {
			return nil, 0, errors.New("snapshot: decompressed size mismatch")
		}
		return decoded, end, nil
	}

	return nil, 0, fmt.Errorf("%w: %d", ErrUnknownCodec, codec)
}
