// Package codec provides binary serialization of arrays for snapshotting
// intermediate results to disk or shipping them between processes.
//
// Uses CRC32 (IEEE polynomial) for corruption detection. Not
// cryptographically secure; do not use for tamper detection.
package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/ndmorph/ndarray"
)

const (
	// MagicNumber identifies array snapshot streams (ASCII: "NDM1").
	MagicNumber = 0x4E444D31
	// Version is the current stream format version.
	Version = 0x00010000
)

var (
	ErrInvalidMagic       = errors.New("invalid magic number")
	ErrInvalidVersion     = errors.New("unsupported version")
	ErrElementType        = errors.New("element type mismatch")
	ErrInvalidCompression = errors.New("unknown compression type")
	ErrChecksum           = errors.New("checksum mismatch")
	ErrCorruptStream      = errors.New("corrupt stream")
)

// Compression defines the payload compression algorithm.
type Compression uint8

const (
	// CompressionNone stores the payload raw.
	CompressionNone Compression = 0
	// CompressionLZ4 uses LZ4 block compression (fast, good for hot data).
	CompressionLZ4 Compression = 1
	// CompressionZSTD uses ZSTD block compression (better ratio, good for cold data).
	CompressionZSTD Compression = 2
)

// header precedes the payload block.
// Layout: Magic, Version, ElemType, Compression, Rank, then Rank uint64
// dimensions, then the payload block, then a CRC32 of the raw payload.
type header struct {
	Magic       uint32
	Version     uint32
	ElemType    uint8
	Compression uint8
	Rank        uint16
}

// blockHeader precedes the payload bytes.
// CompressedSize == 0 means the payload is stored raw.
type blockHeader struct {
	UncompressedSize uint32
	CompressedSize   uint32
}

// ZSTD encoder/decoder pools for efficiency
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

func putZstdEncoder(enc *zstd.Encoder) { zstdEncoderPool.Put(enc) }

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

func putZstdDecoder(dec *zstd.Decoder) { zstdDecoderPool.Put(dec) }

// Encode writes the array to w in the snapshot format.
func Encode[T ndarray.Scalar](w io.Writer, a *ndarray.Array[T], c Compression) error {
	payload := encodeElems(a.Data())

	h := header{
		Magic:       MagicNumber,
		Version:     Version,
		ElemType:    elemTypeOf[T](),
		Compression: uint8(c),
		Rank:        uint16(a.Rank()),
	}
	if err := binary.Write(w, binary.LittleEndian, &h); err != nil {
		return err
	}
	dims := make([]uint64, a.Rank())
	for i := range dims {
		dims[i] = uint64(a.Dim(i))
	}
	if err := binary.Write(w, binary.LittleEndian, dims); err != nil {
		return err
	}

	block, err := compressPayload(payload, c)
	if err != nil {
		return err
	}
	if _, err := w.Write(block); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, crc32.ChecksumIEEE(payload))
}

// Decode reads an array of element type T from r. Decoding into a different
// element type than was encoded fails with ErrElementType.
func Decode[T ndarray.Scalar](r io.Reader) (*ndarray.Array[T], error) {
	var h header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, err
	}
	if h.Magic != MagicNumber {
		return nil, fmt.Errorf("%w: got 0x%08x", ErrInvalidMagic, h.Magic)
	}
	if h.Version != Version {
		return nil, fmt.Errorf("%w: got 0x%08x", ErrInvalidVersion, h.Version)
	}
	if want := elemTypeOf[T](); h.ElemType != want {
		return nil, fmt.Errorf("%w: stream holds type %d, want %d", ErrElementType, h.ElemType, want)
	}

	dims64 := make([]uint64, h.Rank)
	if err := binary.Read(r, binary.LittleEndian, dims64); err != nil {
		return nil, err
	}
	dims := make([]int, h.Rank)
	n := 1
	for i, d := range dims64 {
		dims[i] = int(d)
		n *= int(d)
	}

	payload, err := decompressPayload(r, Compression(h.Compression))
	if err != nil {
		return nil, err
	}

	var sum uint32
	if err := binary.Read(r, binary.LittleEndian, &sum); err != nil {
		return nil, err
	}
	if crc32.ChecksumIEEE(payload) != sum {
		return nil, ErrChecksum
	}

	data, err := decodeElems[T](payload, n)
	if err != nil {
		return nil, err
	}
	return ndarray.FromSlice(data, dims...)
}

// compressPayload produces the payload block: header plus bytes. When
// compression is off or does not pay (ratio above 0.9) the payload is
// stored raw.
func compressPayload(payload []byte, c Compression) ([]byte, error) {
	raw := func() []byte {
		out := make([]byte, 8+len(payload))
		binary.LittleEndian.PutUint32(out[0:], uint32(len(payload)))
		binary.LittleEndian.PutUint32(out[4:], 0)
		copy(out[8:], payload)
		return out
	}

	var compressed []byte
	switch c {
	case CompressionNone:
		return raw(), nil
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(payload)))
		n, err := lz4.CompressBlock(payload, buf, nil)
		if err != nil {
			return nil, err
		}
		compressed = buf[:n] // n == 0 means incompressible
	case CompressionZSTD:
		enc := getZstdEncoder()
		compressed = enc.EncodeAll(payload, nil)
		putZstdEncoder(enc)
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidCompression, c)
	}

	if len(compressed) == 0 || float64(len(compressed)) > float64(len(payload))*0.9 {
		return raw(), nil
	}
	out := make([]byte, 8+len(compressed))
	binary.LittleEndian.PutUint32(out[0:], uint32(len(payload)))
	binary.LittleEndian.PutUint32(out[4:], uint32(len(compressed)))
	copy(out[8:], compressed)
	return out, nil
}

func decompressPayload(r io.Reader, c Compression) ([]byte, error) {
	var bh blockHeader
	if err := binary.Read(r, binary.LittleEndian, &bh); err != nil {
		return nil, err
	}

	if bh.CompressedSize == 0 {
		payload := make([]byte, bh.UncompressedSize)
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, err
		}
		return payload, nil
	}

	compressed := make([]byte, bh.CompressedSize)
	if _, err := io.ReadFull(r, compressed); err != nil {
		return nil, err
	}
	result := make([]byte, bh.UncompressedSize)

	switch c {
	case CompressionLZ4:
		n, err := lz4.UncompressBlock(compressed, result)
		if err != nil {
			return nil, err
		}
		if uint32(n) != bh.UncompressedSize {
			return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorruptStream)
		}
		return result, nil
	case CompressionZSTD:
		dec := getZstdDecoder()
		decoded, err := dec.DecodeAll(compressed, result[:0])
		putZstdDecoder(dec)
		if err != nil {
			return nil, err
		}
		if uint32(len(decoded)) != bh.UncompressedSize {
			return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorruptStream)
		}
		return decoded, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidCompression, c)
	}
}
