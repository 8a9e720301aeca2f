package serialization

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// CompressionType names how an archive payload is packed after encoding.
type CompressionType string

const (
	CompressionNone CompressionType = "none"
	CompressionGzip CompressionType = "gzip"
	CompressionZstd CompressionType = "zstd"
)

// ParseCompression reads the export.compression setting. Empty means none.
func ParseCompression(s string) (CompressionType, error) {
	c := CompressionType(strings.ToLower(strings.TrimSpace(s)))
	if c == "" {
		return CompressionNone, nil
	}
	if _, ok := packers[c]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCompression, s)
	}
	return c, nil
}

// Extension is appended after the codec name in archive filenames, as in
// pipeline-historical-data.msgpack.zst.
func (c CompressionType) Extension() string {
	return packers[c].ext
}

type packer struct {
	ext    string
	pack   func([]byte) ([]byte, error)
	unpack func([]byte) ([]byte, error)
}

func passthrough(data []byte) ([]byte, error) { return data, nil }

var packers = map[CompressionType]packer{
	CompressionNone: {"", passthrough, passthrough},
	CompressionGzip: {".gz", gzipPack, gzipUnpack},
	CompressionZstd: {".zst", zstdPack, zstdUnpack},
}

func gzipPack(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func gzipUnpack(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

// EncodeAll and DecodeAll are safe for concurrent use, so one encoder and
// one decoder serve every archive.
var (
	zstdOnce    sync.Once
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
	zstdErr     error
)

func zstdCodecs() (*zstd.Encoder, *zstd.Decoder, error) {
	zstdOnce.Do(func() {
		zstdEncoder, zstdErr = zstd.NewWriter(nil)
		if zstdErr != nil {
			return
		}
		zstdDecoder, zstdErr = zstd.NewReader(nil)
	})
	return zstdEncoder, zstdDecoder, zstdErr
}

func zstdPack(data []byte) ([]byte, error) {
	enc, _, err := zstdCodecs()
	if err != nil {
		return nil, err
	}
	return enc.EncodeAll(data, nil), nil
}

func zstdUnpack(data []byte) ([]byte, error) {
	_, dec, err := zstdCodecs()
	if err != nil {
		return nil, err
	}
	return dec.DecodeAll(data, nil)
}
