// Package serialization encodes diagram documents and export archives.
//
// Documents are picked by file extension (CodecForPath). Archives go through
// a Serializer, which encodes with a Codec and then packs the bytes with the
// configured compression; Deserialize reverses both steps.
package serialization

import "fmt"

// SerializationConfig selects the codec and compression of a Serializer.
type SerializationConfig struct {
	Codec       Codec
	Compression CompressionType
}

// Serializer is an encode-then-compress pipeline. It holds no state between
// calls and is safe for concurrent use.
type Serializer struct {
	codec  Codec
	kind   CompressionType
	packer packer
}

// NewSerializer fills in msgpack and no compression for zero fields. An
// unknown compression falls back to none; use ParseCompression to reject it
// earlier.
func NewSerializer(config SerializationConfig) *Serializer {
	s := &Serializer{codec: config.Codec, kind: config.Compression}
	if s.codec == nil {
		s.codec = NewMsgPackCodec()
	}
	p, ok := packers[s.kind]
	if !ok {
		s.kind, p = CompressionNone, packers[CompressionNone]
	}
	s.packer = p
	return s
}

// DefaultSerializer is what export archives use: msgpack packed with zstd.
func DefaultSerializer() *Serializer {
	return NewSerializer(SerializationConfig{Codec: NewMsgPackCodec(), Compression: CompressionZstd})
}

func (s *Serializer) Codec() Codec { return s.codec }

func (s *Serializer) Compression() CompressionType { return s.kind }

// Serialize encodes v and compresses the result.
func (s *Serializer) Serialize(v interface{}) ([]byte, error) {
	data, err := s.codec.Encode(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", s.codec.Name(), err)
	}
	if data, err = s.packer.pack(data); err != nil {
		return nil, fmt.Errorf("compress %s: %w", s.kind, err)
	}
	return data, nil
}

// Deserialize decompresses data and decodes it into v.
func (s *Serializer) Deserialize(data []byte, v interface{}) error {
	data, err := s.packer.unpack(data)
	if err != nil {
		return fmt.Errorf("decompress %s: %w", s.kind, err)
	}
	if err := s.codec.Decode(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", s.codec.Name(), err)
	}
	return nil
}
