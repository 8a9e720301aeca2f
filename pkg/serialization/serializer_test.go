package serialization

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestData mirrors the shape of a diagram document
type TestData struct {
	Title string            `json:"title" msgpack:"title" yaml:"title"`
	Nodes []TestNode        `json:"nodes" msgpack:"nodes" yaml:"nodes"`
	Meta  map[string]string `json:"meta" msgpack:"meta" yaml:"meta"`
	Count int               `json:"count" msgpack:"count" yaml:"count"`
}

type TestNode struct {
	ID    string  `json:"id" msgpack:"id" yaml:"id"`
	Label string  `json:"label" msgpack:"label" yaml:"label"`
	X     float64 `json:"x" msgpack:"x" yaml:"x"`
}

func sampleData() TestData {
	return TestData{
		Title: "Orders Pipeline",
		Nodes: []TestNode{
			{ID: "n1", Label: "Source 1", X: 10},
			{ID: "n2", Label: "Sink 1", X: 220.5},
		},
		Meta:  map[string]string{"owner": "data-eng"},
		Count: 42,
	}
}

func TestCodecs_RoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		codec Codec
	}{
		{"json", NewJSONCodec()},
		{"msgpack", NewMsgPackCodec()},
		{"yaml", NewYAMLCodec()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := tt.codec.Encode(sampleData())
			require.NoError(t, err)
			assert.NotEmpty(t, encoded)

			var decoded TestData
			require.NoError(t, tt.codec.Decode(encoded, &decoded))
			assert.Equal(t, sampleData(), decoded)
			assert.Equal(t, tt.name, tt.codec.Name())
		})
	}
}

func TestYAMLCodec_DecodesHandWrittenDocument(t *testing.T) {
	doc := `
title: Clickstream
nodes:
  - id: a
    label: Kafka
    x: 1
count: 2
`
	var decoded TestData
	require.NoError(t, NewYAMLCodec().Decode([]byte(doc), &decoded))
	assert.Equal(t, "Clickstream", decoded.Title)
	require.Len(t, decoded.Nodes, 1)
	assert.Equal(t, "Kafka", decoded.Nodes[0].Label)
	assert.Equal(t, 2, decoded.Count)
}

func TestSerializer_WithCompression(t *testing.T) {
	tests := []struct {
		name        string
		compression CompressionType
	}{
		{"gzip compression", CompressionGzip},
		{"zstd compression", CompressionZstd},
		{"no compression", CompressionNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serializer := NewSerializer(SerializationConfig{
				Codec:       NewMsgPackCodec(),
				Compression: tt.compression,
			})

			data := sampleData()
			data.Meta["notes"] = strings.Repeat("repeated content ", 200)

			serialized, err := serializer.Serialize(data)
			require.NoError(t, err)
			assert.NotEmpty(t, serialized)

			var deserialized TestData
			require.NoError(t, serializer.Deserialize(serialized, &deserialized))
			assert.Equal(t, data, deserialized)
		})
	}
}

func TestSerializer_CompressionShrinksRepetitiveData(t *testing.T) {
	data := sampleData()
	data.Meta["notes"] = strings.Repeat("abcdefgh", 1000)

	plain, err := NewSerializer(SerializationConfig{Codec: NewJSONCodec()}).Serialize(data)
	require.NoError(t, err)
	zst, err := NewSerializer(SerializationConfig{Codec: NewJSONCodec(), Compression: CompressionZstd}).Serialize(data)
	require.NoError(t, err)

	assert.Less(t, len(zst), len(plain))
}

func TestNewSerializer_Defaults(t *testing.T) {
	serializer := NewSerializer(SerializationConfig{})
	assert.Equal(t, "msgpack", serializer.Codec().Name())
	assert.Equal(t, CompressionNone, serializer.Compression())
}

func TestDefaultSerializer(t *testing.T) {
	serializer := DefaultSerializer()
	assert.Equal(t, "msgpack", serializer.Codec().Name())
	assert.Equal(t, CompressionZstd, serializer.Compression())

	serialized, err := serializer.Serialize(sampleData())
	require.NoError(t, err)

	var deserialized TestData
	require.NoError(t, serializer.Deserialize(serialized, &deserialized))
	assert.Equal(t, sampleData(), deserialized)
}

func TestSerializer_ErrorHandling(t *testing.T) {
	t.Run("corrupted gzip data", func(t *testing.T) {
		serializer := NewSerializer(SerializationConfig{Codec: NewJSONCodec(), Compression: CompressionGzip})

		var result TestData
		err := serializer.Deserialize([]byte("not gzip"), &result)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decompress gzip")
	})

	t.Run("corrupted zstd data", func(t *testing.T) {
		serializer := NewSerializer(SerializationConfig{Codec: NewJSONCodec(), Compression: CompressionZstd})

		var result TestData
		err := serializer.Deserialize([]byte("not zstd"), &result)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decompress zstd")
	})

	t.Run("undecodable payload", func(t *testing.T) {
		serializer := NewSerializer(SerializationConfig{Codec: NewJSONCodec()})

		var result TestData
		err := serializer.Deserialize([]byte("{broken"), &result)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decode json")
	})
}

func TestCodecForPath(t *testing.T) {
	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{"diagram.json", "json", false},
		{"diagram.YAML", "yaml", false},
		{"dir/diagram.yml", "yaml", false},
		{"archive.msgpack", "msgpack", false},
		{"diagram.txt", "", true},
		{"diagram", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			codec, err := CodecForPath(tt.path)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, codec.Name())
		})
	}
}

func TestParseCompression(t *testing.T) {
	tests := []struct {
		in      string
		want    CompressionType
		wantErr bool
	}{
		{"", CompressionNone, false},
		{"none", CompressionNone, false},
		{"GZIP", CompressionGzip, false},
		{"zstd", CompressionZstd, false},
		{"lz4", "", true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.in), func(t *testing.T) {
			got, err := ParseCompression(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownCompression)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, ".zst", CompressionZstd.Extension())
	assert.Equal(t, ".gz", CompressionGzip.Extension())
	assert.Equal(t, "", CompressionNone.Extension())
}

func BenchmarkSerializer_MsgPackZstd(b *testing.B) {
	serializer := DefaultSerializer()

	data := sampleData()
	for i := 0; i < 100; i++ {
		data.Nodes = append(data.Nodes, TestNode{ID: fmt.Sprintf("n%d", i), Label: "Process", X: float64(i)})
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		serialized, _ := serializer.Serialize(data)
		var deserialized TestData
		_ = serializer.Deserialize(serialized, &deserialized)
	}
}
