package serialization

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// Codec turns diagram documents and export artifacts into bytes and back.
// Name doubles as the file extension of what it writes.
type Codec interface {
	Encode(v interface{}) ([]byte, error)
	Decode(data []byte, v interface{}) error
	Name() string
}

// JSONCodec writes indented JSON so saved documents diff cleanly.
type JSONCodec struct{}

func (JSONCodec) Encode(v interface{}) ([]byte, error) { return json.MarshalIndent(v, "", "  ") }

func (JSONCodec) Decode(data []byte, v interface{}) error { return json.Unmarshal(data, v) }

func (JSONCodec) Name() string { return "json" }

// MsgPackCodec is the compact binary form used for export archives.
type MsgPackCodec struct{}

func (MsgPackCodec) Encode(v interface{}) ([]byte, error) { return msgpack.Marshal(v) }

func (MsgPackCodec) Decode(data []byte, v interface{}) error { return msgpack.Unmarshal(data, v) }

func (MsgPackCodec) Name() string { return "msgpack" }

// YAMLCodec reads and writes hand-edited diagram documents.
type YAMLCodec struct{}

func (YAMLCodec) Encode(v interface{}) ([]byte, error) { return yaml.Marshal(v) }

func (YAMLCodec) Decode(data []byte, v interface{}) error { return yaml.Unmarshal(data, v) }

func (YAMLCodec) Name() string { return "yaml" }

func NewJSONCodec() Codec { return JSONCodec{} }

func NewMsgPackCodec() Codec { return MsgPackCodec{} }

func NewYAMLCodec() Codec { return YAMLCodec{} }

var codecsByExt = map[string]func() Codec{
	".json":    NewJSONCodec,
	".yaml":    NewYAMLCodec,
	".yml":     NewYAMLCodec,
	".msgpack": NewMsgPackCodec,
	".mpk":     NewMsgPackCodec,
}

// CodecForPath picks the codec for a document file by its extension.
func CodecForPath(path string) (Codec, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if newCodec, ok := codecsByExt[ext]; ok {
		return newCodec(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
}
