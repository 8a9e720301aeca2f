// Package repository selects and opens the configured export sink.
package repository

import (
	"context"
	"fmt"
	"io"

	"github.com/ThatOrJohn/flowturi-designer/internal/adapters/repository/archive"
	"github.com/ThatOrJohn/flowturi-designer/internal/adapters/repository/file"
	"github.com/ThatOrJohn/flowturi-designer/internal/adapters/repository/memory"
	"github.com/ThatOrJohn/flowturi-designer/internal/adapters/repository/postgres"
	"github.com/ThatOrJohn/flowturi-designer/internal/adapters/repository/sqlite"
	"github.com/ThatOrJohn/flowturi-designer/internal/core/export"
	"github.com/ThatOrJohn/flowturi-designer/internal/infrastructure/config"
	"github.com/ThatOrJohn/flowturi-designer/pkg/serialization"
)

// OpenedSink is a sink together with whatever must be released after use
type OpenedSink struct {
	export.Sink
	closer io.Closer
}

// Close releases database handles and background workers
func (o *OpenedSink) Close() error {
	if o.closer == nil {
		return nil
	}
	return o.closer.Close()
}

// OpenSink builds the sink named by cfg.Sink
func OpenSink(ctx context.Context, cfg config.ExportConfig) (*OpenedSink, error) {
	switch cfg.Sink {
	case config.SinkFile, "":
		return &OpenedSink{Sink: file.NewSink(cfg.Dir)}, nil

	case config.SinkArchive:
		compression, err := serialization.ParseCompression(cfg.Compression)
		if err != nil {
			return nil, err
		}
		ser := serialization.NewSerializer(serialization.SerializationConfig{
			Codec:       serialization.NewMsgPackCodec(),
			Compression: compression,
		})
		return &OpenedSink{Sink: archive.NewSink(cfg.Dir, ser)}, nil

	case config.SinkSQLite:
		s, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &OpenedSink{Sink: s, closer: s}, nil

	case config.SinkPostgres:
		s, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return &OpenedSink{Sink: s, closer: s}, nil

	case config.SinkMemory:
		s := memory.DefaultStore()
		return &OpenedSink{Sink: s, closer: s}, nil

	default:
		return nil, fmt.Errorf("%w: %q", export.ErrUnknownSink, cfg.Sink)
	}
}
