package goFlow

import (
	"io"
	"log/slog"

	internalaudit "github.com/MrEthical07/goFlow/internal/audit"
)

// AuditEvent is one flow outcome delivered to an [AuditSink].
//
//	Docs: docs/audit.md
type AuditEvent = internalaudit.Event

// AuditSink receives audit events from the engine's dispatcher goroutine.
type AuditSink = internalaudit.Sink

// NoOpSink discards every event.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink forwards events into a buffered channel.
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink writes one JSON object per line.
type JSONWriterSink = internalaudit.JSONWriterSink

// SlogSink logs events through a [slog.Logger].
type SlogSink = internalaudit.SlogSink

// NewChannelSink returns a sink whose Events channel holds up to buffer events.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink returns a sink writing JSON lines to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// NewSlogSink returns a sink logging through logger, or slog.Default when nil.
func NewSlogSink(logger *slog.Logger) *SlogSink {
	return internalaudit.NewSlogSink(logger)
}

func newAuditDispatcher(cfg AuditConfig, sink AuditSink) *internalaudit.Dispatcher {
	return internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Enabled,
		BufferSize: cfg.BufferSize,
		DropIfFull: cfg.DropIfFull,
	}, sink)
}
