package buslog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sat8bit/sembang/bus"
	"github.com/sat8bit/sembang/message"
)

// BusHandler is a slog.Handler that writes log records to a bus.Bus.
// It also forwards every record to the wrapped handler, if any, so logs keep
// reaching stderr.
type BusHandler struct {
	bus    bus.Bus
	next   slog.Handler
	level  slog.Leveler
	prefix string
	attrs  []slog.Attr
}

// NewBusHandler creates a new BusHandler. next may be nil.
// Records below level are neither broadcast nor forwarded.
func NewBusHandler(b bus.Bus, next slog.Handler, level slog.Leveler) *BusHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &BusHandler{
		bus:   b,
		next:  next,
		level: level,
	}
}

// Enabled reports whether the handler handles records at the given level.
func (h *BusHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle broadcasts the record to the bus as a KindLog message and then
// passes it to the wrapped handler.
func (h *BusHandler) Handle(ctx context.Context, r slog.Record) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %s", r.Level, r.Message)
	for _, a := range h.attrs {
		writeAttr(&sb, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&sb, h.prefix, a)
		return true
	})

	err := h.bus.Broadcast(&message.Message{
		Text: sb.String(),
		At:   r.Time,
		Kind: message.KindLog,
	})
	// A closed bus only means the session is over.
	if errors.Is(err, bus.ErrClosed) {
		err = nil
	}

	if h.next != nil && h.next.Enabled(ctx, r.Level) {
		if nerr := h.next.Handle(ctx, r); nerr != nil {
			return errors.Join(err, nerr)
		}
	}
	return err
}

func writeAttr(sb *strings.Builder, prefix string, a slog.Attr) {
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			writeAttr(sb, prefix+a.Key+".", ga)
		}
		return
	}
	fmt.Fprintf(sb, " %s%s=%v", prefix, a.Key, a.Value.Resolve())
}

// WithAttrs returns a new BusHandler whose attributes consist of
// the handler's attributes followed by attrs.
func (h *BusHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := h.clone()
	for _, a := range attrs {
		c.attrs = append(c.attrs, slog.Attr{Key: h.prefix + a.Key, Value: a.Value})
	}
	if h.next != nil {
		c.next = h.next.WithAttrs(attrs)
	}
	return c
}

// WithGroup returns a new BusHandler with the given group name.
func (h *BusHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := h.clone()
	c.prefix = h.prefix + name + "."
	if h.next != nil {
		c.next = h.next.WithGroup(name)
	}
	return c
}

func (h *BusHandler) clone() *BusHandler {
	return &BusHandler{
		bus:    h.bus,
		next:   h.next,
		level:  h.level,
		prefix: h.prefix,
		attrs:  append([]slog.Attr(nil), h.attrs...),
	}
}

var _ slog.Handler = (*BusHandler)(nil)
