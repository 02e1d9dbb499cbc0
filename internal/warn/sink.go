// Package warn defines the structured warning sink and its standard
// implementations.
package warn

import (
	"sync"

	"go.uber.org/zap"

	"github.com/isotools/pcfgen/internal/models"
)

// Sink receives structured warning events. Implementations must be safe for
// use from the per-component assembly stage.
type Sink interface {
	Warn(e models.WarningEvent)
}

// Event is a convenience constructor for a warning event.
func Event(module, operation, message string, ctx map[string]string) models.WarningEvent {
	return models.WarningEvent{Module: module, Operation: operation, Message: message, Context: ctx}
}

// ZapSink logs warnings through a zap logger.
type ZapSink struct {
	log *zap.Logger
}

// NewZapSink wraps a zap logger as a warning sink.
func NewZapSink(log *zap.Logger) *ZapSink {
	return &ZapSink{log: log}
}

func (s *ZapSink) Warn(e models.WarningEvent) {
	fields := []zap.Field{
		zap.String("module", e.Module),
		zap.String("operation", e.Operation),
	}
	for k, v := range e.Context {
		fields = append(fields, zap.String(k, v))
	}
	s.log.Warn(e.Message, fields...)
}

// Collector accumulates warnings in memory, for tests and for attaching the
// run's warnings to its result.
type Collector struct {
	mu     sync.Mutex
	events []models.WarningEvent
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Warn(e models.WarningEvent) {
	c.mu.Lock()
	c.events = append(c.events, e)
	c.mu.Unlock()
}

// Events returns a copy of the collected warnings.
func (c *Collector) Events() []models.WarningEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.WarningEvent, len(c.events))
	copy(out, c.events)
	return out
}

// Len returns the number of collected warnings.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

// Tee fans a warning out to every sink in the list.
type Tee []Sink

func (t Tee) Warn(e models.WarningEvent) {
	for _, s := range t {
		if s != nil {
			s.Warn(e)
		}
	}
}

// WithContext returns a sink that injects fixed context entries (for example
// the conversion run ID) into every event before forwarding it.
type WithContext struct {
	Next Sink
	Ctx  map[string]string
}

func (w WithContext) Warn(e models.WarningEvent) {
	if len(w.Ctx) > 0 {
		merged := make(map[string]string, len(e.Context)+len(w.Ctx))
		for k, v := range w.Ctx {
			merged[k] = v
		}
		for k, v := range e.Context {
			merged[k] = v
		}
		e.Context = merged
	}
	if w.Next != nil {
		w.Next.Warn(e)
	}
}
