package outcome

import (
	"context"
	"log"
	"sync"
	"time"
)

// EmitterConfig configures the async outcome fan-out.
type EmitterConfig struct {
	// Workers bounds concurrent sink deliveries. Defaults to 4 if <= 0.
	Workers int

	// QueueSize is the pending-event buffer. Defaults to 256 if <= 0.
	QueueSize int

	// EmitTimeout bounds one event's delivery to all sinks. Defaults to
	// 30s if zero.
	EmitTimeout time.Duration
}

// Emitter fans verification outcomes out to its sinks asynchronously so a
// slow broker or object store never delays a scan response. Delivery is
// best-effort: when the queue is full the event is dropped with a log line
// rather than blocking verification.
type Emitter struct {
	sinks []Sink
	cfg   EmitterConfig
	ch    chan *Event
	wg    sync.WaitGroup
	once  sync.Once
}

// NewEmitter constructs an Emitter over the given sinks and starts its
// worker pool. A nil/empty sink list yields an emitter that discards
// everything, which keeps call sites unconditional.
func NewEmitter(sinks []Sink, cfg EmitterConfig) *Emitter {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.EmitTimeout == 0 {
		cfg.EmitTimeout = 30 * time.Second
	}
	e := &Emitter{
		sinks: sinks,
		cfg:   cfg,
		ch:    make(chan *Event, cfg.QueueSize),
	}
	for i := 0; i < cfg.Workers; i++ {
		e.wg.Add(1)
		go e.worker()
	}
	return e
}

// Emit queues an event for delivery. Never blocks.
func (e *Emitter) Emit(ev *Event) {
	if e == nil || len(e.sinks) == 0 || ev == nil {
		return
	}
	select {
	case e.ch <- ev:
	default:
		log.Printf("[outcome.emitter] queue full, dropping event %s", ev.ID)
	}
}

// Close stops accepting events, drains the queue and waits for in-flight
// deliveries to finish.
func (e *Emitter) Close() {
	if e == nil {
		return
	}
	e.once.Do(func() { close(e.ch) })
	e.wg.Wait()
}

func (e *Emitter) worker() {
	defer e.wg.Done()
	for ev := range e.ch {
		ctx, cancel := context.WithTimeout(context.Background(), e.cfg.EmitTimeout)
		for _, s := range e.sinks {
			if err := s.Emit(ctx, ev); err != nil {
				log.Printf("[outcome.emitter] deliver event %s: %v", ev.ID, err)
			}
		}
		cancel()
	}
}
