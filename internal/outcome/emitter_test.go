package outcome

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/batchguard/batchguard/internal/ledger"
	"github.com/batchguard/batchguard/internal/verify"
)

// fakeSink implements Sink for tests.
type fakeSink struct {
	mu     sync.Mutex
	events []*Event
	err    error
}

func (f *fakeSink) Emit(ctx context.Context, ev *Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, ev)
	return nil
}

func (f *fakeSink) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

func sampleOutcome(t *testing.T) verify.Outcome {
	t.Helper()
	mfg, err := ledger.ParseDate("2025-01-15")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	exp, err := ledger.ParseDate("2027-08-31")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	return verify.Outcome{
		OK: true,
		Record: &ledger.BatchRecord{
			ID: "MED-001", Batch: "B456789", Checksum: "f9a2",
			Mfg: mfg, Exp: exp, Status: ledger.StatusActive,
		},
	}
}

func TestNewEventFromMatchedOutcome(t *testing.T) {
	ts := time.Date(2026, 1, 1, 10, 30, 0, 0, time.UTC)
	ev := NewEvent(sampleOutcome(t), ts)

	if ev.ID == "" {
		t.Fatalf("expected generated event id")
	}
	if !ev.OK || ev.Reason != "" {
		t.Fatalf("unexpected ok/reason: %+v", ev)
	}
	if ev.BatchID != "MED-001" || ev.Batch != "B456789" {
		t.Fatalf("claim fields not carried over: %+v", ev)
	}
	if ev.IdentityKey == "" {
		t.Fatalf("expected identity key for matched outcome")
	}
	if !ev.Ts.Equal(ts) {
		t.Fatalf("timestamp not preserved: %v", ev.Ts)
	}
}

func TestNewEventFromRejectedOutcome(t *testing.T) {
	ev := NewEvent(verify.Outcome{Reason: verify.ReasonInvalidToken}, time.Now())
	if ev.OK || ev.Reason != "INVALID_TOKEN" {
		t.Fatalf("unexpected event: %+v", ev)
	}
	// nothing trustworthy was scanned, so no claim fields
	if ev.IdentityKey != "" || ev.BatchID != "" || ev.Batch != "" {
		t.Fatalf("rejected outcome leaked claim fields: %+v", ev)
	}
}

func TestEmitterFansOutToAllSinks(t *testing.T) {
	a := &fakeSink{}
	b := &fakeSink{}
	em := NewEmitter([]Sink{a, b}, EmitterConfig{Workers: 2, QueueSize: 16})

	for i := 0; i < 5; i++ {
		em.Emit(NewEvent(sampleOutcome(t), time.Now().UTC()))
	}
	em.Close()

	if a.count() != 5 || b.count() != 5 {
		t.Fatalf("expected 5 events per sink, got a=%d b=%d", a.count(), b.count())
	}
}

func TestEmitterSinkErrorDoesNotStopOthers(t *testing.T) {
	failing := &fakeSink{err: errors.New("broker down")}
	ok := &fakeSink{}
	em := NewEmitter([]Sink{failing, ok}, EmitterConfig{Workers: 1, QueueSize: 4})

	em.Emit(NewEvent(sampleOutcome(t), time.Now().UTC()))
	em.Close()

	if ok.count() != 1 {
		t.Fatalf("healthy sink should still receive the event, got %d", ok.count())
	}
}

func TestEmitterWithoutSinksDiscards(t *testing.T) {
	em := NewEmitter(nil, EmitterConfig{})
	// must not block or panic
	em.Emit(NewEvent(sampleOutcome(t), time.Now().UTC()))
	em.Close()
}

func TestEnvelopeOmitsNothingItHas(t *testing.T) {
	ev := NewEvent(sampleOutcome(t), time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	env := ev.envelope()
	for _, k := range []string{"id", "ok", "reasonCode", "duplicate", "identityKey", "batchId", "batch", "ts"} {
		if _, present := env[k]; !present {
			t.Fatalf("envelope missing %q", k)
		}
	}
	if env["ts"] != "2026-01-01T00:00:00Z" {
		t.Fatalf("unexpected ts formatting: %v", env["ts"])
	}
}
