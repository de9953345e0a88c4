// package outcome is the caller-side audit trail for verification results:
// every scan outcome can be fanned out to Kafka, S3 and/or a local
// directory. The verification engine itself stores nothing; this package
// exists so fleet operators can.
package outcome

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/batchguard/batchguard/internal/verify"
)

// Event is one verification outcome as audited by the fleet operator.
type Event struct {
	ID          string    `json:"id"`
	OK          bool      `json:"ok"`
	Reason      string    `json:"reasonCode,omitempty"`
	Duplicate   bool      `json:"duplicate"`
	IdentityKey string    `json:"identityKey,omitempty"`
	BatchID     string    `json:"batchId,omitempty"`
	Batch       string    `json:"batch,omitempty"`
	Ts          time.Time `json:"ts"`
}

// NewEvent builds an Event from a verification outcome. Identity details
// are only present when the ledger matched; rejected scans of unknown or
// malformed tokens carry no claim fields (nothing trustworthy to record).
func NewEvent(out verify.Outcome, ts time.Time) *Event {
	ev := &Event{
		ID:        uuid.New().String(),
		OK:        out.OK,
		Reason:    string(out.Reason),
		Duplicate: out.Duplicate,
		Ts:        ts.UTC(),
	}
	if out.Record != nil {
		ev.IdentityKey = out.Record.Key()
		ev.BatchID = out.Record.ID
		ev.Batch = out.Record.Batch
	}
	return ev
}

// envelope is the canonical wire/object shape shared by all sinks.
func (ev *Event) envelope() map[string]interface{} {
	return map[string]interface{}{
		"id":          ev.ID,
		"ok":          ev.OK,
		"reasonCode":  ev.Reason,
		"duplicate":   ev.Duplicate,
		"identityKey": ev.IdentityKey,
		"batchId":     ev.BatchID,
		"batch":       ev.Batch,
		"ts":          ev.Ts.Format(time.RFC3339Nano),
	}
}

// Sink delivers outcome events somewhere durable. Implementations must be
// safe for concurrent Emit calls.
type Sink interface {
	Emit(ctx context.Context, ev *Event) error
}
