// package verify composes codec, ledger, seen-set and rules into the single
// verification entry point.
package verify

import (
	"time"

	"github.com/batchguard/batchguard/internal/ledger"
	"github.com/batchguard/batchguard/internal/rules"
	"github.com/batchguard/batchguard/internal/seen"
	"github.com/batchguard/batchguard/internal/token"
)

// ReasonCode classifies a failed verification. Empty on success.
type ReasonCode string

const (
	ReasonInvalidToken ReasonCode = "INVALID_TOKEN"
	ReasonNoMatch      ReasonCode = "NO_MATCH"
	ReasonRecalled     ReasonCode = "INVALID_RECALLED"
	ReasonExpired      ReasonCode = "INVALID_EXPIRED"
)

// Outcome is the structured result of one verification attempt. Record and
// Duplicate are populated whenever a ledger match was found, even if the
// rules rejected it; they are never populated on decode or no-match
// failures, where there is nothing trustworthy to show.
type Outcome struct {
	OK        bool
	Reason    ReasonCode
	Record    *ledger.BatchRecord
	Duplicate bool
}

// Verifier holds the read-only ledger snapshot and the mutable seen-set.
// Verify may be called from any number of goroutines; the seen-set is the
// only shared mutable state and synchronizes internally.
type Verifier struct {
	index *ledger.Index
	seen  *seen.Set
}

// New constructs a Verifier over a ledger snapshot with a fresh seen-set.
func New(index *ledger.Index) *Verifier {
	return NewWithSeen(index, seen.NewSet())
}

// NewWithSeen constructs a Verifier sharing (or isolating) an explicit
// seen-set instance.
func NewWithSeen(index *ledger.Index, s *seen.Set) *Verifier {
	return &Verifier{index: index, seen: s}
}

// Verify decodes tok, matches it against the ledger and judges the match as
// of now. Every failure mode comes back as data; untrusted scanned input
// never surfaces as an error or panic.
//
// The seen-set is only consulted after a successful ledger match, so
// malformed or counterfeit tokens cannot inflate it or perturb duplicate
// detection for genuine claims. The duplicate flag is advisory: it never
// rejects on its own, and it is recorded even when the rules subsequently
// reject the batch.
func (v *Verifier) Verify(tok string, now time.Time) Outcome {
	claim, err := token.Decode(tok)
	if err != nil {
		return Outcome{Reason: ReasonInvalidToken}
	}

	rec, ok := v.index.Lookup(claim.ID, claim.Batch, claim.Checksum)
	if !ok {
		return Outcome{Reason: ReasonNoMatch}
	}

	dup := v.seen.CheckAndRecord(claim.Key())

	switch rules.Evaluate(rec, now) {
	case rules.VerdictRecalled:
		return Outcome{Reason: ReasonRecalled, Record: rec, Duplicate: dup}
	case rules.VerdictExpired:
		return Outcome{Reason: ReasonExpired, Record: rec, Duplicate: dup}
	default:
		return Outcome{OK: true, Record: rec, Duplicate: dup}
	}
}
