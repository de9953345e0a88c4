// package rules applies the recall/expiry business rules to a matched
// ledger record. Evaluate is a pure function of the record and an
// explicitly injected evaluation instant; it never reads the system clock.
package rules

import (
	"time"

	"github.com/batchguard/batchguard/internal/ledger"
)

// Verdict is the outcome of rule evaluation for a matched record.
type Verdict string

const (
	VerdictValid    Verdict = "VALID"
	VerdictRecalled Verdict = "INVALID_RECALLED"
	VerdictExpired  Verdict = "INVALID_EXPIRED"
)

// Evaluate judges a record as of now. Recall takes precedence over expiry.
//
// Expiry policy: the expiry date is inclusive through its entire calendar
// day in UTC. A batch with exp=2027-08-31 is still valid at
// 2027-08-31T23:59:59Z and expired from 2027-09-01T00:00:00Z on.
func Evaluate(rec *ledger.BatchRecord, now time.Time) Verdict {
	if rec.Status == ledger.StatusRecalled {
		return VerdictRecalled
	}
	endOfExpDay := rec.Exp.Add(24 * time.Hour)
	if !now.UTC().Before(endOfExpDay) {
		return VerdictExpired
	}
	return VerdictValid
}
