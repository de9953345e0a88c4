package ledger

import "fmt"

// Index is an immutable snapshot of the ledger keyed by identity. It is
// built once at startup and is safe for unlimited concurrent lookups with
// no synchronization.
type Index struct {
	byKey    map[string]*BatchRecord
	byPair   map[string]*BatchRecord
	recalled int
}

// NewIndex validates records and builds the identity-keyed index. A
// duplicate (id, batch, checksum) triple is a hard error: the ledger's
// uniqueness invariant is what makes a match authoritative.
func NewIndex(records []BatchRecord) (*Index, error) {
	ix := &Index{
		byKey:  make(map[string]*BatchRecord, len(records)),
		byPair: make(map[string]*BatchRecord, len(records)),
	}
	for i := range records {
		rec := records[i]
		if err := rec.validate(); err != nil {
			return nil, err
		}
		key := rec.Key()
		if _, dup := ix.byKey[key]; dup {
			return nil, fmt.Errorf("duplicate ledger identity for id=%q batch=%q", rec.ID, rec.Batch)
		}
		pair := IdentityKey(rec.ID, rec.Batch, "")
		if _, dup := ix.byPair[pair]; dup {
			return nil, fmt.Errorf("duplicate ledger lot for id=%q batch=%q", rec.ID, rec.Batch)
		}
		ix.byKey[key] = &rec
		ix.byPair[pair] = &rec
		if rec.Status == StatusRecalled {
			ix.recalled++
		}
	}
	return ix, nil
}

// Lookup finds the record whose (id, batch, checksum) triple exactly equals
// the given one. Case-sensitive; a partial match (right id+batch, wrong
// checksum) is a miss, indistinguishable from an unknown batch.
func (ix *Index) Lookup(id, batch, checksum string) (*BatchRecord, bool) {
	rec, ok := ix.byKey[IdentityKey(id, batch, checksum)]
	return rec, ok
}

// Find locates a record by its (id, batch) lot pair, without a checksum.
// Used by the token provisioning endpoint, never by verification: verify
// matches require all three identity fields.
func (ix *Index) Find(id, batch string) (*BatchRecord, bool) {
	rec, ok := ix.byPair[IdentityKey(id, batch, "")]
	return rec, ok
}

// Len reports the number of records in the snapshot.
func (ix *Index) Len() int { return len(ix.byKey) }

// Recalled reports how many records carry the recalled status.
func (ix *Index) Recalled() int { return ix.recalled }
