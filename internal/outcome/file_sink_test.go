package outcome

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileSinkWritesEvent(t *testing.T) {
	dir := t.TempDir()
	sink := NewFileSink(dir)

	ev := NewEvent(sampleOutcome(t), time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	if err := sink.Emit(context.Background(), ev); err != nil {
		t.Fatalf("Emit error: %v", err)
	}

	b, err := os.ReadFile(filepath.Join(dir, "outcome_"+ev.ID+".json"))
	if err != nil {
		t.Fatalf("read outcome file: %v", err)
	}
	var got Event
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal outcome file: %v", err)
	}
	if got.ID != ev.ID || got.BatchID != "MED-001" || !got.OK {
		t.Fatalf("stored event mismatch: %+v", got)
	}
}
