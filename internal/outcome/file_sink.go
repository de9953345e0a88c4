package outcome

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileSink writes one JSON file per outcome event. Dev/demo substitute for
// the Kafka and S3 sinks.
type FileSink struct {
	dir string
}

// NewFileSink returns a FileSink and ensures the directory exists.
func NewFileSink(dir string) *FileSink {
	_ = os.MkdirAll(dir, 0o755)
	return &FileSink{dir: dir}
}

func (f *FileSink) Emit(ctx context.Context, ev *Event) error {
	if ev == nil {
		return fmt.Errorf("nil event")
	}
	b, _ := json.MarshalIndent(ev, "", "  ")
	path := filepath.Join(f.dir, fmt.Sprintf("outcome_%s.json", ev.ID))
	return os.WriteFile(path, b, 0o644)
}
