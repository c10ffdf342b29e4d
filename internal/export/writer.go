package export

import (
	"context"
	"fmt"
	"time"
)

// TimestampLayout is appended to export file names.
const TimestampLayout = "2006-01-02_150405"

// Writer encodes tables and hands them to a sink.
type Writer struct {
	enc  Encoder
	sink Sink
	now  func() time.Time
}

// NewWriter creates a writer producing files in enc's format.
func NewWriter(enc Encoder, sink Sink) *Writer {
	return &Writer{enc: enc, sink: sink, now: time.Now}
}

// FileName builds "<prefix>_<timestamp>.<ext>".
func (w *Writer) FileName(prefix string) string {
	return fmt.Sprintf("%s_%s.%s", prefix, w.now().Format(TimestampLayout), w.enc.Format())
}

// Write encodes t and stores it under a timestamped name derived from t.Name.
func (w *Writer) Write(ctx context.Context, t *Table) (string, error) {
	data, err := w.enc.Encode(t)
	if err != nil {
		return "", err
	}
	return w.sink.Put(ctx, w.FileName(t.Name), data, w.enc.ContentType())
}
