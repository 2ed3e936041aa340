// Recording coalescer. Capture engines emit one STEP_RECORDED per keystroke
// while the user types; replaying those one-per-key is both noisy to review
// and slow. The coalescer buffers rapid consecutive keystroke records for
// the same target and merges them into a single record before the service
// sees them.
package bus

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/nextlevelbuilder/stepreplay/pkg/protocol"
)

// RecordCoalescer buffers rapid keystroke records per target and merges them
// into a single record after a quiet window.
type RecordCoalescer struct {
	window  time.Duration
	mu      sync.Mutex
	buffers map[string]*recordBuffer
	flushFn func(protocol.StepRecord)
}

type recordBuffer struct {
	records []protocol.StepRecord
	timer   *time.Timer
}

// NewRecordCoalescer creates a coalescer with the given quiet window and
// flush callback. A window <= 0 disables coalescing entirely.
func NewRecordCoalescer(window time.Duration, flushFn func(protocol.StepRecord)) *RecordCoalescer {
	return &RecordCoalescer{
		window:  window,
		buffers: make(map[string]*recordBuffer),
		flushFn: flushFn,
	}
}

// Push adds a recorded step. Keystroke records (TYPE_CHAR) buffer per
// target; any other action flushes that target's buffer first and then
// passes through immediately.
func (c *RecordCoalescer) Push(rec protocol.StepRecord) {
	if c.window <= 0 {
		c.flushFn(rec)
		return
	}
	key := rec.Target

	if !strings.EqualFold(rec.Action, "TYPE_CHAR") {
		c.flushKey(key)
		c.flushFn(rec)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	buf, exists := c.buffers[key]
	if !exists {
		buf = &recordBuffer{}
		c.buffers[key] = buf
	}
	buf.records = append(buf.records, rec)

	if buf.timer != nil {
		buf.timer.Stop()
	}
	buf.timer = time.AfterFunc(c.window, func() {
		c.flushKey(key)
	})

	slog.Debug("record coalesce: buffering",
		"target", key, "buffered", len(buf.records))
}

// Stop flushes all pending buffers immediately.
func (c *RecordCoalescer) Stop() {
	c.mu.Lock()
	keys := make([]string, 0, len(c.buffers))
	for k := range c.buffers {
		keys = append(keys, k)
	}
	c.mu.Unlock()

	for _, key := range keys {
		c.flushKey(key)
	}
}

func (c *RecordCoalescer) flushKey(key string) {
	c.mu.Lock()
	buf, exists := c.buffers[key]
	if !exists || len(buf.records) == 0 {
		c.mu.Unlock()
		return
	}
	if buf.timer != nil {
		buf.timer.Stop()
	}
	recs := buf.records
	delete(c.buffers, key)
	c.mu.Unlock()

	merged := mergeKeystrokes(recs)
	if len(recs) > 1 {
		slog.Debug("record coalesce: merged keystrokes",
			"target", key, "count", len(recs))
	}
	c.flushFn(merged)
}

// mergeKeystrokes combines consecutive keystroke records into one. Values
// concatenate in arrival order and are NFC-normalized, so input that arrives
// as base characters plus combining marks records the same as precomposed
// input; the other fields come from the last record.
func mergeKeystrokes(recs []protocol.StepRecord) protocol.StepRecord {
	if len(recs) == 1 {
		return recs[0]
	}
	merged := recs[len(recs)-1]
	var b strings.Builder
	for _, r := range recs {
		b.WriteString(r.Value)
	}
	merged.Value = norm.NFC.String(b.String())
	return merged
}
