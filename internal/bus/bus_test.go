package bus

import (
	"sync"
	"testing"
	"time"

	"github.com/nextlevelbuilder/stepreplay/pkg/protocol"
)

func TestCommandDedupe(t *testing.T) {
	d := NewCommandDedupe(time.Minute, 100)

	if d.IsDuplicate("cmd-1") {
		t.Error("first sighting reported as duplicate")
	}
	if !d.IsDuplicate("cmd-1") {
		t.Error("second sighting not reported as duplicate")
	}
	if d.IsDuplicate("cmd-2") {
		t.Error("distinct id reported as duplicate")
	}
	if d.IsDuplicate("") {
		t.Error("empty id must never be a duplicate")
	}
	if d.IsDuplicate("") {
		t.Error("empty id must never be a duplicate")
	}
}

func TestCommandDedupeExpiry(t *testing.T) {
	d := NewCommandDedupe(time.Millisecond, 100)
	d.IsDuplicate("cmd-1")
	time.Sleep(5 * time.Millisecond)
	if d.IsDuplicate("cmd-1") {
		t.Error("expired id still reported as duplicate")
	}
}

func TestBroadcastReachesAllSubscribers(t *testing.T) {
	mb := New()
	defer mb.Close()

	var mu sync.Mutex
	got := map[string]int{}
	for _, id := range []string{"ui", "store"} {
		id := id
		mb.Subscribe(id, func(Event) {
			mu.Lock()
			got[id]++
			mu.Unlock()
		})
	}

	mb.Broadcast(Event{Name: protocol.EventStepComplete})
	mb.Unsubscribe("ui")
	mb.Broadcast(Event{Name: protocol.EventStepComplete})

	mu.Lock()
	defer mu.Unlock()
	if got["ui"] != 1 || got["store"] != 2 {
		t.Errorf("deliveries = %v, want ui:1 store:2", got)
	}
}

func TestRecordCoalescer_MergesKeystrokes(t *testing.T) {
	out := make(chan protocol.StepRecord, 10)
	c := NewRecordCoalescer(20*time.Millisecond, func(r protocol.StepRecord) { out <- r })

	for _, v := range []string{"a", "b", "c"} {
		c.Push(protocol.StepRecord{Action: "TYPE_CHAR", Target: "#q", Value: v})
	}

	select {
	case r := <-out:
		if r.Value != "abc" || r.Action != "TYPE_CHAR" || r.Target != "#q" {
			t.Errorf("merged = %+v, want TYPE_CHAR #q abc", r)
		}
	case <-time.After(time.Second):
		t.Fatal("coalesced record never flushed")
	}
}

func TestRecordCoalescer_NormalizesCombiningMarks(t *testing.T) {
	out := make(chan protocol.StepRecord, 10)
	c := NewRecordCoalescer(time.Minute, func(r protocol.StepRecord) { out <- r })

	// IME-style input: base letter then a combining acute accent.
	c.Push(protocol.StepRecord{Action: "TYPE_CHAR", Target: "#q", Value: "e"})
	c.Push(protocol.StepRecord{Action: "TYPE_CHAR", Target: "#q", Value: "́"})
	c.Stop()

	select {
	case r := <-out:
		if r.Value != "é" {
			t.Errorf("merged value = %q, want precomposed é", r.Value)
		}
	case <-time.After(time.Second):
		t.Fatal("coalesced record never flushed")
	}
}

func TestRecordCoalescer_OtherActionsFlushAndPassThrough(t *testing.T) {
	out := make(chan protocol.StepRecord, 10)
	c := NewRecordCoalescer(time.Minute, func(r protocol.StepRecord) { out <- r })

	c.Push(protocol.StepRecord{Action: "TYPE_CHAR", Target: "#q", Value: "a"})
	c.Push(protocol.StepRecord{Action: "TYPE_CHAR", Target: "#q", Value: "b"})
	c.Push(protocol.StepRecord{Action: "CLICK", Target: "#q"})

	first := <-out
	if first.Action != "TYPE_CHAR" || first.Value != "ab" {
		t.Errorf("flushed = %+v, want merged TYPE_CHAR ab", first)
	}
	second := <-out
	if second.Action != "CLICK" {
		t.Errorf("pass-through = %+v, want CLICK", second)
	}
}

func TestRecordCoalescer_StopFlushesPending(t *testing.T) {
	out := make(chan protocol.StepRecord, 10)
	c := NewRecordCoalescer(time.Minute, func(r protocol.StepRecord) { out <- r })

	c.Push(protocol.StepRecord{Action: "TYPE_CHAR", Target: "#q", Value: "x"})
	c.Stop()

	select {
	case r := <-out:
		if r.Value != "x" {
			t.Errorf("flushed = %+v", r)
		}
	default:
		t.Fatal("Stop did not flush the buffered record")
	}
}

func TestRecordCoalescer_DisabledPassesThrough(t *testing.T) {
	out := make(chan protocol.StepRecord, 10)
	c := NewRecordCoalescer(0, func(r protocol.StepRecord) { out <- r })

	c.Push(protocol.StepRecord{Action: "TYPE_CHAR", Target: "#q", Value: "a"})
	c.Push(protocol.StepRecord{Action: "TYPE_CHAR", Target: "#q", Value: "b"})

	if len(out) != 2 {
		t.Fatalf("records flushed = %d, want 2", len(out))
	}
}
