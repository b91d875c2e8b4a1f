package events

import (
	"encoding/json"
	"sync"
	"testing"
	"time"
)

func receive[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(time.Second):
		var zero T
		t.Fatal("timeout waiting for event")
		return zero
	}
}

func TestBus_PublishSubscribe(t *testing.T) {
	bus := New()
	received := make(chan PeakEvent, 1)

	unsub := bus.Subscribe(func(e PeakEvent) { received <- e })
	defer unsub()

	bus.Publish(PeakEvent{Sequence: 7, X: 10, Y: 20, Celsius: 39.35})

	got := receive(t, received)
	if got.Sequence != 7 || got.X != 10 || got.Y != 20 || got.Celsius != 39.35 {
		t.Errorf("got %+v", got)
	}
}

func TestBus_MultipleSubscribers(t *testing.T) {
	bus := New()
	first := make(chan SessionStateEvent, 1)
	second := make(chan SessionStateEvent, 1)

	defer bus.Subscribe(func(e SessionStateEvent) { first <- e })()
	defer bus.Subscribe(func(e SessionStateEvent) { second <- e })()

	bus.Publish(SessionStateEvent{Device: "synthetic", State: "connected"})

	if got := receive(t, first); got.State != "connected" {
		t.Errorf("first subscriber got %+v", got)
	}
	if got := receive(t, second); got.State != "connected" {
		t.Errorf("second subscriber got %+v", got)
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := New()
	received := make(chan FrameErrorEvent, 1)

	unsub := bus.Subscribe(func(e FrameErrorEvent) { received <- e })
	bus.Publish(FrameErrorEvent{Stage: "read"})
	receive(t, received)

	unsub()
	bus.Publish(FrameErrorEvent{Stage: "process"})
	select {
	case <-received:
		t.Fatal("received event after unsubscribe")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestBus_TypeSafety(t *testing.T) {
	bus := New()
	peaks := make(chan PeakEvent, 1)
	errs := make(chan FrameErrorEvent, 1)

	defer bus.Subscribe(func(e PeakEvent) { peaks <- e })()
	defer bus.Subscribe(func(e FrameErrorEvent) { errs <- e })()

	bus.Publish(FrameErrorEvent{Stage: "read", Error: "timeout"})

	receive(t, errs)
	select {
	case e := <-peaks:
		t.Fatalf("peak subscriber received %+v", e)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestBus_UnknownHandlerIsNoop(t *testing.T) {
	bus := New()
	unsub := bus.Subscribe(func(string) {})
	unsub()
}

func TestBus_NilPublish(_ *testing.T) {
	var bus *Bus
	bus.Publish(PeakEvent{})
}

func TestBus_ConcurrentPublish(t *testing.T) {
	bus := New()
	var mu sync.Mutex
	count := 0
	done := make(chan struct{})
	const total = 100

	defer bus.Subscribe(func(PeakEvent) {
		mu.Lock()
		count++
		if count == total {
			close(done)
		}
		mu.Unlock()
	})()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < total/10; j++ {
				bus.Publish(PeakEvent{Sequence: uint64(j)})
			}
		}()
	}
	wg.Wait()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		mu.Lock()
		defer mu.Unlock()
		t.Fatalf("received %d of %d events", count, total)
	}
}

func TestEventTypesAreDistinct(t *testing.T) {
	seen := map[uint32]string{}
	for name, ev := range map[string]Event{
		"peak":    PeakEvent{},
		"error":   FrameErrorEvent{},
		"session": SessionStateEvent{},
		"log":     LogEntryEvent{},
		"metrics": CaptureMetricsEvent{},
	} {
		if other, dup := seen[ev.Type()]; dup {
			t.Errorf("%s and %s share type %d", name, other, ev.Type())
		}
		seen[ev.Type()] = name
	}
}

func TestEventJSON(t *testing.T) {
	data, err := json.Marshal(FrameErrorEvent{Stage: "process", Code: "GEOMETRY", Error: "bad", Skipped: 2})
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"stage", "code", "error", "skipped", "timestamp"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("missing key %q in %s", key, data)
		}
	}

	data, err = json.Marshal(SessionStateEvent{State: "stopped"})
	if err != nil {
		t.Fatal(err)
	}
	decoded = nil
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if _, ok := decoded["reason"]; ok {
		t.Error("empty reason should be omitted")
	}
}

func TestSubscribeToChannel(t *testing.T) {
	bus := New()
	ch := make(chan any, 4)

	unsub := SubscribeToChannel[PeakEvent](bus, ch)
	defer unsub()

	bus.Publish(PeakEvent{X: 3})
	got := receive(t, ch)
	if e, ok := got.(PeakEvent); !ok || e.X != 3 {
		t.Errorf("got %#v", got)
	}
}

func TestSubscribeToChannel_NonBlocking(_ *testing.T) {
	bus := New()
	ch := make(chan any) // never read

	unsub := SubscribeToChannel[SessionStateEvent](bus, ch)
	defer unsub()

	for i := 0; i < 10; i++ {
		bus.Publish(SessionStateEvent{State: "connected"})
	}
}
