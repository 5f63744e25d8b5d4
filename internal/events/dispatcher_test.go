package events

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestInMemoryDispatcher_IsolatesSubscribers(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	d := NewInMemoryDispatcher(zap.New(core))

	var calls []string
	d.Subscribe(EventPaymentRecorded, func(context.Context, Event) error {
		calls = append(calls, "failing")
		return errors.New("smtp down")
	})
	d.Subscribe(EventPaymentRecorded, func(context.Context, Event) error {
		calls = append(calls, "panicking")
		panic("nil map")
	})
	d.Subscribe(EventPaymentRecorded, func(context.Context, Event) error {
		calls = append(calls, "healthy")
		return nil
	})
	d.Subscribe(EventJobCreated, func(context.Context, Event) error {
		calls = append(calls, "other type")
		return nil
	})

	err := d.Publish(context.Background(), Event{ID: "evt-1", Type: EventPaymentRecorded, JobID: "job-1"})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	want := []string{"failing", "panicking", "healthy"}
	if len(calls) != len(want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Fatalf("calls = %v, want %v", calls, want)
		}
	}

	failures := logs.FilterMessage("event subscriber failed").All()
	if len(failures) != 2 {
		t.Fatalf("logged %d failures, want 2", len(failures))
	}
	if got := failures[1].ContextMap()["error"]; got != "panic: nil map" {
		t.Fatalf("panic logged as %v", got)
	}
}

func TestInMemoryDispatcher_NoSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher(nil)
	if err := d.Publish(context.Background(), Event{Type: EventReminderSent}); err != nil {
		t.Fatal(err)
	}
}
